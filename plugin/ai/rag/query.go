package rag

import "strings"

var foodQueryKeywords = []string{
	"makanan", "food", "nutrisi", "kalori", "protein",
	"resep", "recipe", "bahan", "ingredient",
}

// foodTerms maps words users type to the search term used against the
// food database. Indonesian words map to their English description term.
var foodTerms = []struct {
	word, term string
}{
	{"ayam", "chicken"},
	{"chicken", "chicken"},
	{"daging", "beef"},
	{"beef", "beef"},
	{"ikan", "fish"},
	{"fish", "fish"},
	{"salmon", "salmon"},
	{"telur", "egg"},
	{"egg", "egg"},
	{"nasi", "rice"},
	{"rice", "rice"},
	{"roti", "bread"},
	{"bread", "bread"},
	{"sayur", "vegetable"},
	{"vegetable", "vegetable"},
	{"brokoli", "broccoli"},
	{"bayam", "spinach"},
	{"buah", "fruit"},
	{"fruit", "fruit"},
	{"pisang", "banana"},
	{"tahu", "tofu"},
	{"tempe", "tempeh"},
	{"susu", "milk"},
	{"milk", "milk"},
}

// DefaultFoodTerm is searched when a food query names no known food.
const DefaultFoodTerm = "protein"

// IsFoodQuery reports whether message asks about foods or nutrition.
func IsFoodQuery(message string) bool {
	lower := strings.ToLower(message)
	for _, k := range foodQueryKeywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}

// ExtractFoodTerms returns the distinct search terms for foods named in
// message, in table order. It never returns an empty slice.
func ExtractFoodTerms(message string) []string {
	lower := strings.ToLower(message)
	seen := map[string]bool{}
	var terms []string
	for _, f := range foodTerms {
		if seen[f.term] || !strings.Contains(lower, f.word) {
			continue
		}
		seen[f.term] = true
		terms = append(terms, f.term)
	}
	if len(terms) == 0 {
		return []string{DefaultFoodTerm}
	}
	return terms
}
