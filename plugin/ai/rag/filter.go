package rag

import "strings"

// FilterAllergens drops records whose description or ingredients mention any
// of the allergies, ignoring case. The input slice is not modified.
func FilterAllergens(records []Record, allergies []string) []Record {
	terms := make([]string, 0, len(allergies))
	for _, a := range allergies {
		if a = strings.ToLower(strings.TrimSpace(a)); a != "" {
			terms = append(terms, a)
		}
	}
	if len(terms) == 0 {
		return records
	}

	kept := make([]Record, 0, len(records))
	for _, r := range records {
		text := strings.ToLower(r.Description + "\n" + r.Ingredients)
		if !containsAny(text, terms) {
			kept = append(kept, r)
		}
	}
	return kept
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
