package context

import (
	"regexp"
	"strings"
)

// Language is the reply language enforced on the model.
type Language string

const (
	LanguageIndonesian Language = "id"
	LanguageEnglish    Language = "en"
)

var (
	indonesianMarkers = []string{
		"saya", "aku", "tolong", "buatkan", "berikan", "kasih",
		"makan", "makanan", "bisa", "bagaimana", "apa", "apakah",
		"mohon", "untuk", "adalah", "yang", "dengan", "ini", "itu",
		"sudah", "belum", "ingin", "mau", "harus", "boleh", "tidak",
		"sehat", "diet", "resep", "masakan", "menu", "sarapan",
		"minum", "kalori", "protein", "lemak", "karbohidrat",
	}
	englishMarkers = []string{
		"i ", "i'm", "please", "can you", "could you", "would you",
		"give me", "suggest", "provide", "help", "what", "how",
		"the", "is", "are", "my", "me", "for", "with", "this",
		"that", "want", "need", "should", "meal", "food", "diet",
		"healthy", "recipe", "breakfast", "lunch", "dinner", "snack",
		"calories", "protein", "carbs", "fat",
	}

	listWords = []string{"meal", "menu", "food", "makanan", "suggest", "give", "berikan", "buatkan"}
	hasDigit  = regexp.MustCompile(`\d`)
)

// DetectLanguage scores marker substrings of both languages. Ties go to English.
func DetectLanguage(text string) Language {
	lower := strings.ToLower(text)
	id, en := 0, 0
	for _, m := range indonesianMarkers {
		if strings.Contains(lower, m) {
			id++
		}
	}
	for _, m := range englishMarkers {
		if strings.Contains(lower, m) {
			en++
		}
	}
	if id > en {
		return LanguageIndonesian
	}
	return LanguageEnglish
}

// IsListRequest reports whether the message asks for a number of meal items.
func IsListRequest(message string) bool {
	lower := strings.ToLower(message)
	if !hasDigit.MatchString(lower) {
		return false
	}
	for _, w := range listWords {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// Directives returns the prefix injected before the latest user message.
func Directives(message string) string {
	lang := DetectLanguage(message)

	var sb strings.Builder
	if lang == LanguageIndonesian {
		sb.WriteString("[PENTING: JAWAB DALAM BAHASA INDONESIA]\n\n")
	} else {
		sb.WriteString("[IMPORTANT: YOU MUST REPLY IN ENGLISH]\n\n")
	}
	if IsListRequest(message) {
		if lang == LanguageIndonesian {
			sb.WriteString("[FORMAT: Gunakan nomor 1. 2. 3. 4. untuk setiap item. Contoh:\n" +
				"1. **Nasi Goreng** - Deskripsi singkat (350 kkal, 15g protein)\n" +
				"2. **Ayam Bakar** - Deskripsi singkat (400 kkal, 35g protein)]\n\n")
		} else {
			sb.WriteString("[FORMAT: Use numbered list 1. 2. 3. 4. for each item. Example:\n" +
				"1. **Grilled Chicken** - Brief description (350 kcal, 35g protein)\n" +
				"2. **Salmon Bowl** - Brief description (400 kcal, 40g protein)]\n\n")
		}
	}
	return sb.String()
}
