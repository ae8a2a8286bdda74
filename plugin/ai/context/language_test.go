package context

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		text string
		want Language
	}{
		{"Tolong buatkan menu diet sehat untuk saya", LanguageIndonesian},
		{"Apa menu sarapan yang sehat?", LanguageIndonesian},
		{"Can you suggest a healthy breakfast for me?", LanguageEnglish},
		{"What should I eat for dinner?", LanguageEnglish},
		{"", LanguageEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectLanguage(tt.text))
		})
	}
}

func TestIsListRequest(t *testing.T) {
	assert.True(t, IsListRequest("Berikan 5 makanan tinggi protein"))
	assert.True(t, IsListRequest("suggest 3 meals"))
	assert.False(t, IsListRequest("suggest some meals"))
	assert.False(t, IsListRequest("I am 25 years old"))
}

func TestDirectives(t *testing.T) {
	id := Directives("Berikan 5 makanan tinggi protein untuk saya")
	assert.True(t, strings.HasPrefix(id, "[PENTING: JAWAB DALAM BAHASA INDONESIA]"))
	assert.Contains(t, id, "[FORMAT: Gunakan nomor")

	en := Directives("What is a healthy dinner?")
	assert.Equal(t, "[IMPORTANT: YOU MUST REPLY IN ENGLISH]\n\n", en)
}
