package ai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLLMService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *LLMConfig
		expectError bool
	}{
		{"Gemini config", &LLMConfig{Provider: "gemini", Model: "gemini-2.0-flash", APIKey: "k"}, false},
		{"Gemini without key", &LLMConfig{Provider: "gemini", Model: "gemini-2.0-flash"}, true},
		{"Ollama config", &LLMConfig{Provider: "ollama", Model: "llama3.2:3b", BaseURL: "http://localhost:11434"}, false},
		{"Ollama without url", &LLMConfig{Provider: "ollama", Model: "llama3.2:3b"}, true},
		{"Unsupported provider", &LLMConfig{Provider: "deepseek"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLLMService(tt.cfg)
			if (err != nil) != tt.expectError {
				t.Errorf("NewLLMService() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestLLMServiceChat(t *testing.T) {
	t.Run("Ollama round trip", func(t *testing.T) {
		srv, requests := newFakeOpenAIServer(t, "Halo! Ini meal plan kamu.", http.StatusOK)
		svc, err := NewLLMService(&LLMConfig{Provider: "ollama", Model: "llama3.2:3b", BaseURL: srv.URL, MaxTokens: 256})
		require.NoError(t, err)

		reply, err := svc.Chat(context.Background(), []Message{
			SystemPrompt("You are NutriBot."),
			UserMessage("Buatkan meal plan 1 hari"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Halo! Ini meal plan kamu.", reply)

		require.Len(t, *requests, 1)
		req := (*requests)[0]
		assert.Equal(t, "/v1/chat/completions", req["_path"])
		assert.Equal(t, "llama3.2:3b", req["model"])
		msgs := req["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	})

	t.Run("Gemini sends bearer key", func(t *testing.T) {
		srv, requests := newFakeOpenAIServer(t, "ok", http.StatusOK)
		svc, err := NewLLMService(&LLMConfig{Provider: "gemini", Model: "gemini-2.0-flash", APIKey: "secret", BaseURL: srv.URL + "/v1"})
		require.NoError(t, err)

		_, err = svc.Chat(context.Background(), []Message{UserMessage("hi")})
		require.NoError(t, err)
		assert.Equal(t, "Bearer secret", (*requests)[0]["_auth"])
	})

	t.Run("Non-success status", func(t *testing.T) {
		srv, _ := newFakeOpenAIServer(t, "", http.StatusServiceUnavailable)
		svc, err := NewLLMService(&LLMConfig{Provider: "ollama", Model: "llama3.2:3b", BaseURL: srv.URL})
		require.NoError(t, err)

		_, err = svc.Chat(context.Background(), []Message{UserMessage("hi")})
		require.Error(t, err)
	})
}
