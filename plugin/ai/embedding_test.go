package ai

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmbeddingService(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *EmbeddingConfig
		expectError bool
	}{
		{"Ollama config", &EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text", BaseURL: "http://localhost:11434"}, false},
		{"Gemini config", &EmbeddingConfig{Provider: "gemini", Model: "text-embedding-004", APIKey: "k", Dimensions: 768}, false},
		{"Unsupported provider", &EmbeddingConfig{Provider: "siliconflow"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEmbeddingService(tt.cfg)
			if (err != nil) != tt.expectError {
				t.Errorf("NewEmbeddingService() error = %v, expectError %v", err, tt.expectError)
			}
		})
	}
}

func TestEmbeddingService(t *testing.T) {
	srv, requests := newFakeOpenAIServer(t, "", http.StatusOK)
	svc, err := NewEmbeddingService(&EmbeddingConfig{Provider: "ollama", Model: "nomic-embed-text", BaseURL: srv.URL})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", svc.Model())

	vectors, err := svc.EmbedBatch(context.Background(), []string{"nasi", "ayam"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, float32(0), vectors[0][0])
	assert.Equal(t, float32(1), vectors[1][0])
	assert.Equal(t, "/v1/embeddings", (*requests)[0]["_path"])
	_, hasDims := (*requests)[0]["dimensions"]
	assert.False(t, hasDims)

	single, err := svc.Embed(context.Background(), "tempe")
	require.NoError(t, err)
	assert.Len(t, single, 2)

	_, err = svc.EmbedBatch(context.Background(), nil)
	assert.Error(t, err)
}
