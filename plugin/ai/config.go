package ai

import (
	"errors"
	"strings"
	"time"

	"github.com/hrygo/nutribot/internal/profile"
)

// Config represents AI configuration.
type Config struct {
	DefaultModel string
	// Retries is the number of extra attempts after a failed model call.
	Retries int

	Gemini    ProviderConfig
	Ollama    ProviderConfig
	Embedding EmbeddingConfig
}

// ProviderConfig holds connection settings for one model server.
type ProviderConfig struct {
	APIKey      string
	BaseURL     string
	Timeout     time.Duration
	MaxTokens   int
	Temperature float32
}

// EmbeddingConfig represents vector embedding configuration.
type EmbeddingConfig struct {
	Provider   string // ollama, gemini
	Model      string // nomic-embed-text
	Dimensions int    // 768
	APIKey     string
	BaseURL    string
}

// LLMConfig binds a provider to one model.
type LLMConfig struct {
	Provider    string // gemini, ollama
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float32
}

// NewConfigFromProfile creates AI config from profile.
func NewConfigFromProfile(p *profile.Profile) *Config {
	cfg := &Config{
		DefaultModel: p.DefaultModel,
		Retries:      p.ModelRetries,
		Gemini: ProviderConfig{
			APIKey:      p.GeminiAPIKey,
			BaseURL:     p.GeminiBaseURL,
			Timeout:     p.RequestTimeout,
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		Ollama: ProviderConfig{
			BaseURL:     OllamaOpenAIBaseURL(p.OllamaBaseURL),
			Timeout:     p.RequestTimeout,
			MaxTokens:   2048,
			Temperature: 0.7,
		},
	}

	if p.IsEmbeddingEnabled() {
		cfg.Embedding = EmbeddingConfig{
			Provider:   p.EmbeddingProvider,
			Model:      p.EmbeddingModel,
			Dimensions: p.EmbeddingDims,
		}
		switch p.EmbeddingProvider {
		case "gemini":
			cfg.Embedding.APIKey = p.GeminiAPIKey
			cfg.Embedding.BaseURL = p.GeminiBaseURL
		case "ollama":
			cfg.Embedding.BaseURL = OllamaOpenAIBaseURL(p.OllamaBaseURL)
		}
	}

	return cfg
}

// OllamaOpenAIBaseURL returns the OpenAI-compatible endpoint of an Ollama server.
func OllamaOpenAIBaseURL(host string) string {
	host = strings.TrimRight(host, "/")
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return host + "/v1"
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.DefaultModel == "" {
		return errors.New("default model is required")
	}
	if c.Ollama.BaseURL == "" && c.Gemini.APIKey == "" {
		return errors.New("at least one model backend must be configured")
	}
	if c.Embedding.Provider != "" {
		if c.Embedding.Model == "" {
			return errors.New("embedding model is required")
		}
		if c.Embedding.Provider == "gemini" && c.Embedding.APIKey == "" {
			return errors.New("embedding API key is required")
		}
	}
	return nil
}
