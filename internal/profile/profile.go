package profile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Profile is the configuration to start main server.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Addr is the binding address for server
	Addr string
	// Port is the binding port for server
	Port int
	// Data is the data directory
	Data string
	// DSN points to where nutribot stores its own data
	DSN string
	// Driver is the database driver (sqlite or postgres)
	Driver string
	// Version is the current version of server
	Version string
	// CORSOrigins is a comma separated list of allowed origins.
	CORSOrigins string
	// JWTSecret signs access tokens.
	JWTSecret string

	// Chat orchestration
	DefaultModel        string        // NUTRIBOT_DEFAULT_MODEL (default: llama3.2:3b)
	RetrievalEnabled    bool          // NUTRIBOT_ENABLE_RAG (default: true)
	RequestTimeout      time.Duration // NUTRIBOT_REQUEST_TIMEOUT (default: 60s)
	MaxRetrievedRecords int           // NUTRIBOT_MAX_RETRIEVED (default: 10)
	MaxPromptTokens     int           // NUTRIBOT_MAX_PROMPT_TOKENS (default: 4096)
	ModelRetries        int           // NUTRIBOT_MODEL_RETRIES (default: 0)

	// Model backends
	GeminiAPIKey  string // NUTRIBOT_GEMINI_API_KEY
	GeminiBaseURL string // NUTRIBOT_GEMINI_BASE_URL
	OllamaBaseURL string // NUTRIBOT_OLLAMA_BASE_URL (default: http://localhost:11434)

	// Embeddings for vector food search. Empty provider disables it.
	EmbeddingProvider string // NUTRIBOT_EMBEDDING_PROVIDER (ollama, gemini or empty)
	EmbeddingModel    string // NUTRIBOT_EMBEDDING_MODEL (default: nomic-embed-text)
	EmbeddingDims     int    // NUTRIBOT_EMBEDDING_DIMENSIONS (default: 768)
}

const (
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	defaultOllamaBaseURL = "http://localhost:11434"
)

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// IsEmbeddingEnabled reports whether query embeddings can be produced.
func (p *Profile) IsEmbeddingEnabled() bool {
	switch p.EmbeddingProvider {
	case "ollama":
		return p.OllamaBaseURL != ""
	case "gemini":
		return p.GeminiAPIKey != ""
	default:
		return false
	}
}

// AllowedOrigins splits CORSOrigins into a list, skipping blanks.
func (p *Profile) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(p.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnvOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer in environment, using default", "key", key, "value", value)
		return defaultValue
	}
	return n
}

func getBoolEnvOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getDurationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	// Bare numbers are seconds.
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// FromEnv loads the chat and model configuration from NUTRIBOT_* environment variables.
func (p *Profile) FromEnv() {
	p.DefaultModel = getEnvOrDefault("NUTRIBOT_DEFAULT_MODEL", "llama3.2:3b")
	p.RetrievalEnabled = getBoolEnvOrDefault("NUTRIBOT_ENABLE_RAG", true)
	p.RequestTimeout = getDurationEnvOrDefault("NUTRIBOT_REQUEST_TIMEOUT", 60*time.Second)
	p.MaxRetrievedRecords = getIntEnvOrDefault("NUTRIBOT_MAX_RETRIEVED", 10)
	p.MaxPromptTokens = getIntEnvOrDefault("NUTRIBOT_MAX_PROMPT_TOKENS", 4096)
	p.ModelRetries = getIntEnvOrDefault("NUTRIBOT_MODEL_RETRIES", 0)

	p.GeminiAPIKey = os.Getenv("NUTRIBOT_GEMINI_API_KEY")
	p.GeminiBaseURL = getEnvOrDefault("NUTRIBOT_GEMINI_BASE_URL", defaultGeminiBaseURL)
	p.OllamaBaseURL = getEnvOrDefault("NUTRIBOT_OLLAMA_BASE_URL", defaultOllamaBaseURL)

	p.EmbeddingProvider = os.Getenv("NUTRIBOT_EMBEDDING_PROVIDER")
	p.EmbeddingModel = getEnvOrDefault("NUTRIBOT_EMBEDDING_MODEL", "nomic-embed-text")
	p.EmbeddingDims = getIntEnvOrDefault("NUTRIBOT_EMBEDDING_DIMENSIONS", 768)

	if p.JWTSecret == "" {
		p.JWTSecret = os.Getenv("NUTRIBOT_JWT_SECRET")
	}
	if p.CORSOrigins == "" {
		p.CORSOrigins = getEnvOrDefault("NUTRIBOT_CORS_ORIGINS", "http://localhost:3000")
	}
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	if p.Mode == "prod" && p.Data == "" {
		if runtime.GOOS == "windows" {
			p.Data = filepath.Join(os.Getenv("ProgramData"), "nutribot")
			if _, err := os.Stat(p.Data); os.IsNotExist(err) {
				if err := os.MkdirAll(p.Data, 0770); err != nil {
					slog.Error("failed to create data directory", slog.String("data", p.Data), slog.String("error", err.Error()))
					return err
				}
			}
		} else {
			p.Data = "/var/opt/nutribot"
		}
	}

	dataDir, err := checkDataDir(p.Data)
	if err != nil {
		slog.Error("failed to check dsn", slog.String("data", dataDir), slog.String("error", err.Error()))
		return err
	}

	p.Data = dataDir
	if p.Driver == "sqlite" && p.DSN == "" {
		dbFile := fmt.Sprintf("nutribot_%s.db", p.Mode)
		p.DSN = filepath.Join(dataDir, dbFile)
	}

	if p.JWTSecret == "" {
		if p.Mode == "prod" {
			return errors.New("jwt secret is required in prod mode")
		}
		p.JWTSecret = "nutribot-dev-secret"
	}
	if p.MaxRetrievedRecords <= 0 {
		p.MaxRetrievedRecords = 10
	}
	if p.MaxPromptTokens <= 0 {
		p.MaxPromptTokens = 4096
	}
	if p.RequestTimeout <= 0 {
		p.RequestTimeout = 60 * time.Second
	}
	if p.ModelRetries < 0 {
		p.ModelRetries = 0
	}

	return nil
}
