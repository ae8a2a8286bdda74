// Package timeout defines centralized timeout constants for AI operations.
package timeout

import "time"

const (
	// RemoteModelTimeout bounds one call to a hosted model.
	RemoteModelTimeout = 60 * time.Second

	// LocalModelTimeout bounds one call to a local model. Local models on
	// CPU are slow to produce long meal plans.
	LocalModelTimeout = 120 * time.Second

	// EmbeddingTimeout is the timeout for embedding generation.
	EmbeddingTimeout = 30 * time.Second

	// RetrievalTimeout bounds food retrieval for one chat turn.
	RetrievalTimeout = 10 * time.Second

	// HistoryTimeout bounds loading or saving chat turns for one request.
	HistoryTimeout = 5 * time.Second

	// MaxTruncateLength is the maximum length for truncating strings in logs.
	MaxTruncateLength = 200
)

// Truncate shortens s to MaxTruncateLength runes for logging.
func Truncate(s string) string {
	r := []rune(s)
	if len(r) <= MaxTruncateLength {
		return s
	}
	return string(r[:MaxTruncateLength]) + "..."
}
