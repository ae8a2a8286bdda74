package embedding

import (
	"context"
	"log/slog"
	"time"
)

// DefaultInterval is how often foods are re-indexed.
const DefaultInterval = 6 * time.Hour

// Indexer embeds foods; *rag.Indexer implements it.
type Indexer interface {
	IndexAll(ctx context.Context) (int, error)
}

// Runner keeps food embeddings up to date for vector food search.
type Runner struct {
	indexer  Indexer
	interval time.Duration
}

// NewRunner creates a food embedding runner. A non-positive interval uses DefaultInterval.
func NewRunner(indexer Indexer, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Runner{
		indexer:  indexer,
		interval: interval,
	}
}

// Run indexes once on startup, then on every tick until ctx is done.
func (r *Runner) Run(ctx context.Context) {
	r.RunOnce(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.RunOnce(ctx)
		case <-ctx.Done():
			slog.Info("embedding runner stopped")
			return
		}
	}
}

// RunOnce indexes every food once. Failures are logged; the next tick retries.
func (r *Runner) RunOnce(ctx context.Context) {
	start := time.Now()
	n, err := r.indexer.IndexAll(ctx)
	if err != nil {
		if ctx.Err() != nil {
			slog.Info("embedding indexing cancelled", "indexed", n)
			return
		}
		slog.Error("failed to index food embeddings", "indexed", n, "error", err)
		return
	}
	slog.Info("food embeddings indexed", "count", n, "duration_ms", time.Since(start).Milliseconds())
}
