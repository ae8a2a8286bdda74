package rag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hrygo/nutribot/plugin/ai/cache"
)

// DefaultMaxRecords caps Search when no maximum is configured.
const DefaultMaxRecords = 10

// Retriever fans a query out to its sources and fuses the results.
// Retrieval is best effort: Search never fails, it returns fewer or no records.
type Retriever struct {
	sources    []Source
	weights    []float64
	maxRecords int
	cache      *cache.LRU[[]Record]
	cacheTTL   time.Duration
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithCache caches results per normalized query and limit.
func WithCache(c *cache.LRU[[]Record], ttl time.Duration) Option {
	return func(r *Retriever) {
		r.cache = c
		r.cacheTTL = ttl
	}
}

// WithWeights sets the RRF weight of each source, in source order.
func WithWeights(weights ...float64) Option {
	return func(r *Retriever) {
		r.weights = weights
	}
}

// NewRetriever creates a Retriever over sources. maxRecords caps every
// search; non-positive means DefaultMaxRecords.
func NewRetriever(maxRecords int, sources []Source, opts ...Option) *Retriever {
	if maxRecords <= 0 {
		maxRecords = DefaultMaxRecords
	}
	r := &Retriever{
		sources:    sources,
		maxRecords: maxRecords,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxRecords returns the configured cap.
func (r *Retriever) MaxRecords() int {
	return r.maxRecords
}

// Search returns at most limit records, most relevant first. limit is capped
// to the configured maximum; non-positive means the maximum. A failing source
// is logged and skipped.
func (r *Retriever) Search(ctx context.Context, query string, limit int) []Record {
	query = strings.TrimSpace(query)
	if query == "" || len(r.sources) == 0 {
		return []Record{}
	}
	if limit <= 0 || limit > r.maxRecords {
		limit = r.maxRecords
	}

	key := cacheKey(query, limit)
	if r.cache != nil {
		if cached, ok := r.cache.Get(key); ok {
			return cloneRecords(cached)
		}
	}

	lists := make([][]Record, len(r.sources))
	g, gctx := errgroup.WithContext(ctx)
	for i, src := range r.sources {
		i, src := i, src
		g.Go(func() error {
			records, err := src.Search(gctx, query, limit)
			if err != nil {
				slog.Warn("retrieval source failed",
					"source", src.Name(),
					"query", query,
					"error", err)
				return nil
			}
			lists[i] = records
			return nil
		})
	}
	_ = g.Wait()

	var merged []Record
	switch nonEmpty := countNonEmpty(lists); {
	case nonEmpty == 0:
		return []Record{}
	case nonEmpty == 1:
		for _, l := range lists {
			if len(l) > 0 {
				merged = l
			}
		}
	default:
		merged = FuseWithRRF(lists, r.weights)
	}
	if len(merged) > limit {
		merged = merged[:limit]
	}

	if r.cache != nil {
		r.cache.Set(key, cloneRecords(merged), r.cacheTTL)
	}
	return merged
}

func cacheKey(query string, limit int) string {
	return fmt.Sprintf("search:%s:%d", strings.Join(strings.Fields(strings.ToLower(query)), " "), limit)
}

func countNonEmpty(lists [][]Record) int {
	n := 0
	for _, l := range lists {
		if len(l) > 0 {
			n++
		}
	}
	return n
}

func cloneRecords(in []Record) []Record {
	out := make([]Record, len(in))
	copy(out, in)
	return out
}
