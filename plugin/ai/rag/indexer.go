package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/store"
)

// IndexStore is the part of *store.Store the indexer writes to.
type IndexStore interface {
	ListFoods(ctx context.Context, find *store.FindFood) ([]*store.Food, error)
	UpsertFoodEmbedding(ctx context.Context, embedding *store.FoodEmbedding) (*store.FoodEmbedding, error)
}

// Indexer computes food embeddings for VectorSource.
type Indexer struct {
	store     IndexStore
	embedder  ai.EmbeddingService
	batchSize int
}

func NewIndexer(s IndexStore, embedder ai.EmbeddingService, batchSize int) *Indexer {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Indexer{store: s, embedder: embedder, batchSize: batchSize}
}

// IndexAll embeds every food and upserts its vector. It returns the number of
// foods indexed.
func (x *Indexer) IndexAll(ctx context.Context) (int, error) {
	foods, err := x.store.ListFoods(ctx, &store.FindFood{})
	if err != nil {
		return 0, errors.Wrap(err, "failed to list foods")
	}

	indexed := 0
	for start := 0; start < len(foods); start += x.batchSize {
		end := min(start+x.batchSize, len(foods))
		batch := foods[start:end]

		texts := make([]string, len(batch))
		for i, f := range batch {
			texts[i] = embeddingText(f)
		}
		vectors, err := x.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return indexed, errors.Wrapf(err, "failed to embed foods %d-%d", start, end)
		}

		now := time.Now().Unix()
		for i, f := range batch {
			if _, err := x.store.UpsertFoodEmbedding(ctx, &store.FoodEmbedding{
				FdcID:     f.FdcID,
				Embedding: vectors[i],
				Model:     x.embedder.Model(),
				CreatedTs: now,
				UpdatedTs: now,
			}); err != nil {
				return indexed, errors.Wrapf(err, "failed to store embedding for food %d", f.FdcID)
			}
			indexed++
		}
		slog.Info("indexed food embeddings", "done", indexed, "total", len(foods))
	}
	return indexed, nil
}

func embeddingText(f *store.Food) string {
	parts := []string{f.Description}
	if f.Category != "" {
		parts = append(parts, f.Category)
	}
	if f.BrandName != "" {
		parts = append(parts, f.BrandName)
	}
	return strings.Join(parts, ". ")
}
