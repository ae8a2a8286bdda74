package rag

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/plugin/ai/timeout"
	"github.com/hrygo/nutribot/store"
)

// Source is a retrieval backend.
type Source interface {
	Name() MatchSource
	Search(ctx context.Context, query string, limit int) ([]Record, error)
}

// FoodStore is the part of *store.Store the sources read from.
type FoodStore interface {
	ListFoods(ctx context.Context, find *store.FindFood) ([]*store.Food, error)
	AttachNutrients(ctx context.Context, foods []*store.Food) error
	FoodVectorSearch(ctx context.Context, opts *store.FoodVectorSearchOptions) ([]*store.FoodWithScore, error)
}

// KeywordSource matches food descriptions against each word of the query.
type KeywordSource struct {
	store FoodStore
}

func NewKeywordSource(s FoodStore) *KeywordSource {
	return &KeywordSource{store: s}
}

func (*KeywordSource) Name() MatchSource { return SourceKeyword }

// Search runs one description search per distinct word and concatenates the
// hits in word order, without duplicates, up to limit.
func (k *KeywordSource) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	var foods []*store.Food
	seen := map[int32]bool{}
	for _, term := range uniqueWords(query) {
		if len(foods) >= limit {
			break
		}
		t, l := term, limit
		list, err := k.store.ListFoods(ctx, &store.FindFood{Query: &t, Limit: &l})
		if err != nil {
			return nil, errors.Wrapf(err, "keyword search for %q", term)
		}
		for _, f := range list {
			if seen[f.FdcID] || len(foods) >= limit {
				continue
			}
			seen[f.FdcID] = true
			foods = append(foods, f)
		}
	}
	if err := k.store.AttachNutrients(ctx, foods); err != nil {
		return nil, errors.Wrap(err, "failed to load nutrients")
	}

	records := make([]Record, len(foods))
	for i, f := range foods {
		records[i] = NewRecord(f, 1/float32(i+1), SourceKeyword)
	}
	return records, nil
}

func uniqueWords(query string) []string {
	seen := map[string]bool{}
	var words []string
	for _, w := range strings.FieldsFunc(strings.ToLower(query), func(r rune) bool {
		return r == ' ' || r == ',' || r == ';' || r == '\t' || r == '\n'
	}) {
		if !seen[w] {
			seen[w] = true
			words = append(words, w)
		}
	}
	return words
}

// VectorSource embeds the query and runs a cosine similarity search over the
// stored food embeddings. Only the postgres driver supports it.
type VectorSource struct {
	store    FoodStore
	embedder ai.EmbeddingService
}

func NewVectorSource(s FoodStore, embedder ai.EmbeddingService) *VectorSource {
	return &VectorSource{store: s, embedder: embedder}
}

func (*VectorSource) Name() MatchSource { return SourceVector }

func (v *VectorSource) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	embedCtx, cancel := context.WithTimeout(ctx, timeout.EmbeddingTimeout)
	vector, err := v.embedder.Embed(embedCtx, query)
	cancel()
	if err != nil {
		return nil, errors.Wrap(err, "failed to embed query")
	}
	hits, err := v.store.FoodVectorSearch(ctx, &store.FoodVectorSearchOptions{
		Vector: vector,
		Model:  v.embedder.Model(),
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	foods := make([]*store.Food, len(hits))
	for i, h := range hits {
		foods[i] = h.Food
	}
	if err := v.store.AttachNutrients(ctx, foods); err != nil {
		return nil, errors.Wrap(err, "failed to load nutrients")
	}

	records := make([]Record, len(hits))
	for i, h := range hits {
		records[i] = NewRecord(h.Food, h.Score, SourceVector)
	}
	return records, nil
}
