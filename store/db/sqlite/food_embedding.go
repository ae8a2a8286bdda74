package sqlite

import (
	"context"
	"errors"

	"github.com/hrygo/nutribot/store"
)

// ErrVectorSearchNotSupported is returned for embedding operations; use PostgreSQL with pgvector.
var ErrVectorSearchNotSupported = errors.New("vector search is not supported on SQLite, use PostgreSQL with pgvector")

func (*DB) UpsertFoodEmbedding(context.Context, *store.FoodEmbedding) (*store.FoodEmbedding, error) {
	return nil, ErrVectorSearchNotSupported
}

func (*DB) FoodVectorSearch(context.Context, *store.FoodVectorSearchOptions) ([]*store.FoodWithScore, error) {
	return nil, ErrVectorSearchNotSupported
}
