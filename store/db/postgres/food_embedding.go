package postgres

import (
	"context"

	"github.com/pgvector/pgvector-go"
	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/store"
)

// UpsertFoodEmbedding inserts or updates a food embedding.
func (d *DB) UpsertFoodEmbedding(ctx context.Context, embedding *store.FoodEmbedding) (*store.FoodEmbedding, error) {
	stmt := `
		INSERT INTO food_embedding (fdc_id, embedding, model, created_ts, updated_ts)
		VALUES (` + placeholders(5) + `)
		ON CONFLICT (fdc_id, model)
		DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_ts = EXCLUDED.updated_ts
		RETURNING id, created_ts, updated_ts
	`
	err := d.db.QueryRowContext(ctx, stmt,
		embedding.FdcID,
		pgvector.NewVector(embedding.Embedding),
		embedding.Model,
		embedding.CreatedTs,
		embedding.UpdatedTs,
	).Scan(&embedding.ID, &embedding.CreatedTs, &embedding.UpdatedTs)
	if err != nil {
		return nil, errors.Wrap(err, "failed to upsert food embedding")
	}
	return embedding, nil
}

// FoodVectorSearch ranks foods by cosine similarity to opts.Vector.
func (d *DB) FoodVectorSearch(ctx context.Context, opts *store.FoodVectorSearchOptions) ([]*store.FoodWithScore, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	// <=> is cosine distance, so similarity is 1 - distance.
	query := `SELECT f.fdc_id, f.description, f.data_type, COALESCE(fc.description, ''), f.brand_owner, f.brand_name,
			f.ingredients, f.serving_size, f.serving_size_unit,
			1 - (e.embedding <=> ` + placeholder(1) + `) AS similarity
		FROM food_embedding e
		JOIN food f ON f.fdc_id = e.fdc_id
		LEFT JOIN food_category fc ON f.food_category_id = fc.id
		WHERE e.model = ` + placeholder(2) + `
		ORDER BY e.embedding <=> ` + placeholder(1) + `
		LIMIT ` + placeholder(3)

	rows, err := d.db.QueryContext(ctx, query, pgvector.NewVector(opts.Vector), opts.Model, limit)
	if err != nil {
		return nil, errors.Wrap(err, "failed to search food embeddings")
	}
	defer rows.Close()

	list := make([]*store.FoodWithScore, 0, limit)
	for rows.Next() {
		f := &store.Food{}
		var score float32
		if err := rows.Scan(&f.FdcID, &f.Description, &f.DataType, &f.Category, &f.BrandOwner, &f.BrandName,
			&f.Ingredients, &f.ServingSize, &f.ServingSizeUnit, &score); err != nil {
			return nil, errors.Wrap(err, "failed to scan food search result")
		}
		list = append(list, &store.FoodWithScore{Food: f, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate food search results")
	}
	return list, nil
}
