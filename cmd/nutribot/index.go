package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/plugin/ai/rag"
	"github.com/hrygo/nutribot/store"
)

func indexEmbeddings(ctx context.Context, instanceProfile *profile.Profile, storeInstance *store.Store) (int, error) {
	if !instanceProfile.IsEmbeddingEnabled() {
		return 0, errors.New("no embedding provider configured, set NUTRIBOT_EMBEDDING_PROVIDER")
	}
	if instanceProfile.Driver != "postgres" {
		return 0, errors.Errorf("vector food search requires the postgres driver, got %q", instanceProfile.Driver)
	}
	aiConfig := ai.NewConfigFromProfile(instanceProfile)
	embedder, err := ai.NewEmbeddingService(&aiConfig.Embedding)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create embedding service")
	}
	return rag.NewIndexer(storeInstance, embedder, 0).IndexAll(ctx)
}
