package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)

	// ChatMessage model related methods. Messages are append-only.
	CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error)
	// CreateChatMessages inserts all messages in one transaction.
	CreateChatMessages(ctx context.Context, creates []*ChatMessage) ([]*ChatMessage, error)
	ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error)
	ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error)

	// Food reference data (read-only, loaded by an external ingestion job).
	ListFoods(ctx context.Context, find *FindFood) ([]*Food, error)
	SearchFoodsByNutrients(ctx context.Context, find *FindFoodByNutrients) ([]*Food, error)
	ListFoodNutrients(ctx context.Context, fdcIDs []int32) ([]*FoodNutrient, error)
	ListFoodPortions(ctx context.Context, fdcID int32) ([]*FoodPortion, error)
	ListFoodCategories(ctx context.Context) ([]string, error)

	// FoodEmbedding related methods. Only PostgreSQL (pgvector) supports these.
	UpsertFoodEmbedding(ctx context.Context, embedding *FoodEmbedding) (*FoodEmbedding, error)
	FoodVectorSearch(ctx context.Context, opts *FoodVectorSearchOptions) ([]*FoodWithScore, error)
}
