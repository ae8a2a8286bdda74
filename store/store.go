package store

import (
	"context"

	"github.com/hrygo/nutribot/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	return s.driver.UpdateUser(ctx, update)
}

func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser returns the first matching user, or nil when none exists.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) CreateChatMessage(ctx context.Context, create *ChatMessage) (*ChatMessage, error) {
	return s.driver.CreateChatMessage(ctx, create)
}

func (s *Store) CreateChatMessages(ctx context.Context, creates []*ChatMessage) ([]*ChatMessage, error) {
	if len(creates) == 0 {
		return []*ChatMessage{}, nil
	}
	return s.driver.CreateChatMessages(ctx, creates)
}

func (s *Store) ListChatMessages(ctx context.Context, find *FindChatMessage) ([]*ChatMessage, error) {
	return s.driver.ListChatMessages(ctx, find)
}

func (s *Store) ListChatSessions(ctx context.Context, find *FindChatSession) ([]*ChatSession, error) {
	return s.driver.ListChatSessions(ctx, find)
}

func (s *Store) ListFoods(ctx context.Context, find *FindFood) ([]*Food, error) {
	return s.driver.ListFoods(ctx, find)
}

// GetFood returns a food by FoodData Central id, or nil when it does not exist.
func (s *Store) GetFood(ctx context.Context, fdcID int32) (*Food, error) {
	limit := 1
	list, err := s.driver.ListFoods(ctx, &FindFood{FdcID: &fdcID, Limit: &limit})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

func (s *Store) SearchFoodsByNutrients(ctx context.Context, find *FindFoodByNutrients) ([]*Food, error) {
	return s.driver.SearchFoodsByNutrients(ctx, find)
}

func (s *Store) ListFoodNutrients(ctx context.Context, fdcIDs []int32) ([]*FoodNutrient, error) {
	if len(fdcIDs) == 0 {
		return []*FoodNutrient{}, nil
	}
	return s.driver.ListFoodNutrients(ctx, fdcIDs)
}

func (s *Store) ListFoodPortions(ctx context.Context, fdcID int32) ([]*FoodPortion, error) {
	return s.driver.ListFoodPortions(ctx, fdcID)
}

func (s *Store) ListFoodCategories(ctx context.Context) ([]string, error) {
	return s.driver.ListFoodCategories(ctx)
}

func (s *Store) UpsertFoodEmbedding(ctx context.Context, embedding *FoodEmbedding) (*FoodEmbedding, error) {
	return s.driver.UpsertFoodEmbedding(ctx, embedding)
}

func (s *Store) FoodVectorSearch(ctx context.Context, opts *FoodVectorSearchOptions) ([]*FoodWithScore, error) {
	return s.driver.FoodVectorSearch(ctx, opts)
}

// AttachNutrients loads the tracked nutrients of foods in one query and sets Food.Nutrients.
func (s *Store) AttachNutrients(ctx context.Context, foods []*Food) error {
	if len(foods) == 0 {
		return nil
	}
	ids := make([]int32, 0, len(foods))
	byID := make(map[int32]*Food, len(foods))
	for _, f := range foods {
		ids = append(ids, f.FdcID)
		byID[f.FdcID] = f
	}
	nutrients, err := s.ListFoodNutrients(ctx, ids)
	if err != nil {
		return err
	}
	for _, n := range nutrients {
		if f, ok := byID[n.FdcID]; ok {
			f.Nutrients.Set(n.Name, n.Amount)
		}
	}
	return nil
}
