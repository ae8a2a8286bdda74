package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/nutribot/store"
)

func TestFoodStore(t *testing.T) {
	if getDriverFromEnv() != "sqlite" {
		t.Skip("food seed data is only loaded for SQLite")
	}
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	t.Run("Search by text", func(t *testing.T) {
		query := "chicken"
		foods, err := ts.ListFoods(ctx, &store.FindFood{Query: &query})
		require.NoError(t, err)
		require.Len(t, foods, 1)
		require.Equal(t, int32(171477), foods[0].FdcID)
		require.Equal(t, "Poultry Products", foods[0].Category)

		require.NoError(t, ts.AttachNutrients(ctx, foods))
		require.NotNil(t, foods[0].Nutrients.Calories)
		require.Equal(t, 165.0, *foods[0].Nutrients.Calories)
		require.Equal(t, 31.0, *foods[0].Nutrients.Protein)
		require.Nil(t, foods[0].Nutrients.Sugar)
	})

	t.Run("Search with category and limit", func(t *testing.T) {
		query := "rice"
		category := "Cereal Grains and Pasta"
		limit := 1
		foods, err := ts.ListFoods(ctx, &store.FindFood{Query: &query, Category: &category, Limit: &limit})
		require.NoError(t, err)
		require.Len(t, foods, 1)
	})

	t.Run("Details and portions", func(t *testing.T) {
		food, err := ts.GetFood(ctx, 171477)
		require.NoError(t, err)
		require.NotNil(t, food)
		portions, err := ts.ListFoodPortions(ctx, food.FdcID)
		require.NoError(t, err)
		require.Len(t, portions, 2)
		require.Equal(t, int32(1), portions[0].SeqNum)

		missing, err := ts.GetFood(ctx, 1)
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("Search by nutrients", func(t *testing.T) {
		minProtein, maxCalories := 20.0, 200.0
		foods, err := ts.SearchFoodsByNutrients(ctx, &store.FindFoodByNutrients{MinProtein: &minProtein, MaxCalories: &maxCalories})
		require.NoError(t, err)
		ids := []int32{}
		for _, f := range foods {
			ids = append(ids, f.FdcID)
		}
		require.ElementsMatch(t, []int32{171477, 174272}, ids)
	})

	t.Run("Categories", func(t *testing.T) {
		categories, err := ts.ListFoodCategories(ctx)
		require.NoError(t, err)
		require.Contains(t, categories, "Vegetables and Vegetable Products")
	})

	t.Run("Vector search unsupported", func(t *testing.T) {
		_, err := ts.FoodVectorSearch(ctx, &store.FoodVectorSearchOptions{Vector: []float32{0.1}, Model: "m"})
		require.Error(t, err)
	})
}

func TestNutrientsSet(t *testing.T) {
	var n store.Nutrients
	n.Set("Total lipid (fat)", 3.5)
	n.Set("Fatty acids, total saturated", 1.2)
	n.Set("Carbohydrate, by difference", 20)
	n.Set("Unknown", 9)
	require.Equal(t, 3.5, *n.Fat)
	require.Equal(t, 1.2, *n.SaturatedFat)
	require.Equal(t, 20.0, *n.Carbs)
	require.Nil(t, n.Calories)
}
