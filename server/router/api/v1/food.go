package v1

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/nutribot/server/internal/errors"
	"github.com/hrygo/nutribot/store"
)

const (
	defaultSearchLimit      = 20
	defaultAlternativeLimit = 10
	maxFoodLimit            = 100
)

type searchFoodsRequest struct {
	Query   string `json:"query"`
	Filters struct {
		Category string `json:"category"`
		DataType string `json:"data_type"`
	} `json:"filters"`
	Limit int `json:"limit"`
}

type suggestAlternativesRequest struct {
	MinProtein  *float64 `json:"min_protein"`
	MaxCalories *float64 `json:"max_calories"`
	MaxFat      *float64 `json:"max_fat"`
	MaxCarbs    *float64 `json:"max_carbs"`
	Category    string   `json:"category"`
	Limit       int      `json:"limit"`
}

type foodView struct {
	FdcID       int32           `json:"fdc_id"`
	Description string          `json:"description"`
	DataType    string          `json:"data_type,omitempty"`
	Category    string          `json:"category,omitempty"`
	BrandOwner  string          `json:"brand_owner,omitempty"`
	BrandName   string          `json:"brand_name,omitempty"`
	Nutrients   store.Nutrients `json:"nutrients"`
}

type portionView struct {
	SeqNum      int32   `json:"seq_num"`
	Description string  `json:"description"`
	GramWeight  float64 `json:"gram_weight"`
	Modifier    string  `json:"modifier,omitempty"`
}

type foodDetailView struct {
	foodView
	Ingredients     string        `json:"ingredients,omitempty"`
	ServingSize     float64       `json:"serving_size,omitempty"`
	ServingSizeUnit string        `json:"serving_size_unit,omitempty"`
	Portions        []portionView `json:"portions"`
}

type searchFoodsResponse struct {
	Foods []foodView `json:"foods"`
	Count int        `json:"count"`
}

type suggestAlternativesResponse struct {
	Alternatives []foodView `json:"alternatives"`
	Count        int        `json:"count"`
}

func convertFood(f *store.Food) foodView {
	return foodView{
		FdcID:       f.FdcID,
		Description: f.Description,
		DataType:    f.DataType,
		Category:    f.Category,
		BrandOwner:  f.BrandOwner,
		BrandName:   f.BrandName,
		Nutrients:   f.Nutrients,
	}
}

func clampLimit(limit, def int) int {
	if limit <= 0 {
		return def
	}
	return min(limit, maxFoodLimit)
}

// SearchFoods searches the food database by text.
// POST /api/search-foods
func (s *APIV1Service) SearchFoods(c echo.Context) error {
	var req searchFoodsRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return writeError(c, apierrors.InvalidArgument("query is required"))
	}
	limit := clampLimit(req.Limit, defaultSearchLimit)
	find := &store.FindFood{Query: &query, Limit: &limit}
	if v := strings.TrimSpace(req.Filters.Category); v != "" {
		find.Category = &v
	}
	if v := strings.TrimSpace(req.Filters.DataType); v != "" {
		find.DataType = &v
	}

	ctx := c.Request().Context()
	foods, err := s.Store.ListFoods(ctx, find)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to search foods", err))
	}
	if err := s.Store.AttachNutrients(ctx, foods); err != nil {
		return writeError(c, apierrors.Internal("failed to load nutrients", err))
	}
	resp := searchFoodsResponse{Foods: make([]foodView, 0, len(foods))}
	for _, f := range foods {
		resp.Foods = append(resp.Foods, convertFood(f))
	}
	resp.Count = len(resp.Foods)
	return c.JSON(http.StatusOK, resp)
}

// GetFoodDetails returns one food with its nutrients and portions.
// GET /api/food-details/:fdc_id
func (s *APIV1Service) GetFoodDetails(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("fdc_id"), 10, 32)
	if err != nil || id <= 0 {
		return writeError(c, apierrors.InvalidArgument("fdc_id must be a positive integer"))
	}

	ctx := c.Request().Context()
	food, err := s.Store.GetFood(ctx, int32(id))
	if err != nil {
		return writeError(c, apierrors.Internal("failed to get food", err))
	}
	if food == nil {
		return writeError(c, apierrors.NotFound("food not found"))
	}
	if err := s.Store.AttachNutrients(ctx, []*store.Food{food}); err != nil {
		return writeError(c, apierrors.Internal("failed to load nutrients", err))
	}
	portions, err := s.Store.ListFoodPortions(ctx, food.FdcID)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to load portions", err))
	}

	view := foodDetailView{
		foodView:        convertFood(food),
		Ingredients:     food.Ingredients,
		ServingSize:     food.ServingSize,
		ServingSizeUnit: food.ServingSizeUnit,
		Portions:        make([]portionView, 0, len(portions)),
	}
	for _, p := range portions {
		view.Portions = append(view.Portions, portionView{
			SeqNum:      p.SeqNum,
			Description: p.Description,
			GramWeight:  p.GramWeight,
			Modifier:    p.Modifier,
		})
	}
	return c.JSON(http.StatusOK, view)
}

// SuggestAlternatives finds foods that meet nutrient limits.
// POST /api/suggest-alternatives
func (s *APIV1Service) SuggestAlternatives(c echo.Context) error {
	var req suggestAlternativesRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	find := &store.FindFoodByNutrients{
		MinProtein:  req.MinProtein,
		MaxCalories: req.MaxCalories,
		MaxFat:      req.MaxFat,
		MaxCarbs:    req.MaxCarbs,
		Limit:       clampLimit(req.Limit, defaultAlternativeLimit),
	}
	if v := strings.TrimSpace(req.Category); v != "" {
		find.Category = &v
	}

	ctx := c.Request().Context()
	foods, err := s.Store.SearchFoodsByNutrients(ctx, find)
	if err != nil {
		return writeError(c, apierrors.Internal("failed to search foods", err))
	}
	if err := s.Store.AttachNutrients(ctx, foods); err != nil {
		return writeError(c, apierrors.Internal("failed to load nutrients", err))
	}
	resp := suggestAlternativesResponse{Alternatives: make([]foodView, 0, len(foods))}
	for _, f := range foods {
		resp.Alternatives = append(resp.Alternatives, convertFood(f))
	}
	resp.Count = len(resp.Alternatives)
	return c.JSON(http.StatusOK, resp)
}
