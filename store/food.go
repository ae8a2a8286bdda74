package store

import "strings"

// Food is a FoodData Central reference row.
type Food struct {
	FdcID           int32
	Description     string
	DataType        string
	Category        string
	BrandOwner      string
	BrandName       string
	Ingredients     string
	ServingSize     float64
	ServingSizeUnit string

	// Nutrients is filled by Store.AttachNutrients.
	Nutrients Nutrients
}

// Nutrients holds per-100g amounts of the tracked nutrients. Nil means not recorded.
type Nutrients struct {
	Calories     *float64 `json:"calories,omitempty"`
	Protein      *float64 `json:"protein,omitempty"`
	Fat          *float64 `json:"fat,omitempty"`
	Carbs        *float64 `json:"carbs,omitempty"`
	Fiber        *float64 `json:"fiber,omitempty"`
	Sugar        *float64 `json:"sugar,omitempty"`
	Sodium       *float64 `json:"sodium,omitempty"`
	Cholesterol  *float64 `json:"cholesterol,omitempty"`
	SaturatedFat *float64 `json:"saturated_fat,omitempty"`
}

// TrackedNutrientNames are the FoodData Central nutrient names loaded for each food.
var TrackedNutrientNames = []string{
	"Energy",
	"Protein",
	"Total lipid (fat)",
	"Carbohydrate, by difference",
	"Fiber, total dietary",
	"Sugars, total including NLEA",
	"Sodium, Na",
	"Cholesterol",
	"Fatty acids, total saturated",
}

// Set maps a FoodData Central nutrient name onto its field.
func (n *Nutrients) Set(name string, amount float64) {
	v := amount
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(name, "Energy"):
		n.Calories = &v
	case strings.Contains(name, "Protein"):
		n.Protein = &v
	case strings.Contains(lower, "saturated"):
		n.SaturatedFat = &v
	case strings.Contains(name, "lipid"), strings.Contains(lower, "fat"):
		n.Fat = &v
	case strings.Contains(name, "Carbohydrate"):
		n.Carbs = &v
	case strings.Contains(name, "Fiber"):
		n.Fiber = &v
	case strings.Contains(name, "Sugar"):
		n.Sugar = &v
	case strings.Contains(name, "Sodium"):
		n.Sodium = &v
	case strings.Contains(name, "Cholesterol"):
		n.Cholesterol = &v
	}
}

type FindFood struct {
	FdcID  *int32
	FdcIDs []int32
	// Query matches description or brand name, case-insensitively.
	Query    *string
	Category *string
	DataType *string
	Limit    *int
}

type FindFoodByNutrients struct {
	MinProtein  *float64
	MaxCalories *float64
	MaxFat      *float64
	MaxCarbs    *float64
	Category    *string
	Limit       int
}

type FoodNutrient struct {
	FdcID    int32
	Name     string
	UnitName string
	Amount   float64
}

type FoodPortion struct {
	FdcID       int32
	SeqNum      int32
	Description string
	GramWeight  float64
	Modifier    string
}

type FoodEmbedding struct {
	ID        int32
	FdcID     int32
	Embedding []float32
	Model     string
	CreatedTs int64
	UpdatedTs int64
}

type FoodVectorSearchOptions struct {
	Vector []float32
	Model  string
	Limit  int
}

type FoodWithScore struct {
	Food  *Food
	Score float32
}
