// Package nutrition computes daily energy targets and macro splits from a
// user's body metrics.
package nutrition

import (
	"math"
	"strings"
)

// Gender values accepted by BMR.
const (
	GenderMale   = "male"
	GenderFemale = "female"
)

// Goal types reported in Summary.GoalType.
const (
	GoalDeficit     = "defisit"
	GoalSurplus     = "surplus"
	GoalMaintenance = "maintenance"
)

// MacroSplit names a protein/carbs/fat distribution.
type MacroSplit string

const (
	SplitBalanced    MacroSplit = "balanced"
	SplitHighProtein MacroSplit = "high_protein"
	SplitLowCarb     MacroSplit = "low_carb"
)

type ratio struct {
	protein, carbs, fat float64
}

var splits = map[MacroSplit]ratio{
	SplitBalanced:    {protein: 0.30, carbs: 0.40, fat: 0.30},
	SplitHighProtein: {protein: 0.40, carbs: 0.30, fat: 0.30},
	SplitLowCarb:     {protein: 0.35, carbs: 0.20, fat: 0.45},
}

var activityMultipliers = map[string]float64{
	"sedentary":         1.2,
	"lightly active":    1.375,
	"moderately active": 1.55,
	"very active":       1.725,
	"extremely active":  1.9,
}

const (
	calorieAdjustment = 500

	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

var (
	deficitKeywords = []string{"turun", "loss", "defisit", "deficit", "kurus"}
	surplusKeywords = []string{"naik", "gain", "surplus", "gemuk", "bulk"}
)

// Macros is a daily macronutrient target in grams and percent of calories.
type Macros struct {
	Protein           float64 `json:"protein"`
	Carbs             float64 `json:"carbs"`
	Fat               float64 `json:"fat"`
	ProteinPercentage int     `json:"protein_percentage"`
	CarbsPercentage   int     `json:"carbs_percentage"`
	FatPercentage     int     `json:"fat_percentage"`
}

// Summary is a daily nutrition target. BMR, TDEE, Adjustment and GoalType are
// only set when computed from body metrics.
type Summary struct {
	BMR            float64 `json:"bmr,omitempty"`
	TDEE           float64 `json:"tdee,omitempty"`
	TargetCalories float64 `json:"target_calories"`
	Adjustment     int     `json:"adjustment,omitempty"`
	GoalType       string  `json:"goal_type,omitempty"`
	Macros         Macros  `json:"macros"`
}

// Input holds the body metrics required by Calculate.
type Input struct {
	Weight        float64 // kg
	Height        float64 // cm
	Age           int
	Gender        string
	ActivityLevel string
	Goal          string
	Split         MacroSplit
}

// BMR returns the Mifflin-St Jeor basal metabolic rate in kcal/day.
// Any gender other than male uses the female constant.
func BMR(weight, height float64, age int, gender string) float64 {
	bmr := 10*weight + 6.25*height - 5*float64(age)
	if strings.EqualFold(strings.TrimSpace(gender), GenderMale) {
		bmr += 5
	} else {
		bmr -= 161
	}
	return round(bmr, 2)
}

// ActivityMultiplier returns the TDEE factor for level; unknown levels count as sedentary.
func ActivityMultiplier(level string) float64 {
	if m, ok := activityMultipliers[strings.ToLower(strings.TrimSpace(level))]; ok {
		return m
	}
	return 1.2
}

// TDEE returns the total daily energy expenditure.
func TDEE(bmr float64, activityLevel string) float64 {
	return round(bmr*ActivityMultiplier(activityLevel), 2)
}

// GoalAdjustment classifies a free-text goal (English or Indonesian) and
// returns the calorie adjustment and goal type.
func GoalAdjustment(goal string) (int, string) {
	g := strings.ToLower(goal)
	switch {
	case containsAny(g, deficitKeywords):
		return -calorieAdjustment, GoalDeficit
	case containsAny(g, surplusKeywords):
		return calorieAdjustment, GoalSurplus
	default:
		return 0, GoalMaintenance
	}
}

// CalculateMacros splits calories into protein, carbs and fat.
// Unknown splits use SplitBalanced.
func CalculateMacros(calories float64, split MacroSplit) Macros {
	r, ok := splits[split]
	if !ok {
		r = splits[SplitBalanced]
	}
	return Macros{
		Protein:           round(calories*r.protein/kcalPerGramProtein, 1),
		Carbs:             round(calories*r.carbs/kcalPerGramCarbs, 1),
		Fat:               round(calories*r.fat/kcalPerGramFat, 1),
		ProteinPercentage: int(math.Round(r.protein * 100)),
		CarbsPercentage:   int(math.Round(r.carbs * 100)),
		FatPercentage:     int(math.Round(r.fat * 100)),
	}
}

// Calculate computes the full summary for in.
func Calculate(in Input) *Summary {
	bmr := BMR(in.Weight, in.Height, in.Age, in.Gender)
	tdee := TDEE(bmr, in.ActivityLevel)
	adjustment, goalType := GoalAdjustment(in.Goal)
	target := round(tdee+float64(adjustment), 2)

	return &Summary{
		BMR:            bmr,
		TDEE:           tdee,
		TargetCalories: target,
		Adjustment:     adjustment,
		GoalType:       goalType,
		Macros:         CalculateMacros(target, in.Split),
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
