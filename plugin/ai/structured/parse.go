package structured

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"

	"github.com/hrygo/nutribot/plugin/nutrition"
)

// JSON numbers are decoded as float64, so 30 and 30.0 read the same.
type nutritionBlock struct {
	BMR            float64      `json:"bmr"`
	TDEE           float64      `json:"tdee"`
	TargetCalories *float64     `json:"target_calories"`
	Adjustment     float64      `json:"adjustment"`
	GoalType       string       `json:"goal_type"`
	Macros         *macrosBlock `json:"macros"`
}

type macrosBlock struct {
	Protein           float64 `json:"protein"`
	Carbs             float64 `json:"carbs"`
	Fat               float64 `json:"fat"`
	ProteinPercentage float64 `json:"protein_percentage"`
	CarbsPercentage   float64 `json:"carbs_percentage"`
	FatPercentage     float64 `json:"fat_percentage"`
}

func decodeStrict(body string, v any) error {
	dec := json.NewDecoder(strings.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	// Trailing data after the value is not allowed.
	if dec.More() {
		return &json.SyntaxError{Offset: dec.InputOffset()}
	}
	return nil
}

func parseNutrition(body string) (*nutrition.Summary, error) {
	var b nutritionBlock
	if err := decodeStrict(body, &b); err != nil {
		return nil, &MalformedBlockError{Kind: KindNutrition, Reason: "invalid json", Err: err}
	}
	if b.TargetCalories == nil || *b.TargetCalories <= 0 {
		return nil, &MalformedBlockError{Kind: KindNutrition, Reason: "target_calories must be positive"}
	}
	if b.Macros == nil {
		return nil, &MalformedBlockError{Kind: KindNutrition, Reason: "macros missing"}
	}
	m := b.Macros
	if m.Protein < 0 || m.Carbs < 0 || m.Fat < 0 {
		return nil, &MalformedBlockError{Kind: KindNutrition, Reason: "macro grams must not be negative"}
	}
	for _, pct := range []float64{m.ProteinPercentage, m.CarbsPercentage, m.FatPercentage} {
		if pct < 0 || pct > 100 {
			return nil, &MalformedBlockError{Kind: KindNutrition, Reason: "macro percentage out of range"}
		}
	}
	return &nutrition.Summary{
		BMR:            b.BMR,
		TDEE:           b.TDEE,
		TargetCalories: *b.TargetCalories,
		Adjustment:     int(math.Round(b.Adjustment)),
		GoalType:       b.GoalType,
		Macros: nutrition.Macros{
			Protein:           m.Protein,
			Carbs:             m.Carbs,
			Fat:               m.Fat,
			ProteinPercentage: int(math.Round(m.ProteinPercentage)),
			CarbsPercentage:   int(math.Round(m.CarbsPercentage)),
			FatPercentage:     int(math.Round(m.FatPercentage)),
		},
	}, nil
}

func parseCalendar(body string) ([]CalendarDay, error) {
	var days []CalendarDay
	if err := decodeStrict(body, &days); err != nil {
		return nil, &MalformedBlockError{Kind: KindCalendar, Reason: "invalid json", Err: err}
	}
	if len(days) == 0 || len(days) > MaxCalendarDays {
		return nil, &MalformedBlockError{Kind: KindCalendar, Reason: "calendar must have 1 to 31 days"}
	}
	for i := range days {
		d := &days[i]
		d.Day = strings.TrimSpace(d.Day)
		d.Lunch = strings.TrimSpace(d.Lunch)
		d.Dinner = strings.TrimSpace(d.Dinner)
		if d.Day == "" || d.Lunch == "" || d.Dinner == "" {
			return nil, &MalformedBlockError{Kind: KindCalendar, Reason: "day, lunch and dinner are required"}
		}
	}
	return days, nil
}

func parseSummary(body string) (string, error) {
	s := strings.TrimSpace(body)
	if s == "" {
		return "", &MalformedBlockError{Kind: KindSummary, Reason: "empty summary"}
	}
	return s, nil
}

// collapseBlankLines squeezes runs of blank lines left behind by removed blocks.
func collapseBlankLines(b []byte) []byte {
	lines := bytes.Split(b, []byte("\n"))
	out := make([][]byte, 0, len(lines))
	blank := 0
	for _, l := range lines {
		if len(bytes.TrimSpace(l)) == 0 {
			blank++
			if blank > 1 {
				continue
			}
			l = nil
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return bytes.TrimSpace(bytes.Join(out, []byte("\n")))
}
