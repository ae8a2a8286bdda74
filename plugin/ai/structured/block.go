// Package structured extracts machine-readable sections that the model embeds
// in its reply as tagged fenced code blocks.
//
// Grammar: a fenced code block (``` or ~~~) whose info string is exactly one
// of the Kind tags below, closed by a matching fence.
//
//	```nutribot:nutrition
//	{"target_calories": 1800, "macros": {...}}
//	```
package structured

import (
	"fmt"
	"strings"

	"github.com/hrygo/nutribot/plugin/nutrition"
)

// Kind identifies a structured block.
type Kind string

const (
	KindNutrition Kind = "nutribot:nutrition"
	KindCalendar  Kind = "nutribot:calendar"
	KindSummary   Kind = "nutribot:summary"
)

// Kinds lists every recognized block tag.
var Kinds = []Kind{KindNutrition, KindCalendar, KindSummary}

func parseKind(info string) (Kind, bool) {
	info = strings.TrimSpace(info)
	for _, k := range Kinds {
		if info == string(k) {
			return k, true
		}
	}
	return "", false
}

// MaxCalendarDays bounds the meal calendar length.
const MaxCalendarDays = 31

// CalendarDay is one day of a meal calendar.
type CalendarDay struct {
	Day    string `json:"day"`
	Lunch  string `json:"lunch"`
	Dinner string `json:"dinner"`
}

// Reply is the structured side channel of a model reply. Nil or empty
// fields were not emitted.
type Reply struct {
	Nutrition *nutrition.Summary `json:"nutrition_summary,omitempty"`
	Calendar  []CalendarDay      `json:"meal_calendar,omitempty"`
	Summary   string             `json:"meal_plan_summary,omitempty"`
}

// IsEmpty reports whether no block was extracted.
func (r *Reply) IsEmpty() bool {
	return r.Nutrition == nil && len(r.Calendar) == 0 && r.Summary == ""
}

// MalformedBlockError reports a tagged block that failed to parse.
type MalformedBlockError struct {
	Kind   Kind
	Reason string
	Err    error
}

func (e *MalformedBlockError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed %s block: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed %s block: %s", e.Kind, e.Reason)
}

func (e *MalformedBlockError) Unwrap() error {
	return e.Err
}
