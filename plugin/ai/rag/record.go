// Package rag retrieves grounding facts from the food database for chat prompts.
package rag

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hrygo/nutribot/store"
)

// MatchSource tells which backend produced a record.
type MatchSource string

const (
	SourceKeyword MatchSource = "keyword"
	SourceVector  MatchSource = "vector"
	SourceHybrid  MatchSource = "hybrid"
)

// Record is one retrieved food with its nutrients per 100 g.
type Record struct {
	FdcID       int32           `json:"fdc_id"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	BrandName   string          `json:"brand_name,omitempty"`
	Ingredients string          `json:"ingredients,omitempty"`
	Nutrients   store.Nutrients `json:"nutrients"`
	Score       float32         `json:"score"`
	Source      MatchSource     `json:"source"`
}

// NewRecord converts a store food into a Record.
func NewRecord(f *store.Food, score float32, source MatchSource) Record {
	return Record{
		FdcID:       f.FdcID,
		Description: f.Description,
		Category:    f.Category,
		BrandName:   f.BrandName,
		Ingredients: f.Ingredients,
		Nutrients:   f.Nutrients,
		Score:       score,
		Source:      source,
	}
}

// Format renders the record as one grounding line item, numbered n.
func (r Record) Format(n int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d. **%s**", n, r.Description)
	if r.BrandName != "" {
		fmt.Fprintf(&sb, " (%s)", r.BrandName)
	}
	sb.WriteString("\n")

	var parts []string
	if v := r.Nutrients.Calories; v != nil {
		parts = append(parts, strconv.FormatFloat(*v, 'f', 0, 64)+" kcal")
	}
	if v := r.Nutrients.Protein; v != nil {
		parts = append(parts, "Protein "+strconv.FormatFloat(*v, 'f', 1, 64)+"g")
	}
	if v := r.Nutrients.Carbs; v != nil {
		parts = append(parts, "Carbs "+strconv.FormatFloat(*v, 'f', 1, 64)+"g")
	}
	if v := r.Nutrients.Fat; v != nil {
		parts = append(parts, "Fat "+strconv.FormatFloat(*v, 'f', 1, 64)+"g")
	}
	if len(parts) > 0 {
		sb.WriteString("   Nutrition (per 100g): ")
		sb.WriteString(strings.Join(parts, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}
