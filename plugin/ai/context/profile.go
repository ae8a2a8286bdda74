package context

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hrygo/nutribot/plugin/nutrition"
)

// Gender of the user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Goal is the user's weight goal.
type Goal string

const (
	GoalWeightLoss  Goal = "weight loss"
	GoalMaintenance Goal = "maintenance"
	GoalMuscleGain  Goal = "muscle gain"
)

// ActivityLevel is one of the five TDEE activity levels.
type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "lightly active"
	ActivityModerate   ActivityLevel = "moderately active"
	ActivityVeryActive ActivityLevel = "very active"
	ActivityExtreme    ActivityLevel = "extremely active"
)

// RawProfile is the loosely typed profile sent by clients. Numbers may arrive
// as JSON numbers or numeric strings.
type RawProfile struct {
	Age           any      `json:"age,omitempty"`
	Gender        any      `json:"gender,omitempty"`
	Height        any      `json:"height,omitempty"`
	Weight        any      `json:"weight,omitempty"`
	Goal          any      `json:"goal,omitempty"`
	ActivityLevel any      `json:"activity_level,omitempty"`
	Allergies     []string `json:"allergies,omitempty"`
	Preferences   []string `json:"preferences,omitempty"`
}

// Profile is the normalized, request-scoped user context. When Guest is true
// the body metrics are zero and must not be used.
type Profile struct {
	Guest         bool
	Age           int
	Height        float64 // cm
	Weight        float64 // kg
	Gender        Gender
	Goal          Goal
	ActivityLevel ActivityLevel
	Allergies     []string
	Preferences   []string
}

// GuestProfile is used when the profile is missing or incomplete.
func GuestProfile() *Profile {
	return &Profile{Guest: true}
}

// BuildProfile normalizes raw. Any missing or invalid required field yields
// a guest profile that still carries allergies and preferences.
func BuildProfile(raw *RawProfile) *Profile {
	if raw == nil {
		return GuestProfile()
	}
	guest := GuestProfile()
	guest.Allergies = cleanList(raw.Allergies)
	guest.Preferences = cleanList(raw.Preferences)

	age, ok := toFloat(raw.Age)
	if !ok || age != math.Trunc(age) || age < 1 || age > 120 {
		return guest
	}
	height, ok := toFloat(raw.Height)
	if !ok || height < 50 || height > 300 {
		return guest
	}
	weight, ok := toFloat(raw.Weight)
	if !ok || weight < 10 || weight > 500 {
		return guest
	}
	gender, ok := parseGender(raw.Gender)
	if !ok {
		return guest
	}
	goal, ok := parseGoal(raw.Goal)
	if !ok {
		return guest
	}
	activity, ok := parseActivityLevel(raw.ActivityLevel)
	if !ok {
		return guest
	}

	return &Profile{
		Age:           int(age),
		Height:        height,
		Weight:        weight,
		Gender:        gender,
		Goal:          goal,
		ActivityLevel: activity,
		Allergies:     guest.Allergies,
		Preferences:   guest.Preferences,
	}
}

// NutritionInput returns the calculator input, or false for a guest.
func (p *Profile) NutritionInput() (nutrition.Input, bool) {
	if p == nil || p.Guest {
		return nutrition.Input{}, false
	}
	return nutrition.Input{
		Weight:        p.Weight,
		Height:        p.Height,
		Age:           p.Age,
		Gender:        string(p.Gender),
		ActivityLevel: string(p.ActivityLevel),
		Goal:          string(p.Goal),
		Split:         nutrition.SplitBalanced,
	}, true
}

// Describe renders the user information block of the system prompt.
func (p *Profile) Describe() string {
	var sb strings.Builder
	if p == nil || p.Guest {
		sb.WriteString("**Informasi User:** profil belum lengkap (mode tamu). " +
			"Tanyakan umur, jenis kelamin, tinggi, berat, tujuan, dan aktivitas bila dibutuhkan untuk menghitung kalori.\n")
	} else {
		sb.WriteString("**Informasi User:**\n")
		fmt.Fprintf(&sb, "- Umur: %d tahun\n", p.Age)
		fmt.Fprintf(&sb, "- Jenis Kelamin: %s\n", p.Gender)
		fmt.Fprintf(&sb, "- Tinggi: %s cm\n", formatNumber(p.Height))
		fmt.Fprintf(&sb, "- Berat: %s kg\n", formatNumber(p.Weight))
		fmt.Fprintf(&sb, "- Tujuan: %s\n", p.Goal)
		fmt.Fprintf(&sb, "- Aktivitas: %s\n", p.ActivityLevel)
		if in, ok := p.NutritionInput(); ok {
			s := nutrition.Calculate(in)
			fmt.Fprintf(&sb, "- Target Kalori Harian: %.0f kkal (%s)\n", s.TargetCalories, s.GoalType)
		}
	}
	if p != nil && len(p.Allergies) > 0 {
		fmt.Fprintf(&sb, "- Alergi/Pantangan: %s\n", strings.Join(p.Allergies, ", "))
	}
	if p != nil && len(p.Preferences) > 0 {
		fmt.Fprintf(&sb, "- Preferensi: %s\n", strings.Join(p.Preferences, ", "))
	}
	return sb.String()
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case float32:
		return toFloat(float64(n))
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(n, ",", ".")), 64)
		if err != nil {
			return 0, false
		}
		return toFloat(f)
	default:
		return 0, false
	}
}

func toKey(v any) string {
	s, _ := v.(string)
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	return strings.Join(strings.Fields(s), " ")
}

func parseGender(v any) (Gender, bool) {
	switch toKey(v) {
	case "male", "m", "man", "pria", "laki laki", "l":
		return GenderMale, true
	case "female", "f", "woman", "wanita", "perempuan", "p":
		return GenderFemale, true
	}
	return "", false
}

func parseGoal(v any) (Goal, bool) {
	key := toKey(v)
	if key == "" {
		return "", false
	}
	switch {
	case containsAny(key, "turun", "loss", "defisit", "deficit", "kurus", "lose"):
		return GoalWeightLoss, true
	case containsAny(key, "naik", "gain", "surplus", "gemuk", "bulk", "otot", "muscle"):
		return GoalMuscleGain, true
	case containsAny(key, "maintain", "maintenance", "jaga", "pertahan", "stabil"):
		return GoalMaintenance, true
	}
	return "", false
}

var activityAliases = map[string]ActivityLevel{
	"sedentary":         ActivitySedentary,
	"jarang olahraga":   ActivitySedentary,
	"lightly active":    ActivityLight,
	"light":             ActivityLight,
	"ringan":            ActivityLight,
	"moderately active": ActivityModerate,
	"moderate":          ActivityModerate,
	"sedang":            ActivityModerate,
	"very active":       ActivityVeryActive,
	"active":            ActivityVeryActive,
	"aktif":             ActivityVeryActive,
	"berat":             ActivityVeryActive,
	"extremely active":  ActivityExtreme,
	"extra active":      ActivityExtreme,
	"sangat aktif":      ActivityExtreme,
	"sangat berat":      ActivityExtreme,
}

func parseActivityLevel(v any) (ActivityLevel, bool) {
	level, ok := activityAliases[toKey(v)]
	return level, ok
}

func containsAny(s string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
