package v1

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	aicontext "github.com/hrygo/nutribot/plugin/ai/context"
	"github.com/hrygo/nutribot/plugin/nutrition"
	apierrors "github.com/hrygo/nutribot/server/internal/errors"
)

type nutritionRequest struct {
	aicontext.RawProfile
	MacroSplit string `json:"macro_split"`
}

// CalculateNutrition computes BMR, TDEE, target calories and macros.
// POST /api/nutrition
func (s *APIV1Service) CalculateNutrition(c echo.Context) error {
	var req nutritionRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	in, ok := aicontext.BuildProfile(&req.RawProfile).NutritionInput()
	if !ok {
		return writeError(c, apierrors.InvalidArgument("valid age, gender, height, weight, activity_level and goal are required"))
	}
	switch split := nutrition.MacroSplit(strings.TrimSpace(req.MacroSplit)); split {
	case "":
	case nutrition.SplitBalanced, nutrition.SplitHighProtein, nutrition.SplitLowCarb:
		in.Split = split
	default:
		return writeError(c, apierrors.InvalidArgument("macro_split must be balanced, high_protein or low_carb"))
	}
	return c.JSON(http.StatusOK, nutrition.Calculate(in))
}
