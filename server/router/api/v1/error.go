package v1

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apierrors "github.com/hrygo/nutribot/server/internal/errors"
)

type errorResponse struct {
	Code  apierrors.ErrorCode `json:"code"`
	Error string              `json:"error"`
}

// writeError renders err as a JSON error body. Errors that are not an
// *APIError are reported as INTERNAL without exposing their text.
func writeError(c echo.Context, err error) error {
	var apiErr *apierrors.APIError
	if !errors.As(err, &apiErr) {
		apiErr = apierrors.Internal("internal server error", err)
	}
	status := apiErr.Status()
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("method", c.Request().Method),
			slog.String("path", c.Path()),
			slog.String("code", string(apiErr.Code)),
			slog.Any("error", err))
	}
	return c.JSON(status, errorResponse{Code: apiErr.Code, Error: apiErr.Message})
}

// bind decodes the request body into v.
func bind(c echo.Context, v any) error {
	if err := c.Bind(v); err != nil {
		return apierrors.InvalidArgument("invalid request body")
	}
	return nil
}
