package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

type contextKey int

const (
	userIDContextKey contextKey = iota
	usernameContextKey
)

// SetUserInContext stores the authenticated user in ctx.
func SetUserInContext(ctx context.Context, userID int32, username string) context.Context {
	ctx = context.WithValue(ctx, userIDContextKey, userID)
	return context.WithValue(ctx, usernameContextKey, username)
}

// UserIDFromContext returns the authenticated user id, or false for anonymous requests.
func UserIDFromContext(ctx context.Context) (int32, bool) {
	id, ok := ctx.Value(userIDContextKey).(int32)
	return id, ok && id > 0
}

// Authenticator turns Authorization headers into request identities.
type Authenticator struct {
	secret []byte
}

// NewAuthenticator creates an Authenticator for HS256 tokens signed with secret.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// Authenticate verifies the header and returns a context carrying the user.
func (a *Authenticator) Authenticate(ctx context.Context, header string) (context.Context, error) {
	token, err := ExtractBearerToken(header)
	if err != nil {
		return ctx, err
	}
	claims, err := ParseAccessToken(token, a.secret)
	if err != nil {
		return ctx, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return ctx, err
	}
	return SetUserInContext(ctx, userID, claims.Username), nil
}

// Middleware authenticates requests. With required unset a missing header
// passes through as anonymous; a present but invalid token is always rejected.
func (a *Authenticator) Middleware(required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx, err := a.Authenticate(req.Context(), req.Header.Get(echo.HeaderAuthorization))
			switch {
			case err == nil:
				c.SetRequest(req.WithContext(ctx))
			case errors.Is(err, ErrMissingToken) && !required:
			default:
				slog.Debug("authentication failed", "path", c.Path(), "error", err)
				return c.JSON(http.StatusUnauthorized, map[string]string{
					"code":  "UNAUTHORIZED",
					"error": err.Error(),
				})
			}
			return next(c)
		}
	}
}
