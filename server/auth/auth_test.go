package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func TestAccessToken_RoundTrip(t *testing.T) {
	now := time.Now()
	token, err := GenerateAccessToken(42, "sari", now, secret)
	require.NoError(t, err)

	claims, err := ParseAccessToken(token, secret)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, int32(42), id)
	assert.Equal(t, "sari", claims.Username)
	assert.WithinDuration(t, now.Add(7*24*time.Hour), claims.ExpiresAt.Time, time.Second)
}

func TestParseAccessToken_Rejects(t *testing.T) {
	expired, err := GenerateAccessToken(1, "old", time.Now().Add(-8*24*time.Hour), secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(expired, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	valid, err := GenerateAccessToken(1, "x", time.Now(), secret)
	require.NoError(t, err)
	_, err = ParseAccessToken(valid, []byte("other-secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Issuer: Issuer, Subject: "1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseAccessToken(unsigned, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseAccessToken("garbage", secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestExtractBearerToken(t *testing.T) {
	tok, err := ExtractBearerToken("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = ExtractBearerToken("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ExtractBearerToken("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(hash, "rahasia123"))
	assert.False(t, CheckPassword(hash, "salah"))

	_, err = HashPassword("abc")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator(string(secret))
	token, err := GenerateAccessToken(9, "budi", time.Now(), secret)
	require.NoError(t, err)

	tests := []struct {
		name     string
		required bool
		header   string
		wantCode int
		wantUser int32
	}{
		{"optional anonymous", false, "", http.StatusOK, 0},
		{"optional with token", false, "Bearer " + token, http.StatusOK, 9},
		{"optional bad token", false, "Bearer nope", http.StatusUnauthorized, 0},
		{"required missing", true, "", http.StatusUnauthorized, 0},
		{"required with token", true, "Bearer " + token, http.StatusOK, 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			var gotUser int32
			h := a.Middleware(tt.required)(func(c echo.Context) error {
				gotUser, _ = UserIDFromContext(c.Request().Context())
				return c.NoContent(http.StatusOK)
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			rec := httptest.NewRecorder()
			require.NoError(t, h(e.NewContext(req, rec)))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantUser, gotUser)
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
	id, ok := UserIDFromContext(SetUserInContext(context.Background(), 3, "x"))
	assert.True(t, ok)
	assert.Equal(t, int32(3), id)
}
