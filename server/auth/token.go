// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	// Issuer is the iss claim of access tokens.
	Issuer = "nutribot"
	// AccessTokenDuration is how long an access token stays valid.
	AccessTokenDuration = 7 * 24 * time.Hour
)

var (
	// ErrMissingToken is returned when the Authorization header is absent.
	ErrMissingToken = errors.New("authorization header required")
	// ErrInvalidToken covers malformed, expired and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
)

// ClaimsMessage is the payload of an access token.
type ClaimsMessage struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// UserID returns the user id carried in the subject claim.
func (c *ClaimsMessage) UserID() (int32, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: bad subject %q", ErrInvalidToken, c.Subject)
	}
	return int32(id), nil
}

// GenerateAccessToken signs an HS256 token for the user.
func GenerateAccessToken(userID int32, username string, now time.Time, secret []byte) (string, error) {
	claims := &ClaimsMessage{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    Issuer,
			Subject:   strconv.Itoa(int(userID)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(AccessTokenDuration)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken verifies a token and returns its claims.
func ParseAccessToken(tokenString string, secret []byte) (*ClaimsMessage, error) {
	claims := &ClaimsMessage{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}, jwt.WithIssuer(Issuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// ExtractBearerToken returns the token of a "Bearer <token>" header.
func ExtractBearerToken(header string) (string, error) {
	if header == "" {
		return "", ErrMissingToken
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", fmt.Errorf("%w: expected Bearer scheme", ErrInvalidToken)
	}
	return strings.TrimSpace(token), nil
}
