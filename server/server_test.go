package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nutribot/internal/profile"
	teststore "github.com/hrygo/nutribot/store/test"
)

func TestNewServer(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	p := &profile.Profile{Mode: "demo", Driver: "sqlite", JWTSecret: "test-secret", CORSOrigins: "http://localhost:3000"}
	p.FromEnv()

	s, err := NewServer(ctx, p, st)
	require.NoError(t, err)
	t.Cleanup(s.retrievalCache.Close)
	assert.Nil(t, s.embeddingRunner)

	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNewServer_InvalidDefaultModel(t *testing.T) {
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	p := &profile.Profile{Mode: "demo", Driver: "sqlite"}
	p.FromEnv()
	p.DefaultModel = "gpt-4o"

	_, err := NewServer(ctx, p, st)
	assert.Error(t, err)
}
