package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/plugin/ai/dispatcher"
	"github.com/hrygo/nutribot/plugin/ai/session"
	"github.com/hrygo/nutribot/server/internal/observability"
	"github.com/hrygo/nutribot/server/service/chat"
	teststore "github.com/hrygo/nutribot/store/test"
)

type stubLLM struct {
	reply string
}

func (s *stubLLM) Chat(context.Context, []ai.Message) (string, error) {
	return s.reply, nil
}

type testServer struct {
	echo    *echo.Echo
	service *APIV1Service
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ctx := context.Background()
	st := teststore.NewTestingStore(ctx, t)

	d, err := dispatcher.New(&ai.Config{
		DefaultModel: string(dispatcher.ModelLlama32_3B),
		Ollama:       ai.ProviderConfig{BaseURL: "http://127.0.0.1:1/v1", Timeout: time.Second},
	}, dispatcher.WithService(dispatcher.ModelLlama32_3B, &stubLLM{reply: "Halo! Aku NutriBot."}))
	require.NoError(t, err)

	metrics := observability.NewMetrics(100)
	chatService := chat.NewService(d, chat.Config{}, chat.WithSessions(session.NewDBStore(st)), chat.WithMetrics(metrics))
	p := &profile.Profile{JWTSecret: "test-secret", DefaultModel: string(dispatcher.ModelLlama32_3B), Version: "test"}

	e := echo.New()
	svc := NewAPIV1Service(p, st, chatService, metrics)
	svc.RegisterRoutes(e)
	return &testServer{echo: e, service: svc}
}

func (ts *testServer) do(t *testing.T, method, path, body, token string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)

	var out map[string]any
	if strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func (ts *testServer) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	rec, _ := ts.do(t, http.MethodPost, "/api/auth/register",
		`{"username":"`+username+`","email":"`+username+`@example.com","password":"rahasia123"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec, body := ts.do(t, http.MethodPost, "/api/auth/login",
		`{"username":"`+username+`","password":"rahasia123"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	token, _ := body["access_token"].(string)
	require.NotEmpty(t, token)
	return token
}

func TestHealthAndBanner(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", body["status"])

	rec, body = ts.do(t, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "test", body["version"])
}

func TestListModels(t *testing.T) {
	ts := newTestServer(t)
	rec, body := ts.do(t, http.MethodGet, "/api/models", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "llama3.2:3b", body["default_model"])

	models, _ := body["models"].([]any)
	ids := []string{}
	for _, m := range models {
		ids = append(ids, m.(map[string]any)["id"].(string))
	}
	assert.Contains(t, ids, "llama3.2:3b")
	assert.Contains(t, ids, "gemini-2.0-flash")
}

func TestChat(t *testing.T) {
	ts := newTestServer(t)

	t.Run("anonymous", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Halo","model":"llama3.2:3b"}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Halo! Aku NutriBot.", body["reply"])
		assert.NotContains(t, body, "session_id")
		assert.NotContains(t, body, "error")
	})

	t.Run("unknown model", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Halo","model":"nonexistent-model"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "UNKNOWN_MODEL", body["code"])
	})

	t.Run("empty message", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/chat", `{"message":"  "}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ARGUMENT", body["code"])
	})

	t.Run("invalid token", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Halo"}`, "not-a-token")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("context drives nutrition summary", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/chat",
			`{"message":"Menu sarapan?","context":{"age":"25","gender":"male","height":175,"weight":70,"goal":"weight loss","activity_level":"sedentary"}}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		summary, ok := body["nutrition_summary"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "defisit", summary["goal_type"])
	})
}

func TestChat_RateLimited(t *testing.T) {
	ts := newTestServer(t)
	codes := map[int]int{}
	for i := 0; i < 8; i++ {
		rec, _ := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Halo"}`, "")
		codes[rec.Code]++
	}
	assert.Positive(t, codes[http.StatusTooManyRequests])
	assert.LessOrEqual(t, codes[http.StatusOK], 6)
}

func TestAuthFlow(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin(t, "sari")

	t.Run("duplicate username", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/auth/register",
			`{"username":"sari","email":"other@example.com","password":"rahasia123"}`, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "CONFLICT", body["code"])
	})

	t.Run("missing fields", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodPost, "/api/auth/register", `{"username":"budi"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("short password", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodPost, "/api/auth/register",
			`{"username":"budi","email":"budi@example.com","password":"123"}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/auth/login", `{"username":"sari","password":"salah123"}`, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", body["code"])
	})

	t.Run("me", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodGet, "/api/auth/me", "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "sari", body["username"])
		assert.Equal(t, "sari@example.com", body["email"])

		rec, _ = ts.do(t, http.MethodGet, "/api/auth/me", "", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("update profile", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPut, "/api/auth/profile",
			`{"age":30,"gender":"female","height":160,"weight":55,"goal":"maintenance","activity_level":"lightly active"}`, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		user := body["user"].(map[string]any)
		assert.Equal(t, 30.0, user["age"])
		assert.Equal(t, "lightly active", user["activity_level"])

		rec, _ = ts.do(t, http.MethodPut, "/api/auth/profile", `{"weight":-1}`, token)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("chat uses stored profile and persists turns", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/chat", `{"message":"Menu makan siang?"}`, token)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		sessionID, _ := body["session_id"].(string)
		require.NotEmpty(t, sessionID)
		summary, ok := body["nutrition_summary"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "maintenance", summary["goal_type"])

		rec, body = ts.do(t, http.MethodGet, "/api/chat/history?session_id="+sessionID, "", token)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 2.0, body["count"])
		messages := body["messages"].([]any)
		assert.Equal(t, "user", messages[0].(map[string]any)["role"])
		assert.Equal(t, "assistant", messages[1].(map[string]any)["role"])
		assert.Equal(t, "llama3.2:3b", messages[1].(map[string]any)["model"])
	})
}

func TestChatHistory(t *testing.T) {
	ts := newTestServer(t)
	token := ts.registerAndLogin(t, "budi")

	rec, _ := ts.do(t, http.MethodGet, "/api/chat/history", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec, body := ts.do(t, http.MethodPost, "/api/chat/history/batch",
		`{"messages":[{"message":"Halo","sender":"user"},{"message":"Hai!","sender":"ai","model_used":"qwen2.5:7b"}]}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sessionID, _ := body["session_id"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, 2.0, body["count"])

	rec, body = ts.do(t, http.MethodPost, "/api/chat/history",
		`{"message":"Lanjut","sender":"user","session_id":"`+sessionID+`"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, sessionID, body["message"].(map[string]any)["session_id"])

	rec, _ = ts.do(t, http.MethodPost, "/api/chat/history", `{"message":"x","sender":"system"}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = ts.do(t, http.MethodPost, "/api/chat/history/batch", `{"messages":[]}`, token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = ts.do(t, http.MethodGet, "/api/chat/history?limit=2", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	messages := body["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "Hai!", messages[0].(map[string]any)["content"])
	assert.Equal(t, "Lanjut", messages[1].(map[string]any)["content"])

	rec, _ = ts.do(t, http.MethodGet, "/api/chat/history?limit=zero", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body = ts.do(t, http.MethodGet, "/api/chat/history/sessions", "", token)
	require.Equal(t, http.StatusOK, rec.Code)
	sessions := body["sessions"].([]any)
	require.Len(t, sessions, 1)
	assert.Equal(t, sessionID, sessions[0].(map[string]any)["session_id"])
	assert.Equal(t, 3.0, sessions[0].(map[string]any)["message_count"])

	// Another user sees nothing.
	other := ts.registerAndLogin(t, "wati")
	rec, body = ts.do(t, http.MethodGet, "/api/chat/history/sessions", "", other)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, body["sessions"])
}

func TestCalculateNutrition(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodPost, "/api/nutrition",
		`{"age":25,"gender":"male","height":170,"weight":70,"activity_level":"moderately active","goal":"turun berat badan"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.InDelta(t, 1642.5, body["bmr"], 0.001)
	assert.Equal(t, -500.0, body["adjustment"])
	assert.Equal(t, "defisit", body["goal_type"])
	assert.Equal(t, 30.0, body["macros"].(map[string]any)["protein_percentage"])

	rec, body = ts.do(t, http.MethodPost, "/api/nutrition",
		`{"age":25,"gender":"male","height":170,"weight":70,"activity_level":"moderately active","goal":"maintenance","macro_split":"high_protein"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 40.0, body["macros"].(map[string]any)["protein_percentage"])

	rec, _ = ts.do(t, http.MethodPost, "/api/nutrition", `{"age":25}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/nutrition",
		`{"age":25,"gender":"male","height":170,"weight":70,"activity_level":"sedentary","goal":"maintenance","macro_split":"keto"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFoodEndpoints(t *testing.T) {
	ts := newTestServer(t)

	t.Run("search", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/search-foods", `{"query":"chicken"}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 1.0, body["count"])
		food := body["foods"].([]any)[0].(map[string]any)
		assert.Equal(t, 171477.0, food["fdc_id"])
		assert.Equal(t, 165.0, food["nutrients"].(map[string]any)["calories"])

		rec, _ = ts.do(t, http.MethodPost, "/api/search-foods", `{"query":" "}`, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("details", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodGet, "/api/food-details/171477", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Poultry Products", body["category"])
		assert.Len(t, body["portions"], 2)

		rec, body = ts.do(t, http.MethodGet, "/api/food-details/1", "", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "NOT_FOUND", body["code"])

		rec, _ = ts.do(t, http.MethodGet, "/api/food-details/abc", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("alternatives", func(t *testing.T) {
		rec, body := ts.do(t, http.MethodPost, "/api/suggest-alternatives", `{"min_protein":20,"max_calories":200}`, "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		ids := []float64{}
		for _, a := range body["alternatives"].([]any) {
			ids = append(ids, a.(map[string]any)["fdc_id"].(float64))
		}
		assert.ElementsMatch(t, []float64{171477, 174272}, ids)
	})
}

func TestGetMetricsOverview(t *testing.T) {
	ts := newTestServer(t)

	rec, body := ts.do(t, http.MethodGet, "/api/system/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, body["total_requests"])

	rec, _ = ts.do(t, http.MethodPost, "/api/chat", `{"message":"Halo"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = ts.do(t, http.MethodGet, "/api/system/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["total_requests"])
	assert.Equal(t, 100.0, body["success_rate"])
	models := body["models"].([]any)
	require.Len(t, models, 1)
	assert.Equal(t, "llama3.2:3b", models[0].(map[string]any)["model"])
}
