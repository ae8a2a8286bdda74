package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/plugin/ai/session"
	"github.com/hrygo/nutribot/server/auth"
	"github.com/hrygo/nutribot/server/internal/observability"
	"github.com/hrygo/nutribot/server/middleware"
	"github.com/hrygo/nutribot/server/service/chat"
	"github.com/hrygo/nutribot/store"
)

type APIV1Service struct {
	Profile     *profile.Profile
	Store       *store.Store
	ChatService *chat.Service
	Sessions    session.Store
	Metrics     *observability.Metrics

	authenticator *auth.Authenticator
	rateLimiter   *middleware.RateLimiter
	now           func() time.Time
}

func NewAPIV1Service(profile *profile.Profile, store *store.Store, chatService *chat.Service, metrics *observability.Metrics) *APIV1Service {
	return &APIV1Service{
		Profile:       profile,
		Store:         store,
		ChatService:   chatService,
		Sessions:      session.NewDBStore(store),
		Metrics:       metrics,
		authenticator: auth.NewAuthenticator(profile.JWTSecret),
		rateLimiter:   middleware.NewRateLimiter(middleware.DefaultRate, middleware.DefaultBurst),
		now:           time.Now,
	}
}

// RegisterRoutes registers the HTTP API with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(e *echo.Echo) {
	optionalAuth := s.authenticator.Middleware(false)
	requiredAuth := s.authenticator.Middleware(true)

	e.GET("/health", s.Health)
	e.GET("/", s.Banner)

	api := e.Group("/api")
	api.POST("/chat", s.Chat, s.rateLimiter.Middleware(), optionalAuth)
	api.GET("/models", s.ListModels)
	api.POST("/nutrition", s.CalculateNutrition)
	api.POST("/search-foods", s.SearchFoods)
	api.GET("/food-details/:fdc_id", s.GetFoodDetails)
	api.POST("/suggest-alternatives", s.SuggestAlternatives)
	api.GET("/system/metrics", s.GetMetricsOverview)

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.Register)
	authGroup.POST("/login", s.Login)
	authGroup.GET("/me", s.GetCurrentUser, requiredAuth)
	authGroup.PUT("/profile", s.UpdateProfile, requiredAuth)

	history := api.Group("/chat/history", requiredAuth)
	history.GET("", s.ListChatHistory)
	history.POST("", s.SaveChatMessage)
	history.POST("/batch", s.SaveChatMessages)
	history.GET("/sessions", s.ListChatSessions)
}

// Health reports liveness.
// GET /health
func (s *APIV1Service) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "NutriBot API",
	})
}

// Banner describes the service.
// GET /
func (s *APIV1Service) Banner(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "NutriBot API is running",
		"version": s.Profile.Version,
	})
}
