package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/internal/profile"
	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/plugin/ai/cache"
	"github.com/hrygo/nutribot/plugin/ai/dispatcher"
	"github.com/hrygo/nutribot/plugin/ai/rag"
	"github.com/hrygo/nutribot/plugin/ai/session"
	"github.com/hrygo/nutribot/server/internal/observability"
	apiv1 "github.com/hrygo/nutribot/server/router/api/v1"
	"github.com/hrygo/nutribot/server/runner/embedding"
	"github.com/hrygo/nutribot/server/service/chat"
	"github.com/hrygo/nutribot/store"
)

const metricsWindow = 1000

type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer      *echo.Echo
	retrievalCache  *cache.Service[[]rag.Record]
	embeddingRunner *embedding.Runner
	runnerCancel    context.CancelFunc
}

func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	s := &Server{
		Profile: profile,
		Store:   store,
	}

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(middleware.Recover())
	echoServer.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     profile.AllowedOrigins(),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	s.echoServer = echoServer

	aiConfig := ai.NewConfigFromProfile(profile)
	if err := aiConfig.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid AI configuration")
	}
	modelDispatcher, err := dispatcher.New(aiConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create model dispatcher")
	}

	cacheConfig := cache.DefaultServiceConfig()
	s.retrievalCache = cache.NewService[[]rag.Record](cacheConfig)
	sources := []rag.Source{rag.NewKeywordSource(store)}
	if profile.IsEmbeddingEnabled() && profile.Driver == "postgres" {
		embedder, err := ai.NewEmbeddingService(&aiConfig.Embedding)
		if err != nil {
			slog.Warn("vector food search disabled", "error", err)
		} else {
			sources = append(sources, rag.NewVectorSource(store, embedder))
			s.embeddingRunner = embedding.NewRunner(rag.NewIndexer(store, embedder, 0), 0)
		}
	}
	retriever := rag.NewRetriever(profile.MaxRetrievedRecords, sources, rag.WithCache(s.retrievalCache.LRU, cacheConfig.DefaultTTL))

	metrics := observability.NewMetrics(metricsWindow)
	chatService := chat.NewService(modelDispatcher, chat.Config{
		RetrievalEnabled: profile.RetrievalEnabled,
		MaxRetrieved:     profile.MaxRetrievedRecords,
		MaxPromptTokens:  profile.MaxPromptTokens,
		// Each attempt gets the full backend timeout.
		RequestTimeout: profile.RequestTimeout * time.Duration(profile.ModelRetries+1),
	},
		chat.WithRetriever(retriever),
		chat.WithSessions(session.NewDBStore(store)),
		chat.WithMetrics(metrics),
	)

	apiV1Service := apiv1.NewAPIV1Service(profile, store, chatService, metrics)
	apiV1Service.RegisterRoutes(echoServer)

	slog.Info("chat service ready",
		"default_model", profile.DefaultModel,
		"retrieval", profile.RetrievalEnabled,
		"vector_search", s.embeddingRunner != nil)
	return s, nil
}

func (s *Server) Start(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return errors.Wrap(err, "failed to listen")
	}
	s.echoServer.Listener = listener

	s.startBackgroundRunners(ctx)

	go func() {
		if err := s.echoServer.Start(address); err != nil && err != http.ErrServerClosed {
			slog.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	slog.Info("server shutting down")

	if s.runnerCancel != nil {
		s.runnerCancel()
	}
	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown server", slog.String("error", err.Error()))
	}
	s.retrievalCache.Close()
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close database", slog.String("error", err.Error()))
	}

	slog.Info("nutribot stopped properly")
}

// ServeHTTP lets the server be driven without a listener.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echoServer.ServeHTTP(w, r)
}

func (s *Server) startBackgroundRunners(ctx context.Context) {
	if s.embeddingRunner == nil {
		return
	}
	runnerCtx, cancel := context.WithCancel(ctx)
	s.runnerCancel = cancel
	go s.embeddingRunner.Run(runnerCtx)
}
