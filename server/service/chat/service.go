// Package chat runs one NutriBot chat turn: it builds the user context,
// retrieves food facts, composes the prompt, calls the selected model,
// extracts structured data from the reply and records the turn.
package chat

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/hrygo/nutribot/plugin/ai"
	aicontext "github.com/hrygo/nutribot/plugin/ai/context"
	"github.com/hrygo/nutribot/plugin/ai/dispatcher"
	"github.com/hrygo/nutribot/plugin/ai/rag"
	"github.com/hrygo/nutribot/plugin/ai/session"
	"github.com/hrygo/nutribot/plugin/ai/structured"
	"github.com/hrygo/nutribot/plugin/ai/timeout"
	"github.com/hrygo/nutribot/plugin/nutrition"
	"github.com/hrygo/nutribot/server/internal/observability"
)

// ApologyReply is returned as the reply when no model could answer.
const ApologyReply = "Maaf, NutriBot sedang tidak bisa menjawab. Coba lagi ya! 🙏"

// BlocksOnlyReply is the reply text when the model sent structured data
// without prose or a summary.
const BlocksOnlyReply = "Berikut hasil perhitungan dan rencana untuk kamu."

const (
	warnHistoryLoad = "chat history could not be loaded"
	warnHistorySave = "chat history could not be saved"
)

// ErrEmptyMessage is returned for a blank message.
var ErrEmptyMessage = aicontext.ErrEmptyMessage

// Retriever finds grounding records for a query.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) []rag.Record
}

// Dispatcher sends prompts to a model.
type Dispatcher interface {
	Resolve(raw string) (dispatcher.ModelID, error)
	Dispatch(ctx context.Context, prompt []ai.Message, modelID dispatcher.ModelID) (string, error)
}

// Config holds the chat tunables.
type Config struct {
	RetrievalEnabled bool
	MaxRetrieved     int
	MaxPromptTokens  int
	// RequestTimeout bounds the model call of one turn.
	RequestTimeout time.Duration
}

// Request is one chat turn.
type Request struct {
	Message string
	// History is the client-held conversation, oldest first. When empty and
	// the caller is authenticated, the stored session history is used.
	History   []ai.Message
	Model     string
	Profile   *aicontext.RawProfile
	SessionID string
	// UserID is zero for anonymous callers.
	UserID int32
}

// Response is the result of one chat turn.
type Response struct {
	Reply            string                   `json:"reply"`
	Model            string                   `json:"model"`
	NutritionSummary *nutrition.Summary       `json:"nutrition_summary,omitempty"`
	MealPlanSummary  string                   `json:"meal_plan_summary,omitempty"`
	MealCalendar     []structured.CalendarDay `json:"meal_calendar,omitempty"`
	Error            string                   `json:"error,omitempty"`
	Warning          string                   `json:"warning,omitempty"`
	SessionID        string                   `json:"session_id,omitempty"`
}

// Service orchestrates chat turns.
type Service struct {
	retriever  Retriever
	dispatcher Dispatcher
	sessions   session.Store
	composer   *aicontext.Composer
	metrics    *observability.Metrics
	logger     *slog.Logger
	cfg        Config
}

// Option configures a Service.
type Option func(*Service)

// WithSessions enables history loading and persistence for authenticated callers.
func WithSessions(s session.Store) Option {
	return func(svc *Service) { svc.sessions = s }
}

// WithRetriever enables grounding.
func WithRetriever(r Retriever) Option {
	return func(svc *Service) { svc.retriever = r }
}

// WithMetrics records per-model request metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(svc *Service) { svc.metrics = m }
}

// WithLogger overrides slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

// NewService creates a chat Service.
func NewService(d Dispatcher, cfg Config, opts ...Option) *Service {
	if cfg.MaxRetrieved <= 0 {
		cfg.MaxRetrieved = rag.DefaultMaxRecords
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = timeout.LocalModelTimeout
	}
	s := &Service{
		dispatcher: d,
		composer:   aicontext.NewComposer(cfg.MaxPromptTokens),
		logger:     slog.Default(),
		cfg:        cfg,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Chat answers one message. It fails only for an empty message, an unknown
// model id or a canceled request; an unavailable model yields ApologyReply
// with Error set.
func (s *Service) Chat(ctx context.Context, req *Request) (*Response, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	modelID, err := s.dispatcher.Resolve(req.Model)
	if err != nil {
		return nil, err
	}

	rc := observability.NewRequestContext(s.logger, req.UserID, req.SessionID)
	rc.Model = string(modelID)
	profile := aicontext.BuildProfile(req.Profile)
	resp := &Response{Model: string(modelID)}

	authenticated := req.UserID > 0 && s.sessions != nil
	history := sanitizeHistory(req.History)

	var records []rag.Record
	g, gctx := errgroup.WithContext(ctx)
	if s.retriever != nil && s.cfg.RetrievalEnabled && rag.IsFoodQuery(message) {
		g.Go(func() error {
			rctx, cancel := context.WithTimeout(gctx, timeout.RetrievalTimeout)
			defer cancel()
			query := strings.Join(rag.ExtractFoodTerms(message), " ")
			records = rag.FilterAllergens(s.retriever.Search(rctx, query, s.cfg.MaxRetrieved), profile.Allergies)
			return nil
		})
	}
	if authenticated && req.SessionID != "" && len(history) == 0 {
		g.Go(func() error {
			hctx, cancel := context.WithTimeout(gctx, timeout.HistoryTimeout)
			defer cancel()
			stored, err := session.RecoverHistory(hctx, s.sessions, req.UserID, req.SessionID)
			if err != nil {
				rc.Warn("failed to load chat history", slog.String("error", err.Error()))
				resp.Warning = warnHistoryLoad
				return nil
			}
			history = stored
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prompt, err := s.composer.Compose(&aicontext.ComposeRequest{
		Profile: profile,
		Records: records,
		History: history,
		Message: message,
	})
	if err != nil {
		return nil, err
	}
	rc.Debug("prompt composed",
		slog.Int(observability.LogFieldRecords, len(records)),
		slog.Int(observability.LogFieldTokens, prompt.Tokens),
		slog.Int("dropped_turns", prompt.DroppedTurns),
		slog.Int("dropped_records", prompt.DroppedRecords))

	dctx, cancel := context.WithTimeout(ctx, s.cfg.RequestTimeout)
	start := time.Now()
	reply, err := s.dispatcher.Dispatch(dctx, prompt.Messages, modelID)
	cancel()
	s.record(modelID, time.Since(start), err != nil)

	switch {
	case err == nil:
		s.applyReply(rc, resp, reply)
	case ctx.Err() != nil:
		// The caller canceled the request.
		return nil, ctx.Err()
	case dispatcher.IsBackendUnavailable(err):
		rc.Warn("model unavailable", slog.String("error", err.Error()))
		resp.Reply = ApologyReply
		resp.Error = err.Error()
	default:
		return nil, err
	}

	if resp.NutritionSummary == nil {
		if in, ok := profile.NutritionInput(); ok {
			resp.NutritionSummary = nutrition.Calculate(in)
		}
	}

	// A failed turn is not recorded, so stored history never holds an
	// unanswered question or the apology text.
	if authenticated && resp.Error == "" {
		s.persist(ctx, rc, req, resp, message)
	}

	rc.Info("chat completed",
		slog.Int(observability.LogFieldMessageLen, len(message)),
		slog.Int64(observability.LogFieldDuration, rc.DurationMs()),
		slog.Bool("failed", resp.Error != ""))
	return resp, nil
}

func (s *Service) applyReply(rc *observability.RequestContext, resp *Response, reply string) {
	result := structured.Extract(reply)
	for _, blockErr := range result.Errors {
		rc.Debug("dropped malformed block", slog.String("error", blockErr.Error()))
	}
	resp.Reply = result.Prose
	if strings.TrimSpace(resp.Reply) == "" {
		// The model answered with blocks only.
		resp.Reply = result.Reply.Summary
		if resp.Reply == "" {
			resp.Reply = BlocksOnlyReply
		}
	}
	resp.NutritionSummary = result.Reply.Nutrition
	resp.MealCalendar = result.Reply.Calendar
	resp.MealPlanSummary = result.Reply.Summary
}

func (s *Service) persist(ctx context.Context, rc *observability.RequestContext, req *Request, resp *Response, message string) {
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	resp.SessionID = sessionID
	rc.SessionID = sessionID

	// The turn is stored even if the client disconnects after the reply.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout.HistoryTimeout)
	defer cancel()
	_, err := s.sessions.AppendBatch(pctx, req.UserID, sessionID, []*session.Turn{
		{Role: session.RoleUser, Content: message},
		{Role: session.RoleAssistant, Content: resp.Reply, Model: resp.Model},
	})
	if err != nil {
		rc.Warn("failed to save chat turn", slog.String("error", err.Error()))
		resp.Warning = warnHistorySave
	}
}

func (s *Service) record(modelID dispatcher.ModelID, d time.Duration, failed bool) {
	if s.metrics != nil {
		s.metrics.RecordRequest(string(modelID), d, failed)
	}
}

// sanitizeHistory keeps user and assistant turns with content. Clients use
// "ai", "bot" or "model" for the assistant.
func sanitizeHistory(in []ai.Message) []ai.Message {
	out := make([]ai.Message, 0, len(in))
	for _, m := range in {
		content := strings.TrimSpace(m.Content)
		if content == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(m.Role)) {
		case ai.RoleUser:
			out = append(out, ai.Message{Role: ai.RoleUser, Content: content})
		case ai.RoleAssistant, "ai", "bot", "model":
			out = append(out, ai.Message{Role: ai.RoleAssistant, Content: content})
		}
	}
	return out
}
