package v1

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hrygo/nutribot/plugin/ai/session"
	"github.com/hrygo/nutribot/server/auth"
	apierrors "github.com/hrygo/nutribot/server/internal/errors"
)

// chatMessageRequest is one turn as clients send it: "sender" is "user" or
// "ai"/"assistant".
type chatMessageRequest struct {
	Message   string `json:"message"`
	Sender    string `json:"sender"`
	ModelUsed string `json:"model_used"`
	SessionID string `json:"session_id"`
}

type chatMessagesRequest struct {
	SessionID string               `json:"session_id"`
	Messages  []chatMessageRequest `json:"messages"`
}

type turnView struct {
	ID        int32  `json:"id"`
	UID       string `json:"uid"`
	SessionID string `json:"session_id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Model     string `json:"model,omitempty"`
	CreatedAt string `json:"created_at"`
}

type sessionView struct {
	SessionID     string `json:"session_id"`
	StartedAt     string `json:"started_at"`
	LastMessageAt string `json:"last_message_at"`
	MessageCount  int    `json:"message_count"`
}

type chatHistoryResponse struct {
	Messages []turnView `json:"messages"`
	Count    int        `json:"count"`
}

type chatMessagesResponse struct {
	SessionID string     `json:"session_id"`
	Messages  []turnView `json:"messages"`
	Count     int        `json:"count"`
}

func convertTurns(turns []*session.Turn) []turnView {
	views := make([]turnView, 0, len(turns))
	for _, t := range turns {
		views = append(views, turnView{
			ID:        t.ID,
			UID:       t.UID,
			SessionID: t.SessionID,
			Role:      string(t.Role),
			Content:   t.Content,
			Model:     t.Model,
			CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return views
}

func (r *chatMessageRequest) toTurn() (*session.Turn, error) {
	role, ok := session.ParseRole(r.Sender)
	if !ok {
		return nil, apierrors.InvalidArgument("sender must be user or ai")
	}
	if strings.TrimSpace(r.Message) == "" {
		return nil, apierrors.InvalidArgument("message is required")
	}
	return &session.Turn{Role: role, Content: r.Message, Model: strings.TrimSpace(r.ModelUsed)}, nil
}

func storeError(err error) error {
	if errors.Is(err, session.ErrInvalidTurn) {
		return apierrors.Wrap(err, apierrors.ErrCodeInvalidArgument, "invalid chat message")
	}
	return apierrors.Internal("chat history unavailable", err)
}

// ListChatHistory returns the caller's most recent turns, oldest first.
// GET /api/chat/history?session_id=&limit=
func (s *APIV1Service) ListChatHistory(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := auth.UserIDFromContext(ctx)

	limit := session.DefaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return writeError(c, apierrors.InvalidArgument("limit must be a positive integer"))
		}
		limit = n
	}
	turns, err := s.Sessions.List(ctx, userID, strings.TrimSpace(c.QueryParam("session_id")), limit)
	if err != nil {
		return writeError(c, storeError(err))
	}
	views := convertTurns(turns)
	return c.JSON(http.StatusOK, chatHistoryResponse{Messages: views, Count: len(views)})
}

// SaveChatMessage appends one turn. A missing session id starts a new session.
// POST /api/chat/history
func (s *APIV1Service) SaveChatMessage(c echo.Context) error {
	var req chatMessageRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	turn, err := req.toTurn()
	if err != nil {
		return writeError(c, err)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := c.Request().Context()
	userID, _ := auth.UserIDFromContext(ctx)
	saved, err := s.Sessions.Append(ctx, userID, sessionID, turn)
	if err != nil {
		return writeError(c, storeError(err))
	}
	return c.JSON(http.StatusCreated, map[string]turnView{"message": convertTurns([]*session.Turn{saved})[0]})
}

// SaveChatMessages appends several turns atomically.
// POST /api/chat/history/batch
func (s *APIV1Service) SaveChatMessages(c echo.Context) error {
	var req chatMessagesRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	if len(req.Messages) == 0 {
		return writeError(c, apierrors.InvalidArgument("messages array is required"))
	}
	turns := make([]*session.Turn, 0, len(req.Messages))
	for i := range req.Messages {
		turn, err := req.Messages[i].toTurn()
		if err != nil {
			return writeError(c, err)
		}
		turns = append(turns, turn)
	}
	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	ctx := c.Request().Context()
	userID, _ := auth.UserIDFromContext(ctx)
	saved, err := s.Sessions.AppendBatch(ctx, userID, sessionID, turns)
	if err != nil {
		return writeError(c, storeError(err))
	}
	views := convertTurns(saved)
	return c.JSON(http.StatusCreated, chatMessagesResponse{SessionID: sessionID, Messages: views, Count: len(views)})
}

// ListChatSessions returns the caller's sessions, most recent activity first.
// GET /api/chat/history/sessions
func (s *APIV1Service) ListChatSessions(c echo.Context) error {
	ctx := c.Request().Context()
	userID, _ := auth.UserIDFromContext(ctx)
	summaries, err := s.Sessions.ListSessions(ctx, userID)
	if err != nil {
		return writeError(c, storeError(err))
	}
	views := make([]sessionView, 0, len(summaries))
	for _, sum := range summaries {
		views = append(views, sessionView{
			SessionID:     sum.SessionID,
			StartedAt:     sum.StartedAt.UTC().Format(time.RFC3339),
			LastMessageAt: sum.LastMessageAt.UTC().Format(time.RFC3339),
			MessageCount:  sum.TurnCount,
		})
	}
	return c.JSON(http.StatusOK, map[string][]sessionView{"sessions": views})
}
