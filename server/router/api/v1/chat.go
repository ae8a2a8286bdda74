package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hrygo/nutribot/plugin/ai"
	aicontext "github.com/hrygo/nutribot/plugin/ai/context"
	"github.com/hrygo/nutribot/plugin/ai/dispatcher"
	"github.com/hrygo/nutribot/server/auth"
	apierrors "github.com/hrygo/nutribot/server/internal/errors"
	"github.com/hrygo/nutribot/server/service/chat"
	"github.com/hrygo/nutribot/store"
)

type historyMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message   string                `json:"message"`
	History   []historyMessage      `json:"history"`
	Model     string                `json:"model"`
	Context   *aicontext.RawProfile `json:"context"`
	SessionID string                `json:"session_id"`
}

type modelsResponse struct {
	Models       []dispatcher.ModelInfo `json:"models"`
	DefaultModel string                 `json:"default_model"`
}

// Chat answers one chat message.
// POST /api/chat
func (s *APIV1Service) Chat(c echo.Context) error {
	var req chatRequest
	if err := bind(c, &req); err != nil {
		return writeError(c, err)
	}
	ctx := c.Request().Context()
	userID, _ := auth.UserIDFromContext(ctx)

	raw := req.Context
	if raw == nil && userID > 0 {
		raw = s.storedProfile(ctx, userID)
	}
	history := make([]ai.Message, 0, len(req.History))
	for _, m := range req.History {
		history = append(history, ai.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := s.ChatService.Chat(ctx, &chat.Request{
		Message:   req.Message,
		History:   history,
		Model:     req.Model,
		Profile:   raw,
		SessionID: req.SessionID,
		UserID:    userID,
	})
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, resp)
	case errors.Is(err, chat.ErrEmptyMessage):
		return writeError(c, apierrors.InvalidArgument("message is required"))
	case dispatcher.IsUnknownModel(err):
		return writeError(c, apierrors.UnknownModel(err))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return writeError(c, apierrors.Wrap(err, apierrors.ErrCodeTimeout, "request canceled"))
	default:
		return writeError(c, err)
	}
}

// storedProfile returns the saved profile of an authenticated caller who sent
// no context, or nil when it cannot be loaded.
func (s *APIV1Service) storedProfile(ctx context.Context, userID int32) *aicontext.RawProfile {
	user, err := s.Store.GetUser(ctx, &store.FindUser{ID: &userID})
	if err != nil {
		slog.Warn("failed to load user profile", "user_id", userID, "error", err)
		return nil
	}
	if user == nil {
		return nil
	}
	return rawProfileFromUser(user)
}

func rawProfileFromUser(u *store.User) *aicontext.RawProfile {
	raw := &aicontext.RawProfile{}
	if u.Age > 0 {
		raw.Age = int(u.Age)
	}
	if u.Height > 0 {
		raw.Height = u.Height
	}
	if u.Weight > 0 {
		raw.Weight = u.Weight
	}
	if u.Gender != "" {
		raw.Gender = u.Gender
	}
	if u.Goal != "" {
		raw.Goal = u.Goal
	}
	if u.ActivityLevel != "" {
		raw.ActivityLevel = u.ActivityLevel
	}
	return raw
}

// ListModels returns the recognized model ids.
// GET /api/models
func (s *APIV1Service) ListModels(c echo.Context) error {
	return c.JSON(http.StatusOK, modelsResponse{
		Models:       dispatcher.Models(),
		DefaultModel: s.Profile.DefaultModel,
	})
}
