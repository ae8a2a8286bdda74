package session

import (
	"context"
	"time"

	"github.com/lithammer/shortuuid/v4"

	"github.com/hrygo/nutribot/store"
)

// DBStore implements Store on top of the chat_message table.
type DBStore struct {
	store *store.Store
	now   func() time.Time
}

// NewDBStore creates a Store backed by s.
func NewDBStore(s *store.Store) *DBStore {
	return &DBStore{store: s, now: time.Now}
}

// Append stores one turn.
func (s *DBStore) Append(ctx context.Context, owner int32, sessionID string, turn *Turn) (*Turn, error) {
	if err := validate("append", sessionID, turn); err != nil {
		return nil, err
	}
	created, err := s.store.CreateChatMessage(ctx, s.toMessage(owner, sessionID, turn))
	if err != nil {
		return nil, &StoreError{Op: "append", SessionID: sessionID, Err: err}
	}
	return fromMessage(created), nil
}

// AppendBatch stores turns in a single transaction.
func (s *DBStore) AppendBatch(ctx context.Context, owner int32, sessionID string, turns []*Turn) ([]*Turn, error) {
	creates := make([]*store.ChatMessage, 0, len(turns))
	for _, turn := range turns {
		if err := validate("append batch", sessionID, turn); err != nil {
			return nil, err
		}
		creates = append(creates, s.toMessage(owner, sessionID, turn))
	}
	created, err := s.store.CreateChatMessages(ctx, creates)
	if err != nil {
		return nil, &StoreError{Op: "append batch", SessionID: sessionID, Err: err}
	}
	out := make([]*Turn, 0, len(created))
	for _, m := range created {
		out = append(out, fromMessage(m))
	}
	return out, nil
}

// List returns the most recent turns, oldest first.
func (s *DBStore) List(ctx context.Context, owner int32, sessionID string, limit int) ([]*Turn, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	find := &store.FindChatMessage{UserID: &owner, Limit: &limit}
	if sessionID != "" {
		find.SessionID = &sessionID
	}
	list, err := s.store.ListChatMessages(ctx, find)
	if err != nil {
		return nil, &StoreError{Op: "list", SessionID: sessionID, Err: err}
	}
	turns := make([]*Turn, 0, len(list))
	for _, m := range list {
		turns = append(turns, fromMessage(m))
	}
	return turns, nil
}

// ListSessions returns session summaries, most recent first.
func (s *DBStore) ListSessions(ctx context.Context, owner int32) ([]*Summary, error) {
	list, err := s.store.ListChatSessions(ctx, &store.FindChatSession{UserID: owner})
	if err != nil {
		return nil, &StoreError{Op: "list sessions", Err: err}
	}
	summaries := make([]*Summary, 0, len(list))
	for _, cs := range list {
		summaries = append(summaries, &Summary{
			SessionID:     cs.SessionID,
			StartedAt:     time.Unix(cs.StartedTs, 0).UTC(),
			LastMessageAt: time.Unix(cs.LastActiveTs, 0).UTC(),
			TurnCount:     int(cs.MessageCount),
		})
	}
	return summaries, nil
}

func (s *DBStore) toMessage(owner int32, sessionID string, turn *Turn) *store.ChatMessage {
	createdAt := turn.CreatedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	return &store.ChatMessage{
		UID:       shortuuid.New(),
		UserID:    owner,
		SessionID: sessionID,
		Role:      store.ChatRole(turn.Role),
		Content:   turn.Content,
		ModelUsed: turn.Model,
		CreatedTs: createdAt.Unix(),
	}
}

func fromMessage(m *store.ChatMessage) *Turn {
	return &Turn{
		ID:        m.ID,
		UID:       m.UID,
		SessionID: m.SessionID,
		Role:      Role(m.Role),
		Content:   m.Content,
		Model:     m.ModelUsed,
		CreatedAt: time.Unix(m.CreatedTs, 0).UTC(),
	}
}

var _ Store = (*DBStore)(nil)
