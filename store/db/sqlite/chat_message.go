package sqlite

import (
	"context"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/hrygo/nutribot/store"
)

func (d *DB) CreateChatMessage(ctx context.Context, create *store.ChatMessage) (*store.ChatMessage, error) {
	fields := []string{"uid", "user_id", "session_id", "role", "content", "model_used", "created_ts"}
	args := []any{create.UID, create.UserID, create.SessionID, string(create.Role), create.Content, create.ModelUsed, create.CreatedTs}
	stmt := "INSERT INTO chat_message (`" + strings.Join(fields, "`, `") + "`) VALUES (" + placeholders(len(args)) + ") RETURNING id"
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
		return nil, errors.Wrap(err, "failed to create chat message")
	}
	return create, nil
}

func (d *DB) CreateChatMessages(ctx context.Context, creates []*store.ChatMessage) ([]*store.ChatMessage, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	fields := []string{"uid", "user_id", "session_id", "role", "content", "model_used", "created_ts"}
	stmt := "INSERT INTO chat_message (`" + strings.Join(fields, "`, `") + "`) VALUES (" + placeholders(len(fields)) + ") RETURNING id"
	for _, create := range creates {
		args := []any{create.UID, create.UserID, create.SessionID, string(create.Role), create.Content, create.ModelUsed, create.CreatedTs}
		if err := tx.QueryRowContext(ctx, stmt, args...).Scan(&create.ID); err != nil {
			return nil, errors.Wrap(err, "failed to create chat message")
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit chat messages")
	}
	return creates, nil
}

func (d *DB) ListChatMessages(ctx context.Context, find *store.FindChatMessage) ([]*store.ChatMessage, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.UserID; v != nil {
		where, args = append(where, "user_id = ?"), append(args, *v)
	}
	if v := find.SessionID; v != nil {
		where, args = append(where, "session_id = ?"), append(args, *v)
	}

	query := "SELECT id, uid, user_id, session_id, role, content, model_used, created_ts FROM chat_message WHERE " +
		strings.Join(where, " AND ") + " ORDER BY created_ts DESC, id DESC"
	if find.Limit != nil {
		query, args = query+" LIMIT ?", append(args, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat messages")
	}
	defer rows.Close()

	list := make([]*store.ChatMessage, 0)
	for rows.Next() {
		m := &store.ChatMessage{}
		var role string
		if err := rows.Scan(&m.ID, &m.UID, &m.UserID, &m.SessionID, &role, &m.Content, &m.ModelUsed, &m.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat message")
		}
		m.Role = store.ChatRole(role)
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat messages")
	}
	slices.Reverse(list)
	return list, nil
}

func (d *DB) ListChatSessions(ctx context.Context, find *store.FindChatSession) ([]*store.ChatSession, error) {
	query := `SELECT session_id, MIN(created_ts), MAX(created_ts), COUNT(*) FROM chat_message
		WHERE user_id = ?
		GROUP BY session_id
		ORDER BY MAX(created_ts) DESC, MAX(id) DESC`
	rows, err := d.db.QueryContext(ctx, query, find.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list chat sessions")
	}
	defer rows.Close()

	list := make([]*store.ChatSession, 0)
	for rows.Next() {
		s := &store.ChatSession{}
		if err := rows.Scan(&s.SessionID, &s.StartedTs, &s.LastActiveTs, &s.MessageCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan chat session")
		}
		list = append(list, s)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate chat sessions")
	}
	return list, nil
}
