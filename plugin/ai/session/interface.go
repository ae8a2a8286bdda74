// Package session persists chat turns per owner and session.
// Turns are append-only: there is no update or delete.
package session

import (
	"context"
	"strings"
	"time"
)

// DefaultListLimit is used when List is called with a non-positive limit.
const DefaultListLimit = 50

// Role is who produced a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole accepts "user", "assistant" and the legacy "ai" sender name.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "user":
		return RoleUser, true
	case "assistant", "ai":
		return RoleAssistant, true
	}
	return "", false
}

// Turn is one stored chat message.
type Turn struct {
	ID        int32 // insertion sequence
	UID       string
	SessionID string
	Role      Role
	Content   string
	Model     string // empty for user turns
	CreatedAt time.Time
}

// Summary describes one session, derived from its turns.
type Summary struct {
	SessionID     string
	StartedAt     time.Time
	LastMessageAt time.Time
	TurnCount     int
}

// Store is the chat history persistence contract.
type Store interface {
	// Append stores one turn and returns it with ID, UID and CreatedAt set.
	Append(ctx context.Context, owner int32, sessionID string, turn *Turn) (*Turn, error)

	// AppendBatch stores all turns or none.
	AppendBatch(ctx context.Context, owner int32, sessionID string, turns []*Turn) ([]*Turn, error)

	// List returns the most recent limit turns, oldest first. Ties on
	// timestamp are broken by insertion order. An empty sessionID lists
	// across all sessions of owner.
	List(ctx context.Context, owner int32, sessionID string, limit int) ([]*Turn, error)

	// ListSessions returns the owner's sessions, most recently active first.
	ListSessions(ctx context.Context, owner int32) ([]*Summary, error)
}
