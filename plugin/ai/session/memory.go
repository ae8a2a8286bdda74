package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
)

type ownedTurn struct {
	owner int32
	turn  Turn
}

// MemoryStore is an in-process Store for tests and store-less deployments.
type MemoryStore struct {
	mu    sync.RWMutex
	turns []ownedTurn
	seq   int32
	err   error
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// FailWith makes every following call fail with err wrapped in a StoreError.
// A nil err restores normal behavior.
func (m *MemoryStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MemoryStore) Append(_ context.Context, owner int32, sessionID string, turn *Turn) (*Turn, error) {
	if err := validate("append", sessionID, turn); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, &StoreError{Op: "append", SessionID: sessionID, Err: m.err}
	}
	t := m.insert(owner, sessionID, turn)
	return &t, nil
}

func (m *MemoryStore) AppendBatch(_ context.Context, owner int32, sessionID string, turns []*Turn) ([]*Turn, error) {
	for _, turn := range turns {
		if err := validate("append batch", sessionID, turn); err != nil {
			return nil, err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, &StoreError{Op: "append batch", SessionID: sessionID, Err: m.err}
	}
	out := make([]*Turn, 0, len(turns))
	for _, turn := range turns {
		t := m.insert(owner, sessionID, turn)
		out = append(out, &t)
	}
	return out, nil
}

func (m *MemoryStore) List(_ context.Context, owner int32, sessionID string, limit int) ([]*Turn, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, &StoreError{Op: "list", SessionID: sessionID, Err: m.err}
	}

	var matched []Turn
	for _, ot := range m.turns {
		if ot.owner == owner && (sessionID == "" || ot.turn.SessionID == sessionID) {
			matched = append(matched, ot.turn)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.CreatedAt.Unix() != b.CreatedAt.Unix() {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}
	out := make([]*Turn, len(matched))
	for i := range matched {
		out[i] = &matched[i]
	}
	return out, nil
}

func (m *MemoryStore) ListSessions(_ context.Context, owner int32) ([]*Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, &StoreError{Op: "list sessions", Err: m.err}
	}

	type agg struct {
		summary *Summary
		lastID  int32
	}
	bySession := map[string]*agg{}
	for _, ot := range m.turns {
		if ot.owner != owner {
			continue
		}
		t := ot.turn
		a, ok := bySession[t.SessionID]
		if !ok {
			a = &agg{summary: &Summary{SessionID: t.SessionID, StartedAt: t.CreatedAt, LastMessageAt: t.CreatedAt}}
			bySession[t.SessionID] = a
		}
		a.summary.TurnCount++
		if t.CreatedAt.Before(a.summary.StartedAt) {
			a.summary.StartedAt = t.CreatedAt
		}
		if t.CreatedAt.After(a.summary.LastMessageAt) {
			a.summary.LastMessageAt = t.CreatedAt
		}
		a.lastID = max(a.lastID, t.ID)
	}

	aggs := make([]*agg, 0, len(bySession))
	for _, a := range bySession {
		aggs = append(aggs, a)
	}
	sort.Slice(aggs, func(i, j int) bool {
		if !aggs[i].summary.LastMessageAt.Equal(aggs[j].summary.LastMessageAt) {
			return aggs[i].summary.LastMessageAt.After(aggs[j].summary.LastMessageAt)
		}
		return aggs[i].lastID > aggs[j].lastID
	})
	out := make([]*Summary, len(aggs))
	for i, a := range aggs {
		out[i] = a.summary
	}
	return out, nil
}

// insert must be called with mu held.
func (m *MemoryStore) insert(owner int32, sessionID string, turn *Turn) Turn {
	m.seq++
	t := *turn
	t.ID = m.seq
	t.UID = shortuuid.New()
	t.SessionID = sessionID
	if t.CreatedAt.IsZero() {
		t.CreatedAt = m.now()
	}
	// Match the second precision of the database stores.
	t.CreatedAt = time.Unix(t.CreatedAt.Unix(), 0).UTC()
	m.turns = append(m.turns, ownedTurn{owner: owner, turn: t})
	return t
}

var _ Store = (*MemoryStore)(nil)
