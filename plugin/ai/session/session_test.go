package session

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/nutribot/plugin/ai"
	"github.com/hrygo/nutribot/store"
	teststore "github.com/hrygo/nutribot/store/test"
)

func newDBStore(t *testing.T) Store {
	ctx := context.Background()
	ts := teststore.NewTestingStore(ctx, t)
	for _, name := range []string{"sari", "budi"} {
		_, err := ts.CreateUser(ctx, &store.User{Username: name, Email: name + "@nutribot.test", PasswordHash: "hash"})
		require.NoError(t, err)
	}
	return NewDBStore(ts)
}

func stores(t *testing.T) map[string]func(*testing.T) Store {
	return map[string]func(*testing.T) Store{
		"memory": func(*testing.T) Store { return NewMemoryStore() },
		"db":     newDBStore,
	}
}

func at(sec int64) time.Time {
	return time.Unix(1700000000+sec, 0).UTC()
}

func TestStore_AppendAndList(t *testing.T) {
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			// The first three share a timestamp; insertion order breaks the tie.
			for i, sec := range []int64{0, 0, 0, 10, 20} {
				role := RoleUser
				if i%2 == 1 {
					role = RoleAssistant
				}
				turn, err := s.Append(ctx, 1, "s1", &Turn{Role: role, Content: fmt.Sprintf("turn %d", i), CreatedAt: at(sec)})
				require.NoError(t, err)
				assert.NotZero(t, turn.ID)
				assert.NotEmpty(t, turn.UID)
				assert.Equal(t, "s1", turn.SessionID)
			}
			_, err := s.Append(ctx, 1, "s2", &Turn{Role: RoleUser, Content: "other session", CreatedAt: at(5)})
			require.NoError(t, err)
			_, err = s.Append(ctx, 2, "s1", &Turn{Role: RoleUser, Content: "other owner", CreatedAt: at(30)})
			require.NoError(t, err)

			turns, err := s.List(ctx, 1, "s1", 0)
			require.NoError(t, err)
			require.Len(t, turns, 5)
			for i, turn := range turns {
				assert.Equal(t, fmt.Sprintf("turn %d", i), turn.Content)
			}
			assert.Equal(t, RoleAssistant, turns[1].Role)

			recent, err := s.List(ctx, 1, "s1", 2)
			require.NoError(t, err)
			require.Len(t, recent, 2)
			assert.Equal(t, "turn 3", recent[0].Content)
			assert.Equal(t, "turn 4", recent[1].Content)

			all, err := s.List(ctx, 1, "", 10)
			require.NoError(t, err)
			assert.Len(t, all, 6)

			none, err := s.List(ctx, 1, "missing", 10)
			require.NoError(t, err)
			assert.Empty(t, none)
		})
	}
}

func TestStore_AppendBatch(t *testing.T) {
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			saved, err := s.AppendBatch(ctx, 1, "batch", []*Turn{
				{Role: RoleUser, Content: "halo", CreatedAt: at(0)},
				{Role: RoleAssistant, Content: "hai", Model: "llama3.2:3b", CreatedAt: at(0)},
			})
			require.NoError(t, err)
			require.Len(t, saved, 2)
			assert.Less(t, saved[0].ID, saved[1].ID)
			assert.Equal(t, "llama3.2:3b", saved[1].Model)

			// An invalid turn rejects the whole batch.
			_, err = s.AppendBatch(ctx, 1, "batch", []*Turn{
				{Role: RoleUser, Content: "ok"},
				{Role: "robot", Content: "bad"},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidTurn)

			turns, err := s.List(ctx, 1, "batch", 0)
			require.NoError(t, err)
			assert.Len(t, turns, 2)
		})
	}
}

func TestStore_ListSessions(t *testing.T) {
	for name, newStore := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newStore(t)

			for _, in := range []struct {
				session string
				sec     int64
			}{{"old", 0}, {"old", 10}, {"new", 20}, {"old", 15}, {"new", 40}} {
				_, err := s.Append(ctx, 1, in.session, &Turn{Role: RoleUser, Content: "x", CreatedAt: at(in.sec)})
				require.NoError(t, err)
			}

			summaries, err := s.ListSessions(ctx, 1)
			require.NoError(t, err)
			require.Len(t, summaries, 2)
			assert.Equal(t, "new", summaries[0].SessionID)
			assert.Equal(t, 2, summaries[0].TurnCount)
			assert.Equal(t, at(40), summaries[0].LastMessageAt)
			assert.Equal(t, "old", summaries[1].SessionID)
			assert.Equal(t, at(0), summaries[1].StartedAt)
			assert.Equal(t, at(15), summaries[1].LastMessageAt)
			assert.Equal(t, 3, summaries[1].TurnCount)

			empty, err := s.ListSessions(ctx, 2)
			require.NoError(t, err)
			assert.Empty(t, empty)
		})
	}
}

func TestStore_Validation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	tests := []struct {
		name      string
		sessionID string
		turn      *Turn
	}{
		{"no session", "", &Turn{Role: RoleUser, Content: "x"}},
		{"nil turn", "s", nil},
		{"bad role", "s", &Turn{Role: "system", Content: "x"}},
		{"empty content", "s", &Turn{Role: RoleUser}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Append(ctx, 1, tt.sessionID, tt.turn)
			require.Error(t, err)
			assert.True(t, IsStoreError(err))
			assert.ErrorIs(t, err, ErrInvalidTurn)
		})
	}
}

func TestMemoryStore_FailWith(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("disk full")

	s.FailWith(boom)
	_, err := s.Append(ctx, 1, "s", &Turn{Role: RoleUser, Content: "x"})
	var se *StoreError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "append", se.Op)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "session s")

	_, err = s.ListSessions(ctx, 1)
	assert.ErrorIs(t, err, boom)

	s.FailWith(nil)
	_, err = s.Append(ctx, 1, "s", &Turn{Role: RoleUser, Content: "x"})
	assert.NoError(t, err)
}

func TestParseRole(t *testing.T) {
	for in, want := range map[string]Role{"user": RoleUser, " Assistant ": RoleAssistant, "ai": RoleAssistant} {
		got, ok := ParseRole(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got)
	}
	_, ok := ParseRole("system")
	assert.False(t, ok)
}

func TestRecoverHistory(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	for i := 0; i < MaxHistoryTurns+5; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		_, err := s.Append(ctx, 1, "s", &Turn{Role: role, Content: fmt.Sprintf("m%d", i), CreatedAt: at(int64(i))})
		require.NoError(t, err)
	}

	messages, err := RecoverHistory(ctx, s, 1, "s")
	require.NoError(t, err)
	require.Len(t, messages, MaxHistoryTurns)
	assert.Equal(t, ai.Message{Role: ai.RoleAssistant, Content: "m5"}, messages[0])
	assert.Equal(t, "m24", messages[len(messages)-1].Content)

	s.FailWith(errors.New("down"))
	_, err = RecoverHistory(ctx, s, 1, "s")
	assert.True(t, IsStoreError(err))
}
