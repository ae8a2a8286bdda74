package test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/nutribot/store"
)

func TestChatMessageStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := createTestingUser(ctx, ts, "sari")
	require.NoError(t, err)

	// Same timestamp for the first three: insertion order must break the tie.
	timestamps := []int64{100, 100, 100, 200, 300}
	for i, createdTs := range timestamps {
		role := store.ChatRoleUser
		if i%2 == 1 {
			role = store.ChatRoleAssistant
		}
		_, err := ts.CreateChatMessage(ctx, &store.ChatMessage{
			UID:       fmt.Sprintf("m-%d", i),
			UserID:    user.ID,
			SessionID: "s1",
			Role:      role,
			Content:   fmt.Sprintf("turn %d", i),
			CreatedTs: createdTs,
		})
		require.NoError(t, err)
	}
	_, err = ts.CreateChatMessage(ctx, &store.ChatMessage{
		UID: "other", UserID: user.ID, SessionID: "s2", Role: store.ChatRoleUser, Content: "hi", CreatedTs: 150,
	})
	require.NoError(t, err)

	sessionID := "s1"
	list, err := ts.ListChatMessages(ctx, &store.FindChatMessage{UserID: &user.ID, SessionID: &sessionID})
	require.NoError(t, err)
	require.Len(t, list, 5)
	for i, m := range list {
		require.Equal(t, fmt.Sprintf("turn %d", i), m.Content)
	}
	require.Equal(t, store.ChatRoleAssistant, list[1].Role)

	limit := 2
	recent, err := ts.ListChatMessages(ctx, &store.FindChatMessage{UserID: &user.ID, SessionID: &sessionID, Limit: &limit})
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "turn 3", recent[0].Content)
	require.Equal(t, "turn 4", recent[1].Content)

	sessions, err := ts.ListChatSessions(ctx, &store.FindChatSession{UserID: user.ID})
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "s1", sessions[0].SessionID)
	require.Equal(t, int64(100), sessions[0].StartedTs)
	require.Equal(t, int64(300), sessions[0].LastActiveTs)
	require.Equal(t, int32(5), sessions[0].MessageCount)
	require.Equal(t, "s2", sessions[1].SessionID)

	other, err := createTestingUser(ctx, ts, "other")
	require.NoError(t, err)
	sessions, err = ts.ListChatSessions(ctx, &store.FindChatSession{UserID: other.ID})
	require.NoError(t, err)
	require.Empty(t, sessions)
}

func TestChatMessageStore_Batch(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)
	user, err := createTestingUser(ctx, ts, "budi")
	require.NoError(t, err)

	created, err := ts.CreateChatMessages(ctx, []*store.ChatMessage{
		{UID: "b-0", UserID: user.ID, SessionID: "batch", Role: store.ChatRoleUser, Content: "halo", CreatedTs: 10},
		{UID: "b-1", UserID: user.ID, SessionID: "batch", Role: store.ChatRoleAssistant, Content: "hai juga", CreatedTs: 10},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	require.NotZero(t, created[0].ID)
	require.Greater(t, created[1].ID, created[0].ID)

	empty, err := ts.CreateChatMessages(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)

	sessionID := "batch"
	list, err := ts.ListChatMessages(ctx, &store.FindChatMessage{UserID: &user.ID, SessionID: &sessionID})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "halo", list[0].Content)
	require.Equal(t, "hai juga", list[1].Content)
}
