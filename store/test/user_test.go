package test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hrygo/nutribot/store"
)

func TestUserStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	user, err := createTestingUser(ctx, ts, "budi")
	require.NoError(t, err)
	require.Greater(t, user.ID, int32(0))

	found, err := ts.GetUser(ctx, &store.FindUser{Username: &user.Username})
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "budi@nutribot.test", found.Email)
	require.Equal(t, int32(25), found.Age)
	require.Equal(t, 175.0, found.Height)

	weight := 68.5
	level := "very active"
	updated, err := ts.UpdateUser(ctx, &store.UpdateUser{ID: user.ID, Weight: &weight, ActivityLevel: &level})
	require.NoError(t, err)
	require.Equal(t, 68.5, updated.Weight)
	require.Equal(t, "very active", updated.ActivityLevel)
	require.Equal(t, "male", updated.Gender)

	_, err = ts.UpdateUser(ctx, &store.UpdateUser{ID: user.ID})
	require.Error(t, err)

	missing := "nobody"
	none, err := ts.GetUser(ctx, &store.FindUser{Username: &missing})
	require.NoError(t, err)
	require.Nil(t, none)

	_, err = createTestingUser(ctx, ts, "budi")
	require.Error(t, err, "username must be unique")
}
