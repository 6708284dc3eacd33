package data

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techinsights/kbsite/internal/testutil"
)

func TestSubscriberRepo_Subscribe_Duplicate_Unsubscribe(t *testing.T) {
	testutil.SkipIfNoTestDB(t)

	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo := NewSubscriberRepo(db)

		sub, err := repo.Subscribe(ctx, "reader@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, sub.ID)
		assert.Equal(t, "reader@example.com", sub.Email)
		assert.NotZero(t, sub.SubscribedAt)

		_, err = repo.Subscribe(ctx, "reader@example.com")
		assert.ErrorIs(t, err, ErrAlreadySubscribed)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		lst, err := repo.List(ctx, 10, 0)
		require.NoError(t, err)
		require.Len(t, lst, 1)
		assert.Equal(t, sub.ID, lst[0].ID)

		ok, err := repo.Unsubscribe(ctx, "reader@example.com")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.Unsubscribe(ctx, "reader@example.com")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
