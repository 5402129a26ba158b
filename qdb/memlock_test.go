package qdb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemQDBAdvisoryLocks(t *testing.T) {
	ctx := context.Background()

	t.Run("exclusive blocks until holder commits", func(t *testing.T) {
		is := assert.New(t)
		db := newMemQDB(t)

		holder, err := db.Begin(ctx)
		require.NoError(t, err)
		require.NoError(t, holder.AdvisoryXactLock(ctx, 42, false))

		waiter, err := db.Begin(ctx)
		require.NoError(t, err)

		acquired := make(chan error, 1)
		go func() {
			acquired <- waiter.AdvisoryXactLock(ctx, 42, false)
		}()

		select {
		case <-acquired:
			t.Fatal("lock granted while held")
		case <-time.After(50 * time.Millisecond):
		}

		is.NoError(holder.Commit(ctx))
		select {
		case err := <-acquired:
			is.NoError(err)
		case <-time.After(time.Second):
			t.Fatal("lock not granted after release")
		}
		is.NoError(waiter.Rollback(ctx))
	})

	t.Run("shared holders coexist", func(t *testing.T) {
		is := assert.New(t)
		db := newMemQDB(t)

		a, err := db.Begin(ctx)
		require.NoError(t, err)
		b, err := db.Begin(ctx)
		require.NoError(t, err)
		is.NoError(a.AdvisoryXactLock(ctx, 7, true))
		is.NoError(b.AdvisoryXactLock(ctx, 7, true))

		c, err := db.Begin(ctx)
		require.NoError(t, err)
		short, cancel := context.WithTimeout(ctx, 30*time.Millisecond)
		defer cancel()
		is.ErrorIs(c.AdvisoryXactLock(short, 7, false), context.DeadlineExceeded)

		is.NoError(a.Rollback(ctx))
		is.NoError(b.Rollback(ctx))
		is.NoError(c.AdvisoryXactLock(ctx, 7, false))
		is.NoError(c.Rollback(ctx))
	})

	t.Run("own locks do not conflict", func(t *testing.T) {
		is := assert.New(t)
		db := newMemQDB(t)

		tx, err := db.Begin(ctx)
		require.NoError(t, err)
		is.NoError(tx.AdvisoryXactLock(ctx, 1, true))
		is.NoError(tx.AdvisoryXactLock(ctx, 1, false))
		is.NoError(tx.AdvisoryXactLock(ctx, 1, false))
		is.NoError(tx.Commit(ctx))
	})

	t.Run("different keys are independent", func(t *testing.T) {
		is := assert.New(t)
		db := newMemQDB(t)

		a, err := db.Begin(ctx)
		require.NoError(t, err)
		b, err := db.Begin(ctx)
		require.NoError(t, err)
		is.NoError(a.AdvisoryXactLock(ctx, 1, false))
		is.NoError(b.AdvisoryXactLock(ctx, 2, false))
		is.NoError(a.Rollback(ctx))
		is.NoError(b.Rollback(ctx))
	})
}
