package store

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/jotter/internal/item"
	"github.com/five82/jotter/internal/testutil"
)

type storeFactory func(t *testing.T, opts ...Option) Store

func factories() map[string]storeFactory {
	return map[string]storeFactory{
		"sqlite": func(t *testing.T, opts ...Option) Store {
			t.Helper()
			s, err := Open(filepath.Join(t.TempDir(), "test.db"), opts...)
			require.NoError(t, err, "Open() failed")
			t.Cleanup(func() { s.Close() })
			return s
		},
		"memory": func(t *testing.T, opts ...Option) Store {
			t.Helper()
			return NewMemory(opts...)
		},
	}
}

func forEachStore(t *testing.T, fn func(t *testing.T, newStore storeFactory)) {
	for name, f := range factories() {
		t.Run(name, func(t *testing.T) {
			fn(t, f)
		})
	}
}

func strPtr(s string) *string { return &s }

func TestStore_InsertAssignsIdentityAndTimestamps(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		clock := testutil.NewStepClock(time.Second)
		s := newStore(t, WithClock(clock.Now))

		a, err := s.Insert(ctx, item.Input{Title: "Buy milk", Description: "2%"})
		require.NoError(t, err)
		b, err := s.Insert(ctx, item.Input{Title: "Walk dog", Description: "park"})
		require.NoError(t, err)

		assert.NotEmpty(t, a.ID)
		assert.NotEqual(t, a.ID, b.ID)
		assert.Equal(t, "Buy milk", a.Title)
		assert.Equal(t, "2%", a.Description)
		assert.True(t, a.CreatedAt.Equal(a.UpdatedAt), "createdAt == updatedAt at creation")
		assert.True(t, a.CreatedAt.Equal(testutil.Epoch))
	})
}

func TestStore_FindAllNewestFirst(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t, WithClock(testutil.NewStepClock(time.Millisecond).Now))

		empty, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		a, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)
		b, err := s.Insert(ctx, item.Input{Title: "B", Description: "b"})
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, b.ID, all[0].ID)
		assert.Equal(t, a.ID, all[1].ID)
	})
}

func TestStore_FindAllTieBreaksByInsertion(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t, WithClock(testutil.NewStepClock(0).Now))

		a, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)
		b, err := s.Insert(ctx, item.Input{Title: "B", Description: "b"})
		require.NoError(t, err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, []string{b.ID, a.ID}, []string{all[0].ID, all[1].ID})
	})
}

func TestStore_UpdateChangesOnlyPatchedFields(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t, WithClock(testutil.NewStepClock(time.Second).Now))

		orig, err := s.Insert(ctx, item.Input{Title: "Buy milk", Description: "2%"})
		require.NoError(t, err)

		updated, err := s.Update(ctx, orig.ID, item.Patch{Title: strPtr("X")})
		require.NoError(t, err)
		assert.Equal(t, orig.ID, updated.ID)
		assert.Equal(t, "X", updated.Title)
		assert.Equal(t, "2%", updated.Description)
		assert.True(t, updated.CreatedAt.Equal(orig.CreatedAt))
		assert.True(t, updated.UpdatedAt.After(orig.UpdatedAt))

		found, err := s.Find(ctx, orig.ID)
		require.NoError(t, err)
		assert.Equal(t, updated.Title, found.Title)
		assert.True(t, found.UpdatedAt.Equal(updated.UpdatedAt))
	})
}

func TestStore_UpdatedAtNeverMovesBackwards(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		clock := testutil.NewStepClock(time.Second)
		s := newStore(t, WithClock(clock.Now))

		orig, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)

		clock.Set(testutil.Epoch.Add(-time.Hour))
		updated, err := s.Update(ctx, orig.ID, item.Patch{Description: strPtr("b")})
		require.NoError(t, err)
		assert.False(t, updated.UpdatedAt.Before(orig.UpdatedAt))
		assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
	})
}

func TestStore_DeleteThenNotFound(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t)

		keep, err := s.Insert(ctx, item.Input{Title: "keep", Description: "k"})
		require.NoError(t, err)
		gone, err := s.Insert(ctx, item.Input{Title: "gone", Description: "g"})
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, gone.ID))

		_, err = s.Find(ctx, gone.ID)
		assert.True(t, errors.Is(err, item.ErrNotFound), "Find after delete: %v", err)

		err = s.Delete(ctx, gone.ID)
		assert.True(t, errors.Is(err, item.ErrNotFound), "second Delete: %v", err)

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, keep.ID, all[0].ID)
	})
}

func TestStore_UnknownIDDoesNotMutate(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t)

		existing, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)

		_, err = s.Update(ctx, "never-issued", item.Patch{Title: strPtr("X")})
		var nf *item.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "never-issued", nf.ID)

		err = s.Delete(ctx, "never-issued")
		assert.True(t, errors.Is(err, item.ErrNotFound))

		all, err := s.FindAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []item.Item{existing}, all)
	})
}

func TestStore_DeletedIDsAreNeverReissued(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t, WithIDGenerator(testutil.FixedIDs("dup", "dup", "fresh")))

		first, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)
		require.Equal(t, "dup", first.ID)
		require.NoError(t, s.Delete(ctx, first.ID))

		second, err := s.Insert(ctx, item.Input{Title: "B", Description: "b"})
		require.NoError(t, err)
		assert.Equal(t, "fresh", second.ID)
	})
}

func TestStore_IDExhausted(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t, WithIDGenerator(func() string { return "same" }))

		_, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)
		_, err = s.Insert(ctx, item.Input{Title: "B", Description: "b"})
		assert.ErrorIs(t, err, ErrIDExhausted)
	})
}

func TestStore_ConcurrentUpdatesSameID(t *testing.T) {
	forEachStore(t, func(t *testing.T, newStore storeFactory) {
		ctx := context.Background()
		s := newStore(t)

		it, err := s.Insert(ctx, item.Input{Title: "A", Description: "a"})
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.Update(ctx, it.ID, item.Patch{Title: strPtr("T"), Description: strPtr("D")})
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		got, err := s.Find(ctx, it.ID)
		require.NoError(t, err)
		assert.Equal(t, "T", got.Title)
		assert.Equal(t, "D", got.Description)
	})
}

func TestOpen_ReopenKeepsItems(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	s1, err := Open(path)
	require.NoError(t, err)
	created, err := s1.Insert(ctx, item.Input{Title: "A", Description: "a"})
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.Find(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Title, got.Title)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))

	var version int
	require.NoError(t, s2.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}
