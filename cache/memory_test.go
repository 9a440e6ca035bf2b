package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"contribgraph/models"
)

func TestMemoryStoreGetSet(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()

	_, err := store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrMiss)

	entry := Entry{Outcome: models.NotFound("gone", models.DefaultCachePolicy), StoredAt: time.Now()}
	require.NoError(t, store.Set(ctx, "a", entry, time.Hour))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, entry, *got)
}

func TestMemoryStoreEvictsLeastRecentlyUsed(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()
	entry := Entry{StoredAt: time.Now()}

	require.NoError(t, store.Set(ctx, "a", entry, time.Hour))
	require.NoError(t, store.Set(ctx, "b", entry, time.Hour))

	// touch "a" so "b" becomes the oldest
	_, err := store.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "c", entry, time.Hour))

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrMiss)
	_, err = store.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = store.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestMemoryStoreExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryStore(10)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", Entry{StoredAt: now}, 3*time.Hour))

	now = now.Add(3*time.Hour - time.Second)
	_, err := store.Get(ctx, "a")
	assert.NoError(t, err)

	now = now.Add(time.Second)
	_, err = store.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrMiss)
	assert.Equal(t, 0, store.Len())
}

func TestMemoryStoreOverwrite(t *testing.T) {
	store := NewMemoryStore(10)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", Entry{Outcome: models.TransportFailure("first")}, time.Hour))
	require.NoError(t, store.Set(ctx, "a", Entry{Outcome: models.TransportFailure("second")}, time.Hour))

	got, err := store.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "second", got.Outcome.Message)
	assert.Equal(t, 1, store.Len())
}

func TestMemoryStoreClose(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "a", Entry{}, time.Hour))
	require.NoError(t, store.Close())
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, DefaultCapacity, store.capacity)
}
