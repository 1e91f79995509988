package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

func TestStore_GetSet_RoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	value := []byte(`{"subject_name": "Hades II", "status": "ok"}`)
	require.NoError(t, store.Set(ctx, "detail:hades ii", value, time.Hour))

	got, ok := store.Get(ctx, "detail:hades ii")
	assert.True(t, ok, "expected to find cached value")
	assert.Equal(t, value, got)
}

func TestStore_Get_NotFound(t *testing.T) {
	store := openTestStore(t)

	got, ok := store.Get(context.Background(), "nonexistent-key")
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestStore_Get_Expired(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), 30*time.Millisecond))

	_, ok := store.Get(ctx, "k")
	assert.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = store.Get(ctx, "k")
	assert.False(t, ok, "expected entry to expire")
}

func TestStore_Set_Overwrite(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("first"), time.Hour))
	require.NoError(t, store.Set(ctx, "k", []byte("second"), time.Hour))

	got, ok := store.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("second"), got)
}

func TestStore_Prune(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "stale", []byte("v"), -time.Minute))
	require.NoError(t, store.Set(ctx, "fresh", []byte("v"), time.Hour))

	removed, err := store.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	_, ok := store.Get(ctx, "fresh")
	assert.True(t, ok)
}
