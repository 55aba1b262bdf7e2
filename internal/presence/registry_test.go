package presence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRegistryRegisterAndLookup(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	_, ok, err := r.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, r.Register(ctx, 1, "conn-a"))

	connID, ok, err := r.Lookup(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "conn-a", connID)
}

func TestMemoryRegistrySecondRegisterOverwrites(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, 1, "conn-a"))
	require.NoError(t, r.Register(ctx, 1, "conn-b"))

	connID, ok, err := r.Lookup(ctx, 1)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "conn-b", connID)

	online, err := r.Online(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, online)
}

func TestMemoryRegistryUnregisterRequiresMatchingConn(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	require.NoError(t, r.Register(ctx, 1, "conn-a"))
	require.NoError(t, r.Register(ctx, 1, "conn-b"))

	// The overwritten connection's teardown must not evict the live entry.
	removed, err := r.Unregister(ctx, 1, "conn-a")
	require.NoError(t, err)
	assert.False(t, removed)

	_, ok, err := r.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err = r.Unregister(ctx, 1, "conn-b")
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok, err = r.Lookup(ctx, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryRegistryUnregisterUnknownUser(t *testing.T) {
	r := NewMemoryRegistry()

	removed, err := r.Unregister(context.Background(), 99, "conn-x")
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryRegistryOnline(t *testing.T) {
	r := NewMemoryRegistry()
	ctx := context.Background()

	online, err := r.Online(ctx)
	require.NoError(t, err)
	assert.Empty(t, online)

	require.NoError(t, r.Register(ctx, 1, "conn-a"))
	require.NoError(t, r.Register(ctx, 2, "conn-b"))
	require.NoError(t, r.Register(ctx, 3, "conn-c"))
	_, err = r.Unregister(ctx, 2, "conn-b")
	require.NoError(t, err)

	online, err = r.Online(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 3}, online)
}

func TestMemoryRegistryRefreshIsNoop(t *testing.T) {
	r := NewMemoryRegistry()
	require.NoError(t, r.Refresh(context.Background(), 1))
}
