package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopAlwaysMisses(t *testing.T) {
	store := NewNoop()
	require.NoError(t, store.Remember(context.Background(), "u1", "k", "v"))
	_, ok, err := store.Recall(context.Background(), "u1", "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestInMemoryRoundTrips(t *testing.T) {
	store := NewInMemory()
	require.NoError(t, store.Remember(context.Background(), "u1", "preferred_name", "Alex"))
	v, ok, err := store.Recall(context.Background(), "u1", "preferred_name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Alex", v)

	_, ok, err = store.Recall(context.Background(), "u2", "preferred_name")
	require.NoError(t, err)
	require.False(t, ok)
}
