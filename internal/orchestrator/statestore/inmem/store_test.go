package inmem_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore/inmem"
)

func TestLoadMissingReturnsNotFound(t *testing.T) {
	store := inmem.New()
	_, err := store.Load(context.Background(), "u1", "c1")
	require.ErrorIs(t, err, statestore.ErrNotFound)
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	store := inmem.New()
	ctx := context.Background()

	seed := state.Seed("u1", "c1")
	seed = state.Merge(seed, state.Patch{Messages: []state.Message{{ID: "m1", Content: "hi"}}})
	require.NoError(t, store.Save(ctx, seed))

	loaded, err := store.Load(ctx, "u1", "c1")
	require.NoError(t, err)
	require.Equal(t, seed.Messages, loaded.Messages)

	loaded.Messages[0].Content = "mutated"
	reread, err := store.Load(ctx, "u1", "c1")
	require.NoError(t, err)
	require.Equal(t, "hi", reread.Messages[0].Content, "Load must return a defensive copy")
}
