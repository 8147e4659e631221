package resources

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopFindsNothing(t *testing.T) {
	found, err := NewNoop().Search(context.Background(), "benefits", "veteran")
	require.NoError(t, err)
	require.Empty(t, found)
}

func TestInMemoryFiltersByCategoryAndQuery(t *testing.T) {
	search := NewInMemory(DefaultCatalog())

	found, err := search.Search(context.Background(), "benefits", "veteran")
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, "VA Benefits Navigator", found[0].Name)

	found, err = search.Search(context.Background(), "", "environmental_justice")
	require.NoError(t, err)
	require.Len(t, found, 1)

	found, err = search.Search(context.Background(), "nonexistent", "")
	require.NoError(t, err)
	require.Empty(t, found)
}
