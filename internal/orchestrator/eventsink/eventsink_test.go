package eventsink

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

func TestNoopDiscards(t *testing.T) {
	require.NotPanics(t, func() {
		NewNoop().Publish(context.Background(), Event{ConversationID: "c1"})
	})
}

func TestInMemoryRecordsInOrder(t *testing.T) {
	sink := NewInMemory()
	sink.Publish(context.Background(), Event{ConversationID: "c1", Node: "supervisor", Kind: "goto", State: state.Seed("u1", "c1")})
	sink.Publish(context.Background(), Event{ConversationID: "c1", Node: "marcus", Kind: "end", State: state.Seed("u1", "c1")})

	events := sink.Events()
	require.Len(t, events, 2)
	require.Equal(t, "supervisor", events[0].Node)
	require.Equal(t, "end", events[1].Kind)
}
