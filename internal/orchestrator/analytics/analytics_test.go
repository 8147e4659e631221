package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNoopDiscards(t *testing.T) {
	require.NoError(t, NewNoop().Record(context.Background(), Event{ConversationID: "c1"}))
}

func TestInMemoryRecordsInOrder(t *testing.T) {
	sink := NewInMemory()
	require.NoError(t, sink.Record(context.Background(), Event{ConversationID: "c1", Node: "supervisor"}))
	require.NoError(t, sink.Record(context.Background(), Event{ConversationID: "c1", Node: "marcus"}))

	events := sink.Events()
	require.Len(t, events, 2)
	require.Equal(t, "supervisor", events[0].Node)
	require.Equal(t, "marcus", events[1].Node)
}
