package graph

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/interrupt"
)

func knownSpecialists(names ...string) func(string) bool {
	set := map[string]bool{}
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestRunEndsOnConversationComplete(t *testing.T) {
	g := New("supervisor")
	g.AddNode("supervisor", func(nctx NodeContext, s state.State) (NodeResult, error) {
		complete := true
		return StateUpdate(state.Patch{ConversationComplete: &complete}), nil
	})
	g.AddEdge("supervisor", SupervisorEdge(knownSpecialists()))

	result, err := g.Run(context.Background(), "supervisor", state.Seed("u1", "c1"), nil)
	require.NoError(t, err)
	require.False(t, result.Suspended)
	require.True(t, result.State.ConversationComplete)
}

func TestRunGotoJumpsRegardlessOfEdge(t *testing.T) {
	g := New("supervisor")
	g.AddNode("supervisor", func(nctx NodeContext, s state.State) (NodeResult, error) {
		return Goto("marcus", state.Patch{IncrementHandoff: true}), nil
	})
	g.AddNode("marcus", func(nctx NodeContext, s state.State) (NodeResult, error) {
		return End(state.Patch{}), nil
	})

	result, err := g.Run(context.Background(), "supervisor", state.Seed("u1", "c1"), nil)
	require.NoError(t, err)
	require.Equal(t, 1, result.State.HandoffCount)
}

func TestRunSuspendsOnInterruptAndResumesWithDecision(t *testing.T) {
	g := New("supervisor")
	var sawDecision *interrupt.ReviewDecision
	g.AddNode("supervisor", func(nctx NodeContext, s state.State) (NodeResult, error) {
		if nctx.Decision == nil {
			return Interrupt(interrupt.ReviewRequest{Reason: "low_quality"}), nil
		}
		sawDecision = nctx.Decision
		return End(state.Patch{}), nil
	})

	result, err := g.Run(context.Background(), "supervisor", state.Seed("u1", "c1"), nil)
	require.NoError(t, err)
	require.True(t, result.Suspended)
	require.Equal(t, "supervisor", result.NextNode)

	decision := &interrupt.ReviewDecision{Approved: true}
	result2, err := g.Run(context.Background(), result.NextNode, result.State, decision)
	require.NoError(t, err)
	require.False(t, result2.Suspended)
	require.Same(t, decision, sawDecision)
}

func TestSpecialistEdgeEndsAtHandoffCap(t *testing.T) {
	edge := SpecialistEdge()
	s := state.Seed("u1", "c1")
	s.HandoffCount = 3
	require.Equal(t, EndNode, edge(s))
}

func TestSupervisorEdgeRoutesToKnownSpecialist(t *testing.T) {
	edge := SupervisorEdge(knownSpecialists("marcus"))
	s := state.Seed("u1", "c1")
	s.RoutingDecision.SpecialistAssigned = "marcus"
	require.Equal(t, "marcus", edge(s))
}

func TestSupervisorEdgeSelfLoopsWithNoSignal(t *testing.T) {
	edge := SupervisorEdge(knownSpecialists())
	require.Equal(t, "supervisor", edge(state.Seed("u1", "c1")))
}

func TestRunPropagatesNodeError(t *testing.T) {
	g := New("supervisor")
	g.AddNode("supervisor", func(nctx NodeContext, s state.State) (NodeResult, error) {
		return NodeResult{}, errors.New("boom")
	})
	_, err := g.Run(context.Background(), "supervisor", state.Seed("u1", "c1"), nil)
	require.Error(t, err)
}

func TestRunUnknownNodeErrors(t *testing.T) {
	g := New("missing")
	_, err := g.Run(context.Background(), "missing", state.Seed("u1", "c1"), nil)
	require.Error(t, err)
}
