package orchestrator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/eventsink"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/llm"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore/inmem"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/engine"
	engineinmem "github.com/thependalorian/climate-orchestrator/runtime/agent/engine/inmem"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/interrupt"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/session"
	sessioninmem "github.com/thependalorian/climate-orchestrator/runtime/agent/session/inmem"
)

func newTestOrchestrator(t *testing.T) (*Orchestrator, *inmem.Store, *eventsink.InMemory) {
	t.Helper()
	var eng engine.Engine = engineinmem.New()
	store := inmem.New()
	events := eventsink.NewInMemory()
	o, err := New(context.Background(), eng, config.Default(), llm.NewStub(), store, events, nil)
	require.NoError(t, err)
	return o, store, events
}

func TestRunTurnDelegatesAVeteranQuery(t *testing.T) {
	o, _, events := newTestOrchestrator(t)

	result, err := o.RunTurn(context.Background(), "u1", "c1", "I'm a military veteran interested in clean energy careers")
	require.NoError(t, err)
	require.Contains(t, []TurnResultKind{TurnAwaitingUser, TurnCompleted}, result.Kind)
	require.Equal(t, "marcus", result.State.CurrentSpecialist)
	// The stub client always favors the directed specialist, so the
	// supervisor<->specialist handoff loop runs until the loop-prevention
	// cap ends it; the cap itself bounds how far it can go.
	require.LessOrEqual(t, result.State.HandoffCount, 3)
	require.Greater(t, len(result.State.Messages), 1)
	require.NotEmpty(t, events.Events())
}

func TestRunTurnEndsImmediatelyAtHandoffCap(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)

	seed := state.Seed("u1", "c1")
	seed.HandoffCount = 3
	require.NoError(t, store.Save(context.Background(), seed))

	result, err := o.RunTurn(context.Background(), "u1", "c1", "still need help")
	require.NoError(t, err)
	require.Equal(t, TurnCompleted, result.Kind)
	require.True(t, result.State.ConversationComplete)
}

func TestRunTurnSeedsStateOnFirstContact(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)

	_, err := o.RunTurn(context.Background(), "u2", "c2", "hello there")
	require.NoError(t, err)

	persisted, err := store.Load(context.Background(), "u2", "c2")
	require.NoError(t, err)
	require.Equal(t, "u2", persisted.UserID)
	require.NotEmpty(t, persisted.Messages)
}

func TestResumeTurnApprovedProducesNoErrorAndAdvancesTranscript(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)

	seed := state.Seed("u1", "c1")
	seed = state.Merge(seed, state.Patch{Messages: []state.Message{{ID: "m1", Role: state.RoleUser, Content: "I need help but am not sure what with"}}})
	require.NoError(t, store.Save(context.Background(), seed))

	result, err := o.ResumeTurn(context.Background(), "u1", "c1", interrupt.ReviewDecision{Approved: true})
	require.NoError(t, err)
	require.Contains(t, []TurnResultKind{TurnAwaitingUser, TurnAwaitingHuman, TurnCompleted}, result.Kind)
	require.Greater(t, len(result.State.Messages), len(seed.Messages))
}

func TestRunTurnRecordsSessionAndRunMetadata(t *testing.T) {
	var eng engine.Engine = engineinmem.New()
	store := inmem.New()
	sessions := sessioninmem.New()

	o, err := New(context.Background(), eng, config.Default(), llm.NewStub(), store, eventsink.NewNoop(), sessions)
	require.NoError(t, err)

	_, err = o.RunTurn(context.Background(), "u3", "c3", "hello there")
	require.NoError(t, err)

	sess, err := sessions.LoadSession(context.Background(), "c3")
	require.NoError(t, err)
	require.Equal(t, session.StatusActive, sess.Status)

	runs, err := sessions.ListRunsBySession(context.Background(), "c3", nil)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.NotEqual(t, session.RunStatusRunning, runs[0].Status)
}

func TestResumeTurnEscalatedEndsAwaitingHuman(t *testing.T) {
	o, store, _ := newTestOrchestrator(t)

	seed := state.Seed("u1", "c1")
	seed = state.Merge(seed, state.Patch{Messages: []state.Message{{ID: "m1", Role: state.RoleUser, Content: "I need help but am not sure what with"}}})
	require.NoError(t, store.Save(context.Background(), seed))

	decision := interrupt.ReviewDecision{Approved: false, Labels: map[string]string{"option": "escalate_to_human_specialist"}}
	result, err := o.ResumeTurn(context.Background(), "u1", "c1", decision)
	require.NoError(t, err)
	require.Equal(t, TurnAwaitingHuman, result.Kind)
	require.Equal(t, state.WorkflowPendingHuman, result.State.WorkflowState)
	require.True(t, result.State.NeedsHumanReview)
}
