package specialist

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/graph"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/llm"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

type fakeClient struct {
	complete func(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Response, error)
}

func (f *fakeClient) Complete(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Response, error) {
	return f.complete(ctx, messages, tools)
}

func fixedClock(t time.Time) Clock { return func() time.Time { return t } }

func seedWithUserMessage(text string) state.State {
	s := state.Seed("u1", "c1")
	return state.Merge(s, state.Patch{Messages: []state.Message{{ID: "m1", Role: state.RoleUser, Content: text}}})
}

const highQualityContent = "Based on your message, here are your next steps, specific to your situation: " +
	"first, contact: our veterans support team, website: example.org, phone: 555-0555. " +
	"Next, apply and enroll where eligible. This plan is tailored to you."

func TestNewRejectsUnknownSpecialist(t *testing.T) {
	_, err := New("nobody", config.Default(), &fakeClient{}, nil)
	require.Error(t, err)
}

func TestRunReturnsToSupervisorByDefault(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Response, error) {
		return llm.Response{Content: "Here is some general guidance without a strong closing signal."}, nil
	}}
	node, err := New("marcus", config.Default(), client, fixedClock(time.Unix(0, 0)))
	require.NoError(t, err)
	s := seedWithUserMessage("I served in the army and need help translating my resume")

	result, err := node.NodeFunc()(graph.NodeContext{Ctx: context.Background()}, s)
	require.NoError(t, err)
	require.Equal(t, graph.KindGoto, result.Kind)
	require.Equal(t, "supervisor", result.Target)
	require.False(t, result.Patch.IncrementHandoff)
	require.Len(t, result.Patch.SpecialistHandoffs, 1)
	require.Equal(t, "marcus", result.Patch.SpecialistHandoffs[0].FromNode)
	require.Equal(t, "supervisor", result.Patch.SpecialistHandoffs[0].ToNode)
}

func TestRunEndsOnHighCompletionSignal(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Response, error) {
		return llm.Response{Content: "Thank you, that's helpful! Goodbye, contact: benefits@example.org"}, nil
	}}
	node, err := New("marcus", config.Default(), client, fixedClock(time.Unix(0, 0)))
	require.NoError(t, err)
	s := seedWithUserMessage("thanks, that's all i needed")

	result, err := node.NodeFunc()(graph.NodeContext{Ctx: context.Background()}, s)
	require.NoError(t, err)
	require.Equal(t, graph.KindEnd, result.Kind)
	require.True(t, *result.Patch.ConversationComplete)
}

func TestRunEndsAfterTwoSpecialistHandoffs(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Response, error) {
		return llm.Response{Content: highQualityContent + " (no closing signal, just a regular update)"}, nil
	}}
	node, err := New("marcus", config.Default(), client, fixedClock(time.Unix(0, 0)))
	require.NoError(t, err)
	s := seedWithUserMessage("still working through my transition plan")
	s.SpecialistHandoffs = []state.HandoffRecord{
		{FromNode: "marcus", ToNode: "supervisor"},
		{FromNode: "marcus", ToNode: "supervisor"},
	}

	result, err := node.NodeFunc()(graph.NodeContext{Ctx: context.Background()}, s)
	require.NoError(t, err)
	require.Equal(t, graph.KindEnd, result.Kind)
	require.True(t, *result.Patch.ConversationComplete)
	require.Len(t, result.Patch.Messages, 2)
}

func TestRunFallsBackOnLlmError(t *testing.T) {
	client := &fakeClient{complete: func(ctx context.Context, messages []llm.Message, tools []llm.ToolSpec) (llm.Response, error) {
		return llm.Response{}, errors.New("provider down")
	}}
	node, err := New("marcus", config.Default(), client, fixedClock(time.Unix(0, 0)))
	require.NoError(t, err)
	s := seedWithUserMessage("hello")

	result, err := node.NodeFunc()(graph.NodeContext{Ctx: context.Background()}, s)
	require.NoError(t, err)
	require.Equal(t, graph.KindGoto, result.Kind)
	require.Equal(t, "fallback", result.Target)
	require.False(t, result.Patch.IncrementHandoff)
	require.Len(t, result.Patch.ErrorRecoveryLog, 1)
}

func TestFallbackNodeReturnsToSupervisorWithoutIncrementingHandoff(t *testing.T) {
	fb := NewFallback("fallback", fixedClock(time.Unix(0, 0)))
	s := seedWithUserMessage("hello")

	result, err := fb.NodeFunc()(graph.NodeContext{Ctx: context.Background()}, s)
	require.NoError(t, err)
	require.Equal(t, graph.KindGoto, result.Kind)
	require.Equal(t, "supervisor", result.Target)
	require.False(t, result.Patch.IncrementHandoff)
	require.Len(t, result.Patch.Messages, 1)
}
