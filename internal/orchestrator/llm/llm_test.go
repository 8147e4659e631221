package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildDelegateDirectiveEmptyWhenNoSpecialist(t *testing.T) {
	require.Equal(t, "", BuildDelegateDirective("", "high"))
}

func TestBuildDelegateDirectiveRendersSpecialistAndConfidence(t *testing.T) {
	got := BuildDelegateDirective("marcus", "high")
	require.Contains(t, got, "marcus")
	require.Contains(t, got, "high")
}

func TestStubDelegatesWhenConfidentAndToolOffered(t *testing.T) {
	stub := NewStub()
	messages := []Message{
		{Role: "system", Content: BuildDelegateDirective("marcus", "high")},
		{Role: "user", Content: "I'm a veteran looking for work"},
	}
	tools := []ToolSpec{{Name: "supervisor.delegate.marcus", Description: "delegate to marcus"}}

	resp, err := stub.Complete(context.Background(), messages, tools)
	require.NoError(t, err)
	require.Len(t, resp.ToolCalls, 1)
	require.Equal(t, "supervisor.delegate.marcus", resp.ToolCalls[0].Name)
	require.Contains(t, string(resp.ToolCalls[0].Arguments), "task_description")
}

func TestStubSkipsDelegationWhenToolNotOffered(t *testing.T) {
	stub := NewStub()
	messages := []Message{
		{Role: "system", Content: BuildDelegateDirective("marcus", "high")},
		{Role: "user", Content: "hello"},
	}

	resp, err := stub.Complete(context.Background(), messages, nil)
	require.NoError(t, err)
	require.Empty(t, resp.ToolCalls)
	require.NotEmpty(t, resp.Content)
}

func TestStubSkipsDelegationWhenConfidenceLow(t *testing.T) {
	stub := NewStub()
	messages := []Message{
		{Role: "system", Content: BuildDelegateDirective("marcus", "low")},
		{Role: "user", Content: "hello"},
	}
	tools := []ToolSpec{{Name: "supervisor.delegate.marcus"}}

	resp, err := stub.Complete(context.Background(), messages, tools)
	require.NoError(t, err)
	require.Empty(t, resp.ToolCalls)
}

func TestStubResponseIsDeterministic(t *testing.T) {
	stub := NewStub()
	messages := []Message{{Role: "user", Content: "what grants are available"}}

	first, err := stub.Complete(context.Background(), messages, nil)
	require.NoError(t, err)
	second, err := stub.Complete(context.Background(), messages, nil)
	require.NoError(t, err)
	require.Equal(t, first, second)
}
