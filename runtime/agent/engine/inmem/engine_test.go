package inmem

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/runtime/agent/engine"
)

func TestActivityExecution(t *testing.T) {
	eng := New()
	ctx := context.Background()

	err := eng.RegisterActivity(ctx, engine.ActivityDefinition{
		Name: "uppercase",
		Handler: func(_ context.Context, input any) (any, error) {
			s, _ := input.(string)
			return s + "!", nil
		},
	})
	require.NoError(t, err)

	err = eng.RegisterWorkflow(ctx, engine.WorkflowDefinition{
		Name: "greet",
		Handler: func(wfCtx engine.WorkflowContext, input any) (any, error) {
			var out string
			callErr := wfCtx.ExecuteActivity(wfCtx.Context(), engine.ActivityRequest{
				Name:  "uppercase",
				Input: input,
			}, &out)
			return out, callErr
		},
	})
	require.NoError(t, err)

	handle, err := eng.StartWorkflow(ctx, engine.WorkflowStartRequest{
		ID:       "run-1",
		Workflow: "greet",
		Input:    "hello",
	})
	require.NoError(t, err)

	var result string
	require.NoError(t, handle.Wait(ctx, &result))
	require.Equal(t, "hello!", result)

	status, err := eng.QueryRunStatus(ctx, "run-1")
	require.NoError(t, err)
	require.Equal(t, engine.RunStatusCompleted, status)
}

func TestQueryRunStatusUnknownRun(t *testing.T) {
	eng := New()
	_, err := eng.QueryRunStatus(context.Background(), "missing")
	require.ErrorIs(t, err, engine.ErrWorkflowNotFound)
}

func TestSignalDelivery(t *testing.T) {
	eng := New()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type reviewSignal struct {
		RunID  string
		Reason string
	}

	received := make(chan reviewSignal, 1)

	err := eng.RegisterWorkflow(ctx, engine.WorkflowDefinition{
		Name: "awaits_signal",
		Handler: func(wfCtx engine.WorkflowContext, _ any) (any, error) {
			var sig reviewSignal
			if err := wfCtx.SignalChannel("human_review_requested").Receive(wfCtx.Context(), &sig); err != nil {
				return nil, err
			}
			received <- sig
			return nil, nil
		},
	})
	require.NoError(t, err)

	handle, err := eng.StartWorkflow(ctx, engine.WorkflowStartRequest{
		ID:       "run-2",
		Workflow: "awaits_signal",
	})
	require.NoError(t, err)

	require.NoError(t, handle.Signal(ctx, "human_review_requested", reviewSignal{RunID: "run-2", Reason: "low_quality"}))
	require.NoError(t, handle.Wait(ctx, nil))

	select {
	case sig := <-received:
		require.Equal(t, "run-2", sig.RunID)
		require.Equal(t, "low_quality", sig.Reason)
	default:
		t.Fatal("expected signal to have been received")
	}
}
