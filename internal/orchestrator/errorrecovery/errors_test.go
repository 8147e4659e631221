package errorrecovery

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorKindsSatisfyKinded(t *testing.T) {
	cause := errors.New("boom")
	kinds := []Kinded{
		NewIdentityError("bad lexicon", cause),
		NewRoutingError("no candidates", cause),
		NewQualityError("bad rubric", cause),
		NewToolError("delegate_to_marcus failed", cause),
		NewLlmError("stub unreachable", cause),
	}
	want := []string{"identity_error", "routing_error", "quality_error", "tool_error", "llm_error"}
	for i, k := range kinds {
		require.Equal(t, want[i], k.Kind())
		require.ErrorIs(t, k, cause)
	}
}

func TestStateStoreErrorUnwrapsSentinel(t *testing.T) {
	sentinel := errors.New("statestore: io failure")
	err := NewStateStoreError("save", sentinel)
	require.ErrorIs(t, err, sentinel)
	require.Contains(t, err.Error(), "save")
}

func TestCancelledUnwraps(t *testing.T) {
	ctxErr := errors.New("context deadline exceeded")
	err := NewCancelled(ctxErr)
	require.ErrorIs(t, err, ctxErr)
}

func TestClassifyBySite(t *testing.T) {
	require.Equal(t, StrategyToolMessage, Classify(SiteTool, NewToolError("x", nil)))
	require.Equal(t, StrategyNeutralSubstitute, Classify(SiteDeterministic, NewIdentityError("x", nil)))
	require.Equal(t, StrategySupervisorFallback, Classify(SiteSupervisor, NewLlmError("x", nil)))
}

func TestRecordBuildsErrorRecord(t *testing.T) {
	rec := Record(SiteTool, NewToolError("delegate_to_marcus failed", nil), map[string]string{"tool": "delegate_to_marcus"})
	require.Equal(t, "tool_error", rec.ErrorType)
	require.Equal(t, string(StrategyToolMessage), rec.RecoveryStrategy)
	require.False(t, rec.Timestamp.IsZero())
}
