package humanloop

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/config"
)

func TestEvaluateNoSignalsNoIntervention(t *testing.T) {
	c := New(config.Default())
	d := c.Evaluate(Input{QualityOverall: 8, RoutingConfidenceLevel: "high"})
	require.False(t, d.NeedsHumanIntervention)
	require.Equal(t, 300, d.RecommendedWaitSeconds)
}

func TestEvaluateUrgentOnSensitiveTopic(t *testing.T) {
	c := New(config.Default())
	d := c.Evaluate(Input{QualityOverall: 9, RoutingConfidenceLevel: "high", UserMessage: "I'm in a mental health crisis right now"})
	require.True(t, d.NeedsHumanIntervention)
	require.Equal(t, PriorityUrgent, d.PriorityLevel)
	require.Equal(t, 60, d.RecommendedWaitSeconds)
	require.NotEmpty(t, d.EscalationContact)
}

func TestEvaluateTakesMaxAcrossSignals(t *testing.T) {
	c := New(config.Default())
	d := c.Evaluate(Input{QualityOverall: 4, RoutingConfidenceLevel: "uncertain", HandoffCount: 4})
	require.Equal(t, PriorityHigh, d.PriorityLevel)
	require.Len(t, d.Reasons, 3)
}

func TestEvaluateMediumHasNoEscalationContact(t *testing.T) {
	c := New(config.Default())
	d := c.Evaluate(Input{QualityOverall: 4})
	require.Equal(t, PriorityMedium, d.PriorityLevel)
	require.Empty(t, d.EscalationContact)
}
