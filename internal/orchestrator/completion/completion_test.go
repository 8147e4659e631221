package completion

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/thependalorian/climate-orchestrator/internal/config"
)

func TestCheckNoSignalsContinues(t *testing.T) {
	c := New(config.Default())
	result := c.Check(Input{UserMessage: "what else can you tell me"})
	require.Equal(t, ActionContinue, result.RecommendedAction)
	require.Empty(t, result.Signals)
}

func TestCheckGratitudePlusContactCompletes(t *testing.T) {
	c := New(config.Default())
	result := c.Check(Input{
		UserMessage:        "Thank you so much, that's all I needed!",
		SpecialistResponse: "You can contact the office at the website below.",
	})
	require.Equal(t, ActionComplete, result.RecommendedAction)
	require.Contains(t, result.Signals, "gratitude_closure")
	require.Contains(t, result.Signals, "natural_ending_phrase")
	require.Contains(t, result.Signals, "contact_information_provided")
}

func TestCheckHandoffCapAlone(t *testing.T) {
	c := New(config.Default())
	result := c.Check(Input{HandoffCount: 3})
	require.Equal(t, ActionFollowup, result.RecommendedAction)
	require.InDelta(t, 0.4, result.Confidence, 1e-9)
}

func TestCheckConfidenceClampedToOne(t *testing.T) {
	c := New(config.Default())
	result := c.Check(Input{
		UserMessage:             "Thanks, that's all I needed, goodbye!",
		SpecialistResponse:      "Contact us by email or phone, apply on our website.",
		HandoffCount:            5,
		ResourceRecommendations: 4,
	})
	require.LessOrEqual(t, result.Confidence, 1.0)
}

func TestCheckRepeatedKeywordsWithinSameSignalTypeDoNotStack(t *testing.T) {
	c := New(config.Default())
	result := c.Check(Input{UserMessage: "thanks thank you thanks perfect great"})
	require.InDelta(t, 0.3, result.Confidence, 1e-9)
}
