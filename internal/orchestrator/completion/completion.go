// Package completion classifies whether the current turn should end the
// conversation by accumulating confidence from a fixed set of signals.
package completion

import (
	"strings"

	"github.com/thependalorian/climate-orchestrator/internal/config"
)

// Action is the recommended next action emitted alongside a confidence score.
type Action string

const (
	ActionComplete Action = "complete"
	ActionFollowup Action = "followup"
	ActionContinue Action = "continue"
)

// Input carries everything the checker needs to evaluate one turn.
type Input struct {
	UserMessage              string
	SpecialistResponse       string
	HandoffCount             int
	ResourceRecommendations  int
}

// Result is the checker's verdict for one turn.
type Result struct {
	Confidence        float64
	Signals           []string
	RecommendedAction Action
}

// Checker classifies turn completion using a fixed keyword configuration.
type Checker struct {
	cfg *config.Config
}

// New returns a Checker bound to cfg. cfg is never mutated.
func New(cfg *config.Config) *Checker {
	return &Checker{cfg: cfg}
}

// Check evaluates in and returns the accumulated confidence, the signals
// that fired, and the recommended action.
func (c *Checker) Check(in Input) Result {
	userText := strings.ToLower(in.UserMessage)
	responseText := strings.ToLower(in.SpecialistResponse)

	var confidence float64
	var signals []string

	if anyHit(userText, c.cfg.Completion.GratitudeClosure) {
		confidence += 0.3
		signals = append(signals, "gratitude_closure")
	}
	if in.HandoffCount >= 3 {
		confidence += 0.4
		signals = append(signals, "handoff_cap_reached")
	}
	if in.ResourceRecommendations >= 2 {
		confidence += 0.2
		signals = append(signals, "sufficient_resources")
	}
	if anyHit(responseText, c.cfg.Completion.ContactInformation) {
		confidence += 0.3
		signals = append(signals, "contact_information_provided")
	}
	if anyHit(userText, c.cfg.Completion.NaturalEnding) {
		confidence += 0.5
		signals = append(signals, "natural_ending_phrase")
	}

	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return Result{
		Confidence:        confidence,
		Signals:           signals,
		RecommendedAction: classify(confidence),
	}
}

func classify(confidence float64) Action {
	switch {
	case confidence >= 0.7:
		return ActionComplete
	case confidence >= 0.3:
		return ActionFollowup
	default:
		return ActionContinue
	}
}

func anyHit(text string, terms []string) bool {
	for _, term := range terms {
		if term == "" {
			continue
		}
		if strings.Contains(text, strings.ToLower(term)) {
			return true
		}
	}
	return false
}
