// Package humanloop decides whether a turn needs human intervention and, if
// so, at what priority, aggregating signals from quality, routing,
// handoff accounting, and the error log.
package humanloop

import (
	"strings"

	"github.com/thependalorian/climate-orchestrator/internal/config"
)

// Priority is the escalation priority level.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

var priorityRank = map[Priority]int{
	PriorityLow:    0,
	PriorityMedium: 1,
	PriorityHigh:   2,
	PriorityUrgent: 3,
}

var sensitiveKeywords = []string{"discrimination", "harassment", "mental health", "crisis", "emergency"}

// Input carries everything the coordinator needs to evaluate one turn.
type Input struct {
	QualityOverall         float64
	RoutingConfidenceLevel string
	HandoffCount           int
	ErrorRecoveryLogLength int
	UserMessage            string
}

// Decision is the coordinator's verdict for one turn.
type Decision struct {
	NeedsHumanIntervention bool
	PriorityLevel          Priority
	Reasons                []string
	RecommendedWaitSeconds int
	EscalationContact      string
}

// Coordinator evaluates human-loop signals using the configured escalation
// contact.
type Coordinator struct {
	cfg *config.Config
}

// New returns a Coordinator bound to cfg. cfg is never mutated.
func New(cfg *config.Config) *Coordinator {
	return &Coordinator{cfg: cfg}
}

// Evaluate returns the Decision for in.
func (c *Coordinator) Evaluate(in Input) Decision {
	priority := PriorityLow
	var reasons []string

	raise := func(p Priority, reason string) {
		reasons = append(reasons, reason)
		if priorityRank[p] > priorityRank[priority] {
			priority = p
		}
	}

	triggered := false
	if in.QualityOverall < 5.0 {
		triggered = true
		raise(PriorityMedium, "quality_below_threshold")
	}
	if in.RoutingConfidenceLevel == "uncertain" {
		triggered = true
		raise(PriorityMedium, "routing_uncertain")
	}
	if in.HandoffCount >= 4 {
		triggered = true
		raise(PriorityHigh, "handoff_cap_exceeded")
	}
	if in.ErrorRecoveryLogLength >= 2 {
		triggered = true
		raise(PriorityUrgent, "repeated_errors")
	}
	if containsSensitiveKeyword(in.UserMessage) {
		triggered = true
		raise(PriorityUrgent, "sensitive_topic")
	}

	if !triggered {
		return Decision{NeedsHumanIntervention: false, PriorityLevel: PriorityLow, RecommendedWaitSeconds: 300}
	}

	wait := 300
	if priority == PriorityHigh || priority == PriorityUrgent {
		wait = 60
	}

	decision := Decision{
		NeedsHumanIntervention: true,
		PriorityLevel:          priority,
		Reasons:                reasons,
		RecommendedWaitSeconds: wait,
	}
	if priority == PriorityHigh || priority == PriorityUrgent {
		decision.EscalationContact = c.cfg.EscalationContact
	}
	return decision
}

func containsSensitiveKeyword(message string) bool {
	text := strings.ToLower(message)
	for _, kw := range sensitiveKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
