package errorrecovery

import (
	"errors"
	"time"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// Strategy names the recovery transition chosen for a caught error.
type Strategy string

const (
	// StrategyToolMessage emits a tool message recording the failure and
	// continues the supervisor loop, preserving the tool-call/tool-message
	// pairing invariant.
	StrategyToolMessage Strategy = "tool_message"
	// StrategySupervisorFallback emits a fallback assistant message and a
	// Command-style handoff to the fallback specialist.
	StrategySupervisorFallback Strategy = "supervisor_fallback"
	// StrategyNeutralSubstitute substitutes a minimal neutral value
	// (zero-confidence identity, uncertain routing, overall=5.0 quality)
	// and continues without a node transition.
	StrategyNeutralSubstitute Strategy = "neutral_substitute"
)

// Site names where an error was caught, driving which Strategy applies.
type Site string

const (
	// SiteTool is a failure raised while invoking a delegation or
	// specialist tool.
	SiteTool Site = "tool"
	// SiteSupervisor is a failure raised inside the supervisor node itself.
	SiteSupervisor Site = "supervisor"
	// SiteDeterministic is a failure raised inside identity, routing, or
	// quality analysis, which must not happen in normal operation.
	SiteDeterministic Site = "deterministic"
)

// Classify picks the recovery Strategy for err caught at site. A tool-site
// failure always continues the supervisor loop via a tool message; an LlmError
// or any other unclassified failure at the supervisor site falls back to the
// fallback specialist; a deterministic-module failure (Identity/Routing/
// Quality) is substituted with a neutral value and does not transition.
func Classify(site Site, err error) Strategy {
	switch site {
	case SiteTool:
		return StrategyToolMessage
	case SiteDeterministic:
		return StrategyNeutralSubstitute
	default:
		return StrategySupervisorFallback
	}
}

// Kind returns the Kind() of err if it implements Kinded, or "unknown".
func Kind(err error) string {
	var k Kinded
	if errors.As(err, &k) {
		return k.Kind()
	}
	return "unknown"
}

// Record builds the state.ErrorRecord appended to error_recovery_log for an
// error caught at site, applying its chosen Strategy.
func Record(site Site, err error, context map[string]string) state.ErrorRecord {
	strategy := Classify(site, err)
	return state.ErrorRecord{
		ErrorType:        Kind(err),
		Message:          err.Error(),
		Timestamp:        time.Now().UTC(),
		Context:          context,
		RecoveryStrategy: string(strategy),
	}
}

// NeutralIdentity is the substitute IdentityProfile used when the identity
// recognizer itself fails (StrategyNeutralSubstitute).
func NeutralIdentity() state.IdentityProfile {
	return state.IdentityProfile{PrimaryIdentity: "unknown", ConfidenceScore: 0}
}

// NeutralRouting is the substitute RoutingDecision used when the routing
// engine itself fails (StrategyNeutralSubstitute).
func NeutralRouting() state.RoutingDecision {
	return state.RoutingDecision{SpecialistAssigned: "", ConfidenceLevel: "uncertain"}
}

// NeutralQuality is the substitute QualityMetrics used when the quality
// analyzer itself fails (StrategyNeutralSubstitute): a neutral midpoint score
// that neither forces escalation nor falsely signals a strong response.
func NeutralQuality() state.QualityMetrics {
	return state.QualityMetrics{Overall: 5.0, IntelligenceLevel: state.IntelligenceProficient}
}
