// Package routing scores the configured specialists against an
// IdentityProfile and produces a RoutingDecision: deterministic, pure, and
// never a source of runtime failure.
package routing

import (
	"fmt"
	"sort"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// Engine scores specialists against an identity profile using a fixed
// capability table loaded at construction.
type Engine struct {
	cfg *config.Config
}

// New returns an Engine bound to cfg. cfg is never mutated.
func New(cfg *config.Config) *Engine {
	return &Engine{cfg: cfg}
}

type candidate struct {
	name  string
	score int
}

// Route produces a RoutingDecision for profile. It never fails: if the
// capability table is empty, it returns an "uncertain" decision naming no
// specialist.
func (e *Engine) Route(profile state.IdentityProfile) state.RoutingDecision {
	var candidates []candidate
	for _, name := range e.cfg.SpecialistOrder {
		prof, ok := e.cfg.Specialists[name]
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{name: name, score: score(prof, profile)})
	}
	if len(candidates) == 0 {
		return state.RoutingDecision{ConfidenceLevel: "uncertain"}
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	best := candidates[0]

	var alternatives []string
	for _, c := range candidates[1:] {
		if c.score > 0 && len(alternatives) < 2 {
			alternatives = append(alternatives, c.name)
		}
	}

	bestProfile := e.cfg.Specialists[best.name]
	return state.RoutingDecision{
		SpecialistAssigned: best.name,
		ConfidenceLevel:    confidenceBucket(best.score),
		Reasoning:          reasoning(best.name, profile, best.score),
		Alternatives:       alternatives,
		RecommendedTools:   append([]string(nil), bestProfile.RecommendedTools...),
		ExpectedOutcome:    bestProfile.ExpectedOutcome,
		SuccessMetrics:     append([]string(nil), bestProfile.SuccessMetrics...),
	}
}

func score(prof config.SpecialistProfile, profile state.IdentityProfile) int {
	total := 0
	if contains(prof.PrimaryFocus, profile.PrimaryIdentity) {
		total += 5
	} else if contains(prof.SecondaryFocus, profile.PrimaryIdentity) {
		total += 3
	}
	for _, secondary := range profile.SecondaryIdentities {
		if contains(prof.PrimaryFocus, secondary) {
			total += 3
		} else if contains(prof.SecondaryFocus, secondary) {
			total += 2
		}
	}
	if prof.EJBonus && len(profile.IntersectionalityFactors) > 1 {
		total += 2
	}
	if prof.GeneralistBonus && len(profile.SecondaryIdentities) > 1 {
		total += 1
	}
	return total
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func confidenceBucket(score int) string {
	switch {
	case score >= 6:
		return "high"
	case score >= 4:
		return "medium"
	case score >= 2:
		return "low"
	default:
		return "uncertain"
	}
}

func reasoning(specialist string, profile state.IdentityProfile, score int) string {
	return fmt.Sprintf("routed to %s based on primary identity %q (score %d)", specialist, profile.PrimaryIdentity, score)
}
