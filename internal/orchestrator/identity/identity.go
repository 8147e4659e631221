// Package identity derives an IdentityProfile from the latest user message
// text using the configured category lexicons: a deterministic, pure
// function of its inputs and the process-wide Config, never a source of
// runtime failure.
package identity

import (
	"strings"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// Recognizer extracts identity profiles using a fixed, immutable category
// table loaded at construction.
type Recognizer struct {
	cfg *config.Config
}

// New returns a Recognizer bound to cfg. cfg is never mutated.
func New(cfg *config.Config) *Recognizer {
	return &Recognizer{cfg: cfg}
}

// Recognize derives an IdentityProfile from message. It never fails: on any
// internal inconsistency (e.g. an empty category table) it returns the
// configured fallback category as a zero-confidence profile.
func (r *Recognizer) Recognize(message string) state.IdentityProfile {
	text := strings.ToLower(message)

	type scored struct {
		name  string
		score int
	}
	var results []scored
	for _, name := range r.cfg.IdentityOrder {
		cat, ok := r.cfg.IdentityCategories[name]
		if !ok {
			continue
		}
		score := 2*countHits(text, cat.Keywords) + countHits(text, cat.Context)
		results = append(results, scored{name: name, score: score})
	}

	if len(results) == 0 {
		return state.IdentityProfile{PrimaryIdentity: r.cfg.IdentityFallback, ConfidenceScore: 0}
	}

	best := results[0]
	for _, s := range results[1:] {
		if s.score > best.score {
			best = s
		}
	}

	var secondaries []string
	var barriers, strengths []string
	seenBarrier := map[string]bool{}
	seenStrength := map[string]bool{}
	addSet := func(dst *[]string, seen map[string]bool, items []string) {
		for _, item := range items {
			if !seen[item] {
				seen[item] = true
				*dst = append(*dst, item)
			}
		}
	}
	if cat, ok := r.cfg.IdentityCategories[best.name]; ok {
		addSet(&barriers, seenBarrier, cat.Barriers)
		addSet(&strengths, seenStrength, cat.Strengths)
	}

	sumScore := best.score
	for _, s := range results {
		if s.name == best.name {
			continue
		}
		if s.score > 0 {
			secondaries = append(secondaries, s.name)
			sumScore += s.score
			if cat, ok := r.cfg.IdentityCategories[s.name]; ok {
				addSet(&barriers, seenBarrier, cat.Barriers)
				addSet(&strengths, seenStrength, cat.Strengths)
			}
		}
	}

	var factors []string
	if len(secondaries) > 0 {
		factors = append(factors, "multiple_identities")
	}
	for _, marker := range r.cfg.IntersectionalityMarkers {
		if countHits(text, marker.Keywords) > 0 {
			factors = append(factors, marker.Name)
		}
	}

	confidence := float64(sumScore) / 10
	if confidence > 1.0 {
		confidence = 1.0
	}
	if best.score == 0 {
		confidence = 0
	}

	primary := best.name
	if best.score == 0 {
		primary = r.cfg.IdentityFallback
		secondaries = nil
		factors = nil
	}

	return state.IdentityProfile{
		PrimaryIdentity:          primary,
		SecondaryIdentities:      secondaries,
		IntersectionalityFactors: factors,
		BarriersIdentified:       barriers,
		StrengthsIdentified:      strengths,
		ConfidenceScore:          confidence,
	}
}

func countHits(text string, terms []string) int {
	count := 0
	for _, term := range terms {
		if term == "" {
			continue
		}
		count += strings.Count(text, strings.ToLower(term))
	}
	return count
}
