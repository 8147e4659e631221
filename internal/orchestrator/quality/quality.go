// Package quality scores a specialist's response text against the
// configured five-dimension rubric: deterministic, a pure function of its
// inputs, reproducible on replay.
package quality

import (
	"strings"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

const dimensionCap = 10.0

// Analyzer scores responses using a fixed rubric loaded at construction.
type Analyzer struct {
	cfg *config.Config
}

// New returns an Analyzer bound to cfg. cfg is never mutated.
func New(cfg *config.Config) *Analyzer {
	return &Analyzer{cfg: cfg}
}

// Score evaluates responseText and returns the five-dimension QualityMetrics.
// toolsUsed is accepted for interface compatibility but the configured lexicons
// currently score response text alone; toolsUsed is reserved for recognizers
// that key on which tools produced a citation-worthy response.
func (a *Analyzer) Score(responseText string, _ []string) state.QualityMetrics {
	text := strings.ToLower(responseText)

	dim := func(name string) float64 {
		lex, ok := a.cfg.QualityLexicons[name]
		if !ok {
			return 0
		}
		hits := 0
		for _, kw := range lex.Keywords {
			hits += strings.Count(text, strings.ToLower(kw))
		}
		score := float64(hits) * lex.PerHit
		if score > dimensionCap {
			score = dimensionCap
		}
		return score
	}

	clarity := dim("clarity")
	actionability := dim("actionability")
	personalization := dim("personalization")
	sourceCitation := dim("source_citation")
	ejAwareness := dim("ej_awareness")

	w := a.cfg.QualityWeights
	overall := w.Clarity*clarity + w.Actionability*actionability + w.Personalization*personalization +
		w.SourceCitation*sourceCitation + w.EjAwareness*ejAwareness

	return state.QualityMetrics{
		Clarity:           clarity,
		Actionability:     actionability,
		Personalization:   personalization,
		SourceCitation:    sourceCitation,
		EjAwareness:       ejAwareness,
		Overall:           overall,
		IntelligenceLevel: bucket(overall),
	}
}

// bucket maps an overall score to its IntelligenceLevel per the state
// model's fixed thresholds.
func bucket(overall float64) state.IntelligenceLevel {
	switch {
	case overall >= 8.5:
		return state.IntelligenceExceptional
	case overall >= 7.0:
		return state.IntelligenceAdvanced
	case overall >= 5.0:
		return state.IntelligenceProficient
	case overall >= 3.0:
		return state.IntelligenceDeveloping
	default:
		return state.IntelligenceBasic
	}
}
