// Package config loads the orchestrator's immutable process-wide
// configuration: identity lexicons, the specialist capability table, quality
// rubric weights and lexicons, completion-checker keyword lists, and the
// human-loop escalation contact. Configuration is loaded once at process
// startup via Load or Default and never mutated afterward.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type (
	// IdentityCategory is one row of the identity recognizer's category
	// table: a keyword/context lexicon plus the barriers and strengths
	// associated with that identity.
	IdentityCategory struct {
		Keywords  []string `yaml:"keywords"`
		Context   []string `yaml:"context"`
		Barriers  []string `yaml:"barriers"`
		Strengths []string `yaml:"strengths"`
	}

	// IntersectionalityMarker detects one additional identity marker from
	// message text, independent of the primary category table.
	IntersectionalityMarker struct {
		Name     string   `yaml:"name"`
		Keywords []string `yaml:"keywords"`
	}

	// SpecialistProfile is one row of the routing engine's capability
	// table.
	SpecialistProfile struct {
		PrimaryFocus      []string `yaml:"primary_focus"`
		SecondaryFocus    []string `yaml:"secondary_focus"`
		RecommendedTools  []string `yaml:"recommended_tools"`
		SuccessMetrics    []string `yaml:"success_metrics"`
		ExpectedOutcome   string   `yaml:"expected_outcome"`
		EJBonus           bool     `yaml:"ej_bonus"`
		GeneralistBonus   bool     `yaml:"generalist_bonus"`
		SystemPromptTmpl  string   `yaml:"system_prompt"`
	}

	// QualityWeights are the fixed per-dimension weights for the overall
	// quality score. Default's weights sum to 1.0; Load does not check the
	// sum of weights read from a file.
	QualityWeights struct {
		Clarity         float64 `yaml:"clarity"`
		Actionability   float64 `yaml:"actionability"`
		Personalization float64 `yaml:"personalization"`
		SourceCitation  float64 `yaml:"source_citation"`
		EjAwareness     float64 `yaml:"ej_awareness"`
	}

	// QualityLexicon is one rubric dimension's keyword list and per-hit
	// weight, capped at 10 points.
	QualityLexicon struct {
		Keywords []string `yaml:"keywords"`
		PerHit   float64  `yaml:"per_hit"`
	}

	// CompletionLexicon holds the completion checker's keyword lists.
	CompletionLexicon struct {
		GratitudeClosure   []string `yaml:"gratitude_closure"`
		NaturalEnding      []string `yaml:"natural_ending"`
		ContactInformation []string `yaml:"contact_information"`
	}

	// Config is the orchestrator's full immutable process configuration.
	Config struct {
		IdentityCategories map[string]IdentityCategory `yaml:"identity_categories"`
		// IdentityOrder preserves the declaration order of
		// IdentityCategories (Go maps have no stable iteration order) so
		// tie-breaking by table order is deterministic.
		IdentityOrder           []string                   `yaml:"identity_order"`
		IntersectionalityMarkers []IntersectionalityMarker `yaml:"intersectionality_markers"`
		IdentityFallback        string                     `yaml:"identity_fallback"`

		Specialists     map[string]SpecialistProfile `yaml:"specialists"`
		SpecialistOrder []string                     `yaml:"specialist_order"`
		FallbackNode    string                        `yaml:"fallback_node"`

		QualityWeights  QualityWeights            `yaml:"quality_weights"`
		QualityLexicons map[string]QualityLexicon `yaml:"quality_lexicons"`

		Completion CompletionLexicon `yaml:"completion"`

		EscalationContact string `yaml:"escalation_contact"`
	}
)

// Load reads and parses a Config from r.
func Load(r io.Reader) (*Config, error) {
	dec := yaml.NewDecoder(r)
	var cfg Config
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	return &cfg, nil
}

// LoadFile reads and parses a Config from the file at path.
func LoadFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}
