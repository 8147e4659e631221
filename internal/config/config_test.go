package config

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultHasAllFourSpecialists(t *testing.T) {
	cfg := Default()
	require.Len(t, cfg.Specialists, 4)
	for _, name := range cfg.SpecialistOrder {
		_, ok := cfg.Specialists[name]
		require.True(t, ok, "specialist_order entry %q missing from Specialists", name)
	}
	require.Equal(t, "fallback", cfg.FallbackNode)
	require.NotContains(t, cfg.SpecialistOrder, cfg.FallbackNode, "fallback must never appear in the routable specialist table")
}

func TestDefaultQualityWeightsSumToOne(t *testing.T) {
	w := Default().QualityWeights
	sum := w.Clarity + w.Actionability + w.Personalization + w.SourceCitation + w.EjAwareness
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestLoadRoundTripsDefault(t *testing.T) {
	cfg := Default()
	buf, err := yaml.Marshal(cfg)
	require.NoError(t, err)

	loaded, err := Load(bytes.NewReader(buf))
	require.NoError(t, err)
	require.Equal(t, cfg, loaded)
}
