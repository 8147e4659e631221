package performance

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordComputesRollingAverage(t *testing.T) {
	tr := New()
	s1 := tr.Record("sess1", 8.0, "high")
	require.Equal(t, 8.0, s1.SessionAverage)
	require.Equal(t, 1, s1.ResponseCount)

	s2 := tr.Record("sess1", 4.0, "high")
	require.Equal(t, 6.0, s2.SessionAverage)
	require.Equal(t, 2, s2.ResponseCount)
}

func TestRecordSessionsAreIndependent(t *testing.T) {
	tr := New()
	tr.Record("sess1", 10.0, "high")
	s2 := tr.Record("sess2", 2.0, "low")
	require.Equal(t, 2.0, s2.SessionAverage)
	require.Equal(t, 1, s2.ResponseCount)
}

func TestNextActionSelection(t *testing.T) {
	tr := New()
	require.Equal(t, ActionDelegate, tr.Record("a", 6.0, "high").NextAction)
	require.Equal(t, ActionDelegate, tr.Record("b", 6.0, "medium").NextAction)
	require.Equal(t, ActionClarify, tr.Record("c", 9.0, "uncertain").NextAction)
	require.Equal(t, ActionGuide, tr.Record("d", 5.9, "high").NextAction)
	require.Equal(t, ActionGuide, tr.Record("e", 9.0, "low").NextAction)
}
