package delegation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIdentRoundTripsSpecialist(t *testing.T) {
	ident := Ident("marcus")
	require.Equal(t, "supervisor.delegate.marcus", string(ident))
	name, ok := Specialist(ident)
	require.True(t, ok)
	require.Equal(t, "marcus", name)
}

func TestSpecialistRejectsNonDelegationIdent(t *testing.T) {
	_, ok := Specialist("some.other.tool")
	require.False(t, ok)
}

func TestInvokeValidPayloadReturnsCommand(t *testing.T) {
	reg, err := NewRegistry([]string{"marcus", "liv"})
	require.NoError(t, err)

	payload, err := json.Marshal(Payload{TaskDescription: "help with VA benefits"})
	require.NoError(t, err)

	cmd, err := reg.Invoke(Ident("marcus"), payload, "supervisor", time.Unix(0, 0))
	require.NoError(t, err)
	require.Equal(t, "marcus", cmd.Goto)
	require.True(t, cmd.Patch.IncrementHandoff)
	require.Len(t, cmd.Patch.SpecialistHandoffs, 1)
	require.Equal(t, "help with VA benefits", cmd.Patch.SpecialistHandoffs[0].TaskDescription)
}

func TestInvokeRejectsUnknownSpecialist(t *testing.T) {
	reg, err := NewRegistry([]string{"marcus"})
	require.NoError(t, err)
	payload, _ := json.Marshal(Payload{TaskDescription: "x"})
	_, err = reg.Invoke(Ident("jasmine"), payload, "supervisor", time.Unix(0, 0))
	require.Error(t, err)
}

func TestInvokeRejectsPayloadMissingRequiredField(t *testing.T) {
	reg, err := NewRegistry([]string{"marcus"})
	require.NoError(t, err)
	_, err = reg.Invoke(Ident("marcus"), []byte(`{}`), "supervisor", time.Unix(0, 0))
	require.Error(t, err)
}
