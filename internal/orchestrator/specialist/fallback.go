package specialist

import (
	"fmt"
	"time"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/graph"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// FallbackNode is reached only via a Command-style handoff when the
// supervisor or a specialist failed to produce a response at all (an
// LlmError recovered by StrategySupervisorFallback). It never calls an
// LlmClient itself: its apology/redirect template is fixed, so it cannot
// fail the same way the node it is rescuing from just did.
type FallbackNode struct {
	name string
	now  Clock
}

// NewFallback returns the fallback node bound to name (normally
// config.Config.FallbackNode).
func NewFallback(name string, now Clock) *FallbackNode {
	if now == nil {
		now = time.Now
	}
	return &FallbackNode{name: name, now: now}
}

// Name returns the fallback node's graph name.
func (f *FallbackNode) Name() string { return f.name }

// NodeFunc returns the graph.Node handler for the fallback node.
func (f *FallbackNode) NodeFunc() graph.Node { return f.run }

func (f *FallbackNode) run(_ graph.NodeContext, s state.State) (graph.NodeResult, error) {
	now := f.now()
	msg := state.Message{
		ID:   fmt.Sprintf("%s-%d", f.name, now.UnixNano()),
		Role: state.RoleAssistant,
		Content: "I'm sorry, I wasn't able to put together a good response just now. " +
			"A member of our team will follow up with you directly; in the meantime, " +
			"feel free to describe what you need again and I'll try once more.",
		Metadata: map[string]string{"node": f.name, "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
	return graph.Goto("supervisor", state.Patch{Messages: []state.Message{msg}}), nil
}
