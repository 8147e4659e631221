// Package graph runs the orchestrator's node graph: conditional routing
// between the supervisor and specialist nodes, Command-style handoffs, and
// human-review interrupts. It is independent of the durable-execution
// substrate; internal/orchestrator runs it inside an engine workflow,
// passing only the workflow's Go context. Nodes keep their own clocks, and
// an interrupt ends the run with a Result rather than waiting on a workflow
// signal.
package graph

import (
	"context"
	"fmt"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/interrupt"
)

// EndNode is the sentinel conditional-edge target meaning the turn
// terminates.
const EndNode = ""

// Kind discriminates the four NodeResult variants a node may return.
type Kind string

const (
	KindStateUpdate Kind = "state_update"
	KindGoto        Kind = "goto"
	KindEnd         Kind = "end"
	KindInterrupt   Kind = "interrupt"
)

// NodeResult is the sum type a Node returns: StateUpdate consults the
// node's conditional edge to pick the next node, Goto overrides it
// unconditionally, End terminates the turn, and Interrupt suspends it.
type NodeResult struct {
	Kind    Kind
	Patch   state.Patch
	Target  string
	Request interrupt.ReviewRequest
}

// StateUpdate applies patch then consults the current node's conditional
// edge for the next node.
func StateUpdate(patch state.Patch) NodeResult {
	return NodeResult{Kind: KindStateUpdate, Patch: patch}
}

// Goto applies patch then jumps to target regardless of conditional edges.
func Goto(target string, patch state.Patch) NodeResult {
	return NodeResult{Kind: KindGoto, Target: target, Patch: patch}
}

// End applies patch then terminates the turn.
func End(patch state.Patch) NodeResult {
	return NodeResult{Kind: KindEnd, Patch: patch}
}

// Interrupt suspends the turn, surfacing request to the external caller.
func Interrupt(request interrupt.ReviewRequest) NodeResult {
	return NodeResult{Kind: KindInterrupt, Request: request}
}

// NodeContext carries the per-invocation context a Node needs: the
// deterministic Go context and, on re-entry after a resumed interrupt, the
// reviewer's decision.
type NodeContext struct {
	Ctx      context.Context
	Decision *interrupt.ReviewDecision
}

// Node is one graph node: a function from state to a NodeResult.
type Node func(nctx NodeContext, s state.State) (NodeResult, error)

// Edge computes the next node name for a node whose handler returned
// StateUpdate. Returning EndNode terminates the turn.
type Edge func(s state.State) string

// Graph is a set of named nodes plus their conditional edges and a
// distinguished start node.
type Graph struct {
	nodes map[string]Node
	edges map[string]Edge
	start string
}

// New returns an empty Graph whose traversal begins at start.
func New(start string) *Graph {
	return &Graph{nodes: make(map[string]Node), edges: make(map[string]Edge), start: start}
}

// Start returns the graph's distinguished entry node name.
func (g *Graph) Start() string { return g.start }

// AddNode registers fn under name, overwriting any prior registration.
func (g *Graph) AddNode(name string, fn Node) {
	g.nodes[name] = fn
}

// AddEdge registers the conditional edge for name, overwriting any prior
// registration. A node with no registered edge defaults to EndNode after a
// StateUpdate (i.e. it must use Goto to continue).
func (g *Graph) AddEdge(name string, edge Edge) {
	g.edges[name] = edge
}

// Result is one Run's outcome: either the turn completed (Suspended=false)
// or it suspended on an Interrupt, in which case NextNode names the node to
// re-enter on resume.
type Result struct {
	State     state.State
	Suspended bool
	Request   interrupt.ReviewRequest
	NextNode  string
}

// Run executes node-to-node transitions starting at current until an End,
// an Interrupt, or a node error. Scheduling is single-threaded: one node
// runs at a time, consistent with the per-conversation concurrency bound.
// decision, when non-nil, is delivered only to the first node invoked (the
// node being resumed); it is nil for every subsequent node in the same Run.
func (g *Graph) Run(ctx context.Context, current string, s state.State, decision *interrupt.ReviewDecision) (Result, error) {
	for {
		node, ok := g.nodes[current]
		if !ok {
			return Result{}, fmt.Errorf("graph: unknown node %q", current)
		}

		result, err := node(NodeContext{Ctx: ctx, Decision: decision}, s)
		decision = nil
		if err != nil {
			return Result{}, fmt.Errorf("graph: node %q: %w", current, err)
		}

		switch result.Kind {
		case KindEnd:
			return Result{State: state.Merge(s, result.Patch)}, nil

		case KindInterrupt:
			return Result{State: s, Suspended: true, Request: result.Request, NextNode: current}, nil

		case KindGoto:
			s = state.Merge(s, result.Patch)
			current = result.Target

		case KindStateUpdate:
			s = state.Merge(s, result.Patch)
			next := EndNode
			if edge, ok := g.edges[current]; ok {
				next = edge(s)
			}
			if next == EndNode {
				return Result{State: s}, nil
			}
			current = next

		default:
			return Result{}, fmt.Errorf("graph: node %q returned unknown result kind %q", current, result.Kind)
		}
	}
}

// SupervisorEdge implements the conditional edge from the supervisor
// node: conversation_complete or a completion metadata flag on the latest
// assistant message ends the turn; a handoff metadata flag or a confident
// routing decision names the next specialist; otherwise the supervisor
// continues.
func SupervisorEdge(knownSpecialist func(name string) bool) Edge {
	return func(s state.State) string {
		if s.ConversationComplete {
			return EndNode
		}
		if len(s.Messages) > 0 {
			last := s.Messages[len(s.Messages)-1]
			if last.Role == state.RoleAssistant {
				if v, ok := last.Metadata["conversation_complete"]; ok && v == "true" {
					return EndNode
				}
				for k, v := range last.Metadata {
					if k == "handoff_to" && knownSpecialist(v) {
						return v
					}
				}
			}
		}
		if s.RoutingDecision.SpecialistAssigned != "" && knownSpecialist(s.RoutingDecision.SpecialistAssigned) {
			return s.RoutingDecision.SpecialistAssigned
		}
		return "supervisor"
	}
}

// SpecialistEdge implements the conditional edge from a specialist node:
// completion or the handoff cap ends the turn, otherwise control returns to
// the supervisor.
func SpecialistEdge() Edge {
	return func(s state.State) string {
		if s.ConversationComplete {
			return EndNode
		}
		if s.HandoffCount >= 3 {
			return EndNode
		}
		return "supervisor"
	}
}
