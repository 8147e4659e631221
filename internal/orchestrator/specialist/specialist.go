// Package specialist implements the orchestrator's specialist nodes: one
// generic node type, configured per specialist from config.SpecialistProfile,
// shared by marcus, liv, miguel, and jasmine, plus a fixed-template fallback
// node reached when the supervisor cannot produce a response at all.
package specialist

import (
	"fmt"
	"time"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/completion"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/errorrecovery"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/graph"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/llm"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/quality"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// completionThreshold is the specialist's own completion-confidence cutoff,
// deliberately lower than the supervisor's 0.7: a specialist ending its own
// turn only needs to be fairly sure the user's immediate need was met, not
// that the whole conversation is done.
const completionThreshold = 0.6

// maxSpecialistHandoffs caps how many times this specialist hands the
// conversation back to the supervisor before forcing a comprehensive close,
// distinct from (and tighter than) the supervisor's overall handoff cap of 3.
const maxSpecialistHandoffs = 2

// Clock returns the current time, overridable for deterministic tests and
// durable replay.
type Clock func() time.Time

// Node is one specialist: a persona-specific system prompt plus the shared
// quality and completion machinery every specialist uses identically.
type Node struct {
	name       string
	cfg        *config.Config
	profile    config.SpecialistProfile
	quality    *quality.Analyzer
	completion *completion.Checker
	llm        llm.Client
	now        Clock
}

// New returns the Node for the specialist named name. It fails if cfg has no
// configured profile for name.
func New(name string, cfg *config.Config, client llm.Client, now Clock) (*Node, error) {
	profile, ok := cfg.Specialists[name]
	if !ok {
		return nil, fmt.Errorf("specialist: no configured profile for %q", name)
	}
	if now == nil {
		now = time.Now
	}
	return &Node{
		name:       name,
		cfg:        cfg,
		profile:    profile,
		quality:    quality.New(cfg),
		completion: completion.New(cfg),
		llm:        client,
		now:        now,
	}, nil
}

// Name returns the specialist's node name, matching its config key.
func (n *Node) Name() string { return n.name }

// NodeFunc returns the graph.Node handler for this specialist.
func (n *Node) NodeFunc() graph.Node { return n.run }

func (n *Node) run(nctx graph.NodeContext, s state.State) (graph.NodeResult, error) {
	userMessage := lastUserMessage(s)
	messages := n.buildMessages(s)

	resp, err := n.llm.Complete(nctx.Ctx, messages, nil)
	if err != nil {
		return n.llmFallback(err), nil
	}

	qualityMetrics := n.quality.Score(resp.Content, s.ToolsUsed)
	completionResult := n.completion.Check(completion.Input{
		UserMessage:             userMessage,
		SpecialistResponse:      resp.Content,
		HandoffCount:            s.HandoffCount,
		ResourceRecommendations: len(s.ResourceRecommendations),
	})

	assistantMsg := n.responseMessage(resp.Content)

	if completionResult.Confidence >= completionThreshold {
		complete, workflowState := true, state.WorkflowCompleted
		return graph.End(state.Patch{
			Messages:             []state.Message{assistantMsg},
			ConversationComplete: &complete,
			WorkflowState:        &workflowState,
			QualityMetrics:       &qualityMetrics,
		}), nil
	}

	if n.specialistHandoffCount(s) >= maxSpecialistHandoffs {
		complete, workflowState := true, state.WorkflowCompleted
		closing := n.closingMessage()
		return graph.End(state.Patch{
			Messages:             []state.Message{assistantMsg, closing},
			ConversationComplete: &complete,
			WorkflowState:        &workflowState,
			QualityMetrics:       &qualityMetrics,
		}), nil
	}

	now := n.now()
	return graph.Goto("supervisor", state.Patch{
		Messages:       []state.Message{assistantMsg},
		QualityMetrics: &qualityMetrics,
		SpecialistHandoffs: []state.HandoffRecord{{
			FromNode:        n.name,
			ToNode:          "supervisor",
			Timestamp:       now,
			TaskDescription: "returned_to_supervisor",
		}},
	}), nil
}

// specialistHandoffCount counts how many times this specialist has already
// handed the turn back to the supervisor, distinct from the supervisor's
// own handoff_count (which only the supervisor increments).
func (n *Node) specialistHandoffCount(s state.State) int {
	count := 0
	for _, h := range s.SpecialistHandoffs {
		if h.FromNode == n.name {
			count++
		}
	}
	return count
}

func (n *Node) llmFallback(cause error) graph.NodeResult {
	llmErr := errorrecovery.NewLlmError(fmt.Sprintf("%s specialist llm call failed", n.name), cause)
	errRecord := errorrecovery.Record(errorrecovery.SiteSupervisor, llmErr, map[string]string{"node": n.name})
	currentSpecialist := n.cfg.FallbackNode
	return graph.Goto(n.cfg.FallbackNode, state.Patch{
		Messages:          []state.Message{n.fallbackHandoffMessage()},
		ErrorRecoveryLog:  []state.ErrorRecord{errRecord},
		CurrentSpecialist: &currentSpecialist,
		SpecialistHandoffs: []state.HandoffRecord{{
			FromNode:        n.name,
			ToNode:          n.cfg.FallbackNode,
			Timestamp:       n.now(),
			TaskDescription: "llm_error_recovery",
		}},
	})
}

func (n *Node) responseMessage(content string) state.Message {
	now := n.now()
	return state.Message{
		ID:       fmt.Sprintf("%s-%d", n.name, now.UnixNano()),
		Role:     state.RoleAssistant,
		Content:  content,
		Metadata: map[string]string{"node": n.name, "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
}

func (n *Node) fallbackHandoffMessage() state.Message {
	now := n.now()
	return state.Message{
		ID:       fmt.Sprintf("%s-fallback-%d", n.name, now.UnixNano()),
		Role:     state.RoleAssistant,
		Content:  "I'm having trouble finishing that thought. Let me bring in some additional support.",
		Metadata: map[string]string{"node": n.name, "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
}

func (n *Node) closingMessage() state.Message {
	now := n.now()
	outcome := n.profile.ExpectedOutcome
	content := "To recap where we've landed"
	if outcome != "" {
		content += ": " + outcome + "."
	} else {
		content += ", here is a summary of next steps."
	}
	return state.Message{
		ID:       fmt.Sprintf("%s-closing-%d", n.name, now.UnixNano()),
		Role:     state.RoleAssistant,
		Content:  content,
		Metadata: map[string]string{"node": n.name, "conversation_complete": "true", "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
}

func (n *Node) buildMessages(s state.State) []llm.Message {
	out := []llm.Message{{Role: "system", Content: n.profile.SystemPromptTmpl}}
	for _, m := range s.Messages {
		switch m.Role {
		case state.RoleUser:
			out = append(out, llm.Message{Role: "user", Content: m.Content})
		case state.RoleAssistant:
			out = append(out, llm.Message{Role: "assistant", Content: m.Content})
		}
	}
	return out
}

func lastUserMessage(s state.State) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == state.RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}
