// Package supervisor implements the orchestrator's supervisor node: the
// per-turn pipeline that runs identity recognition, routing, response
// generation, quality analysis, performance tracking, completion detection,
// handoff-cap enforcement, human-loop coordination, and delegation-tool
// handling.
package supervisor

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/completion"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/delegation"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/errorrecovery"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/graph"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/humanloop"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/identity"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/llm"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/performance"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/quality"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/routing"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/interrupt"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/tools"
)

// Name is the supervisor's node name in the graph.
const Name = "supervisor"

const defaultUserMessage = "Hello, how can I help you today?"

const supervisorPersona = "You are the orchestrator's supervisor. Understand the user's situation and either " +
	"answer directly or delegate to the specialist best suited to help them."

// Reviewer decision options for a resumed human-review interrupt, matching
// the four options offered in the ReviewRequest's metadata.
const (
	optionApprove  = "approve_and_continue"
	optionModify   = "modify_approach"
	optionEscalate = "escalate_to_human_specialist"
	optionRetry    = "provide_feedback_and_retry"
)

// Clock returns the current time. New falls back to time.Now when it is
// nil, which is what orchestrator.New passes; tests pass a fixed clock.
type Clock func() time.Time

// Supervisor wires identity recognition, routing, quality analysis,
// completion detection, human-loop coordination, performance tracking, and
// the delegation protocol into the supervisor node.
type Supervisor struct {
	cfg         *config.Config
	identity    *identity.Recognizer
	routing     *routing.Engine
	quality     *quality.Analyzer
	completion  *completion.Checker
	humanloop   *humanloop.Coordinator
	performance *performance.Tracker
	delegation  *delegation.Registry
	llm         llm.Client
	now         Clock
}

// New returns a Supervisor bound to cfg. perf is the shared per-process
// performance tracker (keyed internally per session); delegationRegistry
// recognizes and validates delegation tool calls; client produces the
// turn's assistant response. now defaults to time.Now when nil.
func New(cfg *config.Config, perf *performance.Tracker, delegationRegistry *delegation.Registry, client llm.Client, now Clock) *Supervisor {
	if now == nil {
		now = time.Now
	}
	return &Supervisor{
		cfg:         cfg,
		identity:    identity.New(cfg),
		routing:     routing.New(cfg),
		quality:     quality.New(cfg),
		completion:  completion.New(cfg),
		humanloop:   humanloop.New(cfg),
		performance: perf,
		delegation:  delegationRegistry,
		llm:         client,
		now:         now,
	}
}

// Node returns the graph.Node handler for this supervisor.
func (sv *Supervisor) Node() graph.Node { return sv.run }

func (sv *Supervisor) run(nctx graph.NodeContext, s state.State) (graph.NodeResult, error) {
	ctx := nctx.Ctx

	userMessage := lastUserMessage(s, defaultUserMessage)
	identityProfile := sv.identity.Recognize(userMessage)
	routingDecision := sv.routing.Route(identityProfile)

	toolSpecs := sv.delegationToolSpecs()
	messages := sv.buildLLMMessages(s, routingDecision)

	resp, err := sv.llm.Complete(ctx, messages, toolSpecs)
	if err != nil {
		return sv.llmFallback(err), nil
	}
	qualityMetrics := sv.quality.Score(resp.Content, s.ToolsUsed)

	sv.performance.Record(s.UserID+"\x1f"+s.ConversationID, qualityMetrics.Overall, routingDecision.ConfidenceLevel)

	completionResult := sv.completion.Check(completion.Input{
		UserMessage:             userMessage,
		SpecialistResponse:      resp.Content,
		HandoffCount:            s.HandoffCount,
		ResourceRecommendations: len(s.ResourceRecommendations),
	})
	if completionResult.RecommendedAction == completion.ActionComplete {
		complete, workflowState := true, state.WorkflowCompleted
		patch := withAnalysis(state.Patch{
			Messages:             []state.Message{sv.closingMessage(resp.Content)},
			ConversationComplete: &complete,
			WorkflowState:        &workflowState,
		}, identityProfile, routingDecision, qualityMetrics)
		return graph.End(patch), nil
	}

	if s.HandoffCount >= 3 {
		complete, workflowState := true, state.WorkflowCompleted
		patch := withAnalysis(state.Patch{
			Messages:             []state.Message{sv.loopPreventionMessage()},
			ConversationComplete: &complete,
			WorkflowState:        &workflowState,
		}, identityProfile, routingDecision, qualityMetrics)
		return graph.End(patch), nil
	}

	if nctx.Decision == nil {
		humanDecision := sv.humanloop.Evaluate(humanloop.Input{
			QualityOverall:         qualityMetrics.Overall,
			RoutingConfidenceLevel: routingDecision.ConfidenceLevel,
			HandoffCount:           s.HandoffCount,
			ErrorRecoveryLogLength: len(s.ErrorRecoveryLog),
			UserMessage:            userMessage,
		})
		if humanDecision.NeedsHumanIntervention {
			if humanDecision.PriorityLevel == humanloop.PriorityUrgent {
				needsReview, workflowState := true, state.WorkflowPendingHuman
				patch := withAnalysis(state.Patch{
					Messages:         []state.Message{sv.escalationMessage(humanDecision)},
					NeedsHumanReview: &needsReview,
					WorkflowState:    &workflowState,
				}, identityProfile, routingDecision, qualityMetrics)
				return graph.End(patch), nil
			}
			return graph.Interrupt(interrupt.ReviewRequest{
				SessionID: s.ConversationID,
				Reason:    firstReason(humanDecision.Reasons),
				Priority:  string(humanDecision.PriorityLevel),
				Metadata: map[string]any{
					"options":      []string{optionApprove, optionModify, optionEscalate, optionRetry},
					"wait_seconds": humanDecision.RecommendedWaitSeconds,
				},
			}), nil
		}
	} else {
		switch decisionOption(nctx.Decision) {
		case optionEscalate:
			needsReview, workflowState := true, state.WorkflowPendingHuman
			patch := withAnalysis(state.Patch{
				Messages:         []state.Message{sv.escalationMessage(humanloop.Decision{EscalationContact: sv.cfg.EscalationContact})},
				NeedsHumanReview: &needsReview,
				WorkflowState:    &workflowState,
			}, identityProfile, routingDecision, qualityMetrics)
			return graph.End(patch), nil
		case optionApprove:
			// fall through to step 10/11 using the already-computed response
		default: // modify_approach / provide_feedback_and_retry
			messages = append(messages, llm.Message{Role: "user", Content: "Reviewer feedback: " + nctx.Decision.Notes})
			retryResp, retryErr := sv.llm.Complete(ctx, messages, toolSpecs)
			if retryErr != nil {
				return sv.llmFallback(retryErr), nil
			}
			resp = retryResp
			qualityMetrics = sv.quality.Score(resp.Content, s.ToolsUsed)
		}
	}

	return sv.handleResponse(resp, identityProfile, routingDecision, qualityMetrics)
}

func (sv *Supervisor) handleResponse(resp llm.Response, identityProfile state.IdentityProfile, routingDecision state.RoutingDecision, qualityMetrics state.QualityMetrics) (graph.NodeResult, error) {
	now := sv.now()
	assistantMsg := state.Message{
		ID:       fmt.Sprintf("supervisor-%d", now.UnixNano()),
		Role:     state.RoleAssistant,
		Content:  resp.Content,
		Metadata: map[string]string{"node": Name, "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
	for _, tc := range resp.ToolCalls {
		assistantMsg.ToolCalls = append(assistantMsg.ToolCalls, state.ToolCall{ID: tc.ID, Name: tc.Name, Arguments: argsToMap(tc.Arguments)})
	}

	for _, tc := range resp.ToolCalls {
		specialist, ok := delegation.Specialist(tools.Ident(tc.Name))
		if !ok {
			continue
		}
		cmd, err := sv.delegation.Invoke(tools.Ident(tc.Name), tc.Arguments, Name, now)
		if err != nil {
			toolErr := errorrecovery.NewToolError(fmt.Sprintf("delegation call %s failed", tc.Name), err)
			errRecord := errorrecovery.Record(errorrecovery.SiteTool, toolErr, map[string]string{"tool": tc.Name})
			toolMsg := state.Message{
				ID:         fmt.Sprintf("tool-%s", tc.ID),
				Role:       state.RoleTool,
				Content:    toolErr.Error(),
				ToolCallID: tc.ID,
				Metadata:   map[string]string{"node": Name},
			}
			patch := withAnalysis(state.Patch{
				Messages:         []state.Message{assistantMsg, toolMsg},
				ErrorRecoveryLog: []state.ErrorRecord{errRecord},
			}, identityProfile, routingDecision, qualityMetrics)
			return graph.StateUpdate(patch), nil
		}

		toolMsg := state.Message{
			ID:         fmt.Sprintf("tool-%s", tc.ID),
			Role:       state.RoleTool,
			Content:    fmt.Sprintf("Delegating to %s.", specialist),
			ToolCallID: tc.ID,
			Metadata:   map[string]string{"node": Name},
		}
		currentSpecialist := specialist
		patch := cmd.Patch
		patch.Messages = []state.Message{assistantMsg, toolMsg}
		patch.CurrentSpecialist = &currentSpecialist
		patch = withAnalysis(patch, identityProfile, routingDecision, qualityMetrics)
		return graph.Goto(cmd.Goto, patch), nil
	}

	patch := withAnalysis(state.Patch{
		Messages: []state.Message{assistantMsg},
	}, identityProfile, routingDecision, qualityMetrics)
	return graph.StateUpdate(patch), nil
}

func (sv *Supervisor) llmFallback(cause error) graph.NodeResult {
	llmErr := errorrecovery.NewLlmError("llm client failed to produce a response", cause)
	errRecord := errorrecovery.Record(errorrecovery.SiteSupervisor, llmErr, map[string]string{"node": Name})
	now := sv.now()
	fallbackMsg := state.Message{
		ID:       fmt.Sprintf("supervisor-fallback-%d", now.UnixNano()),
		Role:     state.RoleAssistant,
		Content:  "I'm having trouble generating a response right now. Let me connect you with additional support.",
		Metadata: map[string]string{"node": Name, "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
	currentSpecialist := sv.cfg.FallbackNode
	return graph.Goto(sv.cfg.FallbackNode, state.Patch{
		Messages:          []state.Message{fallbackMsg},
		ErrorRecoveryLog:  []state.ErrorRecord{errRecord},
		IncrementHandoff:  true,
		CurrentSpecialist: &currentSpecialist,
		SpecialistHandoffs: []state.HandoffRecord{{
			FromNode:        Name,
			ToNode:          sv.cfg.FallbackNode,
			Timestamp:       now,
			TaskDescription: "llm_error_recovery",
		}},
	})
}

func (sv *Supervisor) closingMessage(content string) state.Message {
	now := sv.now()
	return state.Message{
		ID:       fmt.Sprintf("supervisor-closing-%d", now.UnixNano()),
		Role:     state.RoleAssistant,
		Content:  content,
		Metadata: map[string]string{"node": Name, "conversation_complete": "true", "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
}

func (sv *Supervisor) loopPreventionMessage() state.Message {
	now := sv.now()
	return state.Message{
		ID:   fmt.Sprintf("supervisor-loopcap-%d", now.UnixNano()),
		Role: state.RoleAssistant,
		Content: "We've covered a lot of ground across our specialists. Let's pause here so you have time to " +
			"follow up on what we've discussed; reach back out any time for more help.",
		Metadata: map[string]string{"node": Name, "conversation_complete": "true", "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
}

func (sv *Supervisor) escalationMessage(d humanloop.Decision) state.Message {
	now := sv.now()
	contact := d.EscalationContact
	if contact == "" {
		contact = sv.cfg.EscalationContact
	}
	return state.Message{
		ID:   fmt.Sprintf("supervisor-escalation-%d", now.UnixNano()),
		Role: state.RoleAssistant,
		Content: fmt.Sprintf("This conversation has been escalated for human review. A specialist will follow up; "+
			"you can also reach %s directly.", contact),
		Metadata: map[string]string{"node": Name, "timestamp": now.UTC().Format(time.RFC3339Nano)},
	}
}

func (sv *Supervisor) buildLLMMessages(s state.State, routingDecision state.RoutingDecision) []llm.Message {
	system := supervisorPersona
	if directive := llm.BuildDelegateDirective(routingDecision.SpecialistAssigned, routingDecision.ConfidenceLevel); directive != "" {
		system += "\n" + directive
	}
	out := []llm.Message{{Role: "system", Content: system}}
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

func (sv *Supervisor) delegationToolSpecs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(sv.cfg.SpecialistOrder))
	for _, name := range sv.cfg.SpecialistOrder {
		specs = append(specs, llm.ToolSpec{
			Name:        string(delegation.Ident(name)),
			Description: fmt.Sprintf("Delegate the conversation to the %s specialist.", name),
		})
	}
	return specs
}

// withAnalysis stamps the shared per-turn analysis outputs (identity,
// routing, quality, and the two derived top-level fields they bucket into)
// onto patch, preserving whatever else the caller already set.
func withAnalysis(patch state.Patch, identityProfile state.IdentityProfile, routingDecision state.RoutingDecision, qualityMetrics state.QualityMetrics) state.Patch {
	confidence := identityProfile.ConfidenceScore
	level := qualityMetrics.IntelligenceLevel
	patch.EnhancedIdentity = &identityProfile
	patch.RoutingDecision = &routingDecision
	patch.QualityMetrics = &qualityMetrics
	patch.ConfidenceScore = &confidence
	patch.IntelligenceLevel = &level
	return patch
}

func lastUserMessage(s state.State, fallback string) string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == state.RoleUser {
			return s.Messages[i].Content
		}
	}
	return fallback
}

func firstReason(reasons []string) string {
	if len(reasons) == 0 {
		return "human_review_requested"
	}
	return reasons[0]
}

func decisionOption(d *interrupt.ReviewDecision) string {
	if d == nil {
		return optionApprove
	}
	if d.Labels != nil {
		if v, ok := d.Labels["option"]; ok && v != "" {
			return v
		}
	}
	if d.Approved {
		return optionApprove
	}
	return optionRetry
}

func argsToMap(raw json.RawMessage) map[string]any {
	if len(raw) == 0 {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}
