// Package orchestrator wires the graph, the supervisor and specialist
// nodes, and the collaborator contracts (state persistence, event
// publication, an LlmClient) into the two operations external callers use:
// RunTurn and ResumeTurn. It binds that wiring to an engine.Engine so one
// workflow execution carries exactly one turn, matching the durable-
// execution substrate the rest of this module targets.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/thependalorian/climate-orchestrator/internal/config"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/delegation"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/errorrecovery"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/eventsink"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/graph"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/llm"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/performance"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/specialist"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/supervisor"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/engine"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/interrupt"
	"github.com/thependalorian/climate-orchestrator/runtime/agent/session"
	sessioninmem "github.com/thependalorian/climate-orchestrator/runtime/agent/session/inmem"
)

// WorkflowName identifies the turn workflow registered with the engine.
const WorkflowName = "orchestrator.turn"

// reentryNode is the only node that ever returns graph.Interrupt, so a
// resumed turn always re-enters the graph there.
const reentryNode = "supervisor"

const defaultTaskQueue = "orchestrator"

// TurnResultKind discriminates the three-way outcome run_turn/resume_turn
// can produce.
type TurnResultKind string

const (
	TurnCompleted     TurnResultKind = "completed"
	TurnAwaitingUser  TurnResultKind = "awaiting_user"
	TurnAwaitingHuman TurnResultKind = "awaiting_human"
)

// TurnResult is the orchestrator's TurnResult sum type, collapsed into one
// struct since Go has no tagged unions: Kind says which of State/Request is
// meaningful.
type TurnResult struct {
	Kind    TurnResultKind
	State   state.State
	Request interrupt.ReviewRequest
}

// turnInput is the payload handed to the registered workflow. UserMessage is
// set for a fresh run_turn call; ResumeDecision is set for a resume_turn
// call re-entering an interrupted turn. Exactly one is populated.
type turnInput struct {
	UserID         string
	ConversationID string
	UserMessage    string
	ResumeDecision *interrupt.ReviewDecision
}

// turnOutput is the workflow's return value, reassembled into a TurnResult
// by the caller of StartWorkflow.
type turnOutput struct {
	Suspended bool
	Request   interrupt.ReviewRequest
	State     state.State
}

// Orchestrator wires the graph to its collaborators and the workflow
// engine. It holds no per-conversation state itself: every field a turn
// needs is either loaded from Store or threaded through turnInput/turnOutput.
type Orchestrator struct {
	engine    engine.Engine
	graph     *graph.Graph
	store     statestore.Store
	events    eventsink.EventSink
	sessions  session.Store
	taskQueue string
}

// New builds the node graph from cfg and client, registers it as a workflow
// with eng, and returns an Orchestrator ready to serve RunTurn/ResumeTurn.
// events and sessions may be nil: events falls back to a discarding sink,
// sessions falls back to a process-local in-memory store.
func New(ctx context.Context, eng engine.Engine, cfg *config.Config, client llm.Client, store statestore.Store, events eventsink.EventSink, sessions session.Store) (*Orchestrator, error) {
	if eng == nil {
		return nil, errors.New("orchestrator: engine is required")
	}
	if store == nil {
		return nil, errors.New("orchestrator: statestore is required")
	}
	if events == nil {
		events = eventsink.NewNoop()
	}
	if sessions == nil {
		sessions = sessioninmem.New()
	}

	g, err := buildGraph(cfg, client, nil)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build graph: %w", err)
	}

	o := &Orchestrator{engine: eng, graph: g, store: store, events: events, sessions: sessions, taskQueue: defaultTaskQueue}

	if err := eng.RegisterWorkflow(ctx, engine.WorkflowDefinition{
		Name:      WorkflowName,
		TaskQueue: o.taskQueue,
		Handler:   o.handleTurn,
	}); err != nil {
		return nil, fmt.Errorf("orchestrator: register workflow: %w", err)
	}
	return o, nil
}

// buildGraph assembles the supervisor, the four specialists, and the
// fallback node into a graph.Graph rooted at "supervisor". now overrides
// every node's clock; nil means time.Now. New passes nil, so nodes never
// read the WorkflowContext's clock.
func buildGraph(cfg *config.Config, client llm.Client, now supervisor.Clock) (*graph.Graph, error) {
	reg, err := delegation.NewRegistry(cfg.SpecialistOrder)
	if err != nil {
		return nil, fmt.Errorf("delegation registry: %w", err)
	}

	g := graph.New("supervisor")

	sv := supervisor.New(cfg, performance.New(), reg, client, now)
	g.AddNode("supervisor", sv.Node())
	known := func(name string) bool {
		_, ok := cfg.Specialists[name]
		return ok
	}
	g.AddEdge("supervisor", graph.SupervisorEdge(known))

	for _, name := range cfg.SpecialistOrder {
		node, err := specialist.New(name, cfg, client, specialist.Clock(now))
		if err != nil {
			return nil, fmt.Errorf("specialist %q: %w", name, err)
		}
		g.AddNode(name, node.NodeFunc())
		g.AddEdge(name, graph.SpecialistEdge())
	}

	fb := specialist.NewFallback(cfg.FallbackNode, specialist.Clock(now))
	g.AddNode(cfg.FallbackNode, fb.NodeFunc())
	g.AddEdge(cfg.FallbackNode, graph.SpecialistEdge())

	return g, nil
}

// RunTurn consumes one user message for (userID, conversationID), starting
// a fresh conversation if none is persisted yet.
func (o *Orchestrator) RunTurn(ctx context.Context, userID, conversationID, userMessage string) (TurnResult, error) {
	if conversationID == "" {
		return TurnResult{}, errors.New("orchestrator: conversation id is required")
	}
	return o.execute(ctx, turnInput{UserID: userID, ConversationID: conversationID, UserMessage: userMessage})
}

// ResumeTurn re-enters a conversation previously suspended on
// TurnAwaitingHuman with the reviewer's decision.
func (o *Orchestrator) ResumeTurn(ctx context.Context, userID, conversationID string, decision interrupt.ReviewDecision) (TurnResult, error) {
	if conversationID == "" {
		return TurnResult{}, errors.New("orchestrator: conversation id is required")
	}
	return o.execute(ctx, turnInput{UserID: userID, ConversationID: conversationID, ResumeDecision: &decision})
}

func (o *Orchestrator) execute(ctx context.Context, in turnInput) (TurnResult, error) {
	now := time.Now()
	if _, err := o.sessions.CreateSession(ctx, in.ConversationID, now); err != nil && !errors.Is(err, session.ErrSessionEnded) {
		return TurnResult{}, fmt.Errorf("orchestrator: create session: %w", err)
	}

	runID := fmt.Sprintf("%s-%d", in.ConversationID, now.UnixNano())
	if err := o.sessions.UpsertRun(ctx, session.RunMeta{
		AgentID:   reentryNode,
		RunID:     runID,
		SessionID: in.ConversationID,
		Status:    session.RunStatusRunning,
		StartedAt: now,
	}); err != nil {
		return TurnResult{}, fmt.Errorf("orchestrator: record run start: %w", err)
	}

	handle, err := o.engine.StartWorkflow(ctx, engine.WorkflowStartRequest{
		ID:        runID,
		Workflow:  WorkflowName,
		TaskQueue: o.taskQueue,
		Input:     in,
	})
	if err != nil {
		return TurnResult{}, fmt.Errorf("orchestrator: start workflow: %w", err)
	}

	var out turnOutput
	waitErr := handle.Wait(ctx, &out)

	runStatus := session.RunStatusCompleted
	switch {
	case waitErr != nil:
		runStatus = session.RunStatusFailed
	case out.Suspended:
		runStatus = session.RunStatusPaused
	}
	agentID := out.State.CurrentSpecialist
	if agentID == "" {
		agentID = reentryNode
	}
	_ = o.sessions.UpsertRun(ctx, session.RunMeta{
		AgentID:   agentID,
		RunID:     runID,
		SessionID: in.ConversationID,
		Status:    runStatus,
		StartedAt: now,
	})

	if waitErr != nil {
		return TurnResult{}, waitErr
	}

	switch {
	case out.Suspended:
		return TurnResult{Kind: TurnAwaitingHuman, State: out.State, Request: out.Request}, nil
	case out.State.WorkflowState == state.WorkflowPendingHuman:
		// The urgent-escalation path ends the turn directly (graph.End) rather
		// than suspending on graph.Interrupt, but it is still awaiting a human.
		return TurnResult{Kind: TurnAwaitingHuman, State: out.State}, nil
	case out.State.ConversationComplete:
		return TurnResult{Kind: TurnCompleted, State: out.State}, nil
	default:
		return TurnResult{Kind: TurnAwaitingUser, State: out.State}, nil
	}
}

// handleTurn is the WorkflowFunc registered under WorkflowName. It loads
// persisted state (seeding fresh state on first contact), applies the
// incoming user message or resume decision, runs the graph to completion or
// suspension, persists the result, and publishes an observation event.
//
// A suspended turn's resume point is never persisted explicitly: "supervisor"
// is the only node in this graph that ever returns graph.Interrupt, so
// resume always re-enters there.
func (o *Orchestrator) handleTurn(wfCtx engine.WorkflowContext, input any) (any, error) {
	in, ok := input.(turnInput)
	if !ok {
		return nil, fmt.Errorf("orchestrator: unexpected workflow input %T", input)
	}
	ctx := wfCtx.Context()

	s, err := o.store.Load(ctx, in.UserID, in.ConversationID)
	if err != nil {
		if !errors.Is(err, statestore.ErrNotFound) {
			return nil, errorrecovery.NewStateStoreError("load", err)
		}
		s = state.Seed(in.UserID, in.ConversationID)
	}

	startNode := o.graph.Start()
	decision := in.ResumeDecision
	if decision != nil {
		startNode = reentryNode
	} else if in.UserMessage != "" {
		s = state.Merge(s, state.Patch{Messages: []state.Message{{
			ID:      fmt.Sprintf("user-%d", wfCtx.Now().UnixNano()),
			Role:    state.RoleUser,
			Content: in.UserMessage,
		}}})
	}

	result, err := o.graph.Run(ctx, startNode, s, decision)
	if err != nil {
		return nil, err
	}

	if err := o.store.Save(ctx, result.State); err != nil {
		return nil, errorrecovery.NewStateStoreError("save", err)
	}
	o.events.Publish(ctx, eventsink.Event{
		ConversationID: in.ConversationID,
		Node:           startNode,
		Kind:           eventKind(result),
		State:          result.State,
		Timestamp:      wfCtx.Now(),
	})

	return turnOutput{Suspended: result.Suspended, Request: result.Request, State: result.State}, nil
}

func eventKind(result graph.Result) string {
	switch {
	case result.Suspended:
		return "interrupt"
	case result.State.ConversationComplete:
		return "end"
	default:
		return "state_update"
	}
}
