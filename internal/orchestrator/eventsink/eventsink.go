// Package eventsink delivers fire-and-forget conversation-state snapshots.
// The orchestrator publishes one snapshot per turn, after the graph run ends
// or suspends; the node transitions inside a turn are not published one by
// one, and events carry no sequence number. Unlike analytics.Sink (outcome
// observations) and statestore.Store (replay-critical persistence),
// EventSink exists purely for observers — streaming a transcript to a UI,
// feeding an external dashboard — and a failed or absent sink must never
// affect the turn.
package eventsink

import (
	"context"
	"sync"
	"time"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// Event is one turn's state snapshot.
type Event struct {
	ConversationID string
	Node           string // the node the turn's graph run started at
	Kind           string // "state_update" | "end" | "interrupt"
	State          state.State
	Timestamp      time.Time
}

// EventSink publishes turn snapshot events to whatever is listening.
// Publish must not return an error that halts the turn; callers that care
// about delivery failures log them and continue.
type EventSink interface {
	Publish(ctx context.Context, event Event)
}

// Noop discards every event. Use this when nothing is observing the
// conversation.
type Noop struct{}

// NewNoop returns an EventSink that discards everything.
func NewNoop() EventSink { return Noop{} }

// Publish discards event.
func (Noop) Publish(context.Context, Event) {}

// InMemory records every event it receives, in order, for inspection by
// tests and the demo CLI.
type InMemory struct {
	mu     sync.Mutex
	events []Event
}

// NewInMemory returns an empty InMemory sink.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// Publish appends event to the sink's history.
func (s *InMemory) Publish(_ context.Context, event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// Events returns a copy of every event recorded so far, in publish order.
func (s *InMemory) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}
