// Package interrupt provides workflow signal handling for pausing a
// conversation turn on human review and resuming it once a reviewer has
// recorded a decision.
package interrupt

import (
	"context"
	"errors"

	"github.com/thependalorian/climate-orchestrator/runtime/agent/engine"
)

const (
	// SignalHumanReviewRequested is the workflow signal name carrying a
	// ReviewRequest into a run that is about to pause for human review.
	SignalHumanReviewRequested = "orchestrator.human_review_requested"
	// SignalHumanReviewResolved delivers a ReviewDecision to a paused run.
	SignalHumanReviewResolved = "orchestrator.human_review_resolved"
)

type (
	// ReviewRequest carries the metadata a paused turn publishes so a human
	// reviewer can see why the run stopped and what it needs.
	ReviewRequest struct {
		RunID       string
		SessionID   string
		Reason      string
		Priority    string
		RequestedBy string
		Labels      map[string]string
		Metadata    map[string]any
	}

	// ReviewDecision carries a reviewer's resolution of a paused turn.
	ReviewDecision struct {
		RunID       string
		Approved    bool
		Notes       string
		RequestedBy string
		Labels      map[string]string
	}

	// Controller drains human-review interrupt signals and exposes helpers
	// to pause a run and wait on its resolution. The orchestrator does not
	// use it: a graph.Interrupt result and a later ResumeTurn call carry the
	// review request and decision instead.
	//
	// Unlike the generic pause/resume/clarification/tool-results signal set
	// this is grounded on, this orchestrator only ever interrupts for human
	// review, never for external tool fulfillment, so a single request/
	// resolve signal pair is sufficient.
	Controller struct {
		requestedCh engine.SignalChannel
		resolvedCh  engine.SignalChannel
	}
)

// NewController builds a controller wired to the workflow context signals.
func NewController(wfCtx engine.WorkflowContext) *Controller {
	return &Controller{
		requestedCh: wfCtx.SignalChannel(SignalHumanReviewRequested),
		resolvedCh:  wfCtx.SignalChannel(SignalHumanReviewResolved),
	}
}

// PollReviewRequested attempts to dequeue a review request without blocking.
func (c *Controller) PollReviewRequested() (ReviewRequest, bool) {
	if c == nil || c.requestedCh == nil {
		return ReviewRequest{}, false
	}
	var req ReviewRequest
	if !c.requestedCh.ReceiveAsync(&req) {
		return ReviewRequest{}, false
	}
	return req, true
}

// WaitReviewResolved blocks until a reviewer records a decision. Returns an
// error if the controller was not initialized with a resolution channel.
func (c *Controller) WaitReviewResolved(ctx context.Context) (ReviewDecision, error) {
	if c == nil || c.resolvedCh == nil {
		return ReviewDecision{}, errors.New("interrupt: resolution channel unavailable")
	}
	var dec ReviewDecision
	if err := c.resolvedCh.Receive(ctx, &dec); err != nil {
		return ReviewDecision{}, err
	}
	return dec, nil
}
