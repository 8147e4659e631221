// Package statestore defines the conversation State persistence contract and
// its sentinel failure modes.
package statestore

import (
	"context"
	"errors"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
)

// Sentinel errors returned by Store implementations. Callers wrap these in
// a StateStoreError (see internal/orchestrator/errorrecovery) before
// propagating them out of run_turn/resume_turn.
var (
	// ErrNotFound indicates no state exists yet for (userID, conversationID);
	// callers should fall back to state.Seed.
	ErrNotFound = errors.New("statestore: not found")
	// ErrIO indicates a transient failure talking to the backing store.
	ErrIO = errors.New("statestore: io failure")
	// ErrCorrupt indicates the persisted state could not be decoded.
	ErrCorrupt = errors.New("statestore: corrupt record")
)

// Store persists conversation State keyed by (userID, conversationID).
//
// Load returns ErrNotFound when no record exists. Save must apply the same
// overwrite/append-only merge semantics as state.Merge so that two
// concurrent turns for the same conversation never lose appended messages,
// even if their overwrite fields race.
type Store interface {
	Load(ctx context.Context, userID, conversationID string) (state.State, error)
	Save(ctx context.Context, s state.State) error
}
