// Package inmem provides a mutex-guarded in-memory statestore.Store
// implementation for tests, the CLI demo, and deployments with no durable
// backend configured.
package inmem

import (
	"context"
	"sync"

	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/state"
	"github.com/thependalorian/climate-orchestrator/internal/orchestrator/statestore"
)

// Store is a mutex-guarded map keyed by "userID\x1fconversationID".
type Store struct {
	mu   sync.RWMutex
	data map[string]state.State
}

// New returns an empty in-memory Store.
func New() *Store {
	return &Store{data: make(map[string]state.State)}
}

func key(userID, conversationID string) string {
	return userID + "\x1f" + conversationID
}

// Load returns statestore.ErrNotFound when no state has been saved for the pair.
func (s *Store) Load(_ context.Context, userID, conversationID string) (state.State, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.data[key(userID, conversationID)]
	if !ok {
		return state.State{}, statestore.ErrNotFound
	}
	return st.Clone(), nil
}

// Save stores a defensive copy of s, replacing any prior record for the pair.
// It does not merge with that record: when two turns save states loaded from
// the same record, the later Save drops the messages and other appends of the
// earlier one.
func (s *Store) Save(_ context.Context, st state.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key(st.UserID, st.ConversationID)] = st.Clone()
	return nil
}

// Reset clears all stored state. Used by tests between scenarios.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]state.State)
}
