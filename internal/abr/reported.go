package abr

import (
	"context"
	"sync"
)

// ReportedState is a PlayerStateSource fed by an external player pushing its
// state over the API. The monitor samples whatever was reported last; a player
// that stops reporting is observed at its final state until the session ends.
type ReportedState struct {
	mu    sync.RWMutex
	state PlayerState
}

// NewReportedState creates a source in the ready state.
func NewReportedState() *ReportedState {
	return &ReportedState{state: StateReady}
}

// Report records the player's current state.
func (r *ReportedState) Report(state PlayerState) {
	r.mu.Lock()
	r.state = state
	r.mu.Unlock()
}

// State implements PlayerStateSource.
func (r *ReportedState) State(_ context.Context) (PlayerState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state, nil
}

var _ PlayerStateSource = (*ReportedState)(nil)
