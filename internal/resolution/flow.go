// Package resolution implements the two-step market resolution flow:
// a backend-computed payout preview must precede the irreversible
// submit, and the submitted outcome must match the previewed one.
package resolution

import (
	"errors"
	"sync"
)

// Flow errors.
var (
	// ErrNoPreview means submit was attempted without a prior preview.
	ErrNoPreview = errors.New("no resolution preview for market")
	// ErrOutcomeMismatch means the submitted outcome differs from the
	// previewed one. The operator must preview again.
	ErrOutcomeMismatch = errors.New("submitted outcome does not match preview")
	// ErrInFlight means a submit for this market is already running.
	ErrInFlight = errors.New("resolution already in flight")
)

type phase int

const (
	phaseIdle phase = iota
	phasePreviewed
	phaseSubmitting
)

type flowEntry struct {
	phase   phase
	outcome string
}

// Flow tracks the per-market preview/submit state machine. Safe for
// concurrent use; each market advances independently.
type Flow struct {
	mu     sync.Mutex
	states map[string]flowEntry
}

// NewFlow creates an empty flow tracker.
func NewFlow() *Flow {
	return &Flow{states: make(map[string]flowEntry)}
}

// Previewed records a successful preview for the market. Re-previewing
// with a different outcome replaces the previous one.
func (f *Flow) Previewed(marketID, outcome string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry := f.states[marketID]
	if entry.phase == phaseSubmitting {
		// A preview during an active submit does not interrupt it.
		return
	}
	f.states[marketID] = flowEntry{phase: phasePreviewed, outcome: outcome}
}

// BeginSubmit transitions Previewed to Submitting if the outcome
// matches the previewed one. Only one submit per market can be in
// flight at a time.
func (f *Flow) BeginSubmit(marketID, outcome string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.states[marketID]
	if !ok || entry.phase == phaseIdle {
		return ErrNoPreview
	}
	if entry.phase == phaseSubmitting {
		return ErrInFlight
	}
	if entry.outcome != outcome {
		return ErrOutcomeMismatch
	}

	entry.phase = phaseSubmitting
	f.states[marketID] = entry
	return nil
}

// FailSubmit returns a failed submit to Previewed so the operator can
// retry without a fresh preview.
func (f *Flow) FailSubmit(marketID string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entry, ok := f.states[marketID]
	if !ok || entry.phase != phaseSubmitting {
		return
	}
	entry.phase = phasePreviewed
	f.states[marketID] = entry
}

// CompleteSubmit clears the market's flow state after a successful
// resolution. The market is gone from the resolvable list anyway.
func (f *Flow) CompleteSubmit(marketID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.states, marketID)
}

// Phase reports the market's current phase as a string for the UI.
func (f *Flow) Phase(marketID string) string {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.states[marketID].phase {
	case phasePreviewed:
		return "previewed"
	case phaseSubmitting:
		return "submitting"
	default:
		return "idle"
	}
}
