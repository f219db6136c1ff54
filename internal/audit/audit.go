// Package audit records every console mutation: who did what to which
// resource, and when. Recording is best effort and never blocks or
// fails the mutation itself.
package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/kahinlabs/kahinadmin/internal/idgen"
)

// Entry is one recorded mutation.
type Entry struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    string    `json:"action"`
	TargetID  string    `json:"target_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists audit entries.
type Store interface {
	Append(ctx context.Context, e Entry) error
	// List returns entries newest first, optionally filtered by action.
	List(ctx context.Context, action string, limit int) ([]Entry, error)
}

// Trail writes entries to a store.
type Trail struct {
	store  Store
	logger *slog.Logger
}

// NewTrail creates an audit trail over the given store.
func NewTrail(store Store, logger *slog.Logger) *Trail {
	if logger == nil {
		logger = slog.Default()
	}
	return &Trail{store: store, logger: logger}
}

// Record appends an entry. A store failure is logged and swallowed;
// the mutation it documents has already happened.
func (t *Trail) Record(ctx context.Context, actor, action, targetID, detail string) {
	e := Entry{
		ID:        idgen.WithPrefix("aud_"),
		Actor:     actor,
		Action:    action,
		TargetID:  targetID,
		Detail:    detail,
		CreatedAt: time.Now().UTC(),
	}
	if err := t.store.Append(ctx, e); err != nil {
		t.logger.Warn("audit append failed", "action", action, "target", targetID, "error", err)
		return
	}
	t.logger.Info("audit", "actor", actor, "action", action, "target", targetID)
}

// List returns recent entries, newest first.
func (t *Trail) List(ctx context.Context, action string, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return t.store.List(ctx, action, limit)
}
