package audit

import (
	"context"
	"sync"
)

const memoryCap = 1000

// MemoryStore keeps a bounded in-memory ring of audit entries. Used in
// demo mode and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
}

// NewMemoryStore creates an empty in-memory audit store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, e Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if len(s.entries) > memoryCap {
		s.entries = s.entries[len(s.entries)-memoryCap:]
	}
	return nil
}

func (s *MemoryStore) List(ctx context.Context, action string, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Entry, 0, limit)
	for i := len(s.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if action != "" && s.entries[i].Action != action {
			continue
		}
		out = append(out, s.entries[i])
	}
	return out, nil
}
