package session

import (
	"context"
	"sync"
)

// MemoryStore keeps the session in process memory. Used in demo mode
// and tests; the session does not survive a restart.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
	user  *User
}

// NewMemoryStore creates an empty in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load(ctx context.Context) (string, *User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return "", nil, nil
	}
	u := *s.user
	return s.token, &u, nil
}

func (s *MemoryStore) Save(ctx context.Context, token string, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := *user
	s.token = token
	s.user = &u
	return nil
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = ""
	s.user = nil
	return nil
}
