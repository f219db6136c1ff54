// Package session owns the operator session: who is logged in and
// whether they are allowed here. It is the single source of truth
// consulted by the route guard and the upstream client.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/kahinlabs/kahinadmin/internal/metrics"
)

// AdminOnlyMessage is shown when a non-admin account tries to log in.
const AdminOnlyMessage = "Bu panele sadece admin kullanıcılar erişebilir"

// Sentinel errors.
var (
	// ErrNotAdmin means login succeeded at the transport level but the
	// account is not an admin. The issued token is discarded.
	ErrNotAdmin = errors.New("account is not an admin")

	// ErrNotAuthenticated means no admin session is active.
	ErrNotAuthenticated = errors.New("no authenticated session")
)

// State is the guard's tri-state machine. Hydrating transitions to one
// of the other two exactly once, at Initialize.
type State int

const (
	StateHydrating State = iota
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateHydrating:
		return "hydrating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unauthenticated"
	}
}

// User is the operator identity held by the session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Store persists the token and user across restarts.
type Store interface {
	Load(ctx context.Context) (token string, user *User, err error)
	Save(ctx context.Context, token string, user *User) error
	Clear(ctx context.Context) error
}

// AuthAPI is the slice of the upstream client the manager needs.
// Wired through an adapter in the server to avoid an import cycle:
// the upstream client reads the token back from this manager.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (token string, user *User, err error)
	Logout(ctx context.Context) error
}

// Manager holds the current session. Safe for concurrent use.
type Manager struct {
	mu          sync.RWMutex
	state       State
	token       string
	user        *User
	initialized bool

	store  Store
	api    AuthAPI
	logger *slog.Logger
}

// NewManager creates a session manager in the Hydrating state.
func NewManager(store Store, api AuthAPI, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		state:  StateHydrating,
		store:  store,
		api:    api,
		logger: logger,
	}
}

// Initialize hydrates the session from the store, exactly once.
//
// Fails closed: a store error, a missing session, or a stored role other
// than admin all end in the Unauthenticated state. The non-admin case
// additionally purges storage, silently (no error surfaces; stale
// sessions are not a visible failure).
func (m *Manager) Initialize(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized {
		return
	}
	m.initialized = true

	token, user, err := m.store.Load(ctx)
	if err != nil {
		m.logger.Warn("session hydration failed, starting unauthenticated", "error", err)
		m.becomeUnauthenticated(ctx, false)
		return
	}

	if token == "" || user == nil {
		m.becomeUnauthenticated(ctx, false)
		return
	}

	if user.Role != "admin" {
		// Stale non-admin session: purge and continue as if logged out.
		m.logger.Info("purging stored non-admin session", "role", user.Role)
		m.becomeUnauthenticated(ctx, true)
		return
	}

	m.token = token
	m.user = user
	m.state = StateAuthenticated
	metrics.SessionAuthenticated.Set(1)
	m.logger.Info("session restored", "user", user.Username)
}

// becomeUnauthenticated resets in-memory state and optionally storage.
// Caller must hold m.mu.
func (m *Manager) becomeUnauthenticated(ctx context.Context, purge bool) {
	m.token = ""
	m.user = nil
	m.state = StateUnauthenticated
	metrics.SessionAuthenticated.Set(0)
	if purge {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Warn("failed to clear session store", "error", err)
		}
	}
}

// Login exchanges credentials for an admin session.
//
// A non-admin account is rejected with ErrNotAdmin and its token is
// discarded, never persisted. Persistence failure after a successful
// admin login is logged but does not fail the login; the in-memory
// session is authoritative for this process.
func (m *Manager) Login(ctx context.Context, email, password string) (*User, error) {
	token, user, err := m.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}

	if user == nil || user.Role != "admin" {
		return nil, ErrNotAdmin
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.user = user
	m.state = StateAuthenticated
	m.initialized = true
	metrics.SessionAuthenticated.Set(1)

	if err := m.store.Save(ctx, token, user); err != nil {
		m.logger.Warn("failed to persist session", "error", err)
	}

	m.logger.Info("operator logged in", "user", user.Username)
	return user, nil
}

// Logout tears down the session. The remote invalidation call is best
// effort; local state and storage are cleared unconditionally, whatever
// the remote outcome.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.api.Logout(ctx); err != nil {
		m.logger.Warn("remote logout failed, clearing local session anyway", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.becomeUnauthenticated(ctx, true)
	m.logger.Info("operator logged out")
}

// State returns the current guard state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Token returns the current bearer token, or "" when unauthenticated.
// Read by the upstream client on every request.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// CurrentUser returns a copy of the operator identity.
func (m *Manager) CurrentUser() (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateAuthenticated || m.user == nil {
		return User{}, ErrNotAuthenticated
	}
	return *m.user, nil
}
