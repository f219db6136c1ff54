package session

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAuthAPI struct {
	loginToken string
	loginUser  *User
	loginErr   error
	logoutErr  error
	logoutCall int
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (string, *User, error) {
	return f.loginToken, f.loginUser, f.loginErr
}

func (f *fakeAuthAPI) Logout(ctx context.Context) error {
	f.logoutCall++
	return f.logoutErr
}

type failingStore struct{}

func (failingStore) Load(ctx context.Context) (string, *User, error) {
	return "", nil, errors.New("disk on fire")
}
func (failingStore) Save(ctx context.Context, token string, user *User) error {
	return errors.New("disk on fire")
}
func (failingStore) Clear(ctx context.Context) error { return nil }

func adminUser() *User {
	return &User{ID: "u1", Username: "ops", Email: "ops@kahin.example", Role: "admin"}
}

func TestInitializeRestoresAdminSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "tok", adminUser()))

	m := NewManager(store, &fakeAuthAPI{}, nil)
	assert.Equal(t, StateHydrating, m.State())

	m.Initialize(ctx)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "tok", m.Token())

	user, err := m.CurrentUser()
	require.NoError(t, err)
	assert.Equal(t, "ops", user.Username)
}

func TestInitializeEmptyStoreEndsUnauthenticated(t *testing.T) {
	m := NewManager(NewMemoryStore(), &fakeAuthAPI{}, nil)
	m.Initialize(context.Background())
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.Token())
}

func TestInitializeNonAdminPurgesStorage(t *testing.T) {
	// Hard rule: a stored non-admin session is never valid, even with
	// an otherwise valid token.
	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Save(ctx, "tok", &User{ID: "u2", Username: "eve", Role: "user"}))

	m := NewManager(store, &fakeAuthAPI{}, nil)
	m.Initialize(ctx)

	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.Token())

	// Storage must be cleared, not just ignored.
	token, user, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestInitializeStoreErrorFailsClosed(t *testing.T) {
	m := NewManager(failingStore{}, &fakeAuthAPI{}, nil)
	m.Initialize(context.Background())
	assert.Equal(t, StateUnauthenticated, m.State())
}

func TestInitializeRunsOnce(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := NewManager(store, &fakeAuthAPI{}, nil)
	m.Initialize(ctx)

	// A session saved after the first Initialize must not resurrect
	// through a second call.
	require.NoError(t, store.Save(ctx, "late", adminUser()))
	m.Initialize(ctx)
	assert.Equal(t, StateUnauthenticated, m.State())
}

func TestLoginAdminPersistsSession(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	api := &fakeAuthAPI{loginToken: "tok-9", loginUser: adminUser()}
	m := NewManager(store, api, nil)

	user, err := m.Login(ctx, "ops@kahin.example", "secret")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Role)
	assert.Equal(t, StateAuthenticated, m.State())
	assert.Equal(t, "tok-9", m.Token())

	token, stored, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-9", token)
	assert.Equal(t, "ops", stored.Username)
}

func TestLoginNonAdminDiscardsToken(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	api := &fakeAuthAPI{loginToken: "tok-x", loginUser: &User{ID: "u3", Username: "eve", Role: "user"}}
	m := NewManager(store, api, nil)

	_, err := m.Login(ctx, "eve@kahin.example", "secret")
	assert.ErrorIs(t, err, ErrNotAdmin)
	assert.Empty(t, m.Token(), "non-admin token must be discarded")
	assert.NotEqual(t, StateAuthenticated, m.State())

	// Nothing persisted either.
	token, user, loadErr := store.Load(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, token)
	assert.Nil(t, user)
}

func TestLoginBackendErrorPassesThrough(t *testing.T) {
	boom := errors.New("invalid credentials")
	m := NewManager(NewMemoryStore(), &fakeAuthAPI{loginErr: boom}, nil)

	_, err := m.Login(context.Background(), "x", "y")
	assert.ErrorIs(t, err, boom)
}

func TestLogoutClearsLocalStateEvenWhenRemoteFails(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	api := &fakeAuthAPI{loginToken: "tok", loginUser: adminUser(), logoutErr: errors.New("backend down")}
	m := NewManager(store, api, nil)
	_, err := m.Login(ctx, "ops@kahin.example", "secret")
	require.NoError(t, err)

	m.Logout(ctx)

	assert.Equal(t, 1, api.logoutCall)
	assert.Equal(t, StateUnauthenticated, m.State())
	assert.Empty(t, m.Token())

	token, user, loadErr := store.Load(ctx)
	require.NoError(t, loadErr)
	assert.Empty(t, token)
	assert.Nil(t, user)
}
