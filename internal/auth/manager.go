// Package auth owns the client's authentication state.
//
// The Manager is the sole writer of the in-memory Session and of the
// persisted session keys. Every public operation either succeeds and leaves
// state fully consistent, or fails and leaves prior state untouched.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/quillchat/quill/internal/api"
	"github.com/quillchat/quill/internal/log"
	"github.com/quillchat/quill/internal/store"
)

// Manager owns the session lifecycle: restore, login, register, profile
// updates, and teardown.
type Manager struct {
	client *api.Client
	store  *store.Store
	logger *log.Logger

	mu         sync.Mutex
	session    *Session
	onTeardown []func()
}

// NewManager creates a Manager backed by the given gateway client and
// persistent store. The manager wires itself into the client as its token
// source and auth-failure handler.
func NewManager(client *api.Client, st *store.Store, logger *log.Logger) *Manager {
	m := &Manager{
		client: client,
		store:  st,
		logger: logger,
	}
	client.SetTokenSource(m.Token)
	client.OnAuthError(m.HandleAuthFailure)
	return m
}

// OnTeardown registers a hook run whenever the session is destroyed, either
// by logout or by an authentication failure. Used to clear dependent state
// such as the conversation cache.
func (m *Manager) OnTeardown(fn func()) {
	m.mu.Lock()
	m.onTeardown = append(m.onTeardown, fn)
	m.mu.Unlock()
}

// Token returns the current access token, or "" when no session exists.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return ""
	}
	return m.session.AccessToken
}

// IsAuthenticated reports whether a complete session is present. Partial
// state (token without user, or vice versa) counts as unauthenticated.
func (m *Manager) IsAuthenticated() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.AccessToken != "" && m.session.User.ID != ""
}

// Session returns a copy of the current session, or nil.
func (m *Manager) Session() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	copied := *m.session
	return &copied
}

// CurrentUser returns a copy of the current user, or nil.
func (m *Manager) CurrentUser() *User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return nil
	}
	u := m.session.User
	return &u
}

// InitializeFromStore loads the persisted session into memory and reports
// whether a usable session was found. Fails closed: if any required key is
// missing or the user payload cannot be decoded, all session keys are
// removed and false is returned.
func (m *Manager) InitializeFromStore() bool {
	access, okA, errA := m.store.Load(store.KeyAccessToken)
	refresh, okR, errR := m.store.Load(store.KeyRefreshToken)
	userJSON, okU, errU := m.store.Load(store.KeyUser)

	if errA != nil || errR != nil || errU != nil || !okA || !okR || !okU {
		m.clearPersisted()
		return false
	}

	var user User
	if err := json.Unmarshal([]byte(userJSON), &user); err != nil || user.ID == "" {
		m.clearPersisted()
		return false
	}

	m.mu.Lock()
	m.session = &Session{AccessToken: access, RefreshToken: refresh, User: user}
	m.mu.Unlock()

	m.logEvent(log.LogEvent{Event: log.EventSessionRestored, UserID: user.ID})
	return true
}

// loginResponse is the wire shape of login and register responses.
type loginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Login authenticates with email and password. On success the returned
// session is installed in memory and persisted; on failure prior state is
// left untouched and the failure is returned.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	raw, err := m.client.Post(ctx, "/api/auth/login", body)
	if err != nil {
		m.logEvent(log.LogEvent{Event: log.EventLoginFailed, Email: email, Error: err.Error()})
		return err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode login response: %w", err)
	}

	m.install(&Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	})
	m.logEvent(log.LogEvent{Event: log.EventLoginSucceeded, UserID: resp.User.ID, Email: email})
	return nil
}

// Register creates a new account. The service auto-logs-in on registration,
// so a successful register installs a session just like Login.
func (m *Manager) Register(ctx context.Context, email, password, name string) error {
	body := map[string]string{"email": email, "password": password, "name": name}
	raw, err := m.client.Post(ctx, "/api/auth/register", body)
	if err != nil {
		return err
	}

	var resp loginResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode register response: %w", err)
	}

	m.install(&Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	})
	m.logEvent(log.LogEvent{Event: log.EventRegisterSucceeded, UserID: resp.User.ID, Email: email})
	return nil
}

// userResponse is the wire shape of profile responses.
type userResponse struct {
	User User `json:"user"`
}

// UpdateProfile submits onboarding preferences. On success the session's
// user is replaced wholesale with the server-returned profile and persisted.
func (m *Manager) UpdateProfile(ctx context.Context, preferences map[string]any) error {
	body := map[string]any{"preferences": preferences}
	raw, err := m.client.Put(ctx, "/api/auth/onboarding", body)
	if err != nil {
		return err
	}

	var resp userResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode onboarding response: %w", err)
	}

	return m.replaceUser(resp.User)
}

// RefreshUser re-fetches the current profile from the service and replaces
// the session's user wholesale.
func (m *Manager) RefreshUser(ctx context.Context) error {
	raw, err := m.client.Get(ctx, "/api/auth/me")
	if err != nil {
		return err
	}

	var resp userResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return fmt.Errorf("decode profile response: %w", err)
	}

	return m.replaceUser(resp.User)
}

// Logout destroys the session: memory, persisted keys, and registered
// dependent state. Safe to call any number of times. The server-side logout
// call is best-effort; local teardown happens regardless of its outcome.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	active := m.session != nil
	m.mu.Unlock()

	if active {
		// Tokens are stateless server-side; this is a courtesy call.
		_, _ = m.client.Post(ctx, "/api/auth/logout", nil)
		m.logEvent(log.LogEvent{Event: log.EventLogout})
	}
	m.teardown()
}

// HandleAuthFailure is the gateway client's invalidation hook. It tears the
// session down without the server call, so that by the time the failing
// request's error reaches its caller the session is already gone.
func (m *Manager) HandleAuthFailure() {
	m.mu.Lock()
	active := m.session != nil
	m.mu.Unlock()

	if active {
		m.logEvent(log.LogEvent{Event: log.EventSessionInvalidated, Reason: "credential rejected"})
	}
	m.teardown()
}

// install atomically replaces the in-memory session and the persisted keys.
func (m *Manager) install(sess *Session) {
	m.mu.Lock()
	m.session = sess
	m.mu.Unlock()
	m.persist(sess)
}

// replaceUser swaps the user field of the current session by whole-value
// replacement and persists the new profile.
func (m *Manager) replaceUser(user User) error {
	m.mu.Lock()
	if m.session == nil {
		m.mu.Unlock()
		return fmt.Errorf("no active session")
	}
	updated := *m.session
	updated.User = user
	m.session = &updated
	m.mu.Unlock()

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	if err := m.store.Save(store.KeyUser, string(data)); err != nil {
		return err
	}
	return nil
}

func (m *Manager) persist(sess *Session) {
	// Keys are written individually; a crash mid-sequence leaves a partial
	// triple, which InitializeFromStore treats as "no session".
	_ = m.store.Save(store.KeyAccessToken, sess.AccessToken)
	_ = m.store.Save(store.KeyRefreshToken, sess.RefreshToken)
	if data, err := json.Marshal(sess.User); err == nil {
		_ = m.store.Save(store.KeyUser, string(data))
	}
}

func (m *Manager) teardown() {
	m.mu.Lock()
	m.session = nil
	hooks := make([]func(), len(m.onTeardown))
	copy(hooks, m.onTeardown)
	m.mu.Unlock()

	m.clearPersisted()
	for _, fn := range hooks {
		fn()
	}
}

func (m *Manager) clearPersisted() {
	_ = m.store.Remove(store.KeyAccessToken)
	_ = m.store.Remove(store.KeyRefreshToken)
	_ = m.store.Remove(store.KeyUser)
}

func (m *Manager) logEvent(ev log.LogEvent) {
	if m.logger != nil {
		_ = m.logger.Append(ev)
	}
}
