// Package session holds the client-side authentication state machine:
// Anonymous or Authenticated, with a durable snapshot and an idle timer that
// force-logs-out after a fixed period without activity.
package session

import (
	"sync"
	"time"

	"accesshub/internal/client/api"
)

// DefaultIdleTimeout is the fixed inactivity window after which an
// authenticated session expires.
const DefaultIdleTimeout = 4 * time.Minute

// State enumerates the two session states.
type State int

const (
	// StateAnonymous means no user and no token.
	StateAnonymous State = iota
	// StateAuthenticated means a user, a token, and a live idle timer.
	StateAuthenticated
)

// UserUpdate carries partial identity changes merged into the current user.
// Empty fields are left untouched.
type UserUpdate struct {
	Username string
	Email    string
	Role     string
}

// Manager owns the session state. It is constructed explicitly and injected
// into whatever consumes it; there is no ambient global.
//
// The idle timer is an owned resource: it is stopped and replaced on every
// reset and cancelled outright on logout or Close, so a stale callback can
// never act on a torn-down session.
type Manager struct {
	mu          sync.Mutex
	store       Store
	idleTimeout time.Duration
	onExpire    func()

	timer *time.Timer
	gen   uint64 // incremented on every timer replacement; stale callbacks bail out

	user  *api.User
	token string
}

// NewManager creates a session manager in the Anonymous state. onExpire is
// invoked (outside the lock) after an idle expiry or Invalidate, typically to
// redirect to the login view; it may be nil.
func NewManager(store Store, idleTimeout time.Duration, onExpire func()) *Manager {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &Manager{
		store:       store,
		idleTimeout: idleTimeout,
		onExpire:    onExpire,
	}
}

// Restore loads a previously persisted snapshot, if any, and enters the
// Authenticated state without re-validating the token against the server.
// The staleness window is bounded by token expiry: the first API call with a
// dead token 401s, which feeds back into Invalidate.
func (m *Manager) Restore() error {
	snap, err := m.store.Load()
	if err != nil {
		return err
	}
	if snap == nil || snap.Token == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	user := snap.User
	m.user = &user
	m.token = snap.Token
	m.resetTimerLocked()
	return nil
}

// Login transitions to Authenticated: persists the identity and token and
// starts the idle timer.
func (m *Manager) Login(user api.User, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.user = &user
	m.token = token
	m.resetTimerLocked()
	return m.store.Save(&Snapshot{User: user, Token: token})
}

// Logout transitions to Anonymous: clears durable storage and cancels the
// idle timer. It does not fire the expiry callback.
func (m *Manager) Logout() {
	m.mu.Lock()
	m.clearLocked()
	m.mu.Unlock()
}

// Invalidate behaves like an expiry: the session is torn down and the expiry
// callback fires. Wire it to the API client's OnUnauthorized hook so a 401
// on an authenticated call logs the session out.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	if m.user == nil {
		m.mu.Unlock()
		return
	}
	m.clearLocked()
	cb := m.onExpire
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

// Touch registers qualifying user activity, replacing the idle timer. It is
// a no-op while Anonymous.
func (m *Manager) Touch() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return
	}
	m.resetTimerLocked()
}

// UpdateUser merges partial fields into the current user and re-persists the
// snapshot. No-op while Anonymous.
func (m *Manager) UpdateUser(update UserUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}

	if update.Username != "" {
		m.user.Username = update.Username
	}
	if update.Email != "" {
		m.user.Email = update.Email
	}
	if update.Role != "" {
		m.user.Role = update.Role
	}
	return m.store.Save(&Snapshot{User: *m.user, Token: m.token})
}

// State returns the current session state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return StateAnonymous
	}
	return StateAuthenticated
}

// Authenticated reports whether a user and token are present.
func (m *Manager) Authenticated() bool {
	return m.State() == StateAuthenticated
}

// User returns a copy of the current user, or nil while Anonymous.
func (m *Manager) User() *api.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// Token returns the current bearer token, or "" while Anonymous.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Close cancels the idle timer without touching durable storage, for process
// teardown. The persisted snapshot survives for the next Restore.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopTimerLocked()
}

// resetTimerLocked stops any pending timer and arms a fresh one. The
// generation counter invalidates callbacks from timers that fired after
// Stop lost the race.
func (m *Manager) resetTimerLocked() {
	m.stopTimerLocked()
	gen := m.gen
	m.timer = time.AfterFunc(m.idleTimeout, func() {
		m.expire(gen)
	})
}

func (m *Manager) stopTimerLocked() {
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.gen++
}

// expire is the idle-timer callback.
func (m *Manager) expire(gen uint64) {
	m.mu.Lock()
	if gen != m.gen || m.user == nil {
		// A reset, logout or Close replaced this timer; do nothing.
		m.mu.Unlock()
		return
	}
	m.clearLocked()
	cb := m.onExpire
	m.mu.Unlock()

	if cb != nil {
		cb()
	}
}

func (m *Manager) clearLocked() {
	m.user = nil
	m.token = ""
	m.stopTimerLocked()
	_ = m.store.Clear()
}
