package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/oggyb/spotme/internal/feed"
	"github.com/oggyb/spotme/internal/identity"
)

// Session is the per-token state of one signed-in client. The embedded mutex
// serializes every operation on it so a swipe's steps run in program order.
type Session struct {
	sync.Mutex

	ID    string
	Store *Store
	Feed  *feed.Feed

	done      chan struct{}
	closeOnce sync.Once
}

// Done is closed when the session is signed out. Sessions built outside a
// Manager never close and return nil.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) close() {
	if s.done == nil {
		return
	}
	s.closeOnce.Do(func() { close(s.done) })
}

// closedRetention bounds how long a signed-out id is refused by Resolve. It
// only has to outlast requests that were verified before the sign-out.
const closedRetention = 10 * time.Minute

// Manager owns the live sessions, keyed by token session id.
type Manager struct {
	profiles ProfileStore
	defaults Defaults
	log      *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	closed   map[string]time.Time
	now      func() time.Time
}

func NewManager(profiles ProfileStore, defaults Defaults, log *slog.Logger) *Manager {
	return &Manager{
		profiles: profiles,
		defaults: defaults,
		log:      log,
		sessions: make(map[string]*Session),
		closed:   make(map[string]time.Time),
		now:      time.Now,
	}
}

// WithClock replaces the time source. Tests only.
func (m *Manager) WithClock(now func() time.Time) *Manager {
	m.now = now
	return m
}

// HandleIdentityChange is registered as the identity service listener: a new
// identity opens a session, nil tears it down.
func (m *Manager) HandleIdentityChange(ctx context.Context, sessionID string, id *identity.Identity) {
	if id == nil {
		m.mu.Lock()
		s, ok := m.sessions[sessionID]
		delete(m.sessions, sessionID)
		m.tombstone(sessionID)
		m.mu.Unlock()

		if ok {
			s.close()
			s.Lock()
			s.Store.OnIdentityChange(ctx, nil)
			s.Feed = nil
			s.Unlock()
		}
		m.log.Debug("session closed", "session", sessionID)
		return
	}

	s := m.open(ctx, sessionID, id)
	m.mu.Lock()
	m.sessions[sessionID] = s
	m.mu.Unlock()
	m.log.Debug("session opened", "session", sessionID, "user", id.UserID)
}

// Resolve returns the live session for a verified identity, reopening it when
// the process restarted since the token was issued. A session signed out on
// this process is never reopened; Resolve returns identity.ErrInvalidToken.
func (m *Manager) Resolve(ctx context.Context, id *identity.Identity) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id.SessionID]
	_, gone := m.closed[id.SessionID]
	m.mu.RUnlock()
	if ok {
		return s, nil
	}
	if gone {
		return nil, identity.ErrInvalidToken
	}

	fresh := m.open(ctx, id.SessionID, id)

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id.SessionID]; ok {
		return s, nil
	}
	// signed out while the profile was loading
	if _, gone := m.closed[id.SessionID]; gone {
		return nil, identity.ErrInvalidToken
	}
	m.sessions[id.SessionID] = fresh
	m.log.Debug("session reopened", "session", id.SessionID, "user", id.UserID)
	return fresh, nil
}

// Get looks up a live session.
func (m *Manager) Get(sessionID string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	return s, ok
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) open(ctx context.Context, sessionID string, id *identity.Identity) *Session {
	store := NewStore(m.profiles, m.defaults, m.log)
	store.OnIdentityChange(ctx, id)
	return &Session{ID: sessionID, Store: store, done: make(chan struct{})}
}

// tombstone records a signed-out id and drops expired ones. Callers hold mu.
func (m *Manager) tombstone(sessionID string) {
	now := m.now()
	for id, at := range m.closed {
		if now.Sub(at) > closedRetention {
			delete(m.closed, id)
		}
	}
	m.closed[sessionID] = now
}
