package entryserver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionCookie is the cookie carrying the session token.
const SessionCookie = "worklog_session"

// Session is the state kept per token. Sessions live in memory only and do
// not survive a server restart.
type Session struct {
	Authenticated bool
	Expires       time.Time
}

// SessionStore maps opaque tokens to sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	ttl      time.Duration
	clock    func() time.Time
}

// NewSessionStore returns an empty store whose sessions expire ttl after creation.
func NewSessionStore(ttl time.Duration, clock func() time.Time) *SessionStore {
	if clock == nil {
		clock = time.Now
	}
	return &SessionStore{
		sessions: make(map[string]Session),
		ttl:      ttl,
		clock:    clock,
	}
}

// Create starts a new authenticated session and drops expired ones.
func (st *SessionStore) Create() (string, Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", Session{}, err
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.clock()
	st.purgeLocked(now)

	s := Session{Authenticated: true, Expires: now.Add(st.ttl)}
	st.sessions[id.String()] = s
	return id.String(), s, nil
}

// Get returns the session for token if it exists and has not expired.
func (st *SessionStore) Get(token string) (Session, bool) {
	if token == "" {
		return Session{}, false
	}
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[token]
	if !ok || st.clock().After(s.Expires) {
		return Session{}, false
	}
	return s, true
}

// Authenticated reports whether token belongs to a live, authenticated session.
func (st *SessionStore) Authenticated(token string) bool {
	s, ok := st.Get(token)
	return ok && s.Authenticated
}

// Delete removes a session. It returns true if the session existed.
func (st *SessionStore) Delete(token string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[token]; ok {
		delete(st.sessions, token)
		return true
	}
	return false
}

// Purge removes all expired sessions.
func (st *SessionStore) Purge() {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.purgeLocked(st.clock())
}

// Len returns the number of stored sessions, expired ones included.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func (st *SessionStore) purgeLocked(now time.Time) {
	for id, s := range st.sessions {
		if now.After(s.Expires) {
			delete(st.sessions, id)
		}
	}
}
