package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

const DefaultSessionTTL = 12 * time.Hour

// SessionStore keeps operator sessions in memory. Sessions do not survive a
// restart; operators log in again.
type SessionStore struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.Mutex
	sessions map[string]Session
}

func NewSessionStore(clock clockwork.Clock, ttl time.Duration) *SessionStore {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[string]Session),
	}
}

// Issue creates a session for identity.
func (s *SessionStore) Issue(identity string) Session {
	session := Session{
		Token:     uuid.NewString(),
		Identity:  identity,
		ExpiresAt: s.clock.Now().Add(s.ttl),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweep()
	s.sessions[session.Token] = session
	return session
}

// Validate returns the live session behind token.
func (s *SessionStore) Validate(token string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[token]
	if !ok {
		return Session{}, ErrInvalidSession
	}
	if !s.clock.Now().Before(session.ExpiresAt) {
		delete(s.sessions, token)
		return Session{}, ErrSessionExpired
	}
	return session, nil
}

// Revoke ends a session. Unknown tokens are ignored.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// sweep drops expired sessions. Caller holds mu.
func (s *SessionStore) sweep() {
	now := s.clock.Now()
	for token, session := range s.sessions {
		if !now.Before(session.ExpiresAt) {
			delete(s.sessions, token)
		}
	}
}
