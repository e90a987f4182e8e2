// internal/auth/sessions.go
package auth

import (
	"sync"
	"time"

	"swipe-screening/internal/models"
)

// sessionStore keeps bearer sessions in memory for the process lifetime.
type sessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func newSessionStore() *sessionStore {
	return &sessionStore{sessions: make(map[string]*models.Session)}
}

func (s *sessionStore) put(sess *models.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.Token] = sess
}

// touch returns a copy of the live session and records activity. Expired sessions
// are removed and reported as missing.
func (s *sessionStore) touch(token string, now time.Time) (models.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[token]
	if !ok {
		return models.Session{}, false
	}
	if sess.IsExpired(now) {
		delete(s.sessions, token)
		return models.Session{}, false
	}
	sess.UpdateActivity(now)
	return *sess, true
}

func (s *sessionStore) remove(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[token]
	delete(s.sessions, token)
	return ok
}

// sweep drops expired sessions and returns how many were removed.
func (s *sessionStore) sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for token, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, token)
			n++
		}
	}
	return n
}
