// Package session holds the authenticated admin identity for the lifetime of
// the process. Nothing is persisted: a restart means logging in again.
package session

import (
	"sync"

	"github.com/Mousaahmad63636/spotlymobile/internal/domain"
)

// Store guards the current bearer token and user. All methods are safe for
// concurrent use.
type Store struct {
	mu    sync.RWMutex
	token string
	user  domain.User
}

func NewStore() *Store {
	return &Store{}
}

// Set installs a new identity, replacing any existing one.
func (s *Store) Set(token string, user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.user = user
}

// Clear drops the identity. Used on logout and on a 401 from the backend.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = domain.User{}
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns the current user. Only meaningful while LoggedIn.
func (s *Store) User() domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// LoggedIn reports whether a usable admin session exists: a non-empty token
// belonging to an admin account. A valid token on a non-admin account does
// not count.
func (s *Store) LoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != "" && s.user.IsAdmin()
}
