// Package session holds the current identity and bearer credential, persisted
// across runs in the local database.
//
// The store is the single writer of durable session state. Other components
// read the credential through [Store.Token] at call time, so a logout or login
// between two calls is observed by the next call.
package session

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/repositories"
)

// AuthService is the slice of the backend client the store needs.
type AuthService interface {
	Login(ctx context.Context, email, password string) (string, models.User, error)
	Signup(ctx context.Context, email, password, nickname string) error
}

// Store owns session state: an in-memory copy and the durable token/profile
// pair behind it.
type Store struct {
	repo   *repositories.SessionRepository
	auth   AuthService
	logger *log.Logger

	mu      sync.RWMutex
	session *models.Session
}

// NewStore creates a Store and restores any persisted session.
//
// Restore is self-repairing: a missing token, missing profile, or profile that
// fails to parse wipes durable state and starts the store unauthenticated. A
// half-restored session (token without profile or vice versa) is never kept.
func NewStore(repo *repositories.SessionRepository, auth AuthService, logger *log.Logger) *Store {
	s := &Store{repo: repo, auth: auth, logger: logger}
	s.restore()
	return s
}

func (s *Store) restore() {
	token, hasToken, err := s.repo.Get(repositories.SessionKeyToken)
	if err != nil {
		s.logger.Warnf("failed to read persisted token: %v", err)
		return
	}

	profile, hasProfile, err := s.repo.Get(repositories.SessionKeyProfile)
	if err != nil {
		s.logger.Warnf("failed to read persisted profile: %v", err)
		return
	}

	if !hasToken && !hasProfile {
		return
	}

	var user models.User
	if !hasToken || !hasProfile || json.Unmarshal([]byte(profile), &user) != nil {
		s.logger.Warn("persisted session is malformed, resetting to unauthenticated")
		if err := s.repo.Clear(); err != nil {
			s.logger.Warnf("failed to clear persisted session: %v", err)
		}
		return
	}

	s.session = &models.Session{User: user, Token: token}
	s.logger.Debugf("restored session for %s", user.Email)
}

// Login authenticates against the backend and, on success, persists the token
// and profile together and updates in-memory state. Every failure, including
// network failure, leaves prior state untouched and returns false; errors
// never escape this boundary.
func (s *Store) Login(ctx context.Context, email, password string) bool {
	token, user, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.logger.Warnf("login failed: %v", err)
		return false
	}

	profile, err := json.Marshal(user)
	if err != nil {
		s.logger.Warnf("failed to encode profile: %v", err)
		return false
	}

	entries := map[string]string{
		repositories.SessionKeyToken:   token,
		repositories.SessionKeyProfile: string(profile),
	}
	if err := s.repo.PutAll(entries); err != nil {
		// In-memory state still updates: the backend accepted the credential,
		// only persistence across restarts is lost.
		s.logger.Warnf("failed to persist session: %v", err)
	}

	s.mu.Lock()
	s.session = &models.Session{User: user, Token: token}
	s.mu.Unlock()

	return true
}

// Signup registers a new account and reports success. It does not establish a
// session; callers invoke Login separately.
func (s *Store) Signup(ctx context.Context, email, password, nickname string) bool {
	if err := s.auth.Signup(ctx, email, password, nickname); err != nil {
		s.logger.Warnf("signup failed: %v", err)
		return false
	}
	return true
}

// Logout clears durable and in-memory state unconditionally. It cannot fail.
func (s *Store) Logout() {
	if err := s.repo.Clear(); err != nil {
		s.logger.Warnf("failed to clear persisted session: %v", err)
	}

	s.mu.Lock()
	s.session = nil
	s.mu.Unlock()
}

// Current returns a copy of the active session, if any.
func (s *Store) Current() (models.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return models.Session{}, false
	}
	return *s.session, true
}

// Token returns the current bearer credential, or empty when unauthenticated.
// Callers read it at the start of each user action and pass it explicitly to
// the operations that need it.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.session == nil {
		return ""
	}
	return s.session.Token
}
