package services

import (
	"context"
	"fmt"
	"sync"

	"inkbound/internal/api"
	"inkbound/internal/models"
	"inkbound/internal/store"

	"github.com/rs/zerolog/log"
)

// SessionService owns the current authenticated identity. It is the
// only writer of session state; everything else reads through it.
type SessionService struct {
	api *api.Client
	db  *store.DB

	mu            sync.Mutex
	current       *models.User
	loginInFlight bool
}

// NewSessionService creates a new session service
func NewSessionService(apiClient *api.Client, db *store.DB) *SessionService {
	return &SessionService{
		api: apiClient,
		db:  db,
	}
}

// Restore loads a previously persisted session from the local slot
func (s *SessionService) Restore() error {
	user, err := s.db.LoadSession()
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	if user == nil {
		return nil
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	log.Info().Str("username", user.Username).Msg("Session restored")
	return nil
}

// Login authenticates against the backend and persists the session.
// A second login attempt while one is in flight is rejected.
func (s *SessionService) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	s.mu.Lock()
	if s.loginInFlight {
		s.mu.Unlock()
		return nil, fmt.Errorf("login already in progress")
	}
	s.loginInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loginInFlight = false
		s.mu.Unlock()
	}()

	user, err := s.api.Login(ctx, usernameOrEmail, password)
	if err != nil {
		return nil, err
	}

	if err := s.db.SaveSession(user); err != nil {
		// The login itself succeeded; a persistence failure only costs
		// the session surviving a restart.
		log.Error().Err(err).Msg("Failed to persist session")
	}

	s.mu.Lock()
	s.current = user
	s.mu.Unlock()

	log.Info().Int("user_id", user.ID).Str("username", user.Username).Msg("Logged in")
	return user, nil
}

// Register creates a new account. The original flow registers and then
// logs in explicitly, so no session is created here.
func (s *SessionService) Register(ctx context.Context, username, email, password, userType string) error {
	if err := s.api.Register(ctx, username, email, password, userType); err != nil {
		return err
	}
	log.Info().Str("username", username).Str("user_type", userType).Msg("Registered")
	return nil
}

// Logout destroys the session in memory and in the local slot
func (s *SessionService) Logout() error {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()

	if err := s.db.ClearSession(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	log.Info().Msg("Logged out")
	return nil
}

// Current returns the logged-in user, if any
func (s *SessionService) Current() (*models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return nil, false
	}
	u := *s.current
	return &u, true
}

// CurrentID returns the logged-in user's id, or zero when unauthenticated
func (s *SessionService) CurrentID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return 0
	}
	return s.current.ID
}
