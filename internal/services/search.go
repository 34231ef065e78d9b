package services

import (
	"context"
	"fmt"
	"sync"

	"inkbound/internal/api"
	"inkbound/internal/models"
)

// Mode selects which server search the explore view dispatches to
type Mode string

const (
	// ModeAccounts searches user accounts by term
	ModeAccounts Mode = "accounts"
	// ModeContent searches tattoo images against the feed endpoint
	ModeContent Mode = "content"
)

// SearchResult is what the explore view renders: either a placeholder
// prompt (no request was made), account rows, or an image grid.
type SearchResult struct {
	Mode   Mode
	Prompt string
	Users  []models.User
	Images []models.Image
}

// ProfileResult is the read-only profile view reached from an account
// search result.
type ProfileResult struct {
	Profile *models.UserProfile
	Images  []models.Image
}

// SearchService dispatches a query to one of two mutually exclusive
// search modes and remembers the active term so switching category
// re-issues the search.
type SearchService struct {
	api     *api.Client
	session *SessionService

	mu   sync.Mutex
	mode Mode
	term string
}

// NewSearchService creates a new search service starting in content mode
func NewSearchService(apiClient *api.Client, session *SessionService) *SearchService {
	return &SearchService{
		api:     apiClient,
		session: session,
		mode:    ModeContent,
	}
}

// Mode returns the active category
func (s *SearchService) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the active category. When a term is present the
// search is re-issued in the new mode immediately.
func (s *SearchService) SetMode(ctx context.Context, mode Mode) (*SearchResult, error) {
	if mode != ModeAccounts && mode != ModeContent {
		return nil, fmt.Errorf("unknown search mode %q", mode)
	}

	s.mu.Lock()
	s.mode = mode
	term := s.term
	s.mu.Unlock()

	return s.Search(ctx, term)
}

// Search runs the current category's search for term. An empty term in
// accounts mode shows a prompt and issues no request.
func (s *SearchService) Search(ctx context.Context, term string) (*SearchResult, error) {
	s.mu.Lock()
	s.term = term
	mode := s.mode
	s.mu.Unlock()

	switch mode {
	case ModeAccounts:
		return s.searchAccounts(ctx, term)
	default:
		return s.searchContent(ctx, term)
	}
}

func (s *SearchService) searchAccounts(ctx context.Context, term string) (*SearchResult, error) {
	if term == "" {
		return &SearchResult{Mode: ModeAccounts, Prompt: "Please enter a search term"}, nil
	}

	users, err := s.api.SearchUsers(ctx, term)
	if err != nil {
		return nil, err
	}
	return &SearchResult{Mode: ModeAccounts, Users: users}, nil
}

func (s *SearchService) searchContent(ctx context.Context, term string) (*SearchResult, error) {
	images, err := s.api.GetFeed(ctx, term, s.session.CurrentID())
	if err != nil {
		return nil, err
	}
	return &SearchResult{Mode: ModeContent, Images: images}, nil
}

// LoadProfile loads the read-only profile view for a selected account:
// the profile (with follow state relative to the viewer) plus their
// gallery. Images open through the detail view contract.
func (s *SearchService) LoadProfile(ctx context.Context, userID int) (*ProfileResult, error) {
	profile, err := s.api.GetUser(ctx, userID, s.session.CurrentID())
	if err != nil {
		return nil, err
	}

	images, err := s.api.GetUserImages(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileResult{Profile: profile, Images: images}, nil
}

// ToggleFollow flips the follow relation towards a profile's owner
// from the profile view and returns the new state.
func (s *SearchService) ToggleFollow(ctx context.Context, targetID int, currentlyFollowing bool) (bool, error) {
	viewerID := s.session.CurrentID()
	if viewerID == 0 {
		return currentlyFollowing, fmt.Errorf("not logged in")
	}
	return s.api.UpdateFollow(ctx, viewerID, targetID, !currentlyFollowing)
}
