package services

import (
	"context"
	"fmt"
	"sync"

	"inkbound/internal/api"
	"inkbound/internal/models"

	"github.com/rs/zerolog/log"
)

// InteractionService keeps per-image interaction state consistent
// between rendered views and the backend. The server summary is the
// source of truth; this service layers a transient optimistic delta on
// top of it for the currently rendered items.
type InteractionService struct {
	api *api.Client

	mu     sync.Mutex
	local  map[int]*models.InteractionSummary
	viewed map[int]struct{}
}

// NewInteractionService creates a new interaction service
func NewInteractionService(apiClient *api.Client) *InteractionService {
	return &InteractionService{
		api:    apiClient,
		local:  make(map[int]*models.InteractionSummary),
		viewed: make(map[int]struct{}),
	}
}

// FetchSummary fetches the authoritative summary for an image and
// resets any local optimistic delta for it. On failure the local state
// stays at zeros; the caller decides whether to surface the error.
func (s *InteractionService) FetchSummary(ctx context.Context, imageID, viewerID int) (models.InteractionSummary, error) {
	summary, err := s.api.GetInteractionSummary(ctx, imageID, viewerID)
	if err != nil {
		s.mu.Lock()
		s.local[imageID] = &models.InteractionSummary{}
		s.mu.Unlock()
		return models.InteractionSummary{}, err
	}

	s.mu.Lock()
	copied := *summary
	s.local[imageID] = &copied
	s.mu.Unlock()

	return *summary, nil
}

// Summary returns the current local view of an image's interactions
// (authoritative fetch plus optimistic delta), zeros if never fetched.
func (s *InteractionService) Summary(imageID int) models.InteractionSummary {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.local[imageID]; ok {
		return *st
	}
	return models.InteractionSummary{}
}

// ResetViews starts a new render generation: every item rendered from
// now on records its view again, at most once.
func (s *InteractionService) ResetViews() {
	s.mu.Lock()
	s.viewed = make(map[int]struct{})
	s.mu.Unlock()
}

// RecordView records a view interaction, fire-and-forget, at most once
// per image per render generation. Failures are logged only.
func (s *InteractionService) RecordView(imageID, userID int) {
	if userID == 0 {
		return
	}

	s.mu.Lock()
	if _, seen := s.viewed[imageID]; seen {
		s.mu.Unlock()
		return
	}
	s.viewed[imageID] = struct{}{}
	s.mu.Unlock()

	go func() {
		if err := s.api.RecordInteraction(context.Background(), imageID, userID, api.KindView); err != nil {
			log.Error().Err(err).Int("image_id", imageID).Msg("Failed to record view")
		}
	}()
}

// RecordDetailView records the view caused by opening the detail view.
// Each open counts once regardless of what the feed already recorded.
func (s *InteractionService) RecordDetailView(imageID, userID int) {
	if userID == 0 {
		return
	}
	go func() {
		if err := s.api.RecordInteraction(context.Background(), imageID, userID, api.KindView); err != nil {
			log.Error().Err(err).Int("image_id", imageID).Msg("Failed to record view")
		}
	}()
}

// ToggleLike flips the viewer's like state for an image: the local
// count and flag change immediately, then the explicit like/unlike is
// transmitted. On failure the local change is reverted and the error
// returned for the caller to surface.
func (s *InteractionService) ToggleLike(ctx context.Context, imageID, userID int) (models.InteractionSummary, error) {
	return s.toggle(ctx, imageID, userID, api.KindLike, api.KindUnlike,
		func(st *models.InteractionSummary) (*bool, *int) { return &st.UserLiked, &st.Likes })
}

// ToggleSave flips the viewer's save state for an image with the same
// optimistic semantics as ToggleLike.
func (s *InteractionService) ToggleSave(ctx context.Context, imageID, userID int) (models.InteractionSummary, error) {
	return s.toggle(ctx, imageID, userID, api.KindSave, api.KindUnsave,
		func(st *models.InteractionSummary) (*bool, *int) { return &st.UserSaved, &st.Saves })
}

func (s *InteractionService) toggle(
	ctx context.Context,
	imageID, userID int,
	onKind, offKind string,
	fields func(*models.InteractionSummary) (*bool, *int),
) (models.InteractionSummary, error) {
	if userID == 0 {
		return s.Summary(imageID), fmt.Errorf("not logged in")
	}

	// Apply the optimistic delta and decide the outgoing kind from the
	// pre-toggle state.
	s.mu.Lock()
	st, ok := s.local[imageID]
	if !ok {
		st = &models.InteractionSummary{}
		s.local[imageID] = st
	}
	flag, count := fields(st)
	kind := onKind
	if *flag {
		kind = offKind
		*count--
	} else {
		*count++
	}
	*flag = !*flag
	applied := *st
	s.mu.Unlock()

	if err := s.api.RecordInteraction(ctx, imageID, userID, kind); err != nil {
		// Revert by the inverse operation rather than a snapshot so an
		// interleaved fetch is not clobbered.
		s.mu.Lock()
		if st, ok := s.local[imageID]; ok {
			flag, count := fields(st)
			if *flag {
				*count--
			} else {
				*count++
			}
			*flag = !*flag
			applied = *st
		}
		s.mu.Unlock()

		log.Error().Err(err).Int("image_id", imageID).Str("kind", kind).Msg("Failed to record interaction")
		return applied, fmt.Errorf("failed to record %s: %w", kind, err)
	}

	return applied, nil
}

// RecordComment records a comment interaction, fire-and-forget.
// Recording happens after the comment itself has landed, so there is
// no visible state to revert on failure.
func (s *InteractionService) RecordComment(imageID, userID int) {
	if userID == 0 {
		return
	}
	go func() {
		if err := s.api.RecordInteraction(context.Background(), imageID, userID, api.KindComment); err != nil {
			log.Error().Err(err).Int("image_id", imageID).Msg("Failed to record comment interaction")
		}
	}()
}
