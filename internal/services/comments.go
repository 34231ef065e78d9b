package services

import (
	"context"
	"errors"
	"strings"

	"inkbound/internal/api"
	"inkbound/internal/models"
)

// ErrEmptyContent rejects a comment whose content is empty after
// trimming. No network call is made in that case.
var ErrEmptyContent = errors.New("comment cannot be empty")

// CommentService handles the comment thread for one image at a time.
// Every successful mutation is followed by a full re-list and a
// re-fetch of the owning image's summary: the comment count shown is
// the server's, never local arithmetic.
type CommentService struct {
	api          *api.Client
	interactions *InteractionService
}

// NewCommentService creates a new comment service
func NewCommentService(apiClient *api.Client, interactions *InteractionService) *CommentService {
	return &CommentService{
		api:          apiClient,
		interactions: interactions,
	}
}

// List fetches the comments for an image in server order
func (s *CommentService) List(ctx context.Context, imageID int) ([]models.Comment, error) {
	return s.api.ListComments(ctx, imageID)
}

// Add creates a comment and returns the reconciled thread and summary
func (s *CommentService) Add(ctx context.Context, imageID, userID int, content string) ([]models.Comment, models.InteractionSummary, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, models.InteractionSummary{}, ErrEmptyContent
	}

	if err := s.api.AddComment(ctx, imageID, userID, trimmed); err != nil {
		return nil, models.InteractionSummary{}, err
	}

	s.interactions.RecordComment(imageID, userID)
	return s.reconcile(ctx, imageID, userID)
}

// Edit replaces a comment's content and reconciles
func (s *CommentService) Edit(ctx context.Context, commentID, imageID, viewerID int, content string) ([]models.Comment, models.InteractionSummary, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, models.InteractionSummary{}, ErrEmptyContent
	}

	if err := s.api.EditComment(ctx, commentID, trimmed); err != nil {
		return nil, models.InteractionSummary{}, err
	}

	return s.reconcile(ctx, imageID, viewerID)
}

// Remove deletes a comment and reconciles
func (s *CommentService) Remove(ctx context.Context, commentID, imageID, viewerID int) ([]models.Comment, models.InteractionSummary, error) {
	if err := s.api.DeleteComment(ctx, commentID); err != nil {
		return nil, models.InteractionSummary{}, err
	}

	return s.reconcile(ctx, imageID, viewerID)
}

// reconcile re-lists the thread and re-fetches the image summary after
// a mutation, replacing any local guesses with server truth.
func (s *CommentService) reconcile(ctx context.Context, imageID, viewerID int) ([]models.Comment, models.InteractionSummary, error) {
	comments, err := s.api.ListComments(ctx, imageID)
	if err != nil {
		return nil, s.interactions.Summary(imageID), err
	}

	summary, err := s.interactions.FetchSummary(ctx, imageID, viewerID)
	if err != nil {
		return comments, summary, err
	}

	return comments, summary, nil
}
