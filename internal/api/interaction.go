package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"inkbound/internal/models"
)

// Interaction kinds recorded against an (image, user) pair. Like and
// save carry an explicit inverse so the request states the intended
// action instead of relying on server-side toggle semantics.
const (
	KindView    = "view"
	KindLike    = "like"
	KindUnlike  = "unlike"
	KindSave    = "save"
	KindUnsave  = "unsave"
	KindComment = "comment"
)

// RecordInteraction records a single interaction
func (c *Client) RecordInteraction(ctx context.Context, imageID, userID int, kind string) error {
	query := url.Values{
		"image_id":         {strconv.Itoa(imageID)},
		"user_id":          {strconv.Itoa(userID)},
		"interaction_type": {kind},
	}

	var resp struct{ apiStatus }
	code, err := c.do(ctx, http.MethodPost, "/interaction/record-interaction", query, nil, &resp)
	if err != nil {
		return fmt.Errorf("failed to record %s: %w", kind, err)
	}
	return resp.check(code)
}

type summaryResponse struct {
	apiStatus
	models.InteractionSummary
}

// GetInteractionSummary fetches the authoritative interaction counts
// for an image. When userID is zero the viewer flags are meaningless
// and forced to false.
func (c *Client) GetInteractionSummary(ctx context.Context, imageID, userID int) (*models.InteractionSummary, error) {
	query := url.Values{}
	if userID != 0 {
		query.Set("user_id", strconv.Itoa(userID))
	}

	var resp summaryResponse
	code, err := c.do(ctx, http.MethodGet, "/interaction/image/"+strconv.Itoa(imageID), query, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get interaction summary: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}

	summary := resp.InteractionSummary
	if userID == 0 {
		summary.UserLiked = false
		summary.UserSaved = false
	}
	return &summary, nil
}
