package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"inkbound/internal/models"
)

type commentsResponse struct {
	apiStatus
	Comments []models.Comment `json:"comments"`
}

// ListComments fetches all comments for an image in server order
func (c *Client) ListComments(ctx context.Context, imageID int) ([]models.Comment, error) {
	var resp commentsResponse
	code, err := c.do(ctx, http.MethodGet, "/comment/image/"+strconv.Itoa(imageID), nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}
	return resp.Comments, nil
}

type addCommentRequest struct {
	UserID  int    `json:"user_id"`
	ImageID int    `json:"image_id"`
	Content string `json:"content"`
}

// AddComment creates a comment on an image
func (c *Client) AddComment(ctx context.Context, imageID, userID int, content string) error {
	body := addCommentRequest{UserID: userID, ImageID: imageID, Content: content}

	var resp struct{ apiStatus }
	code, err := c.do(ctx, http.MethodPost, "/comment/add", nil, body, &resp)
	if err != nil {
		return fmt.Errorf("failed to add comment: %w", err)
	}
	return resp.check(code)
}

// EditComment replaces a comment's content
func (c *Client) EditComment(ctx context.Context, commentID int, content string) error {
	query := url.Values{"content": {content}}

	var resp struct{ apiStatus }
	code, err := c.do(ctx, http.MethodPut, "/comment/"+strconv.Itoa(commentID), query, nil, &resp)
	if err != nil {
		return fmt.Errorf("failed to edit comment: %w", err)
	}
	return resp.check(code)
}

// DeleteComment removes a comment
func (c *Client) DeleteComment(ctx context.Context, commentID int) error {
	var resp struct{ apiStatus }
	code, err := c.do(ctx, http.MethodDelete, "/comment/"+strconv.Itoa(commentID), nil, nil, &resp)
	if err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}
	return resp.check(code)
}
