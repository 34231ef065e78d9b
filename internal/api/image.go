package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"inkbound/internal/models"
)

type imagesResponse struct {
	apiStatus
	Images []models.Image `json:"images"`
}

// GetFeed fetches the image feed, optionally filtered by a search term
// and personalized by a viewer id. Server order is preserved.
func (c *Client) GetFeed(ctx context.Context, searchTerm string, userID int) ([]models.Image, error) {
	query := url.Values{}
	if searchTerm != "" {
		query.Set("search_term", searchTerm)
	}
	if userID != 0 {
		query.Set("user_id", strconv.Itoa(userID))
	}

	var resp imagesResponse
	code, err := c.do(ctx, http.MethodGet, "/image/feed", query, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get feed: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

// GetUserImages fetches all images uploaded by a user
func (c *Client) GetUserImages(ctx context.Context, userID int) ([]models.Image, error) {
	var resp imagesResponse
	code, err := c.do(ctx, http.MethodGet, "/image/images/"+strconv.Itoa(userID), nil, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get user images: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}
	return resp.Images, nil
}

type uploadResponse struct {
	apiStatus
	PublicURL string `json:"public_url"`
}

// UploadImage uploads an image file as multipart form data and returns
// the public URL assigned by the backend.
func (c *Client) UploadImage(ctx context.Context, userID int, description, filename string, file io.Reader) (string, error) {
	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filename)
		if err != nil {
			pw.CloseWithError(fmt.Errorf("failed to create form file: %w", err))
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(fmt.Errorf("failed to copy file: %w", err))
			return
		}
		pw.CloseWithError(writer.Close())
	}()

	query := url.Values{
		"user_id":     {strconv.Itoa(userID)},
		"description": {description},
	}

	var resp uploadResponse
	code, err := c.doMultipart(ctx, "/image/upload", query, writer.FormDataContentType(), pr, &resp)
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if err := resp.check(code); err != nil {
		return "", err
	}
	return resp.PublicURL, nil
}

// DeleteImage removes an image server-side
func (c *Client) DeleteImage(ctx context.Context, imageID int) error {
	var resp struct{ apiStatus }
	code, err := c.do(ctx, http.MethodDelete, "/image/delete/"+strconv.Itoa(imageID), nil, nil, &resp)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return resp.check(code)
}
