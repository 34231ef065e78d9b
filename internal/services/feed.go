package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"sync"

	"inkbound/internal/api"
	"inkbound/internal/models"

	"github.com/nfnt/resize"
	"github.com/rs/zerolog/log"
)

// FeedService loads the image feed and profile galleries and handles
// upload/delete. Rendering wiring (per-item summary fetch and view
// recording) belongs to the view layer; this service provides the data.
type FeedService struct {
	api          *api.Client
	session      *SessionService
	maxDimension uint

	mu             sync.Mutex
	uploadInFlight bool
}

// NewFeedService creates a new feed service. maxDimension bounds the
// longer side of uploaded images; zero disables downscaling.
func NewFeedService(apiClient *api.Client, session *SessionService, maxDimension uint) *FeedService {
	return &FeedService{
		api:          apiClient,
		session:      session,
		maxDimension: maxDimension,
	}
}

// LoadFeed fetches the landing feed, personalized when a viewer is
// logged in. Server order is preserved.
func (s *FeedService) LoadFeed(ctx context.Context) ([]models.Image, error) {
	images, err := s.api.GetFeed(ctx, "", s.session.CurrentID())
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	return images, nil
}

// LoadGallery fetches all images uploaded by one user
func (s *FeedService) LoadGallery(ctx context.Context, userID int) ([]models.Image, error) {
	images, err := s.api.GetUserImages(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load gallery: %w", err)
	}
	return images, nil
}

// Upload sends a local image file to the backend. Oversized images are
// downscaled before transfer. Concurrent uploads are rejected so a
// double submission cannot create duplicates.
func (s *FeedService) Upload(ctx context.Context, path, description string) (string, error) {
	user, ok := s.session.Current()
	if !ok {
		return "", fmt.Errorf("not logged in")
	}

	s.mu.Lock()
	if s.uploadInFlight {
		s.mu.Unlock()
		return "", fmt.Errorf("upload already in progress")
	}
	s.uploadInFlight = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.uploadInFlight = false
		s.mu.Unlock()
	}()

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	body, filename, err := s.prepareUpload(f, filepath.Base(path))
	if err != nil {
		return "", err
	}

	url, err := s.api.UploadImage(ctx, user.ID, description, filename, body)
	if err != nil {
		return "", err
	}

	log.Info().Int("user_id", user.ID).Str("file", filename).Msg("Image uploaded")
	return url, nil
}

// prepareUpload decodes the image and downscales it when its longer
// side exceeds the configured bound. Undecodable files pass through
// untouched and let the backend decide.
func (s *FeedService) prepareUpload(f *os.File, filename string) (io.Reader, string, error) {
	if s.maxDimension == 0 {
		return f, filename, nil
	}

	img, _, err := image.Decode(f)
	if err != nil {
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, "", fmt.Errorf("failed to rewind image: %w", serr)
		}
		return f, filename, nil
	}

	bounds := img.Bounds()
	if uint(bounds.Dx()) <= s.maxDimension && uint(bounds.Dy()) <= s.maxDimension {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, "", fmt.Errorf("failed to rewind image: %w", err)
		}
		return f, filename, nil
	}

	scaled := resize.Thumbnail(s.maxDimension, s.maxDimension, img, resize.Lanczos3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: 90}); err != nil {
		return nil, "", fmt.Errorf("failed to encode scaled image: %w", err)
	}

	log.Debug().
		Int("orig_w", bounds.Dx()).
		Int("orig_h", bounds.Dy()).
		Uint("max", s.maxDimension).
		Msg("Image downscaled for upload")

	name := filename[:len(filename)-len(filepath.Ext(filename))] + ".jpg"
	return &buf, name, nil
}

// Delete removes an image server-side. Only the owner may delete; the
// server enforces this too, but the action is never offered otherwise.
func (s *FeedService) Delete(ctx context.Context, img models.Image) error {
	user, ok := s.session.Current()
	if !ok || user.ID != img.UserID {
		return fmt.Errorf("only the owner can delete an image")
	}

	if err := s.api.DeleteImage(ctx, img.ID); err != nil {
		return err
	}

	log.Info().Int("image_id", img.ID).Msg("Image deleted")
	return nil
}
