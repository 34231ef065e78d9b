package services

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"inkbound/internal/api"
	"inkbound/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFeedPreservesServerOrder(t *testing.T) {
	backend := newFakeBackend(t)
	backend.addImage(models.Image{ID: 3, UserID: 1, URL: "u3"})
	backend.addImage(models.Image{ID: 1, UserID: 2, URL: "u1"})
	backend.addImage(models.Image{ID: 2, UserID: 1, URL: "u2"})
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	feed := NewFeedService(client, newTestSession(t, client, nil), 0)

	images, err := feed.LoadFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{images[0].ID, images[1].ID, images[2].ID})
}

func TestUploadRequiresLogin(t *testing.T) {
	backend := newFakeBackend(t)
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	feed := NewFeedService(client, newTestSession(t, client, nil), 0)

	_, err := feed.Upload(context.Background(), "nowhere.jpg", "desc")
	require.Error(t, err)
	assert.Zero(t, backend.requestCount())
}

func TestDeleteRefusedForNonOwner(t *testing.T) {
	backend := newFakeBackend(t)
	backend.addImage(models.Image{ID: 1, UserID: 2, URL: "u"})
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	feed := NewFeedService(client, newTestSession(t, client, &models.User{ID: 7}), 0)

	err := feed.Delete(context.Background(), models.Image{ID: 1, UserID: 2})
	require.Error(t, err)
	assert.Zero(t, backend.requestCount())
}

// interceptUpload captures uploaded file bytes and delegates every
// other path to the fake backend.
func interceptUpload(backend *fakeBackend, dst *[]byte) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/image/upload" {
			backend.handle(w, r)
			return
		}
		if err := r.ParseMultipartForm(32 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		*dst = data
		writeJSON(w, map[string]any{"status": "success", "public_url": "https://cdn/up.jpg"})
	})
}

func writeTestJPEG(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	path := filepath.Join(dir, "test.jpg")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestUploadDownscalesOversizedImage(t *testing.T) {
	var uploaded []byte
	backend := newFakeBackend(t)
	srv := backend.serve()
	defer srv.Close()

	// Intercept the upload to inspect what was transferred
	client := api.NewClient(srv.URL)
	session := newTestSession(t, client, &models.User{ID: 7, Username: "needle"})

	srv.Config.Handler = interceptUpload(backend, &uploaded)

	feed := NewFeedService(client, session, 64)
	path := writeTestJPEG(t, t.TempDir(), 200, 100)

	_, err := feed.Upload(context.Background(), path, "big one")
	require.NoError(t, err)

	img, _, err := image.Decode(bytes.NewReader(uploaded))
	require.NoError(t, err)
	assert.LessOrEqual(t, img.Bounds().Dx(), 64)
	assert.LessOrEqual(t, img.Bounds().Dy(), 64)
}

func TestUploadKeepsSmallImageUntouched(t *testing.T) {
	var uploaded []byte
	backend := newFakeBackend(t)
	srv := backend.serve()
	defer srv.Close()

	client := api.NewClient(srv.URL)
	session := newTestSession(t, client, &models.User{ID: 7, Username: "needle"})
	srv.Config.Handler = interceptUpload(backend, &uploaded)

	feed := NewFeedService(client, session, 1600)
	path := writeTestJPEG(t, t.TempDir(), 40, 30)
	original, err := os.ReadFile(path)
	require.NoError(t, err)

	_, err = feed.Upload(context.Background(), path, "small")
	require.NoError(t, err)
	assert.Equal(t, original, uploaded)
}
