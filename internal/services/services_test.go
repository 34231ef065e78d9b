package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"inkbound/internal/api"
	"inkbound/internal/models"
	"inkbound/internal/store"

	"github.com/stretchr/testify/require"
)

// Polling bounds for assertions on fire-and-forget work
const (
	waitFor = time.Second
	tick    = 10 * time.Millisecond
)

// fakeBackend is an in-memory stand-in for the sharing service,
// implementing the slice of the API the services exercise.
type fakeBackend struct {
	t *testing.T

	mu           sync.Mutex
	users        map[int]models.User
	images       map[int]models.Image
	imageOrder   []int
	comments     map[int][]models.Comment
	summaries    map[int]models.InteractionSummary
	follows      map[[2]int]bool
	interactions []string // "kind:imageID:userID" in arrival order
	nextComment  int

	// delays lets a test stall a specific path, keyed by path prefix
	delays map[string]*gate

	requests int
}

func newFakeBackend(t *testing.T) *fakeBackend {
	return &fakeBackend{
		t:           t,
		users:       make(map[int]models.User),
		images:      make(map[int]models.Image),
		comments:    make(map[int][]models.Comment),
		summaries:   make(map[int]models.InteractionSummary),
		follows:     make(map[[2]int]bool),
		delays:      make(map[string]*gate),
		nextComment: 1000,
	}
}

func (f *fakeBackend) serve() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(f.handle))
}

func (f *fakeBackend) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests
}

func (f *fakeBackend) recorded() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.interactions...)
}

// gate stalls matching requests: arrived closes when the first one
// comes in, release lets them all through.
type gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// delay stalls every request whose path starts with prefix until the
// gate is released.
func (f *fakeBackend) delay(prefix string) *gate {
	f.mu.Lock()
	defer f.mu.Unlock()
	g := &gate{arrived: make(chan struct{}), release: make(chan struct{})}
	f.delays[prefix] = g
	return g
}

func (f *fakeBackend) handle(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.requests++
	var g *gate
	for prefix, gt := range f.delays {
		if strings.HasPrefix(r.URL.Path, prefix) {
			g = gt
		}
	}
	f.mu.Unlock()

	if g != nil {
		g.once.Do(func() { close(g.arrived) })
		<-g.release
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	switch {
	case path == "/":
		w.WriteHeader(http.StatusOK)

	case path == "/interaction/record-interaction":
		q := r.URL.Query()
		f.interactions = append(f.interactions,
			q.Get("interaction_type")+":"+q.Get("image_id")+":"+q.Get("user_id"))
		writeJSON(w, map[string]any{"status": "success"})

	case strings.HasPrefix(path, "/interaction/image/"):
		id := pathID(path, "/interaction/image/")
		s := f.summaries[id]
		writeJSON(w, map[string]any{
			"status": "success", "likes": s.Likes, "comments": len(f.comments[id]),
			"saves": s.Saves, "user_liked": s.UserLiked, "user_saved": s.UserSaved,
		})

	case strings.HasPrefix(path, "/comment/image/"):
		id := pathID(path, "/comment/image/")
		writeJSON(w, map[string]any{"status": "success", "comments": f.comments[id]})

	case path == "/comment/add":
		var body struct {
			UserID  int    `json:"user_id"`
			ImageID int    `json:"image_id"`
			Content string `json:"content"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		if strings.TrimSpace(body.Content) == "" {
			w.WriteHeader(http.StatusBadRequest)
			writeJSON(w, map[string]any{"status": "error", "message": "Comment cannot be empty"})
			return
		}
		f.nextComment++
		user := f.users[body.UserID]
		f.comments[body.ImageID] = append(f.comments[body.ImageID], models.Comment{
			ID: f.nextComment, UserID: body.UserID, Username: user.Username, Content: body.Content,
		})
		writeJSON(w, map[string]any{"status": "success"})

	case strings.HasPrefix(path, "/comment/"):
		id := pathID(path, "/comment/")
		switch r.Method {
		case http.MethodPut:
			for imgID, list := range f.comments {
				for i := range list {
					if list[i].ID == id {
						f.comments[imgID][i].Content = r.URL.Query().Get("content")
					}
				}
			}
			writeJSON(w, map[string]any{"status": "success"})
		case http.MethodDelete:
			for imgID, list := range f.comments {
				kept := list[:0]
				for _, cm := range list {
					if cm.ID != id {
						kept = append(kept, cm)
					}
				}
				f.comments[imgID] = kept
			}
			writeJSON(w, map[string]any{"status": "success"})
		}

	case path == "/image/feed":
		term := r.URL.Query().Get("search_term")
		images := make([]models.Image, 0, len(f.imageOrder))
		for _, id := range f.imageOrder {
			img := f.images[id]
			if term == "" || strings.Contains(img.Description, term) {
				images = append(images, img)
			}
		}
		writeJSON(w, map[string]any{"status": "success", "images": images})

	case strings.HasPrefix(path, "/image/images/"):
		id := pathID(path, "/image/images/")
		images := []models.Image{}
		for _, img := range f.images {
			if img.UserID == id {
				images = append(images, img)
			}
		}
		writeJSON(w, map[string]any{"status": "success", "images": images})

	case strings.HasPrefix(path, "/image/delete/"):
		id := pathID(path, "/image/delete/")
		delete(f.images, id)
		writeJSON(w, map[string]any{"status": "success"})

	case path == "/user/login_user/":
		var body struct {
			UsernameOrEmail string `json:"username_or_email"`
			Password        string `json:"password"`
		}
		require.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		for _, u := range f.users {
			if u.Username == body.UsernameOrEmail {
				writeJSON(w, map[string]any{"status": "success", "user": u})
				return
			}
		}
		w.WriteHeader(http.StatusUnauthorized)
		writeJSON(w, map[string]any{"status": "error", "message": "Invalid username/email or password"})

	case path == "/user/register_user":
		writeJSON(w, map[string]any{"status": "success", "user_id": 99})

	case path == "/user/search":
		term := r.URL.Query().Get("term")
		matches := []models.User{}
		for _, u := range f.users {
			if strings.Contains(u.Username, term) {
				matches = append(matches, u)
			}
		}
		writeJSON(w, map[string]any{"status": "success", "users": matches})

	case strings.HasPrefix(path, "/user/update_follow/"):
		parts := strings.Split(strings.TrimPrefix(path, "/user/update_follow/"), "/")
		follower, _ := strconv.Atoi(parts[0])
		target, _ := strconv.Atoi(parts[1])
		following := r.URL.Query().Get("action") != "unfollow"
		f.follows[[2]int{follower, target}] = following
		writeJSON(w, map[string]any{"status": "success", "is_following": following})

	case strings.HasPrefix(path, "/user/user/"):
		id := pathID(path, "/user/user/")
		u, ok := f.users[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			writeJSON(w, map[string]any{"status": "error", "message": "User not found"})
			return
		}
		follower, _ := strconv.Atoi(r.URL.Query().Get("follower_id"))
		writeJSON(w, map[string]any{
			"status": "success",
			"user": map[string]any{
				"id": u.ID, "username": u.Username, "email": u.Email,
				"user_type": u.UserType, "is_following": f.follows[[2]int{follower, u.ID}],
			},
		})

	default:
		w.WriteHeader(http.StatusNotFound)
		writeJSON(w, map[string]any{"status": "error", "message": "not found"})
	}
}

func (f *fakeBackend) addImage(img models.Image) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.images[img.ID] = img
	f.imageOrder = append(f.imageOrder, img.ID)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

func pathID(path, prefix string) int {
	id, _ := strconv.Atoi(strings.TrimPrefix(path, prefix))
	return id
}

// newTestSession returns a session service backed by a throwaway
// sqlite file, optionally pre-logged-in as user.
func newTestSession(t *testing.T, client *api.Client, user *models.User) *SessionService {
	t.Helper()
	db, err := store.Open(t.TempDir() + "/client.db")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	session := NewSessionService(client, db)
	if user != nil {
		require.NoError(t, db.SaveSession(user))
		require.NoError(t, session.Restore())
	}
	return session
}
