package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"inkbound/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ErrStale marks a response that arrived for a view that is no longer
// open (or has been re-opened for a different image). The result is
// discarded without touching visible state.
var ErrStale = errors.New("detail view changed while loading")

// ErrClosed is returned by operations that require an open detail view
var ErrClosed = errors.New("no detail view open")

// FollowState is the follow-toggle control shown when the viewer is
// authenticated and not the image owner.
type FollowState struct {
	TargetID    int
	Username    string
	IsFollowing bool
}

// DetailState is everything the open detail view shows
type DetailState struct {
	Image    models.Image
	Summary  models.InteractionSummary
	Comments []models.Comment
	Follow   *FollowState
}

// DetailController is the singleton overlay showing one image. Each
// Open issues a fresh token; loads finishing under an older token are
// discarded, so rapidly re-opening for another image can never leave
// the view showing mixed data.
type DetailController struct {
	session      *SessionService
	interactions *InteractionService
	comments     *CommentService
	users        UserDirectory

	mu      sync.Mutex
	open    bool
	token   uuid.UUID
	current DetailState
}

// UserDirectory is the slice of the API the detail view needs for the
// follow control.
type UserDirectory interface {
	GetUser(ctx context.Context, userID, followerID int) (*models.UserProfile, error)
	UpdateFollow(ctx context.Context, followerID, targetID int, follow bool) (bool, error)
}

// NewDetailController creates a new detail controller
func NewDetailController(users UserDirectory, session *SessionService, interactions *InteractionService, comments *CommentService) *DetailController {
	return &DetailController{
		users:        users,
		session:      session,
		interactions: interactions,
		comments:     comments,
	}
}

// Open transitions the view to showing one image, re-fetching summary,
// thread, and follow state from scratch. A previously loading Open for
// another image is invalidated by the token rotation.
func (c *DetailController) Open(ctx context.Context, img models.Image) (DetailState, error) {
	c.mu.Lock()
	tok := uuid.New()
	c.token = tok
	c.open = true
	c.current = DetailState{Image: img}
	c.mu.Unlock()

	viewerID := c.session.CurrentID()

	summary, err := c.interactions.FetchSummary(ctx, img.ID, viewerID)
	if err != nil {
		// Counts stay at zero; the failure is not surfaced here
		log.Error().Err(err).Int("image_id", img.ID).Msg("Failed to load interaction summary")
	}

	comments, err := c.comments.List(ctx, img.ID)
	if err != nil {
		log.Error().Err(err).Int("image_id", img.ID).Msg("Failed to load comments")
		comments = nil
	}

	var follow *FollowState
	if viewerID != 0 && viewerID != img.UserID {
		profile, err := c.users.GetUser(ctx, img.UserID, viewerID)
		if err != nil {
			log.Error().Err(err).Int("user_id", img.UserID).Msg("Failed to load follow state")
		} else {
			follow = &FollowState{
				TargetID:    profile.ID,
				Username:    profile.Username,
				IsFollowing: profile.IsFollowing,
			}
		}
	}

	c.interactions.RecordDetailView(img.ID, viewerID)

	return c.commit(tok, func(st *DetailState) {
		st.Summary = summary
		st.Comments = comments
		st.Follow = follow
	})
}

// Close discards all transient view state
func (c *DetailController) Close() {
	c.mu.Lock()
	c.open = false
	c.token = uuid.UUID{}
	c.current = DetailState{}
	c.mu.Unlock()
}

// Current returns a copy of the open view state
func (c *DetailController) Current() (DetailState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current, c.open
}

// ToggleLike flips the viewer's like on the open image
func (c *DetailController) ToggleLike(ctx context.Context) (DetailState, error) {
	return c.toggleInteraction(ctx, c.interactions.ToggleLike)
}

// ToggleSave flips the viewer's save on the open image
func (c *DetailController) ToggleSave(ctx context.Context) (DetailState, error) {
	return c.toggleInteraction(ctx, c.interactions.ToggleSave)
}

func (c *DetailController) toggleInteraction(ctx context.Context, toggle func(context.Context, int, int) (models.InteractionSummary, error)) (DetailState, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return DetailState{}, ErrClosed
	}
	tok := c.token
	imageID := c.current.Image.ID
	c.mu.Unlock()

	summary, err := toggle(ctx, imageID, c.session.CurrentID())
	st, commitErr := c.commit(tok, func(st *DetailState) { st.Summary = summary })
	if err != nil {
		return st, err
	}
	return st, commitErr
}

// ToggleFollow flips the follow relation towards the image owner
func (c *DetailController) ToggleFollow(ctx context.Context) (DetailState, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return DetailState{}, ErrClosed
	}
	if c.current.Follow == nil {
		st := c.current
		c.mu.Unlock()
		return st, fmt.Errorf("follow control not available")
	}
	tok := c.token
	target := c.current.Follow.TargetID
	want := !c.current.Follow.IsFollowing
	c.mu.Unlock()

	following, err := c.users.UpdateFollow(ctx, c.session.CurrentID(), target, want)
	if err != nil {
		st, _ := c.Current()
		return st, err
	}

	return c.commit(tok, func(st *DetailState) {
		if st.Follow != nil {
			st.Follow.IsFollowing = following
		}
	})
}

// AddComment posts a comment on the open image and commits the
// reconciled thread and summary.
func (c *DetailController) AddComment(ctx context.Context, content string) (DetailState, error) {
	return c.mutateComments(ctx, func(imageID, viewerID int) ([]models.Comment, models.InteractionSummary, error) {
		return c.comments.Add(ctx, imageID, viewerID, content)
	})
}

// EditComment edits one of the viewer's comments on the open image
func (c *DetailController) EditComment(ctx context.Context, commentID int, content string) (DetailState, error) {
	if err := c.requireOwnComment(commentID); err != nil {
		st, _ := c.Current()
		return st, err
	}
	return c.mutateComments(ctx, func(imageID, viewerID int) ([]models.Comment, models.InteractionSummary, error) {
		return c.comments.Edit(ctx, commentID, imageID, viewerID, content)
	})
}

// RemoveComment deletes one of the viewer's comments on the open image
func (c *DetailController) RemoveComment(ctx context.Context, commentID int) (DetailState, error) {
	if err := c.requireOwnComment(commentID); err != nil {
		st, _ := c.Current()
		return st, err
	}
	return c.mutateComments(ctx, func(imageID, viewerID int) ([]models.Comment, models.InteractionSummary, error) {
		return c.comments.Remove(ctx, commentID, imageID, viewerID)
	})
}

// requireOwnComment is the advisory client-side authorization check:
// the controls only exist for the author. The server is the authority.
func (c *DetailController) requireOwnComment(commentID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return ErrClosed
	}
	viewerID := c.session.CurrentID()
	for _, cm := range c.current.Comments {
		if cm.ID == commentID {
			if cm.UserID != viewerID {
				return fmt.Errorf("you can only change your own comments")
			}
			return nil
		}
	}
	return fmt.Errorf("comment not found")
}

func (c *DetailController) mutateComments(ctx context.Context, mutate func(imageID, viewerID int) ([]models.Comment, models.InteractionSummary, error)) (DetailState, error) {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return DetailState{}, ErrClosed
	}
	tok := c.token
	imageID := c.current.Image.ID
	c.mu.Unlock()

	comments, summary, err := mutate(imageID, c.session.CurrentID())
	if err != nil {
		st, _ := c.Current()
		return st, err
	}

	return c.commit(tok, func(st *DetailState) {
		st.Comments = comments
		st.Summary = summary
	})
}

// DeleteImage removes the open image (owner only) and closes the view.
// The caller refreshes the profile gallery on success.
func (c *DetailController) DeleteImage(ctx context.Context, feed *FeedService) error {
	c.mu.Lock()
	if !c.open {
		c.mu.Unlock()
		return ErrClosed
	}
	img := c.current.Image
	c.mu.Unlock()

	if err := feed.Delete(ctx, img); err != nil {
		return err
	}

	c.Close()
	return nil
}

// commit applies an update to the view state only if the view is still
// open under the same token; otherwise the result is discarded.
func (c *DetailController) commit(tok uuid.UUID, apply func(*DetailState)) (DetailState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open || c.token != tok {
		log.Debug().Msg("Discarding stale detail view load")
		return c.current, ErrStale
	}
	apply(&c.current)
	return c.current, nil
}
