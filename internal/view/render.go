package view

import (
	"fmt"
	"io"

	"inkbound/internal/models"
	"inkbound/internal/services"
)

// Placeholder texts shown instead of empty lists
const (
	MsgEmptyFeed      = "No images found. Follow some artists to see their work!"
	MsgNoUsersFound   = "No users found matching your search."
	MsgNoIdeasFound   = "No tattoo ideas found matching your search."
	MsgEmptyProfile   = "You have not uploaded any images yet."
	MsgUserNoImages   = "This user has no images yet."
	MsgEnterTerm      = "Please enter a search term"
	MsgLoginToLike    = "Please login to like images"
	MsgLoginToComment = "Please login to comment"
	MsgLoginToSave    = "Please login to save images"
	MsgLoginToUpload  = "Please login to upload images"
)

// Renderer turns view state into output. The text implementation below
// is the shell's; markup fidelity is not the point, the pipeline is.
type Renderer interface {
	Feed(items []FeedItem)
	Detail(st services.DetailState, viewerID int)
	Users(rows []UserRow)
	Grid(images []models.Image, emptyMsg string)
	Profile(p *models.UserProfile, images []models.Image, emptyMsg string)
	Message(msg string)
}

// TextRenderer renders views as plain text to a writer
type TextRenderer struct {
	w io.Writer
}

// NewTextRenderer creates a renderer writing to w
func NewTextRenderer(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// Feed renders the landing feed, one block per image in server order
func (r *TextRenderer) Feed(items []FeedItem) {
	if len(items) == 0 {
		fmt.Fprintln(r.w, MsgEmptyFeed)
		return
	}

	for i, item := range items {
		owner := item.Image.Username
		if owner == "" {
			owner = fmt.Sprintf("User %d", item.Image.UserID)
		}
		fmt.Fprintf(r.w, "[%d] #%d by %s\n", i+1, item.Image.ID, owner)
		if item.Image.Description != "" {
			fmt.Fprintf(r.w, "    %s\n", item.Image.Description)
		}
		fmt.Fprintf(r.w, "    %s %d likes  %d comments  %s %d saves%s\n",
			icon(item.Summary.UserLiked), item.Summary.Likes,
			item.Summary.Comments,
			icon(item.Summary.UserSaved), item.Summary.Saves,
			ownedSuffix(item.Owned))
	}
}

// Detail renders the open detail view with its comment thread
func (r *TextRenderer) Detail(st services.DetailState, viewerID int) {
	owner := st.Image.Username
	if owner == "" {
		owner = fmt.Sprintf("User %d", st.Image.UserID)
	}
	fmt.Fprintf(r.w, "=== #%d by %s ===\n", st.Image.ID, owner)
	fmt.Fprintf(r.w, "%s\n", st.Image.URL)
	if st.Image.Description != "" {
		fmt.Fprintf(r.w, "%s\n", st.Image.Description)
	}
	fmt.Fprintf(r.w, "%s %d likes  %d comments  %s %d saves%s\n",
		icon(st.Summary.UserLiked), st.Summary.Likes,
		st.Summary.Comments,
		icon(st.Summary.UserSaved), st.Summary.Saves,
		ownedSuffix(viewerID != 0 && viewerID == st.Image.UserID))

	if st.Follow != nil {
		if st.Follow.IsFollowing {
			fmt.Fprintf(r.w, "[following %s]\n", st.Follow.Username)
		} else {
			fmt.Fprintf(r.w, "[follow %s]\n", st.Follow.Username)
		}
	}

	if len(st.Comments) == 0 {
		fmt.Fprintln(r.w, "No comments yet.")
		return
	}
	for _, cm := range st.Comments {
		editable := ""
		if viewerID != 0 && cm.UserID == viewerID {
			editable = " (yours)"
		}
		fmt.Fprintf(r.w, "  %d. %s: %s%s\n", cm.ID, cm.Username, cm.Content, editable)
	}
}

// Users renders account search results as labelled rows
func (r *TextRenderer) Users(rows []UserRow) {
	if len(rows) == 0 {
		fmt.Fprintln(r.w, MsgNoUsersFound)
		return
	}
	for _, row := range rows {
		fmt.Fprintf(r.w, "@%s — %s\n", row.User.Username, row.Label)
	}
}

// Grid renders an image grid (explore results, galleries)
func (r *TextRenderer) Grid(images []models.Image, emptyMsg string) {
	if len(images) == 0 {
		fmt.Fprintln(r.w, emptyMsg)
		return
	}
	for i, img := range images {
		desc := img.Description
		if desc == "" {
			desc = "Tattoo"
		}
		fmt.Fprintf(r.w, "[%d] #%d %s\n", i+1, img.ID, desc)
	}
}

// Profile renders a user profile header plus their gallery
func (r *TextRenderer) Profile(p *models.UserProfile, images []models.Image, emptyMsg string) {
	fmt.Fprintf(r.w, "@%s (%s)\n", p.Username, UserTypeLabel(p.UserType))
	if p.Email != "" {
		fmt.Fprintf(r.w, "%s\n", p.Email)
	}
	if p.IsFollowing {
		fmt.Fprintln(r.w, "[following]")
	}
	r.Grid(images, emptyMsg)
}

// Message renders a bare line (placeholders, prompts)
func (r *TextRenderer) Message(msg string) {
	fmt.Fprintln(r.w, msg)
}

func icon(filled bool) string {
	if filled {
		return "♥"
	}
	return "♡"
}

func ownedSuffix(owned bool) string {
	if owned {
		return "  [yours: delete available]"
	}
	return ""
}
