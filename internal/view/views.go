package view

import (
	"context"

	"inkbound/internal/models"
	"inkbound/internal/services"

	"github.com/rs/zerolog/log"
)

// FeedItem is one rendered feed entry: the image plus its interaction
// state and whether the viewer owns it (owners get the delete action).
type FeedItem struct {
	Image   models.Image
	Summary models.InteractionSummary
	Owned   bool
}

// UserRow is one rendered account search result
type UserRow struct {
	User  models.User
	Label string
}

// UserTypeLabel maps the stored user type to its display label
func UserTypeLabel(userType string) string {
	switch userType {
	case "artist":
		return "Tattoo Artist"
	case "studio":
		return "Tattoo Studio"
	default:
		return "Client"
	}
}

// BuildFeed wires a server-ordered image list into feed items: each
// item independently fetches its interaction summary and, when a
// viewer is logged in, records a view (once per render). A failed
// summary fetch leaves that item at zero counts and unfilled icons.
func BuildFeed(ctx context.Context, images []models.Image, interactions *services.InteractionService, viewerID int) []FeedItem {
	interactions.ResetViews()

	items := make([]FeedItem, 0, len(images))
	for _, img := range images {
		summary, err := interactions.FetchSummary(ctx, img.ID, viewerID)
		if err != nil {
			log.Error().Err(err).Int("image_id", img.ID).Msg("Failed to load interaction summary")
		}
		interactions.RecordView(img.ID, viewerID)

		items = append(items, FeedItem{
			Image:   img,
			Summary: summary,
			Owned:   viewerID != 0 && viewerID == img.UserID,
		})
	}
	return items
}

// BuildUserRows labels account search results for rendering
func BuildUserRows(users []models.User) []UserRow {
	rows := make([]UserRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, UserRow{User: u, Label: UserTypeLabel(u.UserType)})
	}
	return rows
}
