package models

// User represents an account on the sharing service
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type"`
}

// Image represents a tattoo image owned by the server.
// The client never mutates one after it is rendered.
type Image struct {
	ID          int    `json:"id"`
	UserID      int    `json:"user_id"`
	Username    string `json:"username,omitempty"`
	UserType    string `json:"user_type,omitempty"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
}

// InteractionSummary holds the per-image interaction counts and the
// current viewer's flags. The server copy is the source of truth;
// any local delta is transient and overwritten on the next fetch.
type InteractionSummary struct {
	Likes     int  `json:"likes"`
	Comments  int  `json:"comments"`
	Saves     int  `json:"saves"`
	UserLiked bool `json:"user_liked"`
	UserSaved bool `json:"user_saved"`
}

// Comment represents a single comment on an image, ordered server-side
type Comment struct {
	ID        int    `json:"id"`
	UserID    int    `json:"user_id"`
	Username  string `json:"username"`
	ImageID   int    `json:"image_id,omitempty"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}

// UserProfile is a user record enriched with the follow relation
// between the viewer and that user
type UserProfile struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	UserType    string `json:"user_type"`
	IsFollowing bool   `json:"is_following"`
}
