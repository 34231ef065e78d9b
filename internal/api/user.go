package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"inkbound/internal/models"
)

type loginRequest struct {
	UsernameOrEmail string `json:"username_or_email"`
	Password        string `json:"password"`
}

type loginResponse struct {
	apiStatus
	User *models.User `json:"user"`
}

// Login authenticates a user and returns the account record
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*models.User, error) {
	body := loginRequest{UsernameOrEmail: usernameOrEmail, Password: password}

	var resp loginResponse
	code, err := c.do(ctx, http.MethodPost, "/user/login_user/", nil, body, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to login: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("login response missing user")
	}
	return resp.User, nil
}

type registerResponse struct {
	apiStatus
	UserID int `json:"user_id"`
}

// Register creates a new account. The caller logs in separately.
func (c *Client) Register(ctx context.Context, username, email, password, userType string) error {
	query := url.Values{
		"username":  {username},
		"email":     {email},
		"password":  {password},
		"user_type": {userType},
	}

	var resp registerResponse
	code, err := c.do(ctx, http.MethodPost, "/user/register_user", query, nil, &resp)
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}
	return resp.check(code)
}

type usersResponse struct {
	apiStatus
	Users []models.User `json:"users"`
}

// SearchUsers searches accounts by term
func (c *Client) SearchUsers(ctx context.Context, term string) ([]models.User, error) {
	query := url.Values{"term": {term}}

	var resp usersResponse
	code, err := c.do(ctx, http.MethodGet, "/user/search", query, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

type userResponse struct {
	apiStatus
	User *models.UserProfile `json:"user"`
}

// GetUser fetches a user profile. When followerID is non-zero the
// profile carries the follow relation relative to that viewer.
func (c *Client) GetUser(ctx context.Context, userID, followerID int) (*models.UserProfile, error) {
	query := url.Values{}
	if followerID != 0 {
		query.Set("follower_id", strconv.Itoa(followerID))
	}

	var resp userResponse
	code, err := c.do(ctx, http.MethodGet, "/user/user/"+strconv.Itoa(userID), query, nil, &resp)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := resp.check(code); err != nil {
		return nil, err
	}
	if resp.User == nil {
		return nil, fmt.Errorf("user response missing user")
	}
	return resp.User, nil
}

type followResponse struct {
	apiStatus
	IsFollowing bool `json:"is_following"`
}

// UpdateFollow follows or unfollows target on behalf of follower and
// returns the resulting follow state.
func (c *Client) UpdateFollow(ctx context.Context, followerID, targetID int, follow bool) (bool, error) {
	action := "follow"
	if !follow {
		action = "unfollow"
	}
	path := fmt.Sprintf("/user/update_follow/%d/%d", followerID, targetID)
	query := url.Values{"action": {action}}

	var resp followResponse
	code, err := c.do(ctx, http.MethodPut, path, query, nil, &resp)
	if err != nil {
		return false, fmt.Errorf("failed to update follow: %w", err)
	}
	if err := resp.check(code); err != nil {
		return false, err
	}
	return resp.IsFollowing, nil
}
