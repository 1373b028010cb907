package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// ErrEmptyNickname is reported before any request is sent.
var ErrEmptyNickname = errors.New("nickname must not be empty")

// CurrentUser fetches the session user's full profile.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var resp userResponse
	if err := c.getJSON(ctx, "/api/user", &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// UpdateProfile submits nickname, avatar reference and bio as one atomic
// request and returns the refreshed profile.
func (c *Client) UpdateProfile(ctx context.Context, nickname, avatar, bio string) (*User, error) {
	if strings.TrimSpace(nickname) == "" {
		return nil, ErrEmptyNickname
	}
	var resp userResponse
	err := c.doJSON(ctx, http.MethodPut, "/api/user", map[string]any{
		"nickname": nickname,
		"avatar":   avatar,
		"bio":      bio,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}
