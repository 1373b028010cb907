package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Validation errors caught before any network call.
var (
	ErrEmptyEmail       = errors.New("email must not be empty")
	ErrEmptyCredentials = errors.New("username and password must not be empty")
)

// Login authenticates and stores the session cookie in the jar. On success
// the server's view of the user is returned so the session state can be
// seeded without a second round-trip.
func (c *Client) Login(ctx context.Context, username, password string, remember bool) (*User, error) {
	if username == "" || password == "" {
		return nil, ErrEmptyCredentials
	}
	var resp loginResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/login", map[string]any{
		"username": username,
		"password": password,
		"remember": remember,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Register creates an account. The verification code must have been
// requested for the same email via SendVerificationCode.
func (c *Client) Register(ctx context.Context, username, email, code, password string) (int, error) {
	var resp registerResponse
	err := c.doJSON(ctx, http.MethodPost, "/api/register", map[string]any{
		"username": username,
		"email":    email,
		"code":     code,
		"password": password,
	}, &resp)
	if err != nil {
		return 0, err
	}
	return resp.UserID, nil
}

// SendVerificationCode asks the server to email a registration code.
// An empty email fails fast without issuing a request.
func (c *Client) SendVerificationCode(ctx context.Context, email string) error {
	if strings.TrimSpace(email) == "" {
		return ErrEmptyEmail
	}
	var resp Envelope
	return c.doJSON(ctx, http.MethodPost, "/api/send_verification_code", map[string]any{
		"email": email,
	}, &resp)
}

// Logout drops the server session. The local cookie becomes useless either
// way, so callers clear local state even when this errors.
func (c *Client) Logout(ctx context.Context) error {
	var resp Envelope
	return c.doJSON(ctx, http.MethodPost, "/api/logout", nil, &resp)
}

// CheckLogin verifies the stored session credential. It returns the user
// when the session is live, nil when it is not.
func (c *Client) CheckLogin(ctx context.Context) (*User, error) {
	var resp checkLoginResponse
	if err := c.getJSON(ctx, "/api/check_login", &resp); err != nil {
		// The server answers 401 with an error envelope when logged out;
		// that is an answer, not a failure.
		var srvErr *ErrServer
		if errors.As(err, &srvErr) {
			return nil, nil
		}
		return nil, err
	}
	if !resp.IsLoggedIn {
		return nil, nil
	}
	return resp.User, nil
}
