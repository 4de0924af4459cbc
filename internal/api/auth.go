package api

import (
	"context"
	"fmt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signupRequest struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	MasterAdminKey string `json:"master_admin_key,omitempty"`
}

// Login authenticates against the backend and persists the returned
// token and user record. A previous session, expired or not, is replaced.
func (c *Client) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	var out TokenResponse
	if err := c.post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, err
	}

	if err := c.sessions.Save(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	c.resetExpiry()
	return &out, nil
}

// Signup registers the initial master admin account. Regular student and
// admin accounts are provisioned by their university, not self-signup.
func (c *Client) Signup(ctx context.Context, name, email, password, masterKey string) (*TokenResponse, error) {
	var out TokenResponse
	req := signupRequest{Name: name, Email: email, Password: password, MasterAdminKey: masterKey}
	if err := c.post(ctx, "/auth/signup", req, &out); err != nil {
		return nil, err
	}

	if err := c.sessions.Save(out.AccessToken, out.User); err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}
	c.resetExpiry()
	return &out, nil
}

// Logout drops the local session. The backend keeps no server-side
// session state, so this is purely a client-side operation.
func (c *Client) Logout() error {
	return c.sessions.Clear()
}
