package api

import (
	"context"
)

type profileUpdateRequest struct {
	Name  *string `json:"name,omitempty"`
	Email *string `json:"email,omitempty"`
}

type passwordChangeRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Profile fetches the current student's profile snapshot. Not cached:
// every page load re-fetches.
func (c *Client) Profile(ctx context.Context) (*StudentProfile, error) {
	var out StudentProfile
	if err := c.get(ctx, "/student/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes the student's name and/or email. Nil fields are
// left untouched.
func (c *Client) UpdateProfile(ctx context.Context, name, email *string) (*StudentProfile, error) {
	var out StudentProfile
	if err := c.put(ctx, "/student/profile", profileUpdateRequest{Name: name, Email: email}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChangePassword swaps the student's password. Input policy (length,
// confirmation match) is enforced by the caller before any network call.
func (c *Client) ChangePassword(ctx context.Context, current, newPassword string) error {
	req := passwordChangeRequest{CurrentPassword: current, NewPassword: newPassword}
	return c.post(ctx, "/student/change-password", req, nil)
}
