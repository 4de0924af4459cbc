package api

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// Universities lists all universities. Public endpoint, no auth needed.
func (c *Client) Universities(ctx context.Context) ([]University, error) {
	var out []University
	err := c.cachedListing(ctx, "universities", "/courses/universities", nil, &out)
	return out, err
}

// Branches returns the branches visible to the current user. For a
// student that is exactly their assigned branch.
func (c *Client) Branches(ctx context.Context) ([]Branch, error) {
	var out []Branch
	err := c.cachedListing(ctx, "branches", "/courses/branches", nil, &out)
	return out, err
}

// Semesters returns a branch's semesters ordered by semester_number.
func (c *Client) Semesters(ctx context.Context, branchID int) ([]Semester, error) {
	var out []Semester
	query := map[string]string{"branch_id": strconv.Itoa(branchID)}
	err := c.cachedListing(ctx, "semesters", "/courses/semesters", query, &out)
	return out, err
}

// Subjects returns a semester's subjects ordered by name.
func (c *Client) Subjects(ctx context.Context, semesterID int) ([]Subject, error) {
	var out []Subject
	query := map[string]string{"semester_id": strconv.Itoa(semesterID)}
	err := c.cachedListing(ctx, "subjects", "/courses/subjects", query, &out)
	return out, err
}

// cachedListing serves catalog listings through the disk cache when one
// is configured. The catalog changes on an academic timescale, so a
// short TTL trades staleness for snappy pickers.
func (c *Client) cachedListing(ctx context.Context, listing, path string, query map[string]string, out any) error {
	if c.catalog != nil && c.catalog.Get(listing, query, out) {
		return nil
	}
	if err := c.get(ctx, path, query, out); err != nil {
		return err
	}
	if c.catalog != nil {
		if err := c.catalog.Set(listing, query, out); err != nil {
			c.logger.Debug("caching catalog listing", zap.String("listing", listing), zap.Error(err))
		}
	}
	return nil
}
