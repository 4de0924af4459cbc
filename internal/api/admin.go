package api

import (
	"context"
	"fmt"
)

type branchCreateRequest struct {
	Name string `json:"name"`
}

type semesterCreateRequest struct {
	BranchID       int    `json:"branch_id"`
	SemesterNumber int    `json:"semester_number"`
	Name           string `json:"name"`
}

type subjectCreateRequest struct {
	SemesterID int    `json:"semester_id"`
	Name       string `json:"name"`
}

// Admin endpoints: branch/semester/subject management for university
// admins. The backend scopes every operation to the admin's university.

func (c *Client) AdminBranches(ctx context.Context) ([]Branch, error) {
	var out []Branch
	if err := c.get(ctx, "/admin/branches", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateBranch(ctx context.Context, name string) (*Branch, error) {
	var out Branch
	if err := c.post(ctx, "/admin/branches", branchCreateRequest{Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteBranch(ctx context.Context, branchID int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/branches/%d", branchID))
}

func (c *Client) AdminSemesters(ctx context.Context) ([]Semester, error) {
	var out []Semester
	if err := c.get(ctx, "/admin/semesters", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSemester(ctx context.Context, branchID, semesterNumber int, name string) (*Semester, error) {
	var out Semester
	req := semesterCreateRequest{BranchID: branchID, SemesterNumber: semesterNumber, Name: name}
	if err := c.post(ctx, "/admin/semesters", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSemester(ctx context.Context, semesterID int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/semesters/%d", semesterID))
}

func (c *Client) AdminSubjects(ctx context.Context) ([]Subject, error) {
	var out []Subject
	if err := c.get(ctx, "/admin/subjects", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateSubject(ctx context.Context, semesterID int, name string) (*Subject, error) {
	var out Subject
	if err := c.post(ctx, "/admin/subjects", subjectCreateRequest{SemesterID: semesterID, Name: name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteSubject(ctx context.Context, subjectID int) error {
	return c.delete(ctx, fmt.Sprintf("/admin/subjects/%d", subjectID))
}
