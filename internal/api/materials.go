package api

import (
	"context"
	"fmt"
)

type documentCreateRequest struct {
	SubjectID int    `json:"subject_id"`
	Title     string `json:"title"`
}

// CreateDocument registers a study-material document under a subject.
func (c *Client) CreateDocument(ctx context.Context, subjectID int, title string) (*MaterialDocument, error) {
	var out MaterialDocument
	if err := c.post(ctx, "/materials/documents", documentCreateRequest{SubjectID: subjectID, Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DocumentsBySubject lists a subject's material documents.
func (c *Client) DocumentsBySubject(ctx context.Context, subjectID int) ([]MaterialDocument, error) {
	var out []MaterialDocument
	if err := c.get(ctx, fmt.Sprintf("/materials/documents/%d", subjectID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateChunk uploads one chunk of material text under a document.
func (c *Client) CreateChunk(ctx context.Context, input MaterialChunkInput) (*MaterialChunk, error) {
	var out MaterialChunk
	if err := c.post(ctx, "/materials/chunks", input, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ChunksByDocument lists a document's chunks in upload order.
func (c *Client) ChunksByDocument(ctx context.Context, documentID int) ([]MaterialChunk, error) {
	var out []MaterialChunk
	if err := c.get(ctx, fmt.Sprintf("/materials/chunks/%d", documentID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
