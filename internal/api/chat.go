package api

import (
	"context"
	"fmt"
)

type startChatRequest struct {
	SubjectID int     `json:"subject_id"`
	Title     *string `json:"title,omitempty"`
}

type sendMessageRequest struct {
	Question string `json:"question"`
}

// StartChat opens a new chat session for a subject. The backend titles
// it "New chat" until the first question overrides the title.
func (c *Client) StartChat(ctx context.Context, subjectID int, title *string) (*Chat, error) {
	var out Chat
	if err := c.post(ctx, "/chat/start", startChatRequest{SubjectID: subjectID, Title: title}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Chats returns the student's chats, newest first.
func (c *Client) Chats(ctx context.Context) ([]Chat, error) {
	var out []Chat
	if err := c.get(ctx, "/chat", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChatMessages returns a chat's messages in chronological order.
func (c *Client) ChatMessages(ctx context.Context, chatID int) ([]ChatMessage, error) {
	var out []ChatMessage
	if err := c.get(ctx, fmt.Sprintf("/chat/%d/messages", chatID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendMessage asks a question in a chat and returns the tutor's answer
// with its material sources.
func (c *Client) SendMessage(ctx context.Context, chatID int, question string) (*ChatReply, error) {
	var out ChatReply
	if err := c.post(ctx, fmt.Sprintf("/chat/%d/message", chatID), sendMessageRequest{Question: question}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
