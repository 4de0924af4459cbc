package api

import (
	"time"

	"github.com/arnavkapoor/campuschat/internal/session"
)

// Message sender values as stored by the backend.
const (
	SenderUser = "USER"
	SenderBot  = "BOT"
)

// TokenResponse is returned by the login and signup endpoints.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        session.User `json:"user"`
}

type University struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Code      *string   `json:"code,omitempty"`
	City      *string   `json:"city,omitempty"`
	State     *string   `json:"state,omitempty"`
	Country   *string   `json:"country,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// Branch is an academic program of study within a university.
type Branch struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	UniversityID int    `json:"university_id"`
}

// Semester is an ordered term within a branch. SemesterNumber values are
// unique and increasing within a branch.
type Semester struct {
	ID             int    `json:"id"`
	BranchID       int    `json:"branch_id"`
	SemesterNumber int    `json:"semester_number"`
	Name           string `json:"name"`
}

type Subject struct {
	ID         int    `json:"id"`
	SemesterID int    `json:"semester_id"`
	Name       string `json:"name"`
}

// Chat is a conversation session, optionally tied to a subject.
type Chat struct {
	ID          int       `json:"id"`
	Title       *string   `json:"title,omitempty"`
	SubjectName *string   `json:"subject_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Source points at the study material a bot answer was grounded on.
type Source struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Page  *int   `json:"page,omitempty"`
}

type ChatMessage struct {
	ID        int       `json:"id"`
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Sources   []Source  `json:"sources,omitempty"`
}

// ChatReply is the bot's answer to a sent question. ChatTitle is set when
// the backend auto-titled the chat from the first question.
type ChatReply struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	ChatTitle *string  `json:"chat_title,omitempty"`
}

type StudentProfile struct {
	ID           int       `json:"id"`
	UniversityID int       `json:"university_id"`
	BranchID     *int      `json:"branch_id,omitempty"`
	BatchYear    *int      `json:"batch_year,omitempty"`
	IsActive     bool      `json:"is_active"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"created_at"`
}

type MaterialDocument struct {
	ID         int       `json:"id"`
	SubjectID  int       `json:"subject_id"`
	Title      string    `json:"title"`
	S3Key      *string   `json:"s3_key,omitempty"`
	SourceType string    `json:"source_type"`
	CreatedAt  time.Time `json:"created_at"`
}

type MaterialChunk struct {
	ID         int     `json:"id"`
	DocumentID int     `json:"document_id"`
	Text       string  `json:"text"`
	PageNumber *int    `json:"page_number,omitempty"`
	Heading    *string `json:"heading,omitempty"`
	Keywords   *string `json:"keywords,omitempty"`
}

// MaterialChunkInput is the payload for uploading a chunk of study
// material under an existing document.
type MaterialChunkInput struct {
	DocumentID int     `json:"document_id"`
	Text       string  `json:"text"`
	PageNumber *int    `json:"page_number,omitempty"`
	Heading    *string `json:"heading,omitempty"`
	Keywords   *string `json:"keywords,omitempty"`
}
