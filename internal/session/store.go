// Package session persists the logged-in student's credentials between
// invocations. The token and the user record live and die together: a
// login writes both, and an expired session removes both.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// User is the identity record returned by the login endpoint.
type User struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	Role         string `json:"role"`
	UniversityID *int   `json:"university_id,omitempty"`
}

// State is the persisted session payload.
type State struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

// Store reads and writes the session file. Safe for concurrent use; a
// Clear while requests are in flight is observed by the next Token call.
type Store struct {
	path string

	mu    sync.Mutex
	state State
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the session file into memory. A missing file is not an
// error: the store simply starts logged out.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.state = State{}
			return nil
		}
		return fmt.Errorf("read session file: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("parse session file: %w", err)
	}
	s.state = state
	return nil
}

// Token returns the bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Token
}

// User returns a copy of the stored user, or nil when logged out.
func (s *Store) User() *User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.User == nil {
		return nil
	}
	u := *s.state.User
	return &u
}

// Save persists a new token/user pair, replacing any previous session.
func (s *Store) Save(token string, user User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := State{Token: token, User: &user}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}

	s.state = state
	return nil
}

// Clear removes the token and user together. Idempotent: clearing an
// already-empty store is a no-op.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = State{}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}
