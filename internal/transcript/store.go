// Package transcript keeps a local record of tutoring conversations so
// they stay readable after the session ends, even without the backend.
package transcript

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Entry is one recorded message.
type Entry struct {
	ID         int64
	ChatID     int
	Sender     string
	Content    string
	RecordedAt time.Time
}

// ChatLog summarizes one recorded chat.
type ChatLog struct {
	ChatID   int
	Title    string
	Messages int
	LastAt   time.Time
}

type Store struct {
	db *sql.DB
}

// Open creates or opens the transcript database at path.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("transcript db path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create transcript dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_loc=Local")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=3000;",
		"PRAGMA synchronous=NORMAL;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("set pragma %s: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		chat_id INTEGER NOT NULL,
		chat_title TEXT NOT NULL DEFAULT '',
		sender TEXT NOT NULL,
		content TEXT NOT NULL,
		recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, id);`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("init transcript schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record appends one message to a chat's transcript.
func (s *Store) Record(ctx context.Context, chatID int, title, sender, content string) error {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (chat_id, chat_title, sender, content) VALUES (?, ?, ?, ?)`,
		chatID, title, sender, content)
	if err != nil {
		return fmt.Errorf("record transcript message: %w", err)
	}
	return nil
}

// Messages returns a chat's recorded messages in insertion order.
func (s *Store) Messages(ctx context.Context, chatID int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, sender, content, recorded_at FROM messages WHERE chat_id = ? ORDER BY id`,
		chatID)
	if err != nil {
		return nil, fmt.Errorf("load transcript: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ChatID, &e.Sender, &e.Content, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan transcript row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Chats lists recorded chats, most recently active first.
func (s *Store) Chats(ctx context.Context) ([]ChatLog, error) {
	// recorded_at is read from the base table rather than through an
	// aggregate so the driver still sees the DATETIME column type and
	// scans into time.Time.
	rows, err := s.db.QueryContext(ctx, `
		SELECT m.chat_id, m.chat_title, c.message_count, m.recorded_at
		FROM messages m
		JOIN (
			SELECT chat_id, MAX(id) AS last_id, COUNT(*) AS message_count
			FROM messages GROUP BY chat_id
		) c ON m.id = c.last_id
		ORDER BY m.recorded_at DESC, m.id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var logs []ChatLog
	for rows.Next() {
		var l ChatLog
		if err := rows.Scan(&l.ChatID, &l.Title, &l.Messages, &l.LastAt); err != nil {
			return nil, fmt.Errorf("scan transcript summary: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
