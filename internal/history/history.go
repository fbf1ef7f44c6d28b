// Package history persists one row per dispatch cycle so past commands
// survive restarts and can be read back through the control client.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Entry struct {
	ID        string
	Utterance string
	Kind      string
	Response  string
	At        time.Time
}

type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS dispatches (
	id        TEXT PRIMARY KEY,
	utterance TEXT NOT NULL,
	kind      TEXT NOT NULL,
	response  TEXT NOT NULL,
	at        INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS dispatches_at ON dispatches(at);
`

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends one dispatch cycle.
func (s *Store) Record(utterance, kind, response string) error {
	_, err := s.db.Exec(`
		INSERT INTO dispatches (id, utterance, kind, response, at)
		VALUES (?, ?, ?, ?, ?)
	`, uuid.NewString(), utterance, kind, response, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("insert dispatch: %w", err)
	}
	return nil
}

// Recent returns the latest n entries, newest first.
func (s *Store) Recent(n int) ([]Entry, error) {
	rows, err := s.db.Query(`
		SELECT id, utterance, kind, response, at
		FROM dispatches
		ORDER BY at DESC, rowid DESC
		LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("query dispatches: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var at int64
		if err := rows.Scan(&e.ID, &e.Utterance, &e.Kind, &e.Response, &at); err != nil {
			return nil, fmt.Errorf("scan dispatch: %w", err)
		}
		e.At = time.Unix(at, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
