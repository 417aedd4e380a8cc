package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrEmptySession is returned by Record for sessions without codes.
var ErrEmptySession = errors.New("session has no codes")

// Session is one recorded scan session.
type Session struct {
	ID        string    `json:"id"`
	StartedAt time.Time `json:"started_at"`
	EndedAt   time.Time `json:"ended_at"`
	Codes     []string  `json:"codes"`
}

// Duration returns how long the session ran.
func (s Session) Duration() time.Duration {
	if s.EndedAt.Before(s.StartedAt) {
		return 0
	}
	return s.EndedAt.Sub(s.StartedAt)
}

// Store is the SQLite-backed history.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("history path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Pragmas are per connection.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record stores a finished session. Recording the same ID twice replaces the
// earlier row.
func (s *Store) Record(ctx context.Context, session Session) error {
	if strings.TrimSpace(session.ID) == "" {
		return fmt.Errorf("record session: id is empty")
	}
	if len(session.Codes) == 0 {
		return ErrEmptySession
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, stmt := range []string{
		"DELETE FROM codes WHERE session_id = ?",
		"DELETE FROM sessions WHERE id = ?",
	} {
		if _, err := tx.ExecContext(ctx, stmt, session.ID); err != nil {
			return fmt.Errorf("replace session: %w", err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sessions (id, started_at, ended_at, code_count) VALUES (?, ?, ?, ?)`,
		session.ID,
		formatTime(session.StartedAt),
		formatTime(session.EndedAt),
		len(session.Codes),
	); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	for i, code := range session.Codes {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO codes (session_id, position, payload) VALUES (?, ?, ?)`,
			session.ID, i, code,
		); err != nil {
			return fmt.Errorf("insert code %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first. A non-positive limit
// returns every session.
func (s *Store) Recent(ctx context.Context, limit int) ([]Session, error) {
	query := `SELECT id, started_at, ended_at FROM sessions ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	var sessions []Session
	for rows.Next() {
		var (
			session        Session
			started, ended string
		)
		if err := rows.Scan(&session.ID, &started, &ended); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan session: %w", err)
		}
		session.StartedAt = parseTime(started)
		session.EndedAt = parseTime(ended)
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	_ = rows.Close()

	for i := range sessions {
		codes, err := s.codes(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Codes = codes
	}
	return sessions, nil
}

func (s *Store) codes(ctx context.Context, sessionID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM codes WHERE session_id = ? ORDER BY position`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query codes: %w", err)
	}
	defer rows.Close()

	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("scan code: %w", err)
		}
		codes = append(codes, code)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate codes: %w", err)
	}
	return codes, nil
}

// timeLayout is fixed width so ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
