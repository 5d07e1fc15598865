// Package store keeps the attempt journal of the running process in SQLite.
//
// The journal lives in memory by default and disappears when the process
// exits; nothing is carried between runs.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/verte-zerg/memospeak/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Store wraps SQLite access for attempt data.
type Store struct {
	db *sql.DB
}

// Open opens the journal at path and applies migrations. Use MemoryPath for
// a journal that is discarded on Close.
func Open(path string) (*Store, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Every connection to ":memory:" is a separate database.
	db.SetMaxOpenConns(1)
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id INTEGER PRIMARY KEY,
			session_id TEXT NOT NULL,
			mode TEXT NOT NULL,
			segment_index INTEGER NOT NULL,
			expected TEXT NOT NULL,
			transcript TEXT NOT NULL,
			score INTEGER NOT NULL,
			success INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_session ON attempts(session_id, mode, segment_index);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores one scored attempt.
func (s *Store) InsertAttempt(ctx context.Context, a model.AttemptRecord) (int64, error) {
	success := 0
	if a.Success {
		success = 1
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO attempts (session_id, mode, segment_index, expected, transcript, score, success, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID,
		a.Mode,
		a.SegmentIndex,
		a.Expected,
		a.Transcript,
		a.Score,
		success,
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListAttempts returns the attempts of a session in insertion order.
func (s *Store) ListAttempts(ctx context.Context, sessionID string) ([]model.AttemptRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, mode, segment_index, expected, transcript, score, success, created_at
		 FROM attempts
		 WHERE session_id = ?
		 ORDER BY id ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.AttemptRecord
	for rows.Next() {
		var rec model.AttemptRecord
		var success int
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Mode, &rec.SegmentIndex, &rec.Expected, &rec.Transcript, &rec.Score, &success, &createdAt); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
		}
		rec.Success = success != 0
		rec.CreatedAt = parsed
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListSegmentSummaries aggregates a session's attempts per mode and segment.
func (s *Store) ListSegmentSummaries(ctx context.Context, sessionID string) ([]model.SegmentSummary, error) {
	query := `SELECT a.mode, a.segment_index, MIN(a.expected), COUNT(*), SUM(a.success), MAX(a.score),
			(SELECT l.score FROM attempts l
			 WHERE l.session_id = a.session_id AND l.mode = a.mode AND l.segment_index = a.segment_index
			 ORDER BY l.id DESC LIMIT 1)
		FROM attempts a
		WHERE a.session_id = ?
		GROUP BY a.mode, a.segment_index
		ORDER BY MIN(a.id) ASC`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.SegmentSummary
	for rows.Next() {
		var sum model.SegmentSummary
		if err := rows.Scan(&sum.Mode, &sum.SegmentIndex, &sum.Expected, &sum.Attempts, &sum.Successes, &sum.BestScore, &sum.LastScore); err != nil {
			return nil, err
		}
		result = append(result, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
