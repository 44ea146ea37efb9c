package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Attempt statuses.
const (
	StatusAttempted = "attempted"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Action kinds.
const (
	ActionDelete = "delete"
	ActionSplit  = "split"
)

// timestampLayout is fixed width so stored text sorts in time order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

var ErrAttemptNotFound = errors.New("resolution attempt not found")

// Attempt is one journaled resolution action against the remote API.
type Attempt struct {
	ID         string
	Action     string
	Day        string
	SubjectID  string
	RecordIDs  []int64
	Segments   int
	Status     string
	Message    string
	StartedAt  time.Time
	FinishedAt time.Time
}

type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &SQLiteStore{db: db, now: time.Now}
	if err := store.ensureSchema(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ensureSchema() error {
	const schema = `
CREATE TABLE IF NOT EXISTS resolution_attempts (
	id TEXT PRIMARY KEY,
	action TEXT NOT NULL CHECK(action IN ('delete', 'split')),
	day TEXT NOT NULL,
	subject_id TEXT NOT NULL DEFAULT '',
	record_ids TEXT NOT NULL DEFAULT '',
	segments INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	message TEXT NOT NULL DEFAULT '',
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_resolution_attempts_started ON resolution_attempts(started_at);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// BeginAttempt stores attempt with status "attempted" and returns its new ID.
func (s *SQLiteStore) BeginAttempt(attempt Attempt) (string, error) {
	action := strings.TrimSpace(attempt.Action)
	if action != ActionDelete && action != ActionSplit {
		return "", fmt.Errorf("unsupported action %q", attempt.Action)
	}

	id := uuid.NewString()
	const insertStmt = `
INSERT INTO resolution_attempts (
	id,
	action,
	day,
	subject_id,
	record_ids,
	segments,
	status,
	started_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?);`

	_, err := s.db.Exec(
		insertStmt,
		id,
		action,
		attempt.Day,
		attempt.SubjectID,
		joinIDs(attempt.RecordIDs),
		attempt.Segments,
		StatusAttempted,
		s.now().UTC().Format(timestampLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert resolution attempt: %w", err)
	}
	return id, nil
}

// FinishAttempt records the outcome of a previously begun attempt.
func (s *SQLiteStore) FinishAttempt(id string, succeeded bool, message string) error {
	status := StatusFailed
	if succeeded {
		status = StatusSucceeded
	}

	res, err := s.db.Exec(
		`UPDATE resolution_attempts SET status = ?, message = ?, finished_at = ? WHERE id = ?;`,
		status,
		message,
		s.now().UTC().Format(timestampLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("update resolution attempt %s: %w", id, err)
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read updated row count: %w", err)
	}
	if rowsAffected == 0 {
		return ErrAttemptNotFound
	}
	return nil
}

// ListAttempts returns the newest attempts first. limit <= 0 returns all.
func (s *SQLiteStore) ListAttempts(limit int) ([]Attempt, error) {
	query := `
SELECT
	id,
	action,
	day,
	subject_id,
	record_ids,
	segments,
	status,
	message,
	started_at,
	finished_at
FROM resolution_attempts
ORDER BY started_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query+";", args...)
	if err != nil {
		return nil, fmt.Errorf("query resolution attempts: %w", err)
	}
	defer rows.Close()

	attempts := make([]Attempt, 0, 32)
	for rows.Next() {
		var (
			attempt     Attempt
			recordIDs   string
			startedRaw  string
			finishedRaw string
		)
		if err := rows.Scan(
			&attempt.ID,
			&attempt.Action,
			&attempt.Day,
			&attempt.SubjectID,
			&recordIDs,
			&attempt.Segments,
			&attempt.Status,
			&attempt.Message,
			&startedRaw,
			&finishedRaw,
		); err != nil {
			return nil, fmt.Errorf("scan resolution attempt: %w", err)
		}

		attempt.RecordIDs, err = splitIDs(recordIDs)
		if err != nil {
			return nil, err
		}
		attempt.StartedAt, err = time.Parse(timestampLayout, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse started_at %q: %w", startedRaw, err)
		}
		if finishedRaw != "" {
			attempt.FinishedAt, err = time.Parse(timestampLayout, finishedRaw)
			if err != nil {
				return nil, fmt.Errorf("parse finished_at %q: %w", finishedRaw, err)
			}
		}

		attempts = append(attempts, attempt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolution attempts: %w", err)
	}

	return attempts, nil
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%d", id))
	}
	return strings.Join(parts, ",")
}

func splitIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]int64, 0, len(parts))
	for _, part := range parts {
		var id int64
		if _, err := fmt.Sscanf(part, "%d", &id); err != nil {
			return nil, fmt.Errorf("parse record id %q: %w", part, err)
		}
		out = append(out, id)
	}
	return out, nil
}
