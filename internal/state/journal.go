package state

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Session status values.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusFailed    = "failed"
	SessionStatusStopped   = "stopped"
)

// Session is one execution run of a plan.
type Session struct {
	// ID is the session's unique identifier.
	ID string
	// PlanName is the name of the plan being executed.
	PlanName string
	// BaseBranch is the branch work branches were cut from.
	BaseBranch string
	// StartedAt is when the session began.
	StartedAt time.Time
	// FinishedAt is when the session ended, nil while active.
	FinishedAt *time.Time
	// Status is one of the SessionStatus values.
	Status string
}

// PhaseRecord is the journaled outcome of one executed phase.
type PhaseRecord struct {
	SessionID string
	Order     int
	Success   bool
	Completed int
	Failed    int
	Duration  time.Duration
}

// ItemRecord is the journaled outcome of one executed item.
type ItemRecord struct {
	SessionID  string
	Identifier string
	Type       string
	Branch     string
	Success    bool
	Error      string
	Duration   time.Duration
}

// CreateSession inserts a new active session.
func (db *DB) CreateSession(s *Session) error {
	if s.Status == "" {
		s.Status = SessionStatusActive
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}
	_, err := db.Exec(`
		INSERT INTO sessions (id, plan_name, base_branch, started_at, status)
		VALUES (?, ?, ?, ?, ?)
	`, s.ID, s.PlanName, s.BaseBranch, formatTime(s.StartedAt), s.Status)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return nil
}

// GetSession retrieves a session by ID.
func (db *DB) GetSession(id string) (*Session, error) {
	row := db.QueryRow(`
		SELECT id, plan_name, base_branch, started_at, finished_at, status
		FROM sessions WHERE id = ?
	`, id)
	return scanSession(row)
}

// GetActiveSession returns the most recently started active session,
// or ErrNotFound if none is active.
func (db *DB) GetActiveSession() (*Session, error) {
	row := db.QueryRow(`
		SELECT id, plan_name, base_branch, started_at, finished_at, status
		FROM sessions WHERE status = ? ORDER BY started_at DESC LIMIT 1
	`, SessionStatusActive)
	return scanSession(row)
}

// FinishSession marks a session as ended with the given status.
func (db *DB) FinishSession(id, status string) error {
	result, err := db.Exec(`
		UPDATE sessions SET status = ?, finished_at = ? WHERE id = ?
	`, status, formatTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListSessions returns sessions ordered by start time, newest first.
func (db *DB) ListSessions(limit int) ([]Session, error) {
	rows, err := db.Query(`
		SELECT id, plan_name, base_branch, started_at, finished_at, status
		FROM sessions ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		s, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// RecordPhase journals the outcome of an executed phase. Re-recording
// the same phase of a session overwrites the previous row, which keeps
// retried runs idempotent.
func (db *DB) RecordPhase(r *PhaseRecord) error {
	_, err := db.Exec(`
		INSERT INTO phases (session_id, phase_order, success, completed, failed, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, phase_order) DO UPDATE SET
			success = excluded.success,
			completed = excluded.completed,
			failed = excluded.failed,
			duration_ms = excluded.duration_ms,
			recorded_at = excluded.recorded_at
	`, r.SessionID, r.Order, boolToInt(r.Success), r.Completed, r.Failed,
		r.Duration.Milliseconds(), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record phase: %w", err)
	}
	return nil
}

// ListPhases returns a session's phase records in execution order.
func (db *DB) ListPhases(sessionID string) ([]PhaseRecord, error) {
	rows, err := db.Query(`
		SELECT session_id, phase_order, success, completed, failed, duration_ms
		FROM phases WHERE session_id = ? ORDER BY phase_order
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list phases: %w", err)
	}
	defer rows.Close()

	var records []PhaseRecord
	for rows.Next() {
		var r PhaseRecord
		var success int
		var durationMs int64
		if err := rows.Scan(&r.SessionID, &r.Order, &success, &r.Completed, &r.Failed, &durationMs); err != nil {
			return nil, fmt.Errorf("scan phase: %w", err)
		}
		r.Success = success != 0
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecordItem journals the outcome of an executed item.
func (db *DB) RecordItem(r *ItemRecord) error {
	_, err := db.Exec(`
		INSERT INTO items (session_id, identifier, item_type, branch, success, error, duration_ms, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, identifier) DO UPDATE SET
			item_type = excluded.item_type,
			branch = excluded.branch,
			success = excluded.success,
			error = excluded.error,
			duration_ms = excluded.duration_ms,
			recorded_at = excluded.recorded_at
	`, r.SessionID, r.Identifier, r.Type, r.Branch, boolToInt(r.Success),
		r.Error, r.Duration.Milliseconds(), formatTime(time.Now()))
	if err != nil {
		return fmt.Errorf("record item: %w", err)
	}
	return nil
}

// ListItems returns a session's item records ordered by insertion.
func (db *DB) ListItems(sessionID string) ([]ItemRecord, error) {
	rows, err := db.Query(`
		SELECT session_id, identifier, item_type, branch, success, error, duration_ms
		FROM items WHERE session_id = ? ORDER BY recorded_at, identifier
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var records []ItemRecord
	for rows.Next() {
		var r ItemRecord
		var success int
		var durationMs int64
		if err := rows.Scan(&r.SessionID, &r.Identifier, &r.Type, &r.Branch, &success, &r.Error, &durationMs); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		r.Success = success != 0
		r.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, r)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row *sql.Row) (*Session, error) {
	s, err := scanSessionRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return s, err
}

func scanSessionRow(row rowScanner) (*Session, error) {
	var s Session
	var started string
	var finished sql.NullString
	var baseBranch sql.NullString
	if err := row.Scan(&s.ID, &s.PlanName, &baseBranch, &started, &finished, &s.Status); err != nil {
		return nil, err
	}
	s.BaseBranch = baseBranch.String
	t, err := parseTime(started)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	s.StartedAt = t
	s.FinishedAt = parseNullableTime(finished)
	return &s, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
