package logging

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// #region schema
const transitionSchema = `
CREATE TABLE IF NOT EXISTS transition_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	intent      TEXT NOT NULL,
	decision    TEXT NOT NULL,
	reason      TEXT,
	metrics     TEXT,
	created_at  TEXT NOT NULL
);
`
// #endregion schema

// #region transition-entry
// TransitionEntry is a single row in the transition_log table.
type TransitionEntry struct {
	ID        int64     `json:"id"`
	Intent    string    `json:"intent"`
	Decision  string    `json:"decision"` // "applied" | "no_op"
	Reason    string    `json:"reason,omitempty"`
	Metrics   string    `json:"metrics,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}
// #endregion transition-entry

// #region transition-log
// TransitionLog is the audit trail of every state intent and its decision.
type TransitionLog struct {
	db *sql.DB
}

// NewTransitionLog creates the table on db if needed.
func NewTransitionLog(db *sql.DB) (*TransitionLog, error) {
	if _, err := db.Exec(transitionSchema); err != nil {
		return nil, fmt.Errorf("migrate transition log: %w", err)
	}
	return &TransitionLog{db: db}, nil
}

// Record writes one entry. A zero CreatedAt is stamped with the current time.
func (l *TransitionLog) Record(ctx context.Context, entry TransitionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO transition_log (intent, decision, reason, metrics, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Intent,
		entry.Decision,
		nullIfEmpty(entry.Reason),
		nullIfEmpty(entry.Metrics),
		entry.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log transition: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (l *TransitionLog) Recent(ctx context.Context, limit int) ([]TransitionEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, intent, decision, reason, metrics, created_at
		 FROM transition_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query transitions: %w", err)
	}
	defer rows.Close()

	var out []TransitionEntry
	for rows.Next() {
		var e TransitionEntry
		var reason, metrics sql.NullString
		var created string
		if err := rows.Scan(&e.ID, &e.Intent, &e.Decision, &reason, &metrics, &created); err != nil {
			return nil, fmt.Errorf("scan transition: %w", err)
		}
		e.Reason = reason.String
		e.Metrics = metrics.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, e)
	}
	return out, rows.Err()
}
// #endregion transition-log

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
// #endregion helpers
