package harvest

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/anatolykoptev/go_ytcomments/internal/engine"
)

// Outcome is one ledger entry: what happened to a video in a run.
type Outcome struct {
	ID        int64             `json:"id"`
	RunID     string            `json:"run_id"`
	Mode      string            `json:"mode"`
	Owner     string            `json:"owner"`
	VideoID   string            `json:"video_id"`
	Title     string            `json:"title"`
	Rows      int               `json:"rows"`
	Reason    engine.SkipReason `json:"reason,omitempty"`
	Error     string            `json:"error,omitempty"`
	CreatedAt string            `json:"created_at"`
}

// OutcomesInput is the input for harvest_outcomes.
type OutcomesInput struct {
	RunID  string `json:"run_id,omitempty" jsonschema:"Only outcomes of this run"`
	Reason string `json:"reason,omitempty" jsonschema:"Only this skip reason (e.g. comments_disabled, quota_exceeded); 'ok' for written videos"`
	Limit  int    `json:"limit,omitempty" jsonschema:"Max entries (default 50, max 500)"`
}

// OutcomesResult is the output for harvest_outcomes.
type OutcomesResult struct {
	Outcomes []Outcome `json:"outcomes"`
	Total    int       `json:"total"`
}

// Ledger keeps per-video outcomes in SQLite so skipped videos can be
// found and retried later.
type Ledger struct {
	db *sql.DB
}

// OpenLedger opens (or creates) the ledger database at path.
func OpenLedger(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("ledger: mkdir %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ledger: open db: %w", err)
	}
	db.SetMaxOpenConns(1) // SQLite: single writer
	if err := initLedgerSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("ledger: init schema: %w", err)
	}
	return &Ledger{db: db}, nil
}

func initLedgerSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS outcomes (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id     TEXT NOT NULL,
		mode       TEXT NOT NULL,
		owner      TEXT NOT NULL,
		video_id   TEXT NOT NULL,
		title      TEXT,
		row_count  INTEGER NOT NULL DEFAULT 0,
		reason     TEXT NOT NULL DEFAULT '',
		error      TEXT,
		created_at TEXT NOT NULL
	)`)
	return err
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Record stores one per-video result.
func (l *Ledger) Record(ctx context.Context, runID, mode string, r engine.VideoResult) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO outcomes (run_id, mode, owner, video_id, title, row_count, reason, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, mode, r.Video.OwnerName, r.Video.VideoID, r.Video.Title,
		r.Rows, string(r.Reason), r.Error, now,
	)
	if err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	return nil
}

// List returns outcomes newest first, filtered by run and reason.
func (l *Ledger) List(ctx context.Context, input OutcomesInput) (*OutcomesResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	limit = min(limit, 500)

	where, args := "WHERE 1=1", []any{}
	if input.RunID != "" {
		where += " AND run_id = ?"
		args = append(args, input.RunID)
	}
	if input.Reason != "" {
		reason := input.Reason
		if reason == "ok" {
			reason = ""
		}
		where += " AND reason = ?"
		args = append(args, reason)
	}

	rows, err := l.db.QueryContext(ctx,
		`SELECT id, run_id, mode, owner, video_id, title, row_count, reason, error, created_at
		 FROM outcomes `+where+` ORDER BY id DESC LIMIT ?`,
		append(args, limit)...,
	)
	if err != nil {
		return nil, fmt.Errorf("ledger: query: %w", err)
	}
	defer rows.Close()

	var out []Outcome
	for rows.Next() {
		var o Outcome
		var title, errText sql.NullString
		var reason string
		if err := rows.Scan(&o.ID, &o.RunID, &o.Mode, &o.Owner, &o.VideoID, &title,
			&o.Rows, &reason, &errText, &o.CreatedAt); err != nil {
			return nil, fmt.Errorf("ledger: scan: %w", err)
		}
		o.Title = title.String
		o.Reason = engine.SkipReason(reason)
		o.Error = errText.String
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger: rows: %w", err)
	}

	var total int
	if err := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM outcomes `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("ledger: count: %w", err)
	}

	if out == nil {
		out = []Outcome{}
	}
	return &OutcomesResult{Outcomes: out, Total: total}, nil
}
