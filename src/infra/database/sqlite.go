package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"pressplay/src/features/history"
)

// SqliteLedger is a SQLite implementation of the history.Ledger interface.
type SqliteLedger struct {
	db *sql.DB
}

// NewSqliteLedger creates a new SqliteLedger.
func NewSqliteLedger(path string) (*SqliteLedger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := createTables(db); err != nil {
		return nil, err
	}

	return &SqliteLedger{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS imports (
			id TEXT PRIMARY KEY,
			at TEXT NOT NULL,
			files_copied INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS playbacks (
			id TEXT PRIMARY KEY,
			file TEXT NOT NULL,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			reason TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_playbacks_ended_at ON playbacks(ended_at);
	`)
	if err != nil {
		return fmt.Errorf("failed to create ledger tables: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (l *SqliteLedger) Close() error {
	return l.db.Close()
}

// RecordImport stores one import run.
func (l *SqliteLedger) RecordImport(ctx context.Context, imp history.Import) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO imports (id, at, files_copied) VALUES (?, ?, ?)`,
		imp.ID, imp.At.Format(time.RFC3339), imp.FilesCopied)
	if err != nil {
		return fmt.Errorf("failed to record import: %w", err)
	}
	return nil
}

// RecordPlayback stores one finished playback.
func (l *SqliteLedger) RecordPlayback(ctx context.Context, p history.Playback) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO playbacks (id, file, started_at, ended_at, reason) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.File, p.StartedAt.Format(time.RFC3339), p.EndedAt.Format(time.RFC3339), p.Reason)
	if err != nil {
		return fmt.Errorf("failed to record playback: %w", err)
	}
	return nil
}

// RecentPlaybacks returns the latest playbacks, newest first.
func (l *SqliteLedger) RecentPlaybacks(ctx context.Context, limit int) ([]history.Playback, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, file, started_at, ended_at, reason FROM playbacks ORDER BY ended_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query playbacks: %w", err)
	}
	defer rows.Close()

	var playbacks []history.Playback
	for rows.Next() {
		var p history.Playback
		var startedAt, endedAt string
		if err := rows.Scan(&p.ID, &p.File, &startedAt, &endedAt, &p.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan playback row: %w", err)
		}
		p.StartedAt, _ = time.Parse(time.RFC3339, startedAt)
		p.EndedAt, _ = time.Parse(time.RFC3339, endedAt)
		playbacks = append(playbacks, p)
	}
	return playbacks, rows.Err()
}

// Stats returns ledger totals.
func (l *SqliteLedger) Stats(ctx context.Context) (history.Stats, error) {
	var stats history.Stats
	row := l.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM playbacks`)
	if err := row.Scan(&stats.Playbacks); err != nil {
		return stats, fmt.Errorf("failed to count playbacks: %w", err)
	}
	row = l.db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(files_copied), 0) FROM imports`)
	if err := row.Scan(&stats.Imports, &stats.FilesCopied); err != nil {
		return stats, fmt.Errorf("failed to count imports: %w", err)
	}
	return stats, nil
}
