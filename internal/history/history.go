// Package history keeps a local record of past run verdicts so operators
// can see when a tool last passed without digging through CI logs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/GurdipSCode/devops-mondoo-scanner/internal/schema"
)

// Record is one persisted verdict row.
type Record struct {
	RunID          string
	Tool           string
	Environment    string
	Modality       string
	Passed         bool
	ScoreThreshold int
	TargetsTotal   int
	TargetsPassed  int
	TargetsFailed  int
	CreatedAt      time.Time
}

// DB wraps the SQLite connection holding verdict history.
type DB struct {
	conn *sql.DB
}

// Open creates the database file (and its directory) if needed and ensures
// the schema exists.
func Open(ctx context.Context, dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		// Pragmas are optimizations, not critical - ignore errors
		_, _ = conn.ExecContext(ctx, pragma)
	}

	db := &DB{conn: conn}
	if err := db.migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate(ctx context.Context) error {
	schemaSQL := `
	CREATE TABLE IF NOT EXISTS verdicts (
		run_id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		environment TEXT NOT NULL,
		modality TEXT NOT NULL,
		passed INTEGER NOT NULL,
		score_threshold INTEGER NOT NULL,
		targets_total INTEGER NOT NULL,
		targets_passed INTEGER NOT NULL,
		targets_failed INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_verdicts_tool ON verdicts(tool, environment);
	CREATE INDEX IF NOT EXISTS idx_verdicts_created ON verdicts(created_at);
	`
	if _, err := db.conn.ExecContext(ctx, schemaSQL); err != nil {
		return err
	}
	return nil
}

// Save inserts one run verdict.
func (db *DB) Save(ctx context.Context, v schema.RunVerdict) error {
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO verdicts (
			run_id, tool, environment, modality, passed,
			score_threshold, targets_total, targets_passed, targets_failed, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.RunID, v.Tool, v.Environment, string(v.Modality), boolToInt(v.Passed),
		v.ScoreThreshold, v.TargetsTotal, v.TargetsPassed, v.TargetsFailed,
		v.Timestamp.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to save verdict: %w", err)
	}
	return nil
}

// Recent returns the newest limit verdicts for one tool/environment.
func (db *DB) Recent(ctx context.Context, tool, environment string, limit int) ([]Record, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT run_id, tool, environment, modality, passed,
		       score_threshold, targets_total, targets_passed, targets_failed, created_at
		FROM verdicts
		WHERE tool = ? AND environment = ?
		ORDER BY created_at DESC
		LIMIT ?`,
		tool, environment, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query verdicts: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var passed int
		var createdAt string
		if err := rows.Scan(
			&r.RunID, &r.Tool, &r.Environment, &r.Modality, &passed,
			&r.ScoreThreshold, &r.TargetsTotal, &r.TargetsPassed, &r.TargetsFailed, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan verdict row: %w", err)
		}
		r.Passed = passed != 0
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
