// Package quota keeps the client inside the remote API's hourly request
// quota. The ledger persists request timestamps in sqlite so the
// trailing-hour count survives restarts; the scheduler turns that count
// into wait time via a token-bucket limiter.
package quota

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// retention bounds ledger growth; anything older than this has no
// bearing on the trailing-hour count.
const retention = 24 * time.Hour

// Ledger records every outgoing API request in sqlite.
type Ledger struct {
	db *sql.DB
}

// NewLedger opens (creating if necessary) the ledger database at dbPath
// and applies migrations.
func NewLedger(dbPath string) (*Ledger, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open ledger database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping ledger database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate ledger database: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Record appends one request to the ledger and drops entries past the
// retention window.
func (l *Ledger) Record(ctx context.Context, at time.Time, method, path string) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO api_requests (requested_at, method, path) VALUES (?, ?, ?)`,
		at.Unix(), method, path)
	if err != nil {
		return fmt.Errorf("record request: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`DELETE FROM api_requests WHERE requested_at < ?`,
		at.Add(-retention).Unix())
	if err != nil {
		return fmt.Errorf("prune ledger: %w", err)
	}

	return nil
}

// CountSince returns how many requests were recorded at or after the
// given instant.
func (l *Ledger) CountSince(ctx context.Context, since time.Time) (int, error) {
	var n int
	err := l.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM api_requests WHERE requested_at >= ?`,
		since.Unix()).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count requests: %w", err)
	}
	return n, nil
}

func (l *Ledger) Close() error {
	if l.db != nil {
		return l.db.Close()
	}
	return nil
}
