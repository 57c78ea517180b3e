// Package journal records generation runs in a local SQLite database.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"meshconf/pkg/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs(
	id TEXT PRIMARY KEY,
	started_at INTEGER NOT NULL,
	status TEXT NOT NULL,
	nodes INTEGER NOT NULL,
	outputs INTEGER NOT NULL,
	diagnostics INTEGER NOT NULL,
	detail TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS run_outputs(
	run_id TEXT NOT NULL REFERENCES runs(id),
	name TEXT NOT NULL,
	digest TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_run_outputs_run ON run_outputs(run_id);
`

// Journal is a run history backed by a single SQLite file.
type Journal struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(ctx context.Context, path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("journal mkdir: %w", err)
	}
	dsn := "file:" + path + "?_pragma=busy_timeout=5000"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("journal open: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores a run and the digests of what it wrote.
func (j *Journal) Record(ctx context.Context, run model.RunEntry, digests []model.OutputDigest) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs(id, started_at, status, nodes, outputs, diagnostics, detail) VALUES(?,?,?,?,?,?,?)`,
		run.ID, run.StartedAt.UnixNano(), run.Status, run.Nodes, run.Outputs, run.Diagnostics, run.Detail)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	for _, d := range digests {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_outputs(run_id, name, digest) VALUES(?,?,?)`, run.ID, d.Name, d.Digest); err != nil {
			return fmt.Errorf("insert output %s: %w", d.Name, err)
		}
	}
	return tx.Commit()
}

// Recent returns up to limit runs, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]model.RunEntry, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT id, started_at, status, nodes, outputs, diagnostics, detail FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.RunEntry
	for rows.Next() {
		var r model.RunEntry
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Status, &r.Nodes, &r.Outputs, &r.Diagnostics, &r.Detail); err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(0, ts).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// LatestDigests maps output names to digests from the newest successful run.
// It returns an empty map when no run succeeded yet.
func (j *Journal) LatestDigests(ctx context.Context) (map[string]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT name, digest FROM run_outputs WHERE run_id = (
			SELECT id FROM runs WHERE status = ? ORDER BY started_at DESC, rowid DESC LIMIT 1
		)`, model.RunOK)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var name, digest string
		if err := rows.Scan(&name, &digest); err != nil {
			return nil, err
		}
		out[name] = digest
	}
	return out, rows.Err()
}
