package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// SchemaVersion is the newest schema this build understands.
const SchemaVersion = 2

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
)`

// migrations[v] upgrades a database from version v-1 to v.
var migrations = [SchemaVersion + 1]string{
	1: `
-- One row per simulation run. payload holds the full JSON snapshot; the
-- other columns exist for listing and filtering.
CREATE TABLE IF NOT EXISTS runs (
    run_id TEXT PRIMARY KEY,
    scenario TEXT NOT NULL,
    base_scenario TEXT,
    profile TEXT,
    meta_score REAL NOT NULL,
    iterations INTEGER NOT NULL,
    alpha REAL NOT NULL,
    beta REAL NOT NULL,
    node_count INTEGER NOT NULL,
    started_at INTEGER NOT NULL,  -- unix nanoseconds
    duration_ns INTEGER NOT NULL,
    payload TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario);
CREATE INDEX IF NOT EXISTS idx_runs_base ON runs(base_scenario);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`,
	2: `
-- Final scores flattened per node and label, for cross-run queries.
CREATE TABLE IF NOT EXISTS run_scores (
    run_id TEXT NOT NULL REFERENCES runs(run_id) ON DELETE CASCADE,
    node_id TEXT NOT NULL,
    family TEXT NOT NULL,  -- 'functionality' or 'value'
    label TEXT NOT NULL,
    score REAL NOT NULL,
    PRIMARY KEY (run_id, node_id, family, label)
);
CREATE INDEX IF NOT EXISTS idx_scores_node_label ON run_scores(node_id, label);
`,
}

// InitSchema brings db up to SchemaVersion, applying each missing migration
// in its own transaction. Existing databases are integrity-checked first, and
// a database written by a newer build is refused.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaVersionTable); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := getSchemaVersion(ctx, db)
	if err != nil {
		return err
	}
	if current > SchemaVersion {
		return fmt.Errorf("database schema version %d is newer than supported version %d", current, SchemaVersion)
	}
	if current > 0 {
		if err := ValidateIntegrity(ctx, db); err != nil {
			return fmt.Errorf("database integrity check failed: %w", err)
		}
	}

	for v := current + 1; v <= SchemaVersion; v++ {
		if err := migrate(ctx, db, v); err != nil {
			return fmt.Errorf("migrating to schema v%d: %w", v, err)
		}
	}
	return nil
}

// getSchemaVersion returns the highest applied version, or 0 for a fresh database.
func getSchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&v); err != nil {
		return 0, fmt.Errorf("reading schema version: %w", err)
	}
	return int(v.Int64), nil
}

func migrate(ctx context.Context, db *sql.DB, version int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, migrations[version]); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_version (version, applied_at) VALUES (?, datetime('now'))`, version); err != nil {
		return err
	}
	return tx.Commit()
}

// ValidateIntegrity runs PRAGMA integrity_check and foreign_key_check and
// reports every problem either finds.
func ValidateIntegrity(ctx context.Context, db *sql.DB) error {
	var problems []string

	rows, err := db.QueryContext(ctx, `PRAGMA integrity_check`)
	if err != nil {
		return fmt.Errorf("integrity_check: %w", err)
	}
	for rows.Next() {
		var msg string
		if err := rows.Scan(&msg); err != nil {
			rows.Close()
			return fmt.Errorf("integrity_check: %w", err)
		}
		if msg != "ok" {
			problems = append(problems, msg)
		}
	}
	rows.Close()

	fk, err := db.QueryContext(ctx, `PRAGMA foreign_key_check`)
	if err != nil {
		return fmt.Errorf("foreign_key_check: %w", err)
	}
	defer fk.Close()
	for fk.Next() {
		var table, parent string
		var rowid, fkid sql.NullInt64
		if err := fk.Scan(&table, &rowid, &parent, &fkid); err != nil {
			return fmt.Errorf("foreign_key_check: %w", err)
		}
		problems = append(problems, fmt.Sprintf("%s row %d references missing %s", table, rowid.Int64, parent))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
