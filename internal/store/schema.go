// Package store persists run results and snapshots to SQLite. It backs the
// experiment sweep archive and the snapshot/resume facility.
package store

import (
	"context"
	"database/sql"
	"fmt"
)

// SchemaVersion is the current schema version.
const SchemaVersion = 1

// schemaV1 is the initial schema for the results archive.
const schemaV1 = `
-- One row per simulation run
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    network_type TEXT NOT NULL,
    rumor_is_true INTEGER NOT NULL,
    seed INTEGER NOT NULL,
    ticks INTEGER NOT NULL,
    config TEXT NOT NULL  -- full configuration, JSON
);

-- Sampled metric records: one per run (final tick) or one per run-tick,
-- depending on the sweep's sampling mode
CREATE TABLE IF NOT EXISTS records (
    run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    repetition INTEGER NOT NULL,
    tick INTEGER NOT NULL,
    proportion_informed REAL NOT NULL,
    mean_belief REAL NOT NULL,
    mean_belief_informed REAL NOT NULL,
    believers INTEGER NOT NULL,
    belief_variance REAL NOT NULL,
    trust_variance REAL NOT NULL,
    verified INTEGER NOT NULL,
    verification_tick INTEGER NOT NULL,
    PRIMARY KEY (run_id, tick)
);
CREATE INDEX IF NOT EXISTS idx_records_run ON records(run_id);

-- Latest snapshot per run, for resuming
CREATE TABLE IF NOT EXISTS snapshots (
    run_id TEXT PRIMARY KEY REFERENCES runs(id) ON DELETE CASCADE,
    tick INTEGER NOT NULL,
    saved_at TEXT NOT NULL,
    data BLOB NOT NULL
);

-- Schema version tracking
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY
);
`

// InitSchema creates the archive tables if they do not exist and records
// the schema version.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schemaV1); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, SchemaVersion); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}
