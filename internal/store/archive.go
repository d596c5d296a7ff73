package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nvandessel/rumornet/internal/config"
	"github.com/nvandessel/rumornet/internal/metrics"
)

// Archive is the SQLite-backed results store. It records run metadata,
// sampled metric rows, and the latest snapshot per run.
type Archive struct {
	mu     sync.RWMutex
	db     *sql.DB
	dbPath string
}

// RunInfo is the stored metadata of one run.
type RunInfo struct {
	ID          string    `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	NetworkType string    `json:"network_type"`
	RumorIsTrue bool      `json:"rumor_is_true"`
	Seed        uint64    `json:"seed"`
	Ticks       int       `json:"ticks"`
}

// Open creates or opens the archive database at dir/rumornet.db.
func Open(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}

	dbPath := filepath.Join(dir, "rumornet.db")
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening archive database: %w", err)
	}

	// SQLite works best with a single writer.
	db.SetMaxOpenConns(1)

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing archive schema: %w", err)
	}

	return &Archive{db: db, dbPath: dbPath}, nil
}

// Path returns the location of the database file.
func (a *Archive) Path() string { return a.dbPath }

// Close closes the underlying database.
func (a *Archive) Close() error { return a.db.Close() }

// RecordRun inserts or updates a run's metadata. Ticks is updated on
// conflict so a resumed run keeps a single row.
func (a *Archive) RecordRun(ctx context.Context, id string, cfg *config.Config, ticks int) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, network_type, rumor_is_true, seed, ticks, config)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET ticks = excluded.ticks`,
		id,
		time.Now().UTC().Format(time.RFC3339),
		string(cfg.NetworkType),
		boolToInt(cfg.RumorIsTrue),
		int64(cfg.Seed),
		ticks,
		string(cfgJSON))
	if err != nil {
		return fmt.Errorf("recording run %s: %w", id, err)
	}
	return nil
}

// AppendRecords stores metric rows in one transaction.
func (a *Archive) AppendRecords(ctx context.Context, rows []metrics.Row) error {
	if len(rows) == 0 {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO records (
			run_id, repetition, tick,
			proportion_informed, mean_belief, mean_belief_informed,
			believers, belief_variance, trust_variance,
			verified, verification_tick
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.RunID, r.Repetition, r.Tick,
			r.ProportionInformed, r.MeanBelief, r.MeanBeliefInformed,
			r.Believers, r.BeliefVariance, r.TrustVariance,
			boolToInt(r.Verified), r.VerificationTick); err != nil {
			return fmt.Errorf("inserting record for run %s tick %d: %w", r.RunID, r.Tick, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing records: %w", err)
	}
	return nil
}

// Records returns every stored row for a run, ordered by tick. An empty
// runID returns all rows ordered by run then tick.
func (a *Archive) Records(ctx context.Context, runID string) ([]metrics.Row, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	query := `
		SELECT r.run_id, r.repetition, r.tick, u.network_type, u.rumor_is_true, u.seed,
		       r.proportion_informed, r.mean_belief, r.mean_belief_informed,
		       r.believers, r.belief_variance, r.trust_variance,
		       r.verified, r.verification_tick
		FROM records r JOIN runs u ON u.id = r.run_id`
	args := []any{}
	if runID != "" {
		query += ` WHERE r.run_id = ?`
		args = append(args, runID)
	}
	query += ` ORDER BY r.run_id, r.tick`

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var out []metrics.Row
	for rows.Next() {
		var r metrics.Row
		var isTrue, verified int
		var seed int64
		if err := rows.Scan(&r.RunID, &r.Repetition, &r.Tick, &r.NetworkType, &isTrue, &seed,
			&r.ProportionInformed, &r.MeanBelief, &r.MeanBeliefInformed,
			&r.Believers, &r.BeliefVariance, &r.TrustVariance,
			&verified, &r.VerificationTick); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		r.RumorIsTrue = isTrue != 0
		r.Verified = verified != 0
		r.Seed = uint64(seed)
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListRuns returns metadata for every stored run, newest first.
func (a *Archive) ListRuns(ctx context.Context) ([]RunInfo, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	rows, err := a.db.QueryContext(ctx, `
		SELECT id, created_at, network_type, rumor_is_true, seed, ticks
		FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunInfo
	for rows.Next() {
		var info RunInfo
		var created string
		var isTrue int
		var seed int64
		if err := rows.Scan(&info.ID, &created, &info.NetworkType, &isTrue, &seed, &info.Ticks); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		info.CreatedAt, _ = time.Parse(time.RFC3339, created)
		info.RumorIsTrue = isTrue != 0
		info.Seed = uint64(seed)
		out = append(out, info)
	}
	return out, rows.Err()
}

// SaveSnapshot stores the latest snapshot for a run, replacing any earlier
// one. The run must have been recorded first.
func (a *Archive) SaveSnapshot(ctx context.Context, runID string, tick int, data []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	_, err := a.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO snapshots (run_id, tick, saved_at, data)
		VALUES (?, ?, ?, ?)`,
		runID, tick, time.Now().UTC().Format(time.RFC3339), data)
	if err != nil {
		return fmt.Errorf("saving snapshot for run %s: %w", runID, err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot for a run, or an error if none
// exists.
func (a *Archive) LoadSnapshot(ctx context.Context, runID string) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var data []byte
	err := a.db.QueryRowContext(ctx,
		`SELECT data FROM snapshots WHERE run_id = ?`, runID).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no snapshot for run %s", runID)
	}
	if err != nil {
		return nil, fmt.Errorf("loading snapshot for run %s: %w", runID, err)
	}
	return data, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
