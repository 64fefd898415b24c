// Package persistence archives simulation runs in SQLite: run metadata, the
// per-tick series and the final agent snapshot.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/contagion/internal/engine"
	"github.com/talgya/contagion/internal/metrics"
)

// Unfinished marks a run whose final tick has not been written yet.
const Unfinished = -1

// DB wraps a SQLite connection for the run archive.
type DB struct {
	conn *sqlx.DB
}

// Run is one archived simulation run.
type Run struct {
	ID           string `db:"id" json:"id"`
	Seed         int64  `db:"seed" json:"seed"`
	Population   int    `db:"population" json:"population"`
	ConfigYAML   string `db:"config_yaml" json:"config_yaml"`
	StartedUnix  int64  `db:"started_unix" json:"started_unix"`
	FinishedTick int64  `db:"finished_tick" json:"finished_tick"`
}

// AgentRow is an archived agent as read back from the database.
type AgentRow struct {
	ID           uint64 `db:"id" json:"id"`
	Row          int    `db:"pos_row" json:"row"`
	Col          int    `db:"pos_col" json:"col"`
	Disease      string `db:"disease" json:"disease"`
	Outing       string `db:"outing" json:"outing"`
	SnapshotTick uint64 `db:"tick" json:"tick"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		seed INTEGER NOT NULL,
		population INTEGER NOT NULL,
		config_yaml TEXT NOT NULL,
		started_unix INTEGER NOT NULL,
		finished_tick INTEGER NOT NULL DEFAULT -1
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		tick INTEGER NOT NULL,
		infected INTEGER NOT NULL,
		healthy INTEGER NOT NULL,
		recovered INTEGER NOT NULL,
		outside INTEGER NOT NULL,
		PRIMARY KEY (run_id, tick)
	);

	CREATE TABLE IF NOT EXISTS agents (
		run_id TEXT NOT NULL,
		id INTEGER NOT NULL,
		tick INTEGER NOT NULL,
		pos_row INTEGER NOT NULL,
		pos_col INTEGER NOT NULL,
		disease TEXT NOT NULL,
		outing TEXT NOT NULL,
		PRIMARY KEY (run_id, id)
	);

	CREATE TABLE IF NOT EXISTS run_meta (
		run_id TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		PRIMARY KEY (run_id, key)
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_unix);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// CreateRun registers a new, unfinished run and returns it.
func (db *DB) CreateRun(seed int64, population int, configYAML string) (Run, error) {
	run := Run{
		ID:           NewRunID(),
		Seed:         seed,
		Population:   population,
		ConfigYAML:   configYAML,
		StartedUnix:  time.Now().Unix(),
		FinishedTick: Unfinished,
	}
	_, err := db.conn.NamedExec(`INSERT INTO runs
		(id, seed, population, config_yaml, started_unix, finished_tick)
		VALUES (:id, :seed, :population, :config_yaml, :started_unix, :finished_tick)`, run)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// FinishRun stamps the last processed tick on a run.
func (db *DB) FinishRun(runID string, tick uint64) error {
	res, err := db.conn.Exec("UPDATE runs SET finished_tick = ? WHERE id = ?", int64(tick), runID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %s: no such run", runID)
	}
	return nil
}

// GetRun loads one run by id.
func (db *DB) GetRun(runID string) (Run, error) {
	var run Run
	err := db.conn.Get(&run, "SELECT * FROM runs WHERE id = ?", runID)
	return run, err
}

// RecentRuns returns the most recently started runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		"SELECT * FROM runs ORDER BY started_unix DESC, rowid DESC LIMIT ?",
		limit,
	)
	return runs, err
}

// SaveSamples writes a run's time series. Existing ticks are replaced.
func (db *DB) SaveSamples(runID string, samples []metrics.Sample) error {
	if len(samples) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO samples
		(run_id, tick, infected, healthy, recovered, outside)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range samples {
		if _, err := stmt.Exec(runID, s.Tick, s.Infected, s.Healthy, s.Recovered, s.Outside); err != nil {
			return fmt.Errorf("insert sample %d: %w", s.Tick, err)
		}
	}

	return tx.Commit()
}

// LoadSamples reads a run's time series in tick order.
func (db *DB) LoadSamples(runID string) ([]metrics.Sample, error) {
	var samples []metrics.Sample
	err := db.conn.Select(&samples,
		"SELECT tick, infected, healthy, recovered, outside FROM samples WHERE run_id = ? ORDER BY tick",
		runID,
	)
	return samples, err
}

// SaveAgents writes the agent snapshot of a run (full replace).
func (db *DB) SaveAgents(runID string, snap engine.Snapshot) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM agents WHERE run_id = ?", runID); err != nil {
		return err
	}

	stmt, err := tx.Preparex(`INSERT INTO agents
		(run_id, id, tick, pos_row, pos_col, disease, outing)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, a := range snap.Agents {
		_, err := stmt.Exec(runID, uint64(a.ID), snap.Tick,
			a.Position.Row, a.Position.Col,
			a.Disease.String(), a.Outing.String(),
		)
		if err != nil {
			return fmt.Errorf("insert agent %d: %w", a.ID, err)
		}
	}

	return tx.Commit()
}

// LoadAgents reads the archived agent snapshot of a run in id order.
func (db *DB) LoadAgents(runID string) ([]AgentRow, error) {
	var rows []AgentRow
	err := db.conn.Select(&rows,
		"SELECT id, tick, pos_row, pos_col, disease, outing FROM agents WHERE run_id = ? ORDER BY id",
		runID,
	)
	return rows, err
}

// SaveMeta stores a key-value pair against a run.
func (db *DB) SaveMeta(runID, key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO run_meta (run_id, key, value) VALUES (?, ?, ?)",
		runID, key, value,
	)
	return err
}

// GetMeta retrieves a run metadata value.
func (db *DB) GetMeta(runID, key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM run_meta WHERE run_id = ? AND key = ?", runID, key)
	return value, err
}

// SaveRun performs a full save of a finished or interrupted run.
func (db *DB) SaveRun(runID string, sim *engine.Simulation) error {
	slog.Info("saving run", "run", runID, "tick", sim.CurrentTick(), "samples", sim.Collector.Len())

	if err := db.SaveSamples(runID, sim.Collector.Samples()); err != nil {
		return fmt.Errorf("save samples: %w", err)
	}
	if err := db.SaveAgents(runID, sim.Snapshot()); err != nil {
		return fmt.Errorf("save agents: %w", err)
	}
	stats, err := json.Marshal(sim.Stats)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	if err := db.SaveMeta(runID, "stats", string(stats)); err != nil {
		return fmt.Errorf("save meta: %w", err)
	}
	if err := db.FinishRun(runID, sim.CurrentTick()); err != nil {
		return err
	}

	slog.Info("run saved", "run", runID)
	return nil
}
