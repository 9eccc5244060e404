// Package results persists solve runs and their trajectories to SQLite,
// keyed by a deterministic content hash of the run parameters so repeated
// runs with identical inputs can be found and compared.
package results

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/danielpatrickdp/qanneal/internal/ode"
	"github.com/danielpatrickdp/qanneal/internal/solver"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id       TEXT PRIMARY KEY,
	param_hash   TEXT NOT NULL,
	kind         TEXT NOT NULL,
	dim          INTEGER NOT NULL,
	params_json  TEXT NOT NULL,
	created_at   TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_hash ON runs(param_hash);

CREATE TABLE IF NOT EXISTS trajectories (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	sample_idx   INTEGER NOT NULL,
	time         REAL NOT NULL,
	state        BLOB NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);

CREATE INDEX IF NOT EXISTS idx_traj_run ON trajectories(run_id, sample_idx);

CREATE TABLE IF NOT EXISTS solve_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id       TEXT NOT NULL,
	steps        INTEGER NOT NULL,
	rejected     INTEGER NOT NULL,
	evals        INTEGER NOT NULL,
	drift        REAL,
	message      TEXT,
	created_at   TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(run_id)
);
`

// #endregion schema

// #region records

// Run is one persisted solve.
type Run struct {
	ID         string
	ParamHash  string
	Kind       string // "pure" or "mixed"
	Dim        int
	ParamsJSON string
	CreatedAt  time.Time
}

// #endregion records

// #region store

// Store manages persisted runs in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region save-run

// SaveRun persists a run row and all trajectory samples in one
// transaction. params may be any JSON-marshalable value; its content hash
// becomes the lookup key.
func (s *Store) SaveRun(kind string, params any, traj *solver.Trajectory) (Run, error) {
	hash, paramsJSON, err := ParamHash(params)
	if err != nil {
		return Run{}, err
	}

	run := Run{
		ID:         uuid.New().String(),
		ParamHash:  hash,
		Kind:       kind,
		Dim:        traj.Dim,
		ParamsJSON: paramsJSON,
		CreatedAt:  time.Now().UTC(),
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Run{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (run_id, param_hash, kind, dim, params_json, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.ParamHash, run.Kind, run.Dim, run.ParamsJSON,
		run.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}

	for k := range traj.T {
		_, err = tx.Exec(
			`INSERT INTO trajectories (run_id, sample_idx, time, state) VALUES (?, ?, ?, ?)`,
			run.ID, k, traj.T[k], encodeState(traj.Y[k]),
		)
		if err != nil {
			return Run{}, fmt.Errorf("insert sample %d: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Run{}, fmt.Errorf("commit: %w", err)
	}
	return run, nil
}

// #endregion save-run

// #region get-run

// GetRun loads a run row and reassembles its trajectory.
func (s *Store) GetRun(id string) (Run, *solver.Trajectory, error) {
	var run Run
	var createdStr string
	err := s.db.QueryRow(
		`SELECT run_id, param_hash, kind, dim, params_json, created_at FROM runs WHERE run_id = ?`, id,
	).Scan(&run.ID, &run.ParamHash, &run.Kind, &run.Dim, &run.ParamsJSON, &createdStr)
	if err != nil {
		return Run{}, nil, fmt.Errorf("get run %s: %w", id, err)
	}
	run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)

	rows, err := s.db.Query(
		`SELECT time, state FROM trajectories WHERE run_id = ? ORDER BY sample_idx`, id,
	)
	if err != nil {
		return Run{}, nil, fmt.Errorf("get trajectory: %w", err)
	}
	defer rows.Close()

	traj := &solver.Trajectory{Dim: run.Dim}
	for rows.Next() {
		var t float64
		var blob []byte
		if err := rows.Scan(&t, &blob); err != nil {
			return Run{}, nil, fmt.Errorf("scan sample: %w", err)
		}
		traj.T = append(traj.T, t)
		traj.Y = append(traj.Y, decodeState(blob))
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("read trajectory: %w", err)
	}
	return run, traj, nil
}

// FindByHash returns all runs with a given parameter hash, newest first.
func (s *Store) FindByHash(hash string) ([]Run, error) {
	return s.queryRuns(
		`SELECT run_id, param_hash, kind, dim, params_json, created_at
		 FROM runs WHERE param_hash = ? ORDER BY created_at DESC`, hash,
	)
}

// ListRuns returns the most recent runs.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	return s.queryRuns(
		`SELECT run_id, param_hash, kind, dim, params_json, created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit,
	)
}

func (s *Store) queryRuns(query string, args ...any) ([]Run, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var createdStr string
		if err := rows.Scan(&run.ID, &run.ParamHash, &run.Kind, &run.Dim, &run.ParamsJSON, &createdStr); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// #endregion get-run

// #region solve-log

// LogSolve records integrator statistics and a drift diagnostic for a run.
func (s *Store) LogSolve(runID string, stats ode.Statistics, drift float64, message string) error {
	_, err := s.db.Exec(
		`INSERT INTO solve_log (run_id, steps, rejected, evals, drift, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, stats.Steps, stats.Rejected, stats.Evals, drift, message,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert solve log: %w", err)
	}
	return nil
}

// SolveLogEntry is one row of integrator diagnostics.
type SolveLogEntry struct {
	RunID     string
	Stats     ode.Statistics
	Drift     float64
	Message   string
	CreatedAt time.Time
}

// SolveLogs returns the diagnostics recorded for a run, oldest first.
func (s *Store) SolveLogs(runID string) ([]SolveLogEntry, error) {
	rows, err := s.db.Query(
		`SELECT run_id, steps, rejected, evals, drift, message, created_at
		 FROM solve_log WHERE run_id = ? ORDER BY id`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("list solve logs: %w", err)
	}
	defer rows.Close()

	var entries []SolveLogEntry
	for rows.Next() {
		var e SolveLogEntry
		var drift sql.NullFloat64
		var message sql.NullString
		var createdStr string
		if err := rows.Scan(&e.RunID, &e.Stats.Steps, &e.Stats.Rejected, &e.Stats.Evals, &drift, &message, &createdStr); err != nil {
			return nil, fmt.Errorf("scan solve log: %w", err)
		}
		e.Drift = drift.Float64
		e.Message = message.String
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// #endregion solve-log
