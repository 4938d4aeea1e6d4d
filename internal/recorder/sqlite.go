package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists the run log to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS fetch_runs (
			id           TEXT PRIMARY KEY,
			started_at   INTEGER NOT NULL,
			finished_at  INTEGER NOT NULL,
			provider     TEXT,
			pair         TEXT,
			timeframe    TEXT,
			since_ms     INTEGER,
			until_ms     INTEGER,
			candles      INTEGER,
			requests     INTEGER,
			first_date   TEXT,
			last_date    TEXT,
			output_path  TEXT,
			status       TEXT,
			error        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON fetch_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(rec *RunRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO fetch_runs
		(id, started_at, finished_at, provider, pair, timeframe, since_ms, until_ms,
		 candles, requests, first_date, last_date, output_path, status, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
		rec.Provider, rec.Pair, rec.Timeframe, rec.SinceMs, rec.UntilMs,
		rec.Candles, rec.Requests, rec.FirstDate, rec.LastDate,
		rec.OutputPath, rec.Status, rec.Error,
	)
	return err
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(limit int) ([]RunRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT id, started_at, finished_at, provider, pair, timeframe,
		since_ms, until_ms, candles, requests, first_date, last_date, output_path, status, error
		FROM fetch_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished int64
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Provider, &rec.Pair, &rec.Timeframe,
			&rec.SinceMs, &rec.UntilMs, &rec.Candles, &rec.Requests, &rec.FirstDate, &rec.LastDate,
			&rec.OutputPath, &rec.Status, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		rec.StartedAt = time.UnixMilli(started)
		rec.FinishedAt = time.UnixMilli(finished)
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
