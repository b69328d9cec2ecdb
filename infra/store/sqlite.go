// Package store persists analysis runs, forecasts and density model results
// in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kilianp07/popcast/core/density"
	"github.com/kilianp07/popcast/core/forecast"
	"github.com/kilianp07/popcast/core/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started INTEGER,
    command TEXT,
    source TEXT
);
CREATE TABLE IF NOT EXISTS forecasts (
    run_id TEXT,
    country TEXT,
    indicator TEXT,
    requested TEXT,
    used TEXT,
    year INTEGER,
    value REAL,
    PRIMARY KEY(run_id, country, indicator, requested, year)
);
CREATE TABLE IF NOT EXISTS model_results (
    run_id TEXT,
    requested TEXT,
    used TEXT,
    mae REAL,
    rmse REAL,
    r2 REAL,
    record TEXT
);`

// Run is one stored invocation.
type Run struct {
	ID      string
	Started time.Time
	Command string
	Source  string
}

// ForecastRow is one stored forecast value.
type ForecastRow struct {
	Country   string
	Indicator string
	Requested string
	Used      string
	Point     model.Point
}

// SQLiteStore persists results in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// BeginRun records a new run and returns its generated ID.
func (s *SQLiteStore) BeginRun(ctx context.Context, command, source string) (Run, error) {
	r := Run{ID: uuid.NewString(), Started: time.Now().UTC().Truncate(time.Second), Command: command, Source: source}
	_, err := s.db.ExecContext(ctx, `INSERT INTO runs (id, started, command, source) VALUES (?, ?, ?, ?)`,
		r.ID, r.Started.Unix(), r.Command, r.Source)
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return r, nil
}

// SaveForecast stores every predicted point of res in one transaction.
// Re-saving the same forecast replaces its values.
func (s *SQLiteStore) SaveForecast(ctx context.Context, runID string, res forecast.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecasts (run_id, country, indicator, requested, used, year, value)
        VALUES (?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(run_id, country, indicator, requested, year) DO UPDATE SET
            used = excluded.used,
            value = excluded.value`)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()
	for _, p := range res.Predicted {
		if _, err := stmt.ExecContext(ctx, runID, res.Country, string(res.Indicator), string(res.Requested), string(res.MethodUsed), p.Year, p.Value); err != nil {
			return fmt.Errorf("insert forecast %s %d: %w", res.Country, p.Year, err)
		}
	}
	return tx.Commit()
}

// SaveModel stores a density model result with its full JSON record.
func (s *SQLiteStore) SaveModel(ctx context.Context, runID string, res *density.ModelResult) error {
	b, err := json.Marshal(res)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO model_results (run_id, requested, used, mae, rmse, r2, record)
        VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, string(res.Requested), string(res.MethodUsed), res.Diagnostics.MAE, res.Diagnostics.RMSE, res.Diagnostics.R2, string(b))
	return err
}

// Runs returns the stored runs, newest first.
func (s *SQLiteStore) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, started, command, source FROM runs ORDER BY started DESC, rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Run
	for rows.Next() {
		var r Run
		var ts int64
		if err := rows.Scan(&r.ID, &ts, &r.Command, &r.Source); err != nil {
			return nil, err
		}
		r.Started = time.Unix(ts, 0).UTC()
		res = append(res, r)
	}
	return res, rows.Err()
}

// Forecasts returns the values stored for runID. An empty country returns
// every country.
func (s *SQLiteStore) Forecasts(ctx context.Context, runID, country string) ([]ForecastRow, error) {
	query := `SELECT country, indicator, requested, used, year, value FROM forecasts WHERE run_id = ?`
	args := []any{runID}
	if country != "" {
		query += ` AND country = ?`
		args = append(args, country)
	}
	query += ` ORDER BY country, requested, year`
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []ForecastRow
	for rows.Next() {
		var r ForecastRow
		if err := rows.Scan(&r.Country, &r.Indicator, &r.Requested, &r.Used, &r.Point.Year, &r.Point.Value); err != nil {
			return nil, err
		}
		res = append(res, r)
	}
	return res, rows.Err()
}

// Models returns the density model results stored for runID.
func (s *SQLiteStore) Models(ctx context.Context, runID string) ([]density.ModelResult, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT record FROM model_results WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []density.ModelResult
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var m density.ModelResult
		if err := json.Unmarshal([]byte(data), &m); err != nil {
			return nil, fmt.Errorf("unmarshal model result: %w", err)
		}
		res = append(res, m)
	}
	return res, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
