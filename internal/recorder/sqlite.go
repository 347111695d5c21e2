package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"PortfolioTracker/internal/calculator"
	"PortfolioTracker/internal/model"
)

// SQLiteRecorder journals analysis runs to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log zerolog.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log.With().Str("component", "recorder").Logger()}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	r.log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id       TEXT PRIMARY KEY,
			timestamp    INTEGER NOT NULL,
			holdings     INTEGER NOT NULL,
			total_value  TEXT NOT NULL,
			volatility   REAL,
			observations INTEGER NOT NULL,
			overvalued   INTEGER NOT NULL,
			undervalued  INTEGER NOT NULL,
			unknown      INTEGER NOT NULL,
			skipped      INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON analysis_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS valuation_rows (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL REFERENCES analysis_runs(run_id),
			position        INTEGER NOT NULL,
			ticker          TEXT NOT NULL,
			pe_ratio        REAL,
			pb_ratio        REAL,
			industry_avg_pe REAL,
			industry_avg_pb REAL,
			status          TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rows_run ON valuation_rows(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// nullable maps an unavailable result to SQL NULL.
func nullable(v model.Result[float64]) sql.NullFloat64 {
	f, ok := v.Get()
	return sql.NullFloat64{Float64: f, Valid: ok}
}

// RecordRun writes the run summary and its valuation rows in one transaction.
func (r *SQLiteRecorder) RecordRun(snap *model.AnalysisSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO analysis_runs
		(run_id, timestamp, holdings, total_value, volatility, observations,
		 overvalued, undervalued, unknown, skipped)
		VALUES (?,?,?,?,?,?,?,?,?,?)`,
		snap.RunID.String(), snap.GeneratedAt.Unix(), len(snap.PositionValues),
		calculator.FormatMoney(snap.TotalValue), nullable(snap.Volatility), snap.Observations,
		snap.CountStatus(model.Overvalued), snap.CountStatus(model.Undervalued),
		snap.CountStatus(model.Unknown), len(snap.Skipped),
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, v := range snap.Valuations {
		if _, err := tx.Exec(`INSERT INTO valuation_rows
			(run_id, position, ticker, pe_ratio, pb_ratio, industry_avg_pe, industry_avg_pb, status)
			VALUES (?,?,?,?,?,?,?,?)`,
			snap.RunID.String(), i, v.Ticker,
			nullable(v.PERatio), nullable(v.PBRatio),
			nullable(v.IndustryAvgPE), nullable(v.IndustryAvgPB), string(v.Status),
		); err != nil {
			return fmt.Errorf("insert valuation row %s: %w", v.Ticker, err)
		}
	}
	return tx.Commit()
}

// RecentRuns returns up to limit runs, newest first.
func (r *SQLiteRecorder) RecentRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT run_id, timestamp, holdings, total_value, volatility,
		observations, overvalued, undervalued, unknown, skipped
		FROM analysis_runs ORDER BY timestamp DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			s   RunSummary
			ts  int64
			vol sql.NullFloat64
		)
		if err := rows.Scan(&s.RunID, &ts, &s.Holdings, &s.TotalValue, &vol,
			&s.Observations, &s.Overvalued, &s.Undervalued, &s.Unknown, &s.Skipped); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		s.GeneratedAt = time.Unix(ts, 0)
		if vol.Valid {
			s.Volatility = model.Ok(vol.Float64)
		} else {
			s.Volatility = model.Unavailable[float64]("not recorded")
		}
		runs = append(runs, s)
	}
	return runs, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}
