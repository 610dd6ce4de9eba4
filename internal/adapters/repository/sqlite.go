package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/pkg/metrics"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLiteStore keeps run history in a SQLite file. Only the latest run's
// trend is retained; older runs keep their summary row.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(8000)&mode=rwc", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) SaveReport(ctx context.Context, r report.Report) error {
	start := time.Now()
	run := RunOf(r)

	var lastDate any
	if len(r.Trend) > 0 {
		lastDate = int64(run.Last.Date)
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM trend_points`); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `INSERT INTO runs(
			id,generated_at,rows_read,sessions,collapsed,rejected,last_date,last_tss,last_ctl,last_atl,last_tsb,last_unavailable
		) VALUES(?,?,?,?,?,?,?,?,?,?,?,?)`,
			run.ID, run.GeneratedAt.UnixNano(), run.Stats.Rows, run.Stats.Sessions, run.Stats.Collapsed, run.Stats.Rejected,
			lastDate, run.Last.TSS, run.Last.CTL, run.Last.ATL, run.Last.TSB, run.Last.UnavailableSessions)
		if err != nil {
			return err
		}

		stmt, err := tx.PrepareContext(ctx, `INSERT INTO trend_points(run_id,day,tss,ctl,atl,tsb,unavailable) VALUES(?,?,?,?,?,?,?)`)
		if err != nil {
			return err
		}
		defer func() { _ = stmt.Close() }()
		for _, p := range r.Trend {
			if _, err := stmt.ExecContext(ctx, run.ID, int64(p.Date), p.TSS, p.CTL, p.ATL, p.TSB, p.UnavailableSessions); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.RecordError("repository", "save")
		return err
	}
	metrics.RecordSnapshot(time.Since(start))
	return nil
}

const runColumns = `id,generated_at,rows_read,sessions,collapsed,rejected,last_date,last_tss,last_ctl,last_atl,last_tsb,last_unavailable`

func scanRun(sc interface{ Scan(...any) error }) (Run, error) {
	var (
		run      Run
		genNanos int64
		lastDate sql.NullInt64
	)
	err := sc.Scan(&run.ID, &genNanos, &run.Stats.Rows, &run.Stats.Sessions, &run.Stats.Collapsed, &run.Stats.Rejected,
		&lastDate, &run.Last.TSS, &run.Last.CTL, &run.Last.ATL, &run.Last.TSB, &run.Last.UnavailableSessions)
	if err != nil {
		return Run{}, err
	}
	run.GeneratedAt = time.Unix(0, genNanos).UTC()
	if lastDate.Valid {
		run.Last.Date = model.Date(lastDate.Int64)
	}
	return run, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY generated_at DESC, rowid DESC LIMIT 1`)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, ErrNotFound
	}
	return run, err
}

func (s *SQLiteStore) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY generated_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Trend(ctx context.Context, from, to model.Date) ([]model.TrendPoint, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	if _, err := s.LatestRun(ctx); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT day,tss,ctl,atl,tsb,unavailable FROM trend_points WHERE day BETWEEN ? AND ? ORDER BY day`,
		int64(from), int64(to))
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []model.TrendPoint
	for rows.Next() {
		var (
			p   model.TrendPoint
			day int64
		)
		if err := rows.Scan(&day, &p.TSS, &p.CTL, &p.ATL, &p.TSB, &p.UnavailableSessions); err != nil {
			return nil, err
		}
		p.Date = model.Date(day)
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.db.Close() }
