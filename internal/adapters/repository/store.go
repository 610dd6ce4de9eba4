// Package repository keeps the results of pipeline runs so the read-only
// feed can answer without recomputing.
package repository

import (
	"context"
	"math"
	"time"

	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
)

// Open range bounds for Trend.
const (
	MinDate = model.Date(math.MinInt32)
	MaxDate = model.Date(math.MaxInt32)
)

// Run summarizes one stored pipeline run.
type Run struct {
	ID          string       `json:"run_id"`
	GeneratedAt time.Time    `json:"generated_at"`
	Stats       report.Stats `json:"stats"`
	// Last is the final trend point of the run, zero when the run had no days.
	Last model.TrendPoint `json:"last"`
}

// RunOf extracts the stored summary of a report.
func RunOf(r report.Report) Run {
	run := Run{ID: r.RunID, GeneratedAt: r.GeneratedAt, Stats: r.Stats}
	if n := len(r.Trend); n > 0 {
		run.Last = r.Trend[n-1]
	}
	return run
}

// Store provides read/write access to run history.
type Store interface {
	// SaveReport records a finished run. Its trend replaces the series
	// served by Trend.
	SaveReport(ctx context.Context, r report.Report) error

	// LatestRun returns the most recent run.
	// Returns ErrNotFound before the first run.
	LatestRun(ctx context.Context) (Run, error)

	// Runs returns up to limit runs, newest first.
	Runs(ctx context.Context, limit int) ([]Run, error)

	// Trend returns the latest run's points with from <= date <= to.
	Trend(ctx context.Context, from, to model.Date) ([]model.TrendPoint, error)

	Close() error
}

func checkRange(from, to model.Date) error {
	if to.Before(from) {
		return ErrInvalidRange
	}
	return nil
}
