// Package export writes the flat daily and per-session tables of a report
// to disk.
package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/internal/domain/types"
	"github.com/okian/trainlog/pkg/logger"
	"github.com/okian/trainlog/pkg/metrics"
)

// Formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// Table names used for file stems.
const (
	TableDaily    = "daily"
	TableSessions = "sessions"
)

// Exporter writes report tables in every configured format.
type Exporter struct {
	dir     string
	formats []string
	log     logger.Logger
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the exporter logger.
func WithLogger(log logger.Logger) Option {
	return func(e *Exporter) {
		if log != nil {
			e.log = log
		}
	}
}

// New creates an Exporter writing into dir.
func New(dir string, formats []string, opts ...Option) (*Exporter, error) {
	e := &Exporter{dir: dir, log: logger.Nop()}
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		switch f {
		case FormatCSV, FormatParquet, FormatJSON:
			e.formats = append(e.formats, f)
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Export writes daily and session tables and returns the written paths.
// A table that fails does not stop the others; every failure is returned
// combined.
func (e *Exporter) Export(ctx context.Context, r report.Report) ([]string, error) {
	if len(e.formats) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(e.dir, 0o755); err != nil {
		return nil, err
	}

	daily := r.DailyRows()
	sessions := r.SessionRows()

	var (
		written []string
		errs    error
	)
	for _, format := range e.formats {
		if err := ctx.Err(); err != nil {
			return written, multierr.Append(errs, err)
		}
		for _, t := range []struct {
			name string
			rows int
			data func() ([]byte, error)
		}{
			{TableDaily, len(daily), func() ([]byte, error) { return encodeDaily(format, daily) }},
			{TableSessions, len(sessions), func() ([]byte, error) { return encodeSessions(format, sessions) }},
		} {
			data, err := t.data()
			if err != nil {
				metrics.RecordError("export", format)
				errs = multierr.Append(errs, fmt.Errorf("export %s %s: %w", t.name, format, err))
				continue
			}
			path := filepath.Join(e.dir, t.name+"."+format)
			if err := writeFile(path, data); err != nil {
				metrics.RecordError("export", "write")
				errs = multierr.Append(errs, fmt.Errorf("export %s: %w", path, err))
				continue
			}
			metrics.RecordExportRows(format, t.rows)
			written = append(written, path)
		}
	}
	e.log.Info(ctx, "report exported",
		logger.String("dir", e.dir),
		logger.Int("files", len(written)),
		logger.Int("days", len(daily)),
		logger.Int("sessions", len(sessions)),
	)
	if errs != nil {
		e.log.Error(ctx, "export incomplete",
			logger.Int("failures", len(multierr.Errors(errs))),
			logger.Error(errs),
		)
	}
	return written, errs
}

func encodeDaily(format string, rows []types.DailyRow) ([]byte, error) {
	switch format {
	case FormatCSV:
		return dailyCSV(rows)
	case FormatParquet:
		return toParquet(new(types.DailyRow), rows)
	case FormatJSON:
		return toJSON(rows)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

func encodeSessions(format string, rows []types.SessionRow) ([]byte, error) {
	switch format {
	case FormatCSV:
		return sessionsCSV(rows)
	case FormatParquet:
		return toParquet(new(types.SessionRow), rows)
	case FormatJSON:
		return toJSON(rows)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
}

// writeFile replaces path atomically.
func writeFile(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return multierr.Combine(err, os.Remove(tmp))
	}
	return nil
}
