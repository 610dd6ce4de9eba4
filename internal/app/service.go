// Package service runs the training-load pipeline and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/trainlog/internal/adapters/export"
	"github.com/okian/trainlog/internal/adapters/http/api"
	"github.com/okian/trainlog/internal/adapters/repository"
	"github.com/okian/trainlog/internal/adapters/source"
	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/normalize"
	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/internal/domain/scoring"
	"github.com/okian/trainlog/internal/domain/trend"
	"github.com/okian/trainlog/pkg/logger"
	"github.com/okian/trainlog/pkg/metrics"
)

var _ api.Dependencies = (*Service)(nil)

// Service wires the pipeline stages together and keeps the latest report.
type Service struct {
	mu    sync.RWMutex
	runMu sync.Mutex

	// Pipeline stages
	loader     *source.Loader
	normalizer *normalize.Normalizer
	engine     *load.Engine
	trend      *trend.Accumulator
	scorer     *scoring.RecoveryScorer

	// Outputs
	store    repository.Store
	exporter *export.Exporter

	// Configuration
	sources       []string
	extendToToday bool
	clock         func() time.Time

	// State
	latest     *report.Report
	runsOK     int64
	runsFailed int64
	lastErr    error

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets the logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithLoader sets the file loader used by RunFiles and Reload.
func WithLoader(l *source.Loader) Option {
	return func(s *Service) {
		if l != nil {
			s.loader = l
		}
	}
}

// WithNormalizer sets the session normalizer.
func WithNormalizer(n *normalize.Normalizer) Option {
	return func(s *Service) {
		if n != nil {
			s.normalizer = n
		}
	}
}

// WithEngine sets the metrics engine.
func WithEngine(e *load.Engine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithTrend sets the CTL/ATL accumulator.
func WithTrend(a *trend.Accumulator) Option {
	return func(s *Service) {
		if a != nil {
			s.trend = a
		}
	}
}

// WithScorer sets the recovery scorer.
func WithScorer(r *scoring.RecoveryScorer) Option {
	return func(s *Service) {
		if r != nil {
			s.scorer = r
		}
	}
}

// WithStore sets where runs are recorded.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithExporter enables flat-file export after each run.
func WithExporter(e *export.Exporter) Option {
	return func(s *Service) {
		s.exporter = e
	}
}

// WithSources sets the files and directories read by Reload.
func WithSources(paths ...string) Option {
	return func(s *Service) {
		s.sources = append([]string(nil), paths...)
	}
}

// WithExtendToToday continues the trend with rest days up to the clock's date.
func WithExtendToToday(on bool) Option {
	return func(s *Service) {
		s.extendToToday = on
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.clock = now
		}
	}
}

// New creates a service. Unset stages use their defaults; without
// WithLogger the service logs nothing.
func New(opts ...Option) *Service {
	s := &Service{
		loader:     source.New(),
		normalizer: normalize.New(),
		engine:     load.Default(),
		trend:      trend.New(),
		scorer:     scoring.NewRecoveryScorer(),
		store:      repository.NewMemoryStore(),
		clock:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Nop()
	}
	return s
}

// Run computes a report from already loaded sources, records it and makes
// it the latest.
func (s *Service) Run(ctx context.Context, sources []model.Source) (report.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx, sources)
}

// RunFiles loads paths and runs the pipeline over them.
func (s *Service) RunFiles(ctx context.Context, paths []string) (report.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.runFiles(ctx, paths)
}

// Reload re-reads the configured sources. It fails with api.ErrBusy when a
// run is already in progress.
func (s *Service) Reload(ctx context.Context) (repository.Run, error) {
	if !s.runMu.TryLock() {
		return repository.Run{}, api.ErrBusy
	}
	defer s.runMu.Unlock()
	r, err := s.runFiles(ctx, s.sources)
	if err != nil {
		return repository.Run{}, err
	}
	return repository.RunOf(r), nil
}

func (s *Service) runFiles(ctx context.Context, paths []string) (report.Report, error) {
	start := time.Now()
	srcs, err := s.loader.Load(ctx, paths)
	if err != nil {
		s.fail(ctx, start, "load", err)
		return report.Report{}, err
	}
	return s.run(ctx, srcs)
}

func (s *Service) run(ctx context.Context, sources []model.Source) (report.Report, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		s.fail(ctx, start, "context", err)
		return report.Report{}, err
	}

	norm := s.normalizer.Normalize(sources)
	for _, rej := range norm.Rejected {
		metrics.RecordRowRejected(rej.Field)
		s.logger.Warn(ctx, "row skipped",
			logger.String("source", rej.Source),
			logger.Int("row", rej.Row),
			logger.String("field", rej.Field),
			logger.String("reason", rej.Reason),
		)
	}
	metrics.RecordNormalization(norm.Rows, len(norm.Sessions), norm.Collapsed)

	sets := s.engine.ComputeAll(norm.Sessions)
	tss := make([]model.Value, len(sets))
	for i, m := range sets {
		tss[i] = m.TSS
		recordMetricSet(m)
	}

	loads := trend.DailyLoads(norm.Sessions, tss)
	var points []model.TrendPoint
	if s.extendToToday {
		points = s.trend.FoldThrough(loads, model.DateOf(s.clock().UTC()))
	} else {
		points = s.trend.Fold(loads)
	}
	recovery := s.scorer.ScoreAll(report.RecoveryInputs(points, norm.Sessions))

	r := report.Build(report.Input{
		RunID:       uuid.NewString(),
		GeneratedAt: s.clock().UTC(),
		Sessions:    norm.Sessions,
		Metrics:     sets,
		Trend:       points,
		Recovery:    recovery,
		Rejected:    norm.Rejected,
		Rows:        norm.Rows,
		Collapsed:   norm.Collapsed,
	})

	if err := s.store.SaveReport(ctx, r); err != nil {
		s.fail(ctx, start, "store", err)
		return report.Report{}, fmt.Errorf("save run %s: %w", r.RunID, err)
	}
	if s.exporter != nil {
		if _, err := s.exporter.Export(ctx, r); err != nil {
			s.fail(ctx, start, "export", err)
			return report.Report{}, err
		}
	}

	s.mu.Lock()
	s.latest = &r
	s.runsOK++
	s.lastErr = nil
	s.mu.Unlock()

	if n := len(points); n > 0 {
		last := points[n-1]
		score := 0.0
		if m := len(recovery); m > 0 {
			score = recovery[m-1].Score
		}
		metrics.UpdateFitness(last.CTL, last.ATL, last.TSB, score)
	}
	metrics.RecordRun(metrics.StatusOK, time.Since(start))

	s.logger.Info(ctx, "run complete",
		logger.String("run_id", r.RunID),
		logger.Int("rows", norm.Rows),
		logger.Int("sessions", len(norm.Sessions)),
		logger.Int("collapsed", norm.Collapsed),
		logger.Int("rejected", len(norm.Rejected)),
		logger.Int("days", len(points)),
		logger.Duration("took", time.Since(start)),
	)
	return r, nil
}

// recordMetricSet counts how each metric of one session was resolved.
func recordMetricSet(m load.MetricSet) {
	for name, v := range map[string]model.Value{
		"np":           m.NP,
		"if":           m.IF,
		"tss":          m.TSS,
		"kj":           m.KJ,
		"watts_per_kg": m.WattsPerKG,
	} {
		if !v.Ok() {
			metrics.RecordMetricUnavailable(name)
		}
	}
	if m.TSS.Ok() {
		metrics.RecordTSSMethod(m.TSS.Method)
	}
	if !m.Zones.Ok() {
		metrics.RecordMetricUnavailable("zones")
	}
}

func (s *Service) fail(ctx context.Context, start time.Time, stage string, err error) {
	s.mu.Lock()
	s.runsFailed++
	s.lastErr = err
	s.mu.Unlock()

	metrics.RecordRun(metrics.StatusError, time.Since(start))
	metrics.RecordError("service", stage)
	s.logger.Error(ctx, "run failed", logger.String("stage", stage), logger.Error(err))
}

// Latest returns the most recent report computed by this process.
func (s *Service) Latest(_ context.Context) (report.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return report.Report{}, repository.ErrNotFound
	}
	return *s.latest, nil
}

// Trend returns stored trend points within [from, to].
func (s *Service) Trend(ctx context.Context, from, to model.Date) ([]model.TrendPoint, error) {
	return s.store.Trend(ctx, from, to)
}

// Runs lists stored runs, newest first.
func (s *Service) Runs(ctx context.Context, limit int) ([]repository.Run, error) {
	return s.store.Runs(ctx, limit)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"runs_ok":     s.runsOK,
		"runs_failed": s.runsFailed,
		"sources":     len(s.sources),
	}
	if s.lastErr != nil {
		stats["last_error"] = s.lastErr.Error()
	}
	if s.latest != nil {
		stats["run_id"] = s.latest.RunID
		stats["generated_at"] = s.latest.GeneratedAt
		stats["normalization"] = s.latest.Stats
		stats["days"] = len(s.latest.Trend)
		stats["kpis"] = s.latest.KPIs
	}
	return stats
}

// Close releases the store.
func (s *Service) Close() error {
	return s.store.Close()
}
