package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/okian/trainlog/internal/adapters/export"
	"github.com/okian/trainlog/internal/adapters/http/api"
	"github.com/okian/trainlog/internal/adapters/http/swagger"
	"github.com/okian/trainlog/internal/adapters/repository"
	"github.com/okian/trainlog/internal/adapters/source"
	app "github.com/okian/trainlog/internal/app"
	"github.com/okian/trainlog/internal/config"
	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/normalize"
	"github.com/okian/trainlog/internal/domain/scoring"
	"github.com/okian/trainlog/internal/domain/trend"
	"github.com/okian/trainlog/internal/domain/types"
	"github.com/okian/trainlog/pkg/logger"
	"github.com/okian/trainlog/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
	maxRunsPerRequest = 100
)

func main() {
	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		logger.Get().Error(ctx, "trainlog failed", logger.Error(err))
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	if err := logger.Init(
		logger.WithFormat(cfg.LogFormat),
		logger.WithFile(cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogToStdout),
	); err != nil {
		return err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := buildService(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			log.Error(ctx, "closing store", logger.Error(err))
		}
	}()

	if len(cfg.Sources) > 0 {
		if _, err := svc.RunFiles(ctx, cfg.Sources); err != nil && !cfg.Serve {
			return err
		}
	} else {
		log.Warn(ctx, "no sources configured; set TRAINLOG_SOURCES or sources in the config file")
	}

	if !cfg.Serve {
		return nil
	}
	return serve(ctx, cfg, svc, log)
}

// buildService turns configuration into a wired pipeline. Every
// configuration error surfaces here, before any data is read.
func buildService(ctx context.Context, cfg *config.Config, log logger.Logger) (*app.Service, error) {
	fallbacks, err := load.ParseFallbacks(cfg.TSSFallbacks)
	if err != nil {
		return nil, err
	}
	engine, err := load.New(
		load.WithFTP(cfg.Athlete.FTPWatts),
		load.WithThresholdHR(cfg.Athlete.ThresholdHR),
		load.WithThresholdPace(cfg.Athlete.ThresholdPaceSecPerKm),
		load.WithPowerZones(types.NewZoneSet(cfg.PowerZones)),
		load.WithHRZones(types.NewZoneSet(cfg.HRZones)),
		load.WithFallbacks(fallbacks...),
	)
	if err != nil {
		return nil, err
	}

	var store repository.Store
	switch cfg.Store.Driver {
	case "sqlite":
		store, err = repository.OpenSQLite(ctx, cfg.Store.Path)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
	default:
		store = repository.NewMemoryStore()
	}

	opts := []app.Option{
		app.WithLogger(log.Named("service")),
		app.WithLoader(source.New(
			source.WithConcurrency(cfg.LoadConcurrency),
			source.WithLogger(log.Named("source")),
		)),
		app.WithNormalizer(normalize.New(normalize.WithSourcePriority(cfg.SourcePriority...))),
		app.WithEngine(engine),
		app.WithTrend(trend.New(
			trend.WithTimeConstants(cfg.Trend.CTLDays, cfg.Trend.ATLDays),
			trend.WithSeed(cfg.Trend.SeedCTL, cfg.Trend.SeedATL),
		)),
		app.WithScorer(scoring.NewRecoveryScorer(
			scoring.WithTargetSleep(cfg.Recovery.TargetSleepHours),
			scoring.WithTSBScale(cfg.Recovery.TSBScale),
			scoring.WithSleepWeight(cfg.Recovery.SleepWeight),
		)),
		app.WithStore(store),
		app.WithSources(cfg.Sources...),
		app.WithExtendToToday(cfg.Trend.ExtendToToday),
	}
	if len(cfg.Export.Formats) > 0 {
		exp, err := export.New(cfg.Export.Dir, cfg.Export.Formats, export.WithLogger(log.Named("export")))
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		opts = append(opts, app.WithExporter(exp))
	}
	return app.New(opts...), nil
}

func newHTTPServer(ctx context.Context, addr string, svc *app.Service) *http.Server {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, svc, maxRunsPerRequest).Register(ctx, mux)
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func serve(ctx context.Context, cfg *config.Config, svc *app.Service, log logger.Logger) error {
	reg := metrics.GetRegistry()
	_ = reg.Register(collectors.NewGoCollector())
	_ = reg.Register(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv := newHTTPServer(ctx, cfg.Addr, svc)
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("%w: %v", api.ErrServe, err)
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
