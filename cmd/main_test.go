package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/trainlog/internal/config"
	"github.com/okian/trainlog/internal/domain/types"
	"github.com/okian/trainlog/pkg/logger"
)

func TestBuildService(t *testing.T) {
	convey.Convey("Given configuration with a CSV source", t, func() {
		ctx := context.Background()
		dir := t.TempDir()
		csvPath := filepath.Join(dir, "log.csv")
		err := os.WriteFile(csvPath, []byte("date,sport,duration_min,avg_power\n2024-01-05,ride,60,200\n"), 0o600)
		convey.So(err, convey.ShouldBeNil)

		cfg := config.New(ctx)
		cfg.Sources = []string{csvPath}
		cfg.Athlete.FTPWatts = 250
		cfg.Store = config.StoreConfig{Driver: "sqlite", Path: filepath.Join(dir, "state", "trainlog.db")}
		cfg.Export = config.ExportConfig{Dir: filepath.Join(dir, "out"), Formats: []string{"json"}}

		convey.Convey("When the service is built and run", func() {
			svc, err := buildService(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = svc.Close() }()

			r, err := svc.RunFiles(ctx, cfg.Sources)

			convey.Convey("Then configured thresholds reach the engine", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(r.Sessions, convey.ShouldHaveLength, 1)
				convey.So(r.Sessions[0].Metrics.TSS.V, convey.ShouldAlmostEqual, 64, 1e-9)
			})

			convey.Convey("Then the HTTP feed serves the result", func() {
				srv := newHTTPServer(ctx, ":0", svc)
				req := httptest.NewRequest(http.MethodGet, "/report/kpis", nil)
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				req = httptest.NewRequest(http.MethodGet, "/trend?from=2024-01-05", nil)
				w = httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
				convey.So(w.Body.String(), convey.ShouldContainSubstring, "2024-01-05")

				req = httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil)
				w = httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, req)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then exports are written", func() {
				_, statErr := os.Stat(filepath.Join(dir, "out", "sessions.json"))
				convey.So(statErr, convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given configuration that bypassed validation", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("When zones overlap", func() {
			cfg.HRZones = map[string]types.ZoneBounds{"z1": {LowerPct: 0, UpperPct: 90}, "z2": {LowerPct: 80, UpperPct: 100}}
			_, err := buildService(context.Background(), cfg, logger.Nop())

			convey.Convey("Then the engine refuses to start", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When a fallback is unknown", func() {
			cfg.TSSFallbacks = []string{"magic"}
			_, err := buildService(context.Background(), cfg, logger.Nop())

			convey.Convey("Then building fails", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}
