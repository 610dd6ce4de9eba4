// Package config defines process configuration and how it is loaded.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/types"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat is "text" or "json".
	LogFormat string `koanf:"log_format"`
	// LogFile, when set, also writes logs to a size-rotated file.
	LogFile      string `koanf:"log_file"`
	LogMaxSizeMB int    `koanf:"log_max_size_mb"`
	LogToStdout  bool   `koanf:"log_to_stdout"`

	// Serve keeps the process running and exposes the read-only HTTP feed.
	Serve bool `koanf:"serve"`
	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// Sources lists files or directories to read on every run.
	Sources []string `koanf:"sources"`
	// SourcePriority breaks ties between equally complete duplicate rows.
	SourcePriority []string `koanf:"source_priority"`
	// LoadConcurrency bounds how many files are decoded at once.
	LoadConcurrency int `koanf:"load_concurrency"`

	Athlete AthleteConfig `koanf:"athlete"`

	// PowerZones and HRZones map zone id to a percentage band of threshold.
	PowerZones map[string]types.ZoneBounds `koanf:"power_zones"`
	HRZones    map[string]types.ZoneBounds `koanf:"hr_zones"`

	// TSSFallbacks is the ordered estimate chain used without power or pace.
	TSSFallbacks []string `koanf:"tss_fallbacks"`

	Trend    TrendConfig    `koanf:"trend"`
	Recovery RecoveryConfig `koanf:"recovery"`
	Export   ExportConfig   `koanf:"export"`
	Store    StoreConfig    `koanf:"store"`
}

// AthleteConfig holds thresholds used when a session does not carry its own.
type AthleteConfig struct {
	FTPWatts              float64 `koanf:"ftp_watts"`
	ThresholdHR           float64 `koanf:"threshold_hr"`
	ThresholdPaceSecPerKm float64 `koanf:"threshold_pace_s_per_km"`
}

// TrendConfig configures the CTL/ATL fold.
type TrendConfig struct {
	CTLDays float64 `koanf:"ctl_days"`
	ATLDays float64 `koanf:"atl_days"`
	SeedCTL float64 `koanf:"seed_ctl"`
	SeedATL float64 `koanf:"seed_atl"`
	// ExtendToToday continues the fold with zero-load days up to today.
	ExtendToToday bool `koanf:"extend_to_today"`
}

// RecoveryConfig configures the recovery score.
type RecoveryConfig struct {
	TargetSleepHours float64 `koanf:"target_sleep_hours"`
	TSBScale         float64 `koanf:"tsb_scale"`
	SleepWeight      float64 `koanf:"sleep_weight"`
}

// ExportConfig selects flat-file outputs written after each run.
type ExportConfig struct {
	Dir     string   `koanf:"dir"`
	Formats []string `koanf:"formats"`
}

// StoreConfig selects where run snapshots are kept.
type StoreConfig struct {
	// Driver is "memory" or "sqlite".
	Driver string `koanf:"driver"`
	Path   string `koanf:"path"`
}

// New creates a Config with defaults. Context is accepted first to follow
// the project-wide convention.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:        "info",
		LogFormat:       "text",
		LogMaxSizeMB:    50,
		LogToStdout:     true,
		Addr:            ":9080",
		LoadConcurrency: runtime.NumCPU(),
		PowerZones:      load.DefaultPowerZones().Map(),
		HRZones:         load.DefaultHRZones().Map(),
		TSSFallbacks:    []string{string(load.FallbackRPE), string(load.FallbackHR)},
		Trend: TrendConfig{
			CTLDays: 42,
			ATLDays: 7,
		},
		Recovery: RecoveryConfig{
			TargetSleepHours: 8,
			TSBScale:         50,
			SleepWeight:      0.5,
		},
		Store: StoreConfig{Driver: "memory"},
	}
}

// Export formats.
const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"
	FormatJSON    = "json"
)

// Validate checks the whole configuration. Every failure is a
// *model.ConfigurationError and is fatal at startup.
func (c *Config) Validate() error {
	bad := func(field, format string, args ...any) error {
		return &model.ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	if c.Serve && strings.TrimSpace(c.Addr) == "" {
		return bad("addr", "must not be empty when serving")
	}
	if c.LogFile != "" && c.LogMaxSizeMB < 1 {
		return bad("log_max_size_mb", "must be at least 1, got %d", c.LogMaxSizeMB)
	}
	if c.LoadConcurrency < 1 {
		return bad("load_concurrency", "must be at least 1, got %d", c.LoadConcurrency)
	}
	if err := load.ValidateZones("power_zones", types.NewZoneSet(c.PowerZones)); err != nil {
		return err
	}
	if err := load.ValidateZones("hr_zones", types.NewZoneSet(c.HRZones)); err != nil {
		return err
	}
	if _, err := load.ParseFallbacks(c.TSSFallbacks); err != nil {
		return err
	}
	if c.Athlete.FTPWatts < 0 || c.Athlete.ThresholdHR < 0 || c.Athlete.ThresholdPaceSecPerKm < 0 {
		return bad("athlete", "thresholds must not be negative")
	}
	if c.Trend.CTLDays < 1 || c.Trend.ATLDays < 1 {
		return bad("trend", "time constants must be at least one day")
	}
	if c.Recovery.TargetSleepHours <= 0 || c.Recovery.TSBScale <= 0 {
		return bad("recovery", "target_sleep_hours and tsb_scale must be positive")
	}
	if c.Recovery.SleepWeight < 0 || c.Recovery.SleepWeight > 1 {
		return bad("recovery.sleep_weight", "must be within [0, 1], got %v", c.Recovery.SleepWeight)
	}
	for _, f := range c.Export.Formats {
		switch strings.ToLower(f) {
		case FormatCSV, FormatParquet, FormatJSON:
		default:
			return bad("export.formats", "unknown format %q", f)
		}
	}
	if len(c.Export.Formats) > 0 && c.Export.Dir == "" {
		return bad("export.dir", "required when export formats are set")
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return bad("store.path", "required for the sqlite driver")
		}
	default:
		return bad("store.driver", "unknown driver %q", c.Store.Driver)
	}
	return nil
}
