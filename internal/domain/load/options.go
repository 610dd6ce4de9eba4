package load

import (
	"fmt"
	"strings"

	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/types"
)

// Fallback names a TSS estimate used when neither power nor pace applies.
type Fallback string

const (
	// FallbackRPE estimates TSS as minutes * RPE^2 / 30.
	FallbackRPE Fallback = "rpe"
	// FallbackHR estimates TSS as hours * (avg_hr/threshold_hr)^2 * 100.
	FallbackHR Fallback = "hr"
)

// ParseFallbacks validates a configured fallback chain.
func ParseFallbacks(names []string) ([]Fallback, error) {
	out := make([]Fallback, 0, len(names))
	seen := map[Fallback]bool{}
	for _, n := range names {
		f := Fallback(strings.ToLower(strings.TrimSpace(n)))
		switch f {
		case FallbackRPE, FallbackHR:
		default:
			return nil, &model.ConfigurationError{Field: "tss_fallbacks", Reason: fmt.Sprintf("unknown fallback %q", n)}
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

// Option configures an Engine.
type Option func(*Engine)

// WithFTP sets the athlete FTP used when a session carries none.
func WithFTP(watts float64) Option {
	return func(e *Engine) {
		if watts > 0 {
			e.ftp = watts
		}
	}
}

// WithThresholdHR sets the athlete threshold heart rate.
func WithThresholdHR(bpm float64) Option {
	return func(e *Engine) {
		if bpm > 0 {
			e.thresholdHR = bpm
		}
	}
}

// WithThresholdPace sets the running threshold pace in seconds per km.
func WithThresholdPace(secPerKm float64) Option {
	return func(e *Engine) {
		if secPerKm > 0 {
			e.thresholdPace = secPerKm
		}
	}
}

// WithPowerZones replaces the power zone set. New validates it.
func WithPowerZones(zs types.ZoneSet) Option {
	return func(e *Engine) { e.powerZones = zs }
}

// WithHRZones replaces the heart-rate zone set. New validates it.
func WithHRZones(zs types.ZoneSet) Option {
	return func(e *Engine) { e.hrZones = zs }
}

// WithFallbacks sets the ordered TSS fallback chain.
func WithFallbacks(fs ...Fallback) Option {
	return func(e *Engine) { e.fallbacks = append([]Fallback(nil), fs...) }
}

// WithNPWindow sets the rolling window in samples for normalized power.
func WithNPWindow(samples int) Option {
	return func(e *Engine) { e.npWindow = samples }
}
