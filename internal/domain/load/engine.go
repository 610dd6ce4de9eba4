// Package load computes per-session training load metrics.
package load

import (
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/types"
)

const (
	defaultNPWindow = 30
	secondsPerHour  = 3600
	metresPerKm     = 1000
	// Gross efficiency makes kJ of work roughly equal to kcal burned.
	kcalPerKJ = 0.95
)

// Computation methods reported on each Value.
const (
	MethodPower    = "power"
	MethodPace     = "pace"
	MethodStream   = "stream"
	MethodAvgPower = "avg_power"
	MethodMean     = "stream_mean"
	MethodWork     = "work"
)

// MetricSet holds the derived metrics of one session.
type MetricSet struct {
	Date       model.Date         `json:"date"`
	Activity   model.ActivityType `json:"activity_type"`
	NP         model.Value        `json:"np"`
	IF         model.Value        `json:"if"`
	TSS        model.Value        `json:"tss"`
	KJ         model.Value        `json:"kj"`
	Kcal       model.Value        `json:"kcal"`
	WattsPerKG model.Value        `json:"watts_per_kg"`
	Zones      ZoneDistribution   `json:"zone_distribution"`
}

// Engine is a pure Session -> MetricSet function plus its configuration.
type Engine struct {
	ftp           float64
	thresholdHR   float64
	thresholdPace float64
	powerZones    types.ZoneSet
	hrZones       types.ZoneSet
	fallbacks     []Fallback
	npWindow      int
}

// New builds an engine and validates its zones.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		powerZones: DefaultPowerZones(),
		hrZones:    DefaultHRZones(),
		npWindow:   defaultNPWindow,
	}
	for _, opt := range opts {
		opt(e)
	}
	if err := ValidateZones("power_zones", e.powerZones); err != nil {
		return nil, err
	}
	if err := ValidateZones("hr_zones", e.hrZones); err != nil {
		return nil, err
	}
	if e.npWindow <= 0 {
		return nil, &model.ConfigurationError{Field: "np_window", Reason: "must be positive"}
	}
	return e, nil
}

// Default returns an engine with built-in zones, no athlete thresholds and
// no fallbacks.
func Default() *Engine {
	e, err := New()
	if err != nil {
		panic(err)
	}
	return e
}

// ComputeAll maps Compute over sessions, preserving order.
func (e *Engine) ComputeAll(sessions []model.Session) []MetricSet {
	out := make([]MetricSet, len(sessions))
	for i, s := range sessions {
		out[i] = e.Compute(s)
	}
	return out
}

// Compute derives the metric set of one session.
func (e *Engine) Compute(s model.Session) MetricSet {
	ms := MetricSet{Date: s.Date, Activity: s.Activity}
	ms.NP = e.normalizedOutput(s)
	ms.IF, ms.TSS = e.stress(s, ms.NP)
	ms.KJ = work(s)
	if kj, ok := ms.KJ.Get(); ok {
		ms.Kcal = model.Available(kj*kcalPerKJ, MethodWork)
	} else {
		ms.Kcal = model.Unavailable("kcal", ms.KJ.Missing.Fields...)
	}
	ms.WattsPerKG = wattsPerKG(s)
	ms.Zones = e.zones(s)
	return ms
}

func (e *Engine) thresholdPower(s model.Session) (float64, bool) {
	if v, ok := s.FTPWatts.Get(); ok {
		return v, true
	}
	return e.ftp, e.ftp > 0
}

func (e *Engine) thresholdHeartRate(s model.Session) (float64, bool) {
	if v, ok := s.ThresholdHR.Get(); ok {
		return v, true
	}
	return e.thresholdHR, e.thresholdHR > 0
}

// normalizedOutput prefers the power stream and falls back to average power.
func (e *Engine) normalizedOutput(s model.Session) model.Value {
	if len(s.PowerStream) > 0 {
		return model.Available(normalizedPower(s.PowerStream, e.npWindow), MethodStream)
	}
	if v, ok := s.AvgPowerWatts.Get(); ok {
		return model.Available(v, MethodAvgPower)
	}
	return model.Unavailable("np", "avg_power_watts", "power_stream")
}

// stress returns IF and TSS from the first applicable method: power, then
// pace for runs, then each configured fallback in order.
func (e *Engine) stress(s model.Session, np model.Value) (model.Value, model.Value) {
	dur := float64(s.DurationSeconds)
	var missing []string
	if !s.HasDuration() {
		missing = append(missing, "duration_seconds")
	}

	ftp, hasFTP := e.thresholdPower(s)
	if !hasFTP {
		missing = append(missing, "ftp_watts")
	}
	if !np.Ok() {
		missing = append(missing, np.Missing.Fields...)
	}
	if np.Ok() && hasFTP && s.HasDuration() {
		intensity := np.V / ftp
		tss := dur * np.V * intensity / (ftp * secondsPerHour) * 100
		return model.Available(intensity, MethodPower), model.Available(tss, MethodPower)
	}

	if s.Activity == model.ActivityRunning {
		speed, hasSpeed := s.AvgSpeedMPS.Get()
		if !hasSpeed {
			missing = append(missing, "avg_speed_mps")
		}
		if e.thresholdPace <= 0 {
			missing = append(missing, "threshold_pace")
		}
		if hasSpeed && e.thresholdPace > 0 && s.HasDuration() {
			intensity := speed / (metresPerKm / e.thresholdPace)
			tss := dur * intensity * intensity / secondsPerHour * 100
			return model.Available(intensity, MethodPace), model.Available(tss, MethodPace)
		}
	}

	for _, f := range e.fallbacks {
		switch f {
		case FallbackRPE:
			rpe, ok := s.RPE.Get()
			if !ok {
				missing = append(missing, "rpe")
				continue
			}
			if !s.HasDuration() {
				continue
			}
			tss := dur / 60 * rpe * rpe / 30
			return model.Unavailable("if", missing...), model.Available(tss, string(FallbackRPE))
		case FallbackHR:
			hr, hasHR := s.AvgHR.Get()
			thr, hasThr := e.thresholdHeartRate(s)
			if !hasHR {
				missing = append(missing, "avg_hr")
			}
			if !hasThr {
				missing = append(missing, "threshold_hr")
			}
			if !hasHR || !hasThr || !s.HasDuration() {
				continue
			}
			intensity := hr / thr
			tss := dur / secondsPerHour * intensity * intensity * 100
			return model.Available(intensity, string(FallbackHR)), model.Available(tss, string(FallbackHR))
		}
	}
	return model.Unavailable("if", missing...), model.Unavailable("tss", missing...)
}

// averagePower is the recorded average, else the mean of the power stream.
func averagePower(s model.Session) (float64, string, bool) {
	if p, ok := s.AvgPowerWatts.Get(); ok {
		return p, MethodAvgPower, true
	}
	if len(s.PowerStream) > 0 {
		return mean(s.PowerStream), MethodMean, true
	}
	return 0, "", false
}

func work(s model.Session) model.Value {
	p, method, ok := averagePower(s)
	switch {
	case !ok && !s.HasDuration():
		return model.Unavailable("kj", "avg_power_watts", "duration_seconds")
	case !ok:
		return model.Unavailable("kj", "avg_power_watts")
	case !s.HasDuration():
		return model.Unavailable("kj", "duration_seconds")
	}
	return model.Available(p*float64(s.DurationSeconds)/1000, method)
}

func wattsPerKG(s model.Session) model.Value {
	p, method, okP := averagePower(s)
	m, okM := s.BodyMassKG.Get()
	var missing []string
	if !okP {
		missing = append(missing, "avg_power_watts")
	}
	if !okM {
		missing = append(missing, "body_mass_kg")
	}
	if len(missing) > 0 {
		return model.Unavailable("watts_per_kg", missing...)
	}
	return model.Available(p/m, method)
}

// zones buckets the power stream when FTP is known, else the heart-rate
// stream when threshold heart rate is known. Buckets need a duration to
// sum to.
func (e *Engine) zones(s model.Session) ZoneDistribution {
	dur := float64(s.DurationSeconds)
	ftp, hasFTP := e.thresholdPower(s)
	thr, hasThr := e.thresholdHeartRate(s)
	usePower := len(s.PowerStream) > 0 && hasFTP
	useHR := len(s.HRStream) > 0 && hasThr
	if (usePower || useHR) && !s.HasDuration() {
		return ZoneDistribution{Missing: &model.MissingInputError{Metric: "zone_distribution", Fields: []string{"duration_seconds"}}}
	}
	if usePower {
		return distribute(BasisPower, e.powerZones, s.PowerStream, ftp, dur)
	}
	if useHR {
		return distribute(BasisHeartRate, e.hrZones, s.HRStream, thr, dur)
	}

	var missing []string
	if len(s.PowerStream) == 0 {
		missing = append(missing, "power_stream")
	} else if !hasFTP {
		missing = append(missing, "ftp_watts")
	}
	if len(s.HRStream) == 0 {
		missing = append(missing, "hr_stream")
	} else if !hasThr {
		missing = append(missing, "threshold_hr")
	}
	return ZoneDistribution{Missing: &model.MissingInputError{Metric: "zone_distribution", Fields: missing}}
}
