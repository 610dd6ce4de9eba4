// Package scoring turns sleep and form into a bounded daily recovery score.
package scoring

import (
	"math"

	"github.com/okian/trainlog/internal/domain/model"
)

// Default scoring configuration constants.
const (
	defaultTargetSleep = 8.0
	defaultTSBScale    = 50.0
	defaultSleepWeight = 0.5
	maxScoreValue      = 100
)

// Confidence tells whether every input was present.
type Confidence string

const (
	ConfidenceFull    Confidence = "full"
	ConfidencePartial Confidence = "partial"
)

// Option applies a configuration option to the RecoveryScorer.
type Option func(*RecoveryScorer)

// WithTargetSleep sets the sleep that earns a full sleep component.
func WithTargetSleep(hours float64) Option {
	return func(s *RecoveryScorer) {
		if hours > 0 {
			s.targetSleep = hours
		}
	}
}

// WithTSBScale sets the |TSB| at which the form component reaches zero.
func WithTSBScale(scale float64) Option {
	return func(s *RecoveryScorer) {
		if scale > 0 {
			s.tsbScale = scale
		}
	}
}

// WithSleepWeight sets the share of the sleep component, in [0, 1].
func WithSleepWeight(w float64) Option {
	return func(s *RecoveryScorer) {
		if w >= 0 && w <= 1 {
			s.sleepWeight = w
		}
	}
}

// Input is one day's recovery inputs.
type Input struct {
	Date       model.Date
	SleepHours model.NullFloat32
	TSB        float64
}

// Result contains the computed score for a day.
type Result struct {
	Date       model.Date `json:"date"`
	Score      float64    `json:"score"`
	Confidence Confidence `json:"confidence"`
	// Sleep is unavailable when the score was computed from TSB alone.
	Sleep model.Value `json:"sleep_component"`
	Form  float64     `json:"form_component"`
}

// Partial reports whether sleep was missing.
func (r Result) Partial() bool { return r.Confidence == ConfidencePartial }

// RecoveryScorer combines a sleep component and a form component.
type RecoveryScorer struct {
	targetSleep float64
	tsbScale    float64
	sleepWeight float64
}

// NewRecoveryScorer creates a scorer with configuration options.
func NewRecoveryScorer(opts ...Option) *RecoveryScorer {
	s := &RecoveryScorer{
		targetSleep: defaultTargetSleep,
		tsbScale:    defaultTSBScale,
		sleepWeight: defaultSleepWeight,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes the recovery score. Without sleep the score is the form
// component alone and the result is marked partial.
func (s *RecoveryScorer) Score(in Input) Result {
	form := clamp01(1 - math.Abs(in.TSB)/s.tsbScale)
	res := Result{Date: in.Date, Form: form}

	hours, ok := in.SleepHours.Get()
	if !ok {
		res.Confidence = ConfidencePartial
		res.Sleep = model.Unavailable("recovery_sleep", "sleep_hours")
		res.Score = bound(form * maxScoreValue)
		return res
	}

	sleep := clamp01(hours / s.targetSleep)
	res.Confidence = ConfidenceFull
	res.Sleep = model.Available(sleep, "sleep_hours")
	res.Score = bound((s.sleepWeight*sleep + (1-s.sleepWeight)*form) * maxScoreValue)
	return res
}

// ScoreAll scores each input in order.
func (s *RecoveryScorer) ScoreAll(in []Input) []Result {
	out := make([]Result, len(in))
	for i, x := range in {
		out[i] = s.Score(x)
	}
	return out
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(1, v))
}

func bound(v float64) float64 {
	return math.Max(0, math.Min(maxScoreValue, v))
}
