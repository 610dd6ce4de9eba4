// Package report assembles the output records of one pipeline run.
package report

import (
	"time"

	"github.com/okian/trainlog/internal/domain/load"
	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/scoring"
	"github.com/okian/trainlog/internal/domain/types"
)

const kpiWindowDays = 7

// SessionReport pairs a session with its derived metrics.
type SessionReport struct {
	Session model.Session  `json:"session"`
	Metrics load.MetricSet `json:"metrics"`
}

// WeeklyLoad sums a Monday-to-Sunday week.
type WeeklyLoad struct {
	WeekStart     model.Date `json:"week_start"`
	Year          int        `json:"iso_year"`
	Week          int        `json:"iso_week"`
	TSS           float64    `json:"tss"`
	Sessions      int        `json:"sessions"`
	DurationHours float64    `json:"duration_hours"`
}

// KPIs summarize the most recent week.
type KPIs struct {
	AsOf       model.Date      `json:"as_of"`
	TSS7d      float64         `json:"tss_7d"`
	KJ7d       float64         `json:"kj_7d"`
	CTL        float64         `json:"ctl"`
	ATL        float64         `json:"atl"`
	TSB        float64         `json:"tsb"`
	Form       string          `json:"form"`
	AvgSleep7d model.Value     `json:"avg_sleep_7d"`
	AvgPower7d model.Value     `json:"avg_power_7d"`
	Recovery   *scoring.Result `json:"recovery,omitempty"`
}

// Stats describe the normalization pass.
type Stats struct {
	Rows      int `json:"rows"`
	Sessions  int `json:"sessions"`
	Collapsed int `json:"collapsed"`
	Rejected  int `json:"rejected"`
}

// Report is everything one run produces.
type Report struct {
	RunID       string                      `json:"run_id"`
	GeneratedAt time.Time                   `json:"generated_at"`
	Stats       Stats                       `json:"stats"`
	Sessions    []SessionReport             `json:"sessions"`
	Trend       []model.TrendPoint          `json:"trend"`
	Recovery    []scoring.Result            `json:"recovery"`
	Weekly      []WeeklyLoad                `json:"weekly"`
	KPIs        KPIs                        `json:"kpis"`
	Rejected    []*model.DataIntegrityError `json:"rejected,omitempty"`
}

// Input gathers the results of each pipeline stage.
type Input struct {
	RunID       string
	GeneratedAt time.Time
	Sessions    []model.Session
	Metrics     []load.MetricSet
	Trend       []model.TrendPoint
	Recovery    []scoring.Result
	Rejected    []*model.DataIntegrityError
	Rows        int
	Collapsed   int
}

// Build assembles a report. Metrics[i] must belong to Sessions[i].
func Build(in Input) Report {
	r := Report{
		RunID:       in.RunID,
		GeneratedAt: in.GeneratedAt,
		Trend:       in.Trend,
		Recovery:    in.Recovery,
		Rejected:    in.Rejected,
		Stats: Stats{
			Rows:      in.Rows,
			Sessions:  len(in.Sessions),
			Collapsed: in.Collapsed,
			Rejected:  len(in.Rejected),
		},
	}
	r.Sessions = make([]SessionReport, len(in.Sessions))
	for i, s := range in.Sessions {
		r.Sessions[i] = SessionReport{Session: s}
		if i < len(in.Metrics) {
			r.Sessions[i].Metrics = in.Metrics[i]
		}
	}
	r.Weekly = weekly(r.Sessions)
	r.KPIs = kpis(r)
	return r
}

func weekly(sessions []SessionReport) []WeeklyLoad {
	var out []WeeklyLoad
	idx := map[model.Date]int{}
	for _, sr := range sessions {
		ws := sr.Session.Date.WeekStart()
		i, ok := idx[ws]
		if !ok {
			y, w := ws.ISOWeek()
			i = len(out)
			idx[ws] = i
			out = append(out, WeeklyLoad{WeekStart: ws, Year: y, Week: w})
		}
		out[i].Sessions++
		out[i].DurationHours += float64(sr.Session.DurationSeconds) / 3600
		if v, ok := sr.Metrics.TSS.Get(); ok {
			out[i].TSS += v
		}
	}
	return out
}

func kpis(r Report) KPIs {
	k := KPIs{
		AvgSleep7d: model.Unavailable("avg_sleep_7d", "sleep_hours"),
		AvgPower7d: model.Unavailable("avg_power_7d", "avg_power_watts"),
	}
	if len(r.Trend) == 0 {
		return k
	}
	last := r.Trend[len(r.Trend)-1]
	k.AsOf = last.Date
	k.CTL, k.ATL, k.TSB = last.CTL, last.ATL, last.TSB
	k.Form = FormDescription(k.TSB)

	from := last.Date.AddDays(-(kpiWindowDays - 1))
	for _, p := range r.Trend {
		if p.Date >= from {
			k.TSS7d += p.TSS
		}
	}

	var powerSum float64
	var powerN int
	for _, sr := range r.Sessions {
		if sr.Session.Date < from || sr.Session.Date > last.Date {
			continue
		}
		if kj, ok := sr.Metrics.KJ.Get(); ok {
			k.KJ7d += kj
		}
		if p, ok := sr.Session.AvgPowerWatts.Get(); ok {
			powerSum += p
			powerN++
		}
	}
	if powerN > 0 {
		k.AvgPower7d = model.Available(powerSum/float64(powerN), "mean")
	}

	var sleepSum float64
	var sleepN int
	for d, h := range SleepByDay(sessionsOf(r.Sessions)) {
		if d < from || d > last.Date {
			continue
		}
		if v, ok := h.Get(); ok {
			sleepSum += v
			sleepN++
		}
	}
	if sleepN > 0 {
		k.AvgSleep7d = model.Available(sleepSum/float64(sleepN), "mean")
	}

	for i := len(r.Recovery) - 1; i >= 0; i-- {
		if r.Recovery[i].Date == last.Date {
			rec := r.Recovery[i]
			k.Recovery = &rec
			break
		}
	}
	return k
}

func sessionsOf(srs []SessionReport) []model.Session {
	out := make([]model.Session, len(srs))
	for i, sr := range srs {
		out[i] = sr.Session
	}
	return out
}

// SleepByDay picks one sleep value per day: the first session of the day,
// in date/activity order, that carries one.
func SleepByDay(sessions []model.Session) map[model.Date]model.NullFloat32 {
	out := make(map[model.Date]model.NullFloat32)
	for _, s := range sessions {
		if cur := out[s.Date]; cur.Valid {
			continue
		}
		out[s.Date] = s.SleepHours
	}
	return out
}

// RecoveryInputs pairs each trend day with that day's sleep.
func RecoveryInputs(trend []model.TrendPoint, sessions []model.Session) []scoring.Input {
	sleep := SleepByDay(sessions)
	out := make([]scoring.Input, len(trend))
	for i, p := range trend {
		out[i] = scoring.Input{Date: p.Date, SleepHours: sleep[p.Date], TSB: p.TSB}
	}
	return out
}

// FormDescription describes a TSB value in words.
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "very fresh, possibly detrained"
	case tsb > 10:
		return "fresh and ready to race"
	case tsb > 0:
		return "neutral, good for training"
	case tsb > -10:
		return "slightly fatigued"
	case tsb > -25:
		return "tired but building fitness"
	default:
		return "very fatigued, rest needed"
	}
}

// DailyRows flattens the trend and recovery series for export.
func (r Report) DailyRows() []types.DailyRow {
	sessions := sessionsOf(r.Sessions)
	sleep := SleepByDay(sessions)
	perDay := map[model.Date]int32{}
	for _, s := range sessions {
		perDay[s.Date]++
	}
	rec := make(map[model.Date]scoring.Result, len(r.Recovery))
	for _, x := range r.Recovery {
		rec[x.Date] = x
	}

	rows := make([]types.DailyRow, len(r.Trend))
	for i, p := range r.Trend {
		rows[i] = types.DailyRow{
			Date:                p.Date.String(),
			Sessions:            perDay[p.Date],
			TSS:                 p.TSS,
			UnavailableSessions: int32(p.UnavailableSessions),
			CTL:                 p.CTL,
			ATL:                 p.ATL,
			TSB:                 p.TSB,
			SleepHours:          sleep[p.Date].Ptr(),
		}
		if x, ok := rec[p.Date]; ok {
			rows[i].Recovery = x.Score
			rows[i].RecoveryConfidence = string(x.Confidence)
		}
	}
	return rows
}

// SessionRows flattens sessions and metrics for export.
func (r Report) SessionRows() []types.SessionRow {
	rows := make([]types.SessionRow, len(r.Sessions))
	for i, sr := range r.Sessions {
		m := sr.Metrics
		rows[i] = types.SessionRow{
			Date:            sr.Session.Date.String(),
			Activity:        sr.Session.Activity.String(),
			Source:          sr.Session.Source,
			DurationSeconds: float64(sr.Session.DurationSeconds),
			TSS:             m.TSS.Ptr(),
			TSSMethod:       m.TSS.Method,
			IF:              m.IF.Ptr(),
			NP:              m.NP.Ptr(),
			KJ:              m.KJ.Ptr(),
			Kcal:            m.Kcal.Ptr(),
			WattsPerKG:      m.WattsPerKG.Ptr(),
		}
	}
	return rows
}
