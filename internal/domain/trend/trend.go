// Package trend folds daily training load into chronic and acute load.
//
// The fold is explicit: every call starts from the configured seed and
// walks every calendar day in range, so results depend only on the input.
package trend

import (
	"github.com/okian/trainlog/internal/domain/model"
)

const (
	defaultCTLDays = 42
	defaultATLDays = 7
)

// DailyLoad is the summed TSS of one day.
type DailyLoad struct {
	Date model.Date
	TSS  float64
	// Unavailable counts sessions whose TSS could not be computed.
	Unavailable int
}

// Accumulator holds the recurrence parameters. It keeps no running state.
type Accumulator struct {
	ctlDays float64
	atlDays float64
	seedCTL float64
	seedATL float64
}

// New creates an accumulator with 42/7 day constants and a zero seed.
func New(opts ...Option) *Accumulator {
	a := &Accumulator{ctlDays: defaultCTLDays, atlDays: defaultATLDays}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Seed returns the state before the first day.
func (a *Accumulator) Seed(first model.Date) model.TrendPoint {
	return model.TrendPoint{Date: first.AddDays(-1), CTL: a.seedCTL, ATL: a.seedATL, TSB: a.seedCTL - a.seedATL}
}

// Next advances prev by one day with that day's TSS. TSB uses prev's
// CTL and ATL.
func (a *Accumulator) Next(prev model.TrendPoint, tss float64) model.TrendPoint {
	return model.TrendPoint{
		Date: prev.Date.AddDays(1),
		TSS:  tss,
		CTL:  prev.CTL + (tss-prev.CTL)/a.ctlDays,
		ATL:  prev.ATL + (tss-prev.ATL)/a.atlDays,
		TSB:  prev.CTL - prev.ATL,
	}
}

// Fold produces one point per calendar day from the earliest load to the
// latest. Days without a load contribute zero TSS.
func (a *Accumulator) Fold(loads []DailyLoad) []model.TrendPoint {
	if len(loads) == 0 {
		return nil
	}
	_, last := span(loads)
	return a.FoldThrough(loads, last)
}

// FoldThrough is Fold extended with zero-load days up to through. A through
// date earlier than the last load is ignored.
func (a *Accumulator) FoldThrough(loads []DailyLoad, through model.Date) []model.TrendPoint {
	if len(loads) == 0 {
		return nil
	}
	first, last := span(loads)
	if through < last {
		through = last
	}

	byDay := make(map[model.Date]DailyLoad, len(loads))
	for _, l := range loads {
		d := byDay[l.Date]
		d.TSS += l.TSS
		d.Unavailable += l.Unavailable
		byDay[l.Date] = d
	}

	points := make([]model.TrendPoint, 0, int(through-first)+1)
	prev := a.Seed(first)
	for day := first; day <= through; day++ {
		l := byDay[day]
		p := a.Next(prev, l.TSS)
		p.UnavailableSessions = l.Unavailable
		points = append(points, p)
		prev = p
	}
	return points
}

func span(loads []DailyLoad) (first, last model.Date) {
	first, last = loads[0].Date, loads[0].Date
	for _, l := range loads[1:] {
		if l.Date < first {
			first = l.Date
		}
		if l.Date > last {
			last = l.Date
		}
	}
	return first, last
}

// DailyLoads sums available TSS per day. tss[i] belongs to sessions[i].
func DailyLoads(sessions []model.Session, tss []model.Value) []DailyLoad {
	idx := make(map[model.Date]int)
	var out []DailyLoad
	for i, s := range sessions {
		j, ok := idx[s.Date]
		if !ok {
			j = len(out)
			idx[s.Date] = j
			out = append(out, DailyLoad{Date: s.Date})
		}
		if i < len(tss) {
			if v, ok := tss[i].Get(); ok {
				out[j].TSS += v
				continue
			}
		}
		out[j].Unavailable++
	}
	return out
}
