// Package normalize turns raw rows from heterogeneous sources into one
// canonical session per (date, activity type).
//
// Rows from every source are concatenated and then deduplicated through a
// keyed map, so the work and memory are linear in the number of input rows
// no matter how many sources repeat the same date.
package normalize

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/okian/trainlog/internal/domain/dedupe"
	"github.com/okian/trainlog/internal/domain/model"
)

// Result is the outcome of one normalization pass.
type Result struct {
	Sessions []model.Session
	// Rejected rows were skipped; the rest of the batch proceeded.
	Rejected []*model.DataIntegrityError
	// Rows counts input rows across all sources.
	Rows int
	// Collapsed counts accepted rows folded into an existing key.
	Collapsed int
}

// Normalizer is stateless apart from its configuration and safe to reuse.
type Normalizer struct {
	priority map[string]int
}

// New creates a normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{priority: map[string]int{}}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type candidate struct {
	session      model.Session
	completeness int
	rank         int
	seq          int
}

// better picks the more complete row; on a tie the higher-priority source;
// on a further tie the later row.
func better(c, cur candidate) bool {
	if c.completeness != cur.completeness {
		return c.completeness > cur.completeness
	}
	if c.rank != cur.rank {
		return c.rank < cur.rank
	}
	return c.seq > cur.seq
}

func (n *Normalizer) rank(source string) int {
	if r, ok := n.priority[strings.ToLower(strings.TrimSpace(source))]; ok {
		return r
	}
	return len(n.priority)
}

// Normalize concatenates every source and keeps one session per key.
// Output is sorted by date, then activity type.
func (n *Normalizer) Normalize(sources []model.Source) Result {
	total := 0
	for _, src := range sources {
		total += len(src.Rows)
	}

	keep := dedupe.NewKeeper[model.Key](better, dedupe.WithCapacity(total))
	res := Result{Rows: total}

	seq := 0
	for _, src := range sources {
		rank := n.rank(src.Name)
		for i, row := range src.Rows {
			seq++
			s, err := decodeRow(src.Name, i, row)
			if err != nil {
				res.Rejected = append(res.Rejected, err)
				continue
			}
			keep.Offer(s.Key(), candidate{
				session:      s,
				completeness: s.Completeness(),
				rank:         rank,
				seq:          seq,
			})
		}
	}

	winners := keep.Values()
	res.Sessions = make([]model.Session, len(winners))
	for i, c := range winners {
		res.Sessions[i] = c.session
	}
	sort.Slice(res.Sessions, func(i, j int) bool {
		a, b := res.Sessions[i], res.Sessions[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		return a.Activity < b.Activity
	})
	res.Collapsed = keep.Collapsed()
	return res
}

type cell struct {
	header string
	col    column
	value  any
}

// decodeRow maps one raw row onto a session, narrowing every number.
func decodeRow(source string, idx int, row model.RawRow) (model.Session, *model.DataIntegrityError) {
	reject := func(f field, reason string) *model.DataIntegrityError {
		return &model.DataIntegrityError{Source: source, Row: idx, Field: f.String(), Reason: reason}
	}

	cells := make([]cell, 0, len(row))
	for h, v := range row {
		c, ok := lookupColumn(h)
		if !ok || isBlank(v) {
			continue
		}
		cells = append(cells, cell{header: normalizeHeader(h), col: c, value: v})
	}
	// Discipline-specific columns take precedence over generic ones; header
	// order keeps the choice stable across map iteration.
	sort.Slice(cells, func(i, j int) bool {
		if (cells[i].col.scope == scopeAny) != (cells[j].col.scope == scopeAny) {
			return cells[i].col.scope != scopeAny
		}
		return cells[i].header < cells[j].header
	})

	s := model.Session{Source: source, Row: idx}

	activity, explicit, hasCycling, hasRunning := model.ActivityOther, false, false, false
	haveDate := false
	for _, c := range cells {
		switch {
		case c.col.field == fieldActivity && !explicit:
			if text, ok := c.value.(string); ok {
				activity, explicit = model.ParseActivityType(text)
			}
		case c.col.field == fieldDate && !haveDate:
			d, err := toDate(c.value)
			if err != nil {
				return s, reject(fieldDate, err.Error())
			}
			s.Date = d
			haveDate = true
		case c.col.scope == scopeCycling:
			hasCycling = hasCycling || nonZero(c.value)
		case c.col.scope == scopeRunning:
			hasRunning = hasRunning || nonZero(c.value)
		}
	}
	if !haveDate {
		return s, reject(fieldDate, "missing")
	}
	switch {
	case hasCycling && hasRunning:
		return s, reject(fieldActivity, "row carries both cycling and running columns")
	case explicit && hasCycling && activity != model.ActivityCycling:
		return s, reject(fieldActivity, fmt.Sprintf("%s row carries cycling columns", activity))
	case explicit && hasRunning && activity != model.ActivityRunning:
		return s, reject(fieldActivity, fmt.Sprintf("%s row carries running columns", activity))
	case explicit:
	case hasCycling:
		activity = model.ActivityCycling
	case hasRunning:
		activity = model.ActivityRunning
	}
	s.Activity = activity

	set := make(map[field]bool, len(cells))
	for _, c := range cells {
		f := c.col.field
		if f == fieldDate || f == fieldActivity || set[f] {
			continue
		}
		if c.col.scope == scopeCycling && activity != model.ActivityCycling ||
			c.col.scope == scopeRunning && activity != model.ActivityRunning {
			continue
		}

		if f == fieldDuration {
			secs, ok, err := toDuration(c.value, c.col)
			if err != nil {
				return s, reject(fieldDuration, err.Error())
			}
			if !ok {
				continue
			}
			if secs < 0 {
				return s, reject(fieldDuration, "negative duration")
			}
			if secs > math.MaxFloat32 {
				continue
			}
			s.DurationSeconds = float32(secs)
			set[f] = true
			continue
		}

		if f == fieldPowerStream || f == fieldHRStream {
			stream := toStream(c.value)
			if len(stream) == 0 {
				continue
			}
			if f == fieldPowerStream {
				s.PowerStream = stream
			} else {
				s.HRStream = stream
			}
			set[f] = true
			continue
		}

		raw, ok := toFloat(c.value)
		if !ok {
			continue
		}
		if c.col.conv != convScale && raw <= 0 {
			continue
		}
		set[f] = assign(&s, f, c.col.convert(raw))
	}
	return s, nil
}

// nonZero treats a zero in a discipline column as "did not do it", which is
// how wide daily logs mark the unused discipline.
func nonZero(v any) bool {
	f, ok := toFloat(v)
	return !ok || f != 0
}

// assign stores v into the session field. Out-of-domain values are left
// absent; they are never clamped into range.
func assign(s *model.Session, f field, v float64) bool {
	switch f {
	case fieldDistance:
		if v < 0 {
			return false
		}
		s.DistanceMeters = model.SomeFloat32(v)
		return s.DistanceMeters.Valid
	case fieldAvgPower:
		return positive(&s.AvgPowerWatts, v)
	case fieldFTP:
		return positive(&s.FTPWatts, v)
	case fieldSpeed:
		return positive(&s.AvgSpeedMPS, v)
	case fieldBodyMass:
		return positive(&s.BodyMassKG, v)
	case fieldAvgHR:
		return positiveInt(&s.AvgHR, v)
	case fieldMaxHR:
		return positiveInt(&s.MaxHR, v)
	case fieldThresholdHR:
		return positiveInt(&s.ThresholdHR, v)
	case fieldRPE:
		r := math.Round(v)
		if r < 1 || r > 10 {
			return false
		}
		s.RPE = model.SomeUint8(r)
		return true
	case fieldSleep:
		return nonNegative(&s.SleepHours, v)
	case fieldCarbs:
		return nonNegative(&s.CarbsG, v)
	case fieldSodium:
		return nonNegative(&s.SodiumMG, v)
	}
	return false
}

func positive(dst *model.NullFloat32, v float64) bool {
	if v <= 0 {
		return false
	}
	*dst = model.SomeFloat32(v)
	return dst.Valid
}

func nonNegative(dst *model.NullFloat32, v float64) bool {
	if v < 0 {
		return false
	}
	*dst = model.SomeFloat32(v)
	return dst.Valid
}

func positiveInt(dst *model.NullInt16, v float64) bool {
	if v <= 0 {
		return false
	}
	*dst = model.SomeInt16(v)
	return dst.Valid
}
