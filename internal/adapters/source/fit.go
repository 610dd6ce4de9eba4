package source

import (
	"io"
	"math"
	"sort"
	"time"

	"github.com/tormoder/fit"

	"github.com/okian/trainlog/internal/domain/model"
)

// maxGapFillSeconds is the longest recording gap bridged by holding the
// previous sample when building 1 Hz streams.
const maxGapFillSeconds = 30

// ReadFIT decodes an activity file. Every session message becomes one row
// keyed by the canonical field names.
func ReadFIT(r io.Reader) (model.Source, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return model.Source{}, err
	}
	activity, err := decoded.Activity()
	if err != nil {
		return model.Source{}, err
	}
	rows, err := activityRows(activity)
	if err != nil {
		return model.Source{}, err
	}
	return model.Source{Name: FITSourceName, Rows: rows}, nil
}

func activityRows(af *fit.ActivityFile) ([]model.RawRow, error) {
	if af == nil || len(af.Sessions) == 0 {
		return nil, ErrNoSessions
	}

	records := make([]*fit.RecordMsg, 0, len(af.Records))
	for _, rec := range af.Records {
		if rec != nil && validTime(rec.Timestamp) {
			records = append(records, rec)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	rows := make([]model.RawRow, 0, len(af.Sessions))
	for _, s := range af.Sessions {
		if s == nil || !validTime(s.StartTime) {
			continue
		}
		own := records
		if len(af.Sessions) > 1 {
			own = window(records, s.StartTime, s.Timestamp)
		}
		rows = append(rows, sessionRow(s, own))
	}
	if len(rows) == 0 {
		return nil, ErrNoSessions
	}
	return rows, nil
}

func sessionRow(s *fit.SessionMsg, records []*fit.RecordMsg) model.RawRow {
	row := model.RawRow{
		"date":          model.DateOf(s.StartTime),
		"activity_type": sportName(s.Sport),
	}

	duration := positive(s.GetTotalTimerTimeScaled())
	if duration == 0 && len(records) > 1 {
		duration = records[len(records)-1].Timestamp.Sub(records[0].Timestamp).Seconds()
	}
	if duration > 0 {
		row["duration_seconds"] = duration
	}
	if d := positive(s.GetTotalDistanceScaled()); d > 0 {
		row["distance_m"] = d
	}

	speed := positive(s.GetEnhancedAvgSpeedScaled())
	if speed == 0 {
		speed = positive(s.GetAvgSpeedScaled())
	}
	if speed > 0 {
		row["avg_speed_mps"] = speed
	}

	if s.AvgPower != math.MaxUint16 && s.AvgPower > 0 {
		row["avg_power_watts"] = float64(s.AvgPower)
	}
	if s.ThresholdPower != math.MaxUint16 && s.ThresholdPower > 0 {
		row["ftp_watts"] = float64(s.ThresholdPower)
	}
	if s.AvgHeartRate != math.MaxUint8 && s.AvgHeartRate > 0 {
		row["avg_hr"] = float64(s.AvgHeartRate)
	}
	if s.MaxHeartRate != math.MaxUint8 && s.MaxHeartRate > 0 {
		row["max_hr"] = float64(s.MaxHeartRate)
	}

	power, hr := streams(records)
	if len(power) > 0 {
		row["power_stream"] = power
		if _, ok := row["avg_power_watts"]; !ok {
			row["avg_power_watts"] = mean(power)
		}
	}
	if len(hr) > 0 {
		row["hr_stream"] = hr
	}
	return row
}

// streams builds 1 Hz power and heart-rate series. Gaps up to
// maxGapFillSeconds hold the previous sample; longer gaps are left out.
func streams(records []*fit.RecordMsg) (power, hr []float64) {
	var (
		lastPower, lastHR float64
		powerAt, hrAt     time.Time
	)
	for _, rec := range records {
		if rec.Power != math.MaxUint16 {
			p := float64(rec.Power)
			power = fill(power, lastPower, powerAt, rec.Timestamp)
			power = append(power, p)
			lastPower, powerAt = p, rec.Timestamp
		}
		if rec.HeartRate != math.MaxUint8 {
			h := float64(rec.HeartRate)
			hr = fill(hr, lastHR, hrAt, rec.Timestamp)
			hr = append(hr, h)
			lastHR, hrAt = h, rec.Timestamp
		}
	}
	return power, hr
}

func fill(series []float64, last float64, prev, now time.Time) []float64 {
	if prev.IsZero() || !now.After(prev) {
		return series
	}
	missing := int(math.Round(now.Sub(prev).Seconds())) - 1
	if missing <= 0 || missing > maxGapFillSeconds {
		return series
	}
	for i := 0; i < missing; i++ {
		series = append(series, last)
	}
	return series
}

func window(records []*fit.RecordMsg, from, to time.Time) []*fit.RecordMsg {
	var out []*fit.RecordMsg
	for _, rec := range records {
		if rec.Timestamp.Before(from) {
			continue
		}
		if validTime(to) && rec.Timestamp.After(to) {
			break
		}
		out = append(out, rec)
	}
	return out
}

func sportName(s fit.Sport) string {
	switch s {
	case fit.SportCycling:
		return "cycling"
	case fit.SportRunning:
		return "running"
	default:
		return "other"
	}
}

func validTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func positive(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
