package export

import (
	"bytes"
	"encoding/csv"
	"strconv"

	"github.com/okian/trainlog/internal/domain/types"
)

var dailyHeader = []string{
	"date", "sessions", "tss", "unavailable_sessions", "ctl", "atl", "tsb",
	"sleep_hours", "recovery", "recovery_confidence",
}

var sessionHeader = []string{
	"date", "activity_type", "source", "duration_seconds", "tss", "tss_method",
	"if", "np", "kj", "kcal", "watts_per_kg",
}

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// opt renders an unavailable value as an empty cell.
func opt(v *float64) string {
	if v == nil {
		return ""
	}
	return num(*v)
}

func dailyCSV(rows []types.DailyRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(dailyHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.Date,
			strconv.Itoa(int(r.Sessions)),
			num(r.TSS),
			strconv.Itoa(int(r.UnavailableSessions)),
			num(r.CTL),
			num(r.ATL),
			num(r.TSB),
			opt(r.SleepHours),
			num(r.Recovery),
			r.RecoveryConfidence,
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func sessionsCSV(rows []types.SessionRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(sessionHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := []string{
			r.Date,
			r.Activity,
			r.Source,
			num(r.DurationSeconds),
			opt(r.TSS),
			r.TSSMethod,
			opt(r.IF),
			opt(r.NP),
			opt(r.KJ),
			opt(r.Kcal),
			opt(r.WattsPerKG),
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
