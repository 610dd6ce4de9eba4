// Package types contains plain records shared by configuration, the
// domain packages and the output adapters.
package types

import "sort"

// ZoneBounds is one zone as a percentage band of a threshold.
type ZoneBounds struct {
	LowerPct float64 `koanf:"lower_pct" json:"lower_pct" yaml:"lower_pct"`
	UpperPct float64 `koanf:"upper_pct" json:"upper_pct" yaml:"upper_pct"`
}

// Zone is a named band.
type Zone struct {
	ID string `json:"id"`
	ZoneBounds
}

// ZoneSet is an ordered list of zones, lowest first.
type ZoneSet []Zone

// NewZoneSet orders a zone_id -> bounds mapping by lower bound.
func NewZoneSet(m map[string]ZoneBounds) ZoneSet {
	zs := make(ZoneSet, 0, len(m))
	for id, b := range m {
		zs = append(zs, Zone{ID: id, ZoneBounds: b})
	}
	sort.Slice(zs, func(i, j int) bool {
		if zs[i].LowerPct != zs[j].LowerPct {
			return zs[i].LowerPct < zs[j].LowerPct
		}
		return zs[i].ID < zs[j].ID
	})
	return zs
}

// Map converts the set back to its configuration form.
func (zs ZoneSet) Map() map[string]ZoneBounds {
	m := make(map[string]ZoneBounds, len(zs))
	for _, z := range zs {
		m[z.ID] = z.ZoneBounds
	}
	return m
}

// IDs returns zone ids in order.
func (zs ZoneSet) IDs() []string {
	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.ID
	}
	return ids
}

// DailyRow is the flat per-day record written by exporters. Optional values
// are nil when unavailable.
type DailyRow struct {
	Date                string   `json:"date" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Sessions            int32    `json:"sessions" parquet:"name=sessions, type=INT32"`
	TSS                 float64  `json:"tss" parquet:"name=tss, type=DOUBLE"`
	UnavailableSessions int32    `json:"unavailable_sessions" parquet:"name=unavailable_sessions, type=INT32"`
	CTL                 float64  `json:"ctl" parquet:"name=ctl, type=DOUBLE"`
	ATL                 float64  `json:"atl" parquet:"name=atl, type=DOUBLE"`
	TSB                 float64  `json:"tsb" parquet:"name=tsb, type=DOUBLE"`
	SleepHours          *float64 `json:"sleep_hours" parquet:"name=sleep_hours, type=DOUBLE, repetitiontype=OPTIONAL"`
	Recovery            float64  `json:"recovery" parquet:"name=recovery, type=DOUBLE"`
	RecoveryConfidence  string   `json:"recovery_confidence" parquet:"name=recovery_confidence, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
}

// SessionRow is the flat per-session record written by exporters.
type SessionRow struct {
	Date            string   `json:"date" parquet:"name=date, type=BYTE_ARRAY, convertedtype=UTF8"`
	Activity        string   `json:"activity_type" parquet:"name=activity_type, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	Source          string   `json:"source" parquet:"name=source, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	DurationSeconds float64  `json:"duration_seconds" parquet:"name=duration_seconds, type=DOUBLE"`
	TSS             *float64 `json:"tss" parquet:"name=tss, type=DOUBLE, repetitiontype=OPTIONAL"`
	TSSMethod       string   `json:"tss_method" parquet:"name=tss_method, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY"`
	IF              *float64 `json:"if" parquet:"name=if, type=DOUBLE, repetitiontype=OPTIONAL"`
	NP              *float64 `json:"np" parquet:"name=np, type=DOUBLE, repetitiontype=OPTIONAL"`
	KJ              *float64 `json:"kj" parquet:"name=kj, type=DOUBLE, repetitiontype=OPTIONAL"`
	Kcal            *float64 `json:"kcal" parquet:"name=kcal, type=DOUBLE, repetitiontype=OPTIONAL"`
	WattsPerKG      *float64 `json:"watts_per_kg" parquet:"name=watts_per_kg, type=DOUBLE, repetitiontype=OPTIONAL"`
}
