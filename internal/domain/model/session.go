// Package model contains the domain records passed between layers.
package model

// Session is one normalized training activity. Sessions are immutable once
// built; reloading a source produces new values.
type Session struct {
	Date     Date         `json:"date"`
	Activity ActivityType `json:"activity_type"`

	DurationSeconds float32     `json:"duration_seconds"`
	DistanceMeters  NullFloat32 `json:"distance_m"`

	AvgPowerWatts NullFloat32 `json:"avg_power_watts"`
	FTPWatts      NullFloat32 `json:"ftp_watts"`
	// AvgSpeedMPS stands in for pace; pace in s/km is 1000/speed.
	AvgSpeedMPS NullFloat32 `json:"avg_speed_mps"`

	AvgHR       NullInt16 `json:"avg_hr"`
	MaxHR       NullInt16 `json:"max_hr"`
	ThresholdHR NullInt16 `json:"threshold_hr"`
	RPE         NullUint8 `json:"rpe"`

	SleepHours NullFloat32 `json:"sleep_hours"`
	CarbsG     NullFloat32 `json:"carbs_g"`
	SodiumMG   NullFloat32 `json:"sodium_mg"`
	BodyMassKG NullFloat32 `json:"body_mass_kg"`

	// Streams are sampled at 1 Hz when present.
	PowerStream []float32 `json:"-"`
	HRStream    []float32 `json:"-"`

	Source string `json:"source"`
	Row    int    `json:"row"`
}

// Key identifies a session after normalization.
type Key struct {
	Date     Date
	Activity ActivityType
}

// Key returns the deduplication key.
func (s Session) Key() Key { return Key{Date: s.Date, Activity: s.Activity} }

// HasDuration reports whether the session carries a usable duration.
func (s Session) HasDuration() bool { return s.DurationSeconds > 0 }

// Completeness counts the populated measurement fields. Date and activity
// are part of the key and are not counted.
func (s Session) Completeness() int {
	n := 0
	count := func(ok bool) {
		if ok {
			n++
		}
	}
	count(s.DurationSeconds > 0)
	count(s.DistanceMeters.Valid)
	count(s.AvgPowerWatts.Valid)
	count(s.FTPWatts.Valid)
	count(s.AvgSpeedMPS.Valid)
	count(s.AvgHR.Valid)
	count(s.MaxHR.Valid)
	count(s.ThresholdHR.Valid)
	count(s.RPE.Valid)
	count(s.SleepHours.Valid)
	count(s.CarbsG.Valid)
	count(s.SodiumMG.Valid)
	count(s.BodyMassKG.Valid)
	count(len(s.PowerStream) > 0)
	count(len(s.HRStream) > 0)
	return n
}

// RawRow is one untyped row as read from a source. Keys are column names
// as they appear in the source.
type RawRow map[string]any

// Source is a named table of raw rows.
type Source struct {
	Name string
	Rows []RawRow
}
