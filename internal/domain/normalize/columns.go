package normalize

import "strings"

type field uint8

const (
	fieldDate field = iota
	fieldActivity
	fieldDuration
	fieldDistance
	fieldAvgPower
	fieldFTP
	fieldSpeed
	fieldAvgHR
	fieldMaxHR
	fieldThresholdHR
	fieldRPE
	fieldSleep
	fieldCarbs
	fieldSodium
	fieldBodyMass
	fieldPowerStream
	fieldHRStream
)

var fieldNames = [...]string{
	fieldDate:        "date",
	fieldActivity:    "activity_type",
	fieldDuration:    "duration_seconds",
	fieldDistance:    "distance_m",
	fieldAvgPower:    "avg_power_watts",
	fieldFTP:         "ftp_watts",
	fieldSpeed:       "avg_speed_mps",
	fieldAvgHR:       "avg_hr",
	fieldMaxHR:       "max_hr",
	fieldThresholdHR: "threshold_hr",
	fieldRPE:         "rpe",
	fieldSleep:       "sleep_hours",
	fieldCarbs:       "carbs_g",
	fieldSodium:      "sodium_mg",
	fieldBodyMass:    "body_mass_kg",
	fieldPowerStream: "power_stream",
	fieldHRStream:    "hr_stream",
}

func (f field) String() string { return fieldNames[f] }

type scope uint8

const (
	scopeAny scope = iota
	scopeCycling
	scopeRunning
)

type conversion uint8

const (
	convScale conversion = iota
	// seconds per kilometre -> metres per second
	convPaceSecPerKm
	// minutes per kilometre -> metres per second
	convPaceMinPerKm
	// minutes per mile -> metres per second
	convPaceMinPerMile
)

// column describes how one source column maps onto a session field.
type column struct {
	field field
	scope scope
	conv  conversion
	scale float64
}

const (
	secondsPerHour   = 3600
	secondsPerMinute = 60
	metresPerMile    = 1609.344
	metresPerKm      = 1000
	mpsPerMph        = 0.44704
	mpsPerKmh        = 1 / 3.6
	kgPerLb          = 0.45359237
	mgPerGram        = 1000
)

func col(f field, scale float64) column { return column{field: f, scale: scale} }

func cyc(f field, scale float64) column {
	return column{field: f, scope: scopeCycling, scale: scale}
}

func run(f field, scale float64) column {
	return column{field: f, scope: scopeRunning, scale: scale}
}

func pace(conv conversion, s scope) column {
	return column{field: fieldSpeed, scope: s, conv: conv, scale: 1}
}

// columns maps normalized header text to a session field. Headers from the
// canonical export, the training master log and common device exports are
// all accepted.
var columns = map[string]column{
	"date":      col(fieldDate, 1),
	"day":       col(fieldDate, 1),
	"timestamp": col(fieldDate, 1),

	"activity_type": col(fieldActivity, 1),
	"activity type": col(fieldActivity, 1),
	"activity":      col(fieldActivity, 1),
	"sport":         col(fieldActivity, 1),
	"type":          col(fieldActivity, 1),

	"duration_seconds":       col(fieldDuration, 1),
	"duration_s":             col(fieldDuration, 1),
	"duration (s)":           col(fieldDuration, 1),
	"duration":               col(fieldDuration, 1),
	"moving_time":            col(fieldDuration, 1),
	"duration_min":           col(fieldDuration, secondsPerMinute),
	"duration (min)":         col(fieldDuration, secondsPerMinute),
	"duration_hours":         col(fieldDuration, secondsPerHour),
	"duration (hrs)":         col(fieldDuration, secondsPerHour),
	"cycling duration (hrs)": cyc(fieldDuration, secondsPerHour),
	"bike duration (hrs)":    cyc(fieldDuration, secondsPerHour),
	"run duration (hrs)":     run(fieldDuration, secondsPerHour),
	"run (hr)":               run(fieldDuration, secondsPerHour),

	"distance_m":            col(fieldDistance, 1),
	"distance":              col(fieldDistance, 1),
	"distance_km":           col(fieldDistance, metresPerKm),
	"distance (km)":         col(fieldDistance, metresPerKm),
	"distance_mi":           col(fieldDistance, metresPerMile),
	"distance (mi)":         col(fieldDistance, metresPerMile),
	"cycling distance (mi)": cyc(fieldDistance, metresPerMile),
	"run dist (mi)":         run(fieldDistance, metresPerMile),
	"run distance (mi)":     run(fieldDistance, metresPerMile),

	"avg_power_watts": col(fieldAvgPower, 1),
	"avg_power":       col(fieldAvgPower, 1),
	"avg power":       col(fieldAvgPower, 1),
	"avg watt":        cyc(fieldAvgPower, 1),
	"avg watt (est)":  cyc(fieldAvgPower, 1),

	"ftp_watts": col(fieldFTP, 1),
	"ftp":       col(fieldFTP, 1),
	"ftp_used":  col(fieldFTP, 1),

	"avg_speed_mps":         col(fieldSpeed, 1),
	"avg_speed_kmh":         col(fieldSpeed, mpsPerKmh),
	"avg_speed_mph":         col(fieldSpeed, mpsPerMph),
	"cycling speed (mph)":   cyc(fieldSpeed, mpsPerMph),
	"speed avg (mph)":       cyc(fieldSpeed, mpsPerMph),
	"avg_pace_s_per_km":     pace(convPaceSecPerKm, scopeAny),
	"avg_pace_min_per_km":   pace(convPaceMinPerKm, scopeAny),
	"avg_pace_min_per_mile": pace(convPaceMinPerMile, scopeAny),
	"run pace (min/mi)":     pace(convPaceMinPerMile, scopeRunning),

	"avg_hr":       col(fieldAvgHR, 1),
	"avg hr":       col(fieldAvgHR, 1),
	"avg hr (bpm)": col(fieldAvgHR, 1),
	"max_hr":       col(fieldMaxHR, 1),
	"max hr":       col(fieldMaxHR, 1),
	"threshold_hr": col(fieldThresholdHR, 1),
	"lthr":         col(fieldThresholdHR, 1),

	"rpe":     col(fieldRPE, 1),
	"run rpe": run(fieldRPE, 1),

	"sleep_hours": col(fieldSleep, 1),
	"sleep (hrs)": col(fieldSleep, 1),
	"sleep":       col(fieldSleep, 1),

	"carbs_g":   col(fieldCarbs, 1),
	"carbs (g)": col(fieldCarbs, 1),
	"carbs":     col(fieldCarbs, 1),

	"sodium_mg":   col(fieldSodium, 1),
	"sodium (mg)": col(fieldSodium, 1),
	"sodium_g":    col(fieldSodium, mgPerGram),
	"sodium (g)":  col(fieldSodium, mgPerGram),

	"body_mass_kg": col(fieldBodyMass, 1),
	"weight_kg":    col(fieldBodyMass, 1),
	"weight (kg)":  col(fieldBodyMass, 1),
	"weight_lbs":   col(fieldBodyMass, kgPerLb),
	"weight (lbs)": col(fieldBodyMass, kgPerLb),

	"power_stream": col(fieldPowerStream, 1),
	"hr_stream":    col(fieldHRStream, 1),
}

// normalizeHeader lower-cases and collapses whitespace.
func normalizeHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), " ")
}

func lookupColumn(h string) (column, bool) {
	c, ok := columns[normalizeHeader(h)]
	return c, ok
}

func (c column) convert(v float64) float64 {
	switch c.conv {
	case convPaceSecPerKm:
		return metresPerKm / v
	case convPaceMinPerKm:
		return metresPerKm / (v * secondsPerMinute)
	case convPaceMinPerMile:
		return metresPerMile / (v * secondsPerMinute)
	default:
		return v * c.scale
	}
}
