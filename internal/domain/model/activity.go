package model

import "strings"

// ActivityType is the normalized discipline of a session.
type ActivityType uint8

const (
	ActivityOther ActivityType = iota
	ActivityCycling
	ActivityRunning
)

var activityAliases = map[string]ActivityType{
	"cycling":        ActivityCycling,
	"cycle":          ActivityCycling,
	"bike":           ActivityCycling,
	"biking":         ActivityCycling,
	"ride":           ActivityCycling,
	"road":           ActivityCycling,
	"virtualride":    ActivityCycling,
	"virtual ride":   ActivityCycling,
	"indoor cycling": ActivityCycling,
	"running":        ActivityRunning,
	"run":            ActivityRunning,
	"trail run":      ActivityRunning,
	"trail running":  ActivityRunning,
	"treadmill":      ActivityRunning,
	"other":          ActivityOther,
}

// ParseActivityType maps free text to an activity type. Unknown or empty
// text maps to ActivityOther with ok=false.
func ParseActivityType(s string) (ActivityType, bool) {
	a, ok := activityAliases[strings.ToLower(strings.TrimSpace(s))]
	return a, ok
}

func (a ActivityType) String() string {
	switch a {
	case ActivityCycling:
		return "cycling"
	case ActivityRunning:
		return "running"
	default:
		return "other"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a ActivityType) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *ActivityType) UnmarshalText(b []byte) error {
	*a, _ = ParseActivityType(string(b))
	return nil
}
