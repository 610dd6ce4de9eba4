package load

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/types"
)

// DefaultPowerZones are the seven Coggan levels as % of FTP.
func DefaultPowerZones() types.ZoneSet {
	return types.ZoneSet{
		{ID: "z1", ZoneBounds: types.ZoneBounds{LowerPct: 0, UpperPct: 55}},
		{ID: "z2", ZoneBounds: types.ZoneBounds{LowerPct: 55, UpperPct: 75}},
		{ID: "z3", ZoneBounds: types.ZoneBounds{LowerPct: 75, UpperPct: 90}},
		{ID: "z4", ZoneBounds: types.ZoneBounds{LowerPct: 90, UpperPct: 105}},
		{ID: "z5", ZoneBounds: types.ZoneBounds{LowerPct: 105, UpperPct: 120}},
		{ID: "z6", ZoneBounds: types.ZoneBounds{LowerPct: 120, UpperPct: 150}},
		{ID: "z7", ZoneBounds: types.ZoneBounds{LowerPct: 150, UpperPct: 1000}},
	}
}

// DefaultHRZones are five bands as % of threshold heart rate.
func DefaultHRZones() types.ZoneSet {
	return types.ZoneSet{
		{ID: "z1", ZoneBounds: types.ZoneBounds{LowerPct: 0, UpperPct: 81}},
		{ID: "z2", ZoneBounds: types.ZoneBounds{LowerPct: 81, UpperPct: 90}},
		{ID: "z3", ZoneBounds: types.ZoneBounds{LowerPct: 90, UpperPct: 94}},
		{ID: "z4", ZoneBounds: types.ZoneBounds{LowerPct: 94, UpperPct: 100}},
		{ID: "z5", ZoneBounds: types.ZoneBounds{LowerPct: 100, UpperPct: 1000}},
	}
}

// ValidateZones checks that a zone set is non-empty, ascending and free of
// overlaps. name labels the error.
func ValidateZones(name string, zs types.ZoneSet) error {
	bad := func(format string, args ...any) error {
		return &model.ConfigurationError{Field: name, Reason: fmt.Sprintf(format, args...)}
	}
	if len(zs) == 0 {
		return bad("no zones defined")
	}
	ids := make(map[string]struct{}, len(zs))
	for i, z := range zs {
		if z.ID == "" {
			return bad("zone %d has no id", i)
		}
		if _, dup := ids[z.ID]; dup {
			return bad("duplicate zone id %q", z.ID)
		}
		ids[z.ID] = struct{}{}
		if math.IsNaN(z.LowerPct) || math.IsNaN(z.UpperPct) || z.LowerPct < 0 {
			return bad("zone %q has invalid bounds", z.ID)
		}
		if z.UpperPct <= z.LowerPct {
			return bad("zone %q upper bound %.1f is not above lower bound %.1f", z.ID, z.UpperPct, z.LowerPct)
		}
		if i == 0 {
			continue
		}
		prev := zs[i-1]
		if z.LowerPct < prev.LowerPct {
			return bad("zone %q is out of order after %q", z.ID, prev.ID)
		}
		if z.LowerPct < prev.UpperPct {
			return bad("zone %q overlaps %q", z.ID, prev.ID)
		}
	}
	return nil
}

// Zone distribution bases.
const (
	BasisPower     = "power"
	BasisHeartRate = "heart_rate"
)

// ZoneTime is the time spent in one zone.
type ZoneTime struct {
	ID      string  `json:"id"`
	Seconds float64 `json:"seconds"`
}

// ZoneDistribution is the time-in-zone breakdown of a session.
type ZoneDistribution struct {
	Basis   string
	Zones   []ZoneTime
	Missing *model.MissingInputError
}

// Ok reports whether a distribution was computed.
func (z ZoneDistribution) Ok() bool { return z.Missing == nil }

// Total sums the buckets.
func (z ZoneDistribution) Total() float64 {
	t := 0.0
	for _, b := range z.Zones {
		t += b.Seconds
	}
	return t
}

// Map returns zone_id -> seconds.
func (z ZoneDistribution) Map() map[string]float64 {
	m := make(map[string]float64, len(z.Zones))
	for _, b := range z.Zones {
		m[b.ID] = b.Seconds
	}
	return m
}

func (z ZoneDistribution) MarshalJSON() ([]byte, error) {
	if z.Missing != nil {
		return json.Marshal(struct {
			Seconds *struct{} `json:"seconds"`
			Missing []string  `json:"missing"`
		}{Missing: z.Missing.Fields})
	}
	return json.Marshal(struct {
		Basis   string     `json:"basis"`
		Seconds []ZoneTime `json:"seconds"`
	}{Basis: z.Basis, Seconds: z.Zones})
}

// distribute buckets samples by percentage of threshold. Each sample stands
// for duration/len(samples) seconds, so the buckets sum to duration. Samples below the first zone count toward it; samples in a gap
// or above the last zone count toward the highest zone whose lower bound
// they reach.
func distribute(basis string, zs types.ZoneSet, samples []float32, threshold, duration float64) ZoneDistribution {
	out := ZoneDistribution{Basis: basis, Zones: make([]ZoneTime, len(zs))}
	for i, z := range zs {
		out.Zones[i].ID = z.ID
	}
	if len(samples) == 0 || duration <= 0 {
		return out
	}
	weight := duration / float64(len(samples))
	for _, s := range samples {
		pct := float64(s) / threshold * 100
		idx := 0
		for i := len(zs) - 1; i > 0; i-- {
			if pct >= zs[i].LowerPct {
				idx = i
				break
			}
		}
		out.Zones[idx].Seconds += weight
	}
	return out
}
