package normalize

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/okian/trainlog/internal/domain/model"
)

// Spreadsheet exports use several spellings for an empty cell.
var blankCells = map[string]struct{}{
	"":     {},
	"-":    {},
	"na":   {},
	"n/a":  {},
	"nan":  {},
	"nat":  {},
	"null": {},
	"none": {},
}

func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		_, ok := blankCells[strings.ToLower(strings.TrimSpace(x))]
		return ok
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

// toFloat coerces a cell to a number. Anything that is not a finite number
// reports ok=false.
func toFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		if isBlank(x) {
			return 0, false
		}
		n, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(x), ",", ""), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// toDuration accepts plain numbers and h:mm:ss / mm:ss clock text. Clock
// text is always seconds and ignores the column scale.
func toDuration(v any, c column) (float64, bool, error) {
	if s, ok := v.(string); ok && strings.Contains(s, ":") {
		secs, err := parseClock(strings.TrimSpace(s))
		if err != nil {
			return 0, false, err
		}
		return secs, true, nil
	}
	if d, ok := v.(time.Duration); ok {
		return d.Seconds(), true, nil
	}
	f, ok := toFloat(v)
	if !ok {
		return 0, false, nil
	}
	return c.convert(f), true, nil
}

func parseClock(s string) (float64, error) {
	neg := strings.HasPrefix(s, "-")
	parts := strings.Split(strings.TrimPrefix(s, "-"), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("unrecognized clock %q", s)
	}
	total := 0.0
	for _, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("unrecognized clock %q", s)
		}
		total = total*60 + n
	}
	if neg {
		total = -total
	}
	return total, nil
}

// toDate accepts text, time values, civil dates and spreadsheet serials.
func toDate(v any) (model.Date, error) {
	switch x := v.(type) {
	case model.Date:
		return x, nil
	case time.Time:
		if x.IsZero() {
			return 0, fmt.Errorf("zero time")
		}
		return model.DateOf(x), nil
	case string:
		if isBlank(x) {
			return 0, fmt.Errorf("missing")
		}
		return model.ParseDate(x)
	case nil:
		return 0, fmt.Errorf("missing")
	}
	if f, ok := toFloat(v); ok {
		return model.DateFromSerial(f)
	}
	return 0, fmt.Errorf("unsupported date value %v", v)
}

// toStream converts a sample slice to float32. Negative or non-finite
// samples become zero.
func toStream(v any) []float32 {
	var out []float32
	put := func(f float64, ok bool) {
		if !ok || f < 0 || f > math.MaxFloat32 {
			f = 0
		}
		out = append(out, float32(f))
	}
	switch x := v.(type) {
	case []float32:
		out = make([]float32, 0, len(x))
		for _, s := range x {
			put(float64(s), !math.IsNaN(float64(s)) && !math.IsInf(float64(s), 0))
		}
	case []float64:
		out = make([]float32, 0, len(x))
		for _, s := range x {
			put(s, !math.IsNaN(s) && !math.IsInf(s, 0))
		}
	case []int:
		out = make([]float32, 0, len(x))
		for _, s := range x {
			put(float64(s), true)
		}
	case []any:
		out = make([]float32, 0, len(x))
		for _, s := range x {
			put(toFloat(s))
		}
	}
	return out
}
