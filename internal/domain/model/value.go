package model

import (
	"encoding/json"
	"sort"
)

// Value is a derived number that may be unavailable. An unavailable value
// carries the reason instead of a zero.
type Value struct {
	V       float64
	Method  string
	Missing *MissingInputError
}

// Available wraps a computed number together with how it was computed.
func Available(v float64, method string) Value {
	return Value{V: v, Method: method}
}

// Unavailable marks metric as not computable for lack of fields.
func Unavailable(metric string, fields ...string) Value {
	f := append([]string(nil), fields...)
	sort.Strings(f)
	return Value{Missing: &MissingInputError{Metric: metric, Fields: dedupStrings(f)}}
}

// Ok reports whether the value was computed.
func (v Value) Ok() bool { return v.Missing == nil }

// Get returns the number and whether it is available.
func (v Value) Get() (float64, bool) { return v.V, v.Missing == nil }

// Err returns the missing-input error or nil.
func (v Value) Err() error {
	if v.Missing == nil {
		return nil
	}
	return v.Missing
}

// Ptr returns nil when unavailable.
func (v Value) Ptr() *float64 {
	if v.Missing != nil {
		return nil
	}
	x := v.V
	return &x
}

type valueJSON struct {
	Value   *float64 `json:"value"`
	Method  string   `json:"method,omitempty"`
	Missing []string `json:"missing,omitempty"`
}

func (v Value) MarshalJSON() ([]byte, error) {
	out := valueJSON{Value: v.Ptr(), Method: v.Method}
	if v.Missing != nil {
		out.Missing = v.Missing.Fields
	}
	return json.Marshal(out)
}

func dedupStrings(s []string) []string {
	if len(s) < 2 {
		return s
	}
	out := s[:1]
	for _, x := range s[1:] {
		if x != out[len(out)-1] {
			out = append(out, x)
		}
	}
	return out
}
