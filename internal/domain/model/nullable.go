package model

import (
	"encoding/json"
	"math"
)

// NullFloat32 is an optional fixed-width measurement.
type NullFloat32 struct {
	Float32 float32
	Valid   bool
}

// SomeFloat32 narrows v. NaN, infinities and values outside float32 range
// are treated as absent.
func SomeFloat32(v float64) NullFloat32 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > math.MaxFloat32 {
		return NullFloat32{}
	}
	return NullFloat32{Float32: float32(v), Valid: true}
}

// Get returns the widened value and whether it is present.
func (n NullFloat32) Get() (float64, bool) {
	return float64(n.Float32), n.Valid
}

// Ptr returns nil for an absent value.
func (n NullFloat32) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := float64(n.Float32)
	return &v
}

func (n NullFloat32) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float32)
}

func (n *NullFloat32) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullFloat32{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = SomeFloat32(v)
	return nil
}

// NullInt16 holds optional small integers such as heart rate.
type NullInt16 struct {
	Int16 int16
	Valid bool
}

// SomeInt16 rounds v and treats out-of-range input as absent.
func SomeInt16(v float64) NullInt16 {
	if math.IsNaN(v) || v > math.MaxInt16 || v < math.MinInt16 {
		return NullInt16{}
	}
	return NullInt16{Int16: int16(math.Round(v)), Valid: true}
}

func (n NullInt16) Get() (float64, bool) {
	return float64(n.Int16), n.Valid
}

func (n NullInt16) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := float64(n.Int16)
	return &v
}

func (n NullInt16) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Int16)
}

func (n *NullInt16) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullInt16{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = SomeInt16(v)
	return nil
}

// NullUint8 holds optional small unsigned values such as RPE.
type NullUint8 struct {
	Uint8 uint8
	Valid bool
}

// SomeUint8 rounds v and treats out-of-range input as absent.
func SomeUint8(v float64) NullUint8 {
	if math.IsNaN(v) || v < 0 || v > math.MaxUint8 {
		return NullUint8{}
	}
	return NullUint8{Uint8: uint8(math.Round(v)), Valid: true}
}

func (n NullUint8) Get() (float64, bool) {
	return float64(n.Uint8), n.Valid
}

func (n NullUint8) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := float64(n.Uint8)
	return &v
}

func (n NullUint8) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Uint8)
}

func (n *NullUint8) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*n = NullUint8{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*n = SomeUint8(v)
	return nil
}
