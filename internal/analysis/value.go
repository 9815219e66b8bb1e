package analysis

import (
	"encoding/json"
	"math"
	"strconv"
)

// Value is a metric result: either a finite float or Missing.
// The zero Value is Missing.
type Value struct {
	Float float64
	Valid bool
}

// Some wraps f as a present value. Non-finite inputs become Missing.
func Some(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// Missing returns the "no data" value.
func Missing() Value { return Value{} }

// Get returns the float and whether it is present.
func (v Value) Get() (float64, bool) { return v.Float, v.Valid }

// IsMissing reports whether v carries no data.
func (v Value) IsMissing() bool { return !v.Valid }

func (v Value) String() string {
	if !v.Valid {
		return "missing"
	}
	return strconv.FormatFloat(v.Float, 'g', -1, 64)
}

// MarshalJSON encodes Missing as null.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(v.Float)
}

// MarshalYAML encodes Missing as null.
func (v Value) MarshalYAML() (any, error) {
	if !v.Valid {
		return nil, nil
	}
	return v.Float, nil
}
