// Package safe sanitises numeric values read from the backend so that NaN,
// Inf and missing fields never reach the formatters.
package safe

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Float is a number decoded leniently from JSON. Valid is false when the
// field was absent, null, not a number, or not finite.
type Float struct {
	Value float64
	Valid bool
}

// Of wraps v, marking it invalid when it is NaN or infinite.
func Of(v float64) Float {
	if !Finite(v) {
		return Float{}
	}
	return Float{Value: v, Valid: true}
}

// Or returns the value, or fallback when the value is not valid.
func (f Float) Or(fallback float64) float64 {
	if !f.Valid {
		return fallback
	}
	return f.Value
}

// Float64 returns the value, or NaN when invalid. Formatters treat NaN as absent.
func (f Float) Float64() float64 {
	if !f.Valid {
		return math.NaN()
	}
	return f.Value
}

// Positive reports whether the value is valid and strictly greater than zero.
func (f Float) Positive() bool {
	return f.Valid && f.Value > 0
}

// UnmarshalJSON accepts numbers, numeric strings and null.
// Anything else decodes to an invalid Float instead of failing the whole body.
func (f *Float) UnmarshalJSON(data []byte) error {
	*f = Float{}

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		*f = Of(v)
		return nil
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return nil
	}
	*f = Of(v)
	return nil
}

// Finite reports whether v is neither NaN nor infinite.
func Finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Value returns v, or fallback when v is NaN or infinite.
func Value(v, fallback float64) float64 {
	if !Finite(v) {
		return fallback
	}
	return v
}

// Sum adds the valid values and skips the rest.
func Sum(values ...Float) float64 {
	var total float64
	for _, v := range values {
		if v.Valid {
			total += v.Value
		}
	}
	return total
}
