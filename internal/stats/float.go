package stats

import (
	"math"
	"strconv"
)

// Float is an optional number. The zero value is missing.
type Float struct {
	Value float64
	Valid bool
}

// Missing is the absent value.
var Missing = Float{}

// Some wraps v. NaN and ±Inf are treated as missing.
func Some(v float64) Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Missing
	}
	return Float{Value: v, Valid: true}
}

// Maybe wraps v when ok is true.
func Maybe(v float64, ok bool) Float {
	if !ok {
		return Missing
	}
	return Some(v)
}

// String renders the shortest exact representation, or "" when missing.
func (f Float) String() string {
	if !f.Valid {
		return ""
	}
	return strconv.FormatFloat(f.Value, 'f', -1, 64)
}

// ParseFloat is the inverse of String: "" parses as missing.
func ParseFloat(s string) (Float, error) {
	if s == "" {
		return Missing, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Missing, err
	}
	return Some(v), nil
}
