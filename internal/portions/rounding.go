package portions

import (
	"fmt"
	"math"
	"strings"
)

// RoundingMode selects how a real value becomes an integer.
type RoundingMode string

const (
	// RoundHalfEven is banker's rounding: 2.5 -> 2, 3.5 -> 4.
	RoundHalfEven RoundingMode = "half_even"
	// RoundHalfAway rounds ties away from zero: 2.5 -> 3, -2.5 -> -3.
	RoundHalfAway RoundingMode = "half_away"
	// RoundTruncate drops the fractional part.
	RoundTruncate RoundingMode = "truncate"
)

// ParseRoundingMode accepts the mode names plus the aliases
// "bankers" (half_even) and "nearest" (half_away).
func ParseRoundingMode(s string) (RoundingMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "half_even", "bankers":
		return RoundHalfEven, nil
	case "half_away", "nearest":
		return RoundHalfAway, nil
	case "truncate", "trunc":
		return RoundTruncate, nil
	default:
		return "", fmt.Errorf("unknown rounding mode %q", s)
	}
}

// Apply rounds v. An empty mode behaves like RoundHalfEven.
func (m RoundingMode) Apply(v float64) float64 {
	switch m {
	case RoundHalfAway:
		return math.Round(v)
	case RoundTruncate:
		return math.Trunc(v)
	default:
		return math.RoundToEven(v)
	}
}

// Int rounds v and converts it to int. Values beyond the int range
// saturate at math.MaxInt or math.MinInt and NaN becomes 0, so the sign
// of an overflowed total is preserved.
func (m RoundingMode) Int(v float64) int {
	r := m.Apply(v)
	switch {
	case math.IsNaN(r):
		return 0
	case r >= maxIntFloat:
		return math.MaxInt
	case r <= minIntFloat:
		return math.MinInt
	}
	return int(r)
}

// 2^63 and -2^63; float64(math.MaxInt) rounds up to 2^63.
const (
	maxIntFloat = float64(math.MaxInt)
	minIntFloat = float64(math.MinInt)
)
