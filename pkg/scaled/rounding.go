package scaled

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RoundingMode is the policy used whenever a result has to be reduced to a
// fixed number of fractional digits.
type RoundingMode int

const (
	// Down truncates toward zero.
	Down RoundingMode = iota
	// Up rounds away from zero.
	Up
	// HalfUp rounds to the nearest neighbour, ties away from zero.
	HalfUp
	// HalfDown rounds to the nearest neighbour, ties toward zero.
	HalfDown
	// HalfEven rounds to the nearest neighbour, ties to the even digit.
	HalfEven
	// Ceiling rounds toward positive infinity.
	Ceiling
	// Floor rounds toward negative infinity.
	Floor
	// Unnecessary asserts the result is exact and fails otherwise.
	Unnecessary
)

var roundingModeNames = [...]string{
	Down:        "down",
	Up:          "up",
	HalfUp:      "half_up",
	HalfDown:    "half_down",
	HalfEven:    "half_even",
	Ceiling:     "ceiling",
	Floor:       "floor",
	Unnecessary: "unnecessary",
}

// RoundingModes returns every supported mode in declaration order.
func RoundingModes() []RoundingMode {
	return []RoundingMode{Down, Up, HalfUp, HalfDown, HalfEven, Ceiling, Floor, Unnecessary}
}

// ParseRoundingMode maps a mode name such as "half_up" to its RoundingMode.
// Matching ignores case, and hyphens are accepted in place of underscores.
func ParseRoundingMode(name string) (RoundingMode, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, n := range roundingModeNames {
		if n == normalized {
			return RoundingMode(i), nil
		}
	}
	return Down, fmt.Errorf("unknown rounding mode %q", name)
}

// Valid reports whether m is one of the declared modes.
func (m RoundingMode) Valid() bool {
	return m >= Down && m <= Unnecessary
}

func (m RoundingMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("RoundingMode(%d)", int(m))
	}
	return roundingModeNames[m]
}

// MarshalText implements encoding.TextMarshaler.
func (m RoundingMode) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid rounding mode %d", int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *RoundingMode) UnmarshalText(text []byte) error {
	parsed, err := ParseRoundingMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// roundsAway decides whether a truncated result must move one unit away from
// zero. neg is the sign of the exact result, odd reports whether the last
// kept digit is odd, and half compares the discarded fraction with one half
// of a unit (-1 below, 0 exactly, 1 above). It is only called for inexact
// results.
func (m RoundingMode) roundsAway(neg, odd bool, half int) (bool, error) {
	switch m {
	case Down:
		return false, nil
	case Up:
		return true, nil
	case HalfUp:
		return half >= 0, nil
	case HalfDown:
		return half > 0, nil
	case HalfEven:
		return half > 0 || (half == 0 && odd), nil
	case Ceiling:
		return !neg, nil
	case Floor:
		return neg, nil
	case Unnecessary:
		return false, ErrRoundingRequired
	}
	return false, fmt.Errorf("invalid rounding mode %d", int(m))
}

var (
	half = decimal.New(5, -1)
	two  = decimal.NewFromInt(2)
)

// roundToScale reduces x to scale fractional digits using mode. A negative
// scale rounds to the left of the decimal point.
func roundToScale(x decimal.Decimal, scale int32, mode RoundingMode) (decimal.Decimal, error) {
	truncated := x.Shift(scale).Truncate(0)
	discarded := x.Shift(scale).Sub(truncated)
	if discarded.IsZero() {
		return truncated.Shift(-scale), nil
	}

	neg := x.Sign() < 0
	away, err := mode.roundsAway(neg, isOdd(truncated), discarded.Abs().Cmp(half))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("rounding %s to %d digits: %w", x.String(), scale, err)
	}
	if away {
		truncated = stepAway(truncated, neg)
	}
	return truncated.Shift(-scale), nil
}

// quoToScale divides x by y, keeping scale fractional digits and rounding
// with mode. The remainder decides the rounding so repeating expansions are
// never mistaken for exact halves.
func quoToScale(x, y decimal.Decimal, scale int32, mode RoundingMode) (decimal.Decimal, error) {
	if y.IsZero() {
		return decimal.Decimal{}, fmt.Errorf("dividing %s: %w", x.String(), ErrDivisionByZero)
	}

	q, r := x.QuoRem(y, scale)
	if r.IsZero() {
		return q, nil
	}

	neg := x.Sign()*y.Sign() < 0
	unit := y.Abs().Shift(-scale)
	cmpHalf := r.Abs().Mul(two).Cmp(unit)
	away, err := mode.roundsAway(neg, isOdd(q.Shift(scale)), cmpHalf)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("dividing %s by %s to %d digits: %w", x.String(), y.String(), scale, err)
	}
	if away {
		q = stepAway(q.Shift(scale), neg).Shift(-scale)
	}
	return q, nil
}

// isOdd reports whether the integral value i ends in an odd digit.
func isOdd(i decimal.Decimal) bool {
	return i.BigInt().Bit(0) == 1
}

func stepAway(i decimal.Decimal, neg bool) decimal.Decimal {
	if neg {
		return i.Sub(decimal.NewFromInt(1))
	}
	return i.Add(decimal.NewFromInt(1))
}
