package pipeline

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iwvelando/decimath/pkg/constants"
	"github.com/iwvelando/decimath/pkg/scaled"
	"github.com/shopspring/decimal"
)

// ErrLimitExceeded is returned when a pipeline asks for more digits, a larger
// scale or a larger exponent than its Limits allow.
var ErrLimitExceeded = errors.New("pipeline limit exceeded")

// Limits bounds the work one pipeline may request. Zero fields fall back to
// the defaults in pkg/constants.
type Limits struct {
	MaxScale    int32 // scale, storage scale and |round precision|
	MaxExponent int   // |exponent| of pow steps
	MaxDigits   int   // digits of any value written without an exponent
}

// DefaultLimits returns the limits used by NewEvaluator.
func DefaultLimits() Limits {
	return Limits{
		MaxScale:    constants.DefaultMaxScale,
		MaxExponent: constants.DefaultMaxExponent,
		MaxDigits:   constants.DefaultMaxDigits,
	}
}

func (l Limits) withDefaults() Limits {
	defaults := DefaultLimits()
	if l.MaxScale <= 0 {
		l.MaxScale = defaults.MaxScale
	}
	if l.MaxExponent <= 0 {
		l.MaxExponent = defaults.MaxExponent
	}
	if l.MaxDigits <= 0 {
		l.MaxDigits = defaults.MaxDigits
	}
	return l
}

// fixedDigits is the number of digits n needs in plain notation.
func fixedDigits(n decimal.Decimal) int {
	exp := int(n.Exponent())
	if exp < 0 {
		exp = -exp
	}
	return n.NumDigits() + exp
}

func (l Limits) checkScale(what string, scale int32) error {
	if scale > l.MaxScale {
		return fmt.Errorf("%s %d exceeds %d: %w", what, scale, l.MaxScale, ErrLimitExceeded)
	}
	return nil
}

// checkLiteral rejects decimal literals too long to expand. Malformed
// literals pass and fail later with scaled.ErrNumberFormat.
func (l Limits) checkLiteral(literal string) error {
	n, err := decimal.NewFromString(strings.TrimSpace(literal))
	if err != nil {
		return nil
	}
	if digits := fixedDigits(n); digits > l.MaxDigits {
		return fmt.Errorf("%q needs %d digits, more than %d: %w", literal, digits, l.MaxDigits, ErrLimitExceeded)
	}
	return nil
}

func (l Limits) checkValue(d scaled.Decimal) error {
	if digits := fixedDigits(d.ToNumber()); digits > l.MaxDigits {
		return fmt.Errorf("result needs %d digits, more than %d: %w", digits, l.MaxDigits, ErrLimitExceeded)
	}
	return nil
}

// checkDefinition validates every literal of def before anything is computed.
func (l Limits) checkDefinition(def Definition, steps []Step) error {
	if def.Scale != nil {
		if err := l.checkScale("scale", *def.Scale); err != nil {
			return err
		}
	}
	if def.StorageScale != nil {
		if err := l.checkScale("storage scale", *def.StorageScale); err != nil {
			return err
		}
	}
	if err := l.checkLiteral(def.Value); err != nil {
		return fmt.Errorf("start value: %w", err)
	}

	for i, step := range steps {
		if err := l.checkStep(step); err != nil {
			return fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}
	}
	return nil
}

func (l Limits) checkStep(step Step) error {
	if !step.HasArg {
		return nil
	}

	switch step.Name {
	case "rounding":
		return nil
	case "pow":
		n, err := strconv.Atoi(strings.TrimSpace(step.Arg))
		if err != nil {
			return nil
		}
		if n > l.MaxExponent || n < -l.MaxExponent {
			return fmt.Errorf("exponent %d exceeds ±%d: %w", n, l.MaxExponent, ErrLimitExceeded)
		}
		return nil
	case "scale", "storage-scale", "round":
		n, err := strconv.ParseInt(strings.TrimSpace(step.Arg), 10, 64)
		if err != nil {
			return nil
		}
		if n < 0 {
			n = -n
		}
		if n > int64(l.MaxScale) {
			return fmt.Errorf("%s %s exceeds %d: %w", step.Name, step.Arg, l.MaxScale, ErrLimitExceeded)
		}
		return nil
	}

	for _, literal := range strings.Split(step.Arg, ",") {
		if err := l.checkLiteral(literal); err != nil {
			return err
		}
	}
	return nil
}

// checkPow estimates the digits of d^exponent before it is computed.
func (l Limits) checkPow(d scaled.Decimal, step Step) error {
	if step.Name != "pow" {
		return nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(step.Arg))
	if err != nil {
		return nil
	}
	if n < 0 {
		n = -n
	}
	if estimate := fixedDigits(d.ToNumber()) * n; estimate > l.MaxDigits {
		return fmt.Errorf("pow:%d would need about %d digits, more than %d: %w", n, estimate, l.MaxDigits, ErrLimitExceeded)
	}
	return nil
}
