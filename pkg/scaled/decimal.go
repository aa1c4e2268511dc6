package scaled

import (
	"fmt"

	"github.com/iwvelando/decimath/pkg/constants"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(constants.PercentageMultiplier)

// Decimal is an arbitrary-precision decimal paired with the scale, storage
// scale and rounding mode its operations use.
//
// A Decimal is immutable: every operation returns a new value carrying the
// receiver's configuration, so one base value can feed any number of
// independent chains. Addition, subtraction, multiplication, powers,
// absolute value and negation keep full precision; only the operations that
// say so round to the scale.
//
// The zero value is 0 with scale 0, storage scale 0 and mode Down. Use Of
// or Config.Of to pick up configured defaults.
type Decimal struct {
	number       decimal.Decimal
	scale        int32
	storageScale int32
	mode         RoundingMode
}

// with returns a Decimal holding number and the receiver's configuration.
func (d Decimal) with(number decimal.Decimal) Decimal {
	d.number = number
	return d
}

// Scale returns a copy using scale for scale-bound operations. Callers
// taking scales from input should reject negative values first, as Config.Of
// does.
func (d Decimal) Scale(scale int32) Decimal {
	d.scale = scale
	return d
}

// StorageScale returns a copy using storageScale for storage conversions.
func (d Decimal) StorageScale(storageScale int32) Decimal {
	d.storageScale = storageScale
	return d
}

// RoundingMode returns a copy rounding with mode.
func (d Decimal) RoundingMode(mode RoundingMode) Decimal {
	d.mode = mode
	return d
}

// RoundDown returns a copy rounding toward zero.
func (d Decimal) RoundDown() Decimal {
	return d.RoundingMode(Down)
}

// RoundUp returns a copy rounding away from zero.
func (d Decimal) RoundUp() Decimal {
	return d.RoundingMode(Up)
}

// ScaleValue returns the configured scale.
func (d Decimal) ScaleValue() int32 { return d.scale }

// StorageScaleValue returns the configured storage scale.
func (d Decimal) StorageScaleValue() int32 { return d.storageScale }

// Mode returns the configured rounding mode.
func (d Decimal) Mode() RoundingMode { return d.mode }

// Config returns the configuration carried by d.
func (d Decimal) Config() Config {
	return Config{Scale: d.scale, StorageScale: d.storageScale, RoundingMode: d.mode}
}

// Sum returns d + x.
func (d Decimal) Sum(x any) (Decimal, error) {
	other, err := toDecimal(x)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(d.number.Add(other)), nil
}

// Subtract returns d - x.
func (d Decimal) Subtract(x any) (Decimal, error) {
	other, err := toDecimal(x)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(d.number.Sub(other)), nil
}

// Multiply returns d * x.
func (d Decimal) Multiply(x any) (Decimal, error) {
	other, err := toDecimal(x)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(d.number.Mul(other)), nil
}

// Divide returns d / x rounded to the scale.
func (d Decimal) Divide(x any) (Decimal, error) {
	other, err := toDecimal(x)
	if err != nil {
		return Decimal{}, err
	}
	q, err := quoToScale(d.number, other, d.scale, d.mode)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(q), nil
}

// MaxExponent is the largest exponent magnitude Pow accepts.
const MaxExponent = 1_000_000

// Pow returns d raised to exponent. Non-negative exponents are exact;
// negative exponents return the reciprocal rounded to the scale. Exponents
// beyond ±MaxExponent fail with ErrOutOfRange.
func (d Decimal) Pow(exponent int) (Decimal, error) {
	n := exponent
	if n < 0 {
		n = -n
	}
	if n > MaxExponent {
		return Decimal{}, fmt.Errorf("exponent %d exceeds ±%d: %w", exponent, MaxExponent, ErrOutOfRange)
	}

	result := decimal.NewFromInt(1)
	base := d.number
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}

	if exponent >= 0 {
		return d.with(result), nil
	}
	q, err := quoToScale(decimal.NewFromInt(1), result, d.scale, d.mode)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(q), nil
}

// Ceil rounds toward positive infinity to an integer, whatever the
// configured mode.
func (d Decimal) Ceil() Decimal {
	return d.with(d.number.RoundCeil(0))
}

// Floor rounds toward negative infinity to an integer, whatever the
// configured mode.
func (d Decimal) Floor() Decimal {
	return d.with(d.number.RoundFloor(0))
}

// Round rounds to precision fractional digits with mode[0] when given, the
// configured mode otherwise. The returned value keeps the receiver's mode.
func (d Decimal) Round(precision int32, mode ...RoundingMode) (Decimal, error) {
	m := d.mode
	if len(mode) > 0 {
		m = mode[0]
	}
	rounded, err := roundToScale(d.number, precision, m)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(rounded), nil
}

// Absolute returns |d|.
func (d Decimal) Absolute() Decimal {
	return d.with(d.number.Abs())
}

// Negative returns d when it is already negative and -d otherwise. Zero
// stays zero.
func (d Decimal) Negative() Decimal {
	if d.number.Sign() < 0 {
		return d
	}
	return d.with(d.number.Neg())
}

// AddPercentage returns d + d*p/100, the percentage term being rounded to
// the scale before it is added.
func (d Decimal) AddPercentage(p any) (Decimal, error) {
	term, err := d.percentageTerm(p)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(d.number.Add(term)), nil
}

// SubtractPercentage returns d - d*p/100, the percentage term being rounded
// to the scale before it is subtracted.
func (d Decimal) SubtractPercentage(p any) (Decimal, error) {
	term, err := d.percentageTerm(p)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(d.number.Sub(term)), nil
}

func (d Decimal) percentageTerm(p any) (decimal.Decimal, error) {
	percentage, err := toDecimal(p)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return roundToScale(d.number.Mul(percentage).Shift(-2), d.scale, d.mode)
}

// EnsureScale returns d rounded to its scale.
func (d Decimal) EnsureScale() (Decimal, error) {
	return d.Round(d.scale)
}

// Cmp compares d with other at full precision and returns -1, 0 or 1.
func (d Decimal) Cmp(other Decimal) int {
	return d.number.Cmp(other.number)
}

// Compare compares d with x at full precision; the scale plays no part.
func (d Decimal) Compare(x any) (int, error) {
	other, err := toDecimal(x)
	if err != nil {
		return 0, err
	}
	return d.number.Cmp(other), nil
}

// IsLessThan reports whether d < x.
func (d Decimal) IsLessThan(x any) (bool, error) {
	c, err := d.Compare(x)
	return c < 0, err
}

// IsLessThanOrEqual reports whether d <= x.
func (d Decimal) IsLessThanOrEqual(x any) (bool, error) {
	c, err := d.Compare(x)
	return err == nil && c <= 0, err
}

// IsGreaterThan reports whether d > x.
func (d Decimal) IsGreaterThan(x any) (bool, error) {
	c, err := d.Compare(x)
	return c > 0, err
}

// IsGreaterThanOrEqual reports whether d >= x.
func (d Decimal) IsGreaterThanOrEqual(x any) (bool, error) {
	c, err := d.Compare(x)
	return err == nil && c >= 0, err
}

// IsEqual reports whether d == x.
func (d Decimal) IsEqual(x any) (bool, error) {
	c, err := d.Compare(x)
	return err == nil && c == 0, err
}

// IsZero reports whether d rounds to zero at its scale. Under Unnecessary
// only an exact zero qualifies.
func (d Decimal) IsZero() bool {
	rounded, err := roundToScale(d.number, d.scale, d.mode)
	if err != nil {
		return false
	}
	return rounded.IsZero()
}

// IsNotZero is the negation of IsZero.
func (d Decimal) IsNotZero() bool {
	return !d.IsZero()
}

// ToPercentageOf returns p percent of d at full precision.
func (d Decimal) ToPercentageOf(p any) (Decimal, error) {
	percentage, err := toDecimal(p)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(d.number.Mul(percentage.Shift(-2))), nil
}

// PercentageOf returns what percent of total d is, rounded to the scale.
func (d Decimal) PercentageOf(total any) (float64, error) {
	t, err := toDecimal(total)
	if err != nil {
		return 0, err
	}
	pct, err := quoToScale(d.number.Mul(hundred), t, d.scale, d.mode)
	if err != nil {
		return 0, err
	}
	return pct.InexactFloat64(), nil
}

// DifferenceInPercentage returns |d - x| / |d| * 100 rounded to the scale.
// Two zeros differ by 0%, and any non-zero x differs from a zero d by 100%.
func (d Decimal) DifferenceInPercentage(x any) (float64, error) {
	other, err := toDecimal(x)
	if err != nil {
		return 0, err
	}
	if d.number.IsZero() {
		if other.IsZero() {
			return 0, nil
		}
		return 100, nil
	}

	diff := d.number.Sub(other).Abs().Mul(hundred)
	pct, err := quoToScale(diff, d.number.Abs(), d.scale, d.mode)
	if err != nil {
		return 0, err
	}
	return pct.InexactFloat64(), nil
}

// ToNumber returns the full-precision magnitude.
func (d Decimal) ToNumber() decimal.Decimal {
	return d.number
}

// ToInt rounds to an integer with the configured mode.
func (d Decimal) ToInt() (int64, error) {
	rounded, err := roundToScale(d.number, 0, d.mode)
	if err != nil {
		return 0, err
	}
	i := rounded.BigInt()
	if !i.IsInt64() {
		return 0, fmt.Errorf("%s does not fit in int64: %w", i.String(), ErrOverflow)
	}
	return i.Int64(), nil
}

// ToFloat rounds to the scale and converts to float64. Magnitudes beyond
// float64 precision lose digits.
func (d Decimal) ToFloat() (float64, error) {
	rounded, err := roundToScale(d.number, d.scale, d.mode)
	if err != nil {
		return 0, err
	}
	return rounded.InexactFloat64(), nil
}

// ToString rounds to the scale and renders exactly scale fractional digits.
func (d Decimal) ToString() (string, error) {
	rounded, err := roundToScale(d.number, d.scale, d.mode)
	if err != nil {
		return "", err
	}
	return rounded.StringFixed(d.scale), nil
}

// String implements fmt.Stringer. It falls back to the unrounded magnitude
// when the rounding mode refuses to round.
func (d Decimal) String() string {
	s, err := d.ToString()
	if err != nil {
		return d.number.String()
	}
	return s
}

// MarshalJSON renders ToString as a JSON string.
func (d Decimal) MarshalJSON() ([]byte, error) {
	s, err := d.ToString()
	if err != nil {
		return nil, err
	}
	return []byte(`"` + s + `"`), nil
}
