package scaled

import (
	"encoding/json"
	"fmt"
	"math"
	"math/big"

	"github.com/cockroachdb/apd/v3"
	gvdecimal "github.com/govalues/decimal"
	"github.com/shopspring/decimal"
)

// toDecimal converts any supported operand into a shopspring decimal.
func toDecimal(value any) (decimal.Decimal, error) {
	switch v := value.(type) {
	case Decimal:
		return v.number, nil
	case *Decimal:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil *scaled.Decimal", ErrNumberFormat)
		}
		return v.number, nil
	case decimal.Decimal:
		return v, nil
	case *decimal.Decimal:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil *decimal.Decimal", ErrNumberFormat)
		}
		return *v, nil
	case apd.Decimal:
		return fromAPD(&v)
	case *apd.Decimal:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil *apd.Decimal", ErrNumberFormat)
		}
		return fromAPD(v)
	case gvdecimal.Decimal:
		return parseString(v.String())
	case *big.Int:
		if v == nil {
			return decimal.Decimal{}, fmt.Errorf("%w: nil *big.Int", ErrNumberFormat)
		}
		return decimal.NewFromBigInt(v, 0), nil
	case string:
		return parseString(v)
	case json.Number:
		return parseString(v.String())
	case float64:
		return fromFloat(v)
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrNumberFormat, v)
		}
		return decimal.NewFromFloat32(v), nil
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int8:
		return decimal.NewFromInt(int64(v)), nil
	case int16:
		return decimal.NewFromInt(int64(v)), nil
	case int32:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case uint:
		return fromUint64(uint64(v)), nil
	case uint8:
		return fromUint64(uint64(v)), nil
	case uint16:
		return fromUint64(uint64(v)), nil
	case uint32:
		return fromUint64(uint64(v)), nil
	case uint64:
		return fromUint64(v), nil
	case nil:
		return decimal.Decimal{}, fmt.Errorf("%w: nil value", ErrNumberFormat)
	}
	return decimal.Decimal{}, fmt.Errorf("%w: unsupported type %T", ErrNumberFormat, value)
}

func parseString(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %q", ErrNumberFormat, s)
	}
	return d, nil
}

// fromFloat uses the shortest decimal representation that round-trips to f.
func fromFloat(f float64) (decimal.Decimal, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrNumberFormat, f)
	}
	return decimal.NewFromFloat(f), nil
}

func fromUint64(u uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(u), 0)
}

func fromAPD(d *apd.Decimal) (decimal.Decimal, error) {
	if d.Form != apd.Finite {
		return decimal.Decimal{}, fmt.Errorf("%w: %s", ErrNumberFormat, d.String())
	}
	return parseString(d.Text('f'))
}

// ToAPD returns the full-precision magnitude as an apd decimal.
func (d Decimal) ToAPD() *apd.Decimal {
	out, _, err := apd.NewFromString(d.number.String())
	if err != nil {
		// shopspring always renders a valid decimal literal.
		panic(fmt.Sprintf("scaled: converting %s to apd: %v", d.number.String(), err))
	}
	return out
}
