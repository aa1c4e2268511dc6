package scaled

import (
	"fmt"
	"math/big"

	"github.com/iwvelando/decimath/pkg/format"
)

// ToStorageScale encodes d as an integer suitable for exact storage: d is
// rounded to its scale, multiplied by 10^storageScale and truncated. The
// stored integer can only be decoded with the same scale and storage scale.
func (d Decimal) ToStorageScale() (int64, error) {
	i, err := d.ToStorageBigInt()
	if err != nil {
		return 0, err
	}
	if !i.IsInt64() {
		return 0, fmt.Errorf("storage value %s does not fit in int64: %w", i.String(), ErrOverflow)
	}
	return i.Int64(), nil
}

// ToStorageBigInt is ToStorageScale without the int64 limit.
func (d Decimal) ToStorageBigInt() (*big.Int, error) {
	ensured, err := d.EnsureScale()
	if err != nil {
		return nil, err
	}
	return ensured.number.Shift(d.storageScale).Truncate(0).BigInt(), nil
}

// FromStorage decodes a value produced by ToStorageScale: d is divided by
// 10^storageScale and rounded to the scale.
func (d Decimal) FromStorage() (Decimal, error) {
	decoded, err := roundToScale(d.number.Shift(-d.storageScale), d.scale, d.mode)
	if err != nil {
		return Decimal{}, err
	}
	return d.with(decoded), nil
}

// Format renders ToString with thousandsSeparator between digit groups and
// decimalPoint before the fraction, e.g. Format(".", ",") gives "1.234,50".
func (d Decimal) Format(thousandsSeparator, decimalPoint string) (string, error) {
	s, err := d.ToString()
	if err != nil {
		return "", err
	}
	return format.Grouped(s, thousandsSeparator, decimalPoint), nil
}
