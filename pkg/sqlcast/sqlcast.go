// Package sqlcast adapts scaled decimals to database/sql columns.
//
// Both adapters are nullable. Scanning reuses the configuration already
// carried by the target's Decimal, so seed targets with FloatScaleColumn or
// StorageIntColumn before passing them to Scan.
package sqlcast

import (
	"database/sql/driver"
	"fmt"

	"github.com/iwvelando/decimath/pkg/scaled"
)

// FloatScale stores a decimal as the text of its value rounded to scale,
// e.g. "12.30". Reading yields the value rounded to the same scale.
type FloatScale struct {
	Decimal scaled.Decimal
	Valid   bool
}

// FloatScaleColumn returns an empty FloatScale ready to scan with conf.
func FloatScaleColumn(conf scaled.Config) *FloatScale {
	d, _ := conf.Of(0)
	return &FloatScale{Decimal: d}
}

// NewFloatScale wraps a non-null value.
func NewFloatScale(d scaled.Decimal) FloatScale {
	return FloatScale{Decimal: d, Valid: true}
}

// Value implements driver.Valuer.
func (f FloatScale) Value() (driver.Value, error) {
	if !f.Valid {
		return nil, nil
	}
	ensured, err := f.Decimal.EnsureScale()
	if err != nil {
		return nil, fmt.Errorf("encoding float scale column: %w", err)
	}
	return ensured.ToString()
}

// Scan implements sql.Scanner.
func (f *FloatScale) Scan(src any) error {
	if src == nil {
		f.Valid = false
		return nil
	}
	d, err := fromColumn(f.Decimal.Config(), src)
	if err != nil {
		return fmt.Errorf("scanning float scale column: %w", err)
	}
	if d, err = d.EnsureScale(); err != nil {
		return fmt.Errorf("scanning float scale column: %w", err)
	}
	f.Decimal, f.Valid = d, true
	return nil
}

// StorageInt stores a decimal as the integer produced by ToStorageScale.
// Reading decodes with FromStorage, so the column must always be read with
// the scale and storage scale it was written with.
type StorageInt struct {
	Decimal scaled.Decimal
	Valid   bool
}

// StorageIntColumn returns an empty StorageInt ready to scan with conf.
func StorageIntColumn(conf scaled.Config) *StorageInt {
	d, _ := conf.Of(0)
	return &StorageInt{Decimal: d}
}

// NewStorageInt wraps a non-null value.
func NewStorageInt(d scaled.Decimal) StorageInt {
	return StorageInt{Decimal: d, Valid: true}
}

// Value implements driver.Valuer.
func (s StorageInt) Value() (driver.Value, error) {
	if !s.Valid {
		return nil, nil
	}
	i, err := s.Decimal.ToStorageScale()
	if err != nil {
		return nil, fmt.Errorf("encoding storage column: %w", err)
	}
	return i, nil
}

// Scan implements sql.Scanner.
func (s *StorageInt) Scan(src any) error {
	if src == nil {
		s.Valid = false
		return nil
	}
	raw, err := fromColumn(s.Decimal.Config(), src)
	if err != nil {
		return fmt.Errorf("scanning storage column: %w", err)
	}
	d, err := raw.FromStorage()
	if err != nil {
		return fmt.Errorf("scanning storage column: %w", err)
	}
	s.Decimal, s.Valid = d, true
	return nil
}

// fromColumn converts the driver value types a database may hand back.
func fromColumn(conf scaled.Config, src any) (scaled.Decimal, error) {
	switch v := src.(type) {
	case []byte:
		return conf.Of(string(v))
	case string, int64, float64:
		return conf.Of(v)
	}
	return scaled.Decimal{}, fmt.Errorf("%w: unsupported column type %T", scaled.ErrNumberFormat, src)
}
