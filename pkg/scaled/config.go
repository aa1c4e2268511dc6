package scaled

import (
	"fmt"

	"github.com/iwvelando/decimath/pkg/constants"
)

// Config carries the defaults applied to values built through its Of method.
// Values copy the configuration at construction time; changing a Config
// later never affects values already built from it.
type Config struct {
	Scale        int32
	StorageScale int32
	RoundingMode RoundingMode
}

// DefaultConfig returns the package defaults: scale 2, storage scale 10 and
// rounding toward zero.
func DefaultConfig() Config {
	return Config{
		Scale:        constants.DefaultScale,
		StorageScale: constants.DefaultStorageScale,
		RoundingMode: Down,
	}
}

// Validate checks that scales are non-negative and the mode is known.
func (c Config) Validate() error {
	if c.Scale < 0 {
		return fmt.Errorf("scale must not be negative, got %d: %w", c.Scale, ErrOutOfRange)
	}
	if c.StorageScale < 0 {
		return fmt.Errorf("storage scale must not be negative, got %d: %w", c.StorageScale, ErrOutOfRange)
	}
	if !c.RoundingMode.Valid() {
		return fmt.Errorf("invalid rounding mode %d", int(c.RoundingMode))
	}
	return nil
}

// Option overrides one field of the Config used by Of.
type Option func(*Config)

// WithScale overrides the working scale.
func WithScale(scale int32) Option {
	return func(c *Config) { c.Scale = scale }
}

// WithStorageScale overrides the storage scale.
func WithStorageScale(storageScale int32) Option {
	return func(c *Config) { c.StorageScale = storageScale }
}

// WithRoundingMode overrides the rounding mode.
func WithRoundingMode(mode RoundingMode) Option {
	return func(c *Config) { c.RoundingMode = mode }
}

// Of builds a Decimal from value using c, adjusted by opts. The resulting
// configuration must pass Validate.
func (c Config) Of(value any, opts ...Option) (Decimal, error) {
	for _, opt := range opts {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Decimal{}, err
	}

	number, err := toDecimal(value)
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{
		number:       number,
		scale:        c.Scale,
		storageScale: c.StorageScale,
		mode:         c.RoundingMode,
	}, nil
}

// Average returns the arithmetic mean of values, divided at the scale and
// rounding mode of c.
func (c Config) Average(values ...any) (Decimal, error) {
	if len(values) == 0 {
		return Decimal{}, fmt.Errorf("average of no values: %w", ErrDivisionByZero)
	}

	sum, err := c.Of(0)
	if err != nil {
		return Decimal{}, err
	}
	for _, v := range values {
		if sum, err = sum.Sum(v); err != nil {
			return Decimal{}, err
		}
	}
	return sum.Divide(len(values))
}

// Of builds a Decimal from value using DefaultConfig adjusted by opts.
func Of(value any, opts ...Option) (Decimal, error) {
	return DefaultConfig().Of(value, opts...)
}

// MustOf is like Of but panics if value cannot be converted.
func MustOf(value any, opts ...Option) Decimal {
	d, err := Of(value, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Average returns the mean of values using DefaultConfig.
func Average(values ...any) (Decimal, error) {
	return DefaultConfig().Average(values...)
}
