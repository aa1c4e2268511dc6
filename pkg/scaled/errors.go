package scaled

import "errors"

var (
	// ErrNumberFormat is returned when a value cannot be read as a decimal.
	ErrNumberFormat = errors.New("invalid decimal number")

	// ErrDivisionByZero is returned by divisions with a zero divisor.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrRoundingRequired is returned when a result has to be rounded but the
	// rounding mode only accepts exact results.
	ErrRoundingRequired = errors.New("rounding necessary")

	// ErrOverflow is returned when a result does not fit the requested
	// native integer type.
	ErrOverflow = errors.New("integer overflow")

	// ErrOutOfRange is returned for scales below zero and for exponents
	// beyond MaxExponent.
	ErrOutOfRange = errors.New("argument out of range")
)
