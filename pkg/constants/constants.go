// Package constants provides shared constants for decimath.
package constants

// Math defaults applied when neither the configuration file nor the caller
// sets a value.
const (
	// DefaultScale is the number of fractional digits kept by scale-bound
	// operations (2 decimal places, i.e. real currency)
	DefaultScale = 2

	// DefaultStorageScale is the power of ten used to encode values as
	// integers for storage
	DefaultStorageScale = 10

	// DefaultRoundingMode is the name of the default rounding mode
	DefaultRoundingMode = "down"

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100
)

// Pipeline limits bounding the work a single request may ask for.
const (
	// DefaultMaxScale is the largest scale, storage scale or rounding
	// precision a pipeline may set
	DefaultMaxScale = 1000

	// DefaultMaxExponent is the largest exponent magnitude a pow step may use
	DefaultMaxExponent = 1000

	// DefaultMaxDigits is the largest number of digits a pipeline value may
	// need when written out without an exponent
	DefaultMaxDigits = 10000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024
)
