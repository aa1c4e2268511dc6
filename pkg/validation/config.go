package validation

import (
	"fmt"

	"github.com/iwvelando/decimath/pkg/scaled"
)

// ValidateRoundingMode checks that name is a known rounding mode.
func ValidateRoundingMode(name string) error {
	_, err := scaled.ParseRoundingMode(name)
	return err
}

// ValidateScales rejects negative scales and returns warnings for settings
// that are legal but lose digits.
func ValidateScales(scale, storageScale int32) ([]string, error) {
	if scale < 0 {
		return nil, fmt.Errorf("scale must not be negative, got %d", scale)
	}
	if storageScale < 0 {
		return nil, fmt.Errorf("storage scale must not be negative, got %d", storageScale)
	}

	var warnings []string
	if storageScale < scale {
		warnings = append(warnings, fmt.Sprintf(
			"Storage scale %d is lower than scale %d - stored values will be truncated to %d fractional digits",
			storageScale, scale, storageScale))
	}
	if scale == 0 {
		warnings = append(warnings, "Scale is 0 - divisions and percentages will round to whole numbers")
	}
	return warnings, nil
}

// MathConfig mirrors the math section of the configuration file.
type MathConfig struct {
	Scale        int32
	StorageScale int32
	RoundingMode string
}

// LimitsConfig mirrors the limits section of the configuration file. Zero
// fields select the built-in defaults.
type LimitsConfig struct {
	MaxScale    int32
	MaxExponent int
	MaxDigits   int
}

// ValidateLimits rejects negative limits and warns when the configured scale
// is larger than pipelines are allowed to request.
func ValidateLimits(limits LimitsConfig, scale int32) ([]string, error) {
	if limits.MaxScale < 0 || limits.MaxExponent < 0 || limits.MaxDigits < 0 {
		return nil, fmt.Errorf("limits must not be negative, got %+v", limits)
	}

	var warnings []string
	if limits.MaxScale > 0 && scale > limits.MaxScale {
		warnings = append(warnings, fmt.Sprintf(
			"Scale %d is above limits.maxScale %d - requests cannot ask for the configured scale explicitly",
			scale, limits.MaxScale))
	}
	return warnings, nil
}

// ConfigValidator validates a math configuration and collects warnings.
type ConfigValidator struct {
	Math         MathConfig
	OutputFormat string
	Limits       LimitsConfig
}

// ValidateAll validates the entire configuration. Errors stop validation;
// warnings describe settings that work but are probably unintended.
func (cv *ConfigValidator) ValidateAll() ([]string, error) {
	if err := ValidateRoundingMode(cv.Math.RoundingMode); err != nil {
		return nil, err
	}
	if cv.OutputFormat != "" {
		if err := ValidateOutputFormat(cv.OutputFormat); err != nil {
			return nil, err
		}
	}

	warnings, err := ValidateScales(cv.Math.Scale, cv.Math.StorageScale)
	if err != nil {
		return nil, err
	}
	limitWarnings, err := ValidateLimits(cv.Limits, cv.Math.Scale)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, limitWarnings...)

	mode, _ := scaled.ParseRoundingMode(cv.Math.RoundingMode)
	if mode == scaled.Unnecessary {
		warnings = append(warnings, "Rounding mode 'unnecessary' fails every inexact division and conversion")
	}
	return warnings, nil
}
