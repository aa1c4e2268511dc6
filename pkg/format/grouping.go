// Package format renders fixed-point decimal strings for display.
package format

import (
	"strings"
)

// Grouped inserts thousandsSeparator between groups of three integer digits
// of a fixed-point string such as "-1234567.50" and replaces the "." with
// decimalPoint (e.g., "-1,234,567.50").
func Grouped(fixed, thousandsSeparator, decimalPoint string) string {
	sign := ""
	if strings.HasPrefix(fixed, "-") || strings.HasPrefix(fixed, "+") {
		if fixed[0] == '-' {
			sign = "-"
		}
		fixed = fixed[1:]
	}

	intPart, decPart, hasFraction := strings.Cut(fixed, ".")
	intPart = groupDigits(intPart, thousandsSeparator)

	if !hasFraction {
		return sign + intPart
	}
	return sign + intPart + decimalPoint + decPart
}

func groupDigits(intPart, separator string) string {
	if len(intPart) <= 3 || separator == "" {
		return intPart
	}

	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteString(separator)
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
