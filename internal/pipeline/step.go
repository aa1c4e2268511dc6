package pipeline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/decimath/pkg/scaled"
)

// Step is one parsed pipeline operation, written name or name:arg.
type Step struct {
	Name   string
	Arg    string
	HasArg bool
}

// String renders the step back into its textual form.
func (s Step) String() string {
	if s.HasArg {
		return s.Name + ":" + s.Arg
	}
	return s.Name
}

type argKind int

const (
	noArg argKind = iota
	requiredArg
	optionalArg
)

type operation struct {
	arg   argKind
	apply func(d scaled.Decimal, arg string) (scaled.Decimal, error)
}

func binary(fn func(scaled.Decimal, any) (scaled.Decimal, error)) operation {
	return operation{arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		return fn(d, arg)
	}}
}

func unary(fn func(scaled.Decimal) scaled.Decimal) operation {
	return operation{arg: noArg, apply: func(d scaled.Decimal, _ string) (scaled.Decimal, error) {
		return fn(d), nil
	}}
}

func parseInt32(arg string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("expected an integer argument, got %q", arg)
	}
	return int32(n), nil
}

func parseScale(arg string) (int32, error) {
	scale, err := parseInt32(arg)
	if err != nil {
		return 0, err
	}
	if scale < 0 {
		return 0, fmt.Errorf("scale must not be negative, got %d: %w", scale, scaled.ErrOutOfRange)
	}
	return scale, nil
}

// Percentages produced by the analytics steps re-enter the chain as decimals
// carrying the current configuration.
func fromPercentage(d scaled.Decimal, pct float64, err error) (scaled.Decimal, error) {
	if err != nil {
		return scaled.Decimal{}, err
	}
	return d.Config().Of(pct)
}

var operations = map[string]operation{
	"add":                 binary(scaled.Decimal.Sum),
	"sum":                 binary(scaled.Decimal.Sum),
	"subtract":            binary(scaled.Decimal.Subtract),
	"multiply":            binary(scaled.Decimal.Multiply),
	"divide":              binary(scaled.Decimal.Divide),
	"add-percentage":      binary(scaled.Decimal.AddPercentage),
	"subtract-percentage": binary(scaled.Decimal.SubtractPercentage),
	"to-percentage-of":    binary(scaled.Decimal.ToPercentageOf),
	"absolute":            unary(scaled.Decimal.Absolute),
	"negative":            unary(scaled.Decimal.Negative),
	"ceil":                unary(scaled.Decimal.Ceil),
	"floor":               unary(scaled.Decimal.Floor),
	"round-up":            unary(scaled.Decimal.RoundUp),
	"round-down":          unary(scaled.Decimal.RoundDown),
	"ensure-scale": {arg: noArg, apply: func(d scaled.Decimal, _ string) (scaled.Decimal, error) {
		return d.EnsureScale()
	}},
	"from-storage": {arg: noArg, apply: func(d scaled.Decimal, _ string) (scaled.Decimal, error) {
		return d.FromStorage()
	}},
	"pow": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		n, err := parseInt32(arg)
		if err != nil {
			return scaled.Decimal{}, err
		}
		return d.Pow(int(n))
	}},
	"round": {arg: optionalArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		if arg == "" {
			return d.Round(0)
		}
		precision, err := parseInt32(arg)
		if err != nil {
			return scaled.Decimal{}, err
		}
		return d.Round(precision)
	}},
	"scale": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		scale, err := parseScale(arg)
		if err != nil {
			return scaled.Decimal{}, err
		}
		return d.Scale(scale), nil
	}},
	"storage-scale": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		scale, err := parseScale(arg)
		if err != nil {
			return scaled.Decimal{}, err
		}
		return d.StorageScale(scale), nil
	}},
	"rounding": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		mode, err := scaled.ParseRoundingMode(arg)
		if err != nil {
			return scaled.Decimal{}, err
		}
		return d.RoundingMode(mode), nil
	}},
	"percentage-of": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		pct, err := d.PercentageOf(arg)
		return fromPercentage(d, pct, err)
	}},
	"difference-in-percentage": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		pct, err := d.DifferenceInPercentage(arg)
		return fromPercentage(d, pct, err)
	}},
	"average": {arg: requiredArg, apply: func(d scaled.Decimal, arg string) (scaled.Decimal, error) {
		values := []any{d}
		for _, v := range strings.Split(arg, ",") {
			values = append(values, strings.TrimSpace(v))
		}
		return d.Config().Average(values...)
	}},
}

// Operations returns the supported step names in sorted order.
func Operations() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseStep parses one step and checks its name and argument arity.
func ParseStep(text string) (Step, error) {
	trimmed := strings.TrimSpace(text)
	name, arg, hasArg := strings.Cut(trimmed, ":")
	name = strings.ToLower(strings.TrimSpace(name))
	step := Step{Name: name, Arg: strings.TrimSpace(arg), HasArg: hasArg}

	op, ok := operations[name]
	if !ok {
		return Step{}, fmt.Errorf("unknown operation %q", name)
	}
	switch op.arg {
	case noArg:
		if hasArg {
			return Step{}, fmt.Errorf("operation %s takes no argument, got %q", name, step.Arg)
		}
	case requiredArg:
		if step.Arg == "" {
			return Step{}, fmt.Errorf("operation %s requires an argument", name)
		}
	}
	return step, nil
}

// ParseSteps parses every step, stopping at the first invalid one.
func ParseSteps(texts []string) ([]Step, error) {
	steps := make([]Step, 0, len(texts))
	for i, text := range texts {
		step, err := ParseStep(text)
		if err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
		steps = append(steps, step)
	}
	return steps, nil
}

func (s Step) apply(d scaled.Decimal) (scaled.Decimal, error) {
	return operations[s.Name].apply(d, s.Arg)
}
