// Package pipeline evaluates chains of decimal operations such as
// "100 add-percentage:10 divide:3 round:1" against the scaled engine.
package pipeline

import (
	"fmt"
	"strings"

	"github.com/iwvelando/decimath/pkg/scaled"
	"go.uber.org/zap"
)

// Definition describes one pipeline: a start value, its steps, and optional
// overrides of the evaluator's configuration.
type Definition struct {
	Name         string   `yaml:"name,omitempty" json:"name,omitempty"`
	Value        string   `yaml:"value" json:"value"`
	Steps        []string `yaml:"steps" json:"steps"`
	Scale        *int32   `yaml:"scale,omitempty" json:"scale,omitempty"`
	StorageScale *int32   `yaml:"storageScale,omitempty" json:"storageScale,omitempty"`
	RoundingMode string   `yaml:"roundingMode,omitempty" json:"roundingMode,omitempty"`
}

// FromArgs builds a Definition from command line arguments: the start value
// followed by its steps.
func FromArgs(args []string) (Definition, error) {
	if len(args) == 0 || strings.TrimSpace(args[0]) == "" {
		return Definition{}, fmt.Errorf("a start value is required")
	}
	return Definition{Value: args[0], Steps: args[1:]}, nil
}

// Options resolves the definition's overrides into engine options.
func (d Definition) Options() ([]scaled.Option, error) {
	var opts []scaled.Option
	if d.Scale != nil {
		opts = append(opts, scaled.WithScale(*d.Scale))
	}
	if d.StorageScale != nil {
		opts = append(opts, scaled.WithStorageScale(*d.StorageScale))
	}
	if d.RoundingMode != "" {
		mode, err := scaled.ParseRoundingMode(d.RoundingMode)
		if err != nil {
			return nil, err
		}
		opts = append(opts, scaled.WithRoundingMode(mode))
	}
	return opts, nil
}

// StepResult records the value after one step.
type StepResult struct {
	Step  string `json:"step"`
	Value string `json:"value"`
}

// Result holds the final value of a pipeline and its intermediate values.
type Result struct {
	Name  string
	Value scaled.Decimal
	Steps []StepResult
}

// Summary is the rendered form of a Result.
type Summary struct {
	Name    string       `json:"name,omitempty"`
	Value   string       `json:"value"`
	Float   float64      `json:"float"`
	Storage string       `json:"storage"`
	Steps   []StepResult `json:"steps"`
}

// Summarize renders the final value at its scale, as a float and as its
// storage integer.
func (r Result) Summarize() (Summary, error) {
	value, err := r.Value.ToString()
	if err != nil {
		return Summary{}, err
	}
	f, err := r.Value.ToFloat()
	if err != nil {
		return Summary{}, err
	}
	storage, err := r.Value.ToStorageBigInt()
	if err != nil {
		return Summary{}, err
	}

	steps := r.Steps
	if steps == nil {
		steps = []StepResult{}
	}
	return Summary{Name: r.Name, Value: value, Float: f, Storage: storage.String(), Steps: steps}, nil
}

// Evaluator runs pipelines with a base configuration.
type Evaluator struct {
	logger *zap.Logger
	conf   scaled.Config
	limits Limits
}

// NewEvaluator creates a new evaluator with the given logger and base
// configuration, bounded by DefaultLimits. If logger is nil, it will use a
// no-op logger.
func NewEvaluator(logger *zap.Logger, conf scaled.Config) *Evaluator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Evaluator{logger: logger, conf: conf, limits: DefaultLimits()}
}

// WithLimits replaces the evaluator's limits and returns it.
func (e *Evaluator) WithLimits(limits Limits) *Evaluator {
	e.limits = limits.withDefaults()
	return e
}

// Limits returns the limits the evaluator enforces.
func (e *Evaluator) Limits() Limits {
	return e.limits
}

// Evaluate parses and runs def. Steps apply in order and each one sees the
// configuration left by the previous one.
func (e *Evaluator) Evaluate(def Definition) (*Result, error) {
	opts, err := def.Options()
	if err != nil {
		return nil, err
	}
	steps, err := ParseSteps(def.Steps)
	if err != nil {
		return nil, err
	}
	if err := e.limits.checkDefinition(def, steps); err != nil {
		e.logger.Debug("pipeline rejected",
			zap.String("op", "pipeline.Evaluate"),
			zap.String("pipeline", def.Name),
			zap.Error(err),
		)
		return nil, err
	}

	value, err := e.conf.Of(strings.TrimSpace(def.Value), opts...)
	if err != nil {
		return nil, fmt.Errorf("start value %q: %w", def.Value, err)
	}

	result := &Result{Name: def.Name, Steps: make([]StepResult, 0, len(steps))}
	for i, step := range steps {
		if err = e.limits.checkPow(value, step); err == nil {
			value, err = step.apply(value)
		}
		if err == nil {
			err = e.limits.checkValue(value)
		}
		if err != nil {
			e.logger.Debug("pipeline step failed",
				zap.String("op", "pipeline.Evaluate"),
				zap.String("pipeline", def.Name),
				zap.String("step", step.String()),
				zap.Error(err),
			)
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step, err)
		}

		e.logger.Debug(fmt.Sprintf("applied %s", step),
			zap.String("op", "pipeline.Evaluate"),
			zap.String("pipeline", def.Name),
			zap.String("value", value.ToNumber().String()),
		)
		result.Steps = append(result.Steps, StepResult{Step: step.String(), Value: value.String()})
	}

	result.Value = value
	return result, nil
}

// EvaluateAll runs every definition, stopping at the first failure.
func (e *Evaluator) EvaluateAll(defs []Definition) ([]Result, error) {
	results := make([]Result, 0, len(defs))
	for i, def := range defs {
		result, err := e.Evaluate(def)
		if err != nil {
			name := def.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i+1)
			}
			return results, fmt.Errorf("pipeline %s: %w", name, err)
		}
		results = append(results, *result)
	}
	return results, nil
}
