package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/decimath/pkg/scaled"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationOverrides(t *testing.T) {
	path := writeConfig(t, `math:
  scale: 4
  storageScale: 12
  roundingMode: half_even
logging:
  level: debug
  format: console
  outputFile: /tmp/decimath.log
output:
  format: csv
server:
  address: 127.0.0.1:9000
  maxBodySize: 1M
limits:
  maxScale: 50
  maxExponent: 20
  maxDigits: 2000
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Math.Scale != 4 {
		t.Errorf("Math.Scale = %d, expected 4", conf.Math.Scale)
	}
	if conf.Math.StorageScale != 12 {
		t.Errorf("Math.StorageScale = %d, expected 12", conf.Math.StorageScale)
	}
	if conf.Math.RoundingMode != "half_even" {
		t.Errorf("Math.RoundingMode = %s, expected half_even", conf.Math.RoundingMode)
	}
	if conf.Logging.Level != "debug" || conf.Logging.Format != "console" || conf.Logging.OutputFile != "/tmp/decimath.log" {
		t.Errorf("unexpected logging config %+v", conf.Logging)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("Output.Format = %s, expected csv", conf.Output.Format)
	}
	if conf.Server.Address != "127.0.0.1:9000" || conf.Server.MaxBodySize != "1M" {
		t.Errorf("unexpected server config %+v", conf.Server)
	}
	if conf.Limits != (LimitsConfig{MaxScale: 50, MaxExponent: 20, MaxDigits: 2000}) {
		t.Errorf("unexpected limits config %+v", conf.Limits)
	}

	math, err := conf.ScaledConfig()
	if err != nil {
		t.Fatalf("ScaledConfig() error = %v", err)
	}
	expected := scaled.Config{Scale: 4, StorageScale: 12, RoundingMode: scaled.HalfEven}
	if math != expected {
		t.Errorf("ScaledConfig() = %+v, expected %+v", math, expected)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	path := writeConfig(t, `logging:
  level: warn
`)

	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	math, err := conf.ScaledConfig()
	if err != nil {
		t.Fatalf("ScaledConfig() error = %v", err)
	}
	if math != scaled.DefaultConfig() {
		t.Errorf("ScaledConfig() = %+v, expected defaults %+v", math, scaled.DefaultConfig())
	}
	if conf.Output.Format != "pretty" {
		t.Errorf("Output.Format = %s, expected pretty", conf.Output.Format)
	}
	if conf.Server.Address != ":8080" {
		t.Errorf("Server.Address = %s, expected :8080", conf.Server.Address)
	}
	if conf.Limits != (LimitsConfig{MaxScale: 1000, MaxExponent: 1000, MaxDigits: 10000}) {
		t.Errorf("Limits = %+v, expected defaults", conf.Limits)
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("MATH_SCALE", "4")
	t.Setenv("MATH_ROUNDINGMODE", "half_up")
	t.Setenv("LIMITS_MAXDIGITS", "500")

	path := writeConfig(t, `math:
  scale: 2
`)
	conf, err := LoadConfiguration(path)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if conf.Math.Scale != 4 {
		t.Errorf("Math.Scale = %d, expected 4 from MATH_SCALE", conf.Math.Scale)
	}
	if conf.Math.RoundingMode != "half_up" {
		t.Errorf("Math.RoundingMode = %s, expected half_up from MATH_ROUNDINGMODE", conf.Math.RoundingMode)
	}
	if conf.Limits.MaxDigits != 500 {
		t.Errorf("Limits.MaxDigits = %d, expected 500 from LIMITS_MAXDIGITS", conf.Limits.MaxDigits)
	}

	if scale := Default().Math.Scale; scale != 4 {
		t.Errorf("Default().Math.Scale = %d, expected 4 from MATH_SCALE", scale)
	}
}

func TestLoadConfigurationFromReader(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("math:\n  scale: 6\n  roundingMode: up\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}
	if conf.Math.Scale != 6 {
		t.Errorf("Math.Scale = %d, expected 6", conf.Math.Scale)
	}
	if conf.Math.StorageScale != 10 {
		t.Errorf("Math.StorageScale = %d, expected default 10", conf.Math.StorageScale)
	}

	if _, err := LoadConfigurationFromReader(strings.NewReader("math: [unclosed")); err == nil {
		t.Errorf("LoadConfigurationFromReader() expected error for invalid YAML but got none")
	}
}

// Each load uses its own viper instance, so one file never leaks keys into
// the next.
func TestLoadConfigurationIsolated(t *testing.T) {
	first := writeConfig(t, "math:\n  scale: 7\n")
	second := writeConfig(t, "output:\n  format: json\n")

	if _, err := LoadConfiguration(first); err != nil {
		t.Fatalf("LoadConfiguration(first) error = %v", err)
	}
	conf, err := LoadConfiguration(second)
	if err != nil {
		t.Fatalf("LoadConfiguration(second) error = %v", err)
	}
	if conf.Math.Scale != 2 {
		t.Errorf("Math.Scale = %d after loading a second file, expected 2", conf.Math.Scale)
	}
}

func TestDefault(t *testing.T) {
	conf := Default()
	math, err := conf.ScaledConfig()
	if err != nil {
		t.Fatalf("ScaledConfig() error = %v", err)
	}
	if math != scaled.DefaultConfig() {
		t.Errorf("Default().ScaledConfig() = %+v, expected %+v", math, scaled.DefaultConfig())
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("Default().ValidateConfiguration() = %v, expected no warnings", warnings)
	}
}

func TestScaledConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		math MathConfig
	}{
		{"Unknown rounding mode", MathConfig{Scale: 2, StorageScale: 10, RoundingMode: "nearest"}},
		{"Negative scale", MathConfig{Scale: -2, StorageScale: 10, RoundingMode: "down"}},
		{"Negative storage scale", MathConfig{Scale: 2, StorageScale: -1, RoundingMode: "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf := Configuration{Math: tt.math}
			if _, err := conf.ScaledConfig(); err == nil {
				t.Errorf("ScaledConfig() expected error but got none")
			}
		})
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name        string
		conf        Configuration
		expectWarns int
		contains    string
	}{
		{
			name: "Valid configuration",
			conf: Configuration{
				Math:   MathConfig{Scale: 2, StorageScale: 10, RoundingMode: "down"},
				Output: OutputConfig{Format: "pretty"},
			},
			expectWarns: 0,
		},
		{
			name: "Storage scale below scale",
			conf: Configuration{
				Math: MathConfig{Scale: 6, StorageScale: 4, RoundingMode: "half_up"},
			},
			expectWarns: 1,
			contains:    "Storage scale 4 is lower than scale 6",
		},
		{
			name: "Invalid output format",
			conf: Configuration{
				Math:   MathConfig{Scale: 2, StorageScale: 10, RoundingMode: "down"},
				Output: OutputConfig{Format: "xml"},
			},
			expectWarns: 1,
			contains:    "Invalid configuration",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration()
			if len(warnings) != tt.expectWarns {
				t.Fatalf("ValidateConfiguration() = %v, expected %d warnings", warnings, tt.expectWarns)
			}
			if tt.contains != "" && !strings.Contains(warnings[0], tt.contains) {
				t.Errorf("warning %q does not contain %q", warnings[0], tt.contains)
			}
		})
	}
}
