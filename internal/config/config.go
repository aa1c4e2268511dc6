// Package config defines the data structures related to configuration and
// includes functions for loading and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/decimath/pkg/constants"
	"github.com/iwvelando/decimath/pkg/scaled"
	"github.com/iwvelando/decimath/pkg/validation"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for decimath.
type Configuration struct {
	Math    MathConfig    `yaml:"math,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
	Output  OutputConfig  `yaml:"output,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Limits  LimitsConfig  `yaml:"limits,omitempty"`
}

// MathConfig holds the defaults applied to every decimal the tool builds.
type MathConfig struct {
	Scale        int32  `yaml:"scale"`
	StorageScale int32  `yaml:"storageScale"`
	RoundingMode string `yaml:"roundingMode"` // down, up, half_up, half_down, half_even, ceiling, floor, unnecessary
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ServerConfig holds the HTTP listener options used by serve mode.
type ServerConfig struct {
	Address     string `yaml:"address,omitempty"`
	MaxBodySize string `yaml:"maxBodySize,omitempty"` // e.g. 64K, 1M
}

// LimitsConfig bounds what a single pipeline may ask for.
type LimitsConfig struct {
	MaxScale    int32 `yaml:"maxScale"`    // scale, storage scale and rounding precision
	MaxExponent int   `yaml:"maxExponent"` // exponent of pow steps
	MaxDigits   int   `yaml:"maxDigits"`   // digits of any intermediate value
}

// newViper returns a viper instance with the defaults set. Every key can be
// overridden from the environment with dots replaced by underscores, e.g.
// MATH_SCALE or LIMITS_MAXDIGITS.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetConfigType("yml")

	v.SetDefault("math.scale", constants.DefaultScale)
	v.SetDefault("math.storageScale", constants.DefaultStorageScale)
	v.SetDefault("math.roundingMode", constants.DefaultRoundingMode)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("limits.maxScale", constants.DefaultMaxScale)
	v.SetDefault("limits.maxExponent", constants.DefaultMaxExponent)
	v.SetDefault("limits.maxDigits", constants.DefaultMaxDigits)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there. Keys missing from the file keep their defaults.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Default returns the configuration used when no file is given.
func Default() *Configuration {
	conf, _ := decode(newViper())
	return conf
}

// ScaledConfig converts the math section into the engine configuration.
func (c *Configuration) ScaledConfig() (scaled.Config, error) {
	mode, err := scaled.ParseRoundingMode(c.Math.RoundingMode)
	if err != nil {
		return scaled.Config{}, err
	}

	conf := scaled.Config{
		Scale:        c.Math.Scale,
		StorageScale: c.Math.StorageScale,
		RoundingMode: mode,
	}
	if err := conf.Validate(); err != nil {
		return scaled.Config{}, err
	}
	return conf, nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	validator := validation.ConfigValidator{
		Math: validation.MathConfig{
			Scale:        c.Math.Scale,
			StorageScale: c.Math.StorageScale,
			RoundingMode: c.Math.RoundingMode,
		},
		OutputFormat: c.Output.Format,
		Limits: validation.LimitsConfig{
			MaxScale:    c.Limits.MaxScale,
			MaxExponent: c.Limits.MaxExponent,
			MaxDigits:   c.Limits.MaxDigits,
		},
	}

	warnings, err := validator.ValidateAll()
	if err != nil {
		return []string{fmt.Sprintf("Invalid configuration: %v", err)}
	}
	return warnings
}
