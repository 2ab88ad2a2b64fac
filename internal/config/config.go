// Package config loads tool configuration from file, environment, and
// defaults. Field tags use mapstructure for viper unmarshalling.
package config

import (
	"errors"
)

// Defaults applied when neither file nor environment sets a value.
const (
	DefaultLanguage  = "rust"
	DefaultInputDir  = "src"
	DefaultOutputDir = "bindings"
)

// Validation errors.
var (
	errEmptyLanguage  = errors.New("language must not be empty")
	errEmptyInputDir  = errors.New("input_dir must not be empty")
	errEmptyOutputDir = errors.New("output_dir must not be empty")
)

// Config holds the generation settings.
type Config struct {
	// Language is the default emission target.
	Language string `mapstructure:"language"`
	// InputDir is where grammar.json and node-types.json live.
	InputDir string `mapstructure:"input_dir"`
	// OutputDir is the root of generated bindings.
	OutputDir string `mapstructure:"output_dir"`
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if c.Language == "" {
		return errEmptyLanguage
	}

	if c.InputDir == "" {
		return errEmptyInputDir
	}

	if c.OutputDir == "" {
		return errEmptyOutputDir
	}

	return nil
}
