package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".tsbind"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for tsbind settings.
const envPrefix = "TSBIND"

// Load reads configuration from file, env vars, and defaults. If
// configPath is non-empty, it is used as the explicit config file
// path; otherwise the config file is searched in CWD and $HOME. A
// missing config file is not an error; defaults are used.
func Load(configPath string) (*Config, error) {
	viperCfg := viper.New()

	viperCfg.SetDefault("language", DefaultLanguage)
	viperCfg.SetDefault("input_dir", DefaultInputDir)
	viperCfg.SetDefault("output_dir", DefaultOutputDir)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viperCfg.AutomaticEnv()

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		if configPath != "" {
			return nil, fmt.Errorf("read config %s: %w", configPath, readErr)
		}

		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}
