package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	schema "github.com/Irrelon/irrelon-schema"
	"github.com/Irrelon/irrelon-schema/internal/logging"
)

// EnvPrefix prefixes environment overrides: IRRELON_SCHEMA_LOG_LEVEL, ...
const EnvPrefix = "IRRELON_SCHEMA"

// Config is the CLI configuration. Values come from flags, then the
// environment, then the config file, then defaults.
type Config struct {
	LogLevel    string `mapstructure:"log_level"`
	Lang        string `mapstructure:"lang"`
	MaxDepth    int    `mapstructure:"max_depth"`
	MetricsFile string `mapstructure:"metrics_file"`
}

// flag names differ from config keys only in the separator
var configKeys = []string{"log_level", "lang", "max_depth", "metrics_file"}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")
	v.SetDefault("lang", "en")
	v.SetDefault("max_depth", schema.DefaultMaxDepth)
	v.SetDefault("metrics_file", "")
}

// readConfig layers cmd's flags, the environment and the config file at path
// (or ./irrelon-schema.yaml when path is empty and that file exists).
func readConfig(path string, cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	for _, key := range configKeys {
		if f := cmd.Flags().Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("irrelon-schema")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}

	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func (c *Config) level() (slog.Level, error) {
	return logging.ParseLevel(c.LogLevel)
}
