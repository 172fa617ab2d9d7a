// Package config loads fncall CLI settings from defaults, an optional config file,
// FNCALL_* environment variables and command-line flags, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds CLI settings.
type Config struct {
	// Catalog is the path of the YAML or JSON function catalog.
	Catalog      string `mapstructure:"catalog"`
	LogLevel     string `mapstructure:"log_level"`
	AllowUnknown bool   `mapstructure:"allow_unknown"`
	Strict       bool   `mapstructure:"strict"`
}

// flagKeys maps flag names to config keys.
var flagKeys = map[string]string{
	"catalog":       "catalog",
	"log-level":     "log_level",
	"allow-unknown": "allow_unknown",
	"strict":        "strict",
}

// Load builds the configuration. configFile may be empty, in which case fncall.yaml is
// looked up in the working directory and $HOME/.fncall; a missing file is not an error.
// flags may be nil.
func Load(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("FNCALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("fncall")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.fncall")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if _, err := cfg.Level(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("catalog", "functions.yaml")
	v.SetDefault("log_level", "warn")
	v.SetDefault("allow_unknown", false)
	v.SetDefault("strict", false)
}

// Level parses LogLevel ("debug", "info", "warn", "error").
func (c *Config) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return l, nil
}
