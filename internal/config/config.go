// Package config loads trajcon settings from an optional YAML file and the
// environment. Command-line flags take precedence over both; the cli package
// applies them after Load.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. TRAJCON_DATABASE_PATH.
const EnvPrefix = "TRAJCON"

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Output   OutputConfig   `mapstructure:"output"`
	Log      LogConfig      `mapstructure:"log"`
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "json" | "text"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"` // debug, info, warn or error
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Database: DatabaseConfig{Path: "trajcon.db"},
		Output:   OutputConfig{Format: "text"},
		Log:      LogConfig{Level: "info"},
	}
}

// Load reads configuration from file and env.
//
// With a non-empty path the file must exist. Otherwise ./trajcon.yaml is read
// if present. Env var overrides use prefix TRAJCON_.
func Load(path string) (Config, error) {
	v := viper.New()

	d := Defaults()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("log.level", d.Log.Level)

	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("trajcon")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if _, err := c.LogLevel(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LogLevel parses Log.Level.
func (c Config) LogLevel() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return l, nil
}
