// Package config provides Viper-based configuration loading for the odds server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for roll history.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelnetConfig holds Telnet acceptor settings.
type TelnetConfig struct {
	// Host is the bind address for the Telnet listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the Telnet listener.
	Port int `mapstructure:"port"`
	// ReadTimeout is the per-read timeout for Telnet connections.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`
	// WriteTimeout is the per-write timeout for Telnet connections.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr returns the "host:port" listen address.
func (t TelnetConfig) Addr() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// PresetsConfig holds preset expression library settings.
type PresetsConfig struct {
	// Dir is the directory of preset YAML files; empty disables presets.
	Dir string `mapstructure:"dir"`
}

// SamplingConfig holds randomness settings for simulated rolls.
type SamplingConfig struct {
	// Seed seeds the pseudo-random source; 0 means derive from the clock.
	Seed int64 `mapstructure:"seed"`
}

// HistoryConfig holds roll-history settings.
type HistoryConfig struct {
	// Enabled toggles PostgreSQL roll history. When false the server runs
	// without a database.
	Enabled bool `mapstructure:"enabled"`
	// Limit is the number of rows shown by the history command.
	Limit int `mapstructure:"limit"`
}

// Config is the root configuration for all odds server binaries.
type Config struct {
	Telnet   TelnetConfig   `mapstructure:"telnet"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Presets  PresetsConfig  `mapstructure:"presets"`
	Sampling SamplingConfig `mapstructure:"sampling"`
	History  HistoryConfig  `mapstructure:"history"`
}

// Validate checks the full configuration for consistency.
//
// Postcondition: Returns nil only if every section is valid.
func (c Config) Validate() error {
	if err := validateTelnet(c.Telnet); err != nil {
		return err
	}
	if c.History.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			return err
		}
	}
	if err := validateLogging(c.Logging); err != nil {
		return err
	}
	if err := validateHistory(c.History); err != nil {
		return err
	}
	return nil
}

func validateTelnet(t TelnetConfig) error {
	if t.Port < 1 || t.Port > 65535 {
		return fmt.Errorf("telnet.port must be in [1, 65535], got %d", t.Port)
	}
	if t.ReadTimeout < 0 || t.WriteTimeout < 0 {
		return fmt.Errorf("telnet timeouts must be non-negative")
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	if d.Host == "" {
		return fmt.Errorf("database.host must be set")
	}
	if d.Port < 1 || d.Port > 65535 {
		return fmt.Errorf("database.port must be in [1, 65535], got %d", d.Port)
	}
	if d.User == "" {
		return fmt.Errorf("database.user must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("database.name must be set")
	}
	if d.MaxConns < 1 {
		return fmt.Errorf("database.max_conns must be >= 1, got %d", d.MaxConns)
	}
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		return fmt.Errorf("database.min_conns must be in [0, max_conns], got %d", d.MinConns)
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	if h.Limit < 1 {
		return fmt.Errorf("history.limit must be >= 1, got %d", h.Limit)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Environment variable overrides with ODDS_ prefix
	v.SetEnvPrefix("ODDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telnet.host", "0.0.0.0")
	v.SetDefault("telnet.port", 4100)
	v.SetDefault("telnet.read_timeout", "5m")
	v.SetDefault("telnet.write_timeout", "30s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "odds")
	v.SetDefault("database.password", "odds")
	v.SetDefault("database.name", "odds")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("presets.dir", "")

	v.SetDefault("sampling.seed", 0)

	v.SetDefault("history.enabled", false)
	v.SetDefault("history.limit", 10)
}
