// Package config provides Viper-based configuration loading for the arena simulator.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
	// File optionally mirrors log output to a rotated file.
	File LogFileConfig `mapstructure:"file"`
}

// LogFileConfig holds rotated log file settings.
type LogFileConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// SimulationConfig holds battle and balance test settings.
type SimulationConfig struct {
	// Trials is the number of battles per ordered class pair in a balance test.
	Trials int `mapstructure:"trials"`
	// TimeBudget is the soft wall-clock limit of a balance test. Zero disables it.
	TimeBudget time.Duration `mapstructure:"time_budget"`
	// Workers is the number of concurrent battle goroutines. Zero means one per CPU.
	Workers int `mapstructure:"workers"`
	// Seed fixes every random draw. Zero draws a fresh seed per run.
	Seed int64 `mapstructure:"seed"`
	// StartDistance is the distance between combatants on turn one.
	StartDistance int `mapstructure:"start_distance"`
	// AbilityChance is the per-turn probability of attempting a special ability.
	AbilityChance float64 `mapstructure:"ability_chance"`
	// ProgressEvery is the number of balance battles between progress reports.
	ProgressEvery int `mapstructure:"progress_every"`
	// TournamentMaxRounds ends an interactive battle as a draw after that many
	// turns. Zero means no limit.
	TournamentMaxRounds int `mapstructure:"tournament_max_rounds"`
}

// RulesetConfig points at an optional class rule table overlay.
type RulesetConfig struct {
	// Path is a YAML overlay on the built-in table. Empty uses the built-in table.
	Path string `mapstructure:"path"`
}

// NarrationConfig holds interactive console settings.
type NarrationConfig struct {
	// RoundDelay is the pause between narrated rounds.
	RoundDelay time.Duration `mapstructure:"round_delay"`
	// Color enables ANSI color in narration.
	Color bool `mapstructure:"color"`
}

// DatabaseConfig holds PostgreSQL connection settings.
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

// StorageConfig controls persistence of balance reports.
type StorageConfig struct {
	// Enabled saves every balance report to PostgreSQL.
	Enabled bool `mapstructure:"enabled"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Ruleset    RulesetConfig    `mapstructure:"ruleset"`
	Narration  NarrationConfig  `mapstructure:"narration"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Storage    StorageConfig    `mapstructure:"storage"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when storage is enabled.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateSimulation(c.Simulation); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Narration.RoundDelay < 0 {
		errs = append(errs, "narration.round_delay must not be negative")
	}
	if c.Storage.Enabled {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Trials < 1 {
		errs = append(errs, fmt.Sprintf("simulation.trials must be >= 1, got %d", s.Trials))
	}
	if s.TimeBudget < 0 {
		errs = append(errs, "simulation.time_budget must not be negative")
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 0, got %d", s.Workers))
	}
	if s.StartDistance < 0 {
		errs = append(errs, fmt.Sprintf("simulation.start_distance must be >= 0, got %d", s.StartDistance))
	}
	if s.AbilityChance < 0 || s.AbilityChance > 1 {
		errs = append(errs, fmt.Sprintf("simulation.ability_chance must be in [0, 1], got %g", s.AbilityChance))
	}
	if s.ProgressEvery < 1 {
		errs = append(errs, fmt.Sprintf("simulation.progress_every must be >= 1, got %d", s.ProgressEvery))
	}
	if s.TournamentMaxRounds < 0 {
		errs = append(errs, fmt.Sprintf("simulation.tournament_max_rounds must be >= 0, got %d", s.TournamentMaxRounds))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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
	if l.File.Enabled {
		if l.File.Path == "" {
			return fmt.Errorf("logging.file.path must not be empty when logging.file.enabled is set")
		}
		if l.File.MaxSizeMB < 1 {
			return fmt.Errorf("logging.file.max_size_mb must be >= 1, got %d", l.File.MaxSizeMB)
		}
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with ARENA_ prefix
	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
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

// Defaults returns a Viper instance holding only the default settings.
func Defaults() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.enabled", false)
	v.SetDefault("logging.file.path", "logs/arena.log")
	v.SetDefault("logging.file.max_size_mb", 10)
	v.SetDefault("logging.file.max_backups", 3)
	v.SetDefault("logging.file.max_age_days", 28)

	v.SetDefault("simulation.trials", 1000)
	v.SetDefault("simulation.time_budget", "5m")
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.seed", 0)
	v.SetDefault("simulation.start_distance", 10)
	v.SetDefault("simulation.ability_chance", 0.2)
	v.SetDefault("simulation.progress_every", 100)
	v.SetDefault("simulation.tournament_max_rounds", 0)

	v.SetDefault("ruleset.path", "")

	v.SetDefault("narration.round_delay", "1s")
	v.SetDefault("narration.color", true)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "arena")
	v.SetDefault("database.password", "arena")
	v.SetDefault("database.name", "arena")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("storage.enabled", false)
}
