// Package config provides Viper-based configuration loading for the combat
// simulator binaries.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// SimulationConfig holds batch simulation settings.
type SimulationConfig struct {
	// Runs is the number of encounters to simulate per batch.
	Runs int `mapstructure:"runs"`
	// MaxRounds caps a single encounter before it is declared a stalemate.
	MaxRounds int `mapstructure:"max_rounds"`
	// Seed is the base RNG seed; run i uses seed+i so batches reproduce.
	Seed int64 `mapstructure:"seed"`
	// Workers is the number of encounters resolved concurrently; 0 picks a
	// sensible default from GOMAXPROCS.
	Workers int `mapstructure:"workers"`
	// ToTheDeath keeps fighting downed death-save creatures until they die.
	ToTheDeath bool `mapstructure:"to_the_death"`
	// OnHitDowned is "apply" or "suppress": whether on-hit conditions still
	// land on a creature the same blow just downed.
	OnHitDowned string `mapstructure:"on_hit_downed"`
	// Separation is the starting distance between opposing teams, in feet.
	Separation float64 `mapstructure:"separation"`
}

// ContentConfig locates the weapon and monster catalogues.
type ContentConfig struct {
	// Dir is the content directory holding weapons.yaml and monsters/.
	Dir string `mapstructure:"dir"`
}

// WebConfig holds the streaming web server settings.
type WebConfig struct {
	// Host is the bind address for the HTTP listener.
	Host string `mapstructure:"host"`
	// Port is the TCP port for the HTTP listener.
	Port int `mapstructure:"port"`
}

// Addr returns the "host:port" listen address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (w WebConfig) Addr() string {
	return fmt.Sprintf("%s:%d", w.Host, w.Port)
}

// Config is the top-level application configuration.
type Config struct {
	Logging    LoggingConfig    `mapstructure:"logging"`
	Simulation SimulationConfig `mapstructure:"simulation"`
	Content    ContentConfig    `mapstructure:"content"`
	Web        WebConfig        `mapstructure:"web"`
}

// Validate checks all configuration invariants.
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
	if err := validateContent(c.Content); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateWeb(c.Web); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
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

func validateSimulation(s SimulationConfig) error {
	var errs []string
	if s.Runs < 1 {
		errs = append(errs, fmt.Sprintf("simulation.runs must be >= 1, got %d", s.Runs))
	}
	if s.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("simulation.max_rounds must be >= 1, got %d", s.MaxRounds))
	}
	if s.Workers < 0 {
		errs = append(errs, fmt.Sprintf("simulation.workers must be >= 0, got %d", s.Workers))
	}
	validPolicies := map[string]bool{"apply": true, "suppress": true}
	if !validPolicies[s.OnHitDowned] {
		errs = append(errs, fmt.Sprintf("simulation.on_hit_downed must be one of [apply, suppress], got %q", s.OnHitDowned))
	}
	if s.Separation < 0 {
		errs = append(errs, fmt.Sprintf("simulation.separation must be >= 0, got %g", s.Separation))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateContent(c ContentConfig) error {
	if c.Dir == "" {
		return fmt.Errorf("content.dir must not be empty")
	}
	return nil
}

func validateWeb(w WebConfig) error {
	if w.Port < 1 || w.Port > 65535 {
		return fmt.Errorf("web.port must be 1-65535, got %d", w.Port)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment
// variable overrides, and validates the result. An empty path skips the file
// and uses defaults plus environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with DNDSIM_ prefix
	v.SetEnvPrefix("DNDSIM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

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

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("simulation.runs", 1000)
	v.SetDefault("simulation.max_rounds", 10)
	v.SetDefault("simulation.seed", 1)
	v.SetDefault("simulation.workers", 0)
	v.SetDefault("simulation.to_the_death", true)
	v.SetDefault("simulation.on_hit_downed", "apply")
	v.SetDefault("simulation.separation", 30)

	v.SetDefault("content.dir", "content")

	v.SetDefault("web.host", "0.0.0.0")
	v.SetDefault("web.port", 8080)
}
