// Package config loads swipedeck settings.
//
// Settings come from three layers, later ones winning: Default, an optional
// YAML file, then SWIPEDECK_* environment variables. The merged result is
// validated once before use.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/swipedeck/internal/swipe"
)

// Source kinds.
const (
	SourceMemory = "memory"
	SourceSQLite = "sqlite"
	SourceRedis  = "redis"
)

// Config is the full settings tree.
type Config struct {
	Log    LogConfig     `yaml:"log"`
	Source SourceConfig  `yaml:"source"`
	Swipe  swipe.Options `yaml:"swipe"`
}

// LogConfig selects log level and output format.
type LogConfig struct {
	Level      string `yaml:"level" validate:"oneof=trace debug info warn error disabled"`
	Format     string `yaml:"format" validate:"oneof=console json"`
	WithCaller bool   `yaml:"with_caller"`
}

// SourceConfig selects and configures the record backend.
type SourceConfig struct {
	Kind    string `yaml:"kind" validate:"oneof=memory sqlite redis"`
	Fixture string `yaml:"fixture"` // seed file for memory sources; empty uses the sample deck

	SQLitePath   string        `yaml:"sqlite_path" validate:"required_if=Kind sqlite"`
	PollInterval time.Duration `yaml:"poll_interval" validate:"gte=0"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig addresses a redis backend.
type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
	Prefix   string `yaml:"prefix" validate:"required"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Source: SourceConfig{
			Kind:         SourceMemory,
			PollInterval: 250 * time.Millisecond,
			Redis:        RedisConfig{Addr: "localhost:6379", Prefix: "swipedeck"},
		},
		Swipe: swipe.DefaultOptions(),
	}
}

// Load reads path (if non-empty), applies the process environment and
// validates the result.
func Load(path string) (Config, error) {
	return LoadWith(path, NewEnv(EnvPrefix))
}

// LoadWith is Load with an explicit environment.
func LoadWith(path string, env Env) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := decodeYAML(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := applyEnv(env, &cfg); err != nil {
		return Config{}, fmt.Errorf("config env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// decodeYAML overlays data onto cfg. Unknown keys are rejected.
func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return nil
}

func applyEnv(env Env, cfg *Config) error {
	log := env.Prefix("LOG_")
	log.setString("LEVEL", &cfg.Log.Level)
	log.setString("FORMAT", &cfg.Log.Format)
	if err := log.setBool("CALLER", &cfg.Log.WithCaller); err != nil {
		return err
	}

	env.setString("SOURCE", &cfg.Source.Kind)
	env.setString("FIXTURE", &cfg.Source.Fixture)
	env.setString("SQLITE_PATH", &cfg.Source.SQLitePath)
	if err := env.setDuration("POLL_INTERVAL", &cfg.Source.PollInterval); err != nil {
		return err
	}

	rd := env.Prefix("REDIS_")
	rd.setString("ADDR", &cfg.Source.Redis.Addr)
	rd.setString("PASSWORD", &cfg.Source.Redis.Password)
	rd.setString("PREFIX", &cfg.Source.Redis.Prefix)
	if err := rd.setInt("DB", &cfg.Source.Redis.DB); err != nil {
		return err
	}

	sw := &cfg.Swipe
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"POSITION_THRESHOLD", &sw.Thresholds.Position},
		{"VELOCITY_THRESHOLD", &sw.Thresholds.Velocity},
		{"DAMPING_FACTOR", &sw.DampingFactor},
		{"FLY_DISTANCE", &sw.FlyDistance},
	} {
		if err := env.setFloat(f.key, f.dst); err != nil {
			return err
		}
	}
	if err := env.setDuration("EXIT_DELAY", &sw.ExitDelay); err != nil {
		return err
	}
	if err := env.setDuration("SEND_TIMEOUT", &sw.SendTimeout); err != nil {
		return err
	}
	return env.setInt("WINDOW", &sw.Window)
}
