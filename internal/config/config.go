// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. Nothing at all — every value then comes from the environment or
//     from its env-default tag.
//
// Environment variables always win over values from the YAML file, so a
// deployment can inject MONGO_URI as a secret without touching the file.
//
// The parsed values are returned as a *Config pointer so the struct is
// shared by reference rather than copied everywhere.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	HTTPServer `yaml:"http_server"`
	Database   `yaml:"database"`
	Health     `yaml:"health"`
	Metrics    `yaml:"metrics"`
}

// HTTPServer holds settings specific to the HTTP server.
// Nested under http_server: in the YAML file.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "0.0.0.0:5000".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:"0.0.0.0:5000"`

	ReadTimeout     time.Duration `yaml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Database describes the optional persistent backend.
//
// URI is the only switch between persistent and fallback mode: when it is
// empty the service runs on the in-memory sample set. Its absence is NOT a
// configuration error.
type Database struct {
	// URI selects the backend by scheme:
	//   mongodb:// or mongodb+srv://  → MongoDB
	//   sqlite:// or file:            → SQLite file
	URI string `yaml:"uri" env:"MONGO_URI"`

	// Name and Collection locate the students collection in MongoDB.
	Name       string `yaml:"name" env:"MONGO_DATABASE" env-default:"student_db"`
	Collection string `yaml:"collection" env:"MONGO_COLLECTION" env-default:"students"`

	// ConnectTimeout bounds the single connection attempt at startup.
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"DB_CONNECT_TIMEOUT" env-default:"5s"`

	// ReadFallback answers list/get/search from the sample set when the
	// persistent backend fails a read, instead of returning 500.
	ReadFallback bool `yaml:"read_fallback" env:"DB_READ_FALLBACK"`

	// SeedSamples pre-loads the in-memory store with the sample students.
	SeedSamples bool `yaml:"seed_samples" env:"SEED_SAMPLES"`
}

// Health configures the /health endpoint.
type Health struct {
	// AlwaysOK keeps /health at 200 even when the backend ping fails,
	// so CI/CD pipelines never see a failed health check. The failure is still
	// reported in the body.
	AlwaysOK bool `yaml:"always_ok" env:"HEALTH_ALWAYS_OK"`
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Path    string `yaml:"path" env:"METRICS_PATH" env-default:"/metrics"`
}

// MustLoad reads, validates, and returns the application config.
//
// The name "MustLoad" follows a Go convention: functions prefixed with
// "Must" are allowed to panic/fatal on failure. Callers do not need to
// check a returned error — if this function returns, the config is valid.
func MustLoad() *Config {
	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	//   go run ./cmd/students-api --config=config/local.yaml
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err.Error())
	}

	return cfg
}

// Load builds a Config from the YAML file at path, or from the environment
// alone when path is empty.
func Load(path string) (*Config, error) {
	cfg := withDefaults()

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config.Load: read env: %w", err)
		}
		return &cfg, nil
	}

	// Verify the file exists before trying to read it, so the message is
	// clearer than a cryptic "open: no such file" later.
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", path)
	}

	// cleanenv.ReadConfig reads the YAML file, then applies env overrides
	// and env-default values.
	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: read %s: %w", path, err)
	}

	return &cfg, nil
}

// withDefaults presets the boolean switches that default to true.
//
// cleanenv applies env-default only to zero-valued fields, so a default of
// "true" would overwrite an explicit "false" from the YAML file. Presetting
// them here lets the file and the environment both turn them off.
func withDefaults() Config {
	var cfg Config
	cfg.Database.ReadFallback = true
	cfg.Database.SeedSamples = true
	cfg.Health.AlwaysOK = true
	cfg.Metrics.Enabled = true
	return cfg
}

// SecretConfigured reports whether a database URI was supplied at all.
func (c *Config) SecretConfigured() bool {
	return c.Database.URI != ""
}
