// Package config loads studypath settings from struct defaults, an optional
// YAML file and STUDYPATH_* environment variables, in that order.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/abhisek/studypath/internal/llm"
	"github.com/abhisek/studypath/internal/mastery"
	"github.com/abhisek/studypath/internal/retrieval"
	"github.com/abhisek/studypath/internal/store"
)

// EnvPrefix prefixes every environment override. Nested keys are separated
// by a double underscore: STUDYPATH_LLM__OPENAI__API_KEY sets
// llm.openai.api_key.
const EnvPrefix = "STUDYPATH_"

// PathEnvVar overrides the config file location.
const PathEnvVar = "STUDYPATH_CONFIG"

// DefaultPaths are searched when PathEnvVar is unset.
var DefaultPaths = []string{"studypath.yaml", "studypath.yml"}

// Config is the full application configuration.
type Config struct {
	Log       LogConfig           `koanf:"log"`
	Database  DatabaseConfig      `koanf:"database"`
	Server    ServerConfig        `koanf:"server"`
	LLM       llm.Config          `koanf:"llm"`
	Embedding llm.EmbeddingConfig `koanf:"embedding"`
	Retrieval retrieval.Config    `koanf:"retrieval"`
	Redis     RedisConfig         `koanf:"redis"`
	Mastery   MasteryConfig       `koanf:"mastery"`
}

// LogConfig selects the zap preset and level.
type LogConfig struct {
	Mode  string `koanf:"mode"` // "development" or "production"
	Level string `koanf:"level"`
}

// DatabaseConfig selects the SQL driver. An empty SQLite DSN resolves to
// store.DefaultDBPath.
type DatabaseConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `koanf:"addr"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

// RedisConfig enables the recommendation cache when URL is set.
type RedisConfig struct {
	URL string        `koanf:"url"`
	TTL time.Duration `koanf:"ttl"`
}

// MasteryConfig tunes the mastery engine.
type MasteryConfig struct {
	SimilaritySignal float64 `koanf:"similarity_signal"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:       LogConfig{Mode: "development", Level: "info"},
		Database:  DatabaseConfig{Driver: store.DriverSQLite},
		Server:    ServerConfig{Addr: ":8080", ReadTimeout: 30 * time.Second, WriteTimeout: 120 * time.Second},
		LLM:       llm.DefaultConfig(),
		Embedding: llm.DefaultEmbeddingConfig(),
		Retrieval: retrieval.DefaultConfig(),
		Redis:     RedisConfig{TTL: 5 * time.Minute},
		Mastery:   MasteryConfig{SimilaritySignal: mastery.DefaultSimilaritySignal},
	}
}

// Load reads .env (when present), then layers defaults, the config file
// and the environment. path, when non-empty, takes precedence over
// PathEnvVar and DefaultPaths.
func Load(path string) (*Config, error) {
	// A missing .env file is normal.
	_ = godotenv.Load()

	k := koanf.New(".")
	defaults := Default()
	if err := k.Load(structs.Provider(&defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = findFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.LLM.Discover()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// envKey maps STUDYPATH_LLM__OPENAI__API_KEY to llm.openai.api_key.
func envKey(s string) string {
	s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

func findFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Validate checks everything except LLM credentials, which are only
// required by commands that call a model (see llm.Config.Validate).
func (c *Config) Validate() error {
	switch c.Log.Mode {
	case "development", "production":
	default:
		return fmt.Errorf("log.mode must be development or production, got %q", c.Log.Mode)
	}
	switch c.Database.Driver {
	case store.DriverSQLite:
	case store.DriverPostgres:
		if c.Database.DSN == "" {
			return fmt.Errorf("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database driver: %q", c.Database.Driver)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Mastery.SimilaritySignal < 0 || c.Mastery.SimilaritySignal > 1 {
		return fmt.Errorf("mastery.similarity_signal must be in [0, 1], got %v", c.Mastery.SimilaritySignal)
	}
	if c.Redis.URL != "" && c.Redis.TTL <= 0 {
		return fmt.Errorf("redis.ttl must be positive")
	}
	return c.Retrieval.Validate()
}

// DSN returns the configured DSN, resolving the default SQLite path when
// none is set.
func (c *Config) DSN() (string, error) {
	if c.Database.DSN != "" {
		return c.Database.DSN, nil
	}
	if c.Database.Driver == store.DriverSQLite {
		return store.DefaultDBPath()
	}
	return "", fmt.Errorf("database.dsn is required for %s", c.Database.Driver)
}
