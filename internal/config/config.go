// Package config loads the server configuration from a YAML file with
// environment overrides. The backend selection decides which storage adapter
// the process runs against; everything else is connection and ops plumbing.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend names a storage adapter.
type Backend string

const (
	BackendMemory  Backend = "memory"
	BackendMongoDB Backend = "mongodb"
	BackendRedis   Backend = "redis"
)

// Config is the full server configuration.
type Config struct {
	Backend Backend `yaml:"backend"`

	Memory struct {
		// SnapshotPath is the JSON snapshot file. Empty disables persistence.
		SnapshotPath string `yaml:"snapshot_path"`
	} `yaml:"memory"`

	Mongo struct {
		URI      string `yaml:"uri"`
		Database string `yaml:"database"`
	} `yaml:"mongo"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Ops struct {
		Addr string `yaml:"addr"`
	} `yaml:"ops"`

	Letters struct {
		SweepSchedule string `yaml:"sweep_schedule"`
	} `yaml:"letters"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// Load reads the config file (when path is non-empty), applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	cfg := &Config{Backend: BackendMemory}
	cfg.Mongo.URI = "mongodb://localhost:27017"
	cfg.Mongo.Database = "booklovin"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Ops.Addr = ":9090"
	cfg.Logging.Level = "info"
	cfg.Logging.Format = "json"
	return cfg
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("BOOKLOVIN_BACKEND"); v != "" {
		cfg.Backend = Backend(strings.ToLower(v))
	}
	if v := os.Getenv("BOOKLOVIN_SNAPSHOT_PATH"); v != "" {
		cfg.Memory.SnapshotPath = v
	}
	if v := os.Getenv("BOOKLOVIN_MONGO_URI"); v != "" {
		cfg.Mongo.URI = v
	}
	if v := os.Getenv("BOOKLOVIN_MONGO_DB"); v != "" {
		cfg.Mongo.Database = v
	}
	if v := os.Getenv("BOOKLOVIN_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("BOOKLOVIN_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("BOOKLOVIN_OPS_ADDR"); v != "" {
		cfg.Ops.Addr = v
	}
	if v := os.Getenv("BOOKLOVIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func (c *Config) validate() error {
	switch c.Backend {
	case BackendMemory, BackendMongoDB, BackendRedis:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Backend == BackendMongoDB {
		if c.Mongo.URI == "" {
			return fmt.Errorf("mongo.uri is required for the mongodb backend")
		}
		if c.Mongo.Database == "" {
			return fmt.Errorf("mongo.database is required for the mongodb backend")
		}
	}
	if c.Backend == BackendRedis && c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required for the redis backend")
	}
	if c.Ops.Addr == "" {
		return fmt.Errorf("ops.addr is required")
	}
	return nil
}
