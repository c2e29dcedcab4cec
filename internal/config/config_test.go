package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendMemory {
		t.Fatalf("default backend = %q", cfg.Backend)
	}
	if cfg.Ops.Addr == "" {
		t.Fatal("expected default ops addr")
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "backend: redis\nredis:\n  addr: redis.internal:6379\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("BOOKLOVIN_BACKEND", "mongodb")
	t.Setenv("BOOKLOVIN_MONGO_DB", "booklovin_staging")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Backend != BackendMongoDB {
		t.Fatalf("env override lost: backend = %q", cfg.Backend)
	}
	if cfg.Mongo.Database != "booklovin_staging" {
		t.Fatalf("env override lost: database = %q", cfg.Mongo.Database)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Fatalf("file value lost: redis addr = %q", cfg.Redis.Addr)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	t.Setenv("BOOKLOVIN_BACKEND", "cassandra")
	if _, err := Load(""); err == nil {
		t.Fatal("expected an error for an unknown backend")
	}
}
