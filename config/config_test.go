package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PLUGYARD_CONFIG", "PLUGYARD_ADDRESS", "PLUGYARD_BASE_URL", "PLUGYARD_DB_PATH",
		"PLUGYARD_STORAGE_BACKEND", "PLUGYARD_STORAGE_DIR", "PLUGYARD_S3_BUCKET",
		"PLUGYARD_S3_REGION", "PLUGYARD_S3_ENDPOINT", "PLUGYARD_S3_PUBLIC_URL",
		"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Address != ":8000" {
		t.Errorf("address = %q, want :8000", cfg.Server.Address)
	}
	if cfg.Server.BaseURL != "http://localhost:8000" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.DB.Path != "data/plugyard.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if cfg.Storage.Backend != "local" || cfg.Storage.Dir != "data/files" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Region != "us-east-1" {
		t.Errorf("region = %q", cfg.Storage.Region)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "plugyard.yml")
	yml := `
server:
  address: ":9090"
  base_url: "https://plugins.example.com"
db:
  path: "/var/lib/plugyard/history.db"
storage:
  backend: s3
  bucket: plugyard-files
  endpoint: "http://localhost:9000"
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Address != ":9090" {
		t.Errorf("address = %q", cfg.Server.Address)
	}
	if cfg.Server.BaseURL != "https://plugins.example.com" {
		t.Errorf("base url = %q", cfg.Server.BaseURL)
	}
	if cfg.DB.Path != "/var/lib/plugyard/history.db" {
		t.Errorf("db path = %q", cfg.DB.Path)
	}
	if cfg.Storage.Backend != "s3" || cfg.Storage.Bucket != "plugyard-files" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Endpoint != "http://localhost:9000" {
		t.Errorf("endpoint = %q", cfg.Storage.Endpoint)
	}
	// fields the file omits keep their defaults
	if cfg.Storage.Region != "us-east-1" {
		t.Errorf("region = %q, want default", cfg.Storage.Region)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "plugyard.yml")
	if err := os.WriteFile(path, []byte("server:\n  address: \":9090\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("PLUGYARD_ADDRESS", ":7070")
	t.Setenv("PLUGYARD_STORAGE_BACKEND", "memory")
	t.Setenv("AWS_ACCESS_KEY_ID", "AKTEST")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Address != ":7070" {
		t.Errorf("address = %q, env should win over file", cfg.Server.Address)
	}
	if cfg.Storage.Backend != "memory" {
		t.Errorf("backend = %q", cfg.Storage.Backend)
	}
	if cfg.Storage.AccessKey != "AKTEST" || cfg.Storage.SecretKey != "secret" {
		t.Errorf("credentials not picked up from env")
	}
}

func TestLoadMissingExplicitFileIsAnError(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err == nil {
		t.Fatal("expected an error for a missing explicit config file")
	}
	if !strings.Contains(err.Error(), "could not read config file") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestLoadBadYAMLIsAnError(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "plugyard.yml")
	if err := os.WriteFile(path, []byte("server: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "could not parse config file") {
		t.Errorf("error = %v", err)
	}
}

func TestGetLazilyInitializes(t *testing.T) {
	clearEnv(t)
	globalConfig = nil

	cfg := Get()
	if cfg == nil {
		t.Fatal("Get returned nil")
	}
	if Get() != cfg {
		t.Error("Get should return the same instance")
	}
}
