package config

import (
	"os"
	"testing"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "config-*.yaml")
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	tmpFile.Close()
	return tmpFile.Name()
}

func TestLoad(t *testing.T) {
	configContent := `
server:
  port: 9090
  static_dir: "./frontend"
database:
  path: "test-claims.db"
auth:
  api_key: "test-key"
log:
  level: "debug"
  format: "json"
  file: "test-log.txt"
rate_limit:
  rps: 10
  burst: 20
fraud:
  provider: "openai"
  model: "gpt-4o-mini"
`
	path := writeTempConfig(t, configContent)

	t.Setenv("API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "test-claims.db" {
		t.Errorf("Expected database path 'test-claims.db', got '%s'", cfg.Database.Path)
	}
	if cfg.Auth.APIKey != "test-key" {
		t.Errorf("Expected api key 'test-key', got '%s'", cfg.Auth.APIKey)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Expected log level 'debug', got '%s'", cfg.Log.Level)
	}
	if cfg.RateLimit.RPS != 10 {
		t.Errorf("Expected rps 10, got %f", cfg.RateLimit.RPS)
	}
	if cfg.Fraud.Provider != "openai" {
		t.Errorf("Expected fraud provider 'openai', got '%s'", cfg.Fraud.Provider)
	}
}

func TestLoadDefaults(t *testing.T) {
	configContent := `
auth:
  api_key: "test-key"
`
	path := writeTempConfig(t, configContent)

	t.Setenv("API_KEY", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Database.Path != "claims.db" {
		t.Errorf("Expected default database path 'claims.db', got '%s'", cfg.Database.Path)
	}
	if cfg.Log.File != "log.txt" {
		t.Errorf("Expected default log file 'log.txt', got '%s'", cfg.Log.File)
	}
	if cfg.Fraud.Provider != "heuristic" {
		t.Errorf("Expected default fraud provider 'heuristic', got '%s'", cfg.Fraud.Provider)
	}
	if cfg.RateLimit.RPS != 50 || cfg.RateLimit.Burst != 100 {
		t.Errorf("Expected default rate limit 50/100, got %f/%d", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	configContent := `
auth:
  api_key: "file-key"
`
	path := writeTempConfig(t, configContent)

	t.Setenv("API_KEY", "env-key")
	t.Setenv("OPENAI_API_KEY", "env-openai-key")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Auth.APIKey != "env-key" {
		t.Errorf("Expected API_KEY env to win, got '%s'", cfg.Auth.APIKey)
	}
	if cfg.Fraud.APIKey != "env-openai-key" {
		t.Errorf("Expected OPENAI_API_KEY env to be applied, got '%s'", cfg.Fraud.APIKey)
	}
}

func TestLoadMissingAPIKey(t *testing.T) {
	configContent := `
server:
  port: 8080
`
	path := writeTempConfig(t, configContent)

	t.Setenv("API_KEY", "")

	if _, err := Load(path); err == nil {
		t.Error("Expected error when no API key is configured")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Expected error for missing config file")
	}
}
