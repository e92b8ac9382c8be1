package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/boddenberg/pizzaria-client-go/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "")
	t.Setenv("ORDER_POLL_INTERVAL", "")

	cfg := config.Load()

	if cfg.OrderPollInterval != 30*time.Second {
		t.Errorf("expected 30s poll interval, got %s", cfg.OrderPollInterval)
	}
	if cfg.StorageDriver != config.StorageFile {
		t.Errorf("expected file storage by default, got %s", cfg.StorageDriver)
	}
	if cfg.BackendAPIURL != "http://localhost:3000/api" {
		t.Errorf("unexpected backend url %s", cfg.BackendAPIURL)
	}
}

func TestLoad_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " http://a.local, ,http://b.local ")

	cfg := config.Load()

	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "http://a.local" || cfg.CORSOrigins[1] != "http://b.local" {
		t.Errorf("unexpected origins %v", cfg.CORSOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BACKEND_API_URL", "https://api.example.com/")
	t.Setenv("ORDER_POLL_INTERVAL", "5s")
	t.Setenv("STORAGE_DRIVER", "REDIS")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("MAX_RETRIES", "not-a-number")

	cfg := config.Load()

	if cfg.BackendAPIURL != "https://api.example.com" {
		t.Errorf("expected trailing slash trimmed, got %s", cfg.BackendAPIURL)
	}
	if cfg.OrderPollInterval != 5*time.Second {
		t.Errorf("expected 5s, got %s", cfg.OrderPollInterval)
	}
	if cfg.StorageDriver != config.StorageRedis {
		t.Errorf("expected redis, got %s", cfg.StorageDriver)
	}
	if cfg.RedisDB != 3 {
		t.Errorf("expected db 3, got %d", cfg.RedisDB)
	}
	if cfg.MaxRetries != 2 {
		t.Errorf("expected fallback retries 2, got %d", cfg.MaxRetries)
	}
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "# comment\nexport PIZZARIA_TEST_A=\"one\"\nPIZZARIA_TEST_B=two\ninvalid line\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PIZZARIA_TEST_B", "kept")
	t.Setenv("PIZZARIA_TEST_A", "")
	os.Unsetenv("PIZZARIA_TEST_A")

	if err := config.LoadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer os.Unsetenv("PIZZARIA_TEST_A")

	if got := os.Getenv("PIZZARIA_TEST_A"); got != "one" {
		t.Errorf("expected 'one', got %q", got)
	}
	if got := os.Getenv("PIZZARIA_TEST_B"); got != "kept" {
		t.Errorf("expected existing value kept, got %q", got)
	}
}

func TestLoadDotEnv_MissingFile(t *testing.T) {
	if err := config.LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
