package config

import (
	"strings"
	"testing"
	"time"
)

// clearEnv blanks every variable the loader reads so tests see a clean
// environment regardless of the host shell.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"SERVER_HOST", "SERVER_PORT", "SERVER_READ_TIMEOUT", "SERVER_WRITE_TIMEOUT",
		"SERVER_IDLE_TIMEOUT", "SERVER_SHUTDOWN_TIMEOUT", "SERVER_REQUEST_TIMEOUT",
		"DATABASE_URL", "DB_URL", "DB_MAX_CONNS", "DB_MIN_CONNS",
		"DB_MAX_CONN_LIFETIME", "DB_MAX_CONN_IDLE_TIME",
		"SAMSARA_API_TOKEN", "VITE_SAMSARA_API_TOKEN", "SAMSARA_BASE_URL", "SAMSARA_TIMEOUT",
		"KAFKA_BROKERS", "API_TOKEN", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(name, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Database.URL != "" {
		t.Errorf("Database.URL = %q, want empty (memory-only)", cfg.Database.URL)
	}
	if cfg.Samsara.Timeout != 30*time.Second {
		t.Errorf("Samsara.Timeout = %v, want 30s", cfg.Samsara.Timeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("SAMSARA_API_TOKEN", "samsara_api_test")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Samsara.Token != "samsara_api_test" {
		t.Errorf("Samsara.Token = %q, want samsara_api_test", cfg.Samsara.Token)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "broker-2:9092" {
		t.Errorf("Kafka.Brokers = %v, want trimmed two-element list", cfg.Kafka.Brokers)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want json", cfg.Logging.Format)
	}
}

func TestLoad_AlternateEnvNames(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_URL", "postgres://localhost/fleetops")
	t.Setenv("VITE_SAMSARA_API_TOKEN", "legacy-token")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Database.URL != "postgres://localhost/fleetops" {
		t.Errorf("Database.URL = %q, want DB_URL value", cfg.Database.URL)
	}
	if cfg.Samsara.Token != "legacy-token" {
		t.Errorf("Samsara.Token = %q, want VITE_ alternate value", cfg.Samsara.Token)
	}
}

func TestLoad_PrimaryEnvWinsOverAlternate(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://primary/db")
	t.Setenv("DB_URL", "postgres://alternate/db")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.URL != "postgres://primary/db" {
		t.Errorf("Database.URL = %q, want primary value", cfg.Database.URL)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "70000")

	_, err := Load()
	if err == nil {
		t.Fatal("Load with SERVER_PORT=70000 succeeded, want error")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error = %v, want mention of SERVER_PORT", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("SAMSARA_TIMEOUT", "soon")

	_, err := Load()
	if err == nil {
		t.Fatal("Load with bad duration succeeded, want error")
	}
}

func TestLoad_DatabaseValidationOnlyWhenConfigured(t *testing.T) {
	clearEnv(t)
	t.Setenv("DB_MAX_CONNS", "1")
	t.Setenv("DB_MIN_CONNS", "5")

	// No URL set: pool bounds are irrelevant and must not fail validation.
	if _, err := Load(); err != nil {
		t.Fatalf("Load without DATABASE_URL: %v", err)
	}

	t.Setenv("DATABASE_URL", "postgres://localhost/fleetops")
	if _, err := Load(); err == nil {
		t.Fatal("Load with MaxConns < MinConns succeeded, want error")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	if _, err := Load(); err == nil {
		t.Fatal("Load with LOG_LEVEL=verbose succeeded, want error")
	}
}

func TestServerConfig_Addr(t *testing.T) {
	c := ServerConfig{Host: "127.0.0.1", Port: 3000}
	if got := c.Addr(); got != "127.0.0.1:3000" {
		t.Errorf("Addr() = %q, want 127.0.0.1:3000", got)
	}
}
