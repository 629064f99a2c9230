package envconf

import (
	"errors"
	"log/slog"
	"testing"
	"time"
)

type pgBlock struct {
	DSN          string `env:"TEST_PG_DSN"`
	MaxOpenConns int    `env:"TEST_PG_MAX_OPEN" default:"10"`
}

type appConfig struct {
	Port     uint16        `env:"TEST_APP_PORT"`
	LogLevel slog.Level    `env:"TEST_APP_LOG_LEVEL" default:"INFO"`
	Timeout  time.Duration `env:"TEST_APP_TIMEOUT" default:"5s"`
	Debug    bool          `env:"TEST_APP_DEBUG" default:"false"`
	Postgres pgBlock
}

func TestLoad_FullConfig(t *testing.T) {
	t.Setenv("TEST_APP_PORT", "8080")
	t.Setenv("TEST_APP_LOG_LEVEL", "DEBUG")
	t.Setenv("TEST_APP_TIMEOUT", "30s")
	t.Setenv("TEST_APP_DEBUG", "true")
	t.Setenv("TEST_PG_DSN", "postgres://localhost:5432/flowe")
	t.Setenv("TEST_PG_MAX_OPEN", "25")

	cfg := new(appConfig)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("port: want 8080, got %d", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("log level: want DEBUG, got %v", cfg.LogLevel)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("timeout: want 30s, got %v", cfg.Timeout)
	}
	if !cfg.Debug {
		t.Error("debug: want true")
	}
	if cfg.Postgres.DSN != "postgres://localhost:5432/flowe" {
		t.Errorf("nested dsn not loaded, got %q", cfg.Postgres.DSN)
	}
	if cfg.Postgres.MaxOpenConns != 25 {
		t.Errorf("nested int: want 25, got %d", cfg.Postgres.MaxOpenConns)
	}
}

func TestLoad_DefaultsApply(t *testing.T) {
	t.Setenv("TEST_APP_PORT", "9000")
	t.Setenv("TEST_PG_DSN", "postgres://localhost/x")

	cfg := new(appConfig)

	err := Load(cfg)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("default log level: want INFO, got %v", cfg.LogLevel)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("default timeout: want 5s, got %v", cfg.Timeout)
	}
	if cfg.Postgres.MaxOpenConns != 10 {
		t.Errorf("default nested int: want 10, got %d", cfg.Postgres.MaxOpenConns)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("TEST_APP_PORT", "9000")
	// TEST_PG_DSN intentionally unset and has no default.

	cfg := new(appConfig)

	err := Load(cfg)
	if !errors.Is(err, ErrMissingRequired) {
		t.Fatalf("want ErrMissingRequired, got %v", err)
	}
}

func TestLoad_BadValue(t *testing.T) {
	t.Setenv("TEST_APP_PORT", "not-a-port")
	t.Setenv("TEST_PG_DSN", "postgres://localhost/x")

	cfg := new(appConfig)

	err := Load(cfg)
	if err == nil {
		t.Fatal("want parse error for bad uint, got nil")
	}
}
