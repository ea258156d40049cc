package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"todo/internal/config"
	"todo/internal/service"
)

func TestNew_DefaultsWithoutFile(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Dir != dir {
		t.Errorf("expected dir %q, got %q", dir, cfg.Dir)
	}
	if cfg.Remote.BaseURL != "http://localhost:8080/" {
		t.Errorf("unexpected base url %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.Timeout != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", cfg.Remote.Timeout)
	}

	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != service.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", s)
	}
}

func TestNew_ReadsFile(t *testing.T) {
	dir := t.TempDir()
	data := "log_level: DEBUG\nremote:\n  base_url: http://tasks.example/api/\n  timeout: 2s\ndefaults:\n  filter: incomplete\n  sort: created\n  order: desc\n"
	if err := os.WriteFile(filepath.Join(dir, config.ConfigFile), []byte(data), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote.BaseURL != "http://tasks.example/api/" {
		t.Errorf("unexpected base url %q", cfg.Remote.BaseURL)
	}
	if cfg.Remote.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", cfg.Remote.Timeout)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Errorf("expected DEBUG, got %q", cfg.LogLevel)
	}

	s, err := cfg.Settings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := service.Settings{Filter: service.FilterIncomplete, SortKey: service.SortByCreatedDate, Direction: service.Descending}
	if s != want {
		t.Errorf("expected %+v, got %+v", want, s)
	}
}

func TestNew_EnvOverride(t *testing.T) {
	t.Setenv("TODO_BASE_URL", "http://env.example/")

	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Remote.BaseURL != "http://env.example/" {
		t.Errorf("expected env base url, got %q", cfg.Remote.BaseURL)
	}
}

func TestSaveDefaults_RoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested")

	cfg, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := service.Settings{Filter: service.FilterComplete, SortKey: service.SortByCreatedDate, Direction: service.Ascending}
	if err := cfg.SaveDefaults(want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if !cfg.HasConfigFile() {
		t.Fatal("expected config file to exist")
	}

	reloaded, err := config.New(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := reloaded.Settings()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
	if reloaded.Remote.Timeout != 5*time.Second {
		t.Errorf("expected timeout to survive save, got %v", reloaded.Remote.Timeout)
	}
}

func TestDefaultConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := config.DefaultConfigDir(); got != filepath.Join("/tmp/xdg", "todo") {
		t.Errorf("unexpected dir %q", got)
	}
}
