package runtimeconfig

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "press.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Build.OutputDir != "public" {
		t.Errorf("OutputDir = %q, want public", cfg.Build.OutputDir)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "press.yml")
	data := []byte("site:\n  title: AngularJS Notes\n  base_url: https://blog.example.com\nbuild:\n  output_dir: dist\n  workers: 4\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Site.Title != "AngularJS Notes" {
		t.Errorf("Title = %q", cfg.Site.Title)
	}
	if cfg.Build.OutputDir != "dist" {
		t.Errorf("OutputDir = %q", cfg.Build.OutputDir)
	}
	if cfg.Build.Workers != 4 {
		t.Errorf("Workers = %d", cfg.Build.Workers)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Level = %q", cfg.Logging.Level)
	}
	// Untouched sections keep their defaults.
	if cfg.Content.Dir != "content" {
		t.Errorf("Content.Dir = %q", cfg.Content.Dir)
	}
}

func TestValidateRejectsMissingBaseURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Site.BaseURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation failure")
	}
	if !errors.Is(err, ErrConfigInvalid) {
		t.Errorf("err = %v, want ErrConfigInvalid", err)
	}
}

func TestValidateRejectsUnknownCacheDriver(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Driver = "redis"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for cache driver")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Logging.Level = "loud"

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation failure for log level")
	}
}
