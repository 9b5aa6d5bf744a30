package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadWithDefaults(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Server.Port)
	}
	if cfg.Addr() != ":8080" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("unexpected read timeout: %s", cfg.Server.ReadTimeout)
	}
	if cfg.Environment != "local" {
		t.Errorf("expected local environment, got %s", cfg.Environment)
	}
	if cfg.Paths.Catalog != "catalog/catalog.yaml" {
		t.Errorf("unexpected catalog path %s", cfg.Paths.Catalog)
	}
	if cfg.Storefront.Locale != "pt" {
		t.Errorf("expected pt locale, got %s", cfg.Storefront.Locale)
	}
	if cfg.Storefront.PageIdleTTL != 2*time.Hour {
		t.Errorf("unexpected page idle ttl: %s", cfg.Storefront.PageIdleTTL)
	}
	if cfg.Session.Secure {
		t.Errorf("expected insecure cookies outside prod")
	}
}

func TestLoadWithOverrides(t *testing.T) {
	env := map[string]string{
		"HAFEN_WEB_PORT":              "9090",
		"HAFEN_WEB_DEV":               "true",
		"HAFEN_WEB_LOG_LEVEL":         "debug",
		"HAFEN_WEB_TEMPLATES_DIR":     "/srv/templates",
		"HAFEN_WEB_PAGE_IDLE_TTL":     "30m",
		"HAFEN_WEB_READ_TIMEOUT":      "20s",
		"HAFEN_WEB_SESSION_BLOCK_KEY": "0123456789abcdef",
	}
	cfg, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Server.Port)
	}
	if !cfg.Dev {
		t.Errorf("expected dev mode")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected debug level, got %s", cfg.LogLevel)
	}
	if cfg.Paths.Templates != "/srv/templates" {
		t.Errorf("unexpected templates dir %s", cfg.Paths.Templates)
	}
	if cfg.Storefront.PageIdleTTL != 30*time.Minute {
		t.Errorf("unexpected idle ttl %s", cfg.Storefront.PageIdleTTL)
	}
	if cfg.Server.ReadTimeout != 20*time.Second {
		t.Errorf("unexpected read timeout %s", cfg.Server.ReadTimeout)
	}
	if string(cfg.Session.BlockKey) != "0123456789abcdef" {
		t.Errorf("unexpected block key %q", cfg.Session.BlockKey)
	}
}

func TestLoadFallsBackToPlatformPort(t *testing.T) {
	cfg, err := Load(WithEnvMap(map[string]string{"PORT": "3000"}), WithoutSystemEnv(), WithEnvFile(""))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "3000" {
		t.Fatalf("expected PORT fallback, got %s", cfg.Server.Port)
	}
}

func TestLoadReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	content := "# local overrides\nexport HAFEN_WEB_PORT=7070\nHAFEN_WEB_LOCALE=\"PT\"\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := Load(WithEnvFile(path), WithoutSystemEnv())
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "7070" {
		t.Errorf("expected port from .env, got %s", cfg.Server.Port)
	}
	if cfg.Storefront.Locale != "pt" {
		t.Errorf("expected lower-cased locale, got %s", cfg.Storefront.Locale)
	}

	cfg, err = Load(WithEnvFile(path), WithoutSystemEnv(), WithEnvMap(map[string]string{"HAFEN_WEB_PORT": "6060"}))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != "6060" {
		t.Errorf("expected env map to win over .env, got %s", cfg.Server.Port)
	}
}

func TestLoadValidationErrors(t *testing.T) {
	env := map[string]string{
		"HAFEN_WEB_PORT":              "http",
		"HAFEN_WEB_ENV":               "prod",
		"HAFEN_WEB_SESSION_BLOCK_KEY": "short",
	}
	_, err := Load(WithEnvMap(env), WithoutSystemEnv(), WithEnvFile(""))
	if err == nil {
		t.Fatalf("expected validation error")
	}
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	want := map[string]bool{"Server.Port": false, "Session.BlockKey": false, "Session.HashKey": false}
	for _, field := range vErr.Fields() {
		if _, ok := want[field]; ok {
			want[field] = true
		}
	}
	for field, seen := range want {
		if !seen {
			t.Errorf("expected %s in %v", field, vErr.Fields())
		}
	}
}
