package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "http://localhost:3001" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	if cfg.Search.Debounce != 300*time.Millisecond {
		t.Errorf("Debounce = %v, want 300ms", cfg.Search.Debounce)
	}
	if cfg.Exchange.FallbackRate != 83 {
		t.Errorf("FallbackRate = %v, want 83", cfg.Exchange.FallbackRate)
	}
	if cfg.Store.Type != "sqlite" {
		t.Errorf("Store.Type = %q, want sqlite", cfg.Store.Type)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://tracker.example.com")
	t.Setenv("STORE_TYPE", "postgres")
	t.Setenv("DB_HOST", "db")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("REDIS_PORT", "6380")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Backend.BaseURL != "https://tracker.example.com" {
		t.Errorf("BaseURL = %q", cfg.Backend.BaseURL)
	}
	want := "postgres://postgres:secret@db:5432/cs2_tracker?sslmode=disable"
	if got := cfg.Store.PostgresDSN(); got != want {
		t.Errorf("PostgresDSN() = %q, want %q", got, want)
	}
	if got := cfg.Store.RedisAddress(); got != "localhost:6380" {
		t.Errorf("RedisAddress() = %q", got)
	}
}

func TestLoadRejectsBadCount(t *testing.T) {
	t.Setenv("SEARCH_COUNT", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for SEARCH_COUNT=0")
	}
}
