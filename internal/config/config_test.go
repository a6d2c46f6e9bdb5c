package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SESSION_STORE", "")
	t.Setenv("BACKEND_API_BASE_URL", "http://api.local/api/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Session.Store != StoreMemory {
		t.Fatalf("store = %q, want memory", cfg.Session.Store)
	}
	if cfg.Backend.BaseURL != "http://api.local/api" {
		t.Fatalf("base url = %q", cfg.Backend.BaseURL)
	}
	if cfg.Session.CookieName != "festivaz_sid" {
		t.Fatalf("cookie = %q", cfg.Session.CookieName)
	}
}

func TestLoadRejectsPostgresStoreWithoutDSN(t *testing.T) {
	t.Setenv("SESSION_STORE", "Postgres")
	t.Setenv("POSTGRES_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("SESSION_STORE", "memcached")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error")
	}
}

func TestDurations(t *testing.T) {
	if got := (SessionConfig{TTLMinutes: 0}).TTL(); got != 0 {
		t.Fatalf("ttl = %v", got)
	}
	if got := (BackendConfig{}).Timeout(); got != 10*time.Second {
		t.Fatalf("timeout = %v", got)
	}
	if got := (AppConfig{Host: "h", Port: "1"}).Addr(); got != "h:1" {
		t.Fatalf("addr = %q", got)
	}
}
