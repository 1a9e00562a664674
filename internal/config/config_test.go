package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_URI", "mongodb://db.internal:27017/appointments?retryWrites=true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MongoDB != "appointments" {
		t.Fatalf("expected db name from uri, got %q", cfg.MongoDB)
	}
	if cfg.ServerAddr != ":8080" {
		t.Fatalf("unexpected server addr %q", cfg.ServerAddr)
	}
	if cfg.JWTExpiresIn != 168*time.Hour {
		t.Fatalf("unexpected token ttl %v", cfg.JWTExpiresIn)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
	if cfg.CacheTTL() != time.Minute {
		t.Fatalf("unexpected cache ttl %v", cfg.CacheTTL())
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("MONGO_DB", "")
	t.Setenv("JWT_EXPIRES_IN", "30m")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.MongoDB != "booking" {
		t.Fatalf("expected fallback db name, got %q", cfg.MongoDB)
	}
	if cfg.JWTExpiresIn != 30*time.Minute {
		t.Fatalf("unexpected token ttl %v", cfg.JWTExpiresIn)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins %v", cfg.CORSOrigins)
	}
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	if _, err := Load(); err == nil {
		t.Fatalf("expected missing JWT_SECRET to fail")
	}
}
