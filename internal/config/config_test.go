package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"MONGO_URI", "DB_NAME", "JWT_SECRET", "ACCESS_TOKEN_TTL", "STORE_BACKEND", "REQUEST_TIMEOUT", "FANOUT_LIMIT", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := FromEnv()
	if cfg.DBName != "dietplanner" || cfg.StoreBackend != BackendMongo || cfg.Port != "8080" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.AccessTokenTTL != time.Hour || cfg.RequestTimeout != 5*time.Second || cfg.FanOutLimit != 8 {
		t.Fatalf("unexpected default durations: %+v", cfg)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("STORE_BACKEND", "Memory")
	t.Setenv("ACCESS_TOKEN_TTL", "15")
	t.Setenv("REQUEST_TIMEOUT", "bogus")
	t.Setenv("FANOUT_LIMIT", "0")
	t.Setenv("PORT", "9090")

	cfg := FromEnv()
	if cfg.StoreBackend != BackendMemory || cfg.Port != "9090" {
		t.Fatalf("unexpected overrides: %+v", cfg)
	}
	if cfg.AccessTokenTTL != 15*time.Minute {
		t.Fatalf("expected 15m ttl, got %v", cfg.AccessTokenTTL)
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Fatalf("expected invalid timeout to fall back, got %v", cfg.RequestTimeout)
	}
	if cfg.FanOutLimit != 0 {
		t.Fatalf("expected fan-out limit 0, got %d", cfg.FanOutLimit)
	}
}
