package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"QF_ADDR", "QF_LOG_LEVEL", "QF_WHATSAPP_NUMBER", "QF_LOOKUP_URL",
		"QF_LOOKUP_TIMEOUT", "QF_SESSION_TTL", "QF_REDIS_ADDR", "QF_THEME_VARIANT",
	} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %s", cfg.Addr)
	}
	if cfg.WhatsAppNumber != "5511976447001" {
		t.Fatalf("expected default destination, got %s", cfg.WhatsAppNumber)
	}
	if cfg.LookupTimeout != 5*time.Second {
		t.Fatalf("expected default lookup timeout, got %s", cfg.LookupTimeout)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected default session ttl, got %s", cfg.SessionTTL)
	}
	if cfg.UseRedis() {
		t.Fatalf("expected memory sessions by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("QF_ADDR", ":9090")
	t.Setenv("QF_LOG_LEVEL", "DEBUG")
	t.Setenv("QF_WHATSAPP_NUMBER", "5521900000000")
	t.Setenv("QF_LOOKUP_TIMEOUT", "750ms")
	t.Setenv("QF_SESSION_TTL", "not-a-duration")
	t.Setenv("QF_REDIS_ADDR", "localhost:6379")
	t.Setenv("QF_REDIS_DB", "3")
	t.Setenv("QF_THEME_VARIANT", "dark")

	cfg := Load()
	if cfg.Addr != ":9090" {
		t.Fatalf("expected addr override, got %s", cfg.Addr)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("expected lower-cased level, got %s", cfg.LogLevel)
	}
	if cfg.WhatsAppNumber != "5521900000000" {
		t.Fatalf("expected destination override, got %s", cfg.WhatsAppNumber)
	}
	if cfg.LookupTimeout != 750*time.Millisecond {
		t.Fatalf("expected lookup timeout override, got %s", cfg.LookupTimeout)
	}
	if cfg.SessionTTL != 30*time.Minute {
		t.Fatalf("expected invalid ttl to fall back, got %s", cfg.SessionTTL)
	}
	if !cfg.UseRedis() || cfg.RedisDB != 3 {
		t.Fatalf("expected redis override, got %q db %d", cfg.RedisAddr, cfg.RedisDB)
	}
	if cfg.ThemeVariant != "dark" {
		t.Fatalf("expected theme variant override, got %s", cfg.ThemeVariant)
	}
}
