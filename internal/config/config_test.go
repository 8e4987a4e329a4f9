package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want development", cfg.Env)
	}
	if cfg.CRMTimeout != 10*time.Second {
		t.Errorf("CRMTimeout = %v, want 10s", cfg.CRMTimeout)
	}
	if cfg.LLMTimeout != 10*time.Second {
		t.Errorf("LLMTimeout = %v, want 10s", cfg.LLMTimeout)
	}
	if cfg.FuzzyThreshold != 72 {
		t.Errorf("FuzzyThreshold = %d, want 72", cfg.FuzzyThreshold)
	}
	if cfg.LLMMaxTokens != 120 {
		t.Errorf("LLMMaxTokens = %d, want 120", cfg.LLMMaxTokens)
	}
	if cfg.GeminiModelID == "" {
		t.Error("GeminiModelID should have a default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("FUZZY_MATCH_THRESHOLD", "75")
	t.Setenv("CRM_TIMEOUT", "5s")
	t.Setenv("REDIS_TLS", "true")

	cfg := Load()

	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if cfg.FuzzyThreshold != 75 {
		t.Errorf("FuzzyThreshold = %d, want 75", cfg.FuzzyThreshold)
	}
	if cfg.CRMTimeout != 5*time.Second {
		t.Errorf("CRMTimeout = %v, want 5s", cfg.CRMTimeout)
	}
	if !cfg.RedisTLS {
		t.Error("RedisTLS should be true")
	}
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("FUZZY_MATCH_THRESHOLD", "not-a-number")
	t.Setenv("CRM_TIMEOUT", "soon")

	cfg := Load()

	if cfg.FuzzyThreshold != 72 {
		t.Errorf("FuzzyThreshold = %d, want default 72", cfg.FuzzyThreshold)
	}
	if cfg.CRMTimeout != 10*time.Second {
		t.Errorf("CRMTimeout = %v, want default 10s", cfg.CRMTimeout)
	}
}
