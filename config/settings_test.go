package config

import (
	"testing"
	"time"
)

func TestNewValidProvider(t *testing.T) {
	settings, err := New("openai")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", settings.LLM.Provider)
	}
}

func TestNewWithAlias(t *testing.T) {
	settings, err := New("google")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "gemini" {
		t.Errorf("expected provider 'gemini' (normalized from 'google'), got %q", settings.LLM.Provider)
	}
}

func TestNewDefaultsToEnvProvider(t *testing.T) {
	t.Setenv("SOCIOMIND_PROVIDER", "claude")

	settings, err := New("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Provider != "anthropic" {
		t.Errorf("expected provider 'anthropic', got %q", settings.LLM.Provider)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New("unknown_provider")
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestNewMissingAPIKeyIsNotAnError(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.APIKey != "" {
		t.Errorf("expected empty API key, got %q", settings.LLM.APIKey)
	}
}

func TestNewGeminiModels(t *testing.T) {
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("GEMINI_FAST_MODEL", "gemini-fast-test")
	t.Setenv("GEMINI_SPEECH_MODEL", "")

	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if settings.LLM.Model != "gemini-3-pro-preview" {
		t.Errorf("unexpected default model %q", settings.LLM.Model)
	}
	if settings.LLM.FastModel != "gemini-fast-test" {
		t.Errorf("expected fast model override, got %q", settings.LLM.FastModel)
	}
	if settings.LLM.SpeechModel == "" {
		t.Error("expected gemini speech model default")
	}
}

func TestNewGatewayFlags(t *testing.T) {
	t.Setenv("SOCIOMIND_OFFLINE_FALLBACK", "true")
	t.Setenv("SOCIOMIND_DEMO_MODE", "1")
	t.Setenv("SOCIOMIND_REQUEST_TIMEOUT", "15s")

	settings, err := New("gemini")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !settings.Gateway.OfflineFallback {
		t.Error("expected offline fallback enabled")
	}
	if !settings.Gateway.DemoMode {
		t.Error("expected demo mode enabled")
	}
	if settings.Gateway.RequestTimeout != 15*time.Second {
		t.Errorf("expected 15s timeout, got %s", settings.Gateway.RequestTimeout)
	}
}

func TestNewWithInvalidEnvVar(t *testing.T) {
	cases := map[string]string{
		"LLM_MAX_TOKENS":             "not-a-number",
		"LLM_TEMPERATURE":            "warm",
		"SOCIOMIND_OFFLINE_FALLBACK": "maybe",
		"SOCIOMIND_REQUEST_TIMEOUT":  "soon",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)
			if _, err := New("gemini"); err == nil {
				t.Errorf("expected error for invalid %s", key)
			}
		})
	}
}

func TestMustNewPanics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic for unknown provider")
		}
	}()
	MustNew("unknown_provider")
}

func TestIsPlaceholderKey(t *testing.T) {
	placeholders := []string{"", "  ", "demo", "DEMO", "placeholder", "your-api-key-here", "demo-123", "Placeholder-key"}
	for _, key := range placeholders {
		if !IsPlaceholderKey(key) {
			t.Errorf("expected %q to be a placeholder", key)
		}
	}

	keys := []string{"AIzaSyA-real-looking-key", "sk-live-abc", "demonstration"}
	for _, key := range keys {
		if IsPlaceholderKey(key) {
			t.Errorf("expected %q to be a real key", key)
		}
	}
}

func TestAPIKeyEnvFor(t *testing.T) {
	env, err := APIKeyEnvFor("claude")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if env != "ANTHROPIC_API_KEY" {
		t.Errorf("expected ANTHROPIC_API_KEY, got %q", env)
	}
	if _, err := APIKeyEnvFor("unknown"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestSupportedProviders(t *testing.T) {
	providers := SupportedProviders()
	if len(providers) != 4 {
		t.Errorf("expected 4 supported providers, got %d", len(providers))
	}
}
