// Package config provides application settings loaded from environment variables.
//
// Settings are created via New() which handles:
// - Environment variable parsing with validation
// - Default value application
// - Provider-specific configuration lookup

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Settings holds all application configuration.
type Settings struct {
	LLM     LLMConfig
	Gateway GatewayConfig
	Storage StorageConfig
	Server  ServerConfig
	Log     LogConfig
}

// LLMConfig holds backend configuration.
type LLMConfig struct {
	Provider string
	APIKey   string
	Model    string
	// FastModel serves short free-text operations (term definitions).
	FastModel string
	// SpeechModel serves narration; empty when the provider has no speech support.
	SpeechModel string
	MaxTokens   uint32
	Temperature float64
}

// GatewayConfig controls degradation behaviour.
type GatewayConfig struct {
	// OfflineFallback lets credential and transient failures degrade to demo fixtures.
	OfflineFallback bool
	// DemoMode forces offline mode regardless of the configured credential.
	DemoMode       bool
	RequestTimeout time.Duration
}

// StorageConfig holds the credential vault and journal location.
type StorageConfig struct {
	Path string
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// providerInfo holds configuration for a specific backend provider.
type providerInfo struct {
	modelEnv     string
	defaultModel string
	fastModel    string
	speechModel  string
	apiKeyEnv    string
}

// Supported providers and their configuration.
var providers = map[string]providerInfo{
	"gemini":    {"GEMINI_MODEL", "gemini-3-pro-preview", "gemini-3-flash-preview", "gemini-2.5-flash-preview-tts", "GEMINI_API_KEY"},
	"openai":    {"OPENAI_MODEL", "gpt-4o", "gpt-4o-mini", "", "OPENAI_API_KEY"},
	"anthropic": {"ANTHROPIC_MODEL", "claude-sonnet-4-20250514", "claude-haiku-4-20250514", "", "ANTHROPIC_API_KEY"},
	"deepseek":  {"DEEPSEEK_MODEL", "deepseek-chat", "deepseek-chat", "", "DEEPSEEK_API_KEY"},
}

// Provider aliases map to canonical names.
var providerAliases = map[string]string{
	"claude": "anthropic",
	"google": "gemini",
	"gpt":    "openai",
}

// DefaultProvider is used when neither the caller nor SOCIOMIND_PROVIDER names one.
const DefaultProvider = "gemini"

// New creates settings for the specified provider, loading values from environment variables.
// An empty provider reads SOCIOMIND_PROVIDER. A missing API key is not an error: the
// gateway serves demo content until a credential is selected.
func New(provider string) (Settings, error) {
	if provider == "" {
		provider = getEnv("SOCIOMIND_PROVIDER", DefaultProvider)
	}
	provider = normalizeProvider(provider)

	info, err := getProviderInfo(provider)
	if err != nil {
		return Settings{}, err
	}

	maxTokens, err := getEnvUint32("LLM_MAX_TOKENS", 8192)
	if err != nil {
		return Settings{}, err
	}

	temperature, err := getEnvFloat64("LLM_TEMPERATURE", 0.7)
	if err != nil {
		return Settings{}, err
	}

	offlineFallback, err := getEnvBool("SOCIOMIND_OFFLINE_FALLBACK", false)
	if err != nil {
		return Settings{}, err
	}

	demoMode, err := getEnvBool("SOCIOMIND_DEMO_MODE", false)
	if err != nil {
		return Settings{}, err
	}

	timeout, err := getEnvDuration("SOCIOMIND_REQUEST_TIMEOUT", 90*time.Second)
	if err != nil {
		return Settings{}, err
	}

	model := getEnv(info.modelEnv, info.defaultModel)
	fastModel := info.fastModel
	speechModel := info.speechModel
	if provider == "gemini" {
		fastModel = getEnv("GEMINI_FAST_MODEL", fastModel)
		speechModel = getEnv("GEMINI_SPEECH_MODEL", speechModel)
	}

	return Settings{
		LLM: LLMConfig{
			Provider:    provider,
			APIKey:      strings.TrimSpace(os.Getenv(info.apiKeyEnv)),
			Model:       model,
			FastModel:   fastModel,
			SpeechModel: speechModel,
			MaxTokens:   maxTokens,
			Temperature: temperature,
		},
		Gateway: GatewayConfig{
			OfflineFallback: offlineFallback,
			DemoMode:        demoMode,
			RequestTimeout:  timeout,
		},
		Storage: StorageConfig{
			Path: getEnv("SOCIOMIND_DB", ".sociomind/sociomind.db"),
		},
		Server: ServerConfig{
			Addr: getEnv("SOCIOMIND_ADDR", ":8080"),
		},
		Log: LogConfig{
			Level: getEnv("SOCIOMIND_LOG_LEVEL", "info"),
		},
	}, nil
}

// MustNew creates settings for the specified provider.
// Panics if the provider is unknown or environment variables are invalid.
func MustNew(provider string) Settings {
	settings, err := New(provider)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return settings
}

// placeholderKeys are values shipped in sample .env files and demo builds.
var placeholderKeys = map[string]bool{
	"demo":              true,
	"placeholder":       true,
	"changeme":          true,
	"your-api-key":      true,
	"your-api-key-here": true,
	"api_key":           true,
	"xxx":               true,
}

// IsPlaceholderKey reports whether key is absent or a demo/placeholder value.
func IsPlaceholderKey(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" || placeholderKeys[k] {
		return true
	}
	return strings.HasPrefix(k, "demo-") || strings.HasPrefix(k, "placeholder-")
}

// normalizeProvider converts provider aliases to canonical names.
func normalizeProvider(provider string) string {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if canonical, ok := providerAliases[provider]; ok {
		return canonical
	}
	return provider
}

// NormalizeProvider exposes alias resolution for callers that store provider names.
func NormalizeProvider(provider string) string {
	return normalizeProvider(provider)
}

// getProviderInfo returns configuration for a provider.
func getProviderInfo(provider string) (providerInfo, error) {
	info, ok := providers[provider]
	if !ok {
		return providerInfo{}, fmt.Errorf("unknown provider: %q", provider)
	}
	return info, nil
}

// APIKeyEnvFor returns the environment variable holding the provider's API key.
func APIKeyEnvFor(provider string) (string, error) {
	info, err := getProviderInfo(normalizeProvider(provider))
	if err != nil {
		return "", err
	}
	return info.apiKeyEnv, nil
}

// SupportedProviders returns the list of supported provider names.
func SupportedProviders() []string {
	result := make([]string, 0, len(providers))
	for name := range providers {
		result = append(result, name)
	}
	return result
}

// Environment variable helpers with proper error handling

func getEnv(key, defaultVal string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return defaultVal
}

func getEnvUint32(key string, defaultVal uint32) (uint32, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.ParseUint(val, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return uint32(i), nil
}

func getEnvFloat64(key string, defaultVal float64) (float64, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return f, nil
}

func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("invalid value for %s: %q: %w", key, val, err)
	}
	return d, nil
}
