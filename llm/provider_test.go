package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"google.golang.org/genai"
)

func TestParseProviderType(t *testing.T) {
	cases := map[string]ProviderType{
		"gemini":   ProviderGemini,
		"Google":   ProviderGemini,
		"gpt":      ProviderOpenAI,
		"claude":   ProviderAnthropic,
		"deepseek": ProviderDeepSeek,
	}
	for in, want := range cases {
		got, err := ParseProviderType(in)
		if err != nil {
			t.Fatalf("ParseProviderType(%q): %v", in, err)
		}
		if got != want {
			t.Errorf("ParseProviderType(%q) = %v, want %v", in, got, want)
		}
	}

	if _, err := ParseProviderType("mistral"); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestBuilderRejectsEmptyKey(t *testing.T) {
	if _, err := ProviderOpenAI.APIKey("  "); err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestBuilderAppliesModel(t *testing.T) {
	provider, err := ProviderOpenAI.Model("gpt-4o-mini").APIKey("sk-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if provider.Name() != "openai" {
		t.Errorf("expected openai, got %q", provider.Name())
	}
	if provider.Model() != "gpt-4o-mini" {
		t.Errorf("expected gpt-4o-mini, got %q", provider.Model())
	}

	deepseek, err := ProviderDeepSeek.APIKey("sk-test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if deepseek.Name() != "deepseek" || deepseek.Model() != "deepseek-chat" {
		t.Errorf("unexpected deepseek provider %s/%s", deepseek.Name(), deepseek.Model())
	}
}

func TestAudioUnsupportedWithoutNetwork(t *testing.T) {
	providers := []Provider{
		NewOpenAIProvider("sk-test", "gpt-4o", 100, 0.7),
		NewDeepSeekProvider("sk-test", "deepseek-chat", 100, 0.7),
		NewAnthropicProvider("sk-ant-test", "claude-sonnet-4-20250514", 100, 0.7),
	}
	for _, p := range providers {
		_, err := p.Generate(context.Background(), Request{Task: "hello", Modality: ModalityAudio})
		if !errors.Is(err, ErrModalityUnsupported) {
			t.Errorf("%s: expected ErrModalityUnsupported, got %v", p.Name(), err)
		}
	}
}

func TestConvertToGeminiSchema(t *testing.T) {
	raw := `{
		"type": "array",
		"items": {
			"type": "object",
			"properties": {
				"question": {"type": "string"},
				"options": {"type": "array", "items": {"type": "string"}, "minItems": 4, "maxItems": 5},
				"correctAnswers": {"type": "array", "items": {"type": "integer"}},
				"isMultiSelect": {"type": "boolean"}
			},
			"required": ["question", "options"]
		}
	}`
	var params map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}

	schema := convertToGeminiSchema(params)
	if schema.Type != genai.TypeArray {
		t.Fatalf("expected array, got %v", schema.Type)
	}
	item := schema.Items
	if item == nil || item.Type != genai.TypeObject {
		t.Fatalf("expected object items, got %+v", item)
	}
	if len(item.Required) != 2 {
		t.Errorf("expected 2 required fields, got %v", item.Required)
	}
	options := item.Properties["options"]
	if options == nil || options.Items == nil || options.Items.Type != genai.TypeString {
		t.Fatalf("expected string array options, got %+v", options)
	}
	if options.MinItems == nil || *options.MinItems != 4 {
		t.Errorf("expected minItems 4, got %v", options.MinItems)
	}
	if item.Properties["correctAnswers"].Items.Type != genai.TypeInteger {
		t.Error("expected integer answer indices")
	}
	if item.Properties["isMultiSelect"].Type != genai.TypeBoolean {
		t.Error("expected boolean flag")
	}
}

func TestSchemaInstructionEmbedsSchema(t *testing.T) {
	format := NewJSONSchemaFormat("case_study", json.RawMessage(`{"type":"object"}`))
	got := withSchemaInstruction("You are a professor.", format.JSONSchema)
	if !strings.HasPrefix(got, "You are a professor.") {
		t.Errorf("expected original instruction first, got %q", got)
	}
	if !strings.Contains(got, "case_study") || !strings.Contains(got, `{"type":"object"}`) {
		t.Errorf("expected schema name and body, got %q", got)
	}
}

// TestGeminiErrorNoAPIKeyLeak verifies Gemini errors don't contain API keys
func TestGeminiErrorNoAPIKeyLeak(t *testing.T) {
	if testing.Short() {
		t.Skip("network test")
	}
	testKey := "test-invalid-key-12345xyz"
	provider := NewGeminiProvider(testKey, "gemini-2.5-flash", 100, 0.7)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := provider.Generate(ctx, Request{Task: "test"})
	if err == nil {
		t.Skip("Expected error with invalid API key, but got success - skipping leak test")
	}
	if strings.Contains(err.Error(), testKey) {
		t.Errorf("Gemini error message leaked API key: %v", err)
	}
}
