// Google Gemini Provider implementation using official google.golang.org/genai SDK.
//
// Information Hiding:
// - API authentication and client creation
// - System instruction handling via config
// - JSON schema translation to genai.Schema for constrained output
// - Speech synthesis via audio response modality and prebuilt voices

package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"google.golang.org/genai"
)

// GeminiProvider implements the Provider interface for Google Gemini.
type GeminiProvider struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
	initErr     error // Stores client initialization error for deferred reporting
}

// NewGeminiProvider creates a new Gemini provider.
// If client initialization fails, the error is stored and returned on first use.
func NewGeminiProvider(apiKey, model string, maxTokens uint32, temperature float32) *GeminiProvider {
	p := &GeminiProvider{
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: temperature,
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		p.initErr = fmt.Errorf("failed to initialize Gemini client: %w", err)
		return p
	}
	p.client = client
	return p
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the current model.
func (p *GeminiProvider) Model() string {
	return p.model
}

// Generate sends one GenerateContent request.
func (p *GeminiProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if p.initErr != nil {
		return Response{}, p.initErr
	}
	if p.client == nil {
		return Response{}, fmt.Errorf("gemini client not initialized")
	}

	config, err := p.buildConfig(req)
	if err != nil {
		return Response{}, err
	}

	contents := []*genai.Content{genai.NewContentFromText(req.Task, genai.RoleUser)}
	response, err := p.client.Models.GenerateContent(ctx, req.modelOr(p.model), contents, config)
	if err != nil {
		return Response{}, fmt.Errorf("generate content failed: %w", err)
	}

	out := Response{Usage: geminiUsage(response)}
	if req.Modality == ModalityAudio {
		out.Audio, out.AudioMIMEType = firstInlineData(response)
		return out, nil
	}
	out.Text = response.Text()
	return out, nil
}

func (p *GeminiProvider) buildConfig(req Request) (*genai.GenerateContentConfig, error) {
	if req.Modality == ModalityAudio {
		// TTS models accept neither system instructions nor sampling settings.
		config := &genai.GenerateContentConfig{
			ResponseModalities: []string{string(genai.ModalityAudio)},
		}
		if req.Voice != "" {
			config.SpeechConfig = &genai.SpeechConfig{
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: req.Voice},
				},
			}
		}
		return config, nil
	}

	config := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.temperature),
		MaxOutputTokens: p.maxTokens,
	}
	if req.Instruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.Instruction, genai.RoleUser)
	}

	if req.wantsSchema() {
		var raw map[string]interface{}
		if err := json.Unmarshal(req.Format.JSONSchema.Schema, &raw); err != nil {
			return nil, fmt.Errorf("invalid json schema %q: %w", req.Format.JSONSchema.Name, err)
		}
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = convertToGeminiSchema(raw)
	} else if req.Format != nil && req.Format.Type == ResponseFormatJSONObject {
		config.ResponseMIMEType = "application/json"
	}

	return config, nil
}

func geminiUsage(response *genai.GenerateContentResponse) *TokenUsage {
	if response == nil || response.UsageMetadata == nil {
		return nil
	}
	return &TokenUsage{
		PromptTokens:     uint32(response.UsageMetadata.PromptTokenCount),
		CompletionTokens: uint32(response.UsageMetadata.CandidatesTokenCount),
		TotalTokens:      uint32(response.UsageMetadata.TotalTokenCount),
	}
}

// firstInlineData returns the first inline blob of the first candidate.
func firstInlineData(response *genai.GenerateContentResponse) ([]byte, string) {
	if response == nil || len(response.Candidates) == 0 || response.Candidates[0].Content == nil {
		return nil, ""
	}
	for _, part := range response.Candidates[0].Content.Parts {
		if part != nil && part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData.Data, part.InlineData.MIMEType
		}
	}
	return nil, ""
}

// convertToGeminiSchema recursively converts a JSON schema map to Gemini format.
// Arrays always receive an items schema because Gemini requires one.
func convertToGeminiSchema(params map[string]interface{}) *genai.Schema {
	schema := &genai.Schema{}

	if t, ok := params["type"].(string); ok {
		schema.Type = mapToGeminiType(t)
	} else {
		schema.Type = genai.TypeObject
	}

	if d, ok := params["description"].(string); ok {
		schema.Description = d
	}

	switch req := params["required"].(type) {
	case []interface{}:
		for _, r := range req {
			if s, ok := r.(string); ok {
				schema.Required = append(schema.Required, s)
			}
		}
	case []string:
		schema.Required = req
	}

	if props, ok := params["properties"].(map[string]interface{}); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, prop := range props {
			if propMap, ok := prop.(map[string]interface{}); ok {
				schema.Properties[name] = convertToGeminiSchema(propMap)
			}
		}
	}

	if schema.Type == genai.TypeArray {
		if items, ok := params["items"].(map[string]interface{}); ok {
			schema.Items = convertToGeminiSchema(items)
		} else {
			schema.Items = &genai.Schema{Type: genai.TypeString}
		}
		if n, ok := params["minItems"].(float64); ok {
			schema.MinItems = genai.Ptr(int64(n))
		}
		if n, ok := params["maxItems"].(float64); ok {
			schema.MaxItems = genai.Ptr(int64(n))
		}
	}

	return schema
}

// mapToGeminiType maps JSON schema type to Gemini type.
func mapToGeminiType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// Verify GeminiProvider implements Provider
var _ Provider = (*GeminiProvider)(nil)
