// OpenAI Provider implementation using go-openai library.
//
// Information Hiding:
// - API endpoint and authentication
// - Request format for the Chat Completions API
// - Structured output via the json_schema response format

package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible APIs.
type OpenAIProvider struct {
	client      *openai.Client
	name        string
	model       string
	maxTokens   int
	temperature float32
	// jsonSchema is false for backends that only honour json_object.
	jsonSchema bool
}

// NewOpenAIProvider creates a new OpenAI provider.
func NewOpenAIProvider(apiKey, model string, maxTokens uint32, temperature float32) *OpenAIProvider {
	return &OpenAIProvider{
		client:      openai.NewClient(apiKey),
		name:        "openai",
		model:       model,
		maxTokens:   int(maxTokens),
		temperature: temperature,
		jsonSchema:  true,
	}
}

// Name returns the provider name.
func (p *OpenAIProvider) Name() string {
	return p.name
}

// Model returns the current model.
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Generate sends one chat completion request.
func (p *OpenAIProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if req.Modality == ModalityAudio {
		return Response{}, fmt.Errorf("%s: %w", p.name, ErrModalityUnsupported)
	}

	var messages []openai.ChatCompletionMessage
	if req.Instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: p.instruction(req),
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Task,
	})

	chatReq := openai.ChatCompletionRequest{
		Model:          req.modelOr(p.model),
		Messages:       messages,
		MaxTokens:      p.maxTokens,
		Temperature:    p.temperature,
		ResponseFormat: p.responseFormat(req),
	}

	resp, err := p.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return Response{}, fmt.Errorf("chat completion failed: %w", err)
	}

	content := ""
	if len(resp.Choices) > 0 {
		content = resp.Choices[0].Message.Content
	}

	return Response{
		Text: content,
		Usage: &TokenUsage{
			PromptTokens:     uint32(resp.Usage.PromptTokens),
			CompletionTokens: uint32(resp.Usage.CompletionTokens),
			TotalTokens:      uint32(resp.Usage.TotalTokens),
		},
	}, nil
}

// instruction appends the schema to the system prompt when the backend cannot enforce it.
func (p *OpenAIProvider) instruction(req Request) string {
	if req.wantsSchema() && !p.jsonSchema {
		return withSchemaInstruction(req.Instruction, req.Format.JSONSchema)
	}
	return req.Instruction
}

func (p *OpenAIProvider) responseFormat(req Request) *openai.ChatCompletionResponseFormat {
	switch {
	case req.wantsSchema() && p.jsonSchema:
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:        req.Format.JSONSchema.Name,
				Description: req.Format.JSONSchema.Description,
				Schema:      req.Format.JSONSchema.Schema,
				Strict:      req.Format.JSONSchema.Strict,
			},
		}
	case req.wantsSchema(), req.Format != nil && req.Format.Type == ResponseFormatJSONObject:
		return &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	default:
		return nil
	}
}

// Verify OpenAIProvider implements Provider
var _ Provider = (*OpenAIProvider)(nil)
