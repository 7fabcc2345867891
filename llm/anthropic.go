// Anthropic Provider implementation using official anthropic-sdk-go.
//
// Information Hiding:
// - API endpoint and authentication
// - Request format for the Messages API
// - Output shapes enforced through the system prompt

package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicProvider implements the Provider interface for Anthropic Claude.
type AnthropicProvider struct {
	client      anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

// NewAnthropicProvider creates a new Anthropic provider.
func NewAnthropicProvider(apiKey, model string, maxTokens uint32, temperature float32) *AnthropicProvider {
	return &AnthropicProvider{
		client:      anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: float64(temperature),
	}
}

// Name returns the provider name.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

// Model returns the current model.
func (p *AnthropicProvider) Model() string {
	return p.model
}

// Generate sends one Messages API request.
func (p *AnthropicProvider) Generate(ctx context.Context, req Request) (Response, error) {
	if req.Modality == ModalityAudio {
		return Response{}, fmt.Errorf("anthropic: %w", ErrModalityUnsupported)
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(req.modelOr(p.model)),
		MaxTokens: p.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.Task)),
		},
		Temperature: anthropic.Float(p.temperature),
	}

	system := req.Instruction
	if req.wantsSchema() {
		system = withSchemaInstruction(system, req.Format.JSONSchema)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	message, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return Response{}, fmt.Errorf("message creation failed: %w", err)
	}

	var content strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			content.WriteString(text.Text)
		}
	}

	return Response{
		Text: content.String(),
		Usage: &TokenUsage{
			PromptTokens:     uint32(message.Usage.InputTokens),
			CompletionTokens: uint32(message.Usage.OutputTokens),
			TotalTokens:      uint32(message.Usage.InputTokens + message.Usage.OutputTokens),
		},
	}, nil
}

// withSchemaInstruction appends a JSON-only directive carrying the schema.
func withSchemaInstruction(instruction string, format *JSONSchemaFormat) string {
	var b strings.Builder
	if instruction != "" {
		b.WriteString(instruction)
		b.WriteString("\n\n")
	}
	b.WriteString("Respond ONLY with valid JSON (no markdown, no commentary) conforming to this JSON schema named ")
	b.WriteString(format.Name)
	b.WriteString(":\n")
	b.Write(format.Schema)
	return b.String()
}

// Verify AnthropicProvider implements Provider
var _ Provider = (*AnthropicProvider)(nil)
