// Package llm provides shared data models for generative backends.
package llm

import (
	"encoding/json"
	"errors"
)

// ErrModalityUnsupported is returned when a provider cannot produce the requested modality.
var ErrModalityUnsupported = errors.New("response modality not supported by provider")

// Modality selects what kind of output the backend should produce.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityAudio Modality = "audio"
)

// Request is a single generation request.
type Request struct {
	// Instruction fixes persona, response language and emphasis (system instruction).
	Instruction string
	// Task is the user-turn content.
	Task string
	// Format constrains the output shape; nil requests free text.
	Format *ResponseFormat
	// Modality defaults to text when empty.
	Modality Modality
	// Voice names a prebuilt voice for audio output.
	Voice string
	// Model overrides the provider's default model when set.
	Model string
}

// Response is the raw backend output.
type Response struct {
	Text          string
	Audio         []byte
	AudioMIMEType string
	Usage         *TokenUsage
}

// TokenUsage contains token usage statistics.
type TokenUsage struct {
	PromptTokens     uint32
	CompletionTokens uint32
	TotalTokens      uint32
}

// ResponseFormatType defines the type of response format.
type ResponseFormatType string

const (
	ResponseFormatText       ResponseFormatType = "text"
	ResponseFormatJSONObject ResponseFormatType = "json_object"
	ResponseFormatJSONSchema ResponseFormatType = "json_schema"
)

// ResponseFormat specifies how the backend should format its response.
type ResponseFormat struct {
	Type       ResponseFormatType `json:"type"`
	JSONSchema *JSONSchemaFormat  `json:"json_schema,omitempty"`
}

// JSONSchemaFormat defines a JSON schema for structured outputs.
type JSONSchemaFormat struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Schema      json.RawMessage `json:"schema"`
	Strict      bool            `json:"strict"`
}

// NewTextFormat creates a text response format.
func NewTextFormat() *ResponseFormat {
	return &ResponseFormat{Type: ResponseFormatText}
}

// NewJSONSchemaFormat creates a JSON schema response format.
// Strict is off: several shapes carry optional fields, which strict mode rejects.
func NewJSONSchemaFormat(name string, schema json.RawMessage) *ResponseFormat {
	return &ResponseFormat{
		Type: ResponseFormatJSONSchema,
		JSONSchema: &JSONSchemaFormat{
			Name:   name,
			Schema: schema,
		},
	}
}

// wantsSchema reports whether the request carries a JSON schema constraint.
func (r Request) wantsSchema() bool {
	return r.Format != nil && r.Format.Type == ResponseFormatJSONSchema && r.Format.JSONSchema != nil
}

// modelOr returns the request's model override or the given default.
func (r Request) modelOr(def string) string {
	if r.Model != "" {
		return r.Model
	}
	return def
}
