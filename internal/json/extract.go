// Package json provides JSON extraction utilities for parsing backend responses.
//
// Generative backends often return JSON embedded in text, wrapped in markdown
// fences, or preceded by commentary even when structured output was requested.
// This package recovers the JSON document from such responses.
package json

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON finds and returns the JSON portion of a response string.
// It handles common response patterns:
// 1. Pure JSON response - returns the full response
// 2. JSON wrapped in markdown code blocks (```json ... ```)
// 3. JSON object or array embedded in text - the span between the first
//    opening bracket and the last matching closing bracket
//
// Uses simple bracket matching, not full JSON parsing; a document whose
// brackets also appear in the surrounding prose may not be recovered.
func extractJSON(response string) (string, error) {
	response = stripMarkdownCodeBlocks(response)

	if json.Valid([]byte(response)) {
		return response, nil
	}

	for _, span := range candidateSpans(response) {
		if json.Valid([]byte(span)) {
			return span, nil
		}
	}

	preview := response
	if len(preview) > 100 {
		preview = preview[:100] + "..."
	}
	return "", fmt.Errorf("failed to extract valid JSON from response: %q", preview)
}

// candidateSpans returns embedded object/array spans, earliest opener first.
func candidateSpans(response string) []string {
	var spans []string
	objStart := strings.Index(response, "{")
	arrStart := strings.Index(response, "[")

	object := func() {
		if objStart == -1 {
			return
		}
		if end := strings.LastIndex(response, "}"); end > objStart {
			spans = append(spans, response[objStart:end+1])
		}
	}
	array := func() {
		if arrStart == -1 {
			return
		}
		if end := strings.LastIndex(response, "]"); end > arrStart {
			spans = append(spans, response[arrStart:end+1])
		}
	}

	if arrStart != -1 && (objStart == -1 || arrStart < objStart) {
		array()
		object()
	} else {
		object()
		array()
	}
	return spans
}

// stripMarkdownCodeBlocks removes markdown code block markers from a response.
// Handles patterns like ```json\n...\n``` or ```\n...\n```
func stripMarkdownCodeBlocks(response string) string {
	trimmed := strings.TrimSpace(response)

	if strings.HasPrefix(trimmed, "```json") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimSpace(trimmed)
	} else if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	if strings.HasSuffix(trimmed, "```") {
		trimmed = strings.TrimSuffix(trimmed, "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	return trimmed
}

// ExtractJSONFromResponse extracts and parses JSON from a backend response.
// Returns the parsed value or an error if extraction fails.
func ExtractJSONFromResponse[T any](response string) (T, error) {
	var result T
	jsonStr, err := extractJSON(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("failed to unmarshal JSON: %w", err)
	}
	return result, nil
}

// ExtractJSON extracts the JSON portion from a response string.
// Returns the raw JSON string suitable for further processing.
func ExtractJSON(response string) (string, error) {
	return extractJSON(response)
}
