package json

import (
	"strings"
	"testing"
)

type TestStruct struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

func TestPureJSON(t *testing.T) {
	response := `{"name": "test", "value": 42}`
	result, err := ExtractJSONFromResponse[TestStruct](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "test" {
		t.Errorf("expected name 'test', got '%s'", result.Name)
	}
	if result.Value != 42 {
		t.Errorf("expected value 42, got %d", result.Value)
	}
}

func TestJSONWithProse(t *testing.T) {
	response := `Here is the result: {"name": "test", "value": 42} That's the output.`
	result, err := ExtractJSONFromResponse[TestStruct](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "test" || result.Value != 42 {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestMarkdownFence(t *testing.T) {
	response := "```json\n{\"name\": \"fenced\", \"value\": 7}\n```"
	result, err := ExtractJSONFromResponse[TestStruct](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Name != "fenced" {
		t.Errorf("expected name 'fenced', got '%s'", result.Name)
	}
}

func TestArrayResponse(t *testing.T) {
	response := `Questions follow:
[{"name": "a", "value": 1}, {"name": "b", "value": 2}]`
	result, err := ExtractJSONFromResponse[[]TestStruct](response)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result))
	}
	if result[1].Name != "b" {
		t.Errorf("expected second name 'b', got '%s'", result[1].Name)
	}
}

func TestObjectContainingArray(t *testing.T) {
	raw, err := ExtractJSON(`Result: {"items": [1, 2, 3]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if raw != `{"items": [1, 2, 3]}` {
		t.Errorf("unexpected extraction: %s", raw)
	}
}

func TestNoJSON(t *testing.T) {
	response := "This is just plain text without any JSON."
	_, err := ExtractJSONFromResponse[TestStruct](response)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "failed to extract valid JSON") {
		t.Errorf("expected 'failed to extract valid JSON' in error, got: %v", err)
	}
}

func TestInvalidJSON(t *testing.T) {
	response := `{"name": "test", value: }`
	_, err := ExtractJSONFromResponse[TestStruct](response)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
