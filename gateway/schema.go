package gateway

import (
	"encoding/json"

	"github.com/richinex/sociomind/model"
)

// FieldKind is the primitive kind of one output field.
type FieldKind int

const (
	KindString FieldKind = iota
	KindInteger
	KindNumber
	KindBoolean
	KindStringArray
	KindIntegerArray
	KindObjectArray
)

func (k FieldKind) isArray() bool {
	return k == KindStringArray || k == KindIntegerArray || k == KindObjectArray
}

// FieldSpec declares one field of an output shape.
type FieldSpec struct {
	Name        string
	Kind        FieldKind
	Required    bool
	Description string
	// Items describes the objects of a KindObjectArray field.
	Items []FieldSpec
	// MinItems and MaxItems bound array fields; zero means unbounded.
	MinItems int
	MaxItems int
}

// OutputShape is a closed descriptor of the structured output an operation
// expects. A shape with List set describes an array of such objects.
type OutputShape struct {
	Name        string
	Description string
	List        bool
	MinItems    int
	Fields      []FieldSpec
}

var quizShape = OutputShape{
	Name:        "quiz_batch",
	Description: "Narration-based HOTS quiz questions",
	List:        true,
	MinItems:    1,
	Fields: []FieldSpec{
		{Name: "question", Kind: KindString, Required: true},
		{Name: "options", Kind: KindStringArray, Required: true, MinItems: 4, MaxItems: 5},
		{Name: "correctAnswers", Kind: KindIntegerArray, Required: true, MinItems: 1,
			Description: "Zero-based indices of the correct options"},
		{Name: "isMultiSelect", Kind: KindBoolean, Required: true},
		{Name: "explanation", Kind: KindString, Required: true},
	},
}

var customQuestionShape = OutputShape{
	Name:        "custom_question",
	Description: "A single sociology question with answer key",
	Fields: []FieldSpec{
		{Name: "type", Kind: KindString, Required: true},
		{Name: "content", Kind: KindString, Required: true},
		{Name: "options", Kind: KindStringArray},
		{Name: "answerKeys", Kind: KindStringArray, Description: `Letters of the correct options, e.g. ["A", "C"]`},
		{Name: "deepExplanation", Kind: KindString, Required: true},
	},
}

var caseStudyShape = OutputShape{
	Name:        "case_study",
	Description: "A social case study with discussion questions",
	Fields: []FieldSpec{
		{Name: "title", Kind: KindString, Required: true},
		{Name: "scenario", Kind: KindString, Required: true},
		{Name: "analysisQuestions", Kind: KindStringArray, Required: true, MinItems: 1},
		{Name: "proposedSolutions", Kind: KindStringArray},
	},
}

var analysisShape = OutputShape{
	Name:        "social_analysis",
	Description: "Theory relevance scores for a social observation",
	Fields: []FieldSpec{
		{Name: "summary", Kind: KindString, Required: true},
		{Name: "scores", Kind: KindObjectArray, Required: true, MinItems: 1, Items: []FieldSpec{
			{Name: "label", Kind: KindString, Required: true},
			{Name: "value", Kind: KindNumber, Required: true, Description: "Relevance from 0 to 100"},
			{Name: "category", Kind: KindString},
		}},
		{Name: "detailedAnalysis", Kind: KindString, Required: true},
	},
}

// ShapeFor returns the output shape of an operation. ok is false for
// operations whose output is free text or audio.
func ShapeFor(kind model.OperationKind) (shape OutputShape, ok bool) {
	switch kind {
	case model.OpQuiz:
		return quizShape, true
	case model.OpCustomQuestion:
		return customQuestionShape, true
	case model.OpCaseStudy:
		return caseStudyShape, true
	case model.OpAnalysis:
		return analysisShape, true
	default:
		return OutputShape{}, false
	}
}

// JSONSchema renders the shape as a JSON schema document.
func (s OutputShape) JSONSchema() map[string]interface{} {
	object := objectSchema(s.Fields)
	if !s.List {
		if s.Description != "" {
			object["description"] = s.Description
		}
		return object
	}

	schema := map[string]interface{}{
		"type":  "array",
		"items": object,
	}
	if s.Description != "" {
		schema["description"] = s.Description
	}
	if s.MinItems > 0 {
		schema["minItems"] = s.MinItems
	}
	return schema
}

// RawSchema returns JSONSchema encoded for the backend request.
func (s OutputShape) RawSchema() json.RawMessage {
	data, err := json.Marshal(s.JSONSchema())
	if err != nil {
		// Only maps, strings and ints are marshalled.
		panic(err)
	}
	return data
}

func objectSchema(fields []FieldSpec) map[string]interface{} {
	properties := make(map[string]interface{}, len(fields))
	required := []string{}
	for _, f := range fields {
		properties[f.Name] = fieldSchema(f)
		if f.Required {
			required = append(required, f.Name)
		}
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": properties,
		"required":   required,
	}
}

func fieldSchema(f FieldSpec) map[string]interface{} {
	var schema map[string]interface{}
	switch f.Kind {
	case KindString:
		schema = map[string]interface{}{"type": "string"}
	case KindInteger:
		schema = map[string]interface{}{"type": "integer"}
	case KindNumber:
		schema = map[string]interface{}{"type": "number"}
	case KindBoolean:
		schema = map[string]interface{}{"type": "boolean"}
	case KindStringArray:
		schema = map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "string"}}
	case KindIntegerArray:
		schema = map[string]interface{}{"type": "array", "items": map[string]interface{}{"type": "integer"}}
	case KindObjectArray:
		schema = map[string]interface{}{"type": "array", "items": objectSchema(f.Items)}
	}
	if f.Description != "" {
		schema["description"] = f.Description
	}
	if f.MinItems > 0 {
		schema["minItems"] = f.MinItems
	}
	if f.MaxItems > 0 {
		schema["maxItems"] = f.MaxItems
	}
	return schema
}
