package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/richinex/sociomind/llm"
	"github.com/richinex/sociomind/model"
)

func TestValidateQuiz(t *testing.T) {
	raw := `Berikut kuisnya:
[
  {"question": "Q1", "options": ["a", "b", "c", "d"], "correctAnswers": [2, 0, 2], "isMultiSelect": false, "explanation": "E1"},
  {"question": "Q2", "options": ["a", "b", "c", "d", "e"], "correctAnswers": "3", "isMultiSelect": "true", "explanation": "E2"}
]`
	batch, err := ValidateQuiz(raw)
	require.NoError(t, err)
	require.Len(t, batch, 2)

	assert.Equal(t, []int{0, 2}, batch[0].CorrectAnswers)
	assert.True(t, batch[0].IsMultiSelect, "flag follows the answer count")
	assert.Equal(t, []int{3}, batch[1].CorrectAnswers)
	assert.False(t, batch[1].IsMultiSelect)
	assertQuizInvariants(t, batch)
}

func TestValidateQuizUnwrapsEnvelope(t *testing.T) {
	raw := `{"questions": [{"question": "Q", "options": ["a", "b", "c", "d"], "correctAnswers": [1], "isMultiSelect": false, "explanation": "E"}]}`
	batch, err := ValidateQuiz(raw)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, "Q", batch[0].Question)
}

func TestValidateQuizLiftsSingleObject(t *testing.T) {
	raw := `{"question": "Q", "options": ["a", "b", "c", "d"], "correctAnswers": [1], "isMultiSelect": false, "explanation": "E"}`
	batch, err := ValidateQuiz(raw)
	require.NoError(t, err)
	assert.Len(t, batch, 1)
}

func TestValidateQuizRejects(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"not json", "Maaf, terjadi kesalahan."},
		{"empty array", `[]`},
		{"missing explanation", `[{"question": "Q", "options": ["a","b","c","d"], "correctAnswers": [0], "isMultiSelect": false}]`},
		{"too few options", `[{"question": "Q", "options": ["a","b","c"], "correctAnswers": [0], "isMultiSelect": false, "explanation": "E"}]`},
		{"too many options", `[{"question": "Q", "options": ["a","b","c","d","e","f"], "correctAnswers": [0], "isMultiSelect": false, "explanation": "E"}]`},
		{"duplicate options", `[{"question": "Q", "options": ["a","b","c","A"], "correctAnswers": [0], "isMultiSelect": false, "explanation": "E"}]`},
		{"index out of range", `[{"question": "Q", "options": ["a","b","c","d"], "correctAnswers": [4], "isMultiSelect": false, "explanation": "E"}]`},
		{"no answers", `[{"question": "Q", "options": ["a","b","c","d"], "correctAnswers": [], "isMultiSelect": false, "explanation": "E"}]`},
		{"fractional index", `[{"question": "Q", "options": ["a","b","c","d"], "correctAnswers": [1.5], "isMultiSelect": false, "explanation": "E"}]`},
		{"wrong kind", `[{"question": 7, "options": ["a","b","c","d"], "correctAnswers": [0], "isMultiSelect": false, "explanation": "E"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateQuiz(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedOutput)
		})
	}
}

func TestValidateCustomQuestionSingleChoice(t *testing.T) {
	raw := `{"type": "whatever", "content": "Apa itu Asabiyyah?", "options": ["A. Solidaritas", "B. Konflik", "C. Anomie", "D. Birokrasi"], "answerKeys": "a", "deepExplanation": "Karena..."}`
	q, err := ValidateCustomQuestion(raw, model.FormatSingleChoice)
	require.NoError(t, err)
	assert.Equal(t, model.FormatSingleChoice, q.Type, "type is forced to the requested format")
	assert.Equal(t, []string{"A"}, q.AnswerKeys)
	assertCustomCardinality(t, q)
}

func TestValidateCustomQuestionNumericKeys(t *testing.T) {
	oneBased := `{"type": "pg_tka", "content": "C", "options": ["w", "x", "y", "z"], "answerKeys": [1, 3], "deepExplanation": "E"}`
	q, err := ValidateCustomQuestion(oneBased, model.FormatMultiChoice)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, q.AnswerKeys)

	zeroBased := `{"type": "pg_tka", "content": "C", "options": ["w", "x", "y", "z"], "answerKeys": ["0", "3", "0"], "deepExplanation": "E"}`
	q, err = ValidateCustomQuestion(zeroBased, model.FormatMultiChoice)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "D"}, q.AnswerKeys)
	assertCustomCardinality(t, q)
}

func TestValidateCustomQuestionCardinality(t *testing.T) {
	twoKeys := `{"type": "pg", "content": "C", "options": ["w", "x", "y", "z"], "answerKeys": ["A", "B"], "deepExplanation": "E"}`
	_, err := ValidateCustomQuestion(twoKeys, model.FormatSingleChoice)
	assert.ErrorIs(t, err, ErrMalformedOutput)

	oneKey := `{"type": "pg_tka", "content": "C", "options": ["w", "x", "y", "z"], "answerKeys": ["(B)"], "deepExplanation": "E"}`
	_, err = ValidateCustomQuestion(oneKey, model.FormatMultiChoice)
	assert.ErrorIs(t, err, ErrMalformedOutput)

	outOfRange := `{"type": "pg", "content": "C", "options": ["w", "x"], "answerKeys": ["D"], "deepExplanation": "E"}`
	_, err = ValidateCustomQuestion(outOfRange, model.FormatSingleChoice)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestValidateCustomQuestionEssayDropsOptions(t *testing.T) {
	raw := `{"type": "uraian", "content": "Jelaskan!", "options": ["x"], "answerKeys": ["A"], "deepExplanation": "Model jawaban"}`
	for _, format := range []model.QuestionFormat{model.FormatEssay, model.FormatAnalyticalEssay} {
		q, err := ValidateCustomQuestion(raw, format)
		require.NoError(t, err)
		assert.Equal(t, format, q.Type)
		assertCustomCardinality(t, q)
	}
}

func TestValidateCaseStudy(t *testing.T) {
	raw := `{"title": " Urbanisasi ", "scenario": "S", "analysisQuestions": ["Q1", " ", "Q2"], "proposedSolutions": []}`
	cs, err := ValidateCaseStudy(raw)
	require.NoError(t, err)
	assert.Equal(t, "Urbanisasi", cs.Title)
	assert.Equal(t, []string{"Q1", "Q2"}, cs.AnalysisQuestions)
	assert.Nil(t, cs.ProposedSolutions)

	_, err = ValidateCaseStudy(`{"title": "T", "scenario": "S"}`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
	_, err = ValidateCaseStudy(`{"title": "T", "scenario": "S", "analysisQuestions": [" "]}`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestValidateAnalysisClampsScores(t *testing.T) {
	raw := `{"summary": "S", "scores": [{"label": "Durkheim", "value": 140}, {"label": "Khaldun", "value": "-5", "category": "Islam"}, {"label": "Weber", "value": 42.5}], "detailedAnalysis": "D"}`
	result, err := ValidateAnalysis(raw)
	require.NoError(t, err)
	require.Len(t, result.Scores, 3)
	assert.Equal(t, float64(model.MaxScore), result.Scores[0].Value)
	assert.Equal(t, float64(model.MinScore), result.Scores[1].Value)
	assert.Equal(t, "Islam", result.Scores[1].Category)
	assert.Equal(t, 42.5, result.Scores[2].Value)

	_, err = ValidateAnalysis(`{"summary": "S", "scores": [{"value": 3}], "detailedAnalysis": "D"}`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
	_, err = ValidateAnalysis(`{"summary": "S", "scores": [], "detailedAnalysis": "D"}`)
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestValidateText(t *testing.T) {
	text, err := ValidateText("\n# Bab 1\n")
	require.NoError(t, err)
	assert.Equal(t, "# Bab 1", text)

	_, err = ValidateText(" \n\t")
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestValidateNarration(t *testing.T) {
	n, err := ValidateNarration("Halo!", llm.Response{Audio: []byte{9}, AudioMIMEType: "audio/wav"})
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", n.MIMEType)
	assert.Equal(t, "Halo!", n.Script)

	_, err = ValidateNarration("Halo!", llm.Response{Text: "no audio"})
	assert.ErrorIs(t, err, ErrMalformedOutput)
}

func TestCoerceFieldRejectsUnknownKind(t *testing.T) {
	_, err := coerceField(gjson.Parse(`["a"]`), FieldSpec{Name: "tags", Kind: FieldKind(99)}, "tags")
	assert.ErrorIs(t, err, ErrMalformedOutput)

	for _, kind := range []FieldKind{KindStringArray, KindIntegerArray, KindObjectArray} {
		assert.True(t, kind.isArray(), kind)
	}
	for _, kind := range []FieldKind{KindString, KindInteger, KindNumber, KindBoolean} {
		assert.False(t, kind.isArray(), kind)
	}
}
