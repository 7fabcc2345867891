package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	jsonutil "github.com/richinex/sociomind/internal/json"
	"github.com/richinex/sociomind/llm"
	"github.com/richinex/sociomind/model"
)

// ErrMalformedOutput marks backend output that does not fit the expected shape.
var ErrMalformedOutput = errors.New("output does not match shape")

// DefaultAudioMIMEType describes raw speech output: 16-bit mono PCM at 24 kHz.
const DefaultAudioMIMEType = "audio/L16;codec=pcm;rate=24000"

func malformedf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedOutput, fmt.Sprintf(format, args...))
}

// ValidateQuiz parses a quiz batch and enforces the item invariants: 4-5
// distinct options, a non-empty set of in-range answer indices, and
// isMultiSelect matching the answer count.
func ValidateQuiz(raw string) (model.QuizBatch, error) {
	batch, err := decode[model.QuizBatch](raw, quizShape)
	if err != nil {
		return nil, err
	}
	if len(batch) == 0 {
		return nil, malformedf("empty quiz batch")
	}
	for i := range batch {
		if err := normalizeQuizItem(&batch[i]); err != nil {
			return nil, malformedf("item %d: %v", i, err)
		}
	}
	return batch, nil
}

func normalizeQuizItem(item *model.QuizItem) error {
	item.Question = strings.TrimSpace(item.Question)
	if item.Question == "" {
		return errors.New("empty question")
	}

	options, err := distinctOptions(item.Options)
	if err != nil {
		return err
	}
	if len(options) < 4 || len(options) > 5 {
		return fmt.Errorf("%d options, want 4-5", len(options))
	}
	item.Options = options

	answers := dedupeInts(item.CorrectAnswers)
	if len(answers) == 0 {
		return errors.New("no correct answer")
	}
	for _, a := range answers {
		if a < 0 || a >= len(options) {
			return fmt.Errorf("answer index %d out of range", a)
		}
	}
	item.CorrectAnswers = answers
	item.IsMultiSelect = len(answers) >= 2
	item.Explanation = strings.TrimSpace(item.Explanation)
	return nil
}

// ValidateCustomQuestion parses a custom question and forces its type to
// format. Choice formats get letter answer keys: exactly one for
// single-choice and at least two for multi-choice. Essays carry neither
// options nor keys.
func ValidateCustomQuestion(raw string, format model.QuestionFormat) (model.CustomQuestion, error) {
	q, err := decode[model.CustomQuestion](raw, customQuestionShape)
	if err != nil {
		return model.CustomQuestion{}, err
	}

	q.Type = format
	q.Content = strings.TrimSpace(q.Content)
	q.DeepExplanation = strings.TrimSpace(q.DeepExplanation)
	if q.Content == "" || q.DeepExplanation == "" {
		return model.CustomQuestion{}, malformedf("empty content or explanation")
	}

	if !format.HasOptions() {
		q.Options = nil
		q.AnswerKeys = nil
		return q, nil
	}

	options, err := distinctOptions(q.Options)
	if err != nil {
		return model.CustomQuestion{}, malformedf("%v", err)
	}
	if len(options) < 2 || len(options) > 26 {
		return model.CustomQuestion{}, malformedf("%d options", len(options))
	}
	q.Options = options

	keys, err := answerLetters(q.AnswerKeys, len(options))
	if err != nil {
		return model.CustomQuestion{}, malformedf("%v", err)
	}
	switch {
	case format == model.FormatSingleChoice && len(keys) != 1:
		return model.CustomQuestion{}, malformedf("single choice needs exactly one key, got %d", len(keys))
	case format == model.FormatMultiChoice && len(keys) < 2:
		return model.CustomQuestion{}, malformedf("multi choice needs at least two keys, got %d", len(keys))
	}
	q.AnswerKeys = keys
	return q, nil
}

// answerLetters maps answer keys to option letters. Numeric keys are taken
// as zero-based indices when any of them is 0 and as one-based otherwise.
func answerLetters(keys []string, optionCount int) ([]string, error) {
	zeroBased := false
	for _, k := range keys {
		if n, err := strconv.Atoi(strings.TrimSpace(k)); err == nil && n == 0 {
			zeroBased = true
		}
	}

	seen := make(map[string]bool, len(keys))
	letters := []string{}
	for _, k := range keys {
		k = strings.ToUpper(strings.Trim(strings.TrimSpace(k), "()."))
		if k == "" {
			continue
		}
		var idx int
		if n, err := strconv.Atoi(k); err == nil {
			idx = n
			if !zeroBased {
				idx--
			}
		} else {
			idx = int(k[0]) - 'A'
		}
		if idx < 0 || idx >= optionCount {
			return nil, fmt.Errorf("answer key %q out of range", k)
		}
		letter := string(rune('A' + idx))
		if !seen[letter] {
			seen[letter] = true
			letters = append(letters, letter)
		}
	}
	sort.Strings(letters)
	return letters, nil
}

// ValidateCaseStudy parses a case study. Blank questions and solutions are
// dropped; at least one analysis question must remain.
func ValidateCaseStudy(raw string) (model.CaseStudy, error) {
	cs, err := decode[model.CaseStudy](raw, caseStudyShape)
	if err != nil {
		return model.CaseStudy{}, err
	}
	cs.Title = strings.TrimSpace(cs.Title)
	cs.Scenario = strings.TrimSpace(cs.Scenario)
	if cs.Title == "" || cs.Scenario == "" {
		return model.CaseStudy{}, malformedf("empty title or scenario")
	}
	cs.AnalysisQuestions = nonBlank(cs.AnalysisQuestions)
	if len(cs.AnalysisQuestions) == 0 {
		return model.CaseStudy{}, malformedf("no analysis questions")
	}
	cs.ProposedSolutions = nonBlank(cs.ProposedSolutions)
	if len(cs.ProposedSolutions) == 0 {
		cs.ProposedSolutions = nil
	}
	return cs, nil
}

// ValidateAnalysis parses an analysis result and clamps every score into
// [model.MinScore, model.MaxScore].
func ValidateAnalysis(raw string) (model.AnalysisResult, error) {
	result, err := decode[model.AnalysisResult](raw, analysisShape)
	if err != nil {
		return model.AnalysisResult{}, err
	}
	result.Summary = strings.TrimSpace(result.Summary)
	if result.Summary == "" {
		return model.AnalysisResult{}, malformedf("empty summary")
	}
	for i := range result.Scores {
		s := &result.Scores[i]
		s.Label = strings.TrimSpace(s.Label)
		if s.Label == "" {
			return model.AnalysisResult{}, malformedf("score %d has no label", i)
		}
		s.Value = math.Max(model.MinScore, math.Min(model.MaxScore, s.Value))
	}
	return result, nil
}

// ValidateText accepts any non-blank text.
func ValidateText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", malformedf("empty text")
	}
	return text, nil
}

// ValidateNarration accepts a response carrying audio bytes.
func ValidateNarration(script string, resp llm.Response) (model.Narration, error) {
	if len(resp.Audio) == 0 {
		return model.Narration{}, malformedf("no audio in response")
	}
	mime := resp.AudioMIMEType
	if mime == "" {
		mime = DefaultAudioMIMEType
	}
	return model.Narration{Script: script, Audio: resp.Audio, MIMEType: mime}, nil
}

// decode extracts JSON from raw, checks it against shape, applies shape
// coercions and unmarshals the result.
func decode[T any](raw string, shape OutputShape) (T, error) {
	var v T
	doc, err := conform(raw, shape)
	if err != nil {
		return v, err
	}
	if err := json.Unmarshal([]byte(doc), &v); err != nil {
		return v, malformedf("%v", err)
	}
	return v, nil
}

func conform(raw string, shape OutputShape) (string, error) {
	doc, err := jsonutil.ExtractJSON(raw)
	if err != nil {
		return "", malformedf("%v", err)
	}
	parsed := gjson.Parse(doc)

	if !shape.List {
		if !parsed.IsObject() {
			return "", malformedf("expected object")
		}
		return coerceObject(doc, shape.Fields, "")
	}

	switch {
	case parsed.IsArray():
	case parsed.IsObject():
		doc = unwrapList(parsed)
	default:
		return "", malformedf("expected array")
	}

	items := gjson.Parse(doc).Array()
	if len(items) < shape.MinItems {
		return "", malformedf("%d items, want at least %d", len(items), shape.MinItems)
	}
	out := "[]"
	for i, item := range items {
		if !item.IsObject() {
			return "", malformedf("[%d]: expected object", i)
		}
		obj, err := coerceObject(item.Raw, shape.Fields, fmt.Sprintf("[%d].", i))
		if err != nil {
			return "", err
		}
		if out, err = sjson.SetRaw(out, "-1", obj); err != nil {
			return "", malformedf("%v", err)
		}
	}
	return out, nil
}

// unwrapList handles backends that wrap a list in an envelope object such
// as {"questions": [...]}. Any other object is lifted into a one-element list.
func unwrapList(obj gjson.Result) string {
	var (
		count int
		list  string
	)
	obj.ForEach(func(_, value gjson.Result) bool {
		count++
		if value.IsArray() {
			list = value.Raw
		}
		return true
	})
	if count == 1 && list != "" {
		return list
	}
	return "[" + obj.Raw + "]"
}

func coerceObject(obj string, fields []FieldSpec, at string) (string, error) {
	for _, f := range fields {
		r := gjson.Get(obj, f.Name)
		if !r.Exists() || r.Type == gjson.Null {
			if f.Required {
				return "", malformedf("%s%s: missing", at, f.Name)
			}
			continue
		}
		value, err := coerceField(r, f, at+f.Name)
		if err != nil {
			return "", err
		}
		if value == r.Raw {
			continue
		}
		if obj, err = sjson.SetRaw(obj, f.Name, value); err != nil {
			return "", malformedf("%s%s: %v", at, f.Name, err)
		}
	}
	return obj, nil
}

func coerceField(r gjson.Result, f FieldSpec, path string) (string, error) {
	switch f.Kind {
	case KindString:
		if r.Type != gjson.String {
			return "", malformedf("%s: expected string", path)
		}
		return r.Raw, nil

	case KindInteger, KindNumber:
		n, ok := numeric(r)
		if !ok || (f.Kind == KindInteger && n != math.Trunc(n)) {
			return "", malformedf("%s: expected number", path)
		}
		if r.Type == gjson.Number {
			return r.Raw, nil
		}
		return strconv.FormatFloat(n, 'f', -1, 64), nil

	case KindBoolean:
		switch r.Type {
		case gjson.True, gjson.False:
			return r.Raw, nil
		case gjson.String:
			if b, err := strconv.ParseBool(strings.TrimSpace(r.Str)); err == nil {
				return strconv.FormatBool(b), nil
			}
		}
		return "", malformedf("%s: expected boolean", path)
	}
	if !f.Kind.isArray() {
		return "", malformedf("%s: unsupported field kind %d", path, f.Kind)
	}

	// Array kinds: a scalar (or single object) is lifted into a one-element array.
	elems := []gjson.Result{r}
	if r.IsArray() {
		elems = r.Array()
	} else if r.IsObject() && f.Kind != KindObjectArray {
		return "", malformedf("%s: expected array", path)
	}
	if f.MinItems > 0 && len(elems) < f.MinItems {
		return "", malformedf("%s: %d items, want at least %d", path, len(elems), f.MinItems)
	}
	if f.MaxItems > 0 && len(elems) > f.MaxItems {
		return "", malformedf("%s: %d items, want at most %d", path, len(elems), f.MaxItems)
	}

	out := "[]"
	for i, e := range elems {
		var (
			value string
			err   error
		)
		switch f.Kind {
		case KindStringArray:
			switch e.Type {
			case gjson.String:
				value = e.Raw
			case gjson.Number:
				value = strconv.Quote(e.Raw)
			default:
				return "", malformedf("%s[%d]: expected string", path, i)
			}
		case KindIntegerArray:
			n, ok := numeric(e)
			if !ok || n != math.Trunc(n) {
				return "", malformedf("%s[%d]: expected integer", path, i)
			}
			value = strconv.FormatInt(int64(n), 10)
		case KindObjectArray:
			if !e.IsObject() {
				return "", malformedf("%s[%d]: expected object", path, i)
			}
			value, err = coerceObject(e.Raw, f.Items, fmt.Sprintf("%s[%d].", path, i))
			if err != nil {
				return "", err
			}
		}
		if out, err = sjson.SetRaw(out, "-1", value); err != nil {
			return "", malformedf("%s: %v", path, err)
		}
	}
	return out, nil
}

func numeric(r gjson.Result) (float64, bool) {
	switch r.Type {
	case gjson.Number:
		return r.Num, true
	case gjson.String:
		n, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		return n, err == nil
	default:
		return 0, false
	}
}

func distinctOptions(options []string) ([]string, error) {
	seen := make(map[string]bool, len(options))
	out := make([]string, 0, len(options))
	for _, o := range options {
		o = strings.TrimSpace(o)
		if o == "" {
			return nil, errors.New("blank option")
		}
		key := strings.ToLower(o)
		if seen[key] {
			return nil, fmt.Errorf("duplicate option %q", o)
		}
		seen[key] = true
		out = append(out, o)
	}
	return out, nil
}

func dedupeInts(values []int) []int {
	seen := make(map[int]bool, len(values))
	out := []int{}
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Ints(out)
	return out
}

func nonBlank(values []string) []string {
	out := []string{}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
