// Package model provides the content types exchanged between the gateway,
// the HTTP surface and the CLI.
package model

import "strings"

// OperationKind identifies one content-generation task.
type OperationKind string

const (
	OpQuiz           OperationKind = "quiz"
	OpCustomQuestion OperationKind = "custom_question"
	OpExplain        OperationKind = "explain"
	OpDefine         OperationKind = "define"
	OpCaseStudy      OperationKind = "case_study"
	OpAnalysis       OperationKind = "analysis"
	OpNarration      OperationKind = "narration"
)

// Operations lists every supported operation kind.
func Operations() []OperationKind {
	return []OperationKind{OpQuiz, OpCustomQuestion, OpExplain, OpDefine, OpCaseStudy, OpAnalysis, OpNarration}
}

// Language is a response-language tag.
type Language string

const (
	LanguageEnglish    Language = "en"
	LanguageIndonesian Language = "id"
	LanguageArabic     Language = "ar"
)

// DefaultLanguage is used when a request carries no recognised tag.
const DefaultLanguage = LanguageIndonesian

// ParseLanguage maps a tag to a Language, falling back to DefaultLanguage.
func ParseLanguage(s string) Language {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case LanguageEnglish:
		return LanguageEnglish
	case LanguageArabic:
		return LanguageArabic
	case LanguageIndonesian:
		return LanguageIndonesian
	default:
		return DefaultLanguage
	}
}

// Name returns the English name of the language, used in prompt directives.
func (l Language) Name() string {
	switch l {
	case LanguageEnglish:
		return "English"
	case LanguageArabic:
		return "Arabic"
	default:
		return "Indonesian"
	}
}

// Subject is the academic discipline framing a request.
type Subject string

const (
	SubjectSociology    Subject = "sociology"
	SubjectAnthropology Subject = "anthropology"
	SubjectEconomics    Subject = "economics"
	SubjectHistory      Subject = "history"
)

// ParseSubject maps a tag to a Subject, falling back to sociology.
func ParseSubject(s string) Subject {
	switch Subject(strings.ToLower(strings.TrimSpace(s))) {
	case SubjectAnthropology:
		return SubjectAnthropology
	case SubjectEconomics:
		return SubjectEconomics
	case SubjectHistory:
		return SubjectHistory
	default:
		return SubjectSociology
	}
}

// Difficulty bounds for quiz generation (HOTS levels).
const (
	MinDifficulty = 1
	MaxDifficulty = 3
)

// ContentRequest is built per call and never persisted.
type ContentRequest struct {
	Operation  OperationKind
	Topic      string
	Language   Language
	Subject    Subject
	Difficulty int
	// Query is an optional follow-up question anchored to Topic.
	Query string
	// Format selects the custom question format; ignored by other operations.
	Format QuestionFormat
}

// Normalized returns a copy with defaults applied and the difficulty clamped.
func (r ContentRequest) Normalized() ContentRequest {
	r.Topic = strings.TrimSpace(r.Topic)
	r.Query = strings.TrimSpace(r.Query)
	r.Language = ParseLanguage(string(r.Language))
	r.Subject = ParseSubject(string(r.Subject))
	switch {
	case r.Difficulty < MinDifficulty:
		r.Difficulty = MinDifficulty
	case r.Difficulty > MaxDifficulty:
		r.Difficulty = MaxDifficulty
	}
	if r.Format == "" {
		r.Format = FormatSingleChoice
	}
	return r
}

// QuizItem is one generated quiz question.
type QuizItem struct {
	Question       string   `json:"question"`
	Options        []string `json:"options"`
	CorrectAnswers []int    `json:"correctAnswers"`
	IsMultiSelect  bool     `json:"isMultiSelect"`
	Explanation    string   `json:"explanation"`
}

// QuizBatch is an ordered sequence of quiz items.
type QuizBatch []QuizItem

// QuestionFormat is the format of a custom question.
type QuestionFormat string

const (
	// FormatSingleChoice is a regular multiple choice question with one answer.
	FormatSingleChoice QuestionFormat = "pg"
	// FormatMultiChoice is a complex multiple choice question (TKA model).
	FormatMultiChoice QuestionFormat = "pg_tka"
	// FormatEssay is a conceptual essay question.
	FormatEssay QuestionFormat = "uraian"
	// FormatAnalyticalEssay is an advanced critical-analysis essay.
	FormatAnalyticalEssay QuestionFormat = "uraian_tka"
)

// ParseQuestionFormat validates a format tag.
func ParseQuestionFormat(s string) (QuestionFormat, bool) {
	switch f := QuestionFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatSingleChoice, FormatMultiChoice, FormatEssay, FormatAnalyticalEssay:
		return f, true
	default:
		return "", false
	}
}

// HasOptions reports whether the format carries answer options.
func (f QuestionFormat) HasOptions() bool {
	return f == FormatSingleChoice || f == FormatMultiChoice
}

// CustomQuestion is a single question synthesized for a classroom educator.
type CustomQuestion struct {
	Type            QuestionFormat `json:"type"`
	Content         string         `json:"content"`
	Options         []string       `json:"options,omitempty"`
	AnswerKeys      []string       `json:"answerKeys,omitempty"`
	DeepExplanation string         `json:"deepExplanation"`
}

// CaseStudy is a generated scenario with discussion prompts.
type CaseStudy struct {
	Title             string   `json:"title"`
	Scenario          string   `json:"scenario"`
	AnalysisQuestions []string `json:"analysisQuestions"`
	ProposedSolutions []string `json:"proposedSolutions,omitempty"`
}

// Score display range for analysis results.
const (
	MinScore = 0
	MaxScore = 100
)

// Score is the relevance of one theory to an observation.
type Score struct {
	Label    string  `json:"label"`
	Value    float64 `json:"value"`
	Category string  `json:"category,omitempty"`
}

// AnalysisResult is a theory-scored analysis of a social observation.
type AnalysisResult struct {
	Summary          string  `json:"summary"`
	Scores           []Score `json:"scores"`
	DetailedAnalysis string  `json:"detailedAnalysis"`
}

// Narration is the introductory speech. Audio is empty when served from demo data.
type Narration struct {
	Script   string `json:"script"`
	Audio    []byte `json:"-"`
	MIMEType string `json:"mimeType,omitempty"`
}
