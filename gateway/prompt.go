package gateway

import (
	"fmt"
	"strings"

	"github.com/richinex/sociomind/model"
)

// Prompt is the instruction and task text sent to the backend.
type Prompt struct {
	Instruction string
	Task        string
}

// BuildPrompt composes the prompt for a normalized request. It is pure.
func BuildPrompt(req model.ContentRequest) Prompt {
	return Prompt{
		Instruction: systemInstruction(req.Language, req.Subject),
		Task:        taskText(req),
	}
}

// subjectFocus is the discipline-specific emphasis of the persona. Sociology
// carries the comparative framing between Durkheim and Ibn Khaldun.
var subjectFocus = map[model.Subject]string{
	model.SubjectSociology: `CRITICAL FOCUS ON ISLAMIC SOCIOLOGY:
- You must acknowledge and deeply integrate the theories of Islamic Sociologists, specifically Ibn Khaldun (The Pioneer of Sociology).
- Be an expert in explaining: Asabiyyah (social solidarity), Umran (civilization), the Badawa vs Hadara (nomadic vs sedentary) dynamics, and the cyclical theory of dynasties.
- When explaining social cohesion, compare Durkheim's "Solidarity" with Khaldun's "Asabiyyah".`,
	model.SubjectAnthropology: `CRITICAL FOCUS ON CULTURE AND KINSHIP:
- Ground explanations in ethnographic evidence and the classical fieldwork tradition (Malinowski, Boas, Geertz).
- Use Ibn Khaldun's Badawa vs Hadara contrast as an early comparative ethnography of nomadic and sedentary life.`,
	model.SubjectEconomics: `CRITICAL FOCUS ON ECONOMY AND SOCIETY:
- Connect economic behaviour to social structure, institutions and stratification.
- Relate Ibn Khaldun's account of labour, taxation and the rise and decline of urban prosperity to Smith, Marx and Weber.`,
	model.SubjectHistory: `CRITICAL FOCUS ON SOCIAL HISTORY:
- Explain change through social forces, not only events and rulers.
- Use Ibn Khaldun's cyclical theory of dynasties and the weakening of Asabiyyah as a lens on historical periods.`,
}

var subjectTitle = map[model.Subject]string{
	model.SubjectSociology:    "Sociology",
	model.SubjectAnthropology: "Anthropology",
	model.SubjectEconomics:    "Economic Sociology",
	model.SubjectHistory:      "Social History",
}

func systemInstruction(lang model.Language, subject model.Subject) string {
	title, ok := subjectTitle[subject]
	if !ok {
		subject, title = model.SubjectSociology, subjectTitle[model.SubjectSociology]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are SocioMind AI, an authoritative %s Professor specializing in Higher Order Thinking Skills (HOTS) and Academic Competency Tests (TKA).\n", title)
	b.WriteString("Your goal is to provide academically rigorous material following the highest standards of sociological analysis.\n\n")
	b.WriteString(subjectFocus[subject])
	b.WriteString(`

CRITICAL GUIDELINES FOR TEXTBOOK CONTENT:
1. When providing practice questions (Latihan) within a chapter, NEVER put options in a single paragraph.
2. ALWAYS use a Markdown bulleted list for options (e.g., * A. [Option Content]).
3. Each option must be on its own line.
4. Use academic headers, bold key terms, and clear theoretical citations.

CRITICAL GUIDELINES FOR QUIZZES:
1. Always base questions on contextual scenarios (narration-based).
2. Explanations must be deep, referencing key theorists (Durkheim, Weber, Marx, Bourdieu, AND Ibn Khaldun).
`)
	fmt.Fprintf(&b, "3. Language used: %s.", lang.Name())
	return b.String()
}

// complexityLevels indexes HOTS levels by difficulty-1.
var complexityLevels = [...]string{
	"HOTS Level 1: Application of concepts to simple social phenomena.",
	"HOTS Level 2: Analysis of social patterns and contrasting different theoretical views.",
	"HOTS Level 3 (TKA Model): Evaluation of complex social structures. Use 'Pilihan Ganda Kompleks' (Multi-select) where more than one answer is correct.",
}

func complexityFor(difficulty int) string {
	i := difficulty - 1
	if i < 0 {
		i = 0
	}
	if i >= len(complexityLevels) {
		i = len(complexityLevels) - 1
	}
	return complexityLevels[i]
}

var formatLabels = map[model.QuestionFormat]string{
	model.FormatSingleChoice:    "Regular Multiple Choice (High School standard, single answer)",
	model.FormatMultiChoice:     "Academic Competency Multiple Choice (Complex/Multi-select answer)",
	model.FormatEssay:           "Essay Question (Conceptual understanding)",
	model.FormatAnalyticalEssay: "Advanced Academic Essay (Critical analysis)",
}

func taskText(req model.ContentRequest) string {
	switch req.Operation {
	case model.OpQuiz:
		return fmt.Sprintf(`Generate 5 high-quality HOTS/TKA questions about "%s".
Complexity: %s

If it's TKA level, at least 3 questions should be 'Pilihan Ganda Kompleks'.

Response schema requirement:
- question: string
- options: array of 4-5 strings
- correctAnswers: array of integers (indices of correct options)
- isMultiSelect: boolean
- explanation: deep academic analysis.`, req.Topic, complexityFor(req.Difficulty))

	case model.OpCustomQuestion:
		task := fmt.Sprintf("Generate a sociological question for the topic: %q.\nFormat: %s.", req.Topic, formatLabels[req.Format])
		if req.Format.HasOptions() {
			task += "\nInclude 'answerKeys' as an array of correct labels (e.g., [\"A\", \"C\"])."
		} else {
			task += "\nDo not include options or answerKeys; put the model answer in 'deepExplanation'."
		}
		return task

	case model.OpExplain:
		if req.Query != "" {
			return fmt.Sprintf("Provide a detailed academic explanation of %q in the context of: %q. Format questions/options as clear Markdown lists.", req.Topic, req.Query)
		}
		return fmt.Sprintf("Write a comprehensive textbook-style chapter on %q. Include Ibn Khaldun's perspective if relevant. Ensure any practice questions have options formatted as Markdown bullet lists.", req.Topic)

	case model.OpDefine:
		return fmt.Sprintf("Define %q.", req.Topic)

	case model.OpCaseStudy:
		return fmt.Sprintf("Create case study for: %q.", req.Topic)

	case model.OpAnalysis:
		return fmt.Sprintf("Analyze: %q.\nScore how strongly each relevant sociological theory explains it, from %d to %d.", req.Topic, model.MinScore, model.MaxScore)

	case model.OpNarration:
		return introScript(req.Language)

	default:
		return req.Topic
	}
}

var introScripts = map[model.Language]string{
	model.LanguageIndonesian: "Halo! Selamat datang di SocioMind AI. Saya adalah asisten akademik sosiologi Anda. Mari jelajahi dunia sosial, mulai dari teori asabiyah Ibnu Khaldun hingga fenomena masyarakat digital modern. Pilih jenjang materi Anda dan mari mulai belajar bersama.",
	model.LanguageEnglish:    "Hello! Welcome to SocioMind AI, your premier academic sociology assistant. Let's explore the social world, from Ibn Khaldun's foundational theories to the complexities of modern digital societies. Select your pathway and let's begin our inquiry.",
	model.LanguageArabic:     "أهلاً بكم في SocioMind AI. أنا مساعدكم الأكاديمي لعلم الاجتماع. لنستكشف معاً العالم الاجتماعي، من نظريات ابن خلدون التأسيسية إلى تعقيدات المجتمعات الرقمية الحديثة. اختر مسارك ولنبدأ رحلة التعلم.",
}

func introScript(lang model.Language) string {
	if s, ok := introScripts[lang]; ok {
		return s
	}
	return introScripts[model.DefaultLanguage]
}

var voices = map[model.Language]string{
	model.LanguageIndonesian: "Kore",
	model.LanguageEnglish:    "Zephyr",
	model.LanguageArabic:     "Charon",
}

// voiceFor returns the prebuilt speech voice for a language.
func voiceFor(lang model.Language) string {
	if v, ok := voices[lang]; ok {
		return v
	}
	return voices[model.DefaultLanguage]
}
