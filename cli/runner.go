// Command execution for CLI commands.
//
// Information Hiding:
// - Gateway dispatch hidden
// - Output formatting (markdown rendering, JSON, WAV) hidden

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"github.com/richinex/sociomind/config"
	"github.com/richinex/sociomind/gateway"
	"github.com/richinex/sociomind/model"
	"github.com/richinex/sociomind/server"
)

// Quiz generates and prints a quiz batch.
func Quiz(ctx context.Context, app *App, req model.ContentRequest, opts Options) error {
	batch, err := app.Gateway.GenerateQuiz(ctx, req)
	if err != nil {
		return app.describe(err)
	}
	return emit(opts, batch, quizMarkdown(batch))
}

// CustomQuestion generates and prints one question in req.Format.
func CustomQuestion(ctx context.Context, app *App, req model.ContentRequest, opts Options) error {
	q, err := app.Gateway.GenerateCustomQuestion(ctx, req)
	if err != nil {
		return app.describe(err)
	}
	return emit(opts, q, customQuestionMarkdown(q))
}

// Explain prints a textbook-style explanation, or a focused answer when
// req.Query is set.
func Explain(ctx context.Context, app *App, req model.ContentRequest, opts Options) error {
	text, err := app.Gateway.ExplainConcept(ctx, req)
	if err != nil {
		return app.describe(err)
	}
	return emit(opts, map[string]string{"text": text}, text)
}

// Define prints a term definition.
func Define(ctx context.Context, app *App, req model.ContentRequest, opts Options) error {
	text, err := app.Gateway.DefineTerm(ctx, req)
	if err != nil {
		return app.describe(err)
	}
	return emit(opts, map[string]string{"text": text}, text)
}

// CaseStudy generates and prints a case study.
func CaseStudy(ctx context.Context, app *App, req model.ContentRequest, opts Options) error {
	cs, err := app.Gateway.GenerateCaseStudy(ctx, req)
	if err != nil {
		return app.describe(err)
	}
	return emit(opts, cs, caseStudyMarkdown(cs))
}

// Analyze scores a social observation against sociological theories.
func Analyze(ctx context.Context, app *App, req model.ContentRequest, opts Options) error {
	result, err := app.Gateway.AnalyzeSocialData(ctx, req)
	if err != nil {
		return app.describe(err)
	}
	return emit(opts, result, analysisMarkdown(result))
}

// Intro synthesizes the welcome narration. Audio is written as WAV to
// outPath; without audio (offline mode) only the script is printed.
func Intro(ctx context.Context, app *App, req model.ContentRequest, outPath string, opts Options) error {
	n, err := app.Gateway.GenerateIntroNarration(ctx, req)
	if err != nil {
		return app.describe(err)
	}

	w := opts.out()
	fmt.Fprintln(w, n.Script)
	if len(n.Audio) == 0 {
		fmt.Fprintln(w, "\n(no audio: running in demo mode)")
		return nil
	}

	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", outPath, err)
	}
	defer f.Close()

	if err := writeAudio(f, n.Audio, n.MIMEType); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	fmt.Fprintf(w, "\nAudio written to %s (%d bytes of %s)\n", outPath, len(n.Audio), n.MIMEType)
	return nil
}

// Serve runs the HTTP API until ctx is cancelled.
func Serve(ctx context.Context, app *App, addr string, opts Options) error {
	if addr == "" {
		addr = app.Settings.Server.Addr
	}
	logger := opts.logger()
	logger.Info("serving", zap.String("addr", addr), zap.Stringer("mode", app.Gateway.Mode()))
	fmt.Fprintf(opts.out(), "SocioMind API listening on %s (%s mode)\n", addr, app.Gateway.Mode())
	return server.ListenAndServe(ctx, addr, server.New(app.Gateway, logger), logger)
}

// describe adds an actionable hint to credential failures.
func (a *App) describe(err error) error {
	if !gateway.IsCredentialFailure(err) {
		return err
	}
	envVar, _ := config.APIKeyEnvFor(a.Settings.LLM.Provider)
	return fmt.Errorf("%w\nhint: add another key with `sociomind keys add`, or set %s", err, envVar)
}

// emit prints payload as JSON when requested, otherwise renders markdown.
func emit(opts Options, payload interface{}, markdown string) error {
	w := opts.out()
	if opts.JSON {
		return printJSON(w, payload)
	}
	return printMarkdown(w, markdown)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printMarkdown(w io.Writer, markdown string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dark"),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		_, err = fmt.Fprintln(w, markdown)
		return err
	}
	out, err := renderer.Render(markdown)
	if err != nil {
		_, err = fmt.Fprintln(w, markdown)
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func optionLetter(i int) string {
	return string(rune('A' + i))
}

func quizMarkdown(batch model.QuizBatch) string {
	var b strings.Builder
	for i, item := range batch {
		kind := "single answer"
		if item.IsMultiSelect {
			kind = "multiple answers"
		}
		fmt.Fprintf(&b, "## %d. %s\n\n_%s_\n\n", i+1, item.Question, kind)
		for j, opt := range item.Options {
			fmt.Fprintf(&b, "* %s. %s\n", optionLetter(j), opt)
		}
		letters := make([]string, len(item.CorrectAnswers))
		for j, a := range item.CorrectAnswers {
			letters[j] = optionLetter(a)
		}
		fmt.Fprintf(&b, "\n**Answer:** %s\n\n%s\n\n", strings.Join(letters, ", "), item.Explanation)
	}
	return b.String()
}

func customQuestionMarkdown(q model.CustomQuestion) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Question (%s)\n\n%s\n\n", q.Type, q.Content)
	for _, opt := range q.Options {
		fmt.Fprintf(&b, "* %s\n", opt)
	}
	if len(q.AnswerKeys) > 0 {
		fmt.Fprintf(&b, "\n**Answer key:** %s\n", strings.Join(q.AnswerKeys, ", "))
	}
	fmt.Fprintf(&b, "\n### Explanation\n\n%s\n", q.DeepExplanation)
	return b.String()
}

func caseStudyMarkdown(cs model.CaseStudy) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n%s\n\n## Analysis questions\n\n", cs.Title, cs.Scenario)
	for i, q := range cs.AnalysisQuestions {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	if len(cs.ProposedSolutions) > 0 {
		b.WriteString("\n## Proposed solutions\n\n")
		for _, s := range cs.ProposedSolutions {
			fmt.Fprintf(&b, "* %s\n", s)
		}
	}
	return b.String()
}

func analysisMarkdown(r model.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Summary\n\n%s\n\n## Scores\n\n| Theory | Score | Category |\n| --- | ---: | --- |\n", r.Summary)
	for _, s := range r.Scores {
		fmt.Fprintf(&b, "| %s | %.0f | %s |\n", s.Label, s.Value, s.Category)
	}
	fmt.Fprintf(&b, "\n## Detailed analysis\n\n%s\n", r.DetailedAnalysis)
	return b.String()
}
