// Package gateway turns content requests into validated, strongly-shaped
// results.
//
// Every operation runs the same state machine:
//
//	Start -> ModeCheck -> {DemoPath | LivePath} -> Done
//
// ModeCheck consults the credential state on every call. LivePath builds the
// prompt, makes exactly one backend call and validates the output. Malformed
// output falls back to the demo fixture. Credential failures trigger the
// external selection flow and then surface to the caller; with offline
// fallback enabled, credential and transient failures are served from
// fixtures instead. DemoPath cannot fail.
//
// Information Hiding:
// - Demo/live selection hidden behind ModeResolver
// - Prompt and schema construction hidden
// - Failure classification and credential recovery hidden
package gateway

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.uber.org/zap"

	"github.com/richinex/sociomind/credential"
	"github.com/richinex/sociomind/llm"
	"github.com/richinex/sociomind/model"
	"github.com/richinex/sociomind/storage"
)

// Journal records how each call ended. Failures to record are logged and
// never affect the result.
type Journal interface {
	RecordGeneration(ctx context.Context, g storage.Generation) error
}

// Gateway is the only entry point other subsystems call.
type Gateway struct {
	resolver        ModeResolver
	invoker         Invoker
	recovery        *Recovery
	fixtures        Fixtures
	journal         Journal
	logger          *zap.Logger
	offlineFallback bool
	provider        string
	now             func() time.Time
}

// New creates a gateway reading mode from store and calling invoker in live mode.
func New(store credential.Store, invoker Invoker) *Gateway {
	return &Gateway{
		resolver: NewModeResolver(store),
		invoker:  invoker,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
}

// WithRecovery enables the credential-selection flow on credential failures.
func (g *Gateway) WithRecovery(r *Recovery) *Gateway {
	g.recovery = r
	return g
}

// WithJournal records every call's outcome.
func (g *Gateway) WithJournal(j Journal) *Gateway {
	g.journal = j
	return g
}

// WithLogger sets the structured logger.
func (g *Gateway) WithLogger(logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	g.logger = logger.Named("gateway")
	return g
}

// WithProvider names the backend in journal entries.
func (g *Gateway) WithProvider(name string) *Gateway {
	g.provider = name
	return g
}

// OfflineFallback serves fixtures instead of returning credential and
// transient failures.
func (g *Gateway) OfflineFallback(enabled bool) *Gateway {
	g.offlineFallback = enabled
	return g
}

// Mode reports the mode the next call would run in.
func (g *Gateway) Mode() Mode {
	return g.resolver.Resolve()
}

// GenerateQuiz produces a HOTS quiz batch on req.Topic at req.Difficulty.
func (g *Gateway) GenerateQuiz(ctx context.Context, req model.ContentRequest) (model.QuizBatch, error) {
	req = prepare(req, model.OpQuiz)
	return run(ctx, g, plan[model.QuizBatch]{
		req:        req,
		invocation: structured(req, quizShape),
		validate:   func(r llm.Response) (model.QuizBatch, error) { return ValidateQuiz(r.Text) },
		fixture:    g.fixtures.Quiz,
	})
}

// GenerateCustomQuestion produces one question in req.Format.
func (g *Gateway) GenerateCustomQuestion(ctx context.Context, req model.ContentRequest) (model.CustomQuestion, error) {
	req = prepare(req, model.OpCustomQuestion)
	return run(ctx, g, plan[model.CustomQuestion]{
		req:        req,
		invocation: structured(req, customQuestionShape),
		validate: func(r llm.Response) (model.CustomQuestion, error) {
			return ValidateCustomQuestion(r.Text, req.Format)
		},
		fixture: g.fixtures.CustomQuestion,
	})
}

// ExplainConcept produces a markdown chapter on req.Topic, or a focused
// explanation when req.Query carries a follow-up question.
func (g *Gateway) ExplainConcept(ctx context.Context, req model.ContentRequest) (string, error) {
	req = prepare(req, model.OpExplain)
	return run(ctx, g, plan[string]{
		req:        req,
		invocation: Invocation{Prompt: BuildPrompt(req), Modality: llm.ModalityText, Tier: TierDefault},
		validate:   func(r llm.Response) (string, error) { return ValidateText(r.Text) },
		fixture:    g.fixtures.Explanation,
	})
}

// DefineTerm produces a short definition of req.Topic on the fast model.
func (g *Gateway) DefineTerm(ctx context.Context, req model.ContentRequest) (string, error) {
	req = prepare(req, model.OpDefine)
	return run(ctx, g, plan[string]{
		req:        req,
		invocation: Invocation{Prompt: BuildPrompt(req), Modality: llm.ModalityText, Tier: TierFast},
		validate:   func(r llm.Response) (string, error) { return ValidateText(r.Text) },
		fixture:    g.fixtures.Definition,
	})
}

// GenerateCaseStudy produces a case study on req.Topic.
func (g *Gateway) GenerateCaseStudy(ctx context.Context, req model.ContentRequest) (model.CaseStudy, error) {
	req = prepare(req, model.OpCaseStudy)
	return run(ctx, g, plan[model.CaseStudy]{
		req:        req,
		invocation: structured(req, caseStudyShape),
		validate:   func(r llm.Response) (model.CaseStudy, error) { return ValidateCaseStudy(r.Text) },
		fixture:    g.fixtures.CaseStudy,
	})
}

// AnalyzeSocialData scores how well sociological theories explain the
// observation in req.Topic.
func (g *Gateway) AnalyzeSocialData(ctx context.Context, req model.ContentRequest) (model.AnalysisResult, error) {
	req = prepare(req, model.OpAnalysis)
	return run(ctx, g, plan[model.AnalysisResult]{
		req:        req,
		invocation: structured(req, analysisShape),
		validate:   func(r llm.Response) (model.AnalysisResult, error) { return ValidateAnalysis(r.Text) },
		fixture:    g.fixtures.Analysis,
	})
}

// GenerateIntroNarration synthesizes the welcome speech in req.Language.
func (g *Gateway) GenerateIntroNarration(ctx context.Context, req model.ContentRequest) (model.Narration, error) {
	req = prepare(req, model.OpNarration)
	prompt := BuildPrompt(req)
	return run(ctx, g, plan[model.Narration]{
		req: req,
		invocation: Invocation{
			Prompt:   Prompt{Task: prompt.Task},
			Modality: llm.ModalityAudio,
			Voice:    voiceFor(req.Language),
			Tier:     TierSpeech,
		},
		validate: func(r llm.Response) (model.Narration, error) {
			return ValidateNarration(prompt.Task, r)
		},
		fixture: g.fixtures.Narration,
	})
}

func prepare(req model.ContentRequest, op model.OperationKind) model.ContentRequest {
	req.Operation = op
	return req.Normalized()
}

func structured(req model.ContentRequest, shape OutputShape) Invocation {
	return Invocation{
		Prompt:   BuildPrompt(req),
		Shape:    &shape,
		Modality: llm.ModalityText,
		Tier:     TierDefault,
	}
}

// plan binds one operation to the state machine.
type plan[T any] struct {
	req        model.ContentRequest
	invocation Invocation
	validate   func(llm.Response) (T, error)
	fixture    func(model.ContentRequest) T
}

func run[T any](ctx context.Context, g *Gateway, p plan[T]) (T, error) {
	start := g.now()
	op := p.req.Operation

	mode := g.resolver.Resolve()
	if mode == ModeOffline {
		g.finish(ctx, op, mode, start, Outcome[T]{Kind: Success}, "")
		return p.fixture(p.req), nil
	}

	outcome := invoke(ctx, g, p)
	switch outcome.Kind {
	case Success:
		g.finish(ctx, op, mode, start, outcome, hashRaw(outcome.Raw))
		return outcome.Value, nil

	case StructuralFailure:
		g.finish(ctx, op, mode, start, outcome, hashRaw(outcome.Raw))
		return p.fixture(p.req), nil

	case CredentialFailure:
		fault := outcome.Err
		if g.recovery != nil {
			fault = g.recovery.Recover(ctx, fault)
		}
		g.finish(ctx, op, mode, start, outcome, "")
		if g.offlineFallback {
			return p.fixture(p.req), nil
		}
		var zero T
		return zero, &GenerationError{Op: op, Kind: CredentialFailure, Err: fault}

	default:
		g.finish(ctx, op, mode, start, outcome, "")
		if g.offlineFallback {
			return p.fixture(p.req), nil
		}
		var zero T
		return zero, &GenerationError{Op: op, Kind: TransientFailure, Err: outcome.Err}
	}
}

// invoke runs LivePath up to validation and folds every result into an Outcome.
func invoke[T any](ctx context.Context, g *Gateway, p plan[T]) Outcome[T] {
	resp, err := g.invoker.Invoke(ctx, p.invocation)
	if err != nil {
		// A provider that cannot produce the modality answered, just not in shape.
		if errors.Is(err, llm.ErrModalityUnsupported) {
			return malformed[T]("", err)
		}
		return faulted[T](Classify(err), err)
	}

	raw := resp.Text
	if p.invocation.Modality == llm.ModalityAudio {
		raw = string(resp.Audio)
	}
	value, err := p.validate(resp)
	if err != nil {
		return malformed[T](raw, err)
	}
	return succeeded(value, raw)
}

func (g *Gateway) finish(ctx context.Context, op model.OperationKind, mode Mode, start time.Time, outcome interface{ describe() (OutcomeKind, error) }, rawHash string) {
	kind, err := outcome.describe()
	elapsed := g.now().Sub(start)

	fields := []zap.Field{
		zap.String("op", string(op)),
		zap.Stringer("mode", mode),
		zap.Stringer("outcome", kind),
		zap.Duration("duration", elapsed),
	}
	switch kind {
	case Success:
		g.logger.Info("generation served", fields...)
	case StructuralFailure:
		g.logger.Warn("malformed output, serving fixture", append(fields, zap.Error(err))...)
	default:
		g.logger.Error("generation failed", append(fields, zap.Error(err), zap.Bool("offline_fallback", g.offlineFallback))...)
	}

	if g.journal == nil {
		return
	}
	entry := storage.Generation{
		Operation:  string(op),
		Mode:       mode.String(),
		Outcome:    kind.String(),
		RawHash:    rawHash,
		DurationMs: elapsed.Milliseconds(),
	}
	if mode == ModeLive {
		entry.Provider = g.provider
	}
	if err != nil {
		entry.Error = err.Error()
	}
	if jerr := g.journal.RecordGeneration(ctx, entry); jerr != nil {
		g.logger.Warn("failed to record generation", zap.Error(jerr))
	}
}

func (o Outcome[T]) describe() (OutcomeKind, error) {
	return o.Kind, o.Err
}

func hashRaw(raw string) string {
	if raw == "" {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64String(raw))
}
