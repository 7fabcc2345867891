// Package main provides the sociomind CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/richinex/sociomind/cli"
	"github.com/richinex/sociomind/config"
	"github.com/richinex/sociomind/model"
)

var (
	// Global flags
	provider    string
	dbPath      string
	verbose     bool
	jsonOutput  bool
	interactive bool

	settings config.Settings
	logger   *zap.Logger
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "sociomind",
		Short: "Social-science learning content from an LLM, with an offline demo mode",
		Long: `Generate quizzes, explanations, case studies and analyses for sociology,
anthropology, economics and history.

Without a usable API key every command answers from built-in demo content.
Keys stored with 'sociomind keys add' are rotated automatically when one
runs out of quota.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			settings, err = config.New(provider)
			if err != nil {
				return err
			}
			if dbPath != "" {
				settings.Storage.Path = dbPath
			}
			logger, err = newLogger(settings.Log.Level, verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (gemini, openai, anthropic, deepseek)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path for the key vault and journal")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show debug logs")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&interactive, "interactive", false, "Prompt for a new API key when all stored keys are exhausted")

	// Add commands
	rootCmd.AddCommand(quizCmd())
	rootCmd.AddCommand(customCmd())
	rootCmd.AddCommand(explainCmd())
	rootCmd.AddCommand(defineCmd())
	rootCmd.AddCommand(caseCmd())
	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(introCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(keysCmd())
	rootCmd.AddCommand(modeCmd())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newLogger(level string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return cfg.Build()
}

func options() cli.Options {
	return cli.Options{
		Interactive: interactive,
		JSON:        jsonOutput,
		Logger:      logger,
	}
}

// withApp wires the gateway for the duration of one command.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *cli.App, opts cli.Options) error) error {
	ctx := cmd.Context()
	opts := options()
	app, err := cli.NewApp(ctx, settings, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	return fn(ctx, app, opts)
}

// contentFlags are shared by every generation command.
type contentFlags struct {
	language string
	subject  string
}

func (f *contentFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.language, "lang", "l", "id", "Response language (id, en, ar)")
	cmd.Flags().StringVarP(&f.subject, "subject", "s", "sociology", "Subject (sociology, anthropology, economics, history)")
}

func (f *contentFlags) request(topic string) model.ContentRequest {
	return model.ContentRequest{
		Topic:    topic,
		Language: model.Language(f.language),
		Subject:  model.Subject(f.subject),
	}
}

func quizCmd() *cobra.Command {
	var flags contentFlags
	var difficulty int

	cmd := &cobra.Command{
		Use:   "quiz [topic]",
		Short: "Generate a batch of HOTS multiple-choice questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(args[0])
			req.Difficulty = difficulty
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Quiz(ctx, app, req, opts)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().IntVarP(&difficulty, "difficulty", "d", 2, "Difficulty level (1-3)")
	return cmd
}

func customCmd() *cobra.Command {
	var flags contentFlags
	var format string

	cmd := &cobra.Command{
		Use:   "custom [topic]",
		Short: "Generate one question in a chosen format",
		Long: `Generate one question in a chosen format:
  pg           single-answer multiple choice
  pg_tka       multi-answer multiple choice
  uraian       conceptual essay
  uraian_tka   critical-analysis essay`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qf, ok := model.ParseQuestionFormat(format)
			if !ok {
				return fmt.Errorf("unknown question format %q", format)
			}
			req := flags.request(args[0])
			req.Format = qf
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.CustomQuestion(ctx, app, req, opts)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&format, "format", "f", string(model.FormatSingleChoice), "Question format (pg, pg_tka, uraian, uraian_tka)")
	return cmd
}

func explainCmd() *cobra.Command {
	var flags contentFlags
	var query string

	cmd := &cobra.Command{
		Use:   "explain [topic]",
		Short: "Explain a concept, or answer a question about it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(args[0])
			req.Query = query
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Explain(ctx, app, req, opts)
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&query, "query", "q", "", "Follow-up question about the topic")
	return cmd
}

func defineCmd() *cobra.Command {
	var flags contentFlags

	cmd := &cobra.Command{
		Use:   "define [term]",
		Short: "Define a term concisely",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(args[0])
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Define(ctx, app, req, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func caseCmd() *cobra.Command {
	var flags contentFlags

	cmd := &cobra.Command{
		Use:   "case [topic]",
		Short: "Generate a case study with analysis questions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(args[0])
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.CaseStudy(ctx, app, req, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func analyzeCmd() *cobra.Command {
	var flags contentFlags

	cmd := &cobra.Command{
		Use:   "analyze [observation]",
		Short: "Score a social observation against sociological theories",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := flags.request(args[0])
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Analyze(ctx, app, req, opts)
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func introCmd() *cobra.Command {
	var language string
	var outPath string

	cmd := &cobra.Command{
		Use:   "intro",
		Short: "Synthesize the spoken welcome narration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req := model.ContentRequest{Language: model.Language(language)}
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Intro(ctx, app, req, outPath, opts)
			})
		},
	}
	cmd.Flags().StringVarP(&language, "lang", "l", "id", "Narration language (id, en, ar)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "intro.wav", "Output audio file")
	return cmd
}

func serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the generation gateway over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Serve(ctx, app, addr, opts)
			})
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from SOCIOMIND_ADDR or :8080)")
	return cmd
}

func keysCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage the API key vault",
	}

	addCmd := &cobra.Command{
		Use:   "add [label] [api-key]",
		Short: "Store an API key for the current provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.KeysAdd(ctx, app.Store, settings.LLM.Provider, args[0], args[1], opts)
			})
		},
	}

	var all bool
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored keys (masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := settings.LLM.Provider
			if all {
				p = ""
			}
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.KeysList(ctx, app.Store, p, opts)
			})
		},
	}
	listCmd.Flags().BoolVarP(&all, "all", "a", false, "List keys of every provider")

	removeCmd := &cobra.Command{
		Use:   "remove [label]",
		Short: "Delete a stored key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.KeysRemove(ctx, app.Store, settings.LLM.Provider, args[0], opts)
			})
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Clear exhausted marks so every stored key is tried again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.KeysReset(ctx, app.Store, settings.LLM.Provider, opts)
			})
		},
	}

	cmd.AddCommand(addCmd, listCmd, removeCmd, resetCmd)
	return cmd
}

func modeCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "mode",
		Short: "Show whether generation is live or offline, and recent calls",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, app *cli.App, opts cli.Options) error {
				return cli.Mode(ctx, app, limit, opts)
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of journal entries to show")
	return cmd
}
