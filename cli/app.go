// Application wiring for CLI commands.
//
// Information Hiding:
// - Credential vault and journal setup hidden
// - Provider construction per active key hidden
// - Recovery selector chain hidden

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/richinex/sociomind/config"
	"github.com/richinex/sociomind/credential"
	"github.com/richinex/sociomind/gateway"
	"github.com/richinex/sociomind/llm"
	"github.com/richinex/sociomind/storage"
)

// Options holds CLI execution options.
type Options struct {
	// Interactive prompts for a replacement key on stdin when the vault
	// cannot supply one.
	Interactive bool
	// JSON prints every payload as JSON, including free text.
	JSON   bool
	Logger *zap.Logger
	Out    io.Writer
	In     io.Reader
}

func (o Options) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o Options) in() io.Reader {
	if o.In == nil {
		return os.Stdin
	}
	return o.In
}

func (o Options) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

// App is a fully wired gateway with its credential state and storage.
type App struct {
	Settings config.Settings
	State    *credential.State
	Vault    *credential.Vault
	Store    *storage.SqliteStorage
	Gateway  *gateway.Gateway
}

// NewApp opens the vault, activates a credential and builds the gateway.
// A missing key is not an error: the gateway serves demo content.
func NewApp(ctx context.Context, settings config.Settings, opts Options) (*App, error) {
	logger := opts.logger()

	store, err := storage.OpenSqlite(settings.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	label := ""
	if settings.LLM.APIKey != "" {
		label = "env"
	}
	state := credential.NewState(settings.LLM.APIKey, label)
	state.SetDemo(settings.Gateway.DemoMode)

	vault := credential.NewVault(store, state, settings.LLM.Provider, logger)
	if err := vault.Bootstrap(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to load credential: %w", err)
	}

	selectors := credential.Chain{vault}
	if opts.Interactive {
		selectors = append(selectors, credential.NewPrompt(opts.in(), opts.out(), state, settings.LLM.Provider, logger))
	}

	providerType, err := llm.ParseProviderType(settings.LLM.Provider)
	if err != nil {
		store.Close()
		return nil, err
	}
	factory := func(apiKey string) (llm.Provider, error) {
		return llm.NewProviderBuilder(providerType).
			Model(settings.LLM.Model).
			MaxTokens(settings.LLM.MaxTokens).
			Temperature(float32(settings.LLM.Temperature)).
			APIKey(apiKey)
	}
	models := gateway.Models{
		Default: settings.LLM.Model,
		Fast:    settings.LLM.FastModel,
		Speech:  settings.LLM.SpeechModel,
	}
	invoker := gateway.NewBackendInvoker(state, factory, models, settings.Gateway.RequestTimeout)

	gw := gateway.New(state, invoker).
		WithRecovery(gateway.NewRecovery(selectors, logger)).
		WithJournal(store).
		WithLogger(logger).
		WithProvider(settings.LLM.Provider).
		OfflineFallback(settings.Gateway.OfflineFallback)

	logger.Debug("gateway ready",
		zap.String("provider", settings.LLM.Provider),
		zap.String("model", settings.LLM.Model),
		zap.Stringer("mode", gw.Mode()),
	)

	return &App{
		Settings: settings,
		State:    state,
		Vault:    vault,
		Store:    store,
		Gateway:  gw,
	}, nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}
