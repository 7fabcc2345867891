package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/richinex/sociomind/config"
	"github.com/richinex/sociomind/storage"
)

// KeysAdd stores an API key in the vault under label.
func KeysAdd(ctx context.Context, store *storage.SqliteStorage, provider, label, key string, opts Options) error {
	if config.IsPlaceholderKey(key) {
		return fmt.Errorf("refusing to store placeholder key for %s", label)
	}
	cred, err := store.AddCredential(ctx, config.NormalizeProvider(provider), label, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(opts.out(), "Stored %s key %q (%s)\n", cred.Provider, cred.Label, cred.Masked())
	return nil
}

// KeysList prints the stored keys for provider, or all keys when empty.
func KeysList(ctx context.Context, store *storage.SqliteStorage, provider string, opts Options) error {
	creds, err := store.ListCredentials(ctx, config.NormalizeProvider(provider))
	if err != nil {
		return err
	}
	if len(creds) == 0 {
		fmt.Fprintln(opts.out(), "No stored keys. Add one with `sociomind keys add <label> <key>`.")
		return nil
	}

	tw := tabwriter.NewWriter(opts.out(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PROVIDER\tLABEL\tKEY\tSTATUS\tADDED")
	for _, c := range creds {
		status := "ready"
		if c.Exhausted() {
			status = "exhausted " + c.ExhaustedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.Provider, c.Label, c.Masked(), status, c.CreatedAt.Format("2006-01-02"))
	}
	return tw.Flush()
}

// KeysRemove deletes a stored key.
func KeysRemove(ctx context.Context, store *storage.SqliteStorage, provider, label string, opts Options) error {
	if err := store.DeleteCredential(ctx, config.NormalizeProvider(provider), label); err != nil {
		return err
	}
	fmt.Fprintf(opts.out(), "Removed %q\n", label)
	return nil
}

// KeysReset clears the exhausted marks so rotation can reuse every key.
func KeysReset(ctx context.Context, store *storage.SqliteStorage, provider string, opts Options) error {
	if err := store.ResetCredentials(ctx, config.NormalizeProvider(provider)); err != nil {
		return err
	}
	fmt.Fprintf(opts.out(), "Cleared exhausted marks for %s keys\n", config.NormalizeProvider(provider))
	return nil
}

// Mode prints whether the gateway is live or offline and the recent journal.
func Mode(ctx context.Context, app *App, limit int, opts Options) error {
	w := opts.out()
	snap := app.State.Snapshot()
	label := snap.Label
	if label == "" {
		label = "-"
	}
	fmt.Fprintf(w, "Mode:     %s\nProvider: %s (%s)\nKey:      %s\n", app.Gateway.Mode(), app.Settings.LLM.Provider, app.Settings.LLM.Model, label)
	if snap.Demo {
		fmt.Fprintln(w, "Demo mode is forced by SOCIOMIND_DEMO_MODE.")
	}

	entries, err := app.Store.RecentGenerations(ctx, limit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}

	fmt.Fprintln(w, "\nRecent generations:")
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WHEN\tOPERATION\tMODE\tOUTCOME\tMS")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.Operation, e.Mode, e.Outcome, e.DurationMs)
	}
	return tw.Flush()
}
