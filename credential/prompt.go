package credential

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/richinex/sociomind/config"
)

// Prompt asks the operator for a new key on a terminal. An empty answer or
// a placeholder value leaves the State untouched and reports ErrNoCredential.
//
// A single goroutine owns the input. It starts with the first question and
// keeps reading until the input closes, so an answer typed after a
// cancelled question is delivered to the next one.
type Prompt struct {
	in       *bufio.Reader
	out      io.Writer
	state    *State
	provider string
	logger   *zap.Logger

	start sync.Once
	lines chan answer
	mu    sync.Mutex
}

type answer struct {
	line string
	err  error
}

// NewPrompt creates an interactive selector reading from in and writing the
// question to out.
func NewPrompt(in io.Reader, out io.Writer, state *State, provider string, logger *zap.Logger) *Prompt {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Prompt{
		in:       bufio.NewReader(in),
		out:      out,
		state:    state,
		provider: provider,
		logger:   logger.Named("prompt"),
		lines:    make(chan answer, 1),
	}
}

// readLines forwards input lines until the reader fails or reaches EOF.
func (p *Prompt) readLines() {
	defer close(p.lines)
	for {
		line, err := p.in.ReadString('\n')
		p.lines <- answer{line, err}
		if err != nil {
			return
		}
	}
}

// SelectCredential reads one line holding the replacement key. Concurrent
// callers are asked one at a time.
func (p *Prompt) SelectCredential(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.start.Do(func() { go p.readLines() })

	envVar, _ := config.APIKeyEnvFor(p.provider)
	fmt.Fprintf(p.out, "The %s key was rejected or its quota is exhausted.\nEnter a new API key (%s), or leave empty to continue offline: ", p.provider, envVar)

	var got answer
	select {
	case <-ctx.Done():
		return ctx.Err()
	case a, ok := <-p.lines:
		if !ok {
			return fmt.Errorf("prompt: input closed: %w", ErrNoCredential)
		}
		got = a
	}

	if got.err != nil && !errors.Is(got.err, io.EOF) {
		return fmt.Errorf("prompt: %w", got.err)
	}
	key := strings.TrimSpace(got.line)
	if config.IsPlaceholderKey(key) {
		return fmt.Errorf("prompt: %w", ErrNoCredential)
	}

	p.state.Set(key, "interactive")
	p.logger.Info("credential entered interactively", zap.String("provider", p.provider))
	return nil
}

// Chain tries each selector in order and stops at the first success.
type Chain []Selector

// SelectCredential returns nil as soon as one selector succeeds, or the
// joined errors of all of them.
func (c Chain) SelectCredential(ctx context.Context) error {
	var errs []error
	for _, s := range c {
		err := s.SelectCredential(ctx)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return ErrNoCredential
	}
	return errors.Join(errs...)
}

var (
	_ Selector = (*Prompt)(nil)
	_ Selector = Chain(nil)
)
