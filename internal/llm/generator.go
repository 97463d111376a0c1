// Package llm sends composed prompts to external text-generation providers.
// Every provider call is a single best-effort attempt bounded by a timeout.
package llm

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Skufu/medicare-assistant/internal/logging"
)

// Generator turns a prompt into generated text.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// Attempt is one step of a fallback sequence.
type Attempt[T any] func(ctx context.Context) (T, error)

// FirstSuccess runs attempts in order and returns the first success. When all
// attempts fail the joined errors are returned.
func FirstSuccess[T any](ctx context.Context, attempts ...Attempt[T]) (T, error) {
	var zero T
	errs := make([]error, 0, len(attempts))
	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		v, err := attempt(ctx)
		if err == nil {
			return v, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		errs = append(errs, ErrNotConfigured)
	}
	return zero, errors.Join(errs...)
}

// Result is generated text together with the provider that produced it.
type Result struct {
	Text     string
	Provider string
}

// Chain tries its generators in order.
type Chain struct {
	generators []Generator
	logger     *zap.Logger
}

// NewChain builds a chain from the non-nil generators.
func NewChain(logger *zap.Logger, generators ...Generator) *Chain {
	c := &Chain{logger: logger.Named("llm")}
	for _, g := range generators {
		if g != nil {
			c.generators = append(c.generators, g)
		}
	}
	return c
}

// Empty reports whether no provider is configured.
func (c *Chain) Empty() bool {
	return c == nil || len(c.generators) == 0
}

// Providers lists the provider names in attempt order.
func (c *Chain) Providers() []string {
	if c == nil {
		return nil
	}
	names := make([]string, len(c.generators))
	for i, g := range c.generators {
		names[i] = g.Name()
	}
	return names
}

// Generate returns the first non-empty generation.
func (c *Chain) Generate(ctx context.Context, prompt string) (Result, error) {
	if c.Empty() {
		return Result{}, notConfigured("chain")
	}

	attempts := make([]Attempt[Result], len(c.generators))
	for i, g := range c.generators {
		g := g
		attempts[i] = func(ctx context.Context) (Result, error) {
			text, err := g.Generate(ctx, prompt)
			if err == nil && strings.TrimSpace(text) == "" {
				err = malformed(g.Name(), "empty text")
			}
			if err != nil {
				c.logger.Warn("generation failed",
					zap.String("provider", g.Name()),
					zap.String("kind", string(KindOf(err))),
					zap.String("error", logging.RedactError(err)))
				return Result{}, err
			}
			c.logger.Debug("generation succeeded",
				zap.String("provider", g.Name()),
				zap.Int("response_len", len(text)))
			return Result{Text: text, Provider: g.Name()}, nil
		}
	}
	return FirstSuccess(ctx, attempts...)
}
