package llm

import (
	"context"
	"log"
	"time"
)

// ParseFunc turns raw completion text into usable items. Returning an error
// or an empty slice sends the chain on to the next provider.
type ParseFunc[T any] func(raw string) ([]T, error)

// Chain is the ranked provider fallback. Attempts are strictly sequential:
// each provider call is awaited fully (success, failure, or timeout) before
// the next is tried, and the first usable result wins.
type Chain struct {
	providers []Provider
	timeout   time.Duration
}

// NewChain builds a chain over the given providers, tried in order. timeout
// bounds each individual attempt.
func NewChain(timeout time.Duration, providers ...Provider) *Chain {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Chain{providers: providers, timeout: timeout}
}

// NewChainFromConfig constructs the ranked lineup Groq, Gemini, OpenRouter,
// Anthropic, OpenAI from cfg. A provider whose credential is absent is
// skipped entirely; that is unavailability, not a failure.
func NewChainFromConfig(ctx context.Context, cfg Config) (*Chain, error) {
	var providers []Provider

	if cfg.Groq.APIKey != "" {
		p, err := NewGroqProvider(cfg.Groq)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if cfg.Gemini.APIKey != "" {
		p, err := NewGeminiProvider(ctx, cfg.Gemini)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if cfg.OpenRouter.APIKey != "" {
		p, err := NewOpenRouterProvider(cfg.OpenRouter)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if cfg.Anthropic.APIKey != "" {
		p, err := NewAnthropicProvider(cfg.Anthropic)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}
	if cfg.OpenAI.APIKey != "" {
		p, err := NewOpenAIProvider(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		providers = append(providers, p)
	}

	if len(providers) == 0 {
		log.Printf("llm: no provider credentials configured; generation will fail")
	}
	return NewChain(cfg.Timeout, providers...), nil
}

// Providers reports the configured lineup in rank order.
func (c *Chain) Providers() []string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return names
}

// Generate walks the chain with req and hands each raw completion to parse.
// Provider failures and unusable output are logged and skipped; the only
// error returned is *ErrAllProvidersExhausted, and no partial or fabricated
// content ever accompanies it.
func Generate[T any](ctx context.Context, c *Chain, req Request, parse ParseFunc[T]) ([]T, error) {
	attempted := make([]string, 0, len(c.providers))
	for _, p := range c.providers {
		if ctx.Err() != nil {
			break
		}
		attempted = append(attempted, p.Name())

		actx, cancel := context.WithTimeout(ctx, c.timeout)
		raw, err := p.Complete(actx, req)
		cancel()
		if err != nil {
			log.Printf("llm: %v", err)
			continue
		}

		items, err := parse(raw)
		if err != nil {
			log.Printf("llm: provider %s output unusable: %v", p.Name(), err)
			continue
		}
		if len(items) == 0 {
			log.Printf("llm: %v", &ErrParseYieldTooLow{Provider: p.Name(), Got: 0, Want: 1})
			continue
		}
		return items, nil
	}
	return nil, &ErrAllProvidersExhausted{Attempted: attempted}
}
