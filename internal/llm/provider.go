// Package llm provides the AI completion gateway: a ranked chain of
// external text-generation providers behind a single completion capability.
package llm

import "context"

// Provider is one external completion service. Implementations translate
// the neutral Request into their own wire dialect and return the raw
// completion text.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
	Name() string
}

// Request is a provider-neutral completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}
