package llm

import (
	"fmt"
	"strings"
)

// ErrProviderFailure indicates a single provider attempt failed: transport
// error, non-2xx status, timeout, or a structurally invalid payload. The
// chain logs it and advances; it never reaches callers on its own.
type ErrProviderFailure struct {
	Provider string
	Err      error
}

func (e *ErrProviderFailure) Error() string {
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

func (e *ErrProviderFailure) Unwrap() error { return e.Err }

// ErrParseYieldTooLow indicates a provider completed successfully but its
// text parsed into fewer usable items than required. Treated exactly like
// ErrProviderFailure for chain-advance purposes.
type ErrParseYieldTooLow struct {
	Provider string
	Got      int
	Want     int
}

func (e *ErrParseYieldTooLow) Error() string {
	return fmt.Sprintf("provider %s yielded %d usable items, want %d", e.Provider, e.Got, e.Want)
}

// ErrAllProvidersExhausted is the chain's only fatal outcome: every
// configured provider was tried and none produced a usable result. Callers
// must surface it; the gateway never substitutes fabricated content.
type ErrAllProvidersExhausted struct {
	Attempted []string
}

func (e *ErrAllProvidersExhausted) Error() string {
	if len(e.Attempted) == 0 {
		return "all providers exhausted: none configured"
	}
	return "all providers exhausted: " + strings.Join(e.Attempted, ", ")
}
