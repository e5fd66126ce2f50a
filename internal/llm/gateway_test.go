package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// parseLines is a stand-in parser: every non-empty line is one item.
func parseLines(raw string) ([]string, error) {
	var out []string
	for _, ln := range strings.Split(raw, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

func TestGenerateFallsThroughToSecondProvider(t *testing.T) {
	p1 := NewMockProvider("first", MockResponse{Err: &ErrProviderFailure{Provider: "first", Err: errors.New("http 500")}})
	p2 := NewMockProvider("second", MockResponse{Text: "alpha\nbeta\ngamma"})
	p3 := NewMockProvider("third", MockResponse{Text: "never used"})

	chain := NewChain(time.Second, p1, p2, p3)

	items, err := Generate(context.Background(), chain, Request{Prompt: "three things"}, parseLines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}
	if items[0] != "alpha" || items[2] != "gamma" {
		t.Fatalf("unexpected items: %v", items)
	}
	if p3.CallCount() != 0 {
		t.Fatalf("third provider was invoked %d times, want 0", p3.CallCount())
	}
}

func TestGenerateAdvancesOnZeroYield(t *testing.T) {
	// First provider answers fine but with nothing parseable.
	p1 := NewMockProvider("first", MockResponse{Text: "   \n  \n"})
	p2 := NewMockProvider("second", MockResponse{Text: "only line"})

	chain := NewChain(time.Second, p1, p2)

	items, err := Generate(context.Background(), chain, Request{Prompt: "x"}, parseLines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 || items[0] != "only line" {
		t.Fatalf("unexpected items: %v", items)
	}
	if p1.CallCount() != 1 {
		t.Fatalf("first provider calls = %d, want 1", p1.CallCount())
	}
}

func TestGenerateAdvancesOnParseError(t *testing.T) {
	wantErr := errors.New("too short")
	rejectAll := func(string) ([]string, error) { return nil, wantErr }

	p1 := NewMockProvider("first", MockResponse{Text: "whatever"})
	chain := NewChain(time.Second, p1)

	_, err := Generate(context.Background(), chain, Request{}, rejectAll)
	var exhausted *ErrAllProvidersExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("got %v, want ErrAllProvidersExhausted", err)
	}
}

func TestGenerateExhaustsAllProviders(t *testing.T) {
	p1 := NewMockProvider("first", MockResponse{Err: &ErrProviderFailure{Provider: "first", Err: errors.New("timeout")}})
	p2 := NewMockProvider("second", MockResponse{Err: &ErrProviderFailure{Provider: "second", Err: errors.New("bad payload")}})

	chain := NewChain(time.Second, p1, p2)

	items, err := Generate(context.Background(), chain, Request{Prompt: "x"}, parseLines)
	if items != nil {
		t.Fatalf("expected no partial content, got %v", items)
	}
	var exhausted *ErrAllProvidersExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("got %v, want ErrAllProvidersExhausted", err)
	}
	if len(exhausted.Attempted) != 2 {
		t.Fatalf("attempted = %v, want both providers", exhausted.Attempted)
	}
}

func TestGenerateWithNoProviders(t *testing.T) {
	chain := NewChain(time.Second)
	_, err := Generate(context.Background(), chain, Request{}, parseLines)
	var exhausted *ErrAllProvidersExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("got %v, want ErrAllProvidersExhausted", err)
	}
}

// Wire-level check: the OpenAI-compatible provider posts the chat-completions
// JSON shape with bearer auth, and a 5xx answer advances the chain.
func TestOpenAICompatibleWireFormat(t *testing.T) {
	type wireMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	var got struct {
		Model       string        `json:"model"`
		Messages    []wireMessage `json:"messages"`
		Temperature float64       `json:"temperature"`
		MaxTokens   int           `json:"max_tokens"`
	}

	bad := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer bad.Close()

	good := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("path = %s, want chat/completions", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer good-key" {
			t.Errorf("auth header = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "cmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "one\ntwo\nthree"}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15}
		}`))
	}))
	defer good.Close()

	p1, err := NewOpenAIProvider(OpenAIConfig{APIKey: "bad-key", Model: "gpt-4o-mini", BaseURL: bad.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := NewOpenAIProvider(OpenAIConfig{APIKey: "good-key", Model: "gpt-4o-mini", BaseURL: good.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}

	chain := NewChain(5*time.Second, p1, p2)
	items, err := Generate(context.Background(), chain, Request{
		System:      "You write quizzes.",
		Prompt:      "three words",
		MaxTokens:   256,
		Temperature: 0.7,
	}, parseLines)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("got %d items, want 3", len(items))
	}

	if got.Model != "gpt-4o-mini" {
		t.Errorf("model = %q", got.Model)
	}
	if got.MaxTokens != 256 {
		t.Errorf("max_tokens = %d, want 256", got.MaxTokens)
	}
	if got.Temperature < 0.69 || got.Temperature > 0.71 {
		t.Errorf("temperature = %v, want 0.7", got.Temperature)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestChainFromConfigSkipsMissingCredentials(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Groq.APIKey = "k1"
	cfg.OpenAI.APIKey = "k2"
	// Gemini, OpenRouter, Anthropic left without credentials.

	chain, err := NewChainFromConfig(context.Background(), cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	names := chain.Providers()
	if len(names) != 2 || names[0] != "groq" || names[1] != "openai" {
		t.Fatalf("providers = %v, want [groq openai]", names)
	}
}
