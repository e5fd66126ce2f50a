package quizgen

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/quizforge/quizforge/internal/difficulty"
	"github.com/quizforge/quizforge/internal/llm"
)

func completion(lines ...string) string {
	return strings.Join(lines, "\n") + "\n"
}

func TestGeneratorOneCallPerTier(t *testing.T) {
	mock := llm.NewMockProvider("mock",
		llm.MockResponse{Text: completion("1. Easy one?", "A) a1", "B) b1", "C) c1", "D) d1", "Answer: A")},
		llm.MockResponse{Text: completion("1. Medium one?", "A) a2", "B) b2", "C) c2", "D) d2", "Answer: B")},
		llm.MockResponse{Text: completion("1. Hard one?", "A) a3", "B) b3", "C) c3", "D) d3", "Answer: C")},
	)
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	dist := difficulty.Distribution{Easy: 1, Medium: 1, Hard: 1, Reasoning: "starting mix"}
	q, err := gen.Generate(context.Background(), "u1", "physics", dist)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if mock.CallCount() != 3 {
		t.Fatalf("provider called %d times, want one call per tier", mock.CallCount())
	}
	for i, want := range []string{"easy", "medium", "hard"} {
		if !strings.Contains(mock.Calls[i].Prompt, "Difficulty: "+want) {
			t.Errorf("call %d prompt missing tier %q:\n%s", i, want, mock.Calls[i].Prompt)
		}
		if !strings.Contains(mock.Calls[i].Prompt, "physics") {
			t.Errorf("call %d prompt missing subject", i)
		}
	}

	if len(q.Questions) != 3 {
		t.Fatalf("quiz has %d questions, want 3", len(q.Questions))
	}
	for i, want := range []string{"easy", "medium", "hard"} {
		if q.Questions[i].Difficulty != want {
			t.Errorf("question %d tier = %q, want %q", i, q.Questions[i].Difficulty, want)
		}
		if q.Questions[i].ID == "" {
			t.Errorf("question %d has no ID", i)
		}
	}
	if q.Questions[0].ID == q.Questions[1].ID {
		t.Error("question IDs not unique")
	}
	if q.UserID != "u1" || q.Subject != "physics" {
		t.Errorf("quiz owner/subject = %q/%q", q.UserID, q.Subject)
	}
	if q.Difficulty != "1 easy / 1 medium / 1 hard" {
		t.Errorf("difficulty summary = %q", q.Difficulty)
	}
	if q.Reasoning != "starting mix" {
		t.Errorf("reasoning = %q, want the estimator's carried through", q.Reasoning)
	}
	if q.ID == "" || q.CreatedAt == 0 {
		t.Error("quiz missing ID or timestamp")
	}
}

func TestGeneratorSkipsEmptyTiers(t *testing.T) {
	mock := llm.NewMockProvider("mock",
		llm.MockResponse{Text: completion(
			"1. First easy?", "A) w", "B) x", "C) y", "D) z", "Answer: A",
			"2. Second easy?", "A) w", "B) x", "C) y", "D) z", "Answer: D",
		)},
	)
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	q, err := gen.Generate(context.Background(), "u1", "math", difficulty.Distribution{Easy: 2})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if mock.CallCount() != 1 {
		t.Fatalf("provider called %d times, want zero-count tiers skipped", mock.CallCount())
	}
	if len(q.Questions) != 2 || q.Difficulty != "2 easy / 0 medium / 0 hard" {
		t.Fatalf("got %d questions, summary %q", len(q.Questions), q.Difficulty)
	}
}

func TestGeneratorKeepsPartialTierYield(t *testing.T) {
	// Asked for three easy questions, the model returned two.
	mock := llm.NewMockProvider("mock",
		llm.MockResponse{Text: completion(
			"1. First?", "A) w", "B) x", "C) y", "D) z", "Answer: A",
			"2. Second?", "A) w", "B) x", "C) y", "D) z", "Answer: B",
		)},
	)
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	q, err := gen.Generate(context.Background(), "u1", "math", difficulty.Distribution{Easy: 3})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(q.Questions) != 2 {
		t.Fatalf("got %d questions, want the partial yield kept", len(q.Questions))
	}
}

func TestGeneratorServesPartialQuizWhenTierExhausted(t *testing.T) {
	// Easy tier lands, then the chain dies: the quiz ships with what it got.
	mock := llm.NewMockProvider("mock",
		llm.MockResponse{Text: completion("1. Easy?", "A) w", "B) x", "C) y", "D) z", "Answer: A")},
		llm.MockResponse{Err: errors.New("rate limited")},
	)
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	q, err := gen.Generate(context.Background(), "u1", "math", difficulty.Distribution{Easy: 1, Medium: 1})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(q.Questions) != 1 || q.Questions[0].Difficulty != "easy" {
		t.Fatalf("questions = %+v, want the surviving easy question", q.Questions)
	}
	if q.Difficulty != "1 easy / 0 medium / 0 hard" {
		t.Errorf("difficulty summary = %q", q.Difficulty)
	}
}

func TestGeneratorFailsWhenNothingGenerates(t *testing.T) {
	mock := llm.NewMockProvider("mock",
		llm.MockResponse{Err: errors.New("rate limited")},
		llm.MockResponse{Err: errors.New("rate limited")},
	)
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	_, err := gen.Generate(context.Background(), "u1", "math", difficulty.Distribution{Easy: 1, Medium: 1})
	var exhausted *llm.ErrAllProvidersExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want ErrAllProvidersExhausted on an empty quiz", err)
	}
}

func TestGeneratorSuggestions(t *testing.T) {
	mock := llm.NewMockProvider("mock",
		llm.MockResponse{Text: completion(
			"1. Work through stoichiometry problems with limiting reagents.",
			"2. Re-read the chapter on balancing redox equations.",
			"3. Drill molar mass calculations until they take under a minute.",
		)},
	)
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	got, err := gen.Suggestions(context.Background(), "chemistry", 2, 5, []string{"What is a mole?"})
	if err != nil {
		t.Fatalf("suggestions: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d suggestions, want 3", len(got))
	}
	prompt := mock.Calls[0].Prompt
	if !strings.Contains(prompt, "2 out of 5") || !strings.Contains(prompt, "What is a mole?") {
		t.Errorf("prompt missing score or missed question:\n%s", prompt)
	}
}

func TestGeneratorSuggestionsExhaustion(t *testing.T) {
	mock := llm.NewMockProvider("mock", llm.MockResponse{Text: "Good luck!"})
	gen := New(llm.NewChain(0, mock), DefaultConfig())

	_, err := gen.Suggestions(context.Background(), "chemistry", 2, 5, nil)
	var exhausted *llm.ErrAllProvidersExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("err = %v, want chain exhausted on unusable output", err)
	}
}
