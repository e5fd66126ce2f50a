package quizgen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/difficulty"
	"github.com/quizforge/quizforge/internal/llm"
	"github.com/quizforge/quizforge/internal/quiz"
)

// Config tunes the completion requests the generator sends.
type Config struct {
	MaxTokens   int
	Temperature float64
}

func DefaultConfig() Config {
	return Config{MaxTokens: 2048, Temperature: 0.7}
}

// Generator builds quizzes and study suggestions through the provider chain.
type Generator struct {
	chain *llm.Chain
	cfg   Config
}

func New(chain *llm.Chain, cfg Config) *Generator {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultConfig().MaxTokens
	}
	return &Generator{chain: chain, cfg: cfg}
}

// Generate asks the chain for questions one difficulty tier at a time and
// assembles them into a quiz. Tiers that yield fewer questions than asked
// are kept as-is, and a tier where every provider fails is skipped; only a
// quiz with zero questions overall is an error.
func (g *Generator) Generate(ctx context.Context, userID, subject string, dist difficulty.Distribution) (quiz.Quiz, error) {
	tiers := []struct {
		name  string
		count int
	}{
		{"easy", dist.Easy},
		{"medium", dist.Medium},
		{"hard", dist.Hard},
	}

	questions := []quiz.Question{}
	got := map[string]int{}
	var exhausted *llm.ErrAllProvidersExhausted
	for _, tier := range tiers {
		if tier.count <= 0 {
			continue
		}
		prompt, err := buildQuestionPrompt(subject, tier.name, tier.count)
		if err != nil {
			return quiz.Quiz{}, err
		}
		req := llm.Request{
			System:      questionSystemPrompt,
			Prompt:      prompt,
			MaxTokens:   g.cfg.MaxTokens,
			Temperature: g.cfg.Temperature,
		}
		parsed, err := llm.Generate(ctx, g.chain, req, func(raw string) ([]quiz.Question, error) {
			qs, dropped := ParseQuestions(raw, tier.count)
			if dropped > 0 {
				log.Printf("quizgen: dropped %d malformed %s question(s) for subject %q", dropped, tier.name, subject)
			}
			return qs, nil
		})
		if err != nil {
			log.Printf("quizgen: %s tier for subject %q lost: %v", tier.name, subject, err)
			errors.As(err, &exhausted)
			continue
		}
		for _, q := range parsed {
			q.ID = uuid.NewString()
			q.Difficulty = tier.name
			questions = append(questions, q)
		}
		got[tier.name] = len(parsed)
	}

	if len(questions) == 0 {
		if exhausted != nil {
			return quiz.Quiz{}, fmt.Errorf("generate questions: %w", exhausted)
		}
		return quiz.Quiz{}, fmt.Errorf("generate questions: %w", &llm.ErrAllProvidersExhausted{Attempted: g.chain.Providers()})
	}

	return quiz.Quiz{
		ID:         uuid.NewString(),
		UserID:     userID,
		Subject:    subject,
		Difficulty: fmt.Sprintf("%d easy / %d medium / %d hard", got["easy"], got["medium"], got["hard"]),
		Questions:  questions,
		Reasoning:  dist.Reasoning,
		CreatedAt:  time.Now().Unix(),
	}, nil
}

// Suggestions asks the chain for three study suggestions after a graded
// submission. missed carries the text of the questions answered wrong.
func (g *Generator) Suggestions(ctx context.Context, subject string, score, total int, missed []string) ([]string, error) {
	prompt, err := buildSuggestionPrompt(subject, score, total, missed)
	if err != nil {
		return nil, err
	}
	req := llm.Request{
		System:      suggestionSystemPrompt,
		Prompt:      prompt,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
	}
	return llm.Generate(ctx, g.chain, req, ParseSuggestions)
}
