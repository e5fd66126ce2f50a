package quizgen

import (
	"fmt"
	"strings"
	"text/template"
)

const questionSystemPrompt = "You are a quiz author. You write clear multiple-choice questions and output them in exactly the format requested, with no commentary."

const suggestionSystemPrompt = "You are a study coach. You give short, concrete study suggestions based on quiz mistakes."

// tierGuidance steers the model's sense of what each difficulty tier means.
var tierGuidance = map[string]string{
	"easy":   "basic recall, definitions, and single-fact questions",
	"medium": "application of core concepts to straightforward scenarios",
	"hard":   "multi-step reasoning, edge cases, and concept synthesis",
}

var questionPromptTmpl = template.Must(template.New("questions").Parse(
	`Generate exactly {{.Count}} multiple-choice questions about {{.Subject}}.

Difficulty: {{.Tier}} ({{.Guidance}}).

Format every question exactly like this:
1. <question text>
A) <option>
B) <option>
C) <option>
D) <option>
Answer: <letter>

Number the questions 1 through {{.Count}}. Output nothing but the questions.`))

var suggestionPromptTmpl = template.Must(template.New("suggestions").Parse(
	`A student scored {{.Score}} out of {{.Total}} on a {{.Subject}} quiz.
{{if .Missed}}
They answered these questions wrong:
{{range .Missed}}- {{.}}
{{end}}{{end}}
Write exactly 3 study suggestions, one per line. Each suggestion must be a
specific, complete sentence about what to review or practice next.`))

type questionPromptData struct {
	Count    int
	Subject  string
	Tier     string
	Guidance string
}

func buildQuestionPrompt(subject, tier string, count int) (string, error) {
	guidance, ok := tierGuidance[tier]
	if !ok {
		return "", fmt.Errorf("unknown difficulty tier %q", tier)
	}
	var b strings.Builder
	err := questionPromptTmpl.Execute(&b, questionPromptData{
		Count:    count,
		Subject:  subject,
		Tier:     tier,
		Guidance: guidance,
	})
	if err != nil {
		return "", fmt.Errorf("build question prompt: %w", err)
	}
	return b.String(), nil
}

type suggestionPromptData struct {
	Score   int
	Total   int
	Subject string
	Missed  []string
}

func buildSuggestionPrompt(subject string, score, total int, missed []string) (string, error) {
	var b strings.Builder
	err := suggestionPromptTmpl.Execute(&b, suggestionPromptData{
		Score:   score,
		Total:   total,
		Subject: subject,
		Missed:  missed,
	})
	if err != nil {
		return "", fmt.Errorf("build suggestion prompt: %w", err)
	}
	return b.String(), nil
}
