// Package quizgen turns raw model completions into quizzes: prompt building,
// response parsing, and the generation flow that ties them to the provider
// chain.
package quizgen

import (
	"errors"
	"regexp"
	"strings"

	"github.com/quizforge/quizforge/internal/quiz"
)

// wantSuggestions is how many study suggestions a submission carries.
const wantSuggestions = 3

// minSuggestionLen filters out stub lines ("Good luck!") that models pad
// suggestion lists with.
const minSuggestionLen = 20

// ErrInsufficientSuggestions reports a completion with fewer than three
// usable suggestion lines.
var ErrInsufficientSuggestions = errors.New("quizgen: fewer than 3 usable suggestions in completion")

var (
	// questionStartRe matches the numbering that opens a question block:
	// "1.", "Q2)", "Question 3:", "**4.**" at the start of a line.
	questionStartRe = regexp.MustCompile(`(?mi)^[ \t>*#]*(?:q(?:uestion)?\s*)?\d+\s*[.):-]`)

	// optionRe matches one answer option line: "A) text", "(b. text", with
	// optional markdown bold around the marker.
	optionRe = regexp.MustCompile(`(?mi)^[ \t>*]*\(?([a-d])[.):\]]\**[ \t]*(.+)$`)

	// answerKeyRe matches the explicit answer marker that trails the
	// options: "Answer: C", "Correct answer - b", "correct: (D)".
	answerKeyRe = regexp.MustCompile(`(?i)\b(?:correct\s+answers?|answers?|correct)\s*(?:is\s*)?[:\-]\s*\**\s*\(?([a-d])\b`)

	// bulletRe strips list markers from suggestion lines.
	bulletRe = regexp.MustCompile(`^[\s>*\-•]*(?:\d+\s*[.):-])?\s*`)
)

// ParseQuestions extracts up to expectedCount multiple-choice questions from
// a raw completion. A question needs a non-empty prompt and exactly four
// options; anything else is dropped and counted. The second return is the
// number of malformed blocks dropped. Partial yield is not an error; the
// caller decides whether too few questions is acceptable.
func ParseQuestions(raw string, expectedCount int) ([]quiz.Question, int) {
	raw = stripCodeFences(raw)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	// Split on numbering markers. Text before the first marker is preamble
	// chatter ("Here are your questions:"), not a question block.
	locs := questionStartRe.FindAllStringIndex(raw, -1)
	var units []string
	if len(locs) == 0 {
		units = []string{raw}
	} else {
		for i, loc := range locs {
			end := len(raw)
			if i+1 < len(locs) {
				end = locs[i+1][0]
			}
			units = append(units, raw[loc[1]:end])
		}
	}

	questions := []quiz.Question{}
	dropped := 0
	for _, unit := range units {
		if expectedCount > 0 && len(questions) >= expectedCount {
			break
		}
		q, ok := parseUnit(unit)
		if !ok {
			dropped++
			continue
		}
		questions = append(questions, q)
	}
	return questions, dropped
}

// parseUnit parses one question block: prompt text, four options, and the
// trailing answer marker. Without a marker the first option is the key.
func parseUnit(unit string) (quiz.Question, bool) {
	matches := optionRe.FindAllStringSubmatchIndex(unit, -1)
	if len(matches) != 4 {
		return quiz.Question{}, false
	}

	prompt := normalizeSpace(strings.Trim(unit[:matches[0][0]], " \t\n*"))
	if prompt == "" {
		return quiz.Question{}, false
	}

	letters := make([]string, 0, 4)
	options := make([]string, 0, 4)
	for _, m := range matches {
		letter := strings.ToUpper(unit[m[2]:m[3]])
		text := strings.Trim(unit[m[4]:m[5]], " \t*")
		if text == "" {
			return quiz.Question{}, false
		}
		letters = append(letters, letter)
		options = append(options, text)
	}

	// Only look for the key after the last option so prompts that say
	// "choose the correct answer:" don't hijack it.
	answer := options[0]
	tail := unit[matches[3][1]:]
	if m := answerKeyRe.FindStringSubmatch(tail); m != nil {
		want := strings.ToUpper(m[1])
		for i, l := range letters {
			if l == want {
				answer = options[i]
				break
			}
		}
	}

	return quiz.Question{Text: prompt, Options: options, Answer: answer}, true
}

// ParseSuggestions extracts exactly three study suggestions, one per line,
// from a raw completion. Bullet and numbering markers are stripped and short
// stub lines skipped.
func ParseSuggestions(raw string) ([]string, error) {
	raw = stripCodeFences(raw)
	raw = strings.ReplaceAll(raw, "\r\n", "\n")

	out := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = bulletRe.ReplaceAllString(line, "")
		line = normalizeSpace(strings.Trim(line, " \t*"))
		if len(line) < minSuggestionLen {
			continue
		}
		out = append(out, line)
		if len(out) == wantSuggestions {
			break
		}
	}
	if len(out) < wantSuggestions {
		return nil, ErrInsufficientSuggestions
	}
	return out, nil
}

// stripCodeFences unwraps a completion the model wrapped in a ``` fence so
// it parses the same as a bare one.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.Index(s, "\n"); i >= 0 {
		s = s[i+1:] // drop the info string ("```markdown")
	}
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
