package quiz

import "testing"

func TestGrade(t *testing.T) {
	q := Quiz{Questions: []Question{
		{ID: "q1", Answer: "Paris"},
		{ID: "q2", Answer: "4"},
		{ID: "q3", Answer: "blue"},
	}}

	score, answers := Grade(q, map[string]string{"q1": "Paris", "q2": "5"})
	if score != 1 {
		t.Fatalf("score = %d, want 1", score)
	}
	if len(answers) != 3 {
		t.Fatalf("answers = %d records, want one per question", len(answers))
	}
	if !answers[0].Correct || answers[0].Response != "Paris" {
		t.Errorf("q1 graded %+v, want correct", answers[0])
	}
	if answers[1].Correct || answers[1].Response != "5" || answers[1].CorrectAnswer != "4" {
		t.Errorf("q2 graded %+v, want wrong with key recorded", answers[1])
	}
	if answers[2].Correct || answers[2].Response != "" {
		t.Errorf("q3 graded %+v, want unanswered counted wrong", answers[2])
	}
}

func TestGradeExactMatchOnly(t *testing.T) {
	q := Quiz{Questions: []Question{{ID: "q1", Answer: "Paris"}}}
	if score, _ := Grade(q, map[string]string{"q1": "paris"}); score != 0 {
		t.Fatalf("score = %d, want 0 for case mismatch", score)
	}
}

func TestRedacted(t *testing.T) {
	q := Quiz{Questions: []Question{
		{ID: "q1", Text: "2+2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"},
	}}

	red := q.Redacted()
	if red.Questions[0].Answer != "" {
		t.Fatal("redacted quiz still carries the answer key")
	}
	if red.Questions[0].Text != "2+2?" || len(red.Questions[0].Options) != 4 {
		t.Error("redaction dropped question content")
	}
	if q.Questions[0].Answer != "4" {
		t.Error("redaction mutated the source quiz")
	}
}
