package quiz

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/quizforge/quizforge/internal/db"
)

func TestMemoryStore(t *testing.T) {
	runStoreSuite(t, NewMemoryStore())
}

func TestSQLStore(t *testing.T) {
	conn, err := db.Open(context.Background(), db.DriverSQLite, "file:quizstore?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	runStoreSuite(t, NewSQLStore(conn, "sqlite"))
}

func runStoreSuite(t *testing.T, s Store) {
	ctx := context.Background()

	t.Run("quiz round trip", func(t *testing.T) {
		want := Quiz{
			ID:         "qz-1",
			UserID:     "u1",
			Subject:    "physics",
			Difficulty: "4 easy / 4 medium / 2 hard",
			Questions: []Question{
				{ID: "q1", Text: "What is inertia?", Options: []string{"a", "b", "c", "d"}, Answer: "a", Difficulty: "easy"},
				{ID: "q2", Text: "State Newton's second law.", Options: []string{"w", "x", "y", "z"}, Answer: "y", Difficulty: "hard"},
			},
			Reasoning: "no quiz history yet",
			CreatedAt: 1700000000,
		}
		if err := s.PutQuiz(ctx, want); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := s.GetQuiz(ctx, "qz-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %+v, want %+v", got, want)
		}
	})

	t.Run("quiz not found", func(t *testing.T) {
		if _, err := s.GetQuiz(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("list quizzes newest first", func(t *testing.T) {
		for i := 1; i <= 3; i++ {
			q := Quiz{
				ID:        fmt.Sprintf("qz-list-%d", i),
				UserID:    "u2",
				Subject:   "history",
				Questions: []Question{{ID: "q1"}},
				CreatedAt: int64(1000 * i),
			}
			if err := s.PutQuiz(ctx, q); err != nil {
				t.Fatalf("put %d: %v", i, err)
			}
		}
		got, err := s.ListQuizzes(ctx, "u2", ListOpts{Limit: 2})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 2 || got[0].ID != "qz-list-3" || got[1].ID != "qz-list-2" {
			t.Fatalf("got %+v, want the two newest", got)
		}
		if got[0].NumQuestions != 1 {
			t.Errorf("num questions = %d, want 1", got[0].NumQuestions)
		}
		if other, _ := s.ListQuizzes(ctx, "nobody", ListOpts{}); len(other) != 0 {
			t.Errorf("stranger sees %d quizzes, want 0", len(other))
		}
	})

	t.Run("submission round trip", func(t *testing.T) {
		want := Submission{
			ID:      "sub-1",
			QuizID:  "qz-1",
			UserID:  "u1",
			Subject: "physics",
			Score:   1,
			Total:   2,
			Answers: []Answer{
				{QuestionID: "q1", Response: "a", CorrectAnswer: "a", Correct: true},
				{QuestionID: "q2", Response: "w", CorrectAnswer: "y"},
			},
			Suggestions: []string{"Review Newton's laws of motion."},
			SubmittedAt: 1700000100,
		}
		if err := s.PutSubmission(ctx, want); err != nil {
			t.Fatalf("put: %v", err)
		}
		got, err := s.GetSubmission(ctx, "sub-1")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if !reflect.DeepEqual(got, want) {
			t.Fatalf("got %+v, want %+v", got, want)
		}

		if err := s.MarkEmailSent(ctx, "sub-1"); err != nil {
			t.Fatalf("mark email sent: %v", err)
		}
		got, _ = s.GetSubmission(ctx, "sub-1")
		if !got.EmailSent {
			t.Fatal("email_sent flag not persisted")
		}
	})

	t.Run("mark email sent on missing submission", func(t *testing.T) {
		if err := s.MarkEmailSent(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("recent results newest first with subject filter", func(t *testing.T) {
		subjects := []string{"math", "bio"}
		for i := 0; i < 12; i++ {
			sub := Submission{
				ID:          fmt.Sprintf("sub-hist-%d", i),
				QuizID:      "qz-1",
				UserID:      "u3",
				Subject:     subjects[i%2],
				Score:       i,
				Total:       12,
				Suggestions: []string{},
				SubmittedAt: int64(2000 + i),
			}
			if err := s.PutSubmission(ctx, sub); err != nil {
				t.Fatalf("put %d: %v", i, err)
			}
		}

		all, err := s.RecentResults(ctx, "u3", "", 0)
		if err != nil {
			t.Fatalf("recent: %v", err)
		}
		if len(all) != 10 {
			t.Fatalf("got %d results, want the default window of 10", len(all))
		}
		if all[0].Score != 11 || all[9].Score != 2 {
			t.Fatalf("got scores %v, want newest first", all)
		}

		math, err := s.RecentResults(ctx, "u3", "math", 10)
		if err != nil {
			t.Fatalf("recent math: %v", err)
		}
		if len(math) != 6 {
			t.Fatalf("got %d math results, want 6", len(math))
		}
		for _, r := range math {
			if r.Score%2 != 0 {
				t.Fatalf("got scores %v, want only the even math rows", math)
			}
		}
	})

	t.Run("list submissions newest first", func(t *testing.T) {
		got, err := s.ListSubmissions(ctx, "u3", ListOpts{Limit: 3})
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(got) != 3 || got[0].ID != "sub-hist-11" || got[2].ID != "sub-hist-9" {
			t.Fatalf("got %+v, want the three newest", got)
		}
	})
}
