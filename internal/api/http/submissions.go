// internal/api/http/submissions.go
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quizforge/quizforge/internal/audit"
	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/mail"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/quizgen"
	"github.com/quizforge/quizforge/internal/rbac"
)

// SubmitQuizHandler grades a quiz attempt. Scoring is the primary action:
// suggestion generation and the results email are best effort and never
// fail the submission.
// POST /api/quizzes/{quizID}/submissions { "answers": { "<question id>": "<option text>" } }
func SubmitQuizHandler(store quiz.Store, gen *quizgen.Generator, users auth.UserStore, mailer mail.Mailer, events audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Answers map[string]string `json:"answers"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}

		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		userID := rbac.SubjectFromContext(r.Context())
		if !canView(r, q.UserID) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}

		score, graded := quiz.Grade(q, req.Answers)

		var missed []string
		for _, a := range graded {
			if !a.Correct {
				missed = append(missed, questionText(q, a.QuestionID))
			}
		}
		var suggestions []string
		if len(missed) > 0 {
			suggestions, err = gen.Suggestions(r.Context(), q.Subject, score, len(q.Questions), missed)
			if err != nil {
				log.Printf("suggestions for quiz %s: %v", q.ID, err)
				suggestions = nil
			}
		}

		sub := quiz.Submission{
			ID:          uuid.NewString(),
			QuizID:      q.ID,
			UserID:      userID,
			Subject:     q.Subject,
			Score:       score,
			Total:       len(q.Questions),
			Answers:     graded,
			Suggestions: suggestions,
			SubmittedAt: time.Now().Unix(),
		}
		if err := store.PutSubmission(r.Context(), sub); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.EventSubmissionScored, sub.ID, map[string]any{
			"quiz_id": sub.QuizID,
			"subject": sub.Subject,
			"score":   sub.Score,
			"total":   sub.Total,
		})

		if sent := emailResults(r, users, mailer, events, store, &sub); sent {
			sub.EmailSent = true
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sub)
	}
}

// emailResults mails the graded submission to the account address, if there
// is one and a mailer is configured. Reports whether the mail went out.
func emailResults(r *http.Request, users auth.UserStore, mailer mail.Mailer, events audit.Recorder, store quiz.Store, sub *quiz.Submission) bool {
	u, err := users.ByID(r.Context(), sub.UserID)
	if err != nil || u.Email == "" {
		return false
	}
	if err := mailer.SendResults(r.Context(), u.Email, *sub); err != nil {
		if !errors.Is(err, mail.ErrNotConfigured) {
			log.Printf("results mail for submission %s: %v", sub.ID, err)
			events.Record(r.Context(), audit.EventEmailFailed, sub.ID, map[string]any{"to": u.Email, "error": err.Error()})
		}
		return false
	}
	if err := store.MarkEmailSent(r.Context(), sub.ID); err != nil {
		log.Printf("mark email sent for submission %s: %v", sub.ID, err)
	}
	events.Record(r.Context(), audit.EventEmailSent, sub.ID, map[string]any{"to": u.Email})
	return true
}

func questionText(q quiz.Quiz, id string) string {
	for _, qu := range q.Questions {
		if qu.ID == id {
			return qu.Text
		}
	}
	return id
}

// GetSubmissionHandler serves one graded submission to its owner.
func GetSubmissionHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, err := store.GetSubmission(r.Context(), chi.URLParam(r, "submissionID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !canView(r, sub.UserID) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sub)
	}
}

// ListSubmissionsHandler serves the caller's submissions, newest first.
func ListSubmissionsHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		list, err := store.ListSubmissions(r.Context(), rbac.SubjectFromContext(r.Context()), quiz.ListOpts{
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(list)
	}
}
