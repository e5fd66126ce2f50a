// internal/api/http/quizzes.go
package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/audit"
	"github.com/quizforge/quizforge/internal/difficulty"
	"github.com/quizforge/quizforge/internal/llm"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/quizgen"
	"github.com/quizforge/quizforge/internal/rbac"
)

const (
	defaultQuizSize = 10
	maxQuizSize     = 20
)

// CreateQuizHandler generates a quiz sized to the caller's history.
// POST /api/quizzes { "subject": "...", "num_questions": 10 }
func CreateQuizHandler(gen *quizgen.Generator, est *difficulty.Estimator, store quiz.Store, events audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Subject      string `json:"subject"`
			NumQuestions int    `json:"num_questions"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Subject = strings.TrimSpace(req.Subject)
		if req.Subject == "" || len(req.Subject) > 200 {
			http.Error(w, "subject required", http.StatusBadRequest)
			return
		}
		if req.NumQuestions == 0 {
			req.NumQuestions = defaultQuizSize
		}
		if req.NumQuestions < 1 || req.NumQuestions > maxQuizSize {
			http.Error(w, "num_questions out of range", http.StatusBadRequest)
			return
		}

		userID := rbac.SubjectFromContext(r.Context())
		dist, err := est.Compute(r.Context(), userID, req.Subject, req.NumQuestions)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		q, err := gen.Generate(r.Context(), userID, req.Subject, dist)
		if err != nil {
			var exhausted *llm.ErrAllProvidersExhausted
			if errors.As(err, &exhausted) {
				http.Error(w, "quiz generation unavailable: all providers failed", http.StatusBadGateway)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		if err := store.PutQuiz(r.Context(), q); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.EventQuizCreated, q.ID, map[string]any{
			"subject":   q.Subject,
			"questions": len(q.Questions),
			"user_id":   q.UserID,
		})

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(q.Redacted())
	}
}

// GetQuizHandler serves one quiz to its owner, answer key stripped.
func GetQuizHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := store.GetQuiz(r.Context(), chi.URLParam(r, "quizID"))
		if err != nil {
			if errors.Is(err, quiz.ErrNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if !canView(r, q.UserID) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(q.Redacted())
	}
}

// ListQuizzesHandler serves the caller's quizzes, newest first.
func ListQuizzesHandler(store quiz.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 50)
		offset := parseIntDefault(r.URL.Query().Get("offset"), 0)

		list, err := store.ListQuizzes(r.Context(), rbac.SubjectFromContext(r.Context()), quiz.ListOpts{
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

// canView says whether the caller owns the resource or is an admin. Misses
// read as 404 so resource IDs don't leak.
func canView(r *http.Request, ownerID string) bool {
	ctx := r.Context()
	return rbac.SubjectFromContext(ctx) == ownerID || rbac.RoleFromContext(ctx) == "admin"
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil && v >= 0 {
		return v
	}
	return def
}
