// internal/api/http/difficulty.go
package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/quizforge/quizforge/internal/difficulty"
	"github.com/quizforge/quizforge/internal/rbac"
)

// DifficultyPreviewHandler shows the split the next quiz would get, without
// generating one. Subject is optional; empty means all-subject history.
// GET /api/difficulty?subject=algebra&total=10
func DifficultyPreviewHandler(est *difficulty.Estimator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := strings.TrimSpace(r.URL.Query().Get("subject"))
		total := parseIntDefault(r.URL.Query().Get("total"), defaultQuizSize)
		if total < 1 || total > maxQuizSize {
			http.Error(w, "total out of range", http.StatusBadRequest)
			return
		}

		dist, err := est.Compute(r.Context(), rbac.SubjectFromContext(r.Context()), subject, total)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(dist)
	}
}
