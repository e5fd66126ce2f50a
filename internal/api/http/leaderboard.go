// internal/api/http/leaderboard.go
package http

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/quizforge/quizforge/internal/leaderboard"
)

// LeaderboardHandler serves the total-score ranking. The subject comes from
// the route when mounted at /api/leaderboard/{subject}, else global.
// GET /api/leaderboard?limit=10, GET /api/leaderboard/{subject}
func LeaderboardHandler(svc *leaderboard.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		subject := strings.TrimSpace(chi.URLParam(r, "subject"))
		limit := parseIntDefault(r.URL.Query().Get("limit"), 0)

		entries, err := svc.Top(r.Context(), subject, limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(entries)
	}
}
