// internal/api/http/admin_events.go
package http

import (
	"encoding/json"
	"net/http"

	"github.com/quizforge/quizforge/internal/audit"
)

// ListEventsHandler serves the audit trail, newest first. Admin only; the
// route guard enforces that.
// GET /api/admin/events?limit=100
func ListEventsHandler(logStore *audit.Log) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := parseIntDefault(r.URL.Query().Get("limit"), 100)

		events, err := logStore.Recent(r.Context(), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(events)
	}
}
