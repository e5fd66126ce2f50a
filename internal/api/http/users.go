// internal/api/http/users.go
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/rbac"
)

// MeHandler serves the caller's own profile.
// GET /api/users/me
func MeHandler(users auth.UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.ByID(r.Context(), rbac.SubjectFromContext(r.Context()))
		if err != nil {
			if errors.Is(err, auth.ErrUserNotFound) {
				http.Error(w, "not found", http.StatusNotFound)
				return
			}
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(u)
	}
}
