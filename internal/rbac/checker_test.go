package rbac

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerPolicy(t *testing.T) {
	c := NewChecker(nil)

	tests := []struct {
		role, perm string
		want       bool
	}{
		{"user", "quiz:create", true},
		{"user", "audit:view", false},
		{"guest", "quiz:submit", true},
		{"guest", "audit:view", false},
		{"admin", "audit:view", true},
		{"admin", "anything:at-all", true},
		{"stranger", "quiz:create", false},
		{"", "quiz:create", false},
	}
	for _, tt := range tests {
		if got := c.Has(tt.role, tt.perm); got != tt.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tt.role, tt.perm, got, tt.want)
		}
	}
}

func TestRequire(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	h := Require("quiz:create")(ok)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	h.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "user")))
	if rec.Code != http.StatusOK {
		t.Fatalf("user: code = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("no role: code = %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	admin := Require("audit:view")(ok)
	req = httptest.NewRequest("GET", "/", nil)
	admin.ServeHTTP(rec, req.WithContext(WithRole(req.Context(), "guest")))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("guest on admin perm: code = %d, want 403", rec.Code)
	}
}
