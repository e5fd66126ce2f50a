package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizforge/quizforge/internal/audit"
	"github.com/quizforge/quizforge/internal/config"
)

const bcryptCost = 12

const guestCookie = "qf_guest_id"

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Username    string `json:"username"`
	Role        string `json:"role"`
}

// RegisterHandler creates an account and signs the new user in.
// POST /api/auth/register { "username": "...", "email": "...", "password": "..." }
func RegisterHandler(a *AuthService, users UserStore, events audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		req.Username = strings.TrimSpace(req.Username)
		req.Email = strings.TrimSpace(req.Email)
		switch {
		case len(req.Username) < 3:
			http.Error(w, "username too short", http.StatusBadRequest)
			return
		case len(req.Password) < 8:
			http.Error(w, "password too short", http.StatusBadRequest)
			return
		case !strings.Contains(req.Email, "@"):
			http.Error(w, "invalid email", http.StatusBadRequest)
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
		if err != nil {
			http.Error(w, "hash password", http.StatusInternalServerError)
			return
		}
		u := User{
			ID:           uuid.NewString(),
			Username:     req.Username,
			Email:        req.Email,
			PasswordHash: string(hash),
			Role:         "user",
			CreatedAt:    time.Now().Unix(),
		}
		if err := users.Create(r.Context(), u); err != nil {
			if errors.Is(err, ErrUserExists) {
				http.Error(w, "username or email already taken", http.StatusConflict)
				return
			}
			http.Error(w, "create user", http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.EventUserRegistered, u.ID, map[string]string{"username": u.Username})

		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: tok, Username: u.Username, Role: u.Role})
	}
}

// LoginHandler exchanges credentials for a token.
// POST /api/auth/login { "username": "...", "password": "..." }
func LoginHandler(a *AuthService, users UserStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		u, err := users.ByUsername(r.Context(), req.Username)
		if err != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: tok, Username: u.Username, Role: u.Role})
	}
}

// GuestLoginHandler mints a throwaway account so visitors can take a quiz
// without registering. A cookie keeps the same guest identity across visits
// so difficulty history accumulates.
func GuestLoginHandler(a *AuthService, users UserStore, cfg config.Config, events audit.Recorder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !cfg.EnableGuestAuth {
			http.Error(w, "guest auth disabled", http.StatusForbidden)
			return
		}

		// Reuse an existing guest identity from the cookie when it checks out.
		if c, err := r.Cookie(guestCookie); err == nil && strings.HasPrefix(c.Value, "guest|") {
			if u, err := users.ByID(r.Context(), c.Value); err == nil && u.Role == "guest" {
				tok, err := a.IssueJWT(u.ID, u.Role)
				if err != nil {
					http.Error(w, "issue token", http.StatusInternalServerError)
					return
				}
				setGuestCookie(w, u.ID)
				_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: tok, Username: u.Username, Role: u.Role})
				return
			}
		}

		sfx := strconv.FormatInt(time.Now().UnixNano(), 36)
		u := User{
			ID:        "guest|" + sfx,
			Username:  "guest-" + sfx[len(sfx)-6:],
			Role:      "guest",
			CreatedAt: time.Now().Unix(),
		}
		if err := users.Create(r.Context(), u); err != nil {
			http.Error(w, "create guest", http.StatusInternalServerError)
			return
		}
		events.Record(r.Context(), audit.EventGuestCreated, u.ID, nil)

		tok, err := a.IssueJWT(u.ID, u.Role)
		if err != nil {
			http.Error(w, "issue token", http.StatusInternalServerError)
			return
		}
		setGuestCookie(w, u.ID)
		_ = json.NewEncoder(w).Encode(tokenResponse{AccessToken: tok, Username: u.Username, Role: u.Role})
	}
}

func setGuestCookie(w http.ResponseWriter, userID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     guestCookie,
		Value:    userID,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		Expires:  time.Now().Add(30 * 24 * time.Hour),
	})
}
