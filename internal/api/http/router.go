// internal/api/http/router.go
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/quizforge/quizforge/internal/audit"
	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/difficulty"
	"github.com/quizforge/quizforge/internal/leaderboard"
	"github.com/quizforge/quizforge/internal/mail"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/quizgen"
	"github.com/quizforge/quizforge/internal/rbac"
)

// Deps carries everything the router mounts. EventLog may be nil, in which
// case the admin events route is not registered.
type Deps struct {
	Cfg       config.Config
	Auth      *auth.AuthService
	Users     auth.UserStore
	Store     quiz.Store
	Estimator *difficulty.Estimator
	Generator *quizgen.Generator
	Boards    *leaderboard.Service
	Mailer    mail.Mailer
	Events    audit.Recorder
	EventLog  *audit.Log
}

// NewRouter assembles the HTTP surface: public auth endpoints, health
// probes, and the JWT-guarded API. The route timeout is generous because
// quiz generation may walk several providers before one answers.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(90 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	r.Post("/api/auth/register", auth.RegisterHandler(d.Auth, d.Users, d.Events))
	r.Post("/api/auth/login", auth.LoginHandler(d.Auth, d.Users))
	r.Post("/api/auth/guest", auth.GuestLoginHandler(d.Auth, d.Users, d.Cfg, d.Events))

	r.Get("/api/leaderboard", LeaderboardHandler(d.Boards))
	r.Get("/api/leaderboard/{subject}", LeaderboardHandler(d.Boards))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.With(rbac.Require("quiz:create")).Post("/api/quizzes", CreateQuizHandler(d.Generator, d.Estimator, d.Store, d.Events))
		pr.With(rbac.Require("quiz:view-own")).Get("/api/quizzes", ListQuizzesHandler(d.Store))
		pr.With(rbac.Require("quiz:view-own")).Get("/api/quizzes/{quizID}", GetQuizHandler(d.Store))
		pr.With(rbac.Require("quiz:submit")).Post("/api/quizzes/{quizID}/submissions", SubmitQuizHandler(d.Store, d.Generator, d.Users, d.Mailer, d.Events))
		pr.With(rbac.Require("submission:view-own")).Get("/api/users/me/submissions", ListSubmissionsHandler(d.Store))
		pr.With(rbac.Require("submission:view-own")).Get("/api/submissions/{submissionID}", GetSubmissionHandler(d.Store))
		pr.With(rbac.Require("difficulty:view")).Get("/api/difficulty", DifficultyPreviewHandler(d.Estimator))
		pr.Get("/api/users/me", MeHandler(d.Users))
		if d.EventLog != nil {
			pr.With(rbac.Require("audit:view")).Get("/api/admin/events", ListEventsHandler(d.EventLog))
		}
	})

	return r
}
