package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	api "github.com/quizforge/quizforge/internal/api/http"
	"github.com/quizforge/quizforge/internal/audit"
	"github.com/quizforge/quizforge/internal/auth"
	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/db"
	"github.com/quizforge/quizforge/internal/difficulty"
	"github.com/quizforge/quizforge/internal/leaderboard"
	"github.com/quizforge/quizforge/internal/llm"
	"github.com/quizforge/quizforge/internal/mail"
	"github.com/quizforge/quizforge/internal/quiz"
	"github.com/quizforge/quizforge/internal/quizgen"
)

// NewServeCmd builds the subcommand that runs the API server.
func NewServeCmd(addr *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *addr)
		},
	}
}

func runServer(ctx context.Context, addr string) error {
	cfg := config.FromEnv()
	if addr != "" {
		cfg.HTTPAddr = addr
	}

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	chain, err := llm.NewChainFromConfig(ctx, llm.ConfigFromEnv())
	if err != nil {
		return err
	}
	log.Printf("llm providers: %v", chain.Providers())

	var cache *redis.Client
	if cfg.RedisAddr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
	}

	store := quiz.NewSQLStore(dbh, cfg.DBDriver)
	events := audit.NewLog(dbh)

	router := api.NewRouter(api.Deps{
		Cfg:       cfg,
		Auth:      auth.NewAuthService(cfg.AuthSecret),
		Users:     auth.NewSQLUserStore(dbh),
		Store:     store,
		Estimator: difficulty.NewEstimator(store),
		Generator: quizgen.New(chain, quizgen.DefaultConfig()),
		Boards:    leaderboard.NewService(leaderboard.NewRepo(dbh), cache),
		Mailer:    mail.NewFromConfig(cfg),
		Events:    events,
		EventLog:  events,
	})

	// No WriteTimeout: generation responses can take most of the route's
	// 90s window.
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
