package cli

import (
	"context"
	"log"

	"github.com/spf13/cobra"

	"github.com/quizforge/quizforge/internal/config"
	"github.com/quizforge/quizforge/internal/db"
)

// NewMigrateCmd applies the schema without starting the server. Useful for
// init containers and for provisioning Postgres before first boot.
func NewMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrations(cmd.Context())
		},
	}
}

func runMigrations(ctx context.Context) error {
	cfg := config.FromEnv()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return err
	}
	defer dbh.Close()

	if err := db.EnsureSchema(ctx, dbh, db.Driver(cfg.DBDriver)); err != nil {
		return err
	}
	log.Printf("schema ensured (driver=%s)", cfg.DBDriver)
	return nil
}
