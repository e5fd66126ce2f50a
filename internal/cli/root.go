package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var addrFlag string

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envAddr := os.Getenv("HTTP_ADDR")
	if envAddr == "" {
		envAddr = ":8080"
	}

	cmd := &cobra.Command{
		Use:   "quizforged",
		Short: "Adaptive quiz service backed by a ranked LLM provider chain",
	}
	cmd.PersistentFlags().StringVar(&addrFlag, "addr", envAddr, "address to listen on")
	cmd.AddCommand(NewServeCmd(&addrFlag))
	cmd.AddCommand(NewMigrateCmd())
	return cmd
}
