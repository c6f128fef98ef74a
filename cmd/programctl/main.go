// Command programctl runs maintenance tasks against the program builder store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "programctl",
	Short: "Maintenance tool for the program builder store",
	Long: `programctl shares the server's configuration (config.yaml plus
environment variables) and talks to the same backend.

Available subcommands:
  indexes - Create the MongoDB indexes
  seed    - Load exercise library and team files
  show    - Print a team's assigned program structure as JSON`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config", ".", "directory containing config.yaml")
	rootCmd.AddCommand(indexesCmd, seedCmd, showCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
