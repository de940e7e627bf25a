package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	cacheDir      string
	repositoryURL string
	outputJSON    bool
	noProgress    bool
	debugLogs     bool
)

// Execute runs the root cobra command.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ideadep",
		Short: "Resolve and cache IDE platform distributions as build dependencies",
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", "ideadep.yaml", "Path to configuration file")
	cmd.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Cache root (defaults to IDEADEP_CACHE_DIR or the per-user cache)")
	cmd.PersistentFlags().StringVar(&repositoryURL, "repository", "", "Artifact repository base URL (overrides the configuration file)")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")
	cmd.PersistentFlags().BoolVar(&noProgress, "no-progress", false, "Disable interactive progress rendering")
	cmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging")

	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newLocalCmd())
	cmd.AddCommand(newExtrasCmd())
	cmd.AddCommand(newCacheCmd())

	return cmd
}
