package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/release-catalog/internal/service/synchronizer"
	"github.com/oshokin/release-catalog/internal/version"
)

var (
	// options collects the flag values passed to the synchronizer.
	options synchronizer.Options

	// rootCmd represents the base command for synchronizing the catalog.
	rootCmd = &cobra.Command{
		Use:   "release-catalog",
		Short: "Synchronize the release catalog with the upstream release feed.",
		Long: `Fetches every release from the upstream feed, hashes the platform archives of
releases that are not cataloged yet (testing releases are always re-hashed),
merges them into the catalog sorted by publish time and recomputes the latest
version of every channel.

The catalog file is rewritten only when its content changes.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			_, err := synchronizer.Run(ctx, &options)

			return err
		},
	}
)

// Execute runs the release-catalog CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", "", "path to configuration file (default release-catalog.yaml if present)")
	flags.StringVarP(&options.CatalogFile, "catalog", "f", "", "path to the catalog JSON file (overrides catalog_file)")
	flags.StringVarP(&options.LogLevel, "log-level", "l", "", "log level: debug, info, warn or error (overrides log_level)")
	flags.BoolVarP(&options.Progress, "progress", "p", false, "draw a progress bar on stderr")
	flags.BoolVarP(&options.DryRun, "dry-run", "n", false, "compute the catalog without writing it")
}
