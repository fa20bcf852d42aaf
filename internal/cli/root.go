// Package cli implements the gitexctl maintenance commands: loading
// exhibitor data and reconciling the embedding index.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/elguarir/gitex-assistant/internal/config"
	"github.com/elguarir/gitex-assistant/internal/db"
	dbredis "github.com/elguarir/gitex-assistant/internal/db/redis"
	logpkg "github.com/elguarir/gitex-assistant/internal/logger"
	"github.com/elguarir/gitex-assistant/internal/version"
)

var (
	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "gitexctl",
	Short: "Maintenance tooling for the exhibitor assistant",
	Long: `gitexctl manages the exhibitor assistant's data plane.

Example usage:
  gitexctl load exhibitors.json   # Ingest exhibitor profiles
  gitexctl reconcile              # Embed exhibitors missing from the index`,
	Version:       fmt.Sprintf("%s (%s)", version.Version, version.Commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		env := config.GetEnv()

		var err error
		cfg, err = config.Load(env)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		logger, err = logpkg.New(env, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("create logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// connectStore opens the database and waits for readiness.
func connectStore(ctx context.Context) (db.Store, error) {
	store, err := dbredis.NewStore(dbredis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		store.Close()
		return nil, fmt.Errorf("database not ready: %w", err)
	}
	return store, nil
}
