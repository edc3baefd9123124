package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/areena/cache"
	"github.com/s0up4200/areena/config"
)

// cacheCmd groups cache maintenance commands
var cacheCmd = &cobra.Command{
	Use:               "cache",
	Short:             "Manage the response cache",
	PersistentPreRunE: initializeCache,
}

// cacheClearCmd represents the cache clear command
var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached response",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if err := store.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	logger.Info().Str("dir", cfg.Cache.Dir).Str("backend", cfg.Cache.Backend).Msg("Cache cleared")
	fmt.Fprintln(cmd.OutOrStdout(), "Cache cleared.")
	return nil
}

// initializeCache opens the configured store without requiring API credentials
func initializeCache(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.LoadLocal(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger = setupLogger(cfg.Logging, verbosity, quiet)

	store, err = cache.Open(cfg.Cache.Backend, cfg.Cache.Dir, time.Now)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	return nil
}
