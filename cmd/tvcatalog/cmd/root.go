// Package cmd implements the tvcatalog commands.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/voyagen/tvcatalog/internal/cache"
	"github.com/voyagen/tvcatalog/internal/config"
	"github.com/voyagen/tvcatalog/internal/logging"
	"github.com/voyagen/tvcatalog/internal/store"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tvcatalog",
	Short: "Manage a local IPTV channel catalog",
	Long: `tvcatalog keeps IPTV sources, channels, groups and settings in a local
SQLite database and lets you import playlists, browse and edit them.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		if cfgFile != "" {
			cfg, err = config.LoadFromFile(cfgFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("config: %w", err)
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			cfg.LogFormat = logFormat
		}
		logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cmd.ErrOrStderr()})
		return nil
	},
}

// Execute runs the root command. SIGINT and SIGTERM cancel its context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		return fmt.Errorf("executing root command: %w", err)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file (default: environment)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "log format (json, console)")

	rootCmd.AddCommand(
		migrateCmd,
		importCmd,
		searchCmd,
		sourcesCmd,
		favoriteCmd,
		settingsCmd,
		epgCmd,
		deleteDatabaseCmd,
	)
}

// openStore opens the configured database and wraps it with the Redis
// cache when REDIS_URL is set and reachable. The returned func closes both.
func openStore(ctx context.Context) (store.Store, func(), error) {
	log := logging.Component("store")
	db, err := store.Open(ctx, cfg.DatabasePath(), store.PoolOptions{
		Size:           cfg.PoolSize,
		AcquireTimeout: cfg.AcquireTimeout,
		Logger:         log,
	})
	if err != nil {
		return nil, nil, err
	}
	if cfg.RedisURL == "" {
		return db, func() { _ = db.Close() }, nil
	}

	rds, err := cache.New(cfg.RedisURL)
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := rds.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unreachable, caching disabled")
		_ = rds.Close()
		return db, func() { _ = db.Close() }, nil
	}
	closeAll := func() {
		_ = rds.Close()
		_ = db.Close()
	}
	return store.NewCachedStore(db, rds, logging.Component("cache")), closeAll, nil
}

// withStore runs fn against an open store and closes it afterwards.
func withStore(cmd *cobra.Command, fn func(ctx context.Context, s store.Store) error) error {
	ctx := cmd.Context()
	s, closeFn, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(ctx, s)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
