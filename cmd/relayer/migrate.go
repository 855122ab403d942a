package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"

	"github.com/chainsafe/lockmint-relayer/pkg/config"
	"github.com/chainsafe/lockmint-relayer/pkg/migrations/relayerdb"
	"github.com/chainsafe/lockmint-relayer/pkg/pgutil"
	mghelper "github.com/chainsafe/lockmint-relayer/pkg/pgutil/migrations"
)

var migrateCmd = &cobra.Command{
	Use:       fmt.Sprintf("migrate <%s>", strings.Join(mghelper.Commands, "|")),
	Short:     "Manage the relayer database schema",
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	ValidArgs: mghelper.Commands,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := config.NewLogger(cfg.Logging)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		ctx := cmd.Context()
		db, err := pgutil.ConnectDB(ctx, &cfg.Database)
		if err != nil {
			return err
		}
		defer db.Close()

		logger.Info("Running migrations for relayer database", zap.String("database", cfg.Database.Database))
		migrator := migrate.NewMigrator(db, relayerdb.Migrations)
		return mghelper.RunMigrations(ctx, migrator, logger, args[0])
	},
}
