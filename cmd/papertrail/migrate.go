package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vnykmshr/papertrail/internal/config"
	"github.com/vnykmshr/papertrail/internal/platform/logger"
	"github.com/vnykmshr/papertrail/internal/platform/postgres"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.Database.URL == "" {
				return errors.New("no database configured, set PAPERTRAIL_DATABASE_URL")
			}

			log := logger.Setup(cfg.Server)

			db, err := postgres.Open(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			defer func() { _ = db.Close() }()

			if err := postgres.Migrate(db); err != nil {
				return err
			}

			log.Info("migrations applied")
			return nil
		},
	}
}
