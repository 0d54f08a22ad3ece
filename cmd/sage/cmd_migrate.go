package main

import (
	"fmt"

	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/spf13/cobra"

	"github.com/Ramsey-B/sage/pkg/database"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger()
			ctx := cmd.Context()

			db, err := connectDatabase(ctx, logger)
			if err != nil {
				return fmt.Errorf("migrate: connecting to database: %w", err)
			}
			defer db.Close()

			driver, err := postgres.WithInstance(db.Unsafe().DB, &postgres.Config{})
			if err != nil {
				return fmt.Errorf("migrate: creating migration driver: %w", err)
			}

			service := database.NewMigrationService(logger, &database.MigrationConfig{
				MigrationFolderPath: cfg.DatabaseMigrationFolderPath,
				Version:             uint(cfg.DatabaseMigrationVersion),
				Force:               cfg.DatabaseMigrationForce,
			})
			return service.Migrate(cfg.DatabaseName, driver)
		},
	}
}
