package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/librarydb/librarydb/migrations"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := migrations.Up(cfg.DatabaseURL); err != nil {
				return errors.New(sanitizeError(err, cfg.DatabaseURL))
			}
			logger.Info("migrations applied", "database_url", redactURL(cfg.DatabaseURL))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back all migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if err := migrations.Down(cfg.DatabaseURL); err != nil {
				return errors.New(sanitizeError(err, cfg.DatabaseURL))
			}
			logger.Info("migrations rolled back", "database_url", redactURL(cfg.DatabaseURL))
			return nil
		},
	})

	return cmd
}
