package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/disputekit/disputekit-server/internal/database"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL records schema",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(r *database.MigrationRunner) error {
				return r.Up(cmd.Context())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the latest migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(r *database.MigrationRunner) error {
				return r.Down(cmd.Context())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrations(cmd, func(r *database.MigrationRunner) error {
				version, dirty, err := r.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

func withMigrations(cmd *cobra.Command, fn func(*database.MigrationRunner) error) error {
	manager, err := loadConfig()
	if err != nil {
		return err
	}

	runner, err := database.NewMigrationRunner(manager.GetDatabaseURL(), manager.GetConfig().Records.MigrationsPath, newLogger())
	if err != nil {
		return err
	}
	defer runner.Close()

	return fn(runner)
}
