package main

import (
	"github.com/spf13/cobra"

	"github.com/xavierca1/ligue-crm/internal/infra/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *database.Migrator) error { return m.Up() })
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the most recent migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *database.Migrator) error { return m.Down() })
	},
}

func init() {
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd)
}

func withMigrator(fn func(*database.Migrator) error) error {
	db, err := database.NewDBConnection(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	m, err := database.NewMigrator(db, log)
	if err != nil {
		return err
	}
	return fn(m)
}
