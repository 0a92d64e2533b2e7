package main

import (
	"fmt"
	"os"

	"clinic/cmd/migration/initialize"
	"clinic/cmd/migration/seed"
	"clinic/config"
	"clinic/internal/database"
	"clinic/internal/logger"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migration",
		Short: "Manage the clinic database schema and data",
	}

	rootCmd.AddCommand(upCmd())
	rootCmd.AddCommand(downCmd())
	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(seedCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func upCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db database.DB, config config.Config, log logger.Logger) error {
				return initialize.InitializeTables(db, config, log)
			})
		},
	}
}

func downCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back applied migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			steps, _ := cmd.Flags().GetInt("steps")
			return withDatabase(func(db database.DB, config config.Config, log logger.Logger) error {
				rolledBack, err := db.MigrateDown(steps)
				if err != nil {
					return err
				}
				log.Info("Rolled back migrations", "count", rolledBack)
				return nil
			})
		},
	}

	cmd.Flags().Int("steps", 1, "Number of migrations to roll back")
	return cmd
}

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which migrations are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db database.DB, config config.Config, log logger.Logger) error {
				statuses, err := db.MigrationStatus()
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				for _, status := range statuses {
					appliedAt := "pending"
					if status.AppliedAt != nil {
						appliedAt = status.AppliedAt.Format("2006-01-02 15:04:05")
					}
					fmt.Fprintf(out, "%-45s %s\n", status.ID, appliedAt)
				}
				return nil
			})
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Apply migrations and load development data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDatabase(func(db database.DB, config config.Config, log logger.Logger) error {
				if err := initialize.InitializeTables(db, config, log); err != nil {
					return err
				}
				return seed.Seed(db.SQL, config, log)
			})
		},
	}
}

func withDatabase(fn func(db database.DB, config config.Config, log logger.Logger) error) error {
	config, err := config.InitConfig()
	if err != nil {
		return err
	}

	logger.Setup(config.Environment, config.LogLevel)
	log := logger.New("migration")

	db, err := database.New(config)
	if err != nil {
		return log.Err("failed to connect to database", err)
	}
	defer db.Close()

	return fn(db, config, log)
}
