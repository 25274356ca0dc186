package main

import (
	"context"
	"fmt"
	"time"

	"github.com/amabee/property-rental/internal/config"
	"github.com/amabee/property-rental/internal/database"
	"github.com/amabee/property-rental/internal/logger"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var timeout time.Duration
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, serviceName)
			if err != nil {
				return err
			}
			defer log.Sync()

			db, err := database.NewPostgresDB(&cfg.Database)
			if err != nil {
				return fmt.Errorf("cannot connect to database: %w", err)
			}
			defer database.Close(db)

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()
			if err := database.Migrate(ctx, db, log); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Migration completed successfully")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "migration timeout")
	return cmd
}
