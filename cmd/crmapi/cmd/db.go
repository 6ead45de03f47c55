package cmd

import (
	"context"
	"fmt"

	"github.com/hearthstone-labs/crm/internal/db/bunx"
	"github.com/hearthstone-labs/crm/internal/logging"
	"github.com/hearthstone-labs/crm/internal/migrations"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for managing database migrations and schema.`,
}

// dbLogger is the logger of the db subcommands; it follows --debug and log_format
// like the server.
func dbLogger(cmd *cobra.Command) *logrus.Logger {
	return logging.NewWithOutput(cmd.ErrOrStderr(), cfg.LogFormat, cfg.Debug)
}

// withMigrator opens the database, runs fn with a migrator and closes the database.
func withMigrator(ctx context.Context, fn func(ctx context.Context, m *migrate.Migrator) error) error {
	db, err := bunx.NewDB(ctx, cfg.DatabaseURL, cfg.MaxDBConnections)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer bunx.Close(db)

	return fn(ctx, migrate.NewMigrator(db, migrations.Migrations))
}

// withLock runs fn while holding the migration lock.
func withLock(ctx context.Context, log *logrus.Logger, m *migrate.Migrator, fn func() error) error {
	if err := m.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := m.Unlock(ctx); err != nil {
			log.WithError(err).Warn("failed to release migration lock")
		}
	}()
	return fn()
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize migration tables",
	Long:  `Creates the migration tracking tables in the database. Run this once during initial setup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := dbLogger(cmd)
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Init(ctx); err != nil {
				return fmt.Errorf("failed to initialize migrator: %w", err)
			}
			log.Info("migration tables initialized")
			return nil
		})
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
	Long:  `Applies all pending migrations to the database with locking to prevent concurrent migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := dbLogger(cmd)
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Init(ctx); err != nil {
				return fmt.Errorf("failed to initialize migrator: %w", err)
			}
			return withLock(ctx, log, m, func() error {
				group, err := m.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				if group.IsZero() {
					log.Info("no new migrations to apply")
				} else {
					log.WithField("group", group.ID).Info("applied migration group")
				}
				return nil
			})
		})
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	Long:  `Displays the current migration status and pending migrations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := dbLogger(cmd)
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrate.Migrator) error {
			ms, err := m.MigrationsWithStatus(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			for _, mig := range ms {
				entry := log.WithFields(logrus.Fields{"migration": mig.Name, "comment": mig.Comment})
				if mig.GroupID > 0 {
					entry.WithField("group", mig.GroupID).Info("applied")
				} else {
					entry.Info("pending")
				}
			}
			return nil
		})
	},
}

var dbRollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Rollback last migration group",
	Long:  `Rolls back the most recently applied migration group with locking to prevent concurrent operations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := dbLogger(cmd)
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrate.Migrator) error {
			return withLock(ctx, log, m, func() error {
				group, err := m.Rollback(ctx)
				if err != nil {
					return fmt.Errorf("rollback failed: %w", err)
				}
				if group.IsZero() {
					log.Info("no migrations to roll back")
				} else {
					log.WithField("group", group.ID).Info("rolled back migration group")
				}
				return nil
			})
		})
	},
}

var dbLockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Manually acquire migration lock",
	Long:  `Acquires the migration lock. Useful for debugging or maintenance operations.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := dbLogger(cmd)
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Lock(ctx); err != nil {
				return fmt.Errorf("failed to acquire migration lock: %w", err)
			}
			log.Info("migration lock acquired; run 'db unlock' when finished")
			return nil
		})
	},
}

var dbUnlockCmd = &cobra.Command{
	Use:   "unlock",
	Short: "Force release migration lock",
	Long:  `Force releases the migration lock. Use this if a migration crashed while holding the lock.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := dbLogger(cmd)
		return withMigrator(cmd.Context(), func(ctx context.Context, m *migrate.Migrator) error {
			if err := m.Unlock(ctx); err != nil {
				return fmt.Errorf("failed to release migration lock: %w", err)
			}
			log.Info("migration lock released")
			return nil
		})
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbRollbackCmd)
	dbCmd.AddCommand(dbLockCmd)
	dbCmd.AddCommand(dbUnlockCmd)
}
