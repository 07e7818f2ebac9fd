package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/bizconsole/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrationsDir string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the postgres schema",
	Long: `Apply, roll back and inspect the embedded SQL migrations.

SQLite databases are migrated with AutoMigrate when the server starts, so
every subcommand except create requires database.driver = "postgres".`,
}

// withMigrator opens the configured postgres database and runs fn
func withMigrator(fn func(m *migration.Migrator, log *zap.Logger) error) error {
	cfg, log, err := loadConfig()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.Database.Driver != "postgres" {
		return fmt.Errorf("migrations target postgres, database.driver is %q", cfg.Database.Driver)
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	m, err := migration.New(db, log)
	if err != nil {
		_ = db.Close()
		return err
	}
	// closing the migrator closes db
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()
	return fn(m, log)
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
			return m.Up()
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (all when steps is omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		steps := 0
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil || n <= 0 {
				return fmt.Errorf("steps must be a positive integer, got %q", args[0])
			}
			steps = n
		}
		return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
			return m.Down(steps)
		})
	},
}

var migrateVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
			version, dirty, err := m.Version()
			if err != nil {
				return err
			}
			suffix := ""
			if dirty {
				suffix = " (dirty)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d%s\n", version, suffix)
			return nil
		})
	},
}

var migrateForceCmd = &cobra.Command{
	Use:   "force <version>",
	Short: "Set the schema version without running migrations",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return withMigrator(func(m *migration.Migrator, _ *zap.Logger) error {
			return m.Force(version)
		})
	},
}

var migrateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Write an empty up/down migration pair",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mf, err := migration.CreateMigration(migrationsDir, args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, mf.UpPath)
		fmt.Fprintln(out, mf.DownPath)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateVersionCmd, migrateForceCmd, migrateCreateCmd)
	migrateCreateCmd.Flags().StringVar(&migrationsDir, "dir", "internal/infrastructure/migration/sql", "Migrations directory")
}
