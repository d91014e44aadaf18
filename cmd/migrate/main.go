package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang-stock-watchlist/internal/analyzer/config"
	"golang-stock-watchlist/pkg/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/spf13/cobra"
)

var (
	configPath     string
	migrationsPath string
	downSteps      int
)

// migrator couples the migrate instance with the handle it owns.
type migrator struct {
	m   *migrate.Migrate
	db  *sql.DB
	log *logger.Logger
}

func openMigrator() (*migrator, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Logger.Level, "console")
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	if cfg.Storage.Backend != "postgres" {
		log.Warn("Storage backend is not postgres, migrations only affect the postgres snapshot table",
			logger.StringField("backend", cfg.Storage.Backend))
	}

	db, err := sql.Open("postgres", cfg.Database.URL())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+migrationsPath, cfg.Database.DBName, driver)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create migration instance: %w", err)
	}
	return &migrator{m: m, db: db, log: log}, nil
}

func (r *migrator) close() {
	if srcErr, dbErr := r.m.Close(); srcErr != nil || dbErr != nil {
		r.log.Warn("Failed to close migration", logger.Field("source_error", srcErr), logger.Field("database_error", dbErr))
	}
	r.db.Close()
}

func (r *migrator) reportVersion() {
	version, dirty, err := r.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		r.log.Info("No migration applied yet")
	case err != nil:
		r.log.Warn("Failed to read migration version", logger.ErrorField(err))
	default:
		r.log.Info("Current migration version", logger.IntField("version", int(version)), logger.Field("dirty", dirty))
	}
}

// withMigrator opens a migrator, runs fn and reports the resulting version.
func withMigrator(fn func(r *migrator) error) error {
	r, err := openMigrator()
	if err != nil {
		return err
	}
	defer r.close()

	if err := fn(r); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	r.reportVersion()
	return nil
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(r *migrator) error { return r.m.Up() })
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Revert applied migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		if downSteps <= 0 {
			return fmt.Errorf("--steps must be positive, got %d", downSteps)
		}
		return withMigrator(func(r *migrator) error { return r.m.Steps(-downSteps) })
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current migration version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(func(*migrator) error { return nil })
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Mark VERSION as applied and clear the dirty flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(func(r *migrator) error { return r.m.Force(version) })
	},
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "migrate",
		Short:        "Manage the postgres schema of the snapshot store",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	rootCmd.PersistentFlags().StringVarP(&migrationsPath, "path", "p", "migrations", "Directory holding the migration files")
	downCmd.Flags().IntVarP(&downSteps, "steps", "n", 1, "Number of migrations to revert")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migrate CLI: %s\n", err)
		os.Exit(1)
	}
}
