package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/internal/iostore"
	"github.com/flowsignal/flowcast/schema"
)

// storeSetup loads minimal configuration needed for store operations.
// This is used by commands that need store access without full shared setup.
func storeSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	// Get store-related config values
	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	// Basic validation for database backends
	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// Get output-related config values (used by export command)
	cfg.OutputFile = viper.GetString("output-file")
	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	store, err := iostore.NewStore(backend, connStr)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	services.store = store

	return nil
}

// storeSetupWrapper wraps storeSetup to provide PreRunE for store commands.
func storeSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeSetup()
}

// storeMigrateSetup loads minimal configuration needed for migrate operations.
// It does NOT open the store or create tables, allowing migrations to run on
// a fresh database.
func storeMigrateSetup() error {
	if err := loadConfigFile(); err != nil {
		return err
	}

	backend := schema.DatabaseBackend(viper.GetString("store-backend"))
	connStr := viper.GetString("store-db-connect")

	if err := contract.ValidateDatabaseConnectionString(backend, connStr); err != nil {
		return err
	}

	// For SQLite backend with empty connection string, use default path
	if backend == schema.SQLiteBackend && connStr == "" {
		connStr = contract.GetStoreDBFilePath()
	}

	cfg.StoreBackend = backend
	cfg.StoreDBConnect = connStr

	return nil
}

// storeMigrateSetupWrapper wraps storeMigrateSetup to provide PreRunE for the migrate command.
func storeMigrateSetupWrapper(_ *cobra.Command, _ []string) error {
	return storeMigrateSetup()
}

// storeCmd focused on persistent store management.
//
// Note: Store subcommands use minimal initialization (storeSetup) instead of
// the full sharedSetup used by forecasting commands. This avoids forecast
// input processing for simple store operations.
var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the persistent work tracking store",
	Long: `Manage the store that holds teams, portfolios, work items and forecasts.

Supported backends: SQLite (default), MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show row counts and connection info
  seed    - Load a small demo data set
  clear   - Remove all stored data
  migrate - Run database schema migrations
  export  - Export persisted forecasts to Parquet

Examples:
  # Check store contents
  flowcast store status

  # Try the tool without a tracker integration
  flowcast store seed
  flowcast forecast --team 1 --remaining 12`,
}

// storeStatusCmd shows store status.
var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display store row counts and connection details",
	Long: `Show detailed information about the persistent store.

Displays:
- Backend type and connection status
- Team, portfolio, work item and feature counts
- When forecasts were last persisted

Examples:
  # Check store status
  flowcast store status`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := services.store.GetStatus(rootCtx)
		if err != nil {
			contract.LogFatal("Failed to get store status", err)
		}
		iostore.PrintStoreStatus(status)
	},
}

// storeClearCmd clears the store.
var storeClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all stored teams, work items and forecasts",
	Long: `Delete all rows from the configured backend.

WARNING: This action cannot be undone. Consider exporting forecasts first.

Examples:
  # Export before clearing
  flowcast store export --output-file backup
  flowcast store clear`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := services.store.Clear(rootCtx); err != nil {
			contract.LogFatal("Failed to clear store", err)
		}
		fmt.Println("Store cleared successfully.")
	},
}

// storeSeedCmd loads demo data into the store.
var storeSeedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a demo data set of teams, portfolios and work items",
	Long: `Populate the store with two demo teams and one portfolio of features.

The generated throughput history is deterministic, so seeded forecasts are
reproducible across machines. Existing rows with the same IDs are replaced.

Examples:
  # Seed and forecast
  flowcast store seed
  flowcast forecast --team 1 --remaining 12`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.Seed(rootCtx, services.store); err != nil {
			contract.LogFatal("Failed to seed store", err)
		}
		fmt.Println("Store seeded successfully.")
	},
}

// storeMigrateCmd runs database migrations for the store.
var storeMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Manage database schema versions for the persistent store.

By default, migrates to the latest version. Use --target-version for specific
versions.

Examples:
  # Migrate to latest version (default)
  flowcast store migrate

  # Rollback to initial state
  flowcast store migrate --target-version 0`,
	PreRunE: storeMigrateSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iostore.Migrate(cfg.StoreBackend, cfg.StoreDBConnect, targetVersion); err != nil {
			contract.LogFatal("Failed to run migrations", err)
		}
	},
}

// storeExportCmd exports persisted forecasts to Parquet files.
var storeExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export persisted forecasts to Parquet for analytics",
	Long: `Export all persisted feature forecasts to Parquet format.

Parquet output can be queried directly with DuckDB, pandas or Apache Spark,
which makes it easy to track forecast drift over time.

Requires: --output-file parameter

Examples:
  # Export all persisted forecasts
  flowcast store export --output-file forecasts

  # Query with DuckDB
  duckdb -c "SELECT * FROM read_parquet('forecasts.forecasts.parquet') LIMIT 10"`,
	PreRunE: storeSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iostore.ExecuteExport(rootCtx, services.store, cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export forecasts", err)
		}
	},
}
