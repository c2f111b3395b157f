// Package cmd defines the command-line interface for flowcast.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(chartCmd)
	rootCmd.AddCommand(percentilesCmd)
	rootCmd.AddCommand(predictabilityCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(storeCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the update subcommands to the parent update command
	updateCmd.AddCommand(updateTriggerCmd)
	updateCmd.AddCommand(updateStatusCmd)

	// Add the store subcommands to the parent store command
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeClearCmd)
	storeCmd.AddCommand(storeSeedCmd)
	storeCmd.AddCommand(storeMigrateCmd)
	storeCmd.AddCommand(storeExportCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().Int64P("team", "t", 0, "Team ID to operate on")
	rootCmd.PersistentFlags().Int64P("portfolio", "p", 0, "Portfolio ID to operate on")
	rootCmd.PersistentFlags().Int("trials", contract.DefaultTrials, "Number of Monte Carlo trials per forecast")
	rootCmd.PersistentFlags().Int("history-days", contract.DefaultHistoryDays, "Trailing throughput history window in days")
	rootCmd.PersistentFlags().Int("workers", contract.DefaultWorkers, "Number of concurrent workers")
	rootCmd.PersistentFlags().Int64("seed", 0, "Random seed for reproducible forecasts (0 = reseed per run)")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("width", 0, "Terminal width override (0 = auto-detect)")
	rootCmd.PersistentFlags().String("store-backend", string(schema.SQLiteBackend), "Store backend: sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("store-db-connect", "", "Database connection string for mysql/postgresql (e.g., user:pass@tcp(host:port)/dbname)")
	rootCmd.PersistentFlags().String("color", "yes", "Enable colored labels in output (yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// Bind all flags of forecastCmd to Viper
	forecastCmd.Flags().Int("days", 0, "Forecast horizon in days for a how-many forecast")
	forecastCmd.Flags().Int("remaining", 0, "Remaining item count for a when forecast")
	forecastCmd.Flags().String("target-date", "", "Target date (YYYY-MM-DD) for a how-many or likelihood forecast")
	if err := viper.BindPFlags(forecastCmd.Flags()); err != nil {
		contract.LogFatal("Error binding forecast flags", err)
	}

	// Bind the window flags shared by chart and predictability commands
	chartCmd.Flags().String("start", "", "Window start date (YYYY-MM-DD)")
	chartCmd.Flags().String("end", "", "Window end date (YYYY-MM-DD)")
	chartCmd.Flags().String("metric", string(schema.ThroughputMetric), "Team chart metric: throughput or wip or cycletime")
	if err := viper.BindPFlags(chartCmd.Flags()); err != nil {
		contract.LogFatal("Error binding chart flags", err)
	}

	// Bind all flags of storeMigrateCmd to Viper
	storeMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(storeMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding store migrate flags", err)
	}
}
