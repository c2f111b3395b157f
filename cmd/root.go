package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/flowsignal/flowcast/core"
	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/internal/iostore"
	"github.com/flowsignal/flowcast/internal/logging"
	"github.com/flowsignal/flowcast/internal/outwriter"
	"github.com/flowsignal/flowcast/internal/update"
	"github.com/flowsignal/flowcast/schema"
)

// All linker flags will be set by goreleaser infra at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCtx is the root context for all operations.
var rootCtx = context.Background()

// cfg will hold the validated, final configuration.
var cfg = &contract.Config{}

// input holds the raw, unvalidated configuration from all sources (file, env, flags).
// Viper will unmarshal into this struct.
var input = &contract.ConfigRawInput{}

// services holds the wired engines shared by all subcommands.
var services struct {
	store     *iostore.SQLStore
	team      *core.TeamMetrics
	portfolio *core.PortfolioMetrics
	forecasts *core.ForecastService
	updates   *update.Service
	writer    *outwriter.OutWriter
}

// rootCmd is the command-line entrypoint for all other commands.
var rootCmd = &cobra.Command{
	Use:                "flowcast",
	Short:              "Forecast delivery dates and throughput with Monte Carlo simulation.",
	Long:               `Flowcast turns a team's throughput history into probabilistic delivery forecasts.`,
	Version:            version,
	SilenceErrors:      true,
	SilenceUsage:       true,
	DisableSuggestions: true,
	Run: func(cmd *cobra.Command, _ []string) {
		_ = cmd.Help()
	},
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	// Check if a specific config file is provided
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		// Set config file name and paths
		viper.SetConfigName(".flowcast") // Name of config file (without extension)
		viper.SetConfigType("yaml")      // We'll use YAML format
		viper.AddConfigPath(".")         // Look in the current directory
		viper.AddConfigPath("$HOME")     // Look in the home directory
	}

	// Set environment variable prefix
	viper.SetEnvPrefix("FLOWCAST")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // Read in environment variables that match

	// Set defaults in Viper
	viper.SetDefault("trials", contract.DefaultTrials)
	viper.SetDefault("history-days", contract.DefaultHistoryDays)
	viper.SetDefault("workers", contract.DefaultWorkers)
	viper.SetDefault("seed", 0)
	viper.SetDefault("precision", contract.DefaultPrecision)
	viper.SetDefault("output", schema.TextOut)
	viper.SetDefault("store-backend", schema.SQLiteBackend)
	viper.SetDefault("store-db-connect", "")
	viper.SetDefault("color", "yes")
}

// sharedSetup unmarshals config, runs validation, and wires the engines.
func sharedSetup(ctx context.Context, _ *cobra.Command, _ []string) error {
	// 1. Read config file. This merges defaults, file, env, and flags.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found, which is fine; we'll use defaults/env/flags.
	}

	// 2. Unmarshal all resolved values from Viper into our raw input struct.
	if err := viper.Unmarshal(input); err != nil {
		return fmt.Errorf("unable to unmarshal config: %w", err)
	}

	// 3. Run all validation and complex parsing.
	// This function now populates the global 'cfg' from 'input'.
	if err := contract.ProcessAndValidate(cfg, input); err != nil {
		return err
	}

	logging.Init(cfg.Verbose)

	// 4. Initialize the persistence layer with the validated config.
	store, err := iostore.NewStore(cfg.StoreBackend, cfg.StoreDBConnect)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	services.store = store

	// 5. Wire the engines on top of the store.
	forecaster := core.NewForecaster(cfg.Trials, cfg.Seed)
	services.team = core.NewTeamMetrics(store, forecaster)
	services.portfolio = core.NewPortfolioMetrics(store, forecaster)
	services.forecasts = core.NewForecastService(store, services.team, services.portfolio, forecaster, cfg.Workers)
	services.updates = update.NewService(ctx, update.NewRegistry(), services.team, services.portfolio, services.forecasts)
	services.writer = outwriter.NewOutWriter()

	return nil
}

// sharedSetupWrapper wraps sharedSetup to provide context for Cobra's PreRunE.
func sharedSetupWrapper(cmd *cobra.Command, args []string) error {
	return sharedSetup(rootCtx, cmd, args)
}

// loadConfigFile handles config file loading logic common to all setup functions.
func loadConfigFile() error {
	// Handle config file
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".flowcast")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
	}

	// Load config file if present
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return nil
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if services.updates != nil {
			services.updates.Wait()
		}
		if services.store != nil {
			_ = services.store.Close()
		}
	}()
	return rootCmd.Execute()
}
