package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/flowsignal/flowcast/schema"
)

// Default values for configuration.
const (
	DefaultTrials      = 10000
	MaxTrials          = 1000000
	DefaultHistoryDays = 30
	MaxHistoryDays     = 3650
	DefaultPrecision   = 1
)

// DefaultWorkers is the default number of concurrent workers to use.
var DefaultWorkers = runtime.GOMAXPROCS(0)

// DateFormat is the calendar date representation used on flags and in output.
const DateFormat = "2006-01-02"

// Config holds the runtime configuration for the engines and commands.
// This struct remains the "final, validated" config.
type Config struct {
	TeamID      int64
	PortfolioID int64

	Trials      int
	HistoryDays int
	Workers     int
	Seed        int64 // 0 means reseed per run

	// Forecast inputs. A zero Days skips the how-many forecast and a
	// zero RemainingItems skips the when forecast.
	Days           int
	RemainingItems int
	TargetDate     *time.Time

	// Chart window. Nil bounds fall back to the entity baseline or the
	// trailing HistoryDays window.
	StartDate *time.Time
	EndDate   *time.Time

	// Metric selects the chart variant for team charts.
	Metric schema.ChartMetric

	Precision  int
	Output     schema.OutputMode
	OutputFile string
	Width      int // Terminal width override (0 = auto-detect)

	StoreBackend   schema.DatabaseBackend
	StoreDBConnect string // Please use env var as this is plaintext

	UseColors bool // Enable colored labels in table output
	Verbose   bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// --- Fields from rootCmd.PersistentFlags() ---
	Team           int64  `mapstructure:"team"`
	Portfolio      int64  `mapstructure:"portfolio"`
	Trials         int    `mapstructure:"trials"`
	HistoryDays    int    `mapstructure:"history-days"`
	Workers        int    `mapstructure:"workers"`
	Seed           int64  `mapstructure:"seed"`
	Precision      int    `mapstructure:"precision"`
	Output         string `mapstructure:"output"`
	OutputFile     string `mapstructure:"output-file"`
	Width          int    `mapstructure:"width"`
	StoreBackend   string `mapstructure:"store-backend"`
	StoreDBConnect string `mapstructure:"store-db-connect"`
	Color          string `mapstructure:"color"`
	Verbose        bool   `mapstructure:"verbose"`

	// --- Fields from forecastCmd.Flags() ---
	Days       int    `mapstructure:"days"`
	Remaining  int    `mapstructure:"remaining"`
	TargetDate string `mapstructure:"target-date"`

	// --- Fields from chartCmd / predictabilityCmd flags ---
	Start  string `mapstructure:"start"`
	End    string `mapstructure:"end"`
	Metric string `mapstructure:"metric"`
}

// Clone returns a copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.TargetDate != nil {
		t := *c.TargetDate
		clone.TargetDate = &t
	}
	if c.StartDate != nil {
		t := *c.StartDate
		clone.StartDate = &t
	}
	if c.EndDate != nil {
		t := *c.EndDate
		clone.EndDate = &t
	}
	return &clone
}

// ProcessAndValidate performs all parsing and validation on the raw inputs
// and updates the final Config struct.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateSimpleInputs(cfg, input); err != nil {
		return err
	}
	if err := processForecastInputs(cfg, input); err != nil {
		return err
	}
	if err := processWindow(cfg, input); err != nil {
		return err
	}
	return validateBackendConfig(cfg, input)
}

// validateSimpleInputs processes and validates all non-date fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.TeamID = input.Team
	cfg.PortfolioID = input.Portfolio
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.Seed = input.Seed
	cfg.Verbose = input.Verbose

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	if input.Trials <= 0 || input.Trials > MaxTrials {
		return fmt.Errorf("trials must be greater than 0 and cannot exceed %d (received %d)", MaxTrials, input.Trials)
	}
	cfg.Trials = input.Trials

	if input.HistoryDays <= 0 || input.HistoryDays > MaxHistoryDays {
		return fmt.Errorf("history-days must be greater than 0 and cannot exceed %d (received %d)", MaxHistoryDays, input.HistoryDays)
	}
	cfg.HistoryDays = input.HistoryDays

	if input.Workers <= 0 {
		return fmt.Errorf("workers must be greater than 0 (received %d)", input.Workers)
	}
	cfg.Workers = input.Workers

	if input.Precision < 0 || input.Precision > 2 {
		return fmt.Errorf("precision must be between 0 and 2 (received %d)", input.Precision)
	}
	cfg.Precision = input.Precision

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	return nil
}

// processForecastInputs validates the how-many, when and likelihood inputs.
func processForecastInputs(cfg *Config, input *ConfigRawInput) error {
	if input.Days < 0 {
		return fmt.Errorf("days cannot be negative (received %d)", input.Days)
	}
	cfg.Days = input.Days

	if input.Remaining < 0 {
		return fmt.Errorf("remaining cannot be negative (received %d)", input.Remaining)
	}
	cfg.RemainingItems = input.Remaining

	if input.TargetDate != "" {
		t, err := time.Parse(DateFormat, input.TargetDate)
		if err != nil {
			return fmt.Errorf("invalid target date '%s'. Expected %s: %w", input.TargetDate, DateFormat, err)
		}
		cfg.TargetDate = &t
	}

	return nil
}

// processWindow parses the optional chart window bounds.
func processWindow(cfg *Config, input *ConfigRawInput) error {
	if input.Start != "" {
		t, err := time.Parse(DateFormat, input.Start)
		if err != nil {
			return fmt.Errorf("invalid start date '%s'. Expected %s: %w", input.Start, DateFormat, err)
		}
		cfg.StartDate = &t
	}
	if input.End != "" {
		t, err := time.Parse(DateFormat, input.End)
		if err != nil {
			return fmt.Errorf("invalid end date '%s'. Expected %s: %w", input.End, DateFormat, err)
		}
		cfg.EndDate = &t
	}

	if cfg.StartDate != nil && cfg.EndDate != nil && cfg.StartDate.After(*cfg.EndDate) {
		return fmt.Errorf("start date (%s) cannot be after end date (%s)",
			cfg.StartDate.Format(DateFormat), cfg.EndDate.Format(DateFormat))
	}

	cfg.Metric = schema.ThroughputMetric
	if input.Metric != "" {
		cfg.Metric = schema.ChartMetric(strings.ToLower(input.Metric))
		if _, ok := schema.ValidChartMetrics[cfg.Metric]; !ok {
			return fmt.Errorf("invalid chart metric '%s'. must be throughput, wip, cycletime", input.Metric)
		}
	}

	return nil
}

// validateBackendConfig validates the store backend configuration.
func validateBackendConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.StoreBackend = schema.DatabaseBackend(strings.ToLower(input.StoreBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.StoreBackend]; !ok {
		return fmt.Errorf("invalid store backend '%s'. must be sqlite, mysql, postgresql, none", input.StoreBackend)
	}
	cfg.StoreDBConnect = input.StoreDBConnect
	return ValidateDatabaseConnectionString(cfg.StoreBackend, cfg.StoreDBConnect)
}

// ValidateDatabaseConnectionString validates the format of database connection
// strings for MySQL and PostgreSQL backends.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend, schema.NoneBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("store-db-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// GetStoreDBFilePath returns the path to the SQLite DB file for the store.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".flowcast.db"
	}
	return filepath.Join(homeDir, ".flowcast.db")
}
