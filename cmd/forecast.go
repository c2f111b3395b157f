package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flowsignal/flowcast/core"
	"github.com/flowsignal/flowcast/internal/contract"
)

// forecastCmd runs a manual Monte Carlo forecast for a team.
var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Run a Monte Carlo forecast for a team.",
	Long: `Resample a team's daily throughput history to answer delivery questions.

Supports three questions, depending on the inputs given:
- How many items will finish by a target date? (--target-date or --days)
- When will a number of remaining items be done? (--remaining)
- How likely is it that the remaining items finish by the target date? (both)

Forecasts are reported at the 50th, 70th, 85th and 95th percentile. Higher
percentiles are more conservative: an 85th percentile date is one the team
hits in 85% of simulated futures.

Examples:
  # When will 12 remaining items be done?
  flowcast forecast --team 1 --remaining 12

  # How many items will finish in the next two weeks?
  flowcast forecast --team 1 --days 14

  # How likely is hitting the release date with 20 items left?
  flowcast forecast --team 1 --remaining 20 --target-date 2026-10-30

  # Reproducible forecast for CI
  flowcast forecast --team 1 --remaining 12 --seed 42 --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.TeamID <= 0 {
			return errors.New("--team is required for the forecast command")
		}

		var remaining *int
		if cfg.RemainingItems > 0 {
			remaining = &cfg.RemainingItems
		}

		targetDate := cfg.TargetDate
		if targetDate == nil && cfg.Days > 0 {
			t := core.Today().AddDate(0, 0, cfg.Days)
			targetDate = &t
		}
		if remaining == nil && targetDate == nil {
			return errors.New("at least one of --remaining, --days or --target-date is required")
		}

		result, err := services.forecasts.RunManualForecast(rootCtx, cfg.TeamID, remaining, targetDate)
		if err != nil {
			contract.LogFatal("Cannot run forecast", err)
		}
		return services.writer.WriteForecast(result, cfg)
	},
}
