package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// percentilesCmd summarizes cycle time or feature size distributions.
var percentilesCmd = &cobra.Command{
	Use:   "percentiles",
	Short: "Show cycle time or feature size percentiles.",
	Long: `Summarize a distribution at the 50th, 70th, 85th and 95th percentile.

Works at two levels:
- Team cycle times (--team): days from start to close for items closed in
  the window
- Portfolio feature sizes (--portfolio): child item counts of sized features

Percentile values interpolate between observations, so they answer questions
like "85% of our items finish within N days" for service level expectations.

Examples:
  # Team cycle times over the default window
  flowcast percentiles --team 1

  # Cycle times for a specific quarter
  flowcast percentiles --team 1 --start 2026-04-01 --end 2026-06-30

  # Feature size distribution for right-sizing
  flowcast percentiles --portfolio 1`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		var (
			label  string
			values []schema.PercentileValue
			err    error
		)
		switch {
		case cfg.TeamID > 0:
			label = "cycle_time_days"
			values, err = services.team.CycleTimePercentiles(rootCtx, cfg.TeamID, cfg.StartDate, cfg.EndDate)
		case cfg.PortfolioID > 0:
			label = "feature_size_items"
			values, err = services.portfolio.SizePercentiles(rootCtx, cfg.PortfolioID)
		default:
			return errors.New("either --team or --portfolio is required for the percentiles command")
		}
		if err != nil {
			contract.LogFatal("Cannot compute percentiles", err)
		}
		return services.writer.WritePercentiles(label, values, cfg)
	},
}
