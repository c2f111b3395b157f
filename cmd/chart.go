package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// chartCmd renders a process behaviour chart over throughput history.
var chartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Show a process behaviour chart (XmR) for throughput.",
	Long: `Compute natural process limits over daily throughput and flag special causes.

Works at two levels:
- Team charts (--team): daily throughput, work in progress (--metric wip) or
  per-item cycle times (--metric cycletime)
- Portfolio feature throughput (--portfolio): daily closed feature counts

The chart centers on the average with limits at 2.66 times the average moving
range. Points outside the limits and runs of eight or more points on one side
of the average are flagged as special causes worth investigating.

Teams with a frozen baseline window keep their limits fixed while new points
are judged against them.

Examples:
  # Chart a team's recent throughput
  flowcast chart --team 1

  # Chart an explicit window
  flowcast chart --team 1 --start 2026-06-01 --end 2026-08-31

  # Work-in-progress and cycle time variants
  flowcast chart --team 1 --metric wip
  flowcast chart --team 1 --metric cycletime

  # Portfolio-level feature completion chart
  flowcast chart --portfolio 1 --output json`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		var (
			chart schema.ProcessBehaviourChart
			err   error
		)
		switch {
		case cfg.TeamID > 0:
			switch cfg.Metric {
			case schema.WIPMetric:
				chart, err = services.team.WIPChart(rootCtx, cfg.TeamID, cfg.StartDate, cfg.EndDate)
			case schema.CycleTimeMetric:
				chart, err = services.team.CycleTimeChart(rootCtx, cfg.TeamID, cfg.StartDate, cfg.EndDate)
			default:
				chart, err = services.team.ThroughputChart(rootCtx, cfg.TeamID, cfg.StartDate, cfg.EndDate)
			}
		case cfg.PortfolioID > 0:
			chart, err = services.portfolio.FeatureChart(rootCtx, cfg.PortfolioID, cfg.StartDate, cfg.EndDate)
		default:
			return errors.New("either --team or --portfolio is required for the chart command")
		}
		if err != nil {
			contract.LogFatal("Cannot compute chart", err)
		}
		return services.writer.WriteChart(chart, cfg)
	},
}
