package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/flowsignal/flowcast/internal/contract"
)

// predictabilityCmd back-tests forecasts against actual throughput.
var predictabilityCmd = &cobra.Command{
	Use:   "predictability",
	Short: "Score how well forecasts match a team's actual delivery.",
	Long: `Back-test weekly forecasts against what the team actually delivered.

Splits the throughput history into trailing one-week windows. For each window
a forecast is trained on all preceding data and its 85th percentile claim is
compared against the window's actual throughput. The score is the fraction of
windows where the team met or beat the claim.

Scores near 85% indicate well calibrated forecasts. Much lower scores mean
forecasts are overpromising; much higher ones mean they are overly cautious.

Requires at least two weeks of history.

Examples:
  # Score the default history window
  flowcast predictability --team 1

  # Score a longer period
  flowcast predictability --team 1 --start 2026-01-01 --end 2026-06-30`,
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		if cfg.TeamID <= 0 {
			return errors.New("--team is required for the predictability command")
		}
		score, err := services.team.Predictability(rootCtx, cfg.TeamID, cfg.StartDate, cfg.EndDate)
		if err != nil {
			contract.LogFatal("Cannot compute predictability", err)
		}
		return services.writer.WritePredictability(score, cfg)
	},
}
