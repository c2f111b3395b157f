package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowsignal/flowcast/schema"
)

// updateCmd groups the background refresh commands.
var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Trigger and inspect background data refreshes",
	Long: `Manage background refreshes of team metrics and portfolio forecasts.

Updates run asynchronously and are deduplicated per target: triggering an
update that is already queued or in progress is a no-op. The most recent
outcome for each target stays visible until the next trigger overwrites it.

Update kinds:
  team      - recompute a team's throughput metrics (--team)
  features  - recompute a portfolio's feature throughput (--portfolio)
  forecasts - re-forecast a portfolio's in-progress features (--portfolio)

Examples:
  # Refresh a team's metrics
  flowcast update trigger team --team 1

  # Re-forecast a portfolio
  flowcast update trigger forecasts --portfolio 1

  # Check what is running
  flowcast update status`,
}

// updateTriggerCmd queues a background update.
var updateTriggerCmd = &cobra.Command{
	Use:   "trigger [team|features|forecasts]",
	Short: "Queue a background refresh for a team or portfolio",
	Long: `Queue one background refresh and wait for it to finish.

The update type decides which ID flag applies: 'team' uses --team, while
'features' and 'forecasts' use --portfolio. A trigger for a target with an
update already active reports it without queueing a duplicate.`,
	Args:    cobra.ExactArgs(1),
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, args []string) error {
		updateType := schema.UpdateType(args[0])

		var id int64
		switch updateType {
		case schema.TeamUpdate:
			id = cfg.TeamID
			if id <= 0 {
				return errors.New("--team is required for team updates")
			}
		case schema.FeaturesUpdate, schema.ForecastsUpdate:
			id = cfg.PortfolioID
			if id <= 0 {
				return errors.New("--portfolio is required for features and forecasts updates")
			}
		default:
			return fmt.Errorf("unknown update type '%s'. must be team, features, forecasts", args[0])
		}

		if services.updates.Trigger(updateType, id) {
			fmt.Printf("Queued %s update for ID %d.\n", updateType, id)
		} else {
			fmt.Printf("An update for %s/%d is already active.\n", updateType, id)
		}
		return nil
	},
}

// updateStatusCmd shows the active updates.
var updateStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show whether background updates are active",
	PreRunE: sharedSetupWrapper,
	RunE: func(_ *cobra.Command, _ []string) error {
		return services.writer.WriteUpdateStatus(services.updates.Status(), services.updates.Active(), cfg)
	},
}
