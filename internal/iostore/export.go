package iostore

import (
	"context"
	"errors"
	"fmt"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/internal/parquet"
)

// ExecuteExport performs the actual export of persisted forecast snapshots
// to a Parquet file.
func ExecuteExport(ctx context.Context, store contract.Store, outputFile string) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}

	status, err := store.GetStatus(ctx)
	if err != nil {
		return fmt.Errorf("failed to get store status: %w", err)
	}

	fmt.Printf("Exporting data from %s backend...\n", status.Backend)
	fmt.Printf("Teams: %d, portfolios: %d, features: %d\n",
		status.Teams, status.Portfolios, status.Features)

	snapshots, err := store.ForecastSnapshots(ctx)
	if err != nil {
		return fmt.Errorf("failed to retrieve forecast snapshots: %w", err)
	}
	if len(snapshots) == 0 {
		return errors.New("no forecast data found to export")
	}

	outputPath := outputFile + ".forecasts.parquet"
	if err := parquet.WriteForecastSnapshotsParquet(parquet.ConvertForecastSnapshotRecords(snapshots), outputPath); err != nil {
		return fmt.Errorf("failed to write forecast snapshots: %w", err)
	}
	fmt.Printf("Exported %d forecast rows to: %s\n", len(snapshots), outputPath)

	return nil
}
