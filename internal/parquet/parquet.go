// Package parquet provides data structures and functions for exporting
// persisted forecast snapshots to Parquet files using
// github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/flowsignal/flowcast/schema"
)

// ForecastSnapshot represents one persisted feature forecast entry.
// This struct maps to the flowcast_feature_forecasts database table joined
// with its feature row.
type ForecastSnapshot struct {
	// FeatureID is the feature the forecast belongs to
	FeatureID int64 `parquet:"feature_id,snappy"`

	// FeatureName is the display name of the feature
	FeatureName string `parquet:"feature_name,snappy"`

	// PortfolioID references the portfolio that owns the feature
	PortfolioID int64 `parquet:"portfolio_id,snappy"`

	// ForecastTime is when the forecast was produced (stored as TIMESTAMP with nanosecond precision)
	ForecastTime time.Time `parquet:"forecast_time,snappy"`

	// Percentile is the confidence level of this entry
	Percentile int32 `parquet:"percentile,snappy"`

	// ExpectedDate is the forecast completion date at this percentile
	ExpectedDate time.Time `parquet:"expected_date,snappy"`
}

// WriteForecastSnapshotsParquet writes a slice of ForecastSnapshot structs
// to a Parquet file. The schema is derived from the struct tags.
func WriteForecastSnapshotsParquet(data []ForecastSnapshot, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[ForecastSnapshot](file)
	defer func() { _ = writer.Close() }()

	if _, err := writer.Write(data); err != nil {
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}

	return nil
}

// ConvertForecastSnapshotRecords converts schema.ForecastSnapshotRecord to
// ForecastSnapshot for Parquet export.
func ConvertForecastSnapshotRecords(records []schema.ForecastSnapshotRecord) []ForecastSnapshot {
	result := make([]ForecastSnapshot, len(records))
	for i, record := range records {
		result[i] = ForecastSnapshot{
			FeatureID:    record.FeatureID,
			FeatureName:  record.FeatureName,
			PortfolioID:  record.PortfolioID,
			ForecastTime: record.ForecastTime,
			Percentile:   int32(record.Percentile),
			ExpectedDate: record.ExpectedDate,
		}
	}
	return result
}
