package schema

import "time"

// StoreStatus represents the health of the persistent store.
type StoreStatus struct {
	Backend        string    `json:"backend"`
	Connected      bool      `json:"connected"`
	Teams          int       `json:"teams"`
	Portfolios     int       `json:"portfolios"`
	WorkItems      int       `json:"work_items"`
	Features       int       `json:"features"`
	LastForecastAt time.Time `json:"last_forecast_at"`
}

// ForecastSnapshotRecord is a row exported from the persisted feature
// forecasts, used by the parquet/csv export path.
type ForecastSnapshotRecord struct {
	FeatureID    int64
	FeatureName  string
	PortfolioID  int64
	ForecastTime time.Time
	Percentile   int
	ExpectedDate time.Time
}
