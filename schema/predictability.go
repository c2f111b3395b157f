package schema

// BacktestOutcome records one back-tested window: the forecast claim at the
// primary percentile and what actually happened in that window.
type BacktestOutcome struct {
	Run      int  `json:"run"`
	Forecast int  `json:"forecast"`
	Actual   int  `json:"actual"`
	Hit      bool `json:"hit"`
}

// ForecastPredictabilityScore measures forecast calibration: the fraction of
// back-tested windows where the actual outcome did not exceed the forecast's
// primary-percentile claim. Outcomes are ordered by ascending run index.
type ForecastPredictabilityScore struct {
	Percentiles         []PercentileValue `json:"percentiles"`
	PredictabilityScore float64           `json:"predictability_score"`
	ForecastResults     []BacktestOutcome `json:"forecast_results"`
}
