package schema

import "time"

// PercentileValue pairs a percentile in [0,100] with a value from the
// underlying distribution. It is reused for cycle-time and size summaries.
type PercentileValue struct {
	Percentile int     `json:"percentile"`
	Value      float64 `json:"value"`
}

// HowManyEntry is a single "how many items in N days" forecast outcome.
type HowManyEntry struct {
	Percentile int `json:"percentile"`
	Items      int `json:"items"`
}

// HowManyForecast answers "how many items finish within the forecast
// horizon" at the fixed percentile set. An empty Entries slice means the
// forecast could not be produced (no history).
type HowManyForecast struct {
	Days    int            `json:"days"`
	Entries []HowManyEntry `json:"entries"`
}

// IsEmpty reports whether the forecast carries no percentile entries.
func (f HowManyForecast) IsEmpty() bool {
	return len(f.Entries) == 0
}

// ItemsAtPercentile returns the forecast value for the given percentile, or
// 0 when the percentile is not part of the forecast.
func (f HowManyForecast) ItemsAtPercentile(percentile int) int {
	for _, e := range f.Entries {
		if e.Percentile == percentile {
			return e.Items
		}
	}
	return 0
}

// WhenEntry is a single "when will N items be done" forecast outcome.
type WhenEntry struct {
	Percentile   int       `json:"percentile"`
	ExpectedDate time.Time `json:"expected_date"`
}

// WhenForecast answers "when will the remaining items be done" at the fixed
// percentile set. Dates are UTC-normalized to midnight.
type WhenForecast struct {
	RemainingItems int         `json:"remaining_items"`
	Entries        []WhenEntry `json:"entries"`
}

// IsEmpty reports whether the forecast carries no percentile entries.
func (f WhenForecast) IsEmpty() bool {
	return len(f.Entries) == 0
}

// DateAtPercentile returns the expected date for the given percentile, or
// the zero time when the percentile is not part of the forecast.
func (f WhenForecast) DateAtPercentile(percentile int) time.Time {
	for _, e := range f.Entries {
		if e.Percentile == percentile {
			return e.ExpectedDate
		}
	}
	return time.Time{}
}

// ManualForecast is the combined result of a user-triggered forecast run.
// HowMany is empty without a target date, When is empty without remaining
// items, and Likelihood is only meaningful when both inputs were supplied.
type ManualForecast struct {
	RemainingItems int             `json:"remaining_items"`
	TargetDate     *time.Time      `json:"target_date,omitempty"`
	HowMany        HowManyForecast `json:"how_many_forecasts"`
	When           WhenForecast    `json:"when_forecasts"`
	Likelihood     float64         `json:"likelihood"`
}
