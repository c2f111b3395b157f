package schema

// ChartStatus tells a consumer whether natural process limits could be
// computed for a process behaviour chart.
type ChartStatus string

// Chart statuses.
const (
	ChartReady         ChartStatus = "ready"
	ChartNotEnoughData ChartStatus = "not_enough_data"
)

// XAxisKind describes how data point labels should be interpreted.
type XAxisKind string

// X axis kinds.
const (
	XAxisDate  XAxisKind = "date"
	XAxisIndex XAxisKind = "index"
)

// SpecialCauseType flags a data point that signals more than routine
// variation. At most one cause is assigned per point; out-of-limit causes
// take precedence over long runs.
type SpecialCauseType string

// Special cause types.
const (
	CauseNone      SpecialCauseType = "none"
	CauseHighValue SpecialCauseType = "high_value"
	CauseLowValue  SpecialCauseType = "low_value"
	CauseLongRun   SpecialCauseType = "long_run"
)

// ChartDataPoint is a single observation on a process behaviour chart.
// MovingRange holds the absolute difference to the previous point when the
// point contributed to the baseline moving-range average.
type ChartDataPoint struct {
	Label        string           `json:"label"`
	Value        float64          `json:"value"`
	SpecialCause SpecialCauseType `json:"special_cause"`
	MovingRange  []float64        `json:"moving_range,omitempty"`
}

// ProcessBehaviourChart is an XmR chart: an average with natural process
// limits derived from the baseline moving-range average, plus per-point
// special-cause flags over the full display window.
type ProcessBehaviourChart struct {
	Status                   ChartStatus      `json:"status"`
	XAxisKind                XAxisKind        `json:"x_axis_kind"`
	Average                  float64          `json:"average"`
	UpperNaturalProcessLimit float64          `json:"upper_natural_process_limit"`
	LowerNaturalProcessLimit float64          `json:"lower_natural_process_limit"`
	DataPoints               []ChartDataPoint `json:"data_points"`
}
