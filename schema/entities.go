package schema

import "time"

// StateCategory groups tracker-specific states into the three flow states
// the engines care about.
type StateCategory string

// State categories.
const (
	StateToDo  StateCategory = "todo"
	StateDoing StateCategory = "doing"
	StateDone  StateCategory = "done"
)

// ServiceLevelExpectation is a team's stated target, e.g. "85% of items
// finish within 10 days".
type ServiceLevelExpectation struct {
	Probability int `json:"probability"`
	RangeDays   int `json:"range_days"`
}

// Team is a delivery team whose closed items feed throughput history.
// BaselineStart/BaselineEnd freeze the process-behaviour-chart baseline;
// when both are nil the baseline follows the requested chart window.
type Team struct {
	ID                      int64                   `json:"id"`
	Name                    string                  `json:"name"`
	ThroughputHistoryDays   int                     `json:"throughput_history_days"`
	UseFixedThroughputDates bool                    `json:"use_fixed_throughput_dates"`
	ThroughputStart         *time.Time              `json:"throughput_start,omitempty"`
	ThroughputEnd           *time.Time              `json:"throughput_end,omitempty"`
	BaselineStart           *time.Time              `json:"baseline_start,omitempty"`
	BaselineEnd             *time.Time              `json:"baseline_end,omitempty"`
	FeatureWIP              int                     `json:"feature_wip"`
	SLE                     ServiceLevelExpectation `json:"sle"`
}

// HasBaseline reports whether an explicit chart baseline is configured.
// Clearing both dates reverts to the rolling-window baseline.
func (t Team) HasBaseline() bool {
	return t.BaselineStart != nil && t.BaselineEnd != nil
}

// Portfolio is a group of features tracked and forecast together.
type Portfolio struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	BaselineStart *time.Time `json:"baseline_start,omitempty"`
	BaselineEnd   *time.Time `json:"baseline_end,omitempty"`
}

// HasBaseline reports whether an explicit chart baseline is configured.
func (p Portfolio) HasBaseline() bool {
	return p.BaselineStart != nil && p.BaselineEnd != nil
}

// WorkItem is a single tracker item owned by a team.
type WorkItem struct {
	ID          int64         `json:"id"`
	TeamID      int64         `json:"team_id"`
	State       StateCategory `json:"state"`
	CreatedDate time.Time     `json:"created_date"`
	StartedDate *time.Time    `json:"started_date,omitempty"`
	ClosedDate  *time.Time    `json:"closed_date,omitempty"`
}

// CycleTimeDays returns the inclusive started-to-closed span in days, or 0
// when the item has not completed a full cycle.
func (w WorkItem) CycleTimeDays() int {
	if w.StartedDate == nil || w.ClosedDate == nil {
		return 0
	}
	days := int(w.ClosedDate.Sub(*w.StartedDate).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// InProgressOn reports whether the item was in flight on the given day.
func (w WorkItem) InProgressOn(day time.Time) bool {
	if w.StartedDate == nil {
		return false
	}
	started := !w.StartedDate.After(day)
	notClosed := w.ClosedDate == nil || w.ClosedDate.After(day)
	return started && notClosed
}

// FeatureWork is a team's share of a feature's remaining items.
type FeatureWork struct {
	TeamID         int64 `json:"team_id"`
	RemainingItems int   `json:"remaining_items"`
}

// Feature is a portfolio-level deliverable broken down into team work.
type Feature struct {
	ID          int64         `json:"id"`
	PortfolioID int64         `json:"portfolio_id"`
	Name        string        `json:"name"`
	Size        int           `json:"size"`
	State       StateCategory `json:"state"`
	StartedDate *time.Time    `json:"started_date,omitempty"`
	ClosedDate  *time.Time    `json:"closed_date,omitempty"`
	Work        []FeatureWork `json:"work,omitempty"`
}

// RemainingItems returns the total remaining items across all teams.
func (f Feature) RemainingItems() int {
	total := 0
	for _, w := range f.Work {
		total += w.RemainingItems
	}
	return total
}

// CycleTimeDays returns the inclusive started-to-closed span in days, or 0
// when the feature has not completed a full cycle.
func (f Feature) CycleTimeDays() int {
	if f.StartedDate == nil || f.ClosedDate == nil {
		return 0
	}
	days := int(f.ClosedDate.Sub(*f.StartedDate).Hours()/24) + 1
	if days < 0 {
		return 0
	}
	return days
}

// FeatureForecast is a persisted when-forecast for a feature, written by
// the forecast refresh job.
type FeatureForecast struct {
	FeatureID    int64       `json:"feature_id"`
	ForecastTime time.Time   `json:"forecast_time"`
	Entries      []WhenEntry `json:"entries"`
}
