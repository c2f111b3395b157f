package schema

import "fmt"

// UpdateType names the kind of background refresh a job performs.
type UpdateType string

// Update types.
const (
	TeamUpdate      UpdateType = "team"
	FeaturesUpdate  UpdateType = "features"
	ForecastsUpdate UpdateType = "forecasts"
)

// UpdateProgress is the lifecycle state of a background update job.
type UpdateProgress string

// Update progress states. Queued and InProgress count as active.
const (
	UpdateQueued     UpdateProgress = "queued"
	UpdateInProgress UpdateProgress = "in_progress"
	UpdateCompleted  UpdateProgress = "completed"
	UpdateFailed     UpdateProgress = "failed"
)

// IsActive reports whether the state still occupies the per-key in-flight
// slot.
func (p UpdateProgress) IsActive() bool {
	return p == UpdateQueued || p == UpdateInProgress
}

// UpdateKey identifies one unit of background work by value. It is used as
// a map key, so it must stay comparable.
type UpdateKey struct {
	UpdateType UpdateType `json:"update_type"`
	ID         int64      `json:"id"`
}

func (k UpdateKey) String() string {
	return fmt.Sprintf("%s/%d", k.UpdateType, k.ID)
}

// UpdateStatus is the externally observable state of the most recent update
// attempt for a key. Terminal entries stay visible until the next trigger
// for the same key overwrites them.
type UpdateStatus struct {
	UpdateType UpdateType     `json:"update_type"`
	ID         int64          `json:"id"`
	Status     UpdateProgress `json:"status"`
}

// Key returns the registry key for this status.
func (s UpdateStatus) Key() UpdateKey {
	return UpdateKey{UpdateType: s.UpdateType, ID: s.ID}
}

// UpdateStatusSummary is the poller-facing view over the update registry.
type UpdateStatusSummary struct {
	HasActiveUpdates bool `json:"has_active_updates"`
	ActiveCount      int  `json:"active_count"`
}
