package schema

import "time"

// RunChart is a time-bucketed series of non-negative counts, one entry per
// day starting at StartDate. An empty series is legal and means "no history
// yet". The engines never mutate a RunChart they are handed.
type RunChart struct {
	StartDate time.Time `json:"start_date"`
	Counts    []int     `json:"counts"`
}

// NewRunChart builds a RunChart from per-day counts.
func NewRunChart(startDate time.Time, counts []int) RunChart {
	return RunChart{StartDate: startDate.UTC().Truncate(24 * time.Hour), Counts: counts}
}

// Days returns the number of buckets in the series.
func (r RunChart) Days() int {
	return len(r.Counts)
}

// IsEmpty reports whether the series has no buckets.
func (r RunChart) IsEmpty() bool {
	return len(r.Counts) == 0
}

// CountOnDay returns the count for the given bucket offset, or 0 when the
// offset is out of range.
func (r RunChart) CountOnDay(day int) int {
	if day < 0 || day >= len(r.Counts) {
		return 0
	}
	return r.Counts[day]
}

// Total returns the sum of all buckets.
func (r RunChart) Total() int {
	total := 0
	for _, c := range r.Counts {
		total += c
	}
	return total
}

// DateOnDay returns the calendar date of the given bucket offset.
func (r RunChart) DateOnDay(day int) time.Time {
	return r.StartDate.AddDate(0, 0, day)
}

// Window returns the sub-series covering buckets [from, to). Out-of-range
// bounds are clamped.
func (r RunChart) Window(from, to int) RunChart {
	if from < 0 {
		from = 0
	}
	if to > len(r.Counts) {
		to = len(r.Counts)
	}
	if from >= to {
		return RunChart{StartDate: r.StartDate.AddDate(0, 0, from)}
	}
	return RunChart{
		StartDate: r.StartDate.AddDate(0, 0, from),
		Counts:    r.Counts[from:to],
	}
}
