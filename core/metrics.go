package core

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// MetricsCacheTTL bounds how long derived metrics are served without
// recomputation. Refresh jobs invalidate eagerly, so the TTL only matters
// when an entity changes outside the orchestrator.
const MetricsCacheTTL = 5 * time.Minute

type cacheEntry struct {
	value   any
	expires time.Time
}

// metricsCache memoizes derived metrics per entity and window. Safe for
// concurrent readers and writers.
type metricsCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

func newMetricsCache(ttl time.Duration) *metricsCache {
	return &metricsCache{entries: make(map[string]cacheEntry), ttl: ttl}
}

func (c *metricsCache) get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.value, true
}

func (c *metricsCache) set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{value: value, expires: time.Now().Add(c.ttl)}
}

func (c *metricsCache) invalidate(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		if len(key) >= len(prefix) && key[:len(prefix)] == prefix {
			delete(c.entries, key)
		}
	}
}

// ResolveWindow turns optional window bounds into concrete UTC dates. A
// nil end falls back to today; a nil start falls back to fallbackDays
// buckets ending at the end date.
func ResolveWindow(start, end *time.Time, fallbackDays int) (time.Time, time.Time) {
	to := Today()
	if end != nil {
		to = end.UTC().Truncate(24 * time.Hour)
	}
	from := to.AddDate(0, 0, -(fallbackDays - 1))
	if start != nil {
		from = start.UTC().Truncate(24 * time.Hour)
	}
	return from, to
}

// teamWindow resolves the metrics window for a team. Teams pinned to
// fixed throughput dates use them whenever no explicit bounds are given.
func teamWindow(team schema.Team, start, end *time.Time) (time.Time, time.Time) {
	if start == nil && end == nil && team.UseFixedThroughputDates {
		start, end = team.ThroughputStart, team.ThroughputEnd
	}
	return ResolveWindow(start, end, historyDaysOrDefault(team))
}

// TeamMetrics derives throughput, cycle time and forecast metrics for a
// single team from its work items.
type TeamMetrics struct {
	store      contract.Store
	forecaster *Forecaster
	cache      *metricsCache
}

// NewTeamMetrics builds a team metrics service on top of the store.
func NewTeamMetrics(store contract.Store, forecaster *Forecaster) *TeamMetrics {
	return &TeamMetrics{
		store:      store,
		forecaster: forecaster,
		cache:      newMetricsCache(MetricsCacheTTL),
	}
}

// Invalidate drops all cached metrics for the team. Called by the team
// refresh job after new work items land.
func (m *TeamMetrics) Invalidate(teamID int64) {
	m.cache.invalidate(fmt.Sprintf("team/%d/", teamID))
}

// Throughput returns the team's daily closed-item counts over the window
// derived from the team's settings and the optional explicit bounds.
func (m *TeamMetrics) Throughput(ctx context.Context, teamID int64, start, end *time.Time) (schema.RunChart, error) {
	team, err := m.store.GetTeam(ctx, teamID)
	if err != nil {
		return schema.RunChart{}, err
	}

	from, to := teamWindow(team, start, end)

	key := fmt.Sprintf("team/%d/throughput/%s/%s", teamID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if cached, ok := m.cache.get(key); ok {
		return cached.(schema.RunChart), nil
	}

	items, err := m.store.WorkItemsForTeam(ctx, teamID)
	if err != nil {
		return schema.RunChart{}, err
	}

	chart := buildThroughput(items, from, to)
	m.cache.set(key, chart)
	return chart, nil
}

// ThroughputChart computes the team's throughput process behaviour chart.
// A baseline frozen on the team takes precedence over the rolling window.
func (m *TeamMetrics) ThroughputChart(ctx context.Context, teamID int64, start, end *time.Time) (schema.ProcessBehaviourChart, error) {
	team, err := m.store.GetTeam(ctx, teamID)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	series, err := m.Throughput(ctx, teamID, start, end)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	if team.HasBaseline() {
		return ComputeProcessBehaviourChart(series, team.BaselineStart, team.BaselineEnd), nil
	}
	return ComputeProcessBehaviourChart(series, nil, nil), nil
}

// WIP returns the team's daily in-progress item counts over the window.
// An item is in progress on a day when it started on or before that day
// and was not yet closed.
func (m *TeamMetrics) WIP(ctx context.Context, teamID int64, start, end *time.Time) (schema.RunChart, error) {
	team, err := m.store.GetTeam(ctx, teamID)
	if err != nil {
		return schema.RunChart{}, err
	}
	from, to := teamWindow(team, start, end)

	key := fmt.Sprintf("team/%d/wip/%s/%s", teamID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if cached, ok := m.cache.get(key); ok {
		return cached.(schema.RunChart), nil
	}

	items, err := m.store.WorkItemsForTeam(ctx, teamID)
	if err != nil {
		return schema.RunChart{}, err
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return schema.RunChart{StartDate: from}, nil
	}
	counts := make([]int, days)
	for _, item := range items {
		if item.StartedDate == nil {
			continue
		}
		started := item.StartedDate.UTC().Truncate(24 * time.Hour)
		for d := 0; d < days; d++ {
			day := from.AddDate(0, 0, d)
			if day.Before(started) {
				continue
			}
			if item.ClosedDate != nil && !item.ClosedDate.UTC().Truncate(24*time.Hour).After(day) {
				continue
			}
			counts[d]++
		}
	}

	chart := schema.NewRunChart(from, counts)
	m.cache.set(key, chart)
	return chart, nil
}

// WIPChart computes the team's work-in-progress process behaviour chart.
func (m *TeamMetrics) WIPChart(ctx context.Context, teamID int64, start, end *time.Time) (schema.ProcessBehaviourChart, error) {
	team, err := m.store.GetTeam(ctx, teamID)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	series, err := m.WIP(ctx, teamID, start, end)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	if team.HasBaseline() {
		return ComputeProcessBehaviourChart(series, team.BaselineStart, team.BaselineEnd), nil
	}
	return ComputeProcessBehaviourChart(series, nil, nil), nil
}

// CycleTimeChart charts per-item cycle times for items closed in the
// window, ordered by close date, on an index axis.
func (m *TeamMetrics) CycleTimeChart(ctx context.Context, teamID int64, start, end *time.Time) (schema.ProcessBehaviourChart, error) {
	team, err := m.store.GetTeam(ctx, teamID)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	from, to := teamWindow(team, start, end)

	items, err := m.store.WorkItemsForTeam(ctx, teamID)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}

	type closedItem struct {
		closed time.Time
		days   int
	}
	var closed []closedItem
	for _, item := range items {
		if item.ClosedDate == nil || item.StartedDate == nil {
			continue
		}
		day := item.ClosedDate.UTC().Truncate(24 * time.Hour)
		if day.Before(from) || day.After(to) {
			continue
		}
		closed = append(closed, closedItem{closed: day, days: item.CycleTimeDays()})
	}
	sort.Slice(closed, func(i, j int) bool { return closed[i].closed.Before(closed[j].closed) })

	values := make([]int, len(closed))
	for i, c := range closed {
		values[i] = c.days
	}
	return ComputeIndexedBehaviourChart(values), nil
}

// CycleTimePercentiles summarizes the cycle times of items closed in the
// window at the default percentile set. No closed items yields an empty
// result.
func (m *TeamMetrics) CycleTimePercentiles(ctx context.Context, teamID int64, start, end *time.Time) ([]schema.PercentileValue, error) {
	team, err := m.store.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	from, to := teamWindow(team, start, end)

	items, err := m.store.WorkItemsForTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}

	var samples []float64
	for _, item := range items {
		if item.ClosedDate == nil || item.StartedDate == nil {
			continue
		}
		closed := item.ClosedDate.UTC().Truncate(24 * time.Hour)
		if closed.Before(from) || closed.After(to) {
			continue
		}
		samples = append(samples, float64(item.CycleTimeDays()))
	}
	return Percentiles(samples, schema.DefaultPercentiles), nil
}

// Predictability back-tests how-many forecasts over the team's throughput
// history in the window.
func (m *TeamMetrics) Predictability(ctx context.Context, teamID int64, start, end *time.Time) (schema.ForecastPredictabilityScore, error) {
	series, err := m.Throughput(ctx, teamID, start, end)
	if err != nil {
		return schema.ForecastPredictabilityScore{}, err
	}
	return m.forecaster.PredictabilityScore(series, schema.DefaultPercentiles), nil
}

// PortfolioMetrics derives feature-level metrics for a portfolio.
type PortfolioMetrics struct {
	store      contract.Store
	forecaster *Forecaster
	cache      *metricsCache
}

// NewPortfolioMetrics builds a portfolio metrics service on top of the
// store.
func NewPortfolioMetrics(store contract.Store, forecaster *Forecaster) *PortfolioMetrics {
	return &PortfolioMetrics{
		store:      store,
		forecaster: forecaster,
		cache:      newMetricsCache(MetricsCacheTTL),
	}
}

// Invalidate drops all cached metrics for the portfolio.
func (m *PortfolioMetrics) Invalidate(portfolioID int64) {
	m.cache.invalidate(fmt.Sprintf("portfolio/%d/", portfolioID))
}

// FeatureThroughput returns daily closed-feature counts for the portfolio.
func (m *PortfolioMetrics) FeatureThroughput(ctx context.Context, portfolioID int64, start, end *time.Time) (schema.RunChart, error) {
	from, to := ResolveWindow(start, end, contract.DefaultHistoryDays)

	key := fmt.Sprintf("portfolio/%d/throughput/%s/%s", portfolioID, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if cached, ok := m.cache.get(key); ok {
		return cached.(schema.RunChart), nil
	}

	features, err := m.store.FeaturesForPortfolio(ctx, portfolioID)
	if err != nil {
		return schema.RunChart{}, err
	}

	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return schema.RunChart{StartDate: from}, nil
	}
	counts := make([]int, days)
	for _, f := range features {
		if f.ClosedDate == nil {
			continue
		}
		offset := int(f.ClosedDate.UTC().Truncate(24*time.Hour).Sub(from).Hours() / 24)
		if offset >= 0 && offset < days {
			counts[offset]++
		}
	}
	chart := schema.NewRunChart(from, counts)
	m.cache.set(key, chart)
	return chart, nil
}

// FeatureChart computes the portfolio's feature-closure process behaviour
// chart, honoring a frozen baseline on the portfolio.
func (m *PortfolioMetrics) FeatureChart(ctx context.Context, portfolioID int64, start, end *time.Time) (schema.ProcessBehaviourChart, error) {
	portfolio, err := m.store.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	series, err := m.FeatureThroughput(ctx, portfolioID, start, end)
	if err != nil {
		return schema.ProcessBehaviourChart{}, err
	}
	if portfolio.HasBaseline() {
		return ComputeProcessBehaviourChart(series, portfolio.BaselineStart, portfolio.BaselineEnd), nil
	}
	return ComputeProcessBehaviourChart(series, nil, nil), nil
}

// SizePercentiles summarizes feature sizes at the default percentile set.
// Zero-size features are excluded as unestimated.
func (m *PortfolioMetrics) SizePercentiles(ctx context.Context, portfolioID int64) ([]schema.PercentileValue, error) {
	features, err := m.store.FeaturesForPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	var samples []float64
	for _, f := range features {
		if f.Size > 0 {
			samples = append(samples, float64(f.Size))
		}
	}
	return Percentiles(samples, schema.DefaultPercentiles), nil
}

// buildThroughput buckets closed items per day across [from, to].
func buildThroughput(items []schema.WorkItem, from, to time.Time) schema.RunChart {
	days := int(to.Sub(from).Hours()/24) + 1
	if days < 1 {
		return schema.RunChart{StartDate: from}
	}
	counts := make([]int, days)
	for _, item := range items {
		if item.ClosedDate == nil {
			continue
		}
		offset := int(item.ClosedDate.UTC().Truncate(24*time.Hour).Sub(from).Hours() / 24)
		if offset >= 0 && offset < days {
			counts[offset]++
		}
	}
	return schema.NewRunChart(from, counts)
}

func historyDaysOrDefault(team schema.Team) int {
	if team.ThroughputHistoryDays > 0 {
		return team.ThroughputHistoryDays
	}
	return contract.DefaultHistoryDays
}
