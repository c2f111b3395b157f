package core

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/flowsignal/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory Store used across the core tests.
type memStore struct {
	mu         sync.Mutex
	teams      map[int64]schema.Team
	portfolios map[int64]schema.Portfolio
	items      map[int64][]schema.WorkItem
	features   map[int64][]schema.Feature
	forecasts  map[int64]schema.FeatureForecast
}

func newMemStore() *memStore {
	return &memStore{
		teams:      make(map[int64]schema.Team),
		portfolios: make(map[int64]schema.Portfolio),
		items:      make(map[int64][]schema.WorkItem),
		features:   make(map[int64][]schema.Feature),
		forecasts:  make(map[int64]schema.FeatureForecast),
	}
}

func (s *memStore) GetTeam(_ context.Context, id int64) (schema.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	team, ok := s.teams[id]
	if !ok {
		return schema.Team{}, fmt.Errorf("team %d not found", id)
	}
	return team, nil
}

func (s *memStore) ListTeams(_ context.Context) ([]schema.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var teams []schema.Team
	for _, t := range s.teams {
		teams = append(teams, t)
	}
	return teams, nil
}

func (s *memStore) SaveTeam(_ context.Context, team schema.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[team.ID] = team
	return nil
}

func (s *memStore) GetPortfolio(_ context.Context, id int64) (schema.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.portfolios[id]
	if !ok {
		return schema.Portfolio{}, fmt.Errorf("portfolio %d not found", id)
	}
	return p, nil
}

func (s *memStore) ListPortfolios(_ context.Context) ([]schema.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ps []schema.Portfolio
	for _, p := range s.portfolios {
		ps = append(ps, p)
	}
	return ps, nil
}

func (s *memStore) SavePortfolio(_ context.Context, p schema.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.portfolios[p.ID] = p
	return nil
}

func (s *memStore) WorkItemsForTeam(_ context.Context, teamID int64) ([]schema.WorkItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[teamID], nil
}

func (s *memStore) FeaturesForPortfolio(_ context.Context, portfolioID int64) ([]schema.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.features[portfolioID], nil
}

func (s *memStore) SaveFeatureForecast(_ context.Context, f schema.FeatureForecast) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.forecasts[f.FeatureID] = f
	return nil
}

func (s *memStore) ForecastSnapshots(_ context.Context) ([]schema.ForecastSnapshotRecord, error) {
	return nil, nil
}

func (s *memStore) GetStatus(_ context.Context) (schema.StoreStatus, error) {
	return schema.StoreStatus{}, nil
}

func (s *memStore) Close() error { return nil }

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func seedTeamWithItems(s *memStore, teamID int64, closedPerDay map[string]int) {
	start := date(2026, 1, 1)
	end := date(2026, 1, 10)
	s.teams[teamID] = schema.Team{
		ID:                      teamID,
		Name:                    fmt.Sprintf("team-%d", teamID),
		ThroughputHistoryDays:   10,
		UseFixedThroughputDates: true,
		ThroughputStart:         start,
		ThroughputEnd:           end,
	}
	var id int64
	for day, n := range closedPerDay {
		closed, _ := time.Parse("2006-01-02", day)
		for i := 0; i < n; i++ {
			id++
			started := closed.AddDate(0, 0, -2)
			s.items[teamID] = append(s.items[teamID], schema.WorkItem{
				ID:          id,
				TeamID:      teamID,
				State:       schema.StateDone,
				StartedDate: &started,
				ClosedDate:  &closed,
			})
		}
	}
}

func TestTeamThroughput(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-01": 2,
		"2026-01-03": 1,
		"2026-01-10": 3,
		"2026-02-01": 1, // outside the fixed window
	})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.Throughput(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 10, chart.Days())
	assert.Equal(t, 2, chart.CountOnDay(0))
	assert.Equal(t, 1, chart.CountOnDay(2))
	assert.Equal(t, 3, chart.CountOnDay(9))
	assert.Equal(t, 6, chart.Total())
}

func TestTeamThroughputUnknownTeam(t *testing.T) {
	metrics := NewTeamMetrics(newMemStore(), NewForecaster(100, 1))
	_, err := metrics.Throughput(context.Background(), 42, nil, nil)
	assert.Error(t, err)
}

func TestTeamThroughputCacheInvalidation(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{"2026-01-05": 1})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	first, err := metrics.Throughput(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Total())

	// Another closure lands; the cached series is served until the team
	// is invalidated.
	closed := time.Date(2026, 1, 6, 0, 0, 0, 0, time.UTC)
	store.mu.Lock()
	store.items[1] = append(store.items[1], schema.WorkItem{ID: 99, TeamID: 1, ClosedDate: &closed})
	store.mu.Unlock()

	cached, err := metrics.Throughput(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, cached.Total())

	metrics.Invalidate(1)
	fresh, err := metrics.Throughput(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, fresh.Total())
}

func TestTeamWIP(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-03": 1,
		"2026-01-05": 1,
	})
	// One item still in flight at the end of the window.
	started := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	store.items[1] = append(store.items[1], schema.WorkItem{
		ID: 50, TeamID: 1, State: schema.StateDoing, StartedDate: &started,
	})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.WIP(context.Background(), 1, date(2026, 1, 1), date(2026, 1, 5))
	require.NoError(t, err)

	// Closed items count up to the day before their close date.
	require.Equal(t, 5, chart.Days())
	assert.Equal(t, 1, chart.CountOnDay(0))
	assert.Equal(t, 2, chart.CountOnDay(1))
	assert.Equal(t, 2, chart.CountOnDay(2))
	assert.Equal(t, 2, chart.CountOnDay(3))
	assert.Equal(t, 1, chart.CountOnDay(4))
}

func TestTeamWIPChart(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-03": 2,
		"2026-01-06": 1,
		"2026-01-09": 3,
	})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.WIPChart(context.Background(), 1, date(2026, 1, 1), date(2026, 1, 10))
	require.NoError(t, err)

	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Equal(t, schema.XAxisDate, chart.XAxisKind)
	assert.Len(t, chart.DataPoints, 10)
}

func TestTeamCycleTimeChart(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-02": 2, "2026-01-04": 2, "2026-01-06": 2, "2026-01-08": 2,
	})
	// A slow item closing last in the window.
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	closed := time.Date(2026, 1, 9, 0, 0, 0, 0, time.UTC)
	store.items[1] = append(store.items[1], schema.WorkItem{
		ID: 60, TeamID: 1, State: schema.StateDone, StartedDate: &started, ClosedDate: &closed,
	})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.CycleTimeChart(context.Background(), 1, date(2026, 1, 1), date(2026, 1, 10))
	require.NoError(t, err)

	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Equal(t, schema.XAxisIndex, chart.XAxisKind)
	require.Len(t, chart.DataPoints, 9)

	// Points are ordered by close date; the slow item lands last.
	assert.Equal(t, 3.0, chart.DataPoints[0].Value)
	assert.Equal(t, 9.0, chart.DataPoints[8].Value)
	assert.Equal(t, "9", chart.DataPoints[8].Label)
}

func TestTeamWIPInvertedWindow(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{"2026-01-03": 1})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.WIP(context.Background(), 1, date(2026, 2, 1), date(2026, 1, 1))
	require.NoError(t, err)
	assert.True(t, chart.IsEmpty())
}

func TestPortfolioFeatureThroughputInvertedWindow(t *testing.T) {
	store := newMemStore()
	store.portfolios[1] = schema.Portfolio{ID: 1}

	metrics := NewPortfolioMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.FeatureThroughput(context.Background(), 1, date(2026, 2, 1), date(2026, 1, 1))
	require.NoError(t, err)
	assert.True(t, chart.IsEmpty())
}

func TestTeamMetricsFixedWindow(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-02": 2, "2026-01-04": 2, "2026-01-06": 2, "2026-01-08": 2,
	})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))

	// Nil bounds resolve to the team's pinned throughput window, not today.
	wip, err := metrics.WIP(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 10, wip.Days())
	assert.Positive(t, wip.Total())

	chart, err := metrics.CycleTimeChart(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Len(t, chart.DataPoints, 8)
}

func TestTeamCycleTimeChartNoClosedItems(t *testing.T) {
	store := newMemStore()
	store.teams[1] = schema.Team{ID: 1, ThroughputHistoryDays: 10}

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.CycleTimeChart(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, schema.ChartNotEnoughData, chart.Status)
	assert.Empty(t, chart.DataPoints)
}

func TestTeamCycleTimePercentiles(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-02": 1,
		"2026-01-05": 2,
	})

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	values, err := metrics.CycleTimePercentiles(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	// Every seeded item has a two day started-to-closed span, inclusive.
	require.Len(t, values, len(schema.DefaultPercentiles))
	for _, v := range values {
		assert.Equal(t, 3.0, v.Value)
	}
}

func TestTeamCycleTimePercentilesNoData(t *testing.T) {
	store := newMemStore()
	store.teams[1] = schema.Team{ID: 1, ThroughputHistoryDays: 10}

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	values, err := metrics.CycleTimePercentiles(context.Background(), 1, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestTeamThroughputChartWithBaseline(t *testing.T) {
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-01": 2, "2026-01-02": 3, "2026-01-03": 2, "2026-01-04": 3,
		"2026-01-05": 2, "2026-01-06": 3, "2026-01-07": 2, "2026-01-08": 3,
		"2026-01-09": 30,
	})
	team := store.teams[1]
	team.BaselineStart = date(2026, 1, 1)
	team.BaselineEnd = date(2026, 1, 8)
	store.teams[1] = team

	metrics := NewTeamMetrics(store, NewForecaster(100, 1))
	chart, err := metrics.ThroughputChart(context.Background(), 1, nil, nil)
	require.NoError(t, err)

	require.Equal(t, schema.ChartReady, chart.Status)
	assert.Equal(t, 2.5, chart.Average)
	assert.Equal(t, schema.CauseHighValue, chart.DataPoints[8].SpecialCause)
}

func TestPortfolioSizePercentiles(t *testing.T) {
	store := newMemStore()
	store.portfolios[1] = schema.Portfolio{ID: 1, Name: "platform"}
	store.features[1] = []schema.Feature{
		{ID: 1, PortfolioID: 1, Size: 8},
		{ID: 2, PortfolioID: 1, Size: 8},
		{ID: 3, PortfolioID: 1, Size: 8},
		{ID: 4, PortfolioID: 1, Size: 0}, // unestimated, excluded
	}

	metrics := NewPortfolioMetrics(store, NewForecaster(100, 1))
	values, err := metrics.SizePercentiles(context.Background(), 1)
	require.NoError(t, err)

	require.Len(t, values, len(schema.DefaultPercentiles))
	for _, v := range values {
		assert.Equal(t, 8.0, v.Value)
	}
}

func TestResolveWindow(t *testing.T) {
	start := date(2026, 1, 1)
	end := date(2026, 1, 10)

	from, to := ResolveWindow(start, end, 30)
	assert.Equal(t, *start, from)
	assert.Equal(t, *end, to)

	from, to = ResolveWindow(nil, end, 10)
	assert.Equal(t, end.AddDate(0, 0, -9), from)
	assert.Equal(t, *end, to)

	from, to = ResolveWindow(nil, nil, 10)
	assert.Equal(t, Today(), to)
	assert.Equal(t, Today().AddDate(0, 0, -9), from)
}
