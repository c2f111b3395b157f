package core

import (
	"context"
	"testing"

	"github.com/flowsignal/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newForecastFixture(t *testing.T) (*memStore, *ForecastService) {
	t.Helper()
	store := newMemStore()
	seedTeamWithItems(store, 1, map[string]int{
		"2026-01-01": 1, "2026-01-02": 1, "2026-01-03": 1, "2026-01-04": 1,
		"2026-01-05": 1, "2026-01-06": 1, "2026-01-07": 1, "2026-01-08": 1,
		"2026-01-09": 1, "2026-01-10": 1,
	})

	forecaster := NewForecasterWithSampler(100, func() Sampler { return &constSampler{v: 1} })
	team := NewTeamMetrics(store, forecaster)
	portfolio := NewPortfolioMetrics(store, forecaster)
	return store, NewForecastService(store, team, portfolio, forecaster, 2)
}

func intPtr(n int) *int { return &n }

func TestManualForecastTargetDateOnly(t *testing.T) {
	_, svc := newForecastFixture(t)
	target := Today().AddDate(0, 0, 10)

	result, err := svc.RunManualForecast(context.Background(), 1, nil, &target)
	require.NoError(t, err)

	assert.True(t, result.When.IsEmpty())
	assert.Zero(t, result.Likelihood)
	require.False(t, result.HowMany.IsEmpty())
	assert.Equal(t, 10, result.HowMany.Days)
	// One item per day, every trial.
	assert.Equal(t, 10, result.HowMany.ItemsAtPercentile(85))
}

func TestManualForecastRemainingOnly(t *testing.T) {
	_, svc := newForecastFixture(t)

	result, err := svc.RunManualForecast(context.Background(), 1, intPtr(5), nil)
	require.NoError(t, err)

	assert.True(t, result.HowMany.IsEmpty())
	assert.Zero(t, result.Likelihood)
	require.False(t, result.When.IsEmpty())
	assert.Equal(t, Today().AddDate(0, 0, 5), result.When.DateAtPercentile(85))
}

func TestManualForecastJointLikelihood(t *testing.T) {
	_, svc := newForecastFixture(t)
	target := Today().AddDate(0, 0, 10)

	result, err := svc.RunManualForecast(context.Background(), 1, intPtr(5), &target)
	require.NoError(t, err)

	assert.False(t, result.HowMany.IsEmpty())
	assert.False(t, result.When.IsEmpty())
	assert.Equal(t, 1.0, result.Likelihood)

	// Ask for more than ten days can deliver at one item per day.
	result, err = svc.RunManualForecast(context.Background(), 1, intPtr(11), &target)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.Likelihood)
}

func TestManualForecastPastTargetDate(t *testing.T) {
	_, svc := newForecastFixture(t)
	target := Today().AddDate(0, 0, -3)

	result, err := svc.RunManualForecast(context.Background(), 1, nil, &target)
	require.NoError(t, err)

	require.False(t, result.HowMany.IsEmpty())
	for _, e := range result.HowMany.Entries {
		assert.Equal(t, 0, e.Items)
	}
}

func TestManualForecastNoHistory(t *testing.T) {
	store := newMemStore()
	store.teams[1] = schema.Team{ID: 1, ThroughputHistoryDays: 10}
	forecaster := NewForecaster(100, 1)
	svc := NewForecastService(store, NewTeamMetrics(store, forecaster), NewPortfolioMetrics(store, forecaster), forecaster, 1)

	target := Today().AddDate(0, 0, 10)
	result, err := svc.RunManualForecast(context.Background(), 1, intPtr(5), &target)
	require.NoError(t, err)

	// The history window exists but holds only zero counts, so the when
	// forecast cannot make progress.
	assert.True(t, result.When.IsEmpty())
	assert.Zero(t, result.Likelihood)
}

func TestRefreshPortfolioForecasts(t *testing.T) {
	store, svc := newForecastFixture(t)
	seedTeamWithItems(store, 2, map[string]int{"2026-01-02": 1, "2026-01-05": 1})
	store.portfolios[1] = schema.Portfolio{ID: 1, Name: "platform"}
	store.features[1] = []schema.Feature{
		{ID: 10, PortfolioID: 1, Name: "billing", State: schema.StateDoing, Work: []schema.FeatureWork{
			{TeamID: 1, RemainingItems: 3},
			{TeamID: 2, RemainingItems: 5},
		}},
		{ID: 11, PortfolioID: 1, Name: "done already", State: schema.StateDone, Work: []schema.FeatureWork{
			{TeamID: 1, RemainingItems: 4},
		}},
		{ID: 12, PortfolioID: 1, Name: "no work", State: schema.StateDoing},
	}

	require.NoError(t, svc.RefreshPortfolioForecasts(context.Background(), 1))

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.forecasts, 1)
	saved := store.forecasts[10]
	assert.Equal(t, int64(10), saved.FeatureID)
	require.Len(t, saved.Entries, 4)
	// Both teams sample one item per day; the slower team needs 5 days.
	assert.Equal(t, Today().AddDate(0, 0, 5), saved.Entries[0].ExpectedDate)
}
