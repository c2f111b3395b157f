package iostore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/flowsignal/flowcast/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewStore(schema.SQLiteBackend, filepath.Join(t.TempDir(), "flowcast_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestTeamRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	baselineStart := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	baselineEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	team := schema.Team{
		ID: 7, Name: "orion", ThroughputHistoryDays: 45, FeatureWIP: 2,
		BaselineStart: &baselineStart, BaselineEnd: &baselineEnd,
		SLE: schema.ServiceLevelExpectation{Probability: 85, RangeDays: 10},
	}
	require.NoError(t, store.SaveTeam(ctx, team))

	got, err := store.GetTeam(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "orion", got.Name)
	assert.Equal(t, 45, got.ThroughputHistoryDays)
	assert.True(t, got.HasBaseline())
	assert.Equal(t, baselineStart, *got.BaselineStart)
	assert.Equal(t, 85, got.SLE.Probability)

	// Clearing the baseline reverts to the rolling window.
	team.BaselineStart = nil
	team.BaselineEnd = nil
	require.NoError(t, store.SaveTeam(ctx, team))
	got, err = store.GetTeam(ctx, 7)
	require.NoError(t, err)
	assert.False(t, got.HasBaseline())
}

func TestGetTeamNotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetTeam(context.Background(), 404)
	assert.ErrorContains(t, err, "not found")
}

func TestWorkItemsForTeam(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveTeam(ctx, schema.Team{ID: 1, Name: "orion"}))

	closed := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	started := closed.AddDate(0, 0, -4)
	items := []schema.WorkItem{
		{ID: 1, TeamID: 1, State: schema.StateDone, CreatedDate: started, StartedDate: &started, ClosedDate: &closed},
		{ID: 2, TeamID: 1, State: schema.StateDoing, CreatedDate: started, StartedDate: &started},
		{ID: 3, TeamID: 2, State: schema.StateToDo, CreatedDate: started},
	}
	for _, item := range items {
		require.NoError(t, store.SaveWorkItem(ctx, item))
	}

	got, err := store.WorkItemsForTeam(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, schema.StateDone, got[0].State)
	require.NotNil(t, got[0].ClosedDate)
	assert.Equal(t, closed, *got[0].ClosedDate)
	assert.Nil(t, got[1].ClosedDate)
}

func TestFeaturesForPortfolio(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePortfolio(ctx, schema.Portfolio{ID: 1, Name: "atlas"}))

	feature := schema.Feature{
		ID: 1, PortfolioID: 1, Name: "checkout revamp", Size: 18, State: schema.StateDoing,
		Work: []schema.FeatureWork{
			{TeamID: 1, RemainingItems: 7},
			{TeamID: 2, RemainingItems: 4},
		},
	}
	require.NoError(t, store.SaveFeature(ctx, feature))
	require.NoError(t, store.SaveFeature(ctx, schema.Feature{ID: 2, PortfolioID: 2, Name: "other", State: schema.StateToDo}))

	got, err := store.FeaturesForPortfolio(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 11, got[0].RemainingItems())
	require.Len(t, got[0].Work, 2)

	// Saving again replaces the work breakdown rather than duplicating it.
	feature.Work = feature.Work[:1]
	require.NoError(t, store.SaveFeature(ctx, feature))
	got, err = store.FeaturesForPortfolio(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got[0].Work, 1)
	assert.Equal(t, 7, got[0].RemainingItems())
}

func TestFeatureForecastRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SavePortfolio(ctx, schema.Portfolio{ID: 1, Name: "atlas"}))
	require.NoError(t, store.SaveFeature(ctx, schema.Feature{ID: 1, PortfolioID: 1, Name: "checkout revamp", State: schema.StateDoing}))

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	forecast := schema.FeatureForecast{
		FeatureID:    1,
		ForecastTime: now,
		Entries: []schema.WhenEntry{
			{Percentile: 50, ExpectedDate: now.AddDate(0, 0, 5)},
			{Percentile: 85, ExpectedDate: now.AddDate(0, 0, 9)},
		},
	}
	require.NoError(t, store.SaveFeatureForecast(ctx, forecast))

	records, err := store.ForecastSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "checkout revamp", records[0].FeatureName)
	assert.Equal(t, 50, records[0].Percentile)
	assert.Equal(t, 85, records[1].Percentile)

	// Overwriting replaces all percentile rows.
	forecast.Entries = forecast.Entries[:1]
	require.NoError(t, store.SaveFeatureForecast(ctx, forecast))
	records, err = store.ForecastSnapshots(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestStoreStatusAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, Seed(ctx, store))

	status, err := store.GetStatus(ctx)
	require.NoError(t, err)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.Teams)
	assert.Equal(t, 1, status.Portfolios)
	assert.Equal(t, 3, status.Features)
	assert.Positive(t, status.WorkItems)

	require.NoError(t, store.Clear(ctx))
	status, err = store.GetStatus(ctx)
	require.NoError(t, err)
	assert.Zero(t, status.Teams)
	assert.Zero(t, status.WorkItems)
}

func TestSeedDeterministic(t *testing.T) {
	ctx := context.Background()
	first := newTestStore(t)
	require.NoError(t, Seed(ctx, first))
	second := newTestStore(t)
	require.NoError(t, Seed(ctx, second))

	a, err := first.GetStatus(ctx)
	require.NoError(t, err)
	b, err := second.GetStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, a.WorkItems, b.WorkItems)
}

func TestNoneBackend(t *testing.T) {
	store, err := NewStore(schema.NoneBackend, "")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, err = store.GetTeam(context.Background(), 1)
	assert.Error(t, err)

	status, err := store.GetStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Connected)
}
