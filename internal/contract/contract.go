// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"context"

	"github.com/flowsignal/flowcast/schema"
)

// Store defines the persistence operations the engines and update jobs
// depend on. This allows the core logic to be tested without a real
// database.
type Store interface {
	// --- Entities ---

	// GetTeam returns the team with the given id.
	GetTeam(ctx context.Context, id int64) (schema.Team, error)

	// ListTeams returns all teams ordered by id.
	ListTeams(ctx context.Context) ([]schema.Team, error)

	// SaveTeam upserts a team, including its baseline settings.
	SaveTeam(ctx context.Context, team schema.Team) error

	// GetPortfolio returns the portfolio with the given id.
	GetPortfolio(ctx context.Context, id int64) (schema.Portfolio, error)

	// ListPortfolios returns all portfolios ordered by id.
	ListPortfolios(ctx context.Context) ([]schema.Portfolio, error)

	// SavePortfolio upserts a portfolio, including its baseline settings.
	SavePortfolio(ctx context.Context, portfolio schema.Portfolio) error

	// --- Work items / features ---

	// WorkItemsForTeam returns all work items owned by the team.
	WorkItemsForTeam(ctx context.Context, teamID int64) ([]schema.WorkItem, error)

	// FeaturesForPortfolio returns all features of the portfolio, with
	// their per-team remaining work attached.
	FeaturesForPortfolio(ctx context.Context, portfolioID int64) ([]schema.Feature, error)

	// --- Forecast persistence ---

	// SaveFeatureForecast replaces the persisted forecast for a feature.
	SaveFeatureForecast(ctx context.Context, forecast schema.FeatureForecast) error

	// ForecastSnapshots returns all persisted feature forecasts flattened
	// to one row per percentile, for export.
	ForecastSnapshots(ctx context.Context) ([]schema.ForecastSnapshotRecord, error)

	// --- Lifecycle ---

	// GetStatus returns status information about the store.
	GetStatus(ctx context.Context) (schema.StoreStatus, error)

	// Close closes the underlying connection.
	Close() error
}
