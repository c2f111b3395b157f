package update

import (
	"context"

	"github.com/flowsignal/flowcast/core"
	"github.com/flowsignal/flowcast/schema"
)

// Service binds the orchestrator to the concrete refresh jobs: team
// throughput refresh, portfolio feature refresh and portfolio forecast
// recompute.
type Service struct {
	registry  *Registry
	orch      *Orchestrator
	team      *core.TeamMetrics
	portfolio *core.PortfolioMetrics
	forecasts *core.ForecastService
}

// NewService wires the update service. The registry is shared with status
// pollers.
func NewService(ctx context.Context, registry *Registry, team *core.TeamMetrics, portfolio *core.PortfolioMetrics, forecasts *core.ForecastService) *Service {
	return &Service{
		registry:  registry,
		orch:      NewOrchestrator(ctx, registry),
		team:      team,
		portfolio: portfolio,
		forecasts: forecasts,
	}
}

// TriggerTeamUpdate refreshes a team's throughput history. Reports whether
// the job was accepted.
func (s *Service) TriggerTeamUpdate(teamID int64) bool {
	key := schema.UpdateKey{UpdateType: schema.TeamUpdate, ID: teamID}
	return s.orch.Trigger(key, func(ctx context.Context) error {
		s.team.Invalidate(teamID)
		_, err := s.team.Throughput(ctx, teamID, nil, nil)
		return err
	})
}

// TriggerFeaturesUpdate refreshes a portfolio's feature metrics.
func (s *Service) TriggerFeaturesUpdate(portfolioID int64) bool {
	key := schema.UpdateKey{UpdateType: schema.FeaturesUpdate, ID: portfolioID}
	return s.orch.Trigger(key, func(ctx context.Context) error {
		s.portfolio.Invalidate(portfolioID)
		_, err := s.portfolio.FeatureThroughput(ctx, portfolioID, nil, nil)
		return err
	})
}

// TriggerForecastUpdate recomputes and persists all feature forecasts of a
// portfolio.
func (s *Service) TriggerForecastUpdate(portfolioID int64) bool {
	key := schema.UpdateKey{UpdateType: schema.ForecastsUpdate, ID: portfolioID}
	return s.orch.Trigger(key, func(ctx context.Context) error {
		return s.forecasts.RefreshPortfolioForecasts(ctx, portfolioID)
	})
}

// Trigger schedules an update of the given type. Unknown types are
// rejected, never scheduled.
func (s *Service) Trigger(updateType schema.UpdateType, id int64) bool {
	switch updateType {
	case schema.TeamUpdate:
		return s.TriggerTeamUpdate(id)
	case schema.FeaturesUpdate:
		return s.TriggerFeaturesUpdate(id)
	case schema.ForecastsUpdate:
		return s.TriggerForecastUpdate(id)
	default:
		return false
	}
}

// Status derives the poller-facing summary.
func (s *Service) Status() schema.UpdateStatusSummary {
	return s.registry.Summary()
}

// Active returns a snapshot of all queued or in-progress jobs.
func (s *Service) Active() []schema.UpdateStatus {
	return s.registry.GetActive()
}

// Wait blocks until all accepted jobs have finished. Used by one-shot CLI
// invocations so the process does not exit mid-job.
func (s *Service) Wait() {
	s.orch.Wait()
}
