package core

import (
	"context"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// ForecastService answers manual forecast requests and recomputes the
// persisted feature forecasts of a portfolio.
type ForecastService struct {
	store      contract.Store
	team       *TeamMetrics
	portfolio  *PortfolioMetrics
	forecaster *Forecaster
	workers    int
}

// NewForecastService wires the forecast service.
func NewForecastService(store contract.Store, team *TeamMetrics, portfolio *PortfolioMetrics, forecaster *Forecaster, workers int) *ForecastService {
	if workers <= 0 {
		workers = contract.DefaultWorkers
	}
	return &ForecastService{
		store:      store,
		team:       team,
		portfolio:  portfolio,
		forecaster: forecaster,
		workers:    workers,
	}
}

// RunManualForecast runs a user-triggered forecast against the team's
// throughput history. A nil targetDate leaves HowMany empty, a nil
// remaining leaves When empty, and Likelihood is only computed when both
// are present, via one joint simulation. No history yields empty but
// well-formed forecasts, never an error.
func (s *ForecastService) RunManualForecast(ctx context.Context, teamID int64, remaining *int, targetDate *time.Time) (schema.ManualForecast, error) {
	history, err := s.team.Throughput(ctx, teamID, nil, nil)
	if err != nil {
		return schema.ManualForecast{}, err
	}

	result := schema.ManualForecast{TargetDate: targetDate}
	days := 0
	if targetDate != nil {
		days = daysUntil(*targetDate)
		result.HowMany = s.forecaster.HowMany(history, days)
	}
	if remaining != nil {
		result.RemainingItems = *remaining
		result.When = s.forecaster.When(history, *remaining)
	}
	if targetDate != nil && remaining != nil {
		result.Likelihood = s.forecaster.Likelihood(history, *remaining, days)
	}
	return result, nil
}

// RefreshPortfolioForecasts recomputes and persists the when-forecast of
// every open feature in the portfolio. Features are forecast concurrently;
// within one feature every contributing team burns down its own share.
func (s *ForecastService) RefreshPortfolioForecasts(ctx context.Context, portfolioID int64) error {
	features, err := s.store.FeaturesForPortfolio(ctx, portfolioID)
	if err != nil {
		return err
	}

	histories := make(map[int64]schema.RunChart)
	for _, feature := range features {
		for _, work := range feature.Work {
			if _, ok := histories[work.TeamID]; ok {
				continue
			}
			history, err := s.team.Throughput(ctx, work.TeamID, nil, nil)
			if err != nil {
				return err
			}
			histories[work.TeamID] = history
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	now := time.Now().UTC()
	for _, feature := range features {
		if feature.State == schema.StateDone || feature.RemainingItems() <= 0 {
			continue
		}
		g.Go(func() error {
			loads := make([]TeamLoad, 0, len(feature.Work))
			for _, work := range feature.Work {
				loads = append(loads, TeamLoad{History: histories[work.TeamID], Remaining: work.RemainingItems})
			}
			forecast := s.forecaster.WhenAcross(loads)
			return s.store.SaveFeatureForecast(gctx, schema.FeatureForecast{
				FeatureID:    feature.ID,
				ForecastTime: now,
				Entries:      forecast.Entries,
			})
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	s.portfolio.Invalidate(portfolioID)
	return nil
}

// daysUntil returns the whole days from today until the target, rounding
// partial days up. Past targets yield non-positive values.
func daysUntil(target time.Time) int {
	return int(math.Ceil(target.UTC().Sub(Today()).Hours() / 24))
}
