package iostore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/flowsignal/flowcast/schema"
)

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// GetTeam returns the team with the given id.
func (s *SQLStore) GetTeam(ctx context.Context, id int64) (schema.Team, error) {
	if s.db == nil {
		return schema.Team{}, errStoreDisabled
	}
	query := s.rebind(`SELECT id, name, throughput_history_days, use_fixed_throughput_dates,
		throughput_start, throughput_end, baseline_start, baseline_end,
		feature_wip, sle_probability, sle_range_days
		FROM ` + teamsTable + ` WHERE id = ?`)

	var team schema.Team
	var tStart, tEnd, bStart, bEnd sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.ThroughputHistoryDays, &team.UseFixedThroughputDates,
		&tStart, &tEnd, &bStart, &bEnd,
		&team.FeatureWIP, &team.SLE.Probability, &team.SLE.RangeDays,
	)
	if err == sql.ErrNoRows {
		return schema.Team{}, fmt.Errorf("team %d not found", id)
	}
	if err != nil {
		return schema.Team{}, fmt.Errorf("failed to load team %d: %w", id, err)
	}
	team.ThroughputStart = timePtr(tStart)
	team.ThroughputEnd = timePtr(tEnd)
	team.BaselineStart = timePtr(bStart)
	team.BaselineEnd = timePtr(bEnd)
	return team, nil
}

// ListTeams returns all teams ordered by id.
func (s *SQLStore) ListTeams(ctx context.Context) ([]schema.Team, error) {
	if s.db == nil {
		return nil, errStoreDisabled
	}
	query := `SELECT id, name, throughput_history_days, use_fixed_throughput_dates,
		throughput_start, throughput_end, baseline_start, baseline_end,
		feature_wip, sle_probability, sle_range_days
		FROM ` + teamsTable + ` ORDER BY id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var teams []schema.Team
	for rows.Next() {
		var team schema.Team
		var tStart, tEnd, bStart, bEnd sql.NullTime
		if err := rows.Scan(
			&team.ID, &team.Name, &team.ThroughputHistoryDays, &team.UseFixedThroughputDates,
			&tStart, &tEnd, &bStart, &bEnd,
			&team.FeatureWIP, &team.SLE.Probability, &team.SLE.RangeDays,
		); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		team.ThroughputStart = timePtr(tStart)
		team.ThroughputEnd = timePtr(tEnd)
		team.BaselineStart = timePtr(bStart)
		team.BaselineEnd = timePtr(bEnd)
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// SaveTeam upserts a team, including its baseline settings.
func (s *SQLStore) SaveTeam(ctx context.Context, team schema.Team) error {
	if s.db == nil {
		return errStoreDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+teamsTable+` WHERE id = ?`), team.ID); err != nil {
		return fmt.Errorf("failed to replace team %d: %w", team.ID, err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+teamsTable+` (
		id, name, throughput_history_days, use_fixed_throughput_dates,
		throughput_start, throughput_end, baseline_start, baseline_end,
		feature_wip, sle_probability, sle_range_days
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		team.ID, team.Name, team.ThroughputHistoryDays, team.UseFixedThroughputDates,
		nullTime(team.ThroughputStart), nullTime(team.ThroughputEnd),
		nullTime(team.BaselineStart), nullTime(team.BaselineEnd),
		team.FeatureWIP, team.SLE.Probability, team.SLE.RangeDays,
	)
	if err != nil {
		return fmt.Errorf("failed to save team %d: %w", team.ID, err)
	}
	return tx.Commit()
}

// GetPortfolio returns the portfolio with the given id.
func (s *SQLStore) GetPortfolio(ctx context.Context, id int64) (schema.Portfolio, error) {
	if s.db == nil {
		return schema.Portfolio{}, errStoreDisabled
	}
	query := s.rebind(`SELECT id, name, baseline_start, baseline_end FROM ` + portfoliosTable + ` WHERE id = ?`)

	var p schema.Portfolio
	var bStart, bEnd sql.NullTime
	err := s.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.Name, &bStart, &bEnd)
	if err == sql.ErrNoRows {
		return schema.Portfolio{}, fmt.Errorf("portfolio %d not found", id)
	}
	if err != nil {
		return schema.Portfolio{}, fmt.Errorf("failed to load portfolio %d: %w", id, err)
	}
	p.BaselineStart = timePtr(bStart)
	p.BaselineEnd = timePtr(bEnd)
	return p, nil
}

// ListPortfolios returns all portfolios ordered by id.
func (s *SQLStore) ListPortfolios(ctx context.Context) ([]schema.Portfolio, error) {
	if s.db == nil {
		return nil, errStoreDisabled
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, baseline_start, baseline_end FROM `+portfoliosTable+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var portfolios []schema.Portfolio
	for rows.Next() {
		var p schema.Portfolio
		var bStart, bEnd sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &bStart, &bEnd); err != nil {
			return nil, fmt.Errorf("failed to scan portfolio: %w", err)
		}
		p.BaselineStart = timePtr(bStart)
		p.BaselineEnd = timePtr(bEnd)
		portfolios = append(portfolios, p)
	}
	return portfolios, rows.Err()
}

// SavePortfolio upserts a portfolio, including its baseline settings.
func (s *SQLStore) SavePortfolio(ctx context.Context, p schema.Portfolio) error {
	if s.db == nil {
		return errStoreDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+portfoliosTable+` WHERE id = ?`), p.ID); err != nil {
		return fmt.Errorf("failed to replace portfolio %d: %w", p.ID, err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+portfoliosTable+` (id, name, baseline_start, baseline_end) VALUES (?, ?, ?, ?)`),
		p.ID, p.Name, nullTime(p.BaselineStart), nullTime(p.BaselineEnd))
	if err != nil {
		return fmt.Errorf("failed to save portfolio %d: %w", p.ID, err)
	}
	return tx.Commit()
}

// SaveWorkItem upserts a single work item. Used by seeding and by tracker
// refresh jobs.
func (s *SQLStore) SaveWorkItem(ctx context.Context, item schema.WorkItem) error {
	if s.db == nil {
		return errStoreDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+workItemsTable+` WHERE id = ?`), item.ID); err != nil {
		return fmt.Errorf("failed to replace work item %d: %w", item.ID, err)
	}
	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+workItemsTable+` (id, team_id, state, created_date, started_date, closed_date) VALUES (?, ?, ?, ?, ?, ?)`),
		item.ID, item.TeamID, string(item.State), item.CreatedDate.UTC(), nullTime(item.StartedDate), nullTime(item.ClosedDate))
	if err != nil {
		return fmt.Errorf("failed to save work item %d: %w", item.ID, err)
	}
	return tx.Commit()
}

// WorkItemsForTeam returns all work items owned by the team.
func (s *SQLStore) WorkItemsForTeam(ctx context.Context, teamID int64) ([]schema.WorkItem, error) {
	if s.db == nil {
		return nil, errStoreDisabled
	}
	query := s.rebind(`SELECT id, team_id, state, created_date, started_date, closed_date FROM ` + workItemsTable + ` WHERE team_id = ? ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, query, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list work items for team %d: %w", teamID, err)
	}
	defer func() { _ = rows.Close() }()

	var items []schema.WorkItem
	for rows.Next() {
		var item schema.WorkItem
		var state string
		var created, started, closed sql.NullTime
		if err := rows.Scan(&item.ID, &item.TeamID, &state, &created, &started, &closed); err != nil {
			return nil, fmt.Errorf("failed to scan work item: %w", err)
		}
		item.State = schema.StateCategory(state)
		if created.Valid {
			item.CreatedDate = created.Time.UTC()
		}
		item.StartedDate = timePtr(started)
		item.ClosedDate = timePtr(closed)
		items = append(items, item)
	}
	return items, rows.Err()
}

// SaveFeature upserts a feature and its per-team work breakdown.
func (s *SQLStore) SaveFeature(ctx context.Context, feature schema.Feature) error {
	if s.db == nil {
		return errStoreDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+featuresTable+` WHERE id = ?`), feature.ID); err != nil {
		return fmt.Errorf("failed to replace feature %d: %w", feature.ID, err)
	}
	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+featureWorkTable+` WHERE feature_id = ?`), feature.ID); err != nil {
		return fmt.Errorf("failed to replace feature work for %d: %w", feature.ID, err)
	}

	_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+featuresTable+` (id, portfolio_id, name, size, state, started_date, closed_date) VALUES (?, ?, ?, ?, ?, ?, ?)`),
		feature.ID, feature.PortfolioID, feature.Name, feature.Size, string(feature.State),
		nullTime(feature.StartedDate), nullTime(feature.ClosedDate))
	if err != nil {
		return fmt.Errorf("failed to save feature %d: %w", feature.ID, err)
	}
	for _, work := range feature.Work {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+featureWorkTable+` (feature_id, team_id, remaining_items) VALUES (?, ?, ?)`),
			feature.ID, work.TeamID, work.RemainingItems)
		if err != nil {
			return fmt.Errorf("failed to save feature work for %d: %w", feature.ID, err)
		}
	}
	return tx.Commit()
}

// FeaturesForPortfolio returns all features of the portfolio with their
// per-team remaining work attached.
func (s *SQLStore) FeaturesForPortfolio(ctx context.Context, portfolioID int64) ([]schema.Feature, error) {
	if s.db == nil {
		return nil, errStoreDisabled
	}
	query := s.rebind(`SELECT id, portfolio_id, name, size, state, started_date, closed_date FROM ` + featuresTable + ` WHERE portfolio_id = ? ORDER BY id`)
	rows, err := s.db.QueryContext(ctx, query, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list features for portfolio %d: %w", portfolioID, err)
	}
	defer func() { _ = rows.Close() }()

	var features []schema.Feature
	index := make(map[int64]int)
	for rows.Next() {
		var f schema.Feature
		var state string
		var started, closed sql.NullTime
		if err := rows.Scan(&f.ID, &f.PortfolioID, &f.Name, &f.Size, &state, &started, &closed); err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		f.State = schema.StateCategory(state)
		f.StartedDate = timePtr(started)
		f.ClosedDate = timePtr(closed)
		index[f.ID] = len(features)
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	workQuery := s.rebind(`SELECT w.feature_id, w.team_id, w.remaining_items
		FROM ` + featureWorkTable + ` w
		JOIN ` + featuresTable + ` f ON f.id = w.feature_id
		WHERE f.portfolio_id = ? ORDER BY w.feature_id, w.team_id`)
	workRows, err := s.db.QueryContext(ctx, workQuery, portfolioID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature work for portfolio %d: %w", portfolioID, err)
	}
	defer func() { _ = workRows.Close() }()

	for workRows.Next() {
		var featureID int64
		var work schema.FeatureWork
		if err := workRows.Scan(&featureID, &work.TeamID, &work.RemainingItems); err != nil {
			return nil, fmt.Errorf("failed to scan feature work: %w", err)
		}
		if i, ok := index[featureID]; ok {
			features[i].Work = append(features[i].Work, work)
		}
	}
	return features, workRows.Err()
}

// SaveFeatureForecast replaces the persisted forecast for a feature.
func (s *SQLStore) SaveFeatureForecast(ctx context.Context, forecast schema.FeatureForecast) error {
	if s.db == nil {
		return errStoreDisabled
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`DELETE FROM `+featureForecastsTable+` WHERE feature_id = ?`), forecast.FeatureID); err != nil {
		return fmt.Errorf("failed to replace forecast for feature %d: %w", forecast.FeatureID, err)
	}
	for _, entry := range forecast.Entries {
		_, err = tx.ExecContext(ctx, s.rebind(`INSERT INTO `+featureForecastsTable+` (feature_id, forecast_time, percentile, expected_date) VALUES (?, ?, ?, ?)`),
			forecast.FeatureID, forecast.ForecastTime.UTC(), entry.Percentile, entry.ExpectedDate.UTC())
		if err != nil {
			return fmt.Errorf("failed to save forecast for feature %d: %w", forecast.FeatureID, err)
		}
	}
	return tx.Commit()
}

// ForecastSnapshots returns all persisted feature forecasts flattened to
// one row per percentile, for export.
func (s *SQLStore) ForecastSnapshots(ctx context.Context) ([]schema.ForecastSnapshotRecord, error) {
	if s.db == nil {
		return nil, errStoreDisabled
	}
	query := `SELECT fc.feature_id, f.name, f.portfolio_id, fc.forecast_time, fc.percentile, fc.expected_date
		FROM ` + featureForecastsTable + ` fc
		JOIN ` + featuresTable + ` f ON f.id = fc.feature_id
		ORDER BY fc.feature_id, fc.percentile`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list forecast snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []schema.ForecastSnapshotRecord
	for rows.Next() {
		var r schema.ForecastSnapshotRecord
		var forecastTime, expectedDate sql.NullTime
		if err := rows.Scan(&r.FeatureID, &r.FeatureName, &r.PortfolioID, &forecastTime, &r.Percentile, &expectedDate); err != nil {
			return nil, fmt.Errorf("failed to scan forecast snapshot: %w", err)
		}
		if forecastTime.Valid {
			r.ForecastTime = forecastTime.Time.UTC()
		}
		if expectedDate.Valid {
			r.ExpectedDate = expectedDate.Time.UTC()
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
