package iostore

import "github.com/flowsignal/flowcast/schema"

type tableQuery struct {
	name  string
	query string
}

// createTableQueries returns the CREATE TABLE statements for the backend.
// MySQL needs engine and key-length tweaks; SQLite and PostgreSQL share
// the portable form.
func createTableQueries(backend schema.DatabaseBackend) []tableQuery {
	timestamp := "TIMESTAMP NULL"
	if backend == schema.PostgreSQLBackend {
		timestamp = "TIMESTAMP"
	}

	return []tableQuery{
		{teamsTable, `CREATE TABLE IF NOT EXISTS ` + teamsTable + ` (
			id BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			throughput_history_days INT NOT NULL DEFAULT 30,
			use_fixed_throughput_dates BOOLEAN NOT NULL DEFAULT FALSE,
			throughput_start ` + timestamp + `,
			throughput_end ` + timestamp + `,
			baseline_start ` + timestamp + `,
			baseline_end ` + timestamp + `,
			feature_wip INT NOT NULL DEFAULT 1,
			sle_probability INT NOT NULL DEFAULT 0,
			sle_range_days INT NOT NULL DEFAULT 0
		)`},
		{portfoliosTable, `CREATE TABLE IF NOT EXISTS ` + portfoliosTable + ` (
			id BIGINT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			baseline_start ` + timestamp + `,
			baseline_end ` + timestamp + `
		)`},
		{workItemsTable, `CREATE TABLE IF NOT EXISTS ` + workItemsTable + ` (
			id BIGINT PRIMARY KEY,
			team_id BIGINT NOT NULL,
			state VARCHAR(16) NOT NULL,
			created_date ` + timestamp + `,
			started_date ` + timestamp + `,
			closed_date ` + timestamp + `
		)`},
		{featuresTable, `CREATE TABLE IF NOT EXISTS ` + featuresTable + ` (
			id BIGINT PRIMARY KEY,
			portfolio_id BIGINT NOT NULL,
			name VARCHAR(255) NOT NULL,
			size INT NOT NULL DEFAULT 0,
			state VARCHAR(16) NOT NULL,
			started_date ` + timestamp + `,
			closed_date ` + timestamp + `
		)`},
		{featureWorkTable, `CREATE TABLE IF NOT EXISTS ` + featureWorkTable + ` (
			feature_id BIGINT NOT NULL,
			team_id BIGINT NOT NULL,
			remaining_items INT NOT NULL DEFAULT 0,
			PRIMARY KEY (feature_id, team_id)
		)`},
		{featureForecastsTable, `CREATE TABLE IF NOT EXISTS ` + featureForecastsTable + ` (
			feature_id BIGINT NOT NULL,
			forecast_time ` + timestamp + `,
			percentile INT NOT NULL,
			expected_date ` + timestamp + `,
			PRIMARY KEY (feature_id, percentile)
		)`},
	}
}
