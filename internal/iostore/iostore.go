// Package iostore persists teams, portfolios, work items, features and
// forecasts in a SQL store with pluggable backends.
package iostore

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/schema"
)

// Table names.
const (
	teamsTable            = "flowcast_teams"
	portfoliosTable       = "flowcast_portfolios"
	workItemsTable        = "flowcast_work_items"
	featuresTable         = "flowcast_features"
	featureWorkTable      = "flowcast_feature_work"
	featureForecastsTable = "flowcast_feature_forecasts"
)

// SQLStore implements contract.Store on database/sql.
type SQLStore struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.Store = &SQLStore{} // Compile-time check

// NewStore initializes a store for the given backend. The NoneBackend
// returns a connectionless store whose operations fail; it exists so
// commands that never touch persistence can still construct their wiring.
func NewStore(backend schema.DatabaseBackend, connStr string) (*SQLStore, error) {
	var db *sql.DB
	var err error

	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetStoreDBFilePath()
		}
		db, err = sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite store at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err = sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=mysecretpassword dbname=postgres
		db, err = sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}

	case schema.NoneBackend:
		return &SQLStore{db: nil, backend: backend}, nil

	default:
		return nil, fmt.Errorf("unsupported store backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database. Check that the server is running and connection parameters are valid: %w", backend, err)
	}

	if err := createTables(db, backend); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLStore{db: db, backend: backend}, nil
}

// createTables creates the store tables when missing.
func createTables(db *sql.DB, backend schema.DatabaseBackend) error {
	for _, table := range createTableQueries(backend) {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *SQLStore) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// GetStatus returns connectivity and row-count information.
func (s *SQLStore) GetStatus(ctx context.Context) (schema.StoreStatus, error) {
	status := schema.StoreStatus{Backend: string(s.backend)}
	if s.db == nil {
		return status, nil
	}
	if err := s.db.PingContext(ctx); err != nil {
		return status, nil
	}
	status.Connected = true

	counts := []struct {
		table string
		dest  *int
	}{
		{teamsTable, &status.Teams},
		{portfoliosTable, &status.Portfolios},
		{workItemsTable, &status.WorkItems},
		{featuresTable, &status.Features},
	}
	for _, c := range counts {
		// Table names are compile-time constants.
		if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+c.table).Scan(c.dest); err != nil {
			return status, fmt.Errorf("failed to count rows in %s: %w", c.table, err)
		}
	}

	var last sql.NullTime
	if err := s.db.QueryRowContext(ctx, "SELECT MAX(forecast_time) FROM "+featureForecastsTable).Scan(&last); err == nil && last.Valid {
		status.LastForecastAt = last.Time
	}
	return status, nil
}

// Clear drops all rows from every store table.
func (s *SQLStore) Clear(ctx context.Context) error {
	if s.db == nil {
		return errStoreDisabled
	}
	for _, table := range []string{featureForecastsTable, featureWorkTable, featuresTable, workItemsTable, portfoliosTable, teamsTable} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

var errStoreDisabled = fmt.Errorf("store backend is disabled (backend none)")

// rebind rewrites ? placeholders to the backend's positional style.
func (s *SQLStore) rebind(query string) string {
	if s.backend != schema.PostgreSQLBackend {
		return query
	}
	out := make([]byte, 0, len(query)+8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			out = append(out, fmt.Sprintf("$%d", n)...)
			continue
		}
		out = append(out, query[i])
	}
	return string(out)
}
