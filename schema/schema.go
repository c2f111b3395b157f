// Package schema defines the shared data types for flowcast.
package schema

// OutputMode controls how results are rendered.
type OutputMode string

// Supported output modes.
const (
	TextOut    OutputMode = "text"
	CSVOut     OutputMode = "csv"
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// DatabaseBackend identifies the persistent store implementation.
type DatabaseBackend string

// Supported database backends.
const (
	SQLiteBackend     DatabaseBackend = "sqlite"
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	NoneBackend       DatabaseBackend = "none"
)

// ValidOutputModes is the set of accepted output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	TextOut:    {},
	CSVOut:     {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends is the set of accepted database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	NoneBackend:       {},
}

// ChartMetric selects which series a team chart is computed over.
type ChartMetric string

// Supported chart metrics.
const (
	ThroughputMetric ChartMetric = "throughput"
	WIPMetric        ChartMetric = "wip"
	CycleTimeMetric  ChartMetric = "cycletime"
)

// ValidChartMetrics is the set of accepted chart metrics.
var ValidChartMetrics = map[ChartMetric]struct{}{
	ThroughputMetric: {},
	WIPMetric:        {},
	CycleTimeMetric:  {},
}

// DefaultPercentiles is the fixed percentile set used for forecasts and
// distribution summaries.
var DefaultPercentiles = []int{50, 70, 85, 95}
