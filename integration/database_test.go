//go:build database

package integration

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestFlowcastWithMySQL tests the flowcast CLI with a MySQL backend.
func TestFlowcastWithMySQL(t *testing.T) {
	ctx := context.Background()

	// Start MySQL container
	req := testcontainers.ContainerRequest{
		Image:        "mysql:8",
		ExposedPorts: []string{"3306:3306/tcp"},
		Env: map[string]string{
			"MYSQL_ROOT_PASSWORD": "secret123",
			"MYSQL_DATABASE":      "flowcast",
		},
		WaitingFor: wait.ForLog("port: 3306  MySQL Community Server").WithStartupTimeout(30 * time.Second),
	}
	mysqlC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = mysqlC.Terminate(ctx) }()

	// Get connection details
	host, err := mysqlC.Host(ctx)
	require.NoError(t, err)
	port, err := mysqlC.MappedPort(ctx, "3306")
	require.NoError(t, err)

	connStr := fmt.Sprintf("root:secret123@tcp(%s:%s)/flowcast?parseTime=true", host, port.Port())

	// Set environment variables
	_ = os.Setenv("FLOWCAST_STORE_BACKEND", "mysql")
	_ = os.Setenv("FLOWCAST_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("FLOWCAST_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("FLOWCAST_STORE_DB_CONNECT") }()

	runFlowcastLifecycle(t)
}

// TestFlowcastWithPostgres tests the flowcast CLI with a PostgreSQL backend.
func TestFlowcastWithPostgres(t *testing.T) {
	ctx := context.Background()

	// Start Postgres container
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432:5432/tcp"},
		Env: map[string]string{
			"POSTGRES_HOST_AUTH_METHOD": "trust",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	pgC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	defer func() { _ = pgC.Terminate(ctx) }()
	time.Sleep(5 * time.Second)

	// Get connection details
	host, err := pgC.Host(ctx)
	require.NoError(t, err)
	port, err := pgC.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connStr := fmt.Sprintf("host=%s port=%s user=postgres dbname=postgres", host, port.Port())

	// Set environment variables
	_ = os.Setenv("FLOWCAST_STORE_BACKEND", "postgresql")
	_ = os.Setenv("FLOWCAST_STORE_DB_CONNECT", connStr)
	defer func() { _ = os.Unsetenv("FLOWCAST_STORE_BACKEND") }()
	defer func() { _ = os.Unsetenv("FLOWCAST_STORE_DB_CONNECT") }()

	runFlowcastLifecycle(t)
}

// runFlowcastLifecycle exercises seed, forecast, chart and status against the
// configured backend.
func runFlowcastLifecycle(t *testing.T) {
	t.Helper()

	// Start from a clean slate
	err := runFlowcastCommand(t, "store", "clear")
	require.NoError(t, err)

	// Load deterministic demo data
	err = runFlowcastCommand(t, "store", "seed")
	require.NoError(t, err)

	// Run a reproducible forecast against the seeded team
	err = runFlowcastCommand(t, "forecast", "--team", "1", "--remaining", "12", "--seed", "42")
	require.NoError(t, err)

	// Chart the seeded team's throughput
	err = runFlowcastCommand(t, "chart", "--team", "1")
	require.NoError(t, err)

	// Trigger a portfolio forecast refresh and confirm persistence
	err = runFlowcastCommand(t, "update", "trigger", "forecasts", "--portfolio", "1")
	require.NoError(t, err)

	err = runFlowcastCommand(t, "store", "status")
	require.NoError(t, err)
}

func runFlowcastCommand(t *testing.T, args ...string) error {
	flowcastPath := getFlowcastBinary()
	cmd := exec.Command(flowcastPath, args...)
	cmd.Dir = "../" // Run from project root
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Logf("Command failed: %s\nOutput: %s", cmd.String(), string(output))
		return err
	}
	return nil
}
