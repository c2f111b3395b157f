// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/flowsignal/flowcast/core"
	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/internal/update"
)

// NewMCPServer initializes and configures the Flowcast MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, team *core.TeamMetrics, portfolio *core.PortfolioMetrics, forecasts *core.ForecastService, updates *update.Service) *server.MCPServer {
	s := server.NewMCPServer(
		"Flowcast Forecasting Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg:   baseCfg,
		team:      team,
		portfolio: portfolio,
		forecasts: forecasts,
		updates:   updates,
	}

	// --- 1. Tool: run_forecast ---
	s.AddTool(mcp.NewTool("run_forecast",
		mcp.WithDescription("Run a Monte Carlo forecast for a team: how many items in a window, when remaining items finish, or both."),
		mcp.WithNumber("team", mcp.Description("Team ID to forecast for."), mcp.Required()),
		mcp.WithNumber("remaining", mcp.Description("Remaining item count for a 'when' forecast.")),
		mcp.WithString("target_date", mcp.Description("Target date (YYYY-MM-DD) for a 'how many' forecast.")),
	), h.handleRunForecast)

	// --- 2. Tool: get_throughput_chart ---
	s.AddTool(mcp.NewTool("get_throughput_chart",
		mcp.WithDescription("Compute a process behaviour chart (XmR) over a team's daily throughput, WIP, or per-item cycle times."),
		mcp.WithNumber("team", mcp.Description("Team ID to chart."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Window start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end date (YYYY-MM-DD).")),
		mcp.WithString("metric", mcp.Description("Chart metric, throughput by default."), mcp.Enum("throughput", "wip", "cycletime")),
	), h.handleGetThroughputChart)

	// --- 3. Tool: get_cycle_time_percentiles ---
	s.AddTool(mcp.NewTool("get_cycle_time_percentiles",
		mcp.WithDescription("Compute cycle time percentiles for items a team closed in a window."),
		mcp.WithNumber("team", mcp.Description("Team ID to summarize."), mcp.Required()),
		mcp.WithString("start", mcp.Description("Window start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("Window end date (YYYY-MM-DD).")),
	), h.handleGetCycleTimePercentiles)

	// --- 4. Tool: get_predictability ---
	s.AddTool(mcp.NewTool("get_predictability",
		mcp.WithDescription("Back-test past forecasts against actual throughput and score forecast calibration."),
		mcp.WithNumber("team", mcp.Description("Team ID to score."), mcp.Required()),
		mcp.WithString("start", mcp.Description("History start date (YYYY-MM-DD).")),
		mcp.WithString("end", mcp.Description("History end date (YYYY-MM-DD).")),
	), h.handleGetPredictability)

	// --- 5. Tool: trigger_update ---
	s.AddTool(mcp.NewTool("trigger_update",
		mcp.WithDescription("Queue a background refresh for a team, a portfolio's features, or a portfolio's forecasts."),
		mcp.WithString("type", mcp.Description("Kind of update to run."), mcp.Required(), mcp.Enum("team", "features", "forecasts")),
		mcp.WithNumber("id", mcp.Description("Team or portfolio ID the update targets."), mcp.Required()),
	), h.handleTriggerUpdate)

	// --- 6. Tool: get_update_status ---
	s.AddTool(mcp.NewTool("get_update_status",
		mcp.WithDescription("Report whether background updates are active, with the active entries."),
	), h.handleGetUpdateStatus)

	return s
}

// StartMCPServer starts the Flowcast MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, team *core.TeamMetrics, portfolio *core.PortfolioMetrics, forecasts *core.ForecastService, updates *update.Service) error {
	s := NewMCPServer(baseCfg, team, portfolio, forecasts, updates)
	return server.ServeStdio(s)
}
