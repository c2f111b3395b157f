package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/flowsignal/flowcast/core"
	"github.com/flowsignal/flowcast/internal/contract"
	"github.com/flowsignal/flowcast/internal/update"
	"github.com/flowsignal/flowcast/schema"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg   *contract.Config
	team      *core.TeamMetrics
	portfolio *core.PortfolioMetrics
	forecasts *core.ForecastService
	updates   *update.Service
}

// parseDateArg parses an optional YYYY-MM-DD tool argument.
func parseDateArg(request mcp.CallToolRequest, name string) (*time.Time, error) {
	raw := request.GetString(name, "")
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(contract.DateFormat, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return &parsed, nil
}

// parseWindowArgs parses the optional start/end arguments and rejects
// inverted windows before they reach the engines.
func parseWindowArgs(request mcp.CallToolRequest) (*time.Time, *time.Time, error) {
	start, err := parseDateArg(request, "start")
	if err != nil {
		return nil, nil, err
	}
	end, err := parseDateArg(request, "end")
	if err != nil {
		return nil, nil, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return nil, nil, fmt.Errorf("start %s is after end %s", start.Format(contract.DateFormat), end.Format(contract.DateFormat))
	}
	return start, end, nil
}

func (h *toolHandler) handleRunForecast(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID := int64(request.GetInt("team", 0))
	if teamID <= 0 {
		return mcp.NewToolResultError("team must be a positive ID"), nil
	}

	var remaining *int
	if r := request.GetInt("remaining", 0); r > 0 {
		remaining = &r
	}
	targetDate, err := parseDateArg(request, "target_date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if remaining == nil && targetDate == nil {
		return mcp.NewToolResultError("at least one of remaining or target_date is required"), nil
	}

	result, err := h.forecasts.RunManualForecast(ctx, teamID, remaining, targetDate)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("forecast failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(result, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetThroughputChart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID := int64(request.GetInt("team", 0))
	if teamID <= 0 {
		return mcp.NewToolResultError("team must be a positive ID"), nil
	}
	start, end, err := parseWindowArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var chart schema.ProcessBehaviourChart
	switch metric := schema.ChartMetric(request.GetString("metric", string(schema.ThroughputMetric))); metric {
	case schema.WIPMetric:
		chart, err = h.team.WIPChart(ctx, teamID, start, end)
	case schema.CycleTimeMetric:
		chart, err = h.team.CycleTimeChart(ctx, teamID, start, end)
	case schema.ThroughputMetric:
		chart, err = h.team.ThroughputChart(ctx, teamID, start, end)
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown chart metric: %s", metric)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("chart failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(chart, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetCycleTimePercentiles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID := int64(request.GetInt("team", 0))
	if teamID <= 0 {
		return mcp.NewToolResultError("team must be a positive ID"), nil
	}
	start, end, err := parseWindowArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	values, err := h.team.CycleTimePercentiles(ctx, teamID, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("percentiles failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(values, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleGetPredictability(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	teamID := int64(request.GetInt("team", 0))
	if teamID <= 0 {
		return mcp.NewToolResultError("team must be a positive ID"), nil
	}
	start, end, err := parseWindowArgs(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	score, err := h.team.Predictability(ctx, teamID, start, end)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("predictability failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(score, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleTriggerUpdate(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	updateType := schema.UpdateType(request.GetString("type", ""))
	id := int64(request.GetInt("id", 0))
	if id <= 0 {
		return mcp.NewToolResultError("id must be a positive ID"), nil
	}

	switch updateType {
	case schema.TeamUpdate, schema.FeaturesUpdate, schema.ForecastsUpdate:
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown update type: %s", updateType)), nil
	}

	accepted := h.updates.Trigger(updateType, id)
	status := "queued"
	if !accepted {
		status = "already_active"
	}
	return mcp.NewToolResultText(fmt.Sprintf(`{"key": "%s/%d", "status": "%s"}`, updateType, id, status)), nil
}

func (h *toolHandler) handleGetUpdateStatus(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := struct {
		Summary schema.UpdateStatusSummary `json:"summary"`
		Active  []schema.UpdateStatus      `json:"active"`
	}{
		Summary: h.updates.Status(),
		Active:  h.updates.Active(),
	}

	jsonData, _ := json.MarshalIndent(view, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}
