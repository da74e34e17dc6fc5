package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler parses tool input, calls the service for its user and formats the MCP result.
type Handler struct {
	service contextService
	userID  int
}

func NewHandler(service contextService, userID int) *Handler {
	return &Handler{
		service: service,
		userID:  userID,
	}
}

type GoalsInput struct {
	Filter string `json:"filter,omitempty" jsonschema:"Which goals to return: all (default) or active"`
}

// GetGoalsTool returns the MCP tool handler for get_goals.
func (h *Handler) GetGoalsTool() func(context.Context, *mcp.CallToolRequest, GoalsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in GoalsInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.Goals(ctx, h.userID, in.Filter)
		if err != nil {
			return errorResult("Error fetching goals: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

type RecentWorkoutsInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"Max number of workouts to return (1-100, default 10)"`
}

// GetRecentWorkoutsTool returns the MCP tool handler for get_recent_workouts.
func (h *Handler) GetRecentWorkoutsTool() func(context.Context, *mcp.CallToolRequest, RecentWorkoutsInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in RecentWorkoutsInput) (*mcp.CallToolResult, any, error) {
		list, err := h.service.RecentWorkouts(ctx, h.userID, in.Limit)
		if err != nil {
			return errorResult("Error listing workouts: " + err.Error()), nil, nil
		}
		return jsonResult(list), nil, nil
	}
}

type DashboardInput struct {
	Days int `json:"days,omitempty" jsonschema:"Window size in days, today included (1-365, default 7)"`
}

// GetDashboardTool returns the MCP tool handler for get_dashboard.
func (h *Handler) GetDashboardTool() func(context.Context, *mcp.CallToolRequest, DashboardInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in DashboardInput) (*mcp.CallToolResult, any, error) {
		summary, err := h.service.Dashboard(ctx, h.userID, in.Days)
		if err != nil {
			return errorResult("Error building dashboard: " + err.Error()), nil, nil
		}
		return jsonResult(summary), nil, nil
	}
}

// GetReportModelTool returns the MCP tool handler for get_report_model.
func (h *Handler) GetReportModelTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		model, err := h.service.ReportModel(ctx, h.userID)
		if err != nil {
			return errorResult("Error building report: " + err.Error()), nil, nil
		}
		return jsonResult(model), nil, nil
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}
