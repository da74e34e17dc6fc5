// Package mcp exposes a user's fitness data to MCP clients (AI assistants, IDEs).
package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	log "github.com/sirupsen/logrus"

	"github.com/2beens/fitassist/internal/auth"
)

// NewServer builds an MCP server whose tools read the data of the given user:
// goals, recent workouts, dashboard summary and report data.
func NewServer(service contextService, userID int) *mcp.Server {
	h := NewHandler(service, userID)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "fitassist-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_goals",
		Description: "Returns the user's fitness goals with type, target, current value, progress (current/target), status and period. Optional filter: all (default) or active.",
	}, h.GetGoalsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_recent_workouts",
		Description: "Returns the user's latest logged workouts (date, exercise, duration in minutes, calories burned), newest first. Optional: limit (default 10).",
	}, h.GetRecentWorkoutsTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_dashboard",
		Description: "Returns the user's dashboard for the last N days: workouts and calories totals, per-day workout duration and calories, chats per day, BMI and goal status distribution. Optional: days (default 7).",
	}, h.GetDashboardTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_report_model",
		Description: "Returns the data of the user's fitness report: profile with BMI, goals, recent workouts and recent assistant conversations, formatted for display.",
	}, h.GetReportModelTool())

	return s
}

// NewHTTPHandler serves MCP over streamable HTTP. Each session is bound to the
// user whose authenticated request opened it.
func NewHTTPHandler(service contextService) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		userID, ok := auth.UserIDFromContext(r.Context())
		if !ok {
			log.Tracef("mcp: request without user, path: %s", r.URL.Path)
			return nil
		}
		return NewServer(service, userID)
	}, nil)
}
