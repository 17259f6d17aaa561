package mcp

import (
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// NewServer builds an MCP server with gymplan tools: schema, exercise catalog,
// progress summary, active plan.
// Mounted on the main backend at /mcp and served over stdio by cmd/gymplan_mcp.
func NewServer(schemaRepo SchemaRepo, exercises catalogSearcher, summaries summaryProvider, planSource planReader) *mcp.Server {
	svc := NewContextService(schemaRepo, exercises, summaries, planSource)
	h := NewHandler(svc)
	s := mcp.NewServer(&mcp.Implementation{
		Name:    "gymplan-context",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_gymplan_schema",
		Description: "Returns the DB schema for gymplan tables (exercise_catalog, workout_plan, plan_workout, plan_workout_exercise, workout_log): table names, columns, types, nullable, default.",
	}, h.GetSchemaTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_exercise_catalog",
		Description: "Returns the exercise catalog (name, muscle group, equipment, description). Optional filter: muscle_group. Use when you need the exercises a generated plan can reference.",
	}, h.GetExerciseCatalogTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_progress_summary",
		Description: "Returns a user's progress summary (total completed workouts, recent activity, workouts per week, consistency tier) and the coaching context text built from it. Arg: user_id.",
	}, h.GetProgressSummaryTool())

	mcp.AddTool(s, &mcp.Tool{
		Name:        "get_active_plan",
		Description: "Returns a user's active workout plan with its ordered workouts and exercises. Arg: user_id.",
	}, h.GetActivePlanTool())

	return s
}

// NewHTTPHandler serves the given MCP server over streamable HTTP.
func NewHTTPHandler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
