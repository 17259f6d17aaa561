package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Handler parses tool input, calls the service and formats the MCP result.
type Handler struct {
	service contextService
}

func NewHandler(service contextService) *Handler {
	return &Handler{
		service: service,
	}
}

func errorResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult("Error encoding response: " + err.Error())
	}
	return textResult(string(raw))
}

// GetSchemaTool returns the MCP tool handler for get_gymplan_schema.
func (h *Handler) GetSchemaTool() func(context.Context, *mcp.CallToolRequest, any) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, _ any) (*mcp.CallToolResult, any, error) {
		text, err := h.service.GetSchema(ctx)
		if err != nil {
			return errorResult("Error fetching schema: " + err.Error()), nil, nil
		}
		return textResult(text), nil, nil
	}
}

type ExerciseCatalogInput struct {
	MuscleGroup string `json:"muscle_group,omitempty" jsonschema:"Filter by muscle group (chest, back, legs, shoulders, arms, core, cardio, other)"`
}

// GetExerciseCatalogTool returns the MCP tool handler for get_exercise_catalog.
func (h *Handler) GetExerciseCatalogTool() func(context.Context, *mcp.CallToolRequest, ExerciseCatalogInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in ExerciseCatalogInput) (*mcp.CallToolResult, any, error) {
		exercises, err := h.service.ExerciseCatalog(ctx, in.MuscleGroup)
		if err != nil {
			return errorResult("Error fetching exercise catalog: " + err.Error()), nil, nil
		}
		return jsonResult(exercises), nil, nil
	}
}

type UserInput struct {
	UserID string `json:"user_id" jsonschema:"Id of the user, as known to the identity provider"`
}

// GetProgressSummaryTool returns the MCP tool handler for get_progress_summary.
func (h *Handler) GetProgressSummaryTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		progressCtx, err := h.service.ProgressSummary(ctx, in.UserID)
		if err != nil {
			return errorResult("Error fetching progress summary: " + err.Error()), nil, nil
		}
		return jsonResult(progressCtx), nil, nil
	}
}

// GetActivePlanTool returns the MCP tool handler for get_active_plan.
func (h *Handler) GetActivePlanTool() func(context.Context, *mcp.CallToolRequest, UserInput) (*mcp.CallToolResult, any, error) {
	return func(ctx context.Context, _ *mcp.CallToolRequest, in UserInput) (*mcp.CallToolResult, any, error) {
		plan, err := h.service.ActivePlan(ctx, in.UserID)
		if err != nil {
			return errorResult("Error fetching active plan: " + err.Error()), nil, nil
		}
		if plan == nil {
			return textResult("No active plan."), nil, nil
		}
		return jsonResult(plan), nil, nil
	}
}
