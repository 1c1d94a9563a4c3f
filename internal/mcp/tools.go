package mcp

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

// --- Tool definitions ---

var toolListWorkoutSteps = mcp.NewTool("list_workout_steps",
	mcp.WithDescription("List all exercise step definitions in the catalog, including exercise type (duration vs reps), default parameters, and instructions."),
)

var toolListWorkoutPackages = mcp.NewTool("list_workout_packages",
	mcp.WithDescription("List all workout packages (title, description, category, estimated duration) without their timelines."),
)

var toolGetWorkoutPackage = mcp.NewTool("get_workout_package",
	mcp.WithDescription("Get one workout package including its full timeline: ordered step references with per-occurrence overrides (sets, reps, weights, durations)."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Package ID (UUID)")),
)

var toolGetSessionHistory = mcp.NewTool("get_session_history",
	mcp.WithDescription("Get the authenticated user's workout sessions, most recent first, with timing and progress metadata."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of sessions to return. Defaults to 20.")),
)

var toolGetSessionStats = mcp.NewTool("get_session_stats",
	mcp.WithDescription("Aggregate stats over the authenticated user's sessions: totals, completion count, total and average duration."),
)

// --- Tool handlers ---

func (h *handlers) listWorkoutSteps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps, err := h.ds.ListSteps(ctx)
	if err != nil {
		h.log.Error("mcp list_workout_steps", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(steps)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) listWorkoutPackages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pkgs, err := h.ds.ListPackages(ctx)
	if err != nil {
		h.log.Error("mcp list_workout_packages", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(pkgs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutPackage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("id parameter is required"), nil
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("id must be a UUID"), nil
	}

	pkg, err := h.ds.GetPackage(ctx, id)
	if err != nil {
		h.log.Error("mcp get_workout_package", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(pkg)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", 20)

	sessions, err := h.ds.ListSessions(ctx, UserIDFromContext(ctx), limit)
	if err != nil {
		h.log.Error("mcp get_session_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sessions)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := h.ds.GetSessionStats(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_session_stats", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(stats)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) stepCatalog(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	steps, err := h.ds.ListSteps(ctx)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(steps)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
