package mcp

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(userIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("VoiceCoach", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("VoiceCoach workout content server. Browse the exercise catalog, inspect workout packages and their timelines, and review a user's session history and stats. All session data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolListWorkoutSteps, Handler: h.listWorkoutSteps},
		server.ServerTool{Tool: toolListWorkoutPackages, Handler: h.listWorkoutPackages},
		server.ServerTool{Tool: toolGetWorkoutPackage, Handler: h.getWorkoutPackage},
		server.ServerTool{Tool: toolGetSessionHistory, Handler: h.getSessionHistory},
		server.ServerTool{Tool: toolGetSessionStats, Handler: h.getSessionStats},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resStepCatalog, Handler: h.stepCatalog},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

var resStepCatalog = mcp.NewResource(
	"voicecoach://step_catalog",
	"Step Catalog",
	mcp.WithResourceDescription("All exercise step definitions with types, default parameters, and instructions"),
	mcp.WithMIMEType("application/json"),
)
