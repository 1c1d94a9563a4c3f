package mcp

import (
	"context"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
	"github.com/meltforce/voicecoach/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB (local)
// and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	ListSteps(ctx context.Context) ([]models.StepDefinition, error)
	ListPackages(ctx context.Context) ([]models.WorkoutPackage, error)
	GetPackage(ctx context.Context, id uuid.UUID) (*models.WorkoutPackage, error)
	ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.WorkoutSession, error)
	GetSessionStats(ctx context.Context, userID uuid.UUID) (*storage.SessionStats, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
