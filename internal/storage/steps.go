package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
)

// ListSteps returns the full exercise catalog ordered by title.
func (db *DB) ListSteps(ctx context.Context) ([]models.StepDefinition, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, description, instructions, category, media_url,
		       exercise_type, estimated_duration_sec,
		       default_reps, default_duration_sec, default_weight_kg, default_distance_m
		FROM workout_steps
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("listing steps: %w", err)
	}
	defer rows.Close()

	return scanSteps(rows)
}

// GetStepsByIDs returns the catalog entries for the given ids. Missing ids are
// simply absent from the result; timeline resolution reports them.
func (db *DB) GetStepsByIDs(ctx context.Context, ids []uuid.UUID) ([]models.StepDefinition, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, description, instructions, category, media_url,
		       exercise_type, estimated_duration_sec,
		       default_reps, default_duration_sec, default_weight_kg, default_distance_m
		FROM workout_steps
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("getting steps: %w", err)
	}
	defer rows.Close()

	return scanSteps(rows)
}

// UpsertStep inserts or replaces a catalog entry. Returns true when the row
// was newly inserted.
func (db *DB) UpsertStep(ctx context.Context, s models.StepDefinition) (bool, error) {
	var inserted bool
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO workout_steps (id, title, description, instructions, category, media_url,
		 exercise_type, estimated_duration_sec,
		 default_reps, default_duration_sec, default_weight_kg, default_distance_m)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		ON CONFLICT (id) DO UPDATE SET
			title = $2, description = $3, instructions = $4, category = $5, media_url = $6,
			exercise_type = $7, estimated_duration_sec = $8,
			default_reps = $9, default_duration_sec = $10, default_weight_kg = $11, default_distance_m = $12
		RETURNING (xmax = 0)
	`, s.ID, s.Title, s.Description, s.Instructions, s.Category, s.MediaURL,
		s.ExerciseType, s.EstimatedDurationSec,
		s.DefaultReps, s.DefaultDurationSec, s.DefaultWeightKg, s.DefaultDistanceM).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upserting step: %w", err)
	}
	return inserted, nil
}

type stepRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanSteps(rows stepRows) ([]models.StepDefinition, error) {
	var steps []models.StepDefinition
	for rows.Next() {
		var s models.StepDefinition
		if err := rows.Scan(&s.ID, &s.Title, &s.Description, &s.Instructions, &s.Category,
			&s.MediaURL, &s.ExerciseType, &s.EstimatedDurationSec,
			&s.DefaultReps, &s.DefaultDurationSec, &s.DefaultWeightKg, &s.DefaultDistanceM); err != nil {
			return nil, fmt.Errorf("scanning step: %w", err)
		}
		steps = append(steps, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading steps: %w", err)
	}
	return steps, nil
}
