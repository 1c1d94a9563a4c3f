package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/voicecoach/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// GetPackage returns a workout package with its timeline. The timeline column
// is JSONB holding the mixed bare-id / override-object entry array.
func (db *DB) GetPackage(ctx context.Context, id uuid.UUID) (*models.WorkoutPackage, error) {
	var (
		pkg      models.WorkoutPackage
		timeline []byte
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT id, title, description, category, estimated_duration_sec, timeline
		FROM workout_packages
		WHERE id = $1
	`, id).Scan(&pkg.ID, &pkg.Title, &pkg.Description, &pkg.Category, &pkg.EstimatedDurationSec, &timeline)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("package %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("getting package: %w", err)
	}

	if len(timeline) > 0 {
		if err := json.Unmarshal(timeline, &pkg.Timeline); err != nil {
			return nil, fmt.Errorf("decoding package timeline: %w", err)
		}
	}
	return &pkg, nil
}

// UpsertPackage inserts or replaces a workout package. Returns true when the
// row was newly inserted.
func (db *DB) UpsertPackage(ctx context.Context, p models.WorkoutPackage) (bool, error) {
	timeline, err := json.Marshal(p.Timeline)
	if err != nil {
		return false, fmt.Errorf("encoding package timeline: %w", err)
	}

	var inserted bool
	err = db.Pool.QueryRow(ctx, `
		INSERT INTO workout_packages (id, title, description, category, estimated_duration_sec, timeline)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (id) DO UPDATE SET
			title = $2, description = $3, category = $4, estimated_duration_sec = $5, timeline = $6
		RETURNING (xmax = 0)
	`, p.ID, p.Title, p.Description, p.Category, p.EstimatedDurationSec, timeline).Scan(&inserted)
	if err != nil {
		return false, fmt.Errorf("upserting package: %w", err)
	}
	return inserted, nil
}

// ListPackages returns all workout packages without their timelines.
func (db *DB) ListPackages(ctx context.Context) ([]models.WorkoutPackage, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, title, description, category, estimated_duration_sec
		FROM workout_packages
		ORDER BY title
	`)
	if err != nil {
		return nil, fmt.Errorf("listing packages: %w", err)
	}
	defer rows.Close()

	var pkgs []models.WorkoutPackage
	for rows.Next() {
		var p models.WorkoutPackage
		if err := rows.Scan(&p.ID, &p.Title, &p.Description, &p.Category, &p.EstimatedDurationSec); err != nil {
			return nil, fmt.Errorf("scanning package: %w", err)
		}
		pkgs = append(pkgs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading packages: %w", err)
	}
	return pkgs, nil
}
