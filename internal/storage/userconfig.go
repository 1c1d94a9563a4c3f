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

// GetProfile returns the user's fitness profile, or nil when none is stored.
func (db *DB) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := db.Pool.QueryRow(ctx, `
		SELECT height_cm, weight_kg, sex, fitness_level, goal
		FROM user_profile
		WHERE user_id = $1
	`, userID).Scan(&p.HeightCm, &p.WeightKg, &p.Sex, &p.FitnessLevel, &p.Goal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return &p, nil
}

// GetTrainerConfig returns the user's stored trainer settings bag, possibly
// empty. Defaults are applied downstream, never persisted here.
func (db *DB) GetTrainerConfig(ctx context.Context, userID uuid.UUID) (map[string]any, error) {
	var raw []byte
	err := db.Pool.QueryRow(ctx, `
		SELECT config
		FROM user_trainer_config
		WHERE user_id = $1
	`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]any{}, nil
		}
		return nil, fmt.Errorf("getting trainer config: %w", err)
	}

	cfg := map[string]any{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("decoding trainer config: %w", err)
		}
	}
	return cfg, nil
}

// UpsertTrainerConfig replaces the user's stored trainer settings bag.
func (db *DB) UpsertTrainerConfig(ctx context.Context, userID uuid.UUID, cfg map[string]any) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding trainer config: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO user_trainer_config (user_id, config)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET config = $2, updated_at = NOW()
	`, userID, raw)
	if err != nil {
		return fmt.Errorf("upserting trainer config: %w", err)
	}
	return nil
}
