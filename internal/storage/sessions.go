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

// CreateSession inserts a new workout session row.
func (db *DB) CreateSession(ctx context.Context, s *models.WorkoutSession) error {
	meta, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("encoding session metadata: %w", err)
	}

	_, err = db.Pool.Exec(ctx, `
		INSERT INTO user_workout_sessions (id, user_id, package_id, started_at, ended_at, duration_sec, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, s.ID, s.UserID, s.PackageID, s.StartedAt, s.EndedAt, s.DurationSec, meta)
	if err != nil {
		return fmt.Errorf("inserting session: %w", err)
	}
	return nil
}

// FindSession returns the session if it exists and belongs to the user.
// Missing row and wrong owner are both ErrNotFound.
func (db *DB) FindSession(ctx context.Context, id, userID uuid.UUID) (*models.WorkoutSession, error) {
	var (
		s    models.WorkoutSession
		meta []byte
	)
	err := db.Pool.QueryRow(ctx, `
		SELECT id, user_id, package_id, started_at, ended_at, duration_sec, metadata
		FROM user_workout_sessions
		WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(&s.ID, &s.UserID, &s.PackageID, &s.StartedAt, &s.EndedAt, &s.DurationSec, &meta)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("finding session: %w", err)
	}

	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &s.Metadata); err != nil {
			return nil, fmt.Errorf("decoding session metadata: %w", err)
		}
	}
	return &s, nil
}

// UpdateSession persists the mutable session fields.
func (db *DB) UpdateSession(ctx context.Context, s *models.WorkoutSession) error {
	meta, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("encoding session metadata: %w", err)
	}

	tag, err := db.Pool.Exec(ctx, `
		UPDATE user_workout_sessions
		SET ended_at = $3, duration_sec = $4, metadata = $5
		WHERE id = $1 AND user_id = $2
	`, s.ID, s.UserID, s.EndedAt, s.DurationSec, meta)
	if err != nil {
		return fmt.Errorf("updating session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session %s: %w", s.ID, ErrNotFound)
	}
	return nil
}

// ListSessions returns the user's sessions, most recent first.
func (db *DB) ListSessions(ctx context.Context, userID uuid.UUID, limit int) ([]models.WorkoutSession, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, package_id, started_at, ended_at, duration_sec, metadata
		FROM user_workout_sessions
		WHERE user_id = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.WorkoutSession
	for rows.Next() {
		var (
			s    models.WorkoutSession
			meta []byte
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.PackageID, &s.StartedAt, &s.EndedAt, &s.DurationSec, &meta); err != nil {
			return nil, fmt.Errorf("scanning session: %w", err)
		}
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &s.Metadata); err != nil {
				return nil, fmt.Errorf("decoding session metadata: %w", err)
			}
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading sessions: %w", err)
	}
	return sessions, nil
}

// SessionStats aggregates a user's completed workout sessions.
type SessionStats struct {
	TotalSessions     int     `json:"total_sessions"`
	CompletedSessions int     `json:"completed_sessions"`
	TotalDurationSec  int     `json:"total_duration_sec"`
	AvgDurationSec    float64 `json:"avg_duration_sec"`
}

// GetSessionStats computes aggregate stats over a user's sessions.
func (db *DB) GetSessionStats(ctx context.Context, userID uuid.UUID) (*SessionStats, error) {
	var stats SessionStats
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE ended_at IS NOT NULL),
		       COALESCE(SUM(duration_sec), 0),
		       COALESCE(AVG(duration_sec), 0)
		FROM user_workout_sessions
		WHERE user_id = $1
	`, userID).Scan(&stats.TotalSessions, &stats.CompletedSessions, &stats.TotalDurationSec, &stats.AvgDurationSec)
	if err != nil {
		return nil, fmt.Errorf("computing session stats: %w", err)
	}
	return &stats, nil
}
