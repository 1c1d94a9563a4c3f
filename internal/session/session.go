// Package session tracks the lifecycle of a user's workout playback session:
// start, progress updates and completion, with a merged metadata bag.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
)

// ErrNotFound covers both a missing session and a session owned by another
// user; callers cannot distinguish the two.
var ErrNotFound = errors.New("workout session not found")

// ErrCompleted rejects mutations on a session that already ended.
var ErrCompleted = errors.New("workout session already completed")

// Store is the persistence contract for sessions. Reads and writes are scoped
// by (id, userID); Find must return ErrNotFound (possibly wrapped) when no
// session with that id belongs to that user.
type Store interface {
	CreateSession(ctx context.Context, s *models.WorkoutSession) error
	FindSession(ctx context.Context, id, userID uuid.UUID) (*models.WorkoutSession, error)
	UpdateSession(ctx context.Context, s *models.WorkoutSession) error
}

// Progress is a client-reported mid-workout update.
type Progress struct {
	CurrentStep     *int            `json:"current_step,omitempty"`
	ProgressPercent *float64        `json:"progress_percent,omitempty"`
	Extra           models.Metadata `json:"metadata,omitempty"`
}

// Outcome is the client-reported result of a finished workout.
type Outcome struct {
	TotalDurationSec *int            `json:"total_duration_sec,omitempty"`
	CompletedSteps   []string        `json:"completed_steps,omitempty"`
	Effort           *int            `json:"effort,omitempty"`
	Mood             *int            `json:"mood,omitempty"`
	UserMetrics      models.Metadata `json:"user_metrics,omitempty"`
}

// Service is the session state machine over a Store.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Start creates a session for the user, stamped with the current time and the
// caller's initial metadata. EndedAt stays unset until Complete.
func (s *Service) Start(ctx context.Context, userID uuid.UUID, packageID *uuid.UUID, initial models.Metadata) (*models.WorkoutSession, error) {
	if userID == uuid.Nil {
		return nil, fmt.Errorf("user id is required")
	}

	sess := &models.WorkoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		PackageID: packageID,
		StartedAt: s.now().UTC(),
		Metadata:  initial.Clone(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	return sess, nil
}

// Update merges a progress patch into the session's metadata. The bag is
// only ever merged into, never replaced; keys absent from the patch survive.
// Updates on a completed session fail with ErrCompleted.
func (s *Service) Update(ctx context.Context, sessionID, userID uuid.UUID, patch Progress) (*models.WorkoutSession, error) {
	sess, err := s.store.FindSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.Completed() {
		return nil, ErrCompleted
	}

	if sess.Metadata == nil {
		sess.Metadata = models.Metadata{}
	}
	if patch.CurrentStep != nil {
		sess.Metadata["current_step"] = *patch.CurrentStep
	}
	if patch.ProgressPercent != nil {
		sess.Metadata["progress_percent"] = *patch.ProgressPercent
	}
	sess.Metadata.Merge(patch.Extra)

	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("updating session: %w", err)
	}
	return sess, nil
}

// Complete moves the session to its terminal state. The canonical duration
// rule: the client-reported TotalDurationSec is authoritative when supplied;
// otherwise the duration derives from the start and end timestamps. Outcome
// fields merge into metadata. Completing twice fails with ErrCompleted.
func (s *Service) Complete(ctx context.Context, sessionID, userID uuid.UUID, outcome Outcome) (*models.WorkoutSession, error) {
	sess, err := s.store.FindSession(ctx, sessionID, userID)
	if err != nil {
		return nil, err
	}
	if sess.Completed() {
		return nil, ErrCompleted
	}

	endedAt := s.now().UTC()
	sess.EndedAt = &endedAt

	var durationSec int
	if outcome.TotalDurationSec != nil {
		durationSec = *outcome.TotalDurationSec
	} else {
		durationSec = int(endedAt.Sub(sess.StartedAt).Seconds())
	}
	sess.DurationSec = &durationSec

	if sess.Metadata == nil {
		sess.Metadata = models.Metadata{}
	}
	sess.Metadata["duration_sec"] = durationSec
	if outcome.CompletedSteps != nil {
		sess.Metadata["completed_steps"] = outcome.CompletedSteps
	}
	if outcome.Effort != nil {
		sess.Metadata["effort"] = *outcome.Effort
	}
	if outcome.Mood != nil {
		sess.Metadata["mood"] = *outcome.Mood
	}
	sess.Metadata.Merge(outcome.UserMetrics)

	if err := s.store.UpdateSession(ctx, sess); err != nil {
		return nil, fmt.Errorf("completing session: %w", err)
	}
	return sess, nil
}

// Get returns the session if it exists and belongs to the user.
func (s *Service) Get(ctx context.Context, sessionID, userID uuid.UUID) (*models.WorkoutSession, error) {
	return s.store.FindSession(ctx, sessionID, userID)
}
