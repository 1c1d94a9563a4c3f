package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
)

type memStore struct {
	sessions map[uuid.UUID]*models.WorkoutSession
}

func newMemStore() *memStore {
	return &memStore{sessions: make(map[uuid.UUID]*models.WorkoutSession)}
}

func (m *memStore) CreateSession(_ context.Context, s *models.WorkoutSession) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memStore) FindSession(_ context.Context, id, userID uuid.UUID) (*models.WorkoutSession, error) {
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memStore) UpdateSession(_ context.Context, s *models.WorkoutSession) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func TestSessionLifecycle(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return started }

	userID := uuid.New()
	sess, err := svc.Start(context.Background(), userID, nil, models.Metadata{"queueLength": 5})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sess.Completed() {
		t.Error("new session reports completed")
	}

	_, err = svc.Update(context.Background(), sess.ID, userID, Progress{
		CurrentStep:     intPtr(2),
		ProgressPercent: floatPtr(40),
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	svc.now = func() time.Time { return started.Add(11 * time.Minute) }
	done, err := svc.Complete(context.Background(), sess.ID, userID, Outcome{
		TotalDurationSec: intPtr(600),
		CompletedSteps:   []string{"step-1", "step-2"},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if done.DurationSec == nil || *done.DurationSec != 600 {
		t.Errorf("DurationSec = %v, want 600", done.DurationSec)
	}
	if got := done.Metadata["queueLength"]; got != 5 {
		t.Errorf("metadata queueLength = %v, want 5", got)
	}
	if got := done.Metadata["current_step"]; got != 2 {
		t.Errorf("metadata current_step = %v, want 2", got)
	}
	if got := done.Metadata["progress_percent"]; got != 40.0 {
		t.Errorf("metadata progress_percent = %v, want 40", got)
	}
	steps, ok := done.Metadata["completed_steps"].([]string)
	if !ok || len(steps) != 2 {
		t.Errorf("metadata completed_steps = %v, want 2 entries", done.Metadata["completed_steps"])
	}
	if !done.Completed() {
		t.Error("completed session reports not completed")
	}
}

func TestCompleteDerivesDuration(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return started }

	userID := uuid.New()
	sess, err := svc.Start(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	svc.now = func() time.Time { return started.Add(7 * time.Minute) }
	done, err := svc.Complete(context.Background(), sess.ID, userID, Outcome{})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if done.DurationSec == nil || *done.DurationSec != 420 {
		t.Errorf("DurationSec = %v, want 420", done.DurationSec)
	}
}

func TestUpdateAfterCompleteRejected(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)
	userID := uuid.New()

	sess, err := svc.Start(context.Background(), userID, nil, nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if _, err := svc.Complete(context.Background(), sess.ID, userID, Outcome{}); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if _, err := svc.Update(context.Background(), sess.ID, userID, Progress{CurrentStep: intPtr(1)}); !errors.Is(err, ErrCompleted) {
		t.Errorf("Update() after complete error = %v, want ErrCompleted", err)
	}
	if _, err := svc.Complete(context.Background(), sess.ID, userID, Outcome{}); !errors.Is(err, ErrCompleted) {
		t.Errorf("second Complete() error = %v, want ErrCompleted", err)
	}
}

func TestSessionOwnership(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	owner := uuid.New()
	other := uuid.New()

	sess, err := svc.Start(context.Background(), owner, nil, nil)
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if _, err := svc.Get(context.Background(), sess.ID, other); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() as other user error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(context.Background(), sess.ID, other, Progress{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update() as other user error = %v, want ErrNotFound", err)
	}
}

func TestStartRequiresUser(t *testing.T) {
	svc := NewService(newMemStore())
	if _, err := svc.Start(context.Background(), uuid.Nil, nil, nil); err == nil {
		t.Error("Start() with nil user id succeeded, want error")
	}
}
