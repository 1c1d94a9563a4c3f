package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/audioseg"
	"github.com/meltforce/voicecoach/internal/generator"
	"github.com/meltforce/voicecoach/internal/models"
	"github.com/meltforce/voicecoach/internal/session"
	"github.com/meltforce/voicecoach/internal/speech"
	"github.com/meltforce/voicecoach/internal/storage"
)

const testAPIKey = "test-key"

type fakeCatalog struct {
	steps []models.StepDefinition
	pkgs  []models.WorkoutPackage
}

func (f *fakeCatalog) ListSteps(_ context.Context) ([]models.StepDefinition, error) {
	return f.steps, nil
}

func (f *fakeCatalog) ListPackages(_ context.Context) ([]models.WorkoutPackage, error) {
	return f.pkgs, nil
}

func (f *fakeCatalog) GetPackage(_ context.Context, id uuid.UUID) (*models.WorkoutPackage, error) {
	for i := range f.pkgs {
		if f.pkgs[i].ID == id {
			return &f.pkgs[i], nil
		}
	}
	return nil, fmt.Errorf("package %s: %w", id, storage.ErrNotFound)
}

func (f *fakeCatalog) ListSessions(_ context.Context, _ uuid.UUID, _ int) ([]models.WorkoutSession, error) {
	return nil, nil
}

func (f *fakeCatalog) GetSessionStats(_ context.Context, _ uuid.UUID) (*storage.SessionStats, error) {
	return &storage.SessionStats{}, nil
}

type fakeGenerator struct {
	queue []models.AudioQueueItem
	err   error
}

func (f *fakeGenerator) Generate(_ context.Context, _, _ uuid.UUID) ([]models.AudioQueueItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.queue, nil
}

type memSessionStore struct {
	sessions map[uuid.UUID]*models.WorkoutSession
}

func (m *memSessionStore) CreateSession(_ context.Context, s *models.WorkoutSession) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func (m *memSessionStore) FindSession(_ context.Context, id, userID uuid.UUID) (*models.WorkoutSession, error) {
	s, ok := m.sessions[id]
	if !ok || s.UserID != userID {
		return nil, session.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *memSessionStore) UpdateSession(_ context.Context, s *models.WorkoutSession) error {
	cp := *s
	m.sessions[s.ID] = &cp
	return nil
}

func newTestServer(catalog Catalog, gen Generator, synth speech.Synthesizer) *Server {
	if catalog == nil {
		catalog = &fakeCatalog{}
	}
	if gen == nil {
		gen = &fakeGenerator{}
	}
	if synth == nil {
		synth = &speech.MockSynthesizer{}
	}
	sessions := session.NewService(&memSessionStore{sessions: make(map[uuid.UUID]*models.WorkoutSession)})
	return New(catalog, gen, sessions, synth, testAPIKey, slog.New(slog.DiscardHandler))
}

func doJSON(t *testing.T, s *Server, method, path string, userID uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-API-Key", testAPIKey)
	req.Header.Set("X-User-ID", userID.String())
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestGenerateAudioEndpoint(t *testing.T) {
	gen := &fakeGenerator{queue: []models.AudioQueueItem{
		{Order: 1, IntroAudioBlob: "aGk=", StartAudioBlob: "Z28=", CueAudioBlobs: []string{}},
		{Order: 2, IntroAudioBlob: "aGk=", StartAudioBlob: "Z28=", CueAudioBlobs: []string{}},
	}}
	s := newTestServer(nil, gen, nil)
	pkgID := uuid.New()

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workout/generate-audio", uuid.New(),
		map[string]string{"package_id": pkgID.String()})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var resp generateAudioResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.PackageID != pkgID {
		t.Errorf("package_id = %s, want %s", resp.PackageID, pkgID)
	}
	if len(resp.AudioQueue) != 2 {
		t.Errorf("len(audio_queue) = %d, want 2", len(resp.AudioQueue))
	}
}

func TestGenerateAudioMissingPackage(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/workout/generate-audio", uuid.New(), map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestGenerateAudioConfigurationError(t *testing.T) {
	gen := &fakeGenerator{err: &generator.ConfigurationError{Field: "speaking_rate", Message: "3 outside [0.5, 2]"}}
	s := newTestServer(nil, gen, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workout/generate-audio", uuid.New(),
		map[string]string{"package_id": uuid.New().String()})

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body)
	}
}

func TestGenerateAudioProviderFailure(t *testing.T) {
	gen := &fakeGenerator{err: &speech.SynthesisError{Provider: "elevenlabs", Err: fmt.Errorf("upstream 500")}}
	s := newTestServer(nil, gen, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workout/generate-audio", uuid.New(),
		map[string]string{"package_id": uuid.New().String()})

	if rec.Code != http.StatusBadGateway {
		t.Errorf("status = %d, want 502: %s", rec.Code, rec.Body)
	}
}

func TestSessionEndpoints(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	userID := uuid.New()

	rec := doJSON(t, s, http.MethodPost, "/api/v1/workout/session/start", userID,
		map[string]any{"metadata": map[string]any{"queueLength": 5}})
	if rec.Code != http.StatusCreated {
		t.Fatalf("start status = %d, want 201: %s", rec.Code, rec.Body)
	}
	var sess models.WorkoutSession
	if err := json.NewDecoder(rec.Body).Decode(&sess); err != nil {
		t.Fatalf("decode error: %v", err)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/workout/session/update", userID,
		map[string]any{"session_id": sess.ID.String(), "current_step": 2, "progress_percent": 40})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want 200: %s", rec.Code, rec.Body)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/workout/session/complete", userID,
		map[string]any{"session_id": sess.ID.String(), "total_duration_sec": 600})
	if rec.Code != http.StatusOK {
		t.Fatalf("complete status = %d, want 200: %s", rec.Code, rec.Body)
	}
	var done models.WorkoutSession
	if err := json.NewDecoder(rec.Body).Decode(&done); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if done.DurationSec == nil || *done.DurationSec != 600 {
		t.Errorf("duration_sec = %v, want 600", done.DurationSec)
	}
	if done.Metadata["queueLength"] != float64(5) {
		t.Errorf("metadata queueLength = %v, want 5", done.Metadata["queueLength"])
	}

	// Mutating a completed session conflicts.
	rec = doJSON(t, s, http.MethodPost, "/api/v1/workout/session/update", userID,
		map[string]any{"session_id": sess.ID.String(), "current_step": 3})
	if rec.Code != http.StatusConflict {
		t.Errorf("update after complete status = %d, want 409", rec.Code)
	}

	// Another user cannot see the session.
	rec = doJSON(t, s, http.MethodGet, "/api/v1/workout/sessions/"+sess.ID.String(), uuid.New(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("foreign get status = %d, want 404", rec.Code)
	}
}

func TestGetPackageNotFound(t *testing.T) {
	s := newTestServer(&fakeCatalog{}, nil, nil)
	rec := doJSON(t, s, http.MethodGet, "/api/v1/workout/packages/"+uuid.New().String(), uuid.New(), nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404: %s", rec.Code, rec.Body)
	}
}

func TestTTSGenerate(t *testing.T) {
	const rate = 22050
	samples := make([]int, rate/2)
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/rate))
	}
	wavData, err := audioseg.EncodePCM16(samples, rate, 1)
	if err != nil {
		t.Fatal(err)
	}

	synth := &speech.MockSynthesizer{Render: func(string) []byte { return wavData }}
	s := newTestServer(nil, nil, synth)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/tts/generate", uuid.New(),
		map[string]string{"text": "Take a deep breath."})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body)
	}

	var resp ttsGenerateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if resp.AudioBlob == "" {
		t.Error("audio_blob is empty")
	}
	if resp.DurationSec < 0.4 || resp.DurationSec > 0.6 {
		t.Errorf("duration_sec = %g, want ~0.5", resp.DurationSec)
	}
}

func TestTTSGenerateRequiresText(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/tts/generate", uuid.New(), map[string]string{})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

type pingCatalog struct {
	fakeCatalog
	err error
}

func (p *pingCatalog) Ping(context.Context) error { return p.err }

func TestHealthReportsStoreStatus(t *testing.T) {
	s := newTestServer(&pingCatalog{}, nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	s = newTestServer(&pingCatalog{err: errors.New("connection refused")}, nil, nil)
	rec = httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
