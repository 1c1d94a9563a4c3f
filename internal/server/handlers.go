package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/audioseg"
	"github.com/meltforce/voicecoach/internal/generator"
	"github.com/meltforce/voicecoach/internal/models"
	"github.com/meltforce/voicecoach/internal/script"
	"github.com/meltforce/voicecoach/internal/session"
	"github.com/meltforce/voicecoach/internal/speech"
	"github.com/meltforce/voicecoach/internal/storage"
	"github.com/meltforce/voicecoach/internal/timeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if p, ok := s.catalog.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSteps(w http.ResponseWriter, r *http.Request) {
	steps, err := s.catalog.ListSteps(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}

func (s *Server) handleListPackages(w http.ResponseWriter, r *http.Request) {
	pkgs, err := s.catalog.ListPackages(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkgs)
}

func (s *Server) handleGetPackage(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid package ID"})
		return
	}

	pkg, err := s.catalog.GetPackage(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

type generateAudioRequest struct {
	PackageID uuid.UUID `json:"package_id"`
}

type generateAudioResponse struct {
	PackageID  uuid.UUID               `json:"package_id"`
	AudioQueue []models.AudioQueueItem `json:"audio_queue"`
}

func (s *Server) handleGenerateAudio(w http.ResponseWriter, r *http.Request) {
	var req generateAudioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.PackageID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "package_id is required"})
		return
	}

	queue, err := s.gen.Generate(r.Context(), req.PackageID, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, generateAudioResponse{PackageID: req.PackageID, AudioQueue: queue})
}

type sessionStartRequest struct {
	PackageID *uuid.UUID      `json:"package_id,omitempty"`
	Metadata  models.Metadata `json:"metadata,omitempty"`
}

func (s *Server) handleSessionStart(w http.ResponseWriter, r *http.Request) {
	var req sessionStartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	sess, err := s.sessions.Start(r.Context(), userIDFromContext(r), req.PackageID, req.Metadata)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

type sessionUpdateRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	session.Progress
}

func (s *Server) handleSessionUpdate(w http.ResponseWriter, r *http.Request) {
	var req sessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SessionID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	sess, err := s.sessions.Update(r.Context(), req.SessionID, userIDFromContext(r), req.Progress)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

type sessionCompleteRequest struct {
	SessionID uuid.UUID `json:"session_id"`
	session.Outcome
}

func (s *Server) handleSessionComplete(w http.ResponseWriter, r *http.Request) {
	var req sessionCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.SessionID == uuid.Nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "session_id is required"})
		return
	}

	sess, err := s.sessions.Complete(r.Context(), req.SessionID, userIDFromContext(r), req.Outcome)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	sessions, err := s.catalog.ListSessions(r.Context(), userIDFromContext(r), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.WorkoutSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return
	}

	sess, err := s.sessions.Get(r.Context(), id, userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.catalog.GetSessionStats(r.Context(), userIDFromContext(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

type ttsGenerateRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id,omitempty"`
}

type ttsGenerateResponse struct {
	AudioBlob   string  `json:"audio_blob"`
	DurationSec float64 `json:"duration_sec"`
}

// handleTTSGenerate synthesizes one standalone clip, outside the package
// pipeline. Useful for voice previews and ad-hoc announcements.
func (s *Server) handleTTSGenerate(w http.ResponseWriter, r *http.Request) {
	var req ttsGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if req.Text == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	}

	audio, err := s.synth.Synthesize(r.Context(), speech.Request{Text: req.Text, VoiceID: req.VoiceID})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ttsGenerateResponse{AudioBlob: base64.StdEncoding.EncodeToString(audio)}
	if d, err := audioseg.Duration(audio); err == nil {
		resp.DurationSec = d.Seconds()
	}
	writeJSON(w, http.StatusOK, resp)
}

// writeError maps pipeline errors onto HTTP statuses: bad input 400, missing
// rows 404, completed-session conflicts 409, upstream provider failures 502.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	var (
		cfgErr   *generator.ConfigurationError
		resErr   *timeline.ResolutionError
		genErr   *script.GenerationError
		synthErr *speech.SynthesisError
	)

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &cfgErr), errors.As(err, &resErr):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound), errors.Is(err, storage.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrCompleted):
		status = http.StatusConflict
	case errors.As(err, &genErr), errors.As(err, &synthErr):
		status = http.StatusBadGateway
	}

	if status >= 500 {
		s.log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
