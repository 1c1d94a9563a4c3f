package speech

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meltforce/voicecoach/internal/audioseg"
)

// TestSynthesizeWrapsPCM verifies a successful synthesis call sends the
// documented request shape and wraps the raw PCM response into decodable WAV.
func TestSynthesizeWrapsPCM(t *testing.T) {
	pcm := make([]byte, 22050*2) // one second of silence

	var gotPath, gotKey string
	var gotBody elSynthesisRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path + "?" + r.URL.RawQuery
		gotKey = r.Header.Get("xi-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Write(pcm)
	}))
	defer srv.Close()

	synth, err := newElevenLabs(ElevenLabsConfig{APIKey: "key-1", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := synth.Synthesize(context.Background(), Request{Text: "Keep it up!"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotPath != "/v1/text-to-speech/21m00Tcm4TlvDq8ikWAM?output_format=pcm_22050" {
		t.Errorf("request path = %q", gotPath)
	}
	if gotKey != "key-1" {
		t.Errorf("api key header = %q, want %q", gotKey, "key-1")
	}
	if gotBody.Text != "Keep it up!" {
		t.Errorf("request text = %q", gotBody.Text)
	}
	if gotBody.ModelID != "eleven_turbo_v2_5" {
		t.Errorf("model = %q, want default", gotBody.ModelID)
	}
	if gotBody.VoiceSettings.Stability != 0.5 || gotBody.VoiceSettings.SimilarityBoost != 0.75 {
		t.Errorf("voice settings = %+v, want defaults", gotBody.VoiceSettings)
	}

	d, err := audioseg.Duration(data)
	if err != nil {
		t.Fatalf("response not decodable wav: %v", err)
	}
	if d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Errorf("duration = %v, want ~1s", d)
	}
}

// TestSynthesizeRequestOverrides verifies per-request voice and model override
// the configured defaults.
func TestSynthesizeRequestOverrides(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write(make([]byte, 2))
	}))
	defer srv.Close()

	synth, err := newElevenLabs(ElevenLabsConfig{APIKey: "k", BaseURL: srv.URL, VoiceID: "configured"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := synth.Synthesize(context.Background(), Request{Text: "hi", VoiceID: "per-request"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/v1/text-to-speech/per-request" {
		t.Errorf("path = %q, want per-request voice", gotPath)
	}
}

// TestSynthesizeErrorStatus verifies non-2xx responses surface as
// SynthesisError carrying the body preview.
func TestSynthesizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail":"quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	synth, err := newElevenLabs(ElevenLabsConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = synth.Synthesize(context.Background(), Request{Text: "hi"})
	var synthErr *SynthesisError
	if !errors.As(err, &synthErr) {
		t.Fatalf("error type = %T, want *SynthesisError", err)
	}
	if synthErr.Provider != "elevenlabs" {
		t.Errorf("provider = %q", synthErr.Provider)
	}
}

// TestSynthesizeEmptyText verifies empty input fails before any HTTP call.
func TestSynthesizeEmptyText(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	synth, _ := newElevenLabs(ElevenLabsConfig{APIKey: "k", BaseURL: srv.URL})
	if _, err := synth.Synthesize(context.Background(), Request{}); err == nil {
		t.Error("expected error for empty text")
	}
	if called {
		t.Error("HTTP call made for empty text")
	}
}

// TestNewSynthesizerFactory verifies provider-name validation at construction.
func TestNewSynthesizerFactory(t *testing.T) {
	if _, err := NewSynthesizer(Config{Provider: "espeak"}); err == nil {
		t.Error("expected error for unknown provider")
	}
	if _, err := NewSynthesizer(Config{Provider: "elevenlabs"}); err == nil {
		t.Error("expected error for missing api key")
	}
	if _, err := NewSynthesizer(Config{Provider: "elevenlabs", ElevenLabs: ElevenLabsConfig{APIKey: "k"}}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
