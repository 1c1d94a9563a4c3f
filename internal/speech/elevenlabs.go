package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meltforce/voicecoach/internal/audioseg"
)

// ElevenLabsConfig configures the ElevenLabs backend.
type ElevenLabsConfig struct {
	APIKey  string
	BaseURL string // override for tests
	VoiceID string
	ModelID string

	Stability       float64
	SimilarityBoost float64
}

// elevenLabs calls the ElevenLabs REST synthesis endpoint. Audio is requested
// as raw PCM and wrapped into a WAV container so every blob handed downstream
// is independently decodable.
type elevenLabs struct {
	config ElevenLabsConfig
	client *http.Client
}

// pcmSampleRate matches the pcm_22050 output format requested below.
const pcmSampleRate = 22050

func newElevenLabs(config ElevenLabsConfig) (*elevenLabs, error) {
	if config.APIKey == "" {
		return nil, errors.New("elevenlabs api key is required")
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://api.elevenlabs.io"
	}
	if config.VoiceID == "" {
		config.VoiceID = "21m00Tcm4TlvDq8ikWAM" // Default: Rachel
	}
	if config.ModelID == "" {
		config.ModelID = "eleven_turbo_v2_5"
	}
	if config.Stability == 0 {
		config.Stability = 0.5
	}
	if config.SimilarityBoost == 0 {
		config.SimilarityBoost = 0.75
	}
	return &elevenLabs{
		config: config,
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

type elVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
	Style           float64 `json:"style"`
	UseSpeakerBoost bool    `json:"use_speaker_boost"`
}

type elSynthesisRequest struct {
	Text          string          `json:"text"`
	ModelID       string          `json:"model_id"`
	VoiceSettings elVoiceSettings `json:"voice_settings"`
}

func (e *elevenLabs) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if req.Text == "" {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: errors.New("text cannot be empty")}
	}

	voice := req.VoiceID
	if voice == "" {
		voice = e.config.VoiceID
	}
	model := req.ModelID
	if model == "" {
		model = e.config.ModelID
	}
	stability := req.Stability
	if stability == 0 {
		stability = e.config.Stability
	}
	similarity := req.SimilarityBoost
	if similarity == 0 {
		similarity = e.config.SimilarityBoost
	}

	payload := elSynthesisRequest{
		Text:    req.Text,
		ModelID: model,
		VoiceSettings: elVoiceSettings{
			Stability:       stability,
			SimilarityBoost: similarity,
			Style:           0.0,
			UseSpeakerBoost: true,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: err}
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s?output_format=pcm_%d", e.config.BaseURL, voice, pcmSampleRate)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("xi-api-key", e.config.APIKey)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: err}
	}
	if resp.StatusCode >= 300 {
		return nil, &SynthesisError{
			Provider: "elevenlabs",
			Err:      fmt.Errorf("status %s: %s", resp.Status, previewBody(data)),
		}
	}
	if len(data) == 0 {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: errors.New("empty audio response")}
	}

	wavData, err := audioseg.EncodePCM16Bytes(data, pcmSampleRate, 1)
	if err != nil {
		return nil, &SynthesisError{Provider: "elevenlabs", Err: fmt.Errorf("wrapping pcm: %w", err)}
	}
	return wavData, nil
}

func previewBody(data []byte) string {
	const limit = 300
	if len(data) > limit {
		data = data[:limit]
	}
	return string(data)
}
