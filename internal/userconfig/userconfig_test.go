package userconfig

import (
	"testing"

	"github.com/meltforce/voicecoach/internal/models"
)

// TestMergeDefaultsEmpty verifies an empty stored bag produces the full
// documented default config.
func TestMergeDefaultsEmpty(t *testing.T) {
	cfg := MergeTrainerDefaults(nil, nil)

	if cfg.VoiceProvider != "elevenlabs" {
		t.Errorf("voice_provider = %q, want %q", cfg.VoiceProvider, "elevenlabs")
	}
	if cfg.Language != "en" {
		t.Errorf("language = %q, want %q", cfg.Language, "en")
	}
	if cfg.PersonaStyle != "standard" {
		t.Errorf("persona_style = %q, want %q", cfg.PersonaStyle, "standard")
	}
	if cfg.EnthusiasmCategory != 3 {
		t.Errorf("enthusiasm_cat = %d, want 3", cfg.EnthusiasmCategory)
	}
	if cfg.AgeCategory != 3 {
		t.Errorf("age_cat = %d, want 3", cfg.AgeCategory)
	}
	if cfg.SpeakingRate != 1.0 {
		t.Errorf("speaking_rate = %v, want 1.0", cfg.SpeakingRate)
	}
	if cfg.Gender != "" {
		t.Errorf("gender = %q, want empty", cfg.Gender)
	}
}

// TestMergeStoredOverridesDefaults verifies stored values win, including
// JSON-decoded numerics arriving as float64.
func TestMergeStoredOverridesDefaults(t *testing.T) {
	stored := map[string]any{
		"persona_style":  "locked-in",
		"enthusiasm_cat": float64(5),
		"speaking_rate":  1.4,
		"voice_id":       "test-voice",
	}
	cfg := MergeTrainerDefaults(stored, nil)

	if cfg.PersonaStyle != "locked-in" {
		t.Errorf("persona_style = %q, want %q", cfg.PersonaStyle, "locked-in")
	}
	if cfg.EnthusiasmCategory != 5 {
		t.Errorf("enthusiasm_cat = %d, want 5", cfg.EnthusiasmCategory)
	}
	if cfg.SpeakingRate != 1.4 {
		t.Errorf("speaking_rate = %v, want 1.4", cfg.SpeakingRate)
	}
	if cfg.VoiceID != "test-voice" {
		t.Errorf("voice_id = %q, want %q", cfg.VoiceID, "test-voice")
	}
	// untouched keys keep defaults
	if cfg.VoiceProvider != "elevenlabs" {
		t.Errorf("voice_provider = %q, want default", cfg.VoiceProvider)
	}
}

// TestMergeGenderFallback verifies gender falls back to profile.sex only when
// the trainer config leaves it unset.
func TestMergeGenderFallback(t *testing.T) {
	sex := "female"
	profile := &models.Profile{Sex: &sex}

	cfg := MergeTrainerDefaults(nil, profile)
	if cfg.Gender != "female" {
		t.Errorf("gender = %q, want %q (profile fallback)", cfg.Gender, "female")
	}

	cfg = MergeTrainerDefaults(map[string]any{"gender": "male"}, profile)
	if cfg.Gender != "male" {
		t.Errorf("gender = %q, want %q (stored wins)", cfg.Gender, "male")
	}
}
