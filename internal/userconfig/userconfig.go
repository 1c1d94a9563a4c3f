// Package userconfig loads a user's profile and trainer persona configuration
// and merges the stored trainer settings with documented defaults, so the
// script and speech providers always receive a fully-populated config.
package userconfig

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meltforce/voicecoach/internal/models"
)

// Defaults applied when a user has no stored value for a trainer setting.
const (
	DefaultVoiceProvider = "elevenlabs"
	DefaultLanguage      = "en"
	DefaultPersonaStyle  = "standard"
	DefaultEnthusiasm    = 3
	DefaultAgeCategory   = 3
	DefaultSpeakingRate  = 1.0
)

// Store is the persistence contract this package reads through.
type Store interface {
	// GetProfile returns nil when the user has no profile row.
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// GetTrainerConfig returns the stored trainer config bag, possibly empty.
	GetTrainerConfig(ctx context.Context, userID uuid.UUID) (map[string]any, error)
}

// Service resolves per-user configuration for the generation pipeline.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetAll returns the user's profile (nil if absent) and the trainer config
// merged with defaults.
func (s *Service) GetAll(ctx context.Context, userID uuid.UUID) (*models.Profile, models.TrainerConfig, error) {
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return nil, models.TrainerConfig{}, fmt.Errorf("loading profile: %w", err)
	}
	stored, err := s.store.GetTrainerConfig(ctx, userID)
	if err != nil {
		return nil, models.TrainerConfig{}, fmt.Errorf("loading trainer config: %w", err)
	}
	return profile, MergeTrainerDefaults(stored, profile), nil
}

// MergeTrainerDefaults applies the stored trainer config bag over the
// documented defaults. Gender falls back to the profile's sex when unset.
// Pure function; callers downstream never re-check for missing fields.
func MergeTrainerDefaults(stored map[string]any, profile *models.Profile) models.TrainerConfig {
	cfg := models.TrainerConfig{
		VoiceProvider:      DefaultVoiceProvider,
		Language:           DefaultLanguage,
		PersonaStyle:       DefaultPersonaStyle,
		EnthusiasmCategory: DefaultEnthusiasm,
		AgeCategory:        DefaultAgeCategory,
		SpeakingRate:       DefaultSpeakingRate,
	}

	if v, ok := stringValue(stored, "voice_provider"); ok {
		cfg.VoiceProvider = v
	}
	if v, ok := stringValue(stored, "voice_id"); ok {
		cfg.VoiceID = v
	}
	if v, ok := stringValue(stored, "language"); ok {
		cfg.Language = v
	}
	if v, ok := stringValue(stored, "persona_style"); ok {
		cfg.PersonaStyle = v
	}
	if v, ok := intValue(stored, "enthusiasm_cat"); ok {
		cfg.EnthusiasmCategory = v
	}
	if v, ok := intValue(stored, "age_cat"); ok {
		cfg.AgeCategory = v
	}
	if v, ok := stringValue(stored, "gender"); ok {
		cfg.Gender = v
	}
	if v, ok := floatValue(stored, "speaking_rate"); ok {
		cfg.SpeakingRate = v
	}

	if cfg.Gender == "" && profile != nil && profile.Sex != nil {
		cfg.Gender = *profile.Sex
	}
	return cfg
}

func stringValue(m map[string]any, key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// intValue tolerates float64 because the bag comes from JSON.
func intValue(m map[string]any, key string) (int, bool) {
	switch v := m[key].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func floatValue(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
