package models

import (
	"time"

	"github.com/google/uuid"
)

// Metadata is the open key-value bag attached to a workout session. Values are
// arbitrary JSON-compatible data.
type Metadata map[string]any

// Merge applies other onto m with shallow key overwrite and returns m. The bag
// is only ever merged into, never replaced wholesale.
func (m Metadata) Merge(other Metadata) Metadata {
	for k, v := range other {
		m[k] = v
	}
	return m
}

// Clone returns a shallow copy. A nil receiver yields an empty bag.
func (m Metadata) Clone() Metadata {
	out := make(Metadata, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// WorkoutSession is one user's playback session of a workout package. A session
// without EndedAt is still in progress; there is no cancelled state.
type WorkoutSession struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"user_id"`
	PackageID   *uuid.UUID `json:"package_id,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	DurationSec *int       `json:"duration_sec,omitempty"`
	Metadata    Metadata   `json:"metadata"`
}

// Completed reports whether the session has reached its terminal state.
func (s *WorkoutSession) Completed() bool {
	return s.EndedAt != nil
}

// Profile is the user's physical profile, read for script personalization.
type Profile struct {
	HeightCm     *int     `json:"height_cm,omitempty"`
	WeightKg     *float64 `json:"weight_kg,omitempty"`
	Sex          *string  `json:"sex,omitempty"`
	FitnessLevel *string  `json:"fitness_level,omitempty"`
	Goal         *string  `json:"goal,omitempty"`
}

// TrainerConfig is the fully-merged persona configuration handed to the script
// and speech providers. Consumers never see missing fields; defaults are
// applied at lookup time (see internal/userconfig).
type TrainerConfig struct {
	VoiceProvider      string  `json:"voice_provider"`
	VoiceID            string  `json:"voice_id,omitempty"`
	Language           string  `json:"language"`
	PersonaStyle       string  `json:"persona_style"`
	EnthusiasmCategory int     `json:"enthusiasm_cat"`
	AgeCategory        int     `json:"age_cat"`
	Gender             string  `json:"gender,omitempty"`
	SpeakingRate       float64 `json:"speaking_rate"`
}
