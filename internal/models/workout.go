package models

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Exercise types that drive cue generation. Steps may carry other free-form
// types; only "duration" gets periodic cue audio.
const (
	ExerciseTypeDuration = "duration"
	ExerciseTypeReps     = "reps"
)

// StepDefinition is an immutable exercise catalog entry. Catalog management
// writes these; the generation pipeline only reads them.
type StepDefinition struct {
	ID                   uuid.UUID `json:"id"`
	Title                string    `json:"title"`
	Description          *string   `json:"description,omitempty"`
	Instructions         *string   `json:"instructions,omitempty"`
	Category             *string   `json:"category,omitempty"`
	MediaURL             *string   `json:"media_url,omitempty"`
	ExerciseType         string    `json:"exercise_type"`
	EstimatedDurationSec *int      `json:"estimated_duration_sec,omitempty"`
	DefaultReps          *int      `json:"default_reps,omitempty"`
	DefaultDurationSec   *int      `json:"default_duration_sec,omitempty"`
	DefaultWeightKg      *float64  `json:"default_weight_kg,omitempty"`
	DefaultDistanceM     *float64  `json:"default_distance_m,omitempty"`
}

// WorkoutPackage is an ordered program of exercise occurrences.
type WorkoutPackage struct {
	ID                   uuid.UUID       `json:"id"`
	Title                string          `json:"title"`
	Description          *string         `json:"description,omitempty"`
	Category             *string         `json:"category,omitempty"`
	EstimatedDurationSec *int            `json:"estimated_duration_sec,omitempty"`
	Timeline             []TimelineEntry `json:"timeline"`
}

// SetSpec describes one set inside a timeline override.
type SetSpec struct {
	Reps        *int     `json:"reps,omitempty"`
	WeightKg    *float64 `json:"weight_kg,omitempty"`
	DurationSec *int     `json:"duration_sec,omitempty"`
	DistanceM   *float64 `json:"distance_m,omitempty"`
}

// TimelineEntry is one occurrence in a package timeline as stored: either a
// bare step id or an object carrying the step reference plus per-occurrence
// overrides. The same step id may appear more than once with different
// overrides.
type TimelineEntry struct {
	StepID uuid.UUID

	Sets               []SetSpec
	RestBetweenSetsSec *int
	Reps               *int
	WeightKg           *float64
	DistanceM          *float64
	DurationSec        *int
}

// timelineEntryJSON is the object form of a timeline entry.
type timelineEntryJSON struct {
	ID                 *uuid.UUID `json:"id,omitempty"`
	StepID             *uuid.UUID `json:"step_id,omitempty"`
	Sets               []SetSpec  `json:"sets,omitempty"`
	RestBetweenSetsSec *int       `json:"rest_between_sets_sec,omitempty"`
	Reps               *int       `json:"reps,omitempty"`
	WeightKg           *float64   `json:"weight_kg,omitempty"`
	DistanceM          *float64   `json:"distance_m,omitempty"`
	DurationSec        *int       `json:"duration_sec,omitempty"`
}

// UnmarshalJSON accepts both timeline shapes: a bare id string and an override
// object referencing the step via "id" or "step_id".
func (e *TimelineEntry) UnmarshalJSON(data []byte) error {
	var bare uuid.UUID
	if err := json.Unmarshal(data, &bare); err == nil {
		*e = TimelineEntry{StepID: bare}
		return nil
	}

	var obj timelineEntryJSON
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("timeline entry: %w", err)
	}

	var id uuid.UUID
	switch {
	case obj.ID != nil:
		id = *obj.ID
	case obj.StepID != nil:
		id = *obj.StepID
	default:
		return fmt.Errorf("timeline entry missing step reference")
	}

	*e = TimelineEntry{
		StepID:             id,
		Sets:               obj.Sets,
		RestBetweenSetsSec: obj.RestBetweenSetsSec,
		Reps:               obj.Reps,
		WeightKg:           obj.WeightKg,
		DistanceM:          obj.DistanceM,
		DurationSec:        obj.DurationSec,
	}
	return nil
}

// MarshalJSON writes the object form. Bare ids round-trip as single-key
// objects, which resolve identically.
func (e TimelineEntry) MarshalJSON() ([]byte, error) {
	id := e.StepID
	return json.Marshal(timelineEntryJSON{
		ID:                 &id,
		Sets:               e.Sets,
		RestBetweenSetsSec: e.RestBetweenSetsSec,
		Reps:               e.Reps,
		WeightKg:           e.WeightKg,
		DistanceM:          e.DistanceM,
		DurationSec:        e.DurationSec,
	})
}

// HasOverrides reports whether the entry carries anything beyond the step
// reference.
func (e TimelineEntry) HasOverrides() bool {
	return e.Sets != nil || e.RestBetweenSetsSec != nil || e.Reps != nil ||
		e.WeightKg != nil || e.DistanceM != nil || e.DurationSec != nil
}

// TimelineItem is one resolved occurrence: the step's catalog fields merged
// with its package-specific overrides. Ephemeral, rebuilt on every request.
type TimelineItem struct {
	StepDefinition

	Sets               []SetSpec `json:"sets,omitempty"`
	RestBetweenSetsSec *int      `json:"rest_between_sets_sec,omitempty"`
	Reps               *int      `json:"reps,omitempty"`
	WeightKg           *float64  `json:"weight_kg,omitempty"`
	DistanceM          *float64  `json:"distance_m,omitempty"`
	DurationSec        *int      `json:"duration_sec,omitempty"`
}

// EffectiveSets returns the number of sets to coach through: the explicit set
// count when sets are configured, otherwise 1.
func (t TimelineItem) EffectiveSets() int {
	if len(t.Sets) > 0 {
		return len(t.Sets)
	}
	return 1
}

// GeneratedScript is the per-item coaching text produced by a script provider.
// CueText is empty for exercise types that take no periodic cueing.
type GeneratedScript struct {
	IntroText string `json:"intro_text"`
	StartText string `json:"start_text"`
	CueText   string `json:"cue_text"`
}

// AudioQueueItem is one playable unit of the generated audio package. Audio
// blobs are base64-encoded WAV. Order is the 1-based timeline position;
// session brief and debrief items use reserved sentinel orders and carry only
// an intro blob.
type AudioQueueItem struct {
	Order          int      `json:"order"`
	IntroAudioBlob string   `json:"intro_audio_blob"`
	StartAudioBlob string   `json:"start_audio_blob"`
	CueAudioBlobs  []string `json:"cue_audio_blobs"`
}
