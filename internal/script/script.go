// Package script generates coaching text for workout timeline items through a
// pluggable language-model backend. Backends produce raw text; this package
// owns prompt construction and strict validation of the structured output.
package script

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/meltforce/voicecoach/internal/models"
)

// Provider is the text-generation capability consumed by the orchestrator.
type Provider interface {
	// GeneratePerItemScript produces intro/start/cue text for one timeline
	// item. CueText is empty for exercise types that take no periodic cueing.
	GeneratePerItemScript(ctx context.Context, item models.TimelineItem, profile *models.Profile, trainer models.TrainerConfig) (models.GeneratedScript, error)

	// GenerateSessionBrief produces a short free-text narrative played before
	// the first exercise.
	GenerateSessionBrief(ctx context.Context, in BriefInput) (string, error)

	// GenerateSessionDebrief produces a closing free-text narrative played
	// after the last exercise.
	GenerateSessionDebrief(ctx context.Context, in DebriefInput) (string, error)
}

// BriefInput carries the whole-session context for the opening narrative.
type BriefInput struct {
	Title                string
	Description          *string
	EstimatedDurationSec *int
	Items                []models.TimelineItem
	Profile              *models.Profile
	Trainer              models.TrainerConfig
}

// DebriefInput carries the whole-session context for the closing narrative.
type DebriefInput struct {
	Title   string
	Items   []models.TimelineItem
	Profile *models.Profile
	Trainer models.TrainerConfig
}

// GenerationError covers both backend transport failures and malformed
// structured output. Raw holds the offending provider response, when there is
// one, for diagnostics.
type GenerationError struct {
	Message string
	Raw     string
	Err     error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("script generation: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("script generation: %s", e.Message)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// completer is the narrow contract a model backend implements. The provider
// layered on top owns prompts and output validation, so backends stay thin.
type completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// provider implements Provider over any completer backend.
type provider struct {
	backend completer
}

const systemMessage = "You are a professional fitness trainer creating voice instructions for workouts."

func (p *provider) GeneratePerItemScript(ctx context.Context, item models.TimelineItem, profile *models.Profile, trainer models.TrainerConfig) (models.GeneratedScript, error) {
	raw, err := p.backend.Complete(ctx, systemMessage, buildPerItemPrompt(item, profile, trainer))
	if err != nil {
		return models.GeneratedScript{}, &GenerationError{Message: "backend call failed", Err: err}
	}
	return parseScript(raw, item.ExerciseType)
}

func (p *provider) GenerateSessionBrief(ctx context.Context, in BriefInput) (string, error) {
	raw, err := p.backend.Complete(ctx, systemMessage, buildBriefPrompt(in))
	if err != nil {
		return "", &GenerationError{Message: "backend call failed", Err: err}
	}
	text := cleanNarrative(raw)
	if text == "" {
		return "", &GenerationError{Message: "empty session brief", Raw: raw}
	}
	return text, nil
}

func (p *provider) GenerateSessionDebrief(ctx context.Context, in DebriefInput) (string, error) {
	raw, err := p.backend.Complete(ctx, systemMessage, buildDebriefPrompt(in))
	if err != nil {
		return "", &GenerationError{Message: "backend call failed", Err: err}
	}
	text := cleanNarrative(raw)
	if text == "" {
		return "", &GenerationError{Message: "empty session debrief", Raw: raw}
	}
	return text, nil
}

// parseScript validates the structured model output: a JSON object with
// exactly the fields intro_text, start_text and cue_text, all strings. Any
// other shape fails with the raw response attached. For non-duration exercise
// types the cue text is forced empty regardless of what the model returned.
func parseScript(raw, exerciseType string) (models.GeneratedScript, error) {
	payload := extractJSON(raw)
	if payload == "" {
		return models.GeneratedScript{}, &GenerationError{Message: "no JSON object in response", Raw: raw}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &fields); err != nil {
		return models.GeneratedScript{}, &GenerationError{Message: "response is not a JSON object", Raw: raw, Err: err}
	}
	if len(fields) != 3 {
		return models.GeneratedScript{}, &GenerationError{
			Message: fmt.Sprintf("expected exactly intro_text, start_text and cue_text, got %d fields", len(fields)),
			Raw:     raw,
		}
	}

	var script models.GeneratedScript
	for key, dst := range map[string]*string{
		"intro_text": &script.IntroText,
		"start_text": &script.StartText,
		"cue_text":   &script.CueText,
	} {
		value, ok := fields[key]
		if !ok {
			return models.GeneratedScript{}, &GenerationError{Message: "missing field " + key, Raw: raw}
		}
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			return models.GeneratedScript{}, &GenerationError{Message: "field " + key + " is not a string", Raw: raw, Err: err}
		}
		*dst = strings.TrimSpace(strings.ReplaceAll(s, "*", ""))
	}

	if exerciseType != models.ExerciseTypeDuration {
		script.CueText = ""
	}
	return script, nil
}

// extractJSON pulls the outermost JSON object out of a model response,
// tolerating markdown code fences and surrounding prose.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// cleanNarrative strips markdown artifacts from free-text output.
func cleanNarrative(raw string) string {
	return strings.TrimSpace(strings.ReplaceAll(raw, "*", ""))
}
