package script

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/meltforce/voicecoach/internal/models"
)

func durationItem(title string) models.TimelineItem {
	dur := 60
	return models.TimelineItem{
		StepDefinition: models.StepDefinition{
			Title:              title,
			ExerciseType:       models.ExerciseTypeDuration,
			DefaultDurationSec: &dur,
		},
	}
}

func repsItem(title string) models.TimelineItem {
	reps := 12
	return models.TimelineItem{
		StepDefinition: models.StepDefinition{
			Title:        title,
			ExerciseType: models.ExerciseTypeReps,
			DefaultReps:  &reps,
		},
	}
}

// TestParseScriptValid verifies a well-formed three-field response parses.
func TestParseScriptValid(t *testing.T) {
	raw := `{"intro_text":"Get ready for planks.","start_text":"Go!","cue_text":"Hold it. Keep breathing. Almost there."}`
	script, err := parseScript(raw, models.ExerciseTypeDuration)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.IntroText != "Get ready for planks." {
		t.Errorf("intro = %q", script.IntroText)
	}
	if script.CueText == "" {
		t.Error("cue text empty for duration exercise")
	}
}

// TestParseScriptFenced verifies markdown-fenced JSON is tolerated.
func TestParseScriptFenced(t *testing.T) {
	raw := "Sure! Here is the script:\n```json\n{\"intro_text\":\"a\",\"start_text\":\"b\",\"cue_text\":\"c\"}\n```"
	script, err := parseScript(raw, models.ExerciseTypeDuration)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.StartText != "b" {
		t.Errorf("start = %q, want %q", script.StartText, "b")
	}
}

// TestParseScriptRejectsWrongShape verifies extra fields, missing fields and
// non-JSON output all fail with the raw response preserved.
func TestParseScriptRejectsWrongShape(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{"extra field", `{"intro_text":"a","start_text":"b","cue_text":"c","note":"d"}`},
		{"missing field", `{"intro_text":"a","start_text":"b"}`},
		{"wrong type", `{"intro_text":"a","start_text":"b","cue_text":3}`},
		{"not json", `Let me describe the workout for you instead.`},
		{"array", `["intro","start","cue"]`},
	}
	for _, tc := range cases {
		_, err := parseScript(tc.raw, models.ExerciseTypeDuration)
		var genErr *GenerationError
		if !errors.As(err, &genErr) {
			t.Errorf("%s: error type = %T, want *GenerationError", tc.name, err)
			continue
		}
		if genErr.Raw != tc.raw {
			t.Errorf("%s: raw = %q, want original response", tc.name, genErr.Raw)
		}
	}
}

// TestParseScriptForcesEmptyCueForReps verifies the cue text is cleared for
// non-duration exercise types even when the model returned one.
func TestParseScriptForcesEmptyCueForReps(t *testing.T) {
	raw := `{"intro_text":"a","start_text":"b","cue_text":"one more rep"}`
	script, err := parseScript(raw, models.ExerciseTypeReps)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if script.CueText != "" {
		t.Errorf("cue text = %q, want empty for reps exercise", script.CueText)
	}
}

// TestProviderTransportError verifies backend failures surface as
// GenerationError.
func TestProviderTransportError(t *testing.T) {
	backend := &MockBackend{Err: errors.New("rate limited")}
	p := NewMockProvider(backend)

	_, err := p.GeneratePerItemScript(context.Background(), durationItem("Plank"), nil, models.TrainerConfig{})
	var genErr *GenerationError
	if !errors.As(err, &genErr) {
		t.Fatalf("error type = %T, want *GenerationError", err)
	}
}

// TestPerItemPromptContent verifies the prompt carries the set count, rest
// time and persona descriptors the model needs.
func TestPerItemPromptContent(t *testing.T) {
	backend := &MockBackend{}
	p := NewMockProvider(backend)

	item := repsItem("Squats")
	reps := 15
	rest := 45
	item.Sets = []models.SetSpec{{Reps: &reps}, {Reps: &reps}, {Reps: &reps}}
	item.RestBetweenSetsSec = &rest

	trainer := models.TrainerConfig{PersonaStyle: "locked-in", EnthusiasmCategory: 5, AgeCategory: 2}
	if _, err := p.GeneratePerItemScript(context.Background(), item, nil, trainer); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	prompt := backend.Prompts[0]
	for _, want := range []string{
		"Sets: 3",
		"Rest Between Sets: 45 seconds",
		"intense, focused, and driven",
		"extremely intense and passionate",
		"Squats",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

// TestSessionBriefAndDebrief verifies the session-level calls return cleaned
// free text and mention the workout items in the prompt.
func TestSessionBriefAndDebrief(t *testing.T) {
	backend := &MockBackend{Responses: []string{
		"Welcome to the session! *Let's* get moving.",
		"Great work today. Stretch and hydrate.",
	}}
	p := NewMockProvider(backend)

	items := []models.TimelineItem{durationItem("Plank"), repsItem("Push Ups")}
	brief, err := p.GenerateSessionBrief(context.Background(), BriefInput{Title: "Morning Burn", Items: items})
	if err != nil {
		t.Fatalf("brief error: %v", err)
	}
	if strings.Contains(brief, "*") {
		t.Errorf("brief not cleaned: %q", brief)
	}

	debrief, err := p.GenerateSessionDebrief(context.Background(), DebriefInput{Title: "Morning Burn", Items: items})
	if err != nil {
		t.Fatalf("debrief error: %v", err)
	}
	if debrief == "" {
		t.Error("empty debrief")
	}
	if !strings.Contains(backend.Prompts[0], "Plank, Push Ups") {
		t.Errorf("brief prompt missing item titles: %q", backend.Prompts[0])
	}
}

// TestNewProviderUnknownName verifies the factory rejects unknown backends.
func TestNewProviderUnknownName(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "anthropic"}); err == nil {
		t.Error("expected error for unknown provider name")
	}
	if _, err := NewProvider(Config{Provider: "openai"}); err == nil {
		t.Error("expected error for openai without api key")
	}
}
