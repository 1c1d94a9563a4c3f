package script

import (
	"context"
	"sync"

	"github.com/meltforce/voicecoach/internal/models"
)

// MockBackend is a canned completer for tests and offline runs. Responses are
// returned in order; once exhausted the last one repeats.
type MockBackend struct {
	Responses []string
	Err       error
	Calls     int
	Prompts   []string
}

func (m *MockBackend) Complete(_ context.Context, _, prompt string) (string, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Responses) == 0 {
		return `{"intro_text":"mock intro","start_text":"mock start","cue_text":"mock cue"}`, nil
	}
	i := m.Calls - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	return m.Responses[i], nil
}

// NewMockProvider wraps a MockBackend in the real validation layer, so tests
// exercise the same parsing path production does.
func NewMockProvider(backend *MockBackend) Provider {
	return &provider{backend: backend}
}

// FixedProvider returns constant scripts without any backend, for tests that
// only care about downstream behavior. Safe for concurrent use.
type FixedProvider struct {
	Script  models.GeneratedScript
	Brief   string
	Debrief string
	Err     error

	mu           sync.Mutex
	itemCalls    int
	briefCalls   int
	debriefCalls int
}

func (f *FixedProvider) GeneratePerItemScript(_ context.Context, item models.TimelineItem, _ *models.Profile, _ models.TrainerConfig) (models.GeneratedScript, error) {
	f.mu.Lock()
	f.itemCalls++
	f.mu.Unlock()
	if f.Err != nil {
		return models.GeneratedScript{}, f.Err
	}
	s := f.Script
	if item.ExerciseType != models.ExerciseTypeDuration {
		s.CueText = ""
	}
	return s, nil
}

func (f *FixedProvider) GenerateSessionBrief(_ context.Context, _ BriefInput) (string, error) {
	f.mu.Lock()
	f.briefCalls++
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Brief, nil
}

func (f *FixedProvider) GenerateSessionDebrief(_ context.Context, _ DebriefInput) (string, error) {
	f.mu.Lock()
	f.debriefCalls++
	f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	return f.Debrief, nil
}

// ItemCalls reports how many per-item script generations were requested.
func (f *FixedProvider) ItemCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.itemCalls
}

// BriefCalls reports how many session briefs were requested.
func (f *FixedProvider) BriefCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.briefCalls
}

// DebriefCalls reports how many session debriefs were requested.
func (f *FixedProvider) DebriefCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.debriefCalls
}
