package speech

import (
	"context"
	"sync"
)

// MockSynthesizer returns canned audio for tests. Synthesize maps each input
// text through Render so assertions can tie blobs back to their source text.
type MockSynthesizer struct {
	// Render produces the fake audio for a given text. Defaults to
	// []byte("audio:" + text).
	Render func(text string) []byte
	Err    error

	mu    sync.Mutex
	calls []Request
}

func (m *MockSynthesizer) Synthesize(_ context.Context, req Request) ([]byte, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	if m.Err != nil {
		return nil, &SynthesisError{Provider: "mock", Err: m.Err}
	}
	if m.Render != nil {
		return m.Render(req.Text), nil
	}
	return []byte("audio:" + req.Text), nil
}

// Calls returns a copy of the requests seen so far.
func (m *MockSynthesizer) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}
