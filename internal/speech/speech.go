// Package speech converts coaching text into audio through a pluggable
// text-to-speech backend. The contract is blocking call-and-result: one text
// in, one self-contained WAV blob out.
package speech

import (
	"context"
	"fmt"
)

// Request carries the small provider-agnostic option set callers may tune.
// Unset fields fall back to backend defaults.
type Request struct {
	Text            string
	VoiceID         string
	ModelID         string
	Stability       float64
	SimilarityBoost float64
}

// Synthesizer is the text-to-speech capability consumed by the orchestrator.
// Implementations must be safe for concurrent use; the pipeline synthesizes
// multiple clips of one item in parallel.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// SynthesisError wraps a backend transport failure.
type SynthesisError struct {
	Provider string
	Err      error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("speech synthesis via %s: %v", e.Provider, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }
