package speech

import "fmt"

// Config selects and configures the active speech backend. Only elevenlabs is
// supported today; the Synthesizer interface keeps callers from assuming so.
type Config struct {
	Provider   string
	ElevenLabs ElevenLabsConfig
}

// SupportedProviders is the closed set of speech backend names.
var SupportedProviders = map[string]bool{
	"elevenlabs": true,
}

// NewSynthesizer builds the configured speech provider. Unknown names fail at
// construction, before any request runs.
func NewSynthesizer(cfg Config) (Synthesizer, error) {
	switch cfg.Provider {
	case "elevenlabs":
		return newElevenLabs(cfg.ElevenLabs)
	default:
		return nil, fmt.Errorf("unsupported speech provider: %q", cfg.Provider)
	}
}
