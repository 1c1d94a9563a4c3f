package script

import "fmt"

// Config selects and configures the active script backend. Provider names are
// a closed set; unknown names fail at construction, before any request runs.
type Config struct {
	Provider string
	OpenAI   OpenAIConfig
	Gemini   GeminiConfig
}

// NewProvider builds the configured script provider.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		backend, err := newOpenAIBackend(cfg.OpenAI)
		if err != nil {
			return nil, err
		}
		return &provider{backend: backend}, nil
	case "gemini":
		backend, err := newGeminiBackend(cfg.Gemini)
		if err != nil {
			return nil, err
		}
		return &provider{backend: backend}, nil
	default:
		return nil, fmt.Errorf("unsupported script provider: %q", cfg.Provider)
	}
}
