package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	LLM      LLMConfig      `yaml:"llm"`
	TTS      TTSConfig      `yaml:"tts"`
	Generate GenerateConfig `yaml:"generate"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// LLMConfig selects and configures the script generation backend.
type LLMConfig struct {
	Provider string       `yaml:"provider"`
	OpenAI   OpenAIConfig `yaml:"openai"`
	Gemini   GeminiConfig `yaml:"gemini"`
}

type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

type GeminiConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// TTSConfig selects and configures the speech synthesis backend.
type TTSConfig struct {
	Provider   string           `yaml:"provider"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Segmenter  SegmenterConfig  `yaml:"segmenter"`
}

type ElevenLabsConfig struct {
	APIKey  string `yaml:"api_key"`
	VoiceID string `yaml:"voice_id"`
	ModelID string `yaml:"model_id"`
	BaseURL string `yaml:"base_url"`
}

// SegmenterConfig tunes cue audio splitting. Zero values keep the defaults.
type SegmenterConfig struct {
	MinSilenceMs       int     `yaml:"min_silence_ms"`
	SilenceThresholdDB float64 `yaml:"silence_threshold_db"`
	KeepSilenceMs      int     `yaml:"keep_silence_ms"`
}

// GenerateConfig tunes the audio package pipeline.
type GenerateConfig struct {
	Workers         int  `yaml:"workers"`
	IncludeBriefing bool `yaml:"include_briefing"`
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix VOICECOACH_ and underscore-separated paths:
//
//	VOICECOACH_SERVER_HOST, VOICECOACH_SERVER_PORT,
//	VOICECOACH_DB_HOST, VOICECOACH_DB_PORT, VOICECOACH_DB_NAME,
//	VOICECOACH_DB_USER, VOICECOACH_DB_PASSWORD, VOICECOACH_DB_SSLMODE,
//	VOICECOACH_AUTH_API_KEY,
//	VOICECOACH_LLM_PROVIDER, VOICECOACH_OPENAI_API_KEY, VOICECOACH_OPENAI_MODEL,
//	VOICECOACH_GEMINI_API_KEY, VOICECOACH_GEMINI_MODEL,
//	VOICECOACH_TTS_PROVIDER, VOICECOACH_ELEVENLABS_API_KEY,
//	VOICECOACH_ELEVENLABS_VOICE_ID
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("VOICECOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("VOICECOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("VOICECOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("VOICECOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("VOICECOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("VOICECOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("VOICECOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("VOICECOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("VOICECOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("VOICECOACH_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("VOICECOACH_OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAI.APIKey = v
	}
	if v := os.Getenv("VOICECOACH_OPENAI_MODEL"); v != "" {
		cfg.LLM.OpenAI.Model = v
	}
	if v := os.Getenv("VOICECOACH_GEMINI_API_KEY"); v != "" {
		cfg.LLM.Gemini.APIKey = v
	}
	if v := os.Getenv("VOICECOACH_GEMINI_MODEL"); v != "" {
		cfg.LLM.Gemini.Model = v
	}
	if v := os.Getenv("VOICECOACH_TTS_PROVIDER"); v != "" {
		cfg.TTS.Provider = v
	}
	if v := os.Getenv("VOICECOACH_ELEVENLABS_API_KEY"); v != "" {
		cfg.TTS.ElevenLabs.APIKey = v
	}
	if v := os.Getenv("VOICECOACH_ELEVENLABS_VOICE_ID"); v != "" {
		cfg.TTS.ElevenLabs.VoiceID = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}
	if c.TTS.Provider == "" {
		return fmt.Errorf("tts.provider is required")
	}
	return nil
}
