package config

import (
	"fmt"
	"os"
	"time"

	"github.com/skillsenselab/jobhunt/internal/apperr"
	"github.com/skillsenselab/jobhunt/internal/observability"
	"github.com/skillsenselab/jobhunt/internal/server"
	"github.com/skillsenselab/jobhunt/internal/sheets"
)

// ServiceName is the canonical name of this service.
const ServiceName = "jobhunt"

// Environment variable names inherited from the first deployment of this
// service. They are read explicitly because their names carry no section
// prefix the generic env binding could map onto.
const (
	EnvAssemblyAIKey = "ASSEMBLYAI_API_KEY"
	EnvGeminiKey     = "GEMINI_API_KEY"
	EnvCredentials   = "GOOGLE_APPLICATION_CREDENTIALS"
)

// Config is the full application configuration. It is loaded and
// validated once at startup, then passed read-only into components.
type Config struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`

	Server        server.Config        `yaml:"server" mapstructure:"server"`
	Transcription TranscriptionConfig  `yaml:"transcription" mapstructure:"transcription"`
	LLM           LLMConfig            `yaml:"llm" mapstructure:"llm"`
	Sheets        sheets.Config        `yaml:"sheets" mapstructure:"sheets"`
	Observability observability.Config `yaml:"observability" mapstructure:"observability"`
}

// TranscriptionConfig selects and configures the speech-to-text provider.
type TranscriptionConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"`
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval" mapstructure:"poll_interval"`
	PollTimeout  time.Duration `yaml:"poll_timeout" mapstructure:"poll_timeout"`
}

// ApplyDefaults applies default values for the transcription section.
func (c *TranscriptionConfig) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "assemblyai"
	}
}

// Validate validates the transcription section.
func (c *TranscriptionConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("config.transcription.provider is required")
	}
	if c.APIKey == "" {
		return apperr.MissingEnv(EnvAssemblyAIKey)
	}
	return nil
}

// Options returns the section as a generic map for provider factories.
func (c *TranscriptionConfig) Options() map[string]any {
	return map[string]any{
		"api_key":       c.APIKey,
		"base_url":      c.BaseURL,
		"poll_interval": c.PollInterval,
		"poll_timeout":  c.PollTimeout,
	}
}

// LLMConfig selects and configures the language-model provider.
type LLMConfig struct {
	Provider    string        `yaml:"provider" mapstructure:"provider"`
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ApplyDefaults applies default values for the llm section.
func (c *LLMConfig) ApplyDefaults() {
	if c.Provider == "" {
		c.Provider = "gemini"
	}
}

// Validate validates the llm section.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("config.llm.provider is required")
	}
	if c.APIKey == "" {
		return apperr.MissingEnv(EnvGeminiKey)
	}
	return nil
}

// Options returns the section as a generic map for provider factories.
func (c *LLMConfig) Options() map[string]any {
	return map[string]any{
		"api_key":     c.APIKey,
		"base_url":    c.BaseURL,
		"model":       c.Model,
		"temperature": c.Temperature,
		"timeout":     c.Timeout,
	}
}

// Load reads the configuration from YAML, .env and the environment.
// The caller is expected to run ApplyDefaults and Validate afterwards.
func Load(opts ...LoaderOption) (*Config, error) {
	cfg := &Config{}
	if err := LoadConfig(ServiceName, cfg, opts...); err != nil {
		return nil, err
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides maps the historically named environment variables onto
// their config sections. Called after .env loading so values from either
// source are seen.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(EnvAssemblyAIKey); v != "" {
		c.Transcription.APIKey = v
	}
	if v := os.Getenv(EnvGeminiKey); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv(EnvCredentials); v != "" {
		c.Sheets.CredentialsFile = v
	}
}

// ApplyDefaults applies defaults section by section.
func (c *Config) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	c.Server.ApplyDefaults()
	c.Transcription.ApplyDefaults()
	c.LLM.ApplyDefaults()
	c.Sheets.ApplyDefaults()
	c.Observability.ApplyDefaults()
}

// Validate validates the configuration. Missing upstream API keys fail
// here so the process exits before the server ever binds.
func (c *Config) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("config.server: %w", err)
	}
	if err := c.Transcription.Validate(); err != nil {
		return fmt.Errorf("config.transcription: %w", err)
	}
	if err := c.LLM.Validate(); err != nil {
		return fmt.Errorf("config.llm: %w", err)
	}
	if err := c.Sheets.Validate(); err != nil {
		return fmt.Errorf("config.sheets: %w", err)
	}
	if err := c.Observability.Validate(); err != nil {
		return fmt.Errorf("config.observability: %w", err)
	}
	return nil
}
