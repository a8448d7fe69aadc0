package llm

import (
	"errors"
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// ErrNotConfigured is returned when no provider is selected.
var ErrNotConfigured = errors.New("no LLM provider configured")

// Config selects a backend and carries every backend's settings. The
// mapstructure tags match the llm section of the config file.
type Config struct {
	Provider string `mapstructure:"provider" yaml:"provider"`

	Anthropic  BackendConfig `mapstructure:"anthropic" yaml:"anthropic"`
	OpenAI     BackendConfig `mapstructure:"openai" yaml:"openai"`
	Gemini     BackendConfig `mapstructure:"gemini" yaml:"gemini"`
	OpenRouter BackendConfig `mapstructure:"openrouter" yaml:"openrouter"`

	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// BackendConfig is the per-backend part of Config. BaseURL is only used by
// the OpenAI-compatible backends.
type BackendConfig struct {
	APIKey  string `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model   string `mapstructure:"model" yaml:"model"`
	BaseURL string `mapstructure:"base_url" yaml:"base_url,omitempty"`
}

// RetryConfig controls exponential backoff.
type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts" yaml:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait" yaml:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait" yaml:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier" yaml:"multiplier"`
}

// DefaultConfig has no provider selected.
func DefaultConfig() Config {
	return Config{
		Anthropic:  BackendConfig{Model: "claude-haiku"},
		OpenAI:     BackendConfig{Model: "gpt-4o-mini"},
		Gemini:     BackendConfig{Model: "gemini-flash"},
		OpenRouter: BackendConfig{Model: "google/gemini-2.0-flash-001", BaseURL: defaultOpenRouterBaseURL},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// Discover fills in a provider from the vendors' standard key variables
// when none is configured. The first key found wins, in the order Gemini,
// OpenAI, Anthropic, OpenRouter. It reports whether a provider is set.
func (c *Config) Discover() bool {
	if c.Provider != "" {
		return true
	}
	probes := []struct {
		env      string
		provider string
		backend  *BackendConfig
	}{
		{"GEMINI_API_KEY", ProviderGemini, &c.Gemini},
		{"OPENAI_API_KEY", ProviderOpenAI, &c.OpenAI},
		{"ANTHROPIC_API_KEY", ProviderAnthropic, &c.Anthropic},
		{"OPENROUTER_API_KEY", ProviderOpenRouter, &c.OpenRouter},
	}
	for _, p := range probes {
		if k := os.Getenv(p.env); k != "" {
			c.Provider = p.provider
			if p.backend.APIKey == "" {
				p.backend.APIKey = k
			}
			return true
		}
	}
	return false
}

// Backend returns the settings of the selected provider.
func (c Config) Backend() (BackendConfig, bool) {
	switch c.Provider {
	case ProviderAnthropic:
		return c.Anthropic, true
	case ProviderOpenAI:
		return c.OpenAI, true
	case ProviderGemini:
		return c.Gemini, true
	case ProviderOpenRouter:
		return c.OpenRouter, true
	}
	return BackendConfig{}, false
}

// Validate checks the selected provider has an API key.
func (c Config) Validate() error {
	switch c.Provider {
	case "":
		return ErrNotConfigured
	case ProviderMock:
		return nil
	}
	b, ok := c.Backend()
	if !ok {
		return fmt.Errorf("unknown LLM provider %q", c.Provider)
	}
	if b.APIKey == "" {
		return fmt.Errorf("llm.%s.api_key is required for the %s provider", c.Provider, c.Provider)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("llm.retry.max_attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	return nil
}
