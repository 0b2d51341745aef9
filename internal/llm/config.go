package llm

import (
	"fmt"
	"os"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "gemini", "openai", "anthropic", "openrouter", "mock"
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// Fallbacks maps an experimental model id to the id tried once when
	// the experimental model is not found.
	Fallbacks map[string]string
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey  string
	Model   string // Default: "gemini-2.0-flash"
	BaseURL string // Optional. Used by tests.
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "google/gemini-2.0-flash-001"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "gemini",
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		Gemini: GeminiConfig{
			Model: "gemini-2.0-flash",
		},
		OpenRouter: OpenRouterConfig{
			Model: "google/gemini-2.0-flash-001",
		},
		Fallbacks: map[string]string{
			"gemini-2.5-pro-exp-03-25": "gemini-2.5-pro-preview-03-25",
		},
	}
}

// keyEnvVars lists the standard API key variables in discovery priority.
var keyEnvVars = []struct{ provider, env string }{
	{"gemini", "GEMINI_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"openrouter", "OPENROUTER_API_KEY"},
}

// DiscoverKey checks the standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and returns the provider
// name and key of the first one found.
func DiscoverKey() (provider, key string, ok bool) {
	for _, c := range keyEnvVars {
		if k := os.Getenv(c.env); k != "" {
			return c.provider, k, true
		}
	}
	return "", "", false
}

// EnvKey returns the key held in the provider's standard env var.
func EnvKey(provider string) string {
	for _, c := range keyEnvVars {
		if c.provider == provider {
			return os.Getenv(c.env)
		}
	}
	return ""
}

// APIKey returns the key configured for the selected provider.
func (c Config) APIKey() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.APIKey
	case "openai":
		return c.OpenAI.APIKey
	case "gemini":
		return c.Gemini.APIKey
	case "openrouter":
		return c.OpenRouter.APIKey
	default:
		return ""
	}
}

// Model returns the model configured for the selected provider.
func (c Config) Model() string {
	switch c.Provider {
	case "anthropic":
		return c.Anthropic.Model
	case "openai":
		return c.OpenAI.Model
	case "gemini":
		return c.Gemini.Model
	case "openrouter":
		return c.OpenRouter.Model
	default:
		return "mock"
	}
}

// WithCredentials returns a copy of c with the selected provider's key
// and model replaced by the non-empty arguments.
func (c Config) WithCredentials(apiKey, model string) Config {
	set := func(k, m *string) {
		if apiKey != "" {
			*k = apiKey
		}
		if model != "" {
			*m = model
		}
	}
	switch c.Provider {
	case "anthropic":
		set(&c.Anthropic.APIKey, &c.Anthropic.Model)
	case "openai":
		set(&c.OpenAI.APIKey, &c.OpenAI.Model)
	case "gemini":
		set(&c.Gemini.APIKey, &c.Gemini.Model)
	case "openrouter":
		set(&c.OpenRouter.APIKey, &c.OpenRouter.Model)
	}
	return c
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic", "openai", "gemini", "openrouter":
		if c.APIKey() == "" {
			return fmt.Errorf("an API key is required for the %s provider", c.Provider)
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
