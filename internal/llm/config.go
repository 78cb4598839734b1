package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names.
const (
	ProviderAnthropic  = "anthropic"
	ProviderOpenAI     = "openai"
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"
	ProviderMock       = "mock"
)

// Config holds all LLM provider configuration. Every provider with an API
// key is built; backend routes pick theirs by name.
type Config struct {
	// Provider is the fallback used when a route's own provider has no key.
	// Empty picks the first configured one (anthropic, openai, gemini,
	// openrouter). "mock" serves canned responses only.
	Provider string

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig
	Retry      RetryConfig

	// Timeout is the maximum duration for a single LLM request
	// (including retries). Default: 120s; vision solves are slow.
	Timeout time.Duration
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-sonnet"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o"
	BaseURL string // Optional. Override for compatible APIs.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-pro"
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string
	Model   string // Default: "anthropic/claude-sonnet-4.5"
	BaseURL string // Default: "https://openrouter.ai/api/v1"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-sonnet"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o"},
		Gemini:     GeminiConfig{Model: "gemini-pro"},
		OpenRouter: OpenRouterConfig{Model: "anthropic/claude-sonnet-4.5"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 120 * time.Second,
	}
}

// ConfigFromEnv builds a Config from INTERVIEWDECK_* variables. API keys
// also fall back to the vendors' standard names (ANTHROPIC_API_KEY, ...).
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	cfg.Provider = env("LLM_PROVIDER", "", cfg.Provider)

	cfg.Anthropic.APIKey = env("ANTHROPIC_API_KEY", "ANTHROPIC_API_KEY", cfg.Anthropic.APIKey)
	cfg.Anthropic.Model = env("ANTHROPIC_MODEL", "", cfg.Anthropic.Model)

	cfg.OpenAI.APIKey = env("OPENAI_API_KEY", "OPENAI_API_KEY", cfg.OpenAI.APIKey)
	cfg.OpenAI.Model = env("OPENAI_MODEL", "", cfg.OpenAI.Model)
	cfg.OpenAI.BaseURL = env("OPENAI_BASE_URL", "", cfg.OpenAI.BaseURL)

	cfg.Gemini.APIKey = env("GEMINI_API_KEY", "GEMINI_API_KEY", cfg.Gemini.APIKey)
	cfg.Gemini.Model = env("GEMINI_MODEL", "", cfg.Gemini.Model)

	cfg.OpenRouter.APIKey = env("OPENROUTER_API_KEY", "OPENROUTER_API_KEY", cfg.OpenRouter.APIKey)
	cfg.OpenRouter.Model = env("OPENROUTER_MODEL", "", cfg.OpenRouter.Model)

	if d, err := time.ParseDuration(os.Getenv("INTERVIEWDECK_LLM_TIMEOUT")); err == nil && d > 0 {
		cfg.Timeout = d
	}

	return cfg
}

func env(key, vendorKey, fallback string) string {
	if v := os.Getenv("INTERVIEWDECK_" + key); v != "" {
		return v
	}
	if vendorKey != "" {
		if v := os.Getenv(vendorKey); v != "" {
			return v
		}
	}
	return fallback
}

// Configured lists the providers that have an API key, in fallback order.
func (c Config) Configured() []string {
	var out []string
	if c.Anthropic.APIKey != "" {
		out = append(out, ProviderAnthropic)
	}
	if c.OpenAI.APIKey != "" {
		out = append(out, ProviderOpenAI)
	}
	if c.Gemini.APIKey != "" {
		out = append(out, ProviderGemini)
	}
	if c.OpenRouter.APIKey != "" {
		out = append(out, ProviderOpenRouter)
	}
	return out
}

// Validate checks that at least one provider can be built and that an
// explicitly selected fallback has its key.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderMock:
		return nil
	case "":
		if len(c.Configured()) == 0 {
			return fmt.Errorf("no LLM API key set; export INTERVIEWDECK_ANTHROPIC_API_KEY, INTERVIEWDECK_OPENAI_API_KEY, INTERVIEWDECK_GEMINI_API_KEY or INTERVIEWDECK_OPENROUTER_API_KEY")
		}
		return nil
	case ProviderAnthropic, ProviderOpenAI, ProviderGemini, ProviderOpenRouter:
		for _, name := range c.Configured() {
			if name == c.Provider {
				return nil
			}
		}
		return fmt.Errorf("INTERVIEWDECK_LLM_PROVIDER=%s but no API key is set for it", c.Provider)
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
}
