package llm

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config selects and configures the LLM provider.
type Config struct {
	// Provider is one of anthropic, openai, gemini, openrouter, groq or mock.
	Provider string `koanf:"provider"`

	Anthropic  AnthropicConfig `koanf:"anthropic"`
	OpenAI     OpenAIConfig    `koanf:"openai"`
	Gemini     GeminiConfig    `koanf:"gemini"`
	OpenRouter CompatConfig    `koanf:"openrouter"`
	Groq       CompatConfig    `koanf:"groq"`
	Retry      RetryConfig     `koanf:"retry"`

	// Timeout bounds one Generate call, retries included.
	Timeout time.Duration `koanf:"timeout"`
}

type AnthropicConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`    // Default: "claude-haiku"
	BaseURL string `koanf:"base_url"` // Optional gateway or proxy.
}

type OpenAIConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`    // Default: "gpt-4o-mini"
	BaseURL string `koanf:"base_url"` // Optional override for compatible APIs.
}

type GeminiConfig struct {
	APIKey string `koanf:"api_key"`
	Model  string `koanf:"model"` // Default: "gemini-flash"
}

// CompatConfig configures an OpenAI-compatible hosted API. Empty fields
// fall back to the preset for the provider name.
type CompatConfig struct {
	APIKey  string `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// RetryConfig drives RetryProvider's exponential backoff.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier"`
}

func DefaultConfig() Config {
	return Config{
		Provider:   "anthropic",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: CompatConfig{Model: compatPresets["openrouter"].model},
		Groq:       CompatConfig{Model: compatPresets["groq"].model},
		Retry:      RetryConfig{MaxAttempts: 3, InitialWait: time.Second, MaxWait: 10 * time.Second, Multiplier: 2},
		Timeout:    60 * time.Second,
	}
}

// keySlot returns where the API key for provider lives. ok is false for
// unknown providers; slot is nil for providers that need no key.
func (c *Config) keySlot(provider string) (slot *string, ok bool) {
	switch provider {
	case "anthropic":
		return &c.Anthropic.APIKey, true
	case "openai":
		return &c.OpenAI.APIKey, true
	case "gemini":
		return &c.Gemini.APIKey, true
	case "openrouter":
		return &c.OpenRouter.APIKey, true
	case "groq":
		return &c.Groq.APIKey, true
	case "mock":
		return nil, true
	}
	return nil, false
}

// vendorKeyVars are checked in order by Discover.
var vendorKeyVars = []struct{ provider, env string }{
	{"gemini", "GEMINI_API_KEY"},
	{"openai", "OPENAI_API_KEY"},
	{"anthropic", "ANTHROPIC_API_KEY"},
	{"openrouter", "OPENROUTER_API_KEY"},
	{"groq", "GROQ_API_KEY"},
}

// Discover switches to the first provider whose vendor API key variable
// is set, but only when the configured provider cannot run. It reports
// whether it changed anything.
func (c *Config) Discover() bool {
	if c.Validate() == nil {
		return false
	}
	for _, v := range vendorKeyVars {
		key := os.Getenv(v.env)
		if key == "" {
			continue
		}
		slot, _ := c.keySlot(v.provider)
		c.Provider = v.provider
		*slot = key
		return true
	}
	return false
}

// Validate checks that the selected provider is known and has a key.
func (c Config) Validate() error {
	slot, ok := c.keySlot(c.Provider)
	switch {
	case !ok:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	case slot != nil && *slot == "":
		return fmt.Errorf("STUDYPATH_LLM__%s__API_KEY is required for the %s provider", strings.ToUpper(c.Provider), c.Provider)
	}
	return nil
}
