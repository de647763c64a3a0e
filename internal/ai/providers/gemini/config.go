package gemini

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/nexus/internal/ai"
)

const (
	ProviderName          = "gemini"
	DefaultModel          = "gemini-3-flash-preview"
	DefaultThinkingBudget = 1024
)

type Config struct {
	APIKey string `json:"api_key"`
	// BaseURL overrides the Gemini API endpoint; empty uses the SDK default
	BaseURL        string        `json:"base_url,omitempty"`
	DefaultModel   string        `json:"default_model"`
	ThinkingBudget int32         `json:"thinking_budget"`
	Timeout        time.Duration `json:"timeout"`
}

func DefaultConfig() *Config {
	return &Config{
		DefaultModel:   DefaultModel,
		ThinkingBudget: DefaultThinkingBudget,
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewConfigurationError(ProviderName, "api_key", "API key is required (set API_KEY or ai.api_key)")
	}

	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return ai.NewConfigurationError(ProviderName, "base_url", fmt.Sprintf("invalid base URL %q", c.BaseURL))
		}
	}

	if c.DefaultModel == "" {
		return ai.NewConfigurationError(ProviderName, "default_model", "default model is required")
	}

	// -1 asks the model to size its own budget
	if c.ThinkingBudget < -1 {
		return ai.NewConfigurationError(ProviderName, "thinking_budget", "thinking budget must be -1 or greater")
	}

	if c.Timeout < 0 {
		return ai.NewConfigurationError(ProviderName, "timeout", "timeout cannot be negative")
	}

	return nil
}

func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Name:         ProviderName,
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		DefaultModel: c.DefaultModel,
		Timeout:      c.Timeout,
		Options: map[string]any{
			"thinking_budget": c.ThinkingBudget,
		},
	}
}

func FromProviderConfig(config *ai.ProviderConfig) *Config {
	if config == nil {
		return DefaultConfig()
	}

	c := &Config{
		APIKey:         config.APIKey,
		BaseURL:        config.BaseURL,
		DefaultModel:   config.DefaultModel,
		ThinkingBudget: DefaultThinkingBudget,
		Timeout:        config.Timeout,
	}

	if c.DefaultModel == "" {
		c.DefaultModel = DefaultModel
	}

	if config.Options != nil {
		switch v := config.Options["thinking_budget"].(type) {
		case int32:
			c.ThinkingBudget = v
		case int:
			c.ThinkingBudget = int32(v)
		case float64:
			c.ThinkingBudget = int32(v)
		}
	}

	return c
}
