package config

import (
	"fmt"
	"time"
)

// Config holds the complete application configuration
type Config struct {
	Version   string          `yaml:"version" json:"version"`
	AI        AIConfig        `yaml:"ai" json:"ai"`
	Prompt    PromptConfig    `yaml:"prompt" json:"prompt"`
	Timeline  TimelineConfig  `yaml:"timeline" json:"timeline"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Watch     WatchConfig     `yaml:"watch" json:"watch"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
}

// AIConfig configures the model provider
type AIConfig struct {
	Provider         string        `yaml:"provider" json:"provider"`                   // gemini
	Model            string        `yaml:"model" json:"model"`                         // model name/identifier
	Endpoint         string        `yaml:"endpoint" json:"endpoint"`                   // API base URL, empty for the public endpoint
	APIKey           string        `yaml:"api_key" json:"api_key"`                     // credential
	Timeout          time.Duration `yaml:"timeout" json:"timeout"`                     // 0 disables the request deadline
	ThinkingBudget   int           `yaml:"thinking_budget" json:"thinking_budget"`     // -1 lets the model decide
	StrictValidation bool          `yaml:"strict_validation" json:"strict_validation"` // reject off-schema replies
}

// PromptConfig tunes the reference constants sent with every request
type PromptConfig struct {
	Cohort           string   `yaml:"cohort" json:"cohort"`
	MedianValuation  string   `yaml:"median_valuation" json:"median_valuation"`
	GoodBurnMultiple float64  `yaml:"good_burn_multiple" json:"good_burn_multiple"`
	GoodRuleOf40     float64  `yaml:"good_rule_of_40" json:"good_rule_of_40"`
	Scenarios        []string `yaml:"scenarios" json:"scenarios"`
}

// TimelineConfig paces the staged agent feed
type TimelineConfig struct {
	Extraction time.Duration `yaml:"extraction" json:"extraction"`
	StressTest time.Duration `yaml:"stress_test" json:"stress_test"`
	Audit      time.Duration `yaml:"audit" json:"audit"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"` // json|text|markdown|csv
	ColorMode     string `yaml:"color_mode" json:"color_mode"`         // auto|always|never
	Verbose       bool   `yaml:"verbose" json:"verbose"`               // default verbosity
	Theme         string `yaml:"theme" json:"theme"`                   // dashboard theme
	NoEmoji       bool   `yaml:"no_emoji" json:"no_emoji"`             // ASCII fallbacks
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr            string        `yaml:"addr" json:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" json:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout"`
	MaxUploadSize   int64         `yaml:"max_upload_size" json:"max_upload_size"`
}

// WatchConfig configures watch mode
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce" json:"debounce"`
}

// TelemetryConfig configures trace export
type TelemetryConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Output  string `yaml:"output" json:"output"` // file path, "-" for stderr
	Pretty  bool   `yaml:"pretty" json:"pretty"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		AI: AIConfig{
			Provider:         "gemini",
			Model:            "gemini-3-flash-preview",
			Endpoint:         "",
			APIKey:           "",
			Timeout:          0,
			ThinkingBudget:   1024,
			StrictValidation: true,
		},
		Prompt: PromptConfig{
			Cohort:           "2026 AI Seed Benchmarks",
			MedianValuation:  "$17.9M",
			GoodBurnMultiple: 1.5,
			GoodRuleOf40:     40,
			Scenarios:        []string{"The Big Squeeze", "Talent Leak", "Commoditization"},
		},
		Timeline: TimelineConfig{
			Extraction: 800 * time.Millisecond,
			StressTest: 1200 * time.Millisecond,
			Audit:      600 * time.Millisecond,
		},
		Output: OutputConfig{
			DefaultFormat: "text",
			ColorMode:     "auto",
			Verbose:       false,
			Theme:         "default",
			NoEmoji:       false,
		},
		Server: ServerConfig{
			Addr:            "127.0.0.1:8090",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    0,
			ShutdownTimeout: 10 * time.Second,
			MaxUploadSize:   20 << 20, // 20MB
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Telemetry: TelemetryConfig{
			Enabled: false,
			Output:  "-",
			Pretty:  false,
		},
	}
}

// Validate validates the configuration. A missing API key is not an error
// here; the console reports it as a configuration banner instead.
func (c *Config) Validate() error {
	if err := c.validateAIConfig(); err != nil {
		return err
	}
	if err := c.validatePromptConfig(); err != nil {
		return err
	}
	if err := c.validateOutputConfig(); err != nil {
		return err
	}
	if err := c.validateTimingConfig(); err != nil {
		return err
	}
	return nil
}

// validateAIConfig validates AI-related configuration
func (c *Config) validateAIConfig() error {
	if c.AI.Provider != "" {
		validProviders := map[string]bool{
			"gemini": true,
		}
		if !validProviders[c.AI.Provider] {
			return fmt.Errorf("invalid AI provider: %s (must be one of: gemini)", c.AI.Provider)
		}
	}
	if c.AI.Timeout < 0 {
		return fmt.Errorf("ai.timeout must be non-negative")
	}
	if c.AI.ThinkingBudget < -1 {
		return fmt.Errorf("ai.thinking_budget must be -1 (dynamic) or greater")
	}
	return nil
}

// validatePromptConfig validates the benchmark constants
func (c *Config) validatePromptConfig() error {
	if c.Prompt.GoodBurnMultiple < 0 {
		return fmt.Errorf("prompt.good_burn_multiple must be non-negative")
	}
	if len(c.Prompt.Scenarios) == 0 {
		return fmt.Errorf("prompt.scenarios must name at least one scenario")
	}
	return nil
}

// validateOutputConfig validates output-related configuration
func (c *Config) validateOutputConfig() error {
	if c.Output.DefaultFormat != "" {
		validFormats := map[string]bool{
			"json":     true,
			"text":     true,
			"markdown": true,
			"csv":      true,
		}
		if !validFormats[c.Output.DefaultFormat] {
			return fmt.Errorf("invalid output format: %s (must be one of: json, text, markdown, csv)", c.Output.DefaultFormat)
		}
	}
	if c.Output.ColorMode != "" {
		validColorModes := map[string]bool{
			"auto":   true,
			"always": true,
			"never":  true,
		}
		if !validColorModes[c.Output.ColorMode] {
			return fmt.Errorf("invalid color mode: %s (must be one of: auto, always, never)", c.Output.ColorMode)
		}
	}
	return nil
}

// validateTimingConfig validates pacing and timeout values
func (c *Config) validateTimingConfig() error {
	durations := map[string]time.Duration{
		"timeline.extraction":     c.Timeline.Extraction,
		"timeline.stress_test":    c.Timeline.StressTest,
		"timeline.audit":          c.Timeline.Audit,
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
		"watch.debounce":          c.Watch.Debounce,
	}
	for name, d := range durations {
		if d < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}
	if c.Server.MaxUploadSize < 1 {
		return fmt.Errorf("server.max_upload_size must be greater than 0")
	}
	return nil
}
