package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.nexus.yaml",               // Project-specific config (highest priority)
	"~/.config/nexus/config.yaml", // User config
	"/etc/nexus/config.yaml",      // System config (lowest priority)
}

// APIKeyFallbackEnv are read, in order, when no key is configured otherwise
var APIKeyFallbackEnv = []string{"API_KEY", "GEMINI_API_KEY"}

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	getenv      func(string) string
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		getenv:      os.Getenv,
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. NEXUS_* environment variables
// 3. ./.nexus.yaml
// 4. ~/.config/nexus/config.yaml
// 5. /etc/nexus/config.yaml
// 6. Built-in defaults
// 7. API_KEY, then GEMINI_API_KEY, for the credential only
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	// A custom path replaces the search path
	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := expandPath(l.configPaths[i])
			if fileExists(expandedPath) {
				if err := l.loadFromFile(config, expandedPath); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: Failed to load config from %s: %v\n", expandedPath, err)
				}
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file over config. Keys absent from the file
// keep their current value, so explicit false and zero values still apply.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}

	merged := *config
	merged.Prompt.Scenarios = append([]string(nil), config.Prompt.Scenarios...)
	if err := yaml.Unmarshal(data, &merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	*config = merged
	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// AI Config
		"NEXUS_AI_PROVIDER":          func(v string) error { config.AI.Provider = v; return nil },
		"NEXUS_AI_MODEL":             func(v string) error { config.AI.Model = v; return nil },
		"NEXUS_AI_ENDPOINT":          func(v string) error { config.AI.Endpoint = v; return nil },
		"NEXUS_AI_API_KEY":           func(v string) error { config.AI.APIKey = v; return nil },
		"NEXUS_AI_TIMEOUT":           func(v string) error { return parseDuration(v, &config.AI.Timeout) },
		"NEXUS_AI_THINKING_BUDGET":   func(v string) error { return parseInt(v, &config.AI.ThinkingBudget) },
		"NEXUS_AI_STRICT_VALIDATION": func(v string) error { return parseBool(v, &config.AI.StrictValidation) },

		// Timeline Config
		"NEXUS_TIMELINE_EXTRACTION":  func(v string) error { return parseDuration(v, &config.Timeline.Extraction) },
		"NEXUS_TIMELINE_STRESS_TEST": func(v string) error { return parseDuration(v, &config.Timeline.StressTest) },
		"NEXUS_TIMELINE_AUDIT":       func(v string) error { return parseDuration(v, &config.Timeline.Audit) },

		// Output Config
		"NEXUS_OUTPUT_DEFAULT_FORMAT": func(v string) error { config.Output.DefaultFormat = v; return nil },
		"NEXUS_OUTPUT_COLOR_MODE":     func(v string) error { config.Output.ColorMode = v; return nil },
		"NEXUS_OUTPUT_VERBOSE":        func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"NEXUS_OUTPUT_THEME":          func(v string) error { config.Output.Theme = v; return nil },
		"NEXUS_OUTPUT_NO_EMOJI":       func(v string) error { return parseBool(v, &config.Output.NoEmoji) },

		// Server Config
		"NEXUS_SERVER_ADDR":             func(v string) error { config.Server.Addr = v; return nil },
		"NEXUS_SERVER_READ_TIMEOUT":     func(v string) error { return parseDuration(v, &config.Server.ReadTimeout) },
		"NEXUS_SERVER_WRITE_TIMEOUT":    func(v string) error { return parseDuration(v, &config.Server.WriteTimeout) },
		"NEXUS_SERVER_SHUTDOWN_TIMEOUT": func(v string) error { return parseDuration(v, &config.Server.ShutdownTimeout) },
		"NEXUS_SERVER_MAX_UPLOAD_SIZE":  func(v string) error { return parseInt64(v, &config.Server.MaxUploadSize) },

		// Watch / Telemetry Config
		"NEXUS_WATCH_DEBOUNCE":    func(v string) error { return parseDuration(v, &config.Watch.Debounce) },
		"NEXUS_TELEMETRY_ENABLED": func(v string) error { return parseBool(v, &config.Telemetry.Enabled) },
		"NEXUS_TELEMETRY_OUTPUT":  func(v string) error { config.Telemetry.Output = v; return nil },
		"NEXUS_TELEMETRY_PRETTY":  func(v string) error { return parseBool(v, &config.Telemetry.Pretty) },
	}

	for envVar, setter := range envMappings {
		if value := l.getenv(envVar); value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Comma-separated scenario list
	if scenarios := l.getenv("NEXUS_PROMPT_SCENARIOS"); scenarios != "" {
		config.Prompt.Scenarios = nil
		for _, s := range strings.Split(scenarios, ",") {
			if s = strings.TrimSpace(s); s != "" {
				config.Prompt.Scenarios = append(config.Prompt.Scenarios, s)
			}
		}
	}

	if config.AI.APIKey == "" {
		for _, envVar := range APIKeyFallbackEnv {
			if value := l.getenv(envVar); value != "" {
				config.AI.APIKey = value
				break
			}
		}
	}

	return nil
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, expandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := expandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// Helper functions

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/etc/passwd") ||
		strings.HasPrefix(absPath, "/etc/shadow") ||
		strings.HasPrefix(absPath, "/proc/") ||
		strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseInt64(s string, dst *int64) error {
	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
