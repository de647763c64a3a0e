package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/yildizm/nexus/internal/config"
	"github.com/yildizm/nexus/internal/emoji"
)

// defaultConfigFile is where config init writes when no path is given
const defaultConfigFile = ".nexus.yaml"

// newConfigCommand creates the config command with subcommands
func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage Nexus-9 configuration",
		Long: `Manage Nexus-9 configuration files and settings.

The config command provides subcommands for initializing, viewing,
validating, and locating configuration files.`,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigShowCommand())
	configCmd.AddCommand(newConfigValidateCommand())
	configCmd.AddCommand(newConfigPathCommand())

	return configCmd
}

// newConfigInitCommand creates the config init subcommand
func newConfigInitCommand() *cobra.Command {
	var (
		outputPath string
		minimal    bool
		force      bool
	)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new Nexus-9 configuration file with default values.

By default, creates a full configuration file with all options and comments.
Use --minimal for a compact configuration with only the model settings.`,
		Example: `  # Create full config in current directory
  nexus config init

  # Create minimal config
  nexus config init --minimal

  # Create config at specific path
  nexus config init --output ~/.config/nexus/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := outputPath
			if path == "" {
				path = defaultConfigFile
			}

			if !force && fileExists(path) {
				return fmt.Errorf("config file already exists at %s (use --force to overwrite)", path)
			}

			dir := filepath.Dir(path)
			if dir != "." && dir != "/" {
				if err := os.MkdirAll(dir, 0o750); err != nil {
					return fmt.Errorf("failed to create directory %s: %w", dir, err)
				}
			}

			content := config.SampleConfig()
			if minimal {
				content = config.MinimalSampleConfig()
			}

			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "%s Configuration file created at: %s\n", emoji.GetEmoji("success"), path)
			if minimal {
				_, _ = fmt.Fprintln(out, "Created minimal configuration with model settings only")
			} else {
				_, _ = fmt.Fprintln(out, "Created full configuration with all options and documentation")
			}
			return nil
		},
	}

	initCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output path for config file (default: .nexus.yaml)")
	initCmd.Flags().BoolVarP(&minimal, "minimal", "m", false, "create minimal configuration")
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite existing config file")

	return initCmd
}

// newConfigShowCommand creates the config show subcommand
func newConfigShowCommand() *cobra.Command {
	var (
		format     string
		configPath string
		reveal     bool
	)

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the effective configuration after merging defaults,
config files and NEXUS_* environment variables.

The API key is masked unless --reveal is given.`,
		Example: `  nexus config show
  nexus config show --format json
  nexus config show --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewLoader().LoadConfig(configPath)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if !reveal {
				cfg.AI.APIKey = maskSecret(cfg.AI.APIKey)
			}

			var data []byte
			switch format {
			case "json":
				data, err = json.MarshalIndent(cfg, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to marshal config to JSON: %w", err)
				}
				data = append(data, '\n')
			case "yaml":
				data, err = yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to marshal config to YAML: %w", err)
				}
			default:
				return fmt.Errorf("unsupported format: %s (use json or yaml)", format)
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", "yaml", "output format (yaml, json)")
	showCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")
	showCmd.Flags().BoolVar(&reveal, "reveal", false, "print the API key unmasked")

	return showCmd
}

// newConfigValidateCommand creates the config validate subcommand
func newConfigValidateCommand() *cobra.Command {
	var configPath string

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validate a Nexus-9 configuration file for syntax and semantic errors.

A missing API key is reported but does not fail validation; analyses stay
disabled until one is configured.`,
		Example: `  nexus config validate
  nexus config validate --config /path/to/config.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			cfg, err := config.NewLoader().LoadConfig(configPath)
			if err != nil {
				_, _ = fmt.Fprintf(out, "%s Configuration validation failed:\n   %v\n", emoji.GetEmoji("error"), err)
				return err
			}

			_, _ = fmt.Fprintf(out, "%s Configuration is valid\n", emoji.GetEmoji("success"))
			_, _ = fmt.Fprintln(out, "Configuration summary:")
			_, _ = fmt.Fprintf(out, "   Version: %s\n", cfg.Version)
			_, _ = fmt.Fprintf(out, "   AI Provider: %s\n", cfg.AI.Provider)
			_, _ = fmt.Fprintf(out, "   Model: %s\n", cfg.AI.Model)
			if cfg.AI.APIKey != "" {
				_, _ = fmt.Fprintln(out, "   API Key: configured")
			} else {
				_, _ = fmt.Fprintf(out, "   API Key: %s missing (set NEXUS_AI_API_KEY or %s)\n",
					emoji.GetEmoji("warning"), strings.Join(config.APIKeyFallbackEnv, " or "))
			}
			_, _ = fmt.Fprintf(out, "   Output Format: %s\n", cfg.Output.DefaultFormat)
			_, _ = fmt.Fprintf(out, "   Theme: %s\n", cfg.Output.Theme)

			return nil
		},
	}

	validateCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to config file")

	return validateCmd
}

// newConfigPathCommand creates the config path subcommand
func newConfigPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration file search paths",
		Long: `Display the list of paths Nexus-9 searches for configuration files.

Shows the search order and indicates which files exist.`,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintln(out, "Configuration file search paths (in priority order):")
			_, _ = fmt.Fprintln(out)

			priority := []string{"Highest", "Medium", "Lowest"}
			for i, path := range config.GetConfigPaths() {
				exists := " (not found)"
				if fileExists(path) {
					exists = " (exists)"
				}
				_, _ = fmt.Fprintf(out, "  %d. %s%s\n", i+1, path, exists)
				if i < len(priority) {
					_, _ = fmt.Fprintf(out, "     Priority: %s\n", priority[i])
				}
			}
			_, _ = fmt.Fprintln(out)

			if current, found := config.FindConfigFile(); found {
				_, _ = fmt.Fprintf(out, "Current config file: %s\n", current)
			} else {
				_, _ = fmt.Fprintln(out, "No config file found, using defaults")
			}

			_, _ = fmt.Fprintln(out, "Environment variables with NEXUS_ prefix override file settings")
		},
	}
}

// maskSecret keeps the last four characters of s
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "****"
	}
	return "****" + s[len(s)-4:]
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
