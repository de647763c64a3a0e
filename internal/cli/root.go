package cli

import (
	"fmt"
	"os"
	"runtime"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yildizm/nexus/internal/config"
	"github.com/yildizm/nexus/internal/emoji"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/ui"
)

var (
	cfgFile   string
	verbose   bool
	noColor   bool
	noEmoji   bool
	outputFmt string
)

var (
	configMu     sync.Mutex
	globalConfig *config.Config
)

// NewRootCommand creates the root command
func NewRootCommand(version, commit, date string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nexus",
		Short: "Nexus-9 startup due-diligence console",
		Long: `Nexus-9 turns a startup description or pitch deck into a structured
due-diligence report: founder scores, market topology, unit economics,
stress simulations, runway sensitivity and questions for the founders.

Runs as a one-shot command, an interactive terminal dashboard, an HTTP API
or a file watcher. Set API_KEY or GEMINI_API_KEY to enable analysis.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Auto-disable emojis on Windows if not explicitly set
			if runtime.GOOS == "windows" && !cmd.Flag("no-emoji").Changed {
				noEmoji = true
			}

			cfg, err := loadGlobalConfig()
			if err != nil {
				return err
			}
			emoji.SetEmojiDisabled(cfg.Output.NoEmoji)
			ui.SetThemeByName(cfg.Output.Theme)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVar(&noEmoji, "no-emoji", false, "disable emoji output (useful for Windows terminals)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "", "output format (text, json, markdown, csv)")

	// Add subcommands
	rootCmd.AddCommand(newAnalyzeCommand())
	rootCmd.AddCommand(newDashboardCommand())
	rootCmd.AddCommand(newServeCommand())
	rootCmd.AddCommand(newWatchCommand())
	rootCmd.AddCommand(newConfigCommand())
	rootCmd.AddCommand(newVersionCommand(version, commit, date))

	return rootCmd
}

func newVersionCommand(version, commit, date string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display version number, build commit, date, and runtime information",
		Run: func(cmd *cobra.Command, args []string) {
			displayVersion := version
			displayCommit := commit
			displayDate := date

			if version == "dev" || version == "" {
				displayVersion = "development"
			}
			if commit == "none" || commit == "" {
				displayCommit = "local-build"
			}
			if date == "unknown" || date == "" {
				displayDate = "local-build"
			}

			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "Nexus-9 %s (%s) built on %s\n", displayVersion, displayCommit, displayDate)
			_, _ = fmt.Fprintf(out, "Go version: %s\n", runtime.Version())
			_, _ = fmt.Fprintf(out, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

// loadGlobalConfig loads the config once and applies the global flags over it
func loadGlobalConfig() (*config.Config, error) {
	configMu.Lock()
	defer configMu.Unlock()

	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := config.NewLoader().LoadConfig(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	applyFlagOverrides(cfg)

	globalConfig = cfg
	return cfg, nil
}

func applyFlagOverrides(cfg *config.Config) {
	if verbose {
		cfg.Output.Verbose = true
	}
	if noColor {
		cfg.Output.ColorMode = "never"
	}
	if noEmoji {
		cfg.Output.NoEmoji = true
	}
	if outputFmt != "" {
		cfg.Output.DefaultFormat = outputFmt
	}
}

// GetGlobalConfig returns the loaded configuration, or defaults if loading failed
func GetGlobalConfig() *config.Config {
	cfg, err := loadGlobalConfig()
	if err != nil {
		return config.DefaultConfig()
	}
	return cfg
}

// GetLogger returns a component logger that honors --verbose
func GetLogger(component string) *logger.Logger {
	return logger.NewWithCallback(component, isVerbose)
}

// verboseFlag reports the --verbose state to loggers
type verboseFlag struct{}

func (verboseFlag) IsVerbose() bool { return isVerbose() }

// Global helpers
func isVerbose() bool {
	if verbose {
		return true
	}
	configMu.Lock()
	defer configMu.Unlock()
	return globalConfig != nil && globalConfig.Output.Verbose
}

func getOutputFormat() string {
	return GetGlobalConfig().Output.DefaultFormat
}

// colorEnabled resolves output.color_mode against NO_COLOR and the terminal
func colorEnabled(f *os.File) bool {
	switch GetGlobalConfig().Output.ColorMode {
	case "always":
		return true
	case "never":
		return false
	}
	if noColor || ui.IsColorDisabled() {
		return false
	}
	return f != nil && term.IsTerminal(int(f.Fd()))
}

func isEmojiDisabled() bool {
	return emoji.IsEmojiDisabled()
}
