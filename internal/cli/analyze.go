package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/yildizm/nexus/internal/analyzer"
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/emoji"
	"github.com/yildizm/nexus/internal/formatter"
)

var (
	analyzeText       string
	analyzeFile       string
	analyzeQuiet      bool
	analyzeTimeout    time.Duration
	analyzeOutputFile string
)

// maxTextInput bounds text read from stdin
const maxTextInput = 1 << 20

func newAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [description]",
		Short: "Analyze a startup description or pitch deck",
		Long: `Run one due-diligence analysis and print the report.

The description comes from the argument, --text, or stdin when the argument
is "-" or input is piped. A PDF, image or text file can be attached with
--file. The agent feed is printed to stderr as it plays; the report goes to
stdout or --output-file.

Examples:
  nexus analyze "AI copilot for freight brokers, 3 founders ex-Flexport"
  nexus analyze --file deck.pdf
  cat memo.txt | nexus analyze -o markdown --output-file report.md`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	cmd.Flags().StringVarP(&analyzeText, "text", "t", "", "startup description")
	cmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "attach a PDF, image or text file")
	cmd.Flags().BoolVarP(&analyzeQuiet, "quiet", "q", false, "do not print the agent feed")
	cmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "overall deadline for the run (0 disables)")
	cmd.Flags().StringVar(&analyzeOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := GetLogger("analyze")

	text, err := resolveText(args, analyzeText, cmd.InOrStdin())
	if err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if analyzeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, analyzeTimeout)
		defer cancel()
	}

	report, err := executeAnalysis(ctx, a.ctrl, analysisInput{text: text, file: analyzeFile}, feedWriter(cmd))
	if err != nil {
		return err
	}
	report.Model = cfg.AI.Model

	f, err := formatter.ForFormat(getOutputFormat(), analyzeOutputFile == "" && colorEnabled(os.Stdout), !isEmojiDisabled())
	if err != nil {
		return err
	}
	output, err := f.Format(report)
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	return handleOutputDestination(cmd.OutOrStdout(), output, analyzeOutputFile)
}

type analysisInput struct {
	text string
	file string
}

// executeAnalysis loads the input into ctrl, runs once and returns the report.
// Feed lines are written to feed as they arrive; a nil feed discards them.
func executeAnalysis(ctx context.Context, ctrl *controller.Controller, in analysisInput, feed io.Writer) (*formatter.Report, error) {
	ctrl.SetText(in.text)
	if in.file != "" {
		if err := validateFilePath(in.file); err != nil {
			return nil, err
		}
		file, err := analyzer.LoadFileInput(in.file)
		if err != nil {
			return nil, err
		}
		ctrl.AttachFile(*file)
	}

	if ctrl.ConfigMissing() {
		return nil, fmt.Errorf("%w: %s", controller.ErrConfigMissing, ctrl.Snapshot().ConfigError)
	}

	updates, unsubscribe := ctrl.Subscribe()
	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for u := range updates {
			if u.Kind == controller.UpdateLog && u.Log != nil && feed != nil {
				_, _ = fmt.Fprintln(feed, formatLogLine(*u.Log))
			}
		}
	}()

	runErr := ctrl.Run(ctx)
	unsubscribe()
	<-printed

	if runErr != nil {
		return nil, describeRunError(runErr)
	}

	state := ctrl.Snapshot()
	return &formatter.Report{
		Result:      state.Result,
		Logs:        state.Logs,
		GeneratedAt: time.Now(),
	}, nil
}

// describeRunError adds a hint for the errors users can act on
func describeRunError(err error) error {
	switch {
	case errors.Is(err, controller.ErrNoInput):
		return fmt.Errorf("%w: pass a description, pipe one on stdin or use --file", err)
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("analysis timed out: %w", err)
	default:
		return fmt.Errorf("analysis failed: %w", err)
	}
}

// formatLogLine renders one feed event the way the terminal shows it
func formatLogLine(ev common.LogEvent) string {
	return fmt.Sprintf("[%s] %s %-5s %s", ev.Timestamp, emoji.ForStatus(ev.Status), ev.Agent, ev.Action)
}

func feedWriter(cmd *cobra.Command) io.Writer {
	if analyzeQuiet {
		return nil
	}
	return cmd.ErrOrStderr()
}

// resolveText picks the description from the argument, the flag or stdin
func resolveText(args []string, flagText string, stdin io.Reader) (string, error) {
	switch {
	case len(args) == 1 && args[0] == "-":
		return readText(stdin)
	case len(args) == 1:
		return args[0], nil
	case flagText != "":
		return flagText, nil
	}

	if f, ok := stdin.(*os.File); ok && !term.IsTerminal(int(f.Fd())) {
		return readText(stdin)
	}
	return "", nil
}

func readText(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxTextInput))
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// handleOutputDestination writes output to file or stdout
func handleOutputDestination(stdout io.Writer, output []byte, outputFile string) error {
	if outputFile == "" {
		_, err := stdout.Write(output)
		return err
	}

	if err := validateOutputFilePath(outputFile); err != nil {
		return fmt.Errorf("invalid output file path: %w", err)
	}
	if err := writeOutputBytesToFile(output, outputFile); err != nil {
		return fmt.Errorf("failed to write output to file: %w", err)
	}
	if isVerbose() {
		fmt.Fprintf(os.Stderr, "Output saved to: %s\n", outputFile)
	}
	return nil
}

func validateFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}

	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("file does not exist: %s", cleanPath)
		}
		return fmt.Errorf("cannot access file: %w", err)
	}

	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file: %s", cleanPath)
	}

	return nil
}

func validateOutputFilePath(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	if info, err := os.Stat(filepath.Clean(path)); err == nil && info.IsDir() {
		return fmt.Errorf("path is a directory: %s", path)
	}
	return nil
}

// writeOutputBytesToFile writes output to a file with proper error handling
func writeOutputBytesToFile(output []byte, filePath string) error {
	cleanPath := filepath.Clean(filePath)

	file, err := os.Create(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil && isVerbose() {
			fmt.Fprintf(os.Stderr, "Warning: failed to close output file: %v\n", closeErr)
		}
	}()

	if _, err := file.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if err := file.Sync(); err != nil {
		return fmt.Errorf("failed to sync output file: %w", err)
	}

	return nil
}
