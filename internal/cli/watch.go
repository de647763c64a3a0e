package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/yildizm/nexus/internal/analyzer"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/formatter"
	"github.com/yildizm/nexus/internal/logger"
)

var (
	watchDebounce time.Duration
	watchText     string
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [file]",
		Short: "Re-analyze a deck or memo whenever it changes",
		Long: `Watch a PDF, image or text file and run an analysis each time it is saved.

Changes are debounced. A change that lands while an analysis is still running
is skipped; save again once it finishes. Press Ctrl+C to stop watching.

Examples:
  nexus watch deck.pdf
  nexus watch --debounce 2s --text "Seed round, 2 founders" memo.md`,
		Args: cobra.ExactArgs(1),
		RunE: runWatch,
	}

	cmd.Flags().DurationVar(&watchDebounce, "debounce", 0, "quiet period before re-analyzing (default from config)")
	cmd.Flags().StringVarP(&watchText, "text", "t", "", "description sent alongside the file")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := GetLogger("watch")

	if err := validateFilePath(args[0]); err != nil {
		return err
	}

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	if a.ctrl.ConfigMissing() {
		return fmt.Errorf("%w: %s", controller.ErrConfigMissing, a.ctrl.Snapshot().ConfigError)
	}
	a.ctrl.SetText(watchText)

	debounce := cfg.Watch.Debounce
	if watchDebounce > 0 {
		debounce = watchDebounce
	}

	f, err := formatter.ForFormat(getOutputFormat(), colorEnabled(os.Stdout), !isEmojiDisabled())
	if err != nil {
		return err
	}

	w := &fileWatcher{
		path:     args[0],
		debounce: debounce,
		ctrl:     a.ctrl,
		log:      log,
		render:   reportRenderer(cmd.OutOrStdout(), f, cfg.AI.Model),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s (Ctrl+C to stop)\n", args[0])
	return w.Run(ctx)
}

// reportRenderer prints each finished run to out
func reportRenderer(out io.Writer, f formatter.Formatter, model string) func(controller.State) error {
	return func(state controller.State) error {
		data, err := f.Format(&formatter.Report{
			Result:      state.Result,
			Logs:        state.Logs,
			Model:       model,
			GeneratedAt: time.Now(),
		})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	}
}

// fileWatcher re-attaches a file and starts a run after each debounced change
type fileWatcher struct {
	path     string
	debounce time.Duration
	ctrl     *controller.Controller
	log      *logger.Logger
	render   func(controller.State) error

	runs sync.WaitGroup
}

// Run analyzes the file once, then on every change until ctx is done
func (w *fileWatcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", w.path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer cleanupWatcher(watcher)

	// Watch the directory so editors that replace the file are still seen
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	defer w.runs.Wait()
	w.trigger(ctx)

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WarnWithFields("file watcher error", []logger.Field{logger.Error(err)})

		case <-fire:
			fire = nil
			w.trigger(ctx)
		}
	}
}

// trigger starts a run on the current file contents unless one is in flight
func (w *fileWatcher) trigger(ctx context.Context) {
	if w.ctrl.Busy() {
		w.log.WarnWithFields("analysis in progress, change skipped", []logger.Field{logger.F("file", w.path)})
		return
	}

	file, err := analyzer.LoadFileInput(w.path)
	if err != nil {
		w.log.WarnWithFields("failed to load file", []logger.Field{logger.F("file", w.path), logger.Error(err)})
		return
	}
	w.ctrl.AttachFile(*file)

	runID, done, err := w.ctrl.Start(ctx)
	if err != nil {
		if errors.Is(err, controller.ErrBusy) {
			w.log.WarnWithFields("analysis in progress, change skipped", []logger.Field{logger.F("file", w.path)})
			return
		}
		w.log.WarnWithFields("analysis not started", []logger.Field{logger.Error(err)})
		return
	}

	w.runs.Add(1)
	go func() {
		defer w.runs.Done()
		if err := <-done; err != nil {
			if ctx.Err() == nil {
				w.log.ErrorWithFields("analysis failed", []logger.Field{logger.F("run_id", runID), logger.Error(err)})
			}
			return
		}
		if err := w.render(w.ctrl.Snapshot()); err != nil {
			w.log.ErrorWithFields("failed to render report", []logger.Field{logger.Error(err)})
		}
	}()
}

// cleanupWatcher safely closes watcher with error logging
func cleanupWatcher(watcher *fsnotify.Watcher) {
	if err := watcher.Close(); err != nil && isVerbose() {
		fmt.Fprintf(os.Stderr, "Warning: failed to close watcher: %v\n", err)
	}
}
