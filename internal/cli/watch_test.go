package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/logger"
)

func TestFileWatcherAnalyzesOnStartAndChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.txt")
	if err := os.WriteFile(path, []byte("v1: pre-seed"), 0o600); err != nil {
		t.Fatal(err)
	}

	an := &fakeAnalyzer{}
	a := newTestApp(t, an)

	rendered := make(chan controller.State, 4)
	w := &fileWatcher{
		path:     path,
		debounce: 20 * time.Millisecond,
		ctrl:     a.ctrl,
		log:      logger.NewNop(),
		render: func(s controller.State) error {
			rendered <- s
			return nil
		},
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case s := <-rendered:
		if s.Result.IsPending() {
			t.Error("initial run rendered a pending result")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("initial analysis was not rendered")
	}

	if err := os.WriteFile(path, []byte("v2: seed, $40k MRR"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case <-rendered:
	case <-time.After(5 * time.Second):
		t.Fatal("change did not trigger a new analysis")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}

	if got := an.callCount(); got < 2 {
		t.Errorf("analyzer calls = %d, want at least 2", got)
	}
}

// blockingAnalyzer holds every call until release is closed
type blockingAnalyzer struct {
	fakeAnalyzer
	started chan struct{}
	release chan struct{}
}

func (b *blockingAnalyzer) Analyze(ctx context.Context, text string, file *common.FileInput) (*common.AnalysisResult, error) {
	b.started <- struct{}{}
	<-b.release
	return b.fakeAnalyzer.Analyze(ctx, text, file)
}

func TestFileWatcherSkipsWhileBusy(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deck.txt")
	if err := os.WriteFile(path, []byte("memo"), 0o600); err != nil {
		t.Fatal(err)
	}

	an := &blockingAnalyzer{started: make(chan struct{}, 2), release: make(chan struct{})}
	a := newTestApp(t, an)
	w := &fileWatcher{
		path:   path,
		ctrl:   a.ctrl,
		log:    logger.NewNop(),
		render: func(controller.State) error { return nil },
	}

	a.ctrl.SetText("first run")
	_, done, err := a.ctrl.Start(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	<-an.started

	w.trigger(context.Background())
	close(an.release)

	if err := <-done; err != nil {
		t.Fatal(err)
	}
	w.runs.Wait()

	if got := an.callCount(); got != 1 {
		t.Errorf("analyzer calls = %d, want 1", got)
	}
	if a.ctrl.Snapshot().File != nil {
		t.Error("skipped trigger should not attach the file")
	}
}

func TestFileWatcherMissingDirectory(t *testing.T) {
	a := newTestApp(t, &fakeAnalyzer{})
	w := &fileWatcher{
		path: filepath.Join(t.TempDir(), "gone", "deck.pdf"),
		ctrl: a.ctrl,
		log:  logger.NewNop(),
	}

	if err := w.Run(context.Background()); err == nil {
		t.Error("expected error watching a missing directory")
	}
}
