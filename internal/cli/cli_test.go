package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/config"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/timeline"
)

type fakeAnalyzer struct {
	mu        sync.Mutex
	configErr error
	err       error
	calls     int
	lastText  string
	lastFile  *common.FileInput
}

func (f *fakeAnalyzer) Analyze(_ context.Context, text string, file *common.FileInput) (*common.AnalysisResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastText = text
	f.lastFile = file
	if f.err != nil {
		return nil, f.err
	}
	r := common.PlaceholderResult()
	r.InvestmentThesis = "Strong team, narrow wedge"
	r.BearCase = "Incumbents copy the feature"
	r.FounderMetrics.ResilienceScore = 82
	return r, nil
}

func (f *fakeAnalyzer) CheckConfig() error { return f.configErr }

func (f *fakeAnalyzer) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestApp(t *testing.T, an controller.Analyzer) *app {
	t.Helper()
	a, err := newAppWithAnalyzer(config.DefaultConfig(), logger.NewNop(), an, timeline.WithPacer(timeline.InstantPacer{}))
	if err != nil {
		t.Fatalf("newAppWithAnalyzer() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close(context.Background()) })
	return a
}

// resetGlobals restores package flag state between command tests
func resetGlobals(t *testing.T) {
	t.Helper()
	reset := func() {
		configMu.Lock()
		globalConfig = nil
		configMu.Unlock()
		cfgFile, verbose, noColor, noEmoji, outputFmt = "", false, false, false, ""
	}
	reset()
	t.Cleanup(reset)
}

func TestExecuteAnalysis(t *testing.T) {
	an := &fakeAnalyzer{}
	a := newTestApp(t, an)

	var feed bytes.Buffer
	report, err := executeAnalysis(context.Background(), a.ctrl, analysisInput{text: "Seed-stage devtools startup"}, &feed)
	if err != nil {
		t.Fatalf("executeAnalysis() error = %v", err)
	}

	if report.Result.InvestmentThesis != "Strong team, narrow wedge" {
		t.Errorf("InvestmentThesis = %q", report.Result.InvestmentThesis)
	}
	if len(report.Logs) != timeline.StageEvents {
		t.Errorf("len(Logs) = %d, want %d", len(report.Logs), timeline.StageEvents)
	}
	if an.lastText != "Seed-stage devtools startup" {
		t.Errorf("analyzer got text %q", an.lastText)
	}

	lines := strings.Split(strings.TrimSpace(feed.String()), "\n")
	if len(lines) != timeline.StageEvents {
		t.Fatalf("feed has %d lines, want %d:\n%s", len(lines), timeline.StageEvents, feed.String())
	}
	for _, agent := range []string{"ALPHA", "BETA", "GAMMA", "DELTA"} {
		if !strings.Contains(feed.String(), agent) {
			t.Errorf("feed missing agent %s", agent)
		}
	}
}

func TestExecuteAnalysisWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "memo.txt")
	if err := os.WriteFile(path, []byte("ARR $1.2M, 40% MoM"), 0o600); err != nil {
		t.Fatal(err)
	}

	an := &fakeAnalyzer{}
	a := newTestApp(t, an)

	if _, err := executeAnalysis(context.Background(), a.ctrl, analysisInput{file: path}, nil); err != nil {
		t.Fatalf("executeAnalysis() error = %v", err)
	}
	if an.lastFile == nil {
		t.Fatal("analyzer received no file")
	}
	if !strings.HasPrefix(an.lastFile.MIMEType, "text/plain") {
		t.Errorf("MIMEType = %q, want text/plain", an.lastFile.MIMEType)
	}
}

func TestExecuteAnalysisErrors(t *testing.T) {
	tests := []struct {
		name    string
		an      *fakeAnalyzer
		input   analysisInput
		wantErr error
		calls   int
	}{
		{
			name:    "no input",
			an:      &fakeAnalyzer{},
			wantErr: controller.ErrNoInput,
		},
		{
			name:    "config missing",
			an:      &fakeAnalyzer{configErr: ai.NewConfigurationError("gemini", "api_key", "API key is required")},
			input:   analysisInput{text: "anything"},
			wantErr: controller.ErrConfigMissing,
		},
		{
			name:  "upstream failure",
			an:    &fakeAnalyzer{err: ai.NewUpstreamError(ai.ErrTypeRateLimit, "slow down", "gemini")},
			input: analysisInput{text: "anything"},
			calls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestApp(t, tt.an)

			_, err := executeAnalysis(context.Background(), a.ctrl, tt.input, nil)
			if err == nil {
				t.Fatal("executeAnalysis() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if got := tt.an.callCount(); got != tt.calls {
				t.Errorf("analyzer calls = %d, want %d", got, tt.calls)
			}
		})
	}
}

func TestExecuteAnalysisMissingFile(t *testing.T) {
	a := newTestApp(t, &fakeAnalyzer{})

	_, err := executeAnalysis(context.Background(), a.ctrl, analysisInput{file: filepath.Join(t.TempDir(), "nope.pdf")}, nil)
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("error = %v, want file does not exist", err)
	}
}

func TestDescribeRunError(t *testing.T) {
	err := describeRunError(controller.ErrNoInput)
	if !errors.Is(err, controller.ErrNoInput) || !strings.Contains(err.Error(), "--file") {
		t.Errorf("describeRunError(ErrNoInput) = %v", err)
	}

	err = describeRunError(context.DeadlineExceeded)
	if !strings.Contains(err.Error(), "timed out") {
		t.Errorf("describeRunError(DeadlineExceeded) = %v", err)
	}
}

func TestResolveText(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		flagText string
		stdin    string
		expected string
	}{
		{name: "argument wins", args: []string{"from arg"}, flagText: "from flag", expected: "from arg"},
		{name: "dash reads stdin", args: []string{"-"}, stdin: "  piped memo \n", expected: "piped memo"},
		{name: "flag used without args", flagText: "from flag", expected: "from flag"},
		{name: "non-file stdin ignored without dash", stdin: "ignored", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveText(tt.args, tt.flagText, strings.NewReader(tt.stdin))
			if err != nil {
				t.Fatalf("resolveText() error = %v", err)
			}
			if got != tt.expected {
				t.Errorf("resolveText() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestFormatLogLine(t *testing.T) {
	resetGlobals(t)
	ev := common.LogEvent{
		ID:        "1",
		Agent:     common.AgentBeta,
		Action:    "Stress-testing burn",
		Timestamp: "12:00:01",
		Status:    common.StatusPending,
	}

	line := formatLogLine(ev)
	for _, want := range []string{"[12:00:01]", "BETA", "Stress-testing burn"} {
		if !strings.Contains(line, want) {
			t.Errorf("formatLogLine() = %q, missing %q", line, want)
		}
	}
}

func TestHandleOutputDestination(t *testing.T) {
	var stdout bytes.Buffer
	if err := handleOutputDestination(&stdout, []byte("report"), ""); err != nil {
		t.Fatalf("handleOutputDestination() error = %v", err)
	}
	if stdout.String() != "report" {
		t.Errorf("stdout = %q", stdout.String())
	}

	path := filepath.Join(t.TempDir(), "out.json")
	stdout.Reset()
	if err := handleOutputDestination(&stdout, []byte(`{"ok":true}`), path); err != nil {
		t.Fatalf("handleOutputDestination() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"ok":true}` {
		t.Errorf("file = %q", data)
	}
	if stdout.Len() != 0 {
		t.Errorf("stdout should be empty when writing to a file, got %q", stdout.String())
	}

	if err := handleOutputDestination(&stdout, []byte("x"), t.TempDir()); err == nil {
		t.Error("expected error when output path is a directory")
	}
}

func TestMaskSecret(t *testing.T) {
	tests := map[string]string{
		"":               "",
		"abc":            "****",
		"AIzaSecret1234": "****1234",
	}
	for in, want := range tests {
		if got := maskSecret(in); got != want {
			t.Errorf("maskSecret(%q) = %q, want %q", in, got, want)
		}
	}
}
