// Package controller owns the console state and sequences one analysis run
// at a time: staged timeline events around a single analysis call.
package controller

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/monitor"
	"github.com/yildizm/nexus/internal/timeline"
)

// Run returns one of these when the request was a no-op
var (
	ErrBusy          = errors.New("an analysis is already running")
	ErrNoInput       = errors.New("no input provided (text or file)")
	ErrConfigMissing = errors.New("analysis is not configured")
)

// Analyzer produces a result for one request
type Analyzer interface {
	Analyze(ctx context.Context, text string, file *common.FileInput) (*common.AnalysisResult, error)
	CheckConfig() error
}

// State is a snapshot of everything the controller owns
type State struct {
	Text          string                 `json:"text"`
	File          *common.FileInput      `json:"file,omitempty"`
	Busy          bool                   `json:"busy"`
	Logs          []common.LogEvent      `json:"logs"`
	Result        *common.AnalysisResult `json:"result"`
	ConfigMissing bool                   `json:"configMissing"`
	ConfigError   string                 `json:"configError,omitempty"`
	LastError     string                 `json:"lastError,omitempty"`
	RunID         string                 `json:"runId,omitempty"`
}

// Controller is safe for concurrent use
type Controller struct {
	analyzer  Analyzer
	simulator *timeline.Simulator
	logger    *logger.Logger
	metrics   *monitor.RunMetrics
	tracer    trace.Tracer

	mu             sync.Mutex
	text           string
	file           *common.FileInput
	busy           bool
	logs           []common.LogEvent
	result         *common.AnalysisResult
	configErr      error
	lastErr        error
	runID          string
	subscribers    map[int]chan Update
	nextSubscriber int
}

// Option configures a Controller
type Option func(*Controller)

// WithSimulator replaces the default real-time simulator
func WithSimulator(s *timeline.Simulator) Option {
	return func(c *Controller) { c.simulator = s }
}

func WithLogger(l *logger.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

func WithMetrics(m *monitor.RunMetrics) Option {
	return func(c *Controller) { c.metrics = m }
}

// New creates a controller holding the placeholder result
func New(analyzer Analyzer, opts ...Option) *Controller {
	c := &Controller{
		analyzer:    analyzer,
		simulator:   timeline.New(),
		logger:      logger.NewNop(),
		tracer:      otel.Tracer("github.com/yildizm/nexus/internal/controller"),
		logs:        []common.LogEvent{},
		result:      common.PlaceholderResult(),
		subscribers: make(map[int]chan Update),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.WithComponent("controller")

	c.mu.Lock()
	c.refreshConfigLocked()
	c.mu.Unlock()

	return c
}

// SetText replaces the free-text input
func (c *Controller) SetText(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.publishLocked(Update{Kind: UpdateInput})
}

// AttachFile replaces any previously attached file
func (c *Controller) AttachFile(file common.FileInput) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = &file
	c.publishLocked(Update{Kind: UpdateInput})
}

// ClearFile removes the attached file
func (c *Controller) ClearFile() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.file = nil
	c.publishLocked(Update{Kind: UpdateInput})
}

// Busy reports whether a run is in flight
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// ConfigMissing reports whether the analyzer lacks a usable configuration
func (c *Controller) ConfigMissing() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.configErr != nil
}

// RefreshConfig re-checks the analyzer configuration and returns the problem, if any
func (c *Controller) RefreshConfig() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.refreshConfigLocked()
}

func (c *Controller) refreshConfigLocked() error {
	if c.analyzer == nil {
		c.configErr = ErrConfigMissing
	} else {
		c.configErr = c.analyzer.CheckConfig()
	}
	return c.configErr
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Text:          c.text,
		Busy:          c.busy,
		Logs:          append([]common.LogEvent{}, c.logs...),
		Result:        c.result.Clone(),
		ConfigMissing: c.configErr != nil,
		RunID:         c.runID,
	}
	if c.file != nil {
		f := *c.file
		s.File = &f
	}
	if c.configErr != nil {
		s.ConfigError = c.configErr.Error()
	}
	if c.lastErr != nil {
		s.LastError = c.lastErr.Error()
	}
	return s
}
