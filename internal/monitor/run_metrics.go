package monitor

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/yildizm/nexus/internal/monitor")

// Outcome labels how a run ended
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeUpstream Outcome = "upstream"
	OutcomeParse    Outcome = "parse"
	OutcomeCanceled Outcome = "canceled"
	OutcomeOther    Outcome = "other"
)

// SkipReason labels why a run request was a no-op
type SkipReason string

const (
	SkipBusy          SkipReason = "busy"
	SkipNoInput       SkipReason = "no_input"
	SkipConfigMissing SkipReason = "config_missing"
)

// RunMetrics tracks analysis runs in process and mirrors them to OpenTelemetry.
// Recording methods are no-ops on a nil receiver.
type RunMetrics struct {
	started   *Counter
	completed *Counter
	failed    *Counter
	active    *Gauge
	runs      *Timer
	analyses  *Timer

	mu       sync.Mutex
	outcomes map[Outcome]int64
	skips    map[SkipReason]int64
	lastRun  time.Time

	startedCounter   metric.Int64Counter
	completedCounter metric.Int64Counter
	failedCounter    metric.Int64Counter
	skippedCounter   metric.Int64Counter
	runDuration      metric.Float64Histogram
	analyzeDuration  metric.Float64Histogram
	activeRuns       metric.Int64UpDownCounter
}

// NewRunMetrics creates run metrics on the global meter provider
func NewRunMetrics() (*RunMetrics, error) {
	m := &RunMetrics{
		started:   &Counter{},
		completed: &Counter{},
		failed:    &Counter{},
		active:    &Gauge{},
		runs:      NewTimer(),
		analyses:  NewTimer(),
		outcomes:  make(map[Outcome]int64),
		skips:     make(map[SkipReason]int64),
	}

	var err error
	if m.startedCounter, err = meter.Int64Counter(
		"nexus.runs.started",
		metric.WithDescription("Total number of analysis runs started"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.completedCounter, err = meter.Int64Counter(
		"nexus.runs.completed",
		metric.WithDescription("Total number of analysis runs that produced a result"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.failedCounter, err = meter.Int64Counter(
		"nexus.runs.failed",
		metric.WithDescription("Total number of analysis runs that ended in an error event"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.skippedCounter, err = meter.Int64Counter(
		"nexus.runs.skipped",
		metric.WithDescription("Run requests ignored because a precondition was not met"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}
	if m.runDuration, err = meter.Float64Histogram(
		"nexus.run.duration",
		metric.WithDescription("Duration of a full run including staged pauses"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.analyzeDuration, err = meter.Float64Histogram(
		"nexus.analyze.duration",
		metric.WithDescription("Duration of the upstream analysis call"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.activeRuns, err = meter.Int64UpDownCounter(
		"nexus.runs.active",
		metric.WithDescription("Number of runs in flight"),
		metric.WithUnit("{run}"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RunStarted records the start of a run
func (m *RunMetrics) RunStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.started.Inc()
	m.active.Inc()
	m.mu.Lock()
	m.lastRun = time.Now()
	m.mu.Unlock()

	m.startedCounter.Add(ctx, 1)
	m.activeRuns.Add(ctx, 1)
}

// RunSkipped records a run request that was a no-op
func (m *RunMetrics) RunSkipped(ctx context.Context, reason SkipReason) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.skips[reason]++
	m.mu.Unlock()

	m.skippedCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", string(reason))))
}

// RunFinished records the end of a run
func (m *RunMetrics) RunFinished(ctx context.Context, duration time.Duration, outcome Outcome) {
	if m == nil {
		return
	}
	m.active.Dec()
	m.runs.Record(duration)
	m.mu.Lock()
	m.outcomes[outcome]++
	m.mu.Unlock()

	attrs := metric.WithAttributes(attribute.String("outcome", string(outcome)))
	if outcome == OutcomeSuccess {
		m.completed.Inc()
		m.completedCounter.Add(ctx, 1)
	} else {
		m.failed.Inc()
		m.failedCounter.Add(ctx, 1, attrs)
	}
	m.runDuration.Record(ctx, duration.Seconds(), attrs)
	m.activeRuns.Add(ctx, -1)
}

// AnalyzeFinished records the upstream call latency
func (m *RunMetrics) AnalyzeFinished(ctx context.Context, duration time.Duration, err error) {
	if m == nil {
		return
	}
	m.analyses.Record(duration)
	m.analyzeDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Bool("error", err != nil)))
}

// RunSnapshot is a point-in-time view of run metrics
type RunSnapshot struct {
	Timestamp  time.Time            `json:"timestamp"`
	Started    int64                `json:"started"`
	Completed  int64                `json:"completed"`
	Failed     int64                `json:"failed"`
	Active     int64                `json:"active"`
	Outcomes   map[Outcome]int64    `json:"outcomes"`
	Skipped    map[SkipReason]int64 `json:"skipped"`
	LastRun    *time.Time           `json:"last_run,omitempty"`
	Operations []OperationMetrics   `json:"operations"`
	Memory     MemoryMetrics        `json:"memory"`
}

// Snapshot returns the current metrics
func (m *RunMetrics) Snapshot() RunSnapshot {
	m.mu.Lock()
	outcomes := make(map[Outcome]int64, len(m.outcomes))
	for k, v := range m.outcomes {
		outcomes[k] = v
	}
	skips := make(map[SkipReason]int64, len(m.skips))
	for k, v := range m.skips {
		skips[k] = v
	}
	var lastRun *time.Time
	if !m.lastRun.IsZero() {
		t := m.lastRun
		lastRun = &t
	}
	m.mu.Unlock()

	return RunSnapshot{
		Timestamp: time.Now(),
		Started:   m.started.Get(),
		Completed: m.completed.Get(),
		Failed:    m.failed.Get(),
		Active:    m.active.Get(),
		Outcomes:  outcomes,
		Skipped:   skips,
		LastRun:   lastRun,
		Operations: []OperationMetrics{
			operationMetrics(OperationRun, m.runs, m.completed.Get()),
			operationMetrics(OperationAnalyze, m.analyses, -1),
		},
		Memory: CollectMemory(),
	}
}

// operationMetrics summarizes t; successes < 0 means unknown
func operationMetrics(op OperationType, t *Timer, successes int64) OperationMetrics {
	om := OperationMetrics{
		Operation: op,
		Count:     t.Count(),
		MinTime:   t.MinTime(),
		MaxTime:   t.MaxTime(),
		AvgTime:   t.AvgTime(),
	}
	if successes >= 0 {
		om.SuccessCount = successes
		om.ErrorCount = om.Count - successes
	}
	return om
}
