package timeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/yildizm/nexus/internal/common"
)

// Pacer performs the artificial pauses
type Pacer interface {
	Pause(ctx context.Context, d time.Duration) error
}

// SleepPacer waits in real time and stops early when ctx ends
type SleepPacer struct{}

func (SleepPacer) Pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InstantPacer skips every pause
type InstantPacer struct{}

func (InstantPacer) Pause(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// Sink receives each event as soon as it is produced
type Sink func(common.LogEvent)

// Simulator plays the staged narrative around one analysis call
type Simulator struct {
	delays Delays
	pacer  Pacer
	now    func() time.Time
	newID  func() string
}

// Option configures a Simulator
type Option func(*Simulator)

func WithDelays(d Delays) Option {
	return func(s *Simulator) { s.delays = d }
}

func WithPacer(p Pacer) Option {
	return func(s *Simulator) { s.pacer = p }
}

func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

func WithIDGenerator(fn func() string) Option {
	return func(s *Simulator) { s.newID = fn }
}

// New creates a simulator with the default pacing
func New(opts ...Option) *Simulator {
	s := &Simulator{
		delays: DefaultDelays(),
		pacer:  SleepPacer{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Delays returns the configured pacing
func (s *Simulator) Delays() Delays {
	return s.delays
}

// Event builds a timestamped event
func (s *Simulator) Event(agent common.Agent, action string, status common.Status) common.LogEvent {
	return common.LogEvent{
		ID:        s.newID(),
		Agent:     agent,
		Action:    action,
		Timestamp: common.FormatTimestamp(s.now()),
		Status:    status,
	}
}

// Run plays the script. analyze is invoked once at the analysis step and
// commit right before the final event. On any failure, including a pause
// cut short by ctx, a single error event is emitted, commit is skipped and
// the error is returned.
func (s *Simulator) Run(ctx context.Context, sink Sink, analyze func(context.Context) error, commit func()) error {
	for _, step := range Script(s.delays) {
		var err error

		switch step.Kind {
		case StepEmit:
			sink(s.Event(step.Agent, step.Action, step.Status))
		case StepPause:
			err = s.pacer.Pause(ctx, step.Delay)
		case StepAnalyze:
			err = analyze(ctx)
		case StepCommit:
			if commit != nil {
				commit()
			}
		default:
			err = fmt.Errorf("unknown step kind %d", step.Kind)
		}

		if err != nil {
			sink(s.Event(ErrorAgent, MsgCriticalError, common.StatusError))
			return err
		}
	}
	return nil
}
