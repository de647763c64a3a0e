package timeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yildizm/nexus/internal/common"
)

type recorder struct {
	mu     sync.Mutex
	events []common.LogEvent
	marks  []string
}

func (r *recorder) sink(e common.LogEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	r.marks = append(r.marks, string(e.Agent)+":"+string(e.Status))
}

func (r *recorder) mark(m string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks = append(r.marks, m)
}

// recordingPacer logs requested pauses without sleeping
type recordingPacer struct {
	rec    *recorder
	pauses []time.Duration
}

func (p *recordingPacer) Pause(ctx context.Context, d time.Duration) error {
	p.pauses = append(p.pauses, d)
	p.rec.mark(fmt.Sprintf("pause:%s", d))
	return ctx.Err()
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.Date(2026, 1, 2, 13, 4, 5, 0, time.UTC) }
}

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("evt-%d", n)
	}
}

func TestRun_Success(t *testing.T) {
	rec := &recorder{}
	pacer := &recordingPacer{rec: rec}
	sim := New(WithPacer(pacer), WithClock(fixedClock()), WithIDGenerator(counterIDs()))

	err := sim.Run(context.Background(), rec.sink,
		func(context.Context) error { rec.mark("analyze"); return nil },
		func() { rec.mark("commit") },
	)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ALPHA:pending",
		"pause:800ms",
		"ALPHA:complete",
		"BETA:pending",
		"analyze",
		"BETA:complete",
		"GAMMA:pending",
		"pause:1.2s",
		"GAMMA:complete",
		"DELTA:pending",
		"pause:600ms",
		"commit",
		"DELTA:complete",
	}, rec.marks)

	require.Len(t, rec.events, StageEvents)
	assert.Equal(t, MsgScrapeStart, rec.events[0].Action)
	assert.Equal(t, MsgAuditComplete, rec.events[7].Action)
	for i, e := range rec.events {
		assert.Equal(t, fmt.Sprintf("evt-%d", i+1), e.ID)
		assert.Equal(t, "13:04:05", e.Timestamp)
	}
}

func TestRun_AnalyzeFailure(t *testing.T) {
	rec := &recorder{}
	sim := New(WithPacer(InstantPacer{}))
	boom := errors.New("upstream down")
	committed := false

	err := sim.Run(context.Background(), rec.sink,
		func(context.Context) error { return boom },
		func() { committed = true },
	)
	require.ErrorIs(t, err, boom)
	assert.False(t, committed)

	assert.Equal(t, []string{"ALPHA:pending", "ALPHA:complete", "BETA:pending", "ALPHA:error"}, rec.marks)
	assert.Equal(t, MsgCriticalError, rec.events[3].Action)
}

func TestRun_CanceledDuringPause(t *testing.T) {
	rec := &recorder{}
	ctx, cancel := context.WithCancel(context.Background())
	analyzed := false

	sim := New(WithDelays(Delays{Extraction: time.Hour}))
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := sim.Run(ctx, rec.sink, func(context.Context) error { analyzed = true; return nil }, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, analyzed)
	assert.Equal(t, []string{"ALPHA:pending", "ALPHA:error"}, rec.marks)
}

func TestRun_UniqueDefaultIDs(t *testing.T) {
	rec := &recorder{}
	sim := New(WithPacer(InstantPacer{}))
	require.NoError(t, sim.Run(context.Background(), rec.sink, func(context.Context) error { return nil }, nil))

	seen := map[string]bool{}
	for _, e := range rec.events {
		require.NotEmpty(t, e.ID)
		assert.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}

func TestSleepPacer(t *testing.T) {
	start := time.Now()
	require.NoError(t, SleepPacer{}.Pause(context.Background(), 15*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepPacer{}.Pause(ctx, time.Hour), context.Canceled)
}

func TestScriptShape(t *testing.T) {
	d := DefaultDelays()
	assert.Equal(t, 2600*time.Millisecond, d.Total())

	var emits, pauses, analyzes, commits int
	for _, s := range Script(d) {
		switch s.Kind {
		case StepEmit:
			emits++
		case StepPause:
			pauses++
		case StepAnalyze:
			analyzes++
		case StepCommit:
			commits++
		}
	}
	assert.Equal(t, StageEvents, emits)
	assert.Equal(t, 3, pauses)
	assert.Equal(t, 1, analyzes)
	assert.Equal(t, 1, commits)
	assert.Equal(t, "analyze", StepAnalyze.String())
}
