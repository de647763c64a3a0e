package controller

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/monitor"
)

// Run performs one analysis. It returns ErrBusy, ErrNoInput or
// ErrConfigMissing without touching state when a precondition fails.
// Otherwise it clears the log, plays the staged timeline around the
// analysis call and returns the analysis error, if any. On failure the
// previous result is kept. Busy is released on every path.
func (c *Controller) Run(ctx context.Context) error {
	req, runID, err := c.begin(ctx)
	if err != nil {
		return err
	}
	return c.execute(ctx, req, runID)
}

// Start checks the preconditions like Run and then runs in the background.
// The returned channel yields the run's error and is then closed.
func (c *Controller) Start(ctx context.Context) (string, <-chan error, error) {
	req, runID, err := c.begin(ctx)
	if err != nil {
		return "", nil, err
	}

	done := make(chan error, 1)
	go func() {
		defer close(done)
		done <- c.execute(ctx, req, runID)
	}()
	return runID, done, nil
}

func (c *Controller) execute(ctx context.Context, req common.AnalysisRequest, runID string) error {
	ctx, span := c.tracer.Start(ctx, "controller.Run", trace.WithAttributes(
		attribute.String("run.id", runID),
		attribute.Bool("input.has_text", req.Text != ""),
		attribute.Bool("input.has_file", req.File != nil),
	))
	defer span.End()

	start := time.Now()
	c.metrics.RunStarted(ctx)
	c.logger.InfoWithFields("analysis run started", []logger.Field{logger.F("run_id", runID)})

	var runErr error
	defer func() {
		c.finish(runErr)

		outcome := classify(runErr)
		c.metrics.RunFinished(ctx, time.Since(start), outcome)
		fields := []logger.Field{
			logger.F("run_id", runID),
			logger.F("outcome", string(outcome)),
			logger.Duration(time.Since(start)),
		}
		if runErr != nil {
			span.RecordError(runErr)
			span.SetStatus(codes.Error, string(outcome))
			c.logger.ErrorWithFields("analysis run failed", append(fields, logger.Error(runErr)))
			return
		}
		span.SetStatus(codes.Ok, "")
		c.logger.InfoWithFields("analysis run finished", fields)
	}()

	var result *common.AnalysisResult
	analyze := func(ctx context.Context) error {
		started := time.Now()
		res, err := c.analyzer.Analyze(ctx, req.Text, req.File)
		c.metrics.AnalyzeFinished(ctx, time.Since(started), err)
		if err != nil {
			return err
		}
		if res == nil {
			return ai.NewParseError("analysis returned no result", nil)
		}
		result = res
		return nil
	}

	commit := func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.result = result
		c.publishLocked(Update{Kind: UpdateResult, Result: result.Clone()})
	}

	runErr = c.simulator.Run(ctx, c.appendLog, analyze, commit)
	return runErr
}

// begin checks the preconditions and marks the controller busy
func (c *Controller) begin(ctx context.Context) (common.AnalysisRequest, string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.busy {
		c.metrics.RunSkipped(ctx, monitor.SkipBusy)
		return common.AnalysisRequest{}, "", ErrBusy
	}

	req := common.AnalysisRequest{Text: c.text}
	if c.file != nil {
		f := *c.file
		req.File = &f
	}
	if !req.HasInput() {
		c.metrics.RunSkipped(ctx, monitor.SkipNoInput)
		return common.AnalysisRequest{}, "", ErrNoInput
	}

	if err := c.refreshConfigLocked(); err != nil {
		c.metrics.RunSkipped(ctx, monitor.SkipConfigMissing)
		c.logger.WarnWithFields("analysis run skipped", []logger.Field{logger.Error(err)})
		return common.AnalysisRequest{}, "", ErrConfigMissing
	}

	c.busy = true
	c.runID = uuid.NewString()
	c.logs = []common.LogEvent{}
	c.lastErr = nil
	c.publishLocked(Update{Kind: UpdateRunStarted})

	return req, c.runID, nil
}

func (c *Controller) finish(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.busy = false
	c.lastErr = err
	u := Update{Kind: UpdateRunFinished}
	if err != nil {
		u.Error = err.Error()
	}
	c.publishLocked(u)
}

func (c *Controller) appendLog(event common.LogEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logs = append(c.logs, event)
	c.publishLocked(Update{Kind: UpdateLog, Log: &event})
}

func classify(err error) monitor.Outcome {
	switch {
	case err == nil:
		return monitor.OutcomeSuccess
	case ai.IsUpstreamError(err):
		return monitor.OutcomeUpstream
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return monitor.OutcomeCanceled
	case ai.IsParseError(err):
		return monitor.OutcomeParse
	default:
		return monitor.OutcomeOther
	}
}
