// Package telemetry installs the OpenTelemetry tracer provider used by the
// analyzer and controller spans.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"
)

// Options selects where spans go
type Options struct {
	Enabled bool
	// Output is a file path; empty or "-" means stderr
	Output string
	Pretty bool
}

// ShutdownFunc flushes and stops the provider
type ShutdownFunc func(context.Context) error

func noop(context.Context) error { return nil }

// Init installs a stdout tracer provider as the global provider. When
// telemetry is disabled the global no-op provider is left in place.
func Init(opts Options) (ShutdownFunc, error) {
	if !opts.Enabled {
		return noop, nil
	}

	w, closeOutput, err := openOutput(opts.Output)
	if err != nil {
		return noop, err
	}

	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if opts.Pretty {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}

	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		_ = closeOutput()
		return noop, fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return func(ctx context.Context) error {
		err := tp.Shutdown(ctx)
		if cerr := closeOutput(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return os.Stderr, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, nil, fmt.Errorf("failed to create telemetry directory: %w", err)
	}

	f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open telemetry output: %w", err)
	}
	return f, f.Close, nil
}
