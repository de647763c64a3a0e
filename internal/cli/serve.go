package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yildizm/nexus/internal/server"
)

var (
	serveAddr    string
	serveOrigins []string
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the console over HTTP and websocket",
		Long: `Expose the console state over HTTP.

Endpoints:
  GET    /health              liveness
  GET    /ready               503 until an API key is configured
  GET    /api/state           current input, feed and result
  PUT    /api/input           {"text": "..."}
  POST   /api/file            multipart "file" field or a JSON attachment
  DELETE /api/file            detach the file
  POST   /api/run             start a run (?wait=true blocks until done)
  GET    /api/metrics         run counters and durations
  GET    /api/logs/stream     websocket feed of state updates`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	cmd.Flags().StringSliceVar(&serveOrigins, "allowed-origin", nil, "allowed websocket origins (repeatable)")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := GetGlobalConfig()
	log := GetLogger("serve")

	a, err := newApp(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close(context.Background()) }()

	addr := cfg.Server.Addr
	if serveAddr != "" {
		addr = serveAddr
	}

	srv := server.New(a.ctrl, server.Options{
		Addr:            addr,
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		MaxUploadSize:   cfg.Server.MaxUploadSize,
		AllowedOrigins:  serveOrigins,
		Logger:          log,
		Metrics:         a.metrics,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Nexus-9 API listening on http://%s\n", addr)
	if a.ctrl.ConfigMissing() {
		log.Warn("no API key configured; runs will be rejected until one is set")
	}
	return srv.Serve(ctx)
}
