// Package server exposes the controller over HTTP: JSON state and input
// endpoints, a run trigger and a websocket feed of controller updates.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/logger"
	"github.com/yildizm/nexus/internal/monitor"
)

// Options configures the server
type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64
	// AllowedOrigins limits websocket upgrades; empty allows any origin
	AllowedOrigins []string

	Logger  *logger.Logger
	Metrics *monitor.RunMetrics
}

// DefaultOptions returns loopback defaults
func DefaultOptions() Options {
	return Options{
		Addr:            "127.0.0.1:8090",
		ReadTimeout:     15 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxUploadSize:   20 << 20,
	}
}

// Server serves one controller
type Server struct {
	ctrl     *controller.Controller
	opts     Options
	logger   *logger.Logger
	metrics  *monitor.RunMetrics
	router   *gin.Engine
	upgrader websocket.Upgrader

	// runCtx outlives requests and is canceled on shutdown
	runCtx     context.Context
	cancelRuns context.CancelFunc
	background sync.WaitGroup
}

// New builds the router for ctrl
func New(ctrl *controller.Controller, opts Options) *Server {
	defaults := DefaultOptions()
	if opts.Addr == "" {
		opts.Addr = defaults.Addr
	}
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = defaults.MaxUploadSize
	}

	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	runCtx, cancel := context.WithCancel(context.Background())
	s := &Server{
		ctrl:       ctrl,
		opts:       opts,
		logger:     log.WithComponent("server"),
		metrics:    opts.Metrics,
		runCtx:     runCtx,
		cancelRuns: cancel,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     s.checkOrigin,
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", s.handleReady)

	api := router.Group("/api")
	api.GET("/state", s.handleState)
	api.PUT("/input", s.handleSetInput)
	api.POST("/file", s.handleAttachFile)
	api.DELETE("/file", s.handleClearFile)
	api.POST("/run", s.handleRun)
	api.GET("/metrics", s.handleMetrics)
	api.GET("/logs/stream", s.handleStream)

	return router
}

// Serve listens on the configured address until ctx is done
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.opts.Addr, err)
	}
	return s.serve(ctx, ln)
}

func (s *Server) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.opts.ReadTimeout,
		ReadTimeout:       s.opts.ReadTimeout,
		WriteTimeout:      s.opts.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.InfoWithFields("server listening", []logger.Field{logger.F("addr", ln.Addr().String())})
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()

		s.cancelRuns()
		err := srv.Shutdown(shutdownCtx)
		if waitErr := s.wait(shutdownCtx); waitErr != nil && err == nil {
			err = waitErr
		}
		if err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		s.logger.Info("server exited")
		return nil
	})

	return g.Wait()
}

// Close cancels background runs and streams and waits for them
func (s *Server) Close(ctx context.Context) error {
	s.cancelRuns()
	return s.wait(ctx)
}

// wait blocks until background runs and websocket streams exit
func (s *Server) wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range s.opts.AllowedOrigins {
		if allowed == origin {
			return true
		}
	}
	return false
}
