package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/analyzer"
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/logger"
)

// InputRequest replaces the text input
type InputRequest struct {
	Text string `json:"text"`
}

// RunResponse is returned when a run is accepted
type RunResponse struct {
	RunID string           `json:"runId"`
	State controller.State `json:"state"`
}

// ErrorResponse is the body of every 4xx/5xx reply
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleReady(c *gin.Context) {
	if err := s.ctrl.RefreshConfig(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"error":  err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) handleSetInput(c *gin.Context) {
	var req InputRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body", Code: "bad_request"})
		return
	}
	s.ctrl.SetText(req.Text)
	c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

// handleAttachFile accepts a multipart "file" field or a JSON FileInput
func (s *Server) handleAttachFile(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadSize)

	var (
		file *common.FileInput
		err  error
	)
	if strings.HasPrefix(c.ContentType(), "application/json") {
		file, err = s.bindJSONFile(c)
	} else {
		file, err = s.readMultipartFile(c)
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			c.JSON(http.StatusRequestEntityTooLarge, ErrorResponse{Error: "file too large", Code: "too_large"})
		case ai.IsInputError(err):
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error(), Code: "invalid_file"})
		default:
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "bad_request"})
		}
		return
	}

	s.ctrl.AttachFile(*file)
	s.logger.InfoWithFields("file attached", []logger.Field{
		logger.F("name", file.Name),
		logger.F("mime_type", file.MIMEType),
	})
	c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

func (s *Server) readMultipartFile(c *gin.Context) (*common.FileInput, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, err
	}
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return analyzer.ReadFileInput(fh.Filename, fh.Header.Get("Content-Type"), f)
}

func (s *Server) bindJSONFile(c *gin.Context) (*common.FileInput, error) {
	var in common.FileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		return nil, err
	}
	data, err := analyzer.DecodePayload(in.Data)
	if err != nil {
		return nil, err
	}
	return analyzer.NewFileInput(in.Name, in.MIMEType, data)
}

func (s *Server) handleClearFile(c *gin.Context) {
	s.ctrl.ClearFile()
	c.JSON(http.StatusOK, s.ctrl.Snapshot())
}

// handleRun starts a run. With ?wait=true it replies after the run finishes.
func (s *Server) handleRun(c *gin.Context) {
	runID, done, err := s.ctrl.Start(s.runCtx)
	if err != nil {
		status, code := runErrorStatus(err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	if c.Query("wait") != "true" {
		s.track(runID, done)
		c.JSON(http.StatusAccepted, RunResponse{RunID: runID, State: s.ctrl.Snapshot()})
		return
	}

	select {
	case err = <-done:
	case <-c.Request.Context().Done():
		s.track(runID, done)
		return
	}
	if err != nil {
		status, code := runErrorStatus(err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	c.JSON(http.StatusOK, RunResponse{RunID: runID, State: s.ctrl.Snapshot()})
}

// track drains a background run so shutdown can wait for it
func (s *Server) track(runID string, done <-chan error) {
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := <-done; err != nil {
			s.logger.WarnWithFields("background run failed", []logger.Field{
				logger.F("run_id", runID),
				logger.Error(err),
			})
		}
	}()
}

func (s *Server) handleMetrics(c *gin.Context) {
	if s.metrics == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "metrics are disabled", Code: "disabled"})
		return
	}
	c.JSON(http.StatusOK, s.metrics.Snapshot())
}

// runErrorStatus maps Run/Start errors onto HTTP status codes
func runErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, controller.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, controller.ErrConfigMissing):
		return http.StatusPreconditionFailed, "config_missing"
	case errors.Is(err, controller.ErrNoInput):
		return http.StatusUnprocessableEntity, "no_input"
	case ai.IsUpstreamError(err):
		if ai.UpstreamErrorType(err) == ai.ErrTypeTimeout {
			return http.StatusGatewayTimeout, "upstream_timeout"
		}
		return http.StatusBadGateway, "upstream"
	case ai.IsParseError(err):
		return http.StatusBadGateway, "parse"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "canceled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
