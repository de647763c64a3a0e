package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yildizm/nexus/internal/ai"
	"github.com/yildizm/nexus/internal/common"
	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/monitor"
	"github.com/yildizm/nexus/internal/timeline"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m,
		goleak.IgnoreAnyFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreAnyFunction("net/http.(*persistConn).writeLoop"),
	)
}

type stubAnalyzer struct {
	mu        sync.Mutex
	configErr error
	err       error
	block     chan struct{}
}

func (s *stubAnalyzer) Analyze(ctx context.Context, _ string, _ *common.FileInput) (*common.AnalysisResult, error) {
	s.mu.Lock()
	block, err := s.block, s.err
	s.mu.Unlock()

	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	r := common.PlaceholderResult()
	r.InvestmentThesis = "Durable wedge into mid-market logistics."
	r.BearCase = "Incumbents bundle the feature."
	return r, nil
}

func (s *stubAnalyzer) CheckConfig() error { return s.configErr }

func newTestServer(t *testing.T, a *stubAnalyzer, metrics *monitor.RunMetrics) (*Server, *controller.Controller) {
	t.Helper()
	ctrl := controller.New(a,
		controller.WithSimulator(timeline.New(timeline.WithPacer(timeline.InstantPacer{}))),
		controller.WithMetrics(metrics),
	)
	s := New(ctrl, Options{Metrics: metrics})
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, s.Close(ctx))
	})
	return s, ctrl
}

func do(s *Server, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{}, nil)

	w := do(s, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	a := &stubAnalyzer{configErr: ai.NewConfigurationError("gemini", "api_key", "API key is required")}
	s, _ := newTestServer(t, a, nil)

	w := do(s, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "API key is required")

	a.mu.Lock()
	a.configErr = nil
	a.mu.Unlock()

	w = do(s, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetInput(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{}, nil)

	w := do(s, http.MethodPut, "/api/input", []byte(`{"text":"freight copilot"}`), "application/json")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "freight copilot", decode[controller.State](t, w).Text)
	assert.Equal(t, "freight copilot", ctrl.Snapshot().Text)

	w = do(s, http.MethodPut, "/api/input", []byte(`{"text":`), "application/json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunPreconditions(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{}, nil)

	w := do(s, http.MethodPost, "/api/run", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "no_input", decode[ErrorResponse](t, w).Code)

	s2, ctrl2 := newTestServer(t, &stubAnalyzer{configErr: ai.NewConfigurationError("gemini", "api_key", "missing")}, nil)
	ctrl2.SetText("pitch")
	w = do(s2, http.MethodPost, "/api/run", nil, "")
	assert.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, "config_missing", decode[ErrorResponse](t, w).Code)
}

func TestRunWait(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{}, nil)
	ctrl.SetText("pitch")

	w := do(s, http.MethodPost, "/api/run?wait=true", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[RunResponse](t, w)
	assert.NotEmpty(t, resp.RunID)
	assert.False(t, resp.State.Busy)
	assert.Len(t, resp.State.Logs, timeline.StageEvents)
	assert.Equal(t, "Durable wedge into mid-market logistics.", resp.State.Result.InvestmentThesis)
}

func TestRunWaitUpstreamFailure(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{err: ai.NewUpstreamError(ai.ErrTypeRateLimit, "quota", "gemini")}, nil)
	ctrl.SetText("pitch")

	w := do(s, http.MethodPost, "/api/run?wait=true", nil, "")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "upstream", decode[ErrorResponse](t, w).Code)
	assert.True(t, ctrl.Snapshot().Result.IsPending())
}

func TestRunAsyncAndBusy(t *testing.T) {
	a := &stubAnalyzer{block: make(chan struct{})}
	s, ctrl := newTestServer(t, a, nil)
	ctrl.SetText("pitch")

	w := do(s, http.MethodPost, "/api/run", nil, "")
	require.Equal(t, http.StatusAccepted, w.Code)
	resp := decode[RunResponse](t, w)
	assert.NotEmpty(t, resp.RunID)
	assert.True(t, resp.State.Busy)

	w = do(s, http.MethodPost, "/api/run", nil, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "busy", decode[ErrorResponse](t, w).Code)

	close(a.block)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.wait(ctx))

	state := ctrl.Snapshot()
	assert.False(t, state.Busy)
	assert.Equal(t, resp.RunID, state.RunID)
	assert.False(t, state.Result.IsPending())
}

func TestCloseCancelsBackgroundRun(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{block: make(chan struct{})}, nil)
	ctrl.SetText("pitch")

	w := do(s, http.MethodPost, "/api/run", nil, "")
	require.Equal(t, http.StatusAccepted, w.Code)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))

	state := ctrl.Snapshot()
	assert.False(t, state.Busy)
	assert.NotEmpty(t, state.LastError)
	assert.True(t, state.Result.IsPending())
}

func multipartBody(t *testing.T, name string, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestAttachAndClearFile(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{}, nil)

	body, ct := multipartBody(t, "memo.txt", []byte("Revenue grew 3x year over year."))
	w := do(s, http.MethodPost, "/api/file", body, ct)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	state := decode[controller.State](t, w)
	require.NotNil(t, state.File)
	assert.Equal(t, "memo.txt", state.File.Name)
	assert.Equal(t, "text/plain", state.File.MIMEType)
	assert.NotNil(t, ctrl.Snapshot().File)

	w = do(s, http.MethodDelete, "/api/file", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, ctrl.Snapshot().File)
}

func TestAttachJSONFile(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{}, nil)

	w := do(s, http.MethodPost, "/api/file",
		[]byte(`{"name":"deck.pdf","mimeType":"application/pdf","data":"data:application/pdf;base64,JVBERi0xLjQK"}`),
		"application/json")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "JVBERi0xLjQK", ctrl.Snapshot().File.Data)

	w = do(s, http.MethodPost, "/api/file",
		[]byte(`{"name":"a.zip","mimeType":"application/zip","data":"UEsDBA=="}`),
		"application/json")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "invalid_file", decode[ErrorResponse](t, w).Code)
}

func TestAttachMissingFile(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{}, nil)

	w := do(s, http.MethodPost, "/api/file", []byte("nope"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMetrics(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{}, nil)
	w := do(s, http.MethodGet, "/api/metrics", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	metrics, err := monitor.NewRunMetrics()
	require.NoError(t, err)
	s, ctrl := newTestServer(t, &stubAnalyzer{}, metrics)
	ctrl.SetText("pitch")
	require.Equal(t, http.StatusOK, do(s, http.MethodPost, "/api/run?wait=true", nil, "").Code)

	w = do(s, http.MethodGet, "/api/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	snap := decode[monitor.RunSnapshot](t, w)
	assert.EqualValues(t, 1, snap.Started)
	assert.EqualValues(t, 1, snap.Completed)
}

func TestStreamForwardsUpdates(t *testing.T) {
	s, ctrl := newTestServer(t, &stubAnalyzer{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/logs/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var snap SnapshotMessage
	require.NoError(t, conn.ReadJSON(&snap))
	assert.Equal(t, "snapshot", snap.Type)
	assert.True(t, snap.State.Result.IsPending())

	ctrl.SetText("pitch")
	require.NoError(t, ctrl.Run(context.Background()))

	var kinds []controller.UpdateKind
	for {
		var u controller.Update
		require.NoError(t, conn.ReadJSON(&u))
		kinds = append(kinds, u.Kind)
		if u.Kind == controller.UpdateRunFinished {
			break
		}
	}

	require.Len(t, kinds, 2+timeline.StageEvents+2)
	assert.Equal(t, controller.UpdateInput, kinds[0])
	assert.Equal(t, controller.UpdateRunStarted, kinds[1])
	assert.Equal(t, controller.UpdateResult, kinds[len(kinds)-3])
}

func TestStreamClosesOnShutdown(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{}, nil)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/logs/stream"
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	defer func() { _ = conn.Close() }()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var snap SnapshotMessage
	require.NoError(t, conn.ReadJSON(&snap))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Close(ctx))

	_, _, err = conn.ReadMessage()
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway), "got %v", err)
}

func TestServeShutsDownOnCancel(t *testing.T) {
	s, _ := newTestServer(t, &stubAnalyzer{}, nil)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- s.serve(ctx, ln) }()

	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}, Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + ln.Addr().String() + "/health")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	cancel()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}

func TestRunErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{controller.ErrBusy, http.StatusConflict, "busy"},
		{controller.ErrConfigMissing, http.StatusPreconditionFailed, "config_missing"},
		{controller.ErrNoInput, http.StatusUnprocessableEntity, "no_input"},
		{ai.NewUpstreamError(ai.ErrTypeTimeout, "slow", "gemini"), http.StatusGatewayTimeout, "upstream_timeout"},
		{ai.NewUpstreamError(ai.ErrTypeNetwork, "down", "gemini"), http.StatusBadGateway, "upstream"},
		{ai.NewParseError("bad", nil), http.StatusBadGateway, "parse"},
		{context.Canceled, http.StatusServiceUnavailable, "canceled"},
	}
	for _, tt := range tests {
		status, code := runErrorStatus(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
		assert.Equal(t, tt.code, code)
	}
}
