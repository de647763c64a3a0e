package server

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yildizm/nexus/internal/controller"
	"github.com/yildizm/nexus/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// SnapshotMessage is the first frame of every stream
type SnapshotMessage struct {
	Type  string           `json:"type"`
	State controller.State `json:"state"`
}

// handleStream upgrades to a websocket and forwards controller updates as
// JSON frames until the client goes away or the server shuts down.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WarnWithFields("websocket upgrade failed", []logger.Field{logger.Error(err)})
		return
	}

	s.background.Add(1)
	defer s.background.Done()
	defer func() { _ = conn.Close() }()

	updates, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()

	if err := s.write(conn, SnapshotMessage{Type: "snapshot", State: s.ctrl.Snapshot()}); err != nil {
		return
	}

	// Reads only detect the peer closing; clients send nothing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return
			}
			if err := s.write(conn, u); err != nil {
				s.logger.DebugWithFields("websocket write failed", []logger.Field{logger.Error(err)})
				return
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-closed:
			return
		case <-s.runCtx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
				time.Now().Add(writeWait))
			return
		}
	}
}

func (s *Server) write(conn *websocket.Conn, v any) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return conn.WriteJSON(v)
}
