package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/felixgeelhaar/taskplan/internal/trace"
	"github.com/felixgeelhaar/taskplan/internal/ux"
)

// Stream message types
const (
	MessageEvent  = "event"
	MessageResult = "result"
	MessageError  = "error"
)

// StreamMessage is one frame sent on /v1/plan/stream
type StreamMessage struct {
	Type   string          `json:"type"`
	Event  *trace.Event    `json:"event,omitempty"`
	Result *ux.PlanReport  `json:"result,omitempty"`
	Error  *ux.ErrorReport `json:"error,omitempty"`
}

const (
	missionReadTimeout = 10 * time.Second
	frameWriteTimeout  = 5 * time.Second
)

// wsRecorder forwards search events to a websocket. The first write error
// silences it; the run itself continues.
type wsRecorder struct {
	mu   sync.Mutex
	conn *websocket.Conn
	err  error
}

func (r *wsRecorder) send(msg StreamMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	_ = r.conn.SetWriteDeadline(time.Now().Add(frameWriteTimeout))
	r.err = r.conn.WriteJSON(msg)
	return r.err
}

func (r *wsRecorder) Record(e trace.Event) {
	_ = r.send(StreamMessage{Type: MessageEvent, Event: &e})
}

// handleStream upgrades to a websocket, reads one mission document and
// streams the search trace followed by a result or error frame.
func (s *Server) handleStream(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error
		return
	}
	defer conn.Close()

	rec := &wsRecorder{conn: conn}
	conn.SetReadLimit(s.maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(missionReadTimeout))

	_, body, err := conn.ReadMessage()
	if err != nil {
		s.logger.WithError(err).Debug("stream closed before a mission arrived")
		return
	}

	m, err := parseMission(body)
	if err == nil {
		var report *ux.PlanReport
		if report, err = s.plan(c.Request.Context(), m, rec); err == nil {
			_ = rec.send(StreamMessage{Type: MessageResult, Result: report})
		}
	}
	if err != nil {
		report := ux.NewErrorReport(err)
		_ = rec.send(StreamMessage{Type: MessageError, Error: &report})
		if s.metrics != nil {
			s.metrics.RecordError(string(report.Code), "server")
		}
	}

	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(frameWriteTimeout))
}
