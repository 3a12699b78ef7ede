package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/nielsreijers/prodlog/internal/logger"
)

// liveEvent is the line streamed to every GET /api/live subscriber when a
// capture commits.
type liveEvent struct {
	UUID        string `json:"uuid"`
	CaptureType string `json:"capture_type"`
	Cmd         string `json:"cmd"`
	StartTime   string `json:"start_time"`
}

// liveHub fan-outs committed captures to connected websocket subscribers,
// generalized from the teacher's PTYRoutes output-forwarding pattern in
// internal/relay/pty_relay.go (there it forwards raw PTY bytes to one
// browser per session; here it forwards one JSON line to every
// subscriber, since there is exactly one capture stream per process).
type liveHub struct {
	mu   sync.RWMutex
	subs map[*websocket.Conn]struct{}
}

func newLiveHub() *liveHub {
	return &liveHub{subs: make(map[*websocket.Conn]struct{})}
}

func (h *liveHub) add(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[c] = struct{}{}
}

func (h *liveHub) remove(c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, c)
}

func (h *liveHub) publish(ev liveEvent) {
	data, err := json.Marshal(ev)
	if err != nil {
		logger.Warn("httpapi: failed to marshal live event", "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs))
	for c := range h.subs {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := c.Write(ctx, websocket.MessageText, data); err != nil {
			logger.Warn("httpapi: dropping slow or closed live subscriber", "error", err)
		}
		cancel()
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		logger.Warn("httpapi: live websocket accept failed", "error", err)
		return
	}
	defer conn.CloseNow()

	s.hub.add(conn)
	defer s.hub.remove(conn)

	ctx := r.Context()
	for {
		if _, _, err := conn.Read(ctx); err != nil {
			return
		}
	}
}
