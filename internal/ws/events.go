// Package ws streams mount events to connected hosts.
//
// Clients connect to /stream and receive one JSON message per volume
// mount or unmount under the watched bases. The stream is one-way; the
// only client message handled is a keep-alive ping.
package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/saftree/storagebridge/internal/logging"
	"github.com/saftree/storagebridge/internal/monitoring"
	"github.com/saftree/storagebridge/internal/storage"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // the host proxies connections; origin is not meaningful here
	},
}

// Handler manages event stream connections
type Handler struct {
	watcher *storage.Watcher
	metrics *monitoring.Metrics
	log     *logging.Logger
}

// NewHandler creates a new event stream handler
func NewHandler(watcher *storage.Watcher, metrics *monitoring.Metrics, log *logging.Logger) *Handler {
	if log == nil {
		log = logging.Nop()
	}
	return &Handler{watcher: watcher, metrics: metrics, log: log}
}

// HandleConnection upgrades the request and pushes mount events until the
// client disconnects.
func (h *Handler) HandleConnection(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
		defer h.metrics.WSConnections.Dec()
	}

	events, cancel := h.watcher.Subscribe()
	defer cancel()

	// Reader goroutine: surfaces client disconnects and answers pings.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var msg map[string]interface{}
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg["type"] == "ping" {
				_ = conn.WriteJSON(map[string]interface{}{"type": "pong"})
			}
		}
	}()

	_ = conn.WriteJSON(map[string]interface{}{"type": "system", "message": "event stream connected"})

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(map[string]interface{}{"type": "mount_event", "event": ev}); err != nil {
				h.log.Debug("event write failed", zap.Error(err))
				return
			}
		case <-done:
			return
		}
	}
}
