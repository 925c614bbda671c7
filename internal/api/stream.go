package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/TLimoges33/Syn-OS-sub017/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

// Hub fans stored log entries out to connected websocket clients.
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	stop       chan struct{}
	mutex      sync.RWMutex
	logger     *slog.Logger
}

// NewHub creates a log stream hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}

	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		stop:       make(chan struct{}),
		logger:     logger,
	}
}

// Run services the hub channels until Shutdown is called.
func (h *Hub) Run() {
	for {
		select {
		case <-h.stop:
			h.mutex.Lock()
			for conn := range h.clients {
				conn.Close()
				delete(h.clients, conn)
			}
			h.mutex.Unlock()
			return

		case conn := <-h.register:
			h.mutex.Lock()
			h.clients[conn] = true
			h.mutex.Unlock()
			h.logger.Debug("log stream client connected")

		case conn := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mutex.Unlock()
			h.logger.Debug("log stream client disconnected")

		case message := <-h.broadcast:
			h.mutex.RLock()
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
					h.logger.Debug("log stream write error", "error", err)
					delete(h.clients, conn)
					conn.Close()
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// Shutdown closes all clients and stops the hub loop.
func (h *Hub) Shutdown() {
	close(h.stop)
}

// BroadcastEntry queues a log entry for delivery. It never blocks; when the
// queue is full the entry is skipped, the ring remains the source of truth.
func (h *Hub) BroadcastEntry(entry model.LogEntry) {
	message, err := json.Marshal(entry)
	if err != nil {
		return
	}

	select {
	case h.broadcast <- message:
	default:
	}
}

// ClientCount returns the number of connected stream clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}

// streamLogs handles GET /logs/stream
// @Summary      Stream log entries
// @Description  Upgrade to a websocket delivering log entries as they are stored
// @Tags         logs
// @Router       /logs/stream [get]
func (a *API) streamLogs(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}

	a.hub.register <- conn
	streamClients.Inc()

	// Drain reads so close frames are processed; the hub owns writes.
	go func() {
		defer func() {
			a.hub.unregister <- conn
			streamClients.Dec()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
