package api

import (
	"context"
	"encoding/json"
	"net/http"
	"slices"
	"sync"
	"time"

	"forensics/metrics"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocket configuration constants
const (
	// writeWait is the time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// pongWait is the time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// pingPeriod sends pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// maxMessageSize is the maximum message size allowed from peer.
	maxMessageSize = 512

	sendChannelSize = 256
)

// Change notifications pushed to dashboards
const (
	EventCaseCreated      = "case:created"
	EventCaseUpdated      = "case:updated"
	EventArtifactUpdated  = "evidence:updated"
	EventFileUploaded     = "file:uploaded"
	EventCustodyAppended  = "custody:appended"
	EventStoryUpdated     = "story:updated"
	EventJournalAppended  = "journal:appended"
	EventAnalysisComplete = "analysis:completed"
)

// WebSocketMessage is the envelope of every broadcast
type WebSocketMessage struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// client represents a single WebSocket client connection.
type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

// Hub maintains the set of active WebSocket clients and broadcasts messages.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	mu         sync.RWMutex
	logger     *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewHub creates a new WebSocket hub. It must be started with Start.
func NewHub(logger *zap.SugaredLogger, ctx context.Context) *Hub {
	hubCtx, cancel := context.WithCancel(ctx)
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		logger:     logger,
		ctx:        hubCtx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

// Start runs the hub's event loop. Call it exactly once, in its own goroutine.
func (h *Hub) Start() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				c.conn.Close()
			}
			h.clients = make(map[*client]bool)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(0)
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(count))
			h.logger.Debugw("WebSocket client registered", "total_clients", count)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			metrics.WebSocketClients.Set(float64(count))
			h.logger.Debugw("WebSocket client unregistered", "total_clients", count)

		case message := <-h.broadcast:
			h.mu.RLock()
			var slow []*client
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					slow = append(slow, c)
				}
			}
			h.mu.RUnlock()

			// A full send buffer means the client stopped reading
			if len(slow) > 0 {
				h.mu.Lock()
				for c := range h.clients {
					if slices.Contains(slow, c) {
						delete(h.clients, c)
						close(c.send)
						c.conn.Close()
					}
				}
				count := len(h.clients)
				h.mu.Unlock()
				metrics.WebSocketClients.Set(float64(count))
			}
		}
	}
}

// BroadcastMessage queues a message for every connected client. It never
// fails the calling operation: a full queue drops the message after a second.
func (h *Hub) BroadcastMessage(msgType string, data interface{}) error {
	if h == nil {
		return nil
	}

	payload, err := json.Marshal(WebSocketMessage{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		h.logger.Errorw("Failed to marshal WebSocket message",
			"type", msgType,
			"error", err)
		return err
	}

	select {
	case h.broadcast <- payload:
	case <-h.ctx.Done():
	case <-time.After(time.Second):
		h.logger.Warnw("WebSocket broadcast timeout", "type", msgType)
	}
	return nil
}

// ClientCount returns the number of connected WebSocket clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop cancels the hub and waits for its loop to finish.
func (h *Hub) Stop() {
	h.cancel()
	<-h.done
}

// readPump drains the connection to notice disconnects and pongs.
func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debugw("WebSocket unexpected close", "error", err)
			}
			return
		}
	}
}

// writePump sends queued messages and keeps the connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleWebSocket godoc
//
//	@Summary		Subscribe to change notifications
//	@Description	Upgrades to a websocket that receives case, evidence, custody and journal change events
//	@Tags			system
//	@Security		ApiKeyAuth
//	@Param			token	query	string	false	"JWT when headers cannot be set"
//	@Success		101
//	@Router			/api/ws [get]
func (a *API) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     a.allowedOrigin,
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Errorw("WebSocket upgrade failed", "error", err)
		return
	}

	c := &client{
		hub:  a.hub,
		conn: conn,
		send: make(chan []byte, sendChannelSize),
	}

	select {
	case a.hub.register <- c:
	case <-a.hub.ctx.Done():
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// allowedOrigin accepts same-origin handshakes and the configured CORS origins
func (a *API) allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range a.config.Server.CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// broadcast publishes a change event, logging rather than failing on error
func (a *API) broadcast(eventType string, data interface{}) {
	if err := a.hub.BroadcastMessage(eventType, data); err != nil {
		a.logger.Warnw("Failed to broadcast change", "type", eventType, "error", err)
	}
}
