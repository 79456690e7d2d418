// Package realtime pushes recommendation updates to connected users over
// WebSocket.
package realtime

import (
	"net/http"
	"sync"
	"time"

	"github.com/architect/elective-advisor/internal/common/errors"
	"github.com/architect/elective-advisor/internal/common/middleware"
	"github.com/architect/elective-advisor/internal/metrics"
	"github.com/architect/elective-advisor/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 30 * time.Second
	sendBufferSize = 16

	// EventConnected is the first message a client receives.
	EventConnected = "connected"
)

// Message is one frame sent to a client.
type Message struct {
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data,omitempty"`
	ClientID  string      `json:"client_id,omitempty"`
}

// Client is one WebSocket connection of a user.
type Client struct {
	ID     string
	UserID uint
	conn   *websocket.Conn
	send   chan Message
}

// Hub tracks connected clients per user.
type Hub struct {
	mu       sync.RWMutex
	clients  map[uint]map[*Client]struct{}
	closed   bool
	upgrader websocket.Upgrader
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// Publish delivers an event to every connection of userID. Slow clients whose
// buffer is full miss the event.
func (h *Hub) Publish(userID uint, eventType string, payload interface{}) {
	msg := Message{Type: eventType, Timestamp: time.Now().UTC(), Data: payload}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[userID] {
		select {
		case client.send <- msg:
		default:
			logger.Warn("stream client buffer full, dropping event",
				zap.String("client_id", client.ID),
				zap.Uint("user_id", userID),
				zap.String("type", eventType),
			)
		}
	}
}

// ClientCount returns the number of open connections.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for _, set := range h.clients {
		n += len(set)
	}
	return n
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, set := range h.clients {
		for client := range set {
			close(client.send)
			metrics.StreamClients.Dec()
		}
		delete(h.clients, userID)
	}
}

// Handler upgrades an authenticated request to a WebSocket stream
// GET /api/v1/recommendations/stream
func (h *Hub) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := middleware.UserID(c)
		if !ok {
			middleware.JSONErrorResponse(c, errors.Unauthorized("authentication required"))
			return
		}

		conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			return
		}

		client := &Client{
			ID:     uuid.New().String(),
			UserID: userID,
			conn:   conn,
			send:   make(chan Message, sendBufferSize),
		}
		if !h.register(client) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
				time.Now().Add(writeWait))
			_ = conn.Close()
			return
		}

		go client.writePump()
		client.readPump()
		h.unregister(client)
	}
}

func (h *Hub) register(client *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	set, ok := h.clients[client.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[client.UserID] = set
	}
	set[client] = struct{}{}
	client.send <- Message{Type: EventConnected, Timestamp: time.Now().UTC(), ClientID: client.ID}
	metrics.StreamClients.Inc()
	logger.Debug("stream client registered", zap.String("client_id", client.ID), zap.Uint("user_id", client.UserID))
	return true
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.clients[client.UserID]
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(h.clients, client.UserID)
	}
	close(client.send)
	metrics.StreamClients.Dec()
	logger.Debug("stream client unregistered", zap.String("client_id", client.ID), zap.Uint("user_id", client.UserID))
}

// readPump drains client frames so pongs and close frames are processed.
func (c *Client) readPump() {
	defer c.conn.Close()
	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("stream client read error", zap.String("client_id", c.ID), zap.Error(err))
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
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
