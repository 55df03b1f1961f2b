package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"thrift-swap-backend/internal/metrics"
	"thrift-swap-backend/internal/models"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsSendQueue    = 32
)

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// wsClient owns one connection. Only its writer goroutine writes to conn.
type wsClient struct {
	userID string
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

func newWSClient(userID string, conn *websocket.Conn) *wsClient {
	c := &wsClient{
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, wsSendQueue),
		done:   make(chan struct{}),
	}
	go c.writeLoop()
	return c
}

func (c *wsClient) writeLoop() {
	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			err := c.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err == nil {
				err = c.conn.WriteMessage(websocket.TextMessage, data)
			}
			if err != nil {
				log.Warn().Err(err).Str("user_id", c.userID).Msg("Failed to push event")
				c.close()
				return
			}
		}
	}
}

// enqueue never blocks. It reports false when the queue is full or the
// client is closed.
func (c *wsClient) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// close stops the writer and closes the connection, which also ends the
// reader blocked on it
func (c *wsClient) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu          sync.RWMutex
	connections map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		connections: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user, replacing any
// previous one
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, exists := h.connections[userID]; exists {
		existing.close()
		metrics.WsConnections.Dec()
	}
	h.connections[userID] = newWSClient(userID, conn)
	metrics.WsConnections.Inc()

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes the user's connection if it is still conn
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, exists := h.connections[userID]; exists && client.conn == conn {
		client.close()
		delete(h.connections, userID)
		metrics.WsConnections.Dec()
		log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
	}
}

// SendToUser queues a message for a specific user without waiting for it to
// be written. A user whose queue is full is disconnected.
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, exists := h.connections[userID]
	h.mu.RUnlock()

	if !exists {
		return fmt.Errorf("user %s is not connected", userID)
	}

	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if !client.enqueue(data) {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("user %s is not keeping up, disconnected", userID)
	}
	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, exists := h.connections[userID]
	return exists
}

func (h *WSHub) notify(userID string, message WSMessage) {
	if !h.IsOnline(userID) {
		return
	}
	if err := h.SendToUser(userID, message); err != nil {
		log.Warn().
			Err(err).
			Str("user_id", userID).
			Str("type", message.Type).
			Msg("Failed to queue event")
	}
}

// MatchCreated pushes the new match to both participants
func (h *WSHub) MatchCreated(_ context.Context, match *models.Match) {
	message := WSMessage{Type: EventMatchCreated, Data: match}
	h.notify(match.LikerID, message)
	h.notify(match.OwnerID, message)
}

// MessagePosted pushes the new message to the sender's counterpart
func (h *WSHub) MessagePosted(_ context.Context, match *models.Match, msg *models.Message) {
	h.notify(match.Counterpart(msg.SenderID), WSMessage{Type: EventMessagePosted, Data: msg})
}
