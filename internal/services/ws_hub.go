package services

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// WebSocket message types
const (
	MessagePhotoRated    = "photo_rated"
	MessagePointsUpdated = "points_updated"
	MessagePong          = "pong"
	MessageError         = "error"
)

const writeWait = 10 * time.Second

// Notifier pushes economy events to connected users
type Notifier interface {
	PhotoRated(ownerID, photoID string, score, points int)
	PointsUpdated(userID string, points int)
}

// NopNotifier drops every event
type NopNotifier struct{}

func (NopNotifier) PhotoRated(string, string, int, int) {}
func (NopNotifier) PointsUpdated(string, int)           {}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type      string `json:"type"`
	Timestamp int64  `json:"timestamp,omitempty"`
	PhotoID   string `json:"photo_id,omitempty"`
	Score     int    `json:"score,omitempty"`
	Points    *int   `json:"points,omitempty"`
	Message   string `json:"message,omitempty"`
}

// wsClient serialises writes; gorilla connections allow one writer at a time
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// WSHub manages WebSocket connections, one per user
type WSHub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

// NewWSHub creates a new WebSocket hub
func NewWSHub() *WSHub {
	return &WSHub{
		clients: make(map[string]*wsClient),
	}
}

// Register registers a new WebSocket connection for a user, closing any previous one
func (h *WSHub) Register(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if existing, ok := h.clients[userID]; ok {
		existing.conn.Close()
	}
	h.clients[userID] = &wsClient{conn: conn}

	log.Info().Str("user_id", userID).Msg("WebSocket connection registered")
}

// Unregister removes conn if it is still the registered connection of the user
func (h *WSHub) Unregister(userID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, ok := h.clients[userID]
	if !ok || client.conn != conn {
		return
	}
	client.conn.Close()
	delete(h.clients, userID)

	log.Info().Str("user_id", userID).Msg("WebSocket connection unregistered")
}

// SendToUser sends a message to a specific user
func (h *WSHub) SendToUser(userID string, message WSMessage) error {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return fmt.Errorf("user %s is not connected", userID)
	}

	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	if err := client.write(data); err != nil {
		h.Unregister(userID, client.conn)
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// IsOnline checks if a user is online
func (h *WSHub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.clients[userID]
	return ok
}

// PhotoRated tells the owner that one of their photos received a score
func (h *WSHub) PhotoRated(ownerID, photoID string, score, points int) {
	h.notify(ownerID, WSMessage{
		Type:    MessagePhotoRated,
		PhotoID: photoID,
		Score:   score,
		Points:  &points,
	})
}

// PointsUpdated sends the new balance of a user
func (h *WSHub) PointsUpdated(userID string, points int) {
	h.notify(userID, WSMessage{Type: MessagePointsUpdated, Points: &points})
}

func (h *WSHub) notify(userID string, message WSMessage) {
	if !h.IsOnline(userID) {
		return
	}
	if err := h.SendToUser(userID, message); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", message.Type).Msg("Failed to send notification")
	}
}
