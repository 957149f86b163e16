package handlers

import (
	"encoding/json"
	"net/http"

	"photo-rating-backend/internal/middleware"
	"photo-rating-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const maxMessageSize = 4096

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // token in the query string is the only credential
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub       *services.WSHub
	validator middleware.TokenValidator
	ledger    *services.Ledger
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.WSHub, validator middleware.TokenValidator, ledger *services.Ledger) *WebSocketHandler {
	return &WebSocketHandler{
		hub:       hub,
		validator: validator,
		ledger:    ledger,
	}
}

// HandleWebSocket handles GET /ws?token=...
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.validator.ValidateJWT(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxMessageSize)

	h.hub.Register(userID, conn)
	defer h.hub.Unregister(userID, conn)

	// current balance right away so the client does not need a separate request
	if points, err := h.ledger.Balance(r.Context(), userID); err == nil {
		h.hub.PointsUpdated(userID, points)
	} else {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to load balance for WebSocket client")
	}

	log.Info().Str("user_id", userID).Msg("WebSocket connection established")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			return
		}

		var msg services.WSMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			h.send(userID, services.WSMessage{Type: services.MessageError, Message: "Invalid message format"})
			continue
		}

		switch msg.Type {
		case "ping":
			h.send(userID, services.WSMessage{Type: services.MessagePong})
		default:
			h.send(userID, services.WSMessage{Type: services.MessageError, Message: "Unknown message type"})
		}
	}
}

func (h *WebSocketHandler) send(userID string, msg services.WSMessage) {
	if err := h.hub.SendToUser(userID, msg); err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("type", msg.Type).Msg("Failed to send WebSocket message")
	}
}
