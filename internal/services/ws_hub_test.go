package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// connectPair returns the server side and client side of a websocket
func connectPair(t *testing.T) (*websocket.Conn, *websocket.Conn) {
	t.Helper()

	serverConns := make(chan *websocket.Conn, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade failed: %v", err)
			return
		}
		serverConns <- conn
	}))
	t.Cleanup(srv.Close)

	client, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	select {
	case server := <-serverConns:
		return server, client
	case <-time.After(5 * time.Second):
		t.Fatal("server connection not established")
		return nil, nil
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) WSMessage {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("invalid message %s: %v", data, err)
	}
	return msg
}

func TestWSHub_Notifications(t *testing.T) {
	hub := NewWSHub()
	server, client := connectPair(t)
	hub.Register("owner", server)

	if !hub.IsOnline("owner") {
		t.Fatal("expected owner to be online")
	}

	hub.PhotoRated("owner", "photo-1", 4, 7)
	msg := readMessage(t, client)
	if msg.Type != MessagePhotoRated || msg.PhotoID != "photo-1" || msg.Score != 4 || msg.Points == nil || *msg.Points != 7 {
		t.Errorf("unexpected message %+v", msg)
	}

	hub.PointsUpdated("owner", 0)
	msg = readMessage(t, client)
	if msg.Type != MessagePointsUpdated || msg.Points == nil || *msg.Points != 0 {
		t.Errorf("unexpected message %+v", msg)
	}

	// offline users are skipped silently
	hub.PointsUpdated("nobody", 1)
}

func TestWSHub_UnregisterKeepsNewerConnection(t *testing.T) {
	hub := NewWSHub()
	oldServer, _ := connectPair(t)
	newServer, newClient := connectPair(t)

	hub.Register("user", oldServer)
	hub.Register("user", newServer)

	// the old read loop exits and unregisters its own connection
	hub.Unregister("user", oldServer)
	if !hub.IsOnline("user") {
		t.Fatal("newer connection was removed")
	}

	if err := hub.SendToUser("user", WSMessage{Type: MessagePong}); err != nil {
		t.Fatalf("SendToUser failed: %v", err)
	}
	if msg := readMessage(t, newClient); msg.Type != MessagePong {
		t.Errorf("unexpected message %+v", msg)
	}

	hub.Unregister("user", newServer)
	if hub.IsOnline("user") {
		t.Error("expected user to be offline")
	}
	if err := hub.SendToUser("user", WSMessage{Type: MessagePong}); err == nil {
		t.Error("expected error sending to offline user")
	}
}
