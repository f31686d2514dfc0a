// Package integration contains end-to-end tests for the PeerChat relay.
//
// These tests run the real HTTP server and hub, dial real WebSocket
// connections, and drive the chat protocol the way a browser client would.
// The hub and its router are process-global, so every test uses room names
// unique to that test and tolerates directory entries left by others.
package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/peerchat/relay/internal/chat"
	"github.com/peerchat/relay/internal/server"
)

const readTimeout = 2 * time.Second

// receivedMessage mirrors the wire shape of a message_received payload.
type receivedMessage struct {
	chat.Message
	IsOwn bool `json:"isOwn"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type roomDeletedPayload struct {
	RoomID   string `json:"roomId"`
	RoomName string `json:"roomName"`
}

type presencePayload struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
}

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	server.StartHub()
	testServer := httptest.NewServer(server.SetupRoutes())
	t.Cleanup(testServer.Close)

	cfg := server.NewConfig()
	cfg.AllowedOrigins = append([]string{testServer.URL}, cfg.AllowedOrigins...)
	// Keep the per-connection limiter out of the way of scripted traffic.
	cfg.RateLimit.Burst = 1000
	server.SetConfig(cfg)
	t.Cleanup(func() { server.SetConfig(nil) })

	return testServer
}

func wsURL(testServer *httptest.Server) string {
	return "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
}

func dial(t *testing.T, testServer *httptest.Server) *websocket.Conn {
	t.Helper()
	header := http.Header{}
	header.Set("Origin", testServer.URL)

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL(testServer), header)
	if err != nil {
		t.Fatalf("Failed to dial websocket: %v", err)
	}
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendFrame(t *testing.T, conn *websocket.Conn, frameType string, payload any) {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("Failed to marshal %s payload: %v", frameType, err)
	}
	frame, err := json.Marshal(chat.Envelope{Type: frameType, Payload: body})
	if err != nil {
		t.Fatalf("Failed to marshal %s frame: %v", frameType, err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
		t.Fatalf("Failed to write %s frame: %v", frameType, err)
	}
}

// waitForEvent reads frames until one of the wanted type arrives, skipping
// everything else (directory broadcasts from concurrent tests included).
func waitForEvent(t *testing.T, conn *websocket.Conn, eventType string) chat.Envelope {
	t.Helper()
	deadline := time.Now().Add(readTimeout)
	if err := conn.SetReadDeadline(deadline); err != nil {
		t.Fatalf("Failed to set read deadline: %v", err)
	}

	for time.Now().Before(deadline) {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Read failed while waiting for %s: %v", eventType, err)
		}
		var env chat.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			t.Fatalf("Received undecodable frame: %v", err)
		}
		if env.Type == eventType {
			return env
		}
	}
	t.Fatalf("Timed out waiting for %s event", eventType)
	return chat.Envelope{}
}

func decodeInto(t *testing.T, env chat.Envelope, out any) {
	t.Helper()
	if err := json.Unmarshal(env.Payload, out); err != nil {
		t.Fatalf("Failed to decode %s payload: %v", env.Type, err)
	}
}

func findRoom(rooms []chat.RoomSnapshot, roomID string) (chat.RoomSnapshot, bool) {
	for _, room := range rooms {
		if room.ID == roomID {
			return room, true
		}
	}
	return chat.RoomSnapshot{}, false
}
