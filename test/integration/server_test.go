package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/peerchat/relay/internal/chat"
	"github.com/peerchat/relay/internal/server"
)

// TestHealthEndpoint verifies the liveness endpoints over a real server.
func TestHealthEndpoint(t *testing.T) {
	testServer := startTestServer(t)

	for _, path := range []string{"/", "/healthz"} {
		resp, err := http.Get(testServer.URL + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("reading %s body failed: %v", path, err)
		}

		if resp.StatusCode != http.StatusOK {
			t.Errorf("GET %s status: got %d want %d", path, resp.StatusCode, http.StatusOK)
		}
		if string(body) != "PeerChat relay is running!" {
			t.Errorf("GET %s body: got %q", path, string(body))
		}
	}
}

// TestRoomsEndpoint verifies that the rooms API reflects rooms created over
// the websocket.
func TestRoomsEndpoint(t *testing.T) {
	testServer := startTestServer(t)
	conn := dial(t, testServer)

	sendFrame(t, conn, chat.TypeCreateRoom, map[string]any{
		"userId":   "it-api-user",
		"username": "Api",
		"roomName": "Directory Probe",
	})
	waitForEvent(t, conn, chat.TypeRoomCreated)

	resp, err := http.Get(testServer.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("GET /api/rooms failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: got %d want %d", resp.StatusCode, http.StatusOK)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type: got %q", ct)
	}

	var rooms []chat.RoomSnapshot
	if err := json.NewDecoder(resp.Body).Decode(&rooms); err != nil {
		t.Fatalf("decoding rooms failed: %v", err)
	}
	room, found := findRoom(rooms, "directory-probe")
	if !found {
		t.Fatal("created room missing from rooms API")
	}
	if room.Name != "Directory Probe" || room.CreatedBy != "it-api-user" {
		t.Errorf("room snapshot: got %+v", room)
	}
}

// TestMetricsEndpoint verifies that Prometheus metrics are exposed.
func TestMetricsEndpoint(t *testing.T) {
	testServer := startTestServer(t)

	resp, err := http.Get(testServer.URL + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics failed: %v", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatalf("reading metrics body failed: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Errorf("status: got %d want %d", resp.StatusCode, http.StatusOK)
	}
	if !strings.Contains(string(body), "peerchat_connections_active") {
		t.Error("metrics output missing relay collectors")
	}
}

// TestShutdownServer verifies graceful HTTP shutdown on a standalone
// server instance.
func TestShutdownServer(t *testing.T) {
	srv := server.CreateServer("127.0.0.1:0", server.SetupRoutes())

	errCh := make(chan error, 1)
	go func() { errCh <- server.StartServer(srv) }()

	// Give the listener a moment to come up before shutting it down.
	time.Sleep(50 * time.Millisecond)

	if err := server.ShutdownServer(srv, time.Second); err != nil {
		t.Fatalf("ShutdownServer returned error: %v", err)
	}

	select {
	case err := <-errCh:
		if err != http.ErrServerClosed {
			t.Errorf("StartServer returned %v, want %v", err, http.ErrServerClosed)
		}
	case <-time.After(time.Second):
		t.Error("StartServer did not return after shutdown")
	}
}
