// Package server exposes HTTP handlers: the WebSocket upgrade, the health
// check, and the read-only rooms API.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     checkOrigin,
}

// WebSocketHandler upgrades the HTTP connection, enforces the concurrent
// connection cap, and registers the new client with the hub. The hub starts
// the client's read/write pumps and announces it to the chat router.
func WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed. WebSocket endpoint only accepts GET requests.", http.StatusMethodNotAllowed)
		return
	}

	cfg := currentConfig()
	if hub.ClientCount() >= cfg.MaxConnections {
		log.Printf("Rejecting connection from %s: %d clients already connected", r.RemoteAddr, cfg.MaxConnections)
		http.Error(w, "Connection limit reached. Try again later.", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	client := NewClient(conn, hub, r.RemoteAddr)

	// The hub launches the pump goroutines and pushes the initial rooms_list.
	hub.register <- client
}

// HealthHandler provides a plain-text liveness check.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "PeerChat relay is running!")
}

// RoomsHandler serves a point-in-time JSON snapshot of the room directory.
// It takes only the router's read lock, so it never blocks chat traffic.
func RoomsHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hub.Router().Snapshot()); err != nil {
		log.Printf("Error encoding rooms snapshot: %v", err)
	}
}
