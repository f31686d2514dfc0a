// Package server constructs and starts the PeerChat relay HTTP service with
// helpers that apply sensible production defaults.
package server

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/peerchat/relay/internal/chat"
)

var (
	hub       *Hub
	startOnce sync.Once
)

func init() {
	hub = NewHub(chat.NewRouter(defaultConfig().HistoryLimit, routerMetrics{}))
}

// CreateServer creates and configures an HTTP server with the specified port
// and handler. It sets reasonable timeout values for production use.
func CreateServer(port string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// StartHub builds the chat router from the active configuration, seeds rooms
// if a seed file is configured, and starts the hub's event loop. Safe to
// call more than once; only the first call takes effect.
func StartHub() {
	startOnce.Do(func() {
		cfg := currentConfig()
		hub.router = chat.NewRouter(cfg.HistoryLimit, routerMetrics{})

		if cfg.SeedFile != "" {
			seeds, err := chat.LoadSeedFile(cfg.SeedFile)
			if err != nil {
				log.Printf("Skipping room seeding: %v", err)
			} else if err := hub.router.Bootstrap(seeds); err != nil {
				log.Printf("Room seeding incomplete: %v", err)
			}
		}

		go hub.Run()
		log.Println("Hub started and ready to manage WebSocket connections")
	})
}

// StartServer starts the HTTP server and begins listening for connections.
// It returns an error if the server fails to start.
func StartServer(server *http.Server) error {
	log.Printf("Relay listening on %s", server.Addr)
	return server.ListenAndServe()
}

// ShutdownServer gracefully shuts down the HTTP server without interrupting
// active connections, waiting until they close or the timeout is reached.
func ShutdownServer(server *http.Server, timeout time.Duration) error {
	log.Println("Shutting down HTTP server...")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
		return err
	}

	log.Println("HTTP server shutdown completed")
	return nil
}

// GetHub returns the global hub instance for shutdown coordination.
func GetHub() *Hub {
	return hub
}
