// Package server wires HTTP handlers into a chi router for the PeerChat
// relay via routing helpers.
package server

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes configures and returns the relay's HTTP router: health check,
// WebSocket endpoint, the read-only rooms API, and Prometheus metrics.
func SetupRoutes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/", HealthHandler)
	r.Get("/healthz", HealthHandler)
	r.Get("/ws", WebSocketHandler)
	r.Get("/api/rooms", RoomsHandler)
	r.Handle("/metrics", promhttp.Handler())
	return r
}
