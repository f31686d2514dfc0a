// Package server exposes Prometheus metrics for the relay: connection and
// room gauges plus frame and message counters, served on /metrics.
package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "peerchat"

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "connections_active",
		Help:      "Number of currently connected websocket clients",
	})

	roomsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: metricsNamespace,
		Name:      "rooms_open",
		Help:      "Number of rooms currently in the directory",
	})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "commands_total",
		Help:      "Total inbound commands handled, by command type",
	}, []string{"type"})

	malformedFramesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "malformed_frames_total",
		Help:      "Total inbound frames dropped because they could not be decoded",
	})

	messagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "messages_total",
		Help:      "Total chat messages appended to room history",
	})

	sendDropsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: metricsNamespace,
		Name:      "send_drops_total",
		Help:      "Total outbound frames dropped because a client send buffer was full",
	})
)

// routerMetrics adapts the Prometheus collectors to the chat.Observer
// interface so the core stays free of instrumentation imports.
type routerMetrics struct{}

func (routerMetrics) CommandHandled(commandType string) {
	commandsTotal.WithLabelValues(commandType).Inc()
}

func (routerMetrics) MalformedFrame() {
	malformedFramesTotal.Inc()
}

func (routerMetrics) MessageStored() {
	messagesTotal.Inc()
}

func (routerMetrics) RoomsChanged(total int) {
	roomsOpen.Set(float64(total))
}
