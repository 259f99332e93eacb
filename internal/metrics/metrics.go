// Package metrics exposes the server's Prometheus collectors. Everything is
// registered on the default registry and served on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsProcessed counts inbound board events by event type.
	EventsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "events_processed_total",
		Help:      "Number of inbound board events processed, by type.",
	}, []string{"type"})

	// ActiveRooms tracks the number of live room sessions.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whiteboard",
		Name:      "active_rooms",
		Help:      "Number of room sessions currently held in memory.",
	})

	// ConnectedClients tracks open board WebSocket connections.
	ConnectedClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "whiteboard",
		Name:      "connected_clients",
		Help:      "Number of open board WebSocket connections.",
	})

	// RoomsEvicted counts rooms removed by the idle janitor.
	RoomsEvicted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "whiteboard",
		Name:      "rooms_evicted_total",
		Help:      "Number of idle rooms evicted by the janitor.",
	})
)
