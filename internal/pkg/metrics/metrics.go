/*
Package metrics defines the Prometheus instrumentation exposed on the admin /metrics endpoint.
*/
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Connection metrics
var (
	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirpd_connections_total",
			Help: "Total number of connections accepted",
		},
		[]string{"transport"},
	)

	ConnectionsCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "chirpd_connections_current",
			Help: "Current number of active connections",
		},
		[]string{"transport"},
	)

	ConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirpd_connections_rejected_total",
			Help: "Connections rejected before a session started",
		},
		[]string{"reason"},
	)
)

// Session metrics
var (
	AuthenticationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirpd_authentication_attempts_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	MessagesRouted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirpd_messages_routed_total",
			Help: "Messages accepted by the registry for delivery",
		},
		[]string{"kind"},
	)

	DeliveryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chirpd_delivery_failures_total",
			Help: "Mailbox deliveries that failed",
		},
		[]string{"reason"},
	)
)
