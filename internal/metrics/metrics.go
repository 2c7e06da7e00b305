// ABOUTME: Prometheus metrics for the gateway
// ABOUTME: Package-level promauto collectors shared by chat and REST layers

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "famcoin_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// Chat metrics
	ActiveConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "famcoin_chat_active_connections",
			Help: "Currently open chat connections",
		},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "famcoin_chat_messages_sent_total",
			Help: "Total chat messages persisted",
		},
	)

	EventsBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "famcoin_chat_events_broadcast_total",
			Help: "Total events delivered to chat connections",
		},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "famcoin_chat_events_dropped_total",
			Help: "Events dropped because a connection's buffer was full",
		},
	)

	// Business metrics
	TasksApproved = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "famcoin_tasks_approved_total",
			Help: "Total task completions approved",
		},
	)

	RewardsClaimed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "famcoin_rewards_claimed_total",
			Help: "Total reward claims created",
		},
	)
)
