package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Notifications created, by category.
	NotificationsCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_created_total",
			Help: "Total number of notifications created",
		},
		[]string{"category"},
	)

	// Currently attached realtime (SSE) clients.
	RealtimeClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_clients",
			Help: "Number of currently registered realtime clients",
		},
	)

	// Realtime channel drops seen by subscribers.
	ChannelFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "realtime_channel_failures_total",
			Help: "Total number of transient realtime channel failures",
		},
	)

	// Automatic sign-outs, by trigger (debounce or unload).
	SessionSignouts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "session_signouts_total",
			Help: "Total number of automatic session sign-outs",
		},
		[]string{"trigger"},
	)

	// Sign-outs aborted because a guard became true at fire time.
	GuardRacesAverted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "session_guard_races_averted_total",
			Help: "Total number of sign-outs aborted by a late guard condition",
		},
	)
)
