package sessionapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "logins_total",
		Help:      "Login arbitration outcomes.",
	}, []string{"status"})

	heartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "heartbeats_total",
		Help:      "Heartbeat outcomes.",
	}, []string{"status"})

	evictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "evictions_total",
		Help:      "Force-evict outcomes.",
	}, []string{"status"})

	requestFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "warden",
		Name:      "request_failures_total",
		Help:      "Requests rejected before or during arbitration.",
	}, []string{"op", "reason"})
)
