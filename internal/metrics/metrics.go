package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Request gate
	GateRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentwise_gate_rejections_total",
			Help: "Requests short-circuited by the request gate, by endpoint and reason",
		},
		[]string{"endpoint", "reason"}, // method, origin, rate_limit, quota, not_configured
	)

	// Rate limiter
	RateLimitFallbackTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scentwise_ratelimit_fallback_total",
			Help: "Rate-limit decisions served by the in-process limiter because the durable backend failed",
		},
	)

	// Usage ledger
	UsageLayerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentwise_usage_layer_errors_total",
			Help: "Usage ledger layer failures by layer and operation",
		},
		[]string{"layer", "op"},
	)

	// AI delegate
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentwise_recommendations_total",
			Help: "Recommendation requests that reached the AI delegate, by tier and outcome",
		},
		[]string{"tier", "outcome"},
	)

	// Access
	RevalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentwise_subscription_revalidations_total",
			Help: "Upstream subscription revalidations by outcome",
		},
		[]string{"outcome"}, // active, revoked, error
	)

	// Webhooks
	WebhookEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scentwise_webhook_events_total",
			Help: "Verified webhook events by event name",
		},
		[]string{"event"},
	)
)
