// Package metrics exposes Prometheus counters for the read path.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	cascadeTierServed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchfeed",
		Name:      "cascade_tier_served_total",
		Help:      "Responses served, labeled by cascade tier.",
	}, []string{"source"})

	refreshEnqueued = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchfeed",
		Name:      "refresh_enqueued_total",
		Help:      "Background refresh tasks enqueued.",
	})

	refreshSuppressed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchfeed",
		Name:      "refresh_suppressed_total",
		Help:      "Refresh triggers suppressed by the cooldown window.",
	})

	providerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchfeed",
		Name:      "provider_errors_total",
		Help:      "Failed or timed-out provider odds fetches.",
	}, []string{"provider"})

	quotesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "matchfeed",
		Name:      "quotes_dropped_total",
		Help:      "Quotes dropped during aggregation, labeled by reason.",
	}, []string{"reason"})

	cascadeRescues = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "matchfeed",
		Name:      "cascade_rescues_total",
		Help:      "Times the stale-cache rescue path ran after a cascade failure.",
	})
)

// RecordTierServed counts a response served from one cascade tier
func RecordTierServed(source string) {
	cascadeTierServed.WithLabelValues(source).Inc()
}

// RecordRefreshEnqueued counts an enqueued refresh task
func RecordRefreshEnqueued() {
	refreshEnqueued.Inc()
}

// RecordRefreshSuppressed counts a cooldown-suppressed refresh trigger
func RecordRefreshSuppressed() {
	refreshSuppressed.Inc()
}

// RecordProviderError counts a failed provider fetch
func RecordProviderError(provider string) {
	providerErrors.WithLabelValues(provider).Inc()
}

// RecordQuoteDropped counts a quote dropped during aggregation
func RecordQuoteDropped(reason string) {
	quotesDropped.WithLabelValues(reason).Inc()
}

// RecordCascadeRescue counts a stale-cache rescue attempt
func RecordCascadeRescue() {
	cascadeRescues.Inc()
}
