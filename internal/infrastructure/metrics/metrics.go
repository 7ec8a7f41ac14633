package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors of the donation ledger
type Metrics struct {
	// Webhook outcomes
	DonationsAcceptedTotal *prometheus.CounterVec
	DonationsIgnoredTotal  *prometheus.CounterVec
	DonationsRejectedTotal *prometheus.CounterVec
	DonationsAmountTotal   prometheus.Counter

	// Rate cache
	RateCacheHitsTotal     prometheus.Counter
	RateRefreshesTotal     *prometheus.CounterVec
	RateRefreshDuration    prometheus.Histogram
	SummaryUpdateConflicts prometheus.Counter

	// HTTP
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers the collectors on reg. Passing nil uses the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		DonationsAcceptedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_accepted_total",
				Help: "Number of donations applied to the summary",
			},
			[]string{"currency"},
		),
		DonationsIgnoredTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_ignored_total",
				Help: "Number of webhook deliveries accepted without changing the summary",
			},
			[]string{"reason"},
		),
		DonationsRejectedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "donations_rejected_total",
				Help: "Number of webhook deliveries rejected",
			},
			[]string{"reason"},
		),
		DonationsAmountTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "donations_amount_reference_total",
				Help: "Sum of accepted donations in the reference currency",
			},
		),
		RateCacheHitsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "exchange_rate_cache_hits_total",
				Help: "Number of rate lookups served from a fresh snapshot",
			},
		),
		RateRefreshesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_rate_refreshes_total",
				Help: "Number of rate provider fetches by result",
			},
			[]string{"result"},
		),
		RateRefreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "exchange_rate_refresh_duration_seconds",
				Help:    "Duration of rate provider fetches",
				Buckets: prometheus.DefBuckets,
			},
		),
		SummaryUpdateConflicts: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "donation_summary_update_conflicts_total",
				Help: "Number of summary writes retried after a concurrent update",
			},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}
}

// NewNopMetrics returns metrics registered on a private registry, for tests and tools
func NewNopMetrics() *Metrics {
	return NewMetrics(prometheus.NewRegistry())
}
