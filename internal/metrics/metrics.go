package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the collectors exported on /metrics.
type Metrics struct {
	// rate cache
	RateCacheLookupsTotal *prometheus.CounterVec

	// upstream rate source
	RateFetchDuration    prometheus.Histogram
	RateFetchErrorsTotal prometheus.Counter
	RatesMissingTotal    *prometheus.CounterVec

	// quota admission
	QuotaDecisionsTotal *prometheus.CounterVec

	// conversions
	ConversionsTotal *prometheus.CounterVec
}

// New registers all collectors on reg. Pass prometheus.DefaultRegisterer in production
// and a fresh prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateCacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxconvert_rate_cache_lookups_total",
				Help: "Rate cache lookups by result (hit, miss)",
			},
			[]string{"result"},
		),

		RateFetchDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "fxconvert_rate_fetch_duration_seconds",
				Help:    "Duration of upstream exchange rate fetches",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 10), // 10ms, 20ms, 40ms...
			},
		),

		RateFetchErrorsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "fxconvert_rate_fetch_errors_total",
				Help: "Failed upstream exchange rate fetches",
			},
		),

		RatesMissingTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxconvert_rates_missing_total",
				Help: "Supported currencies the upstream did not return a usable rate for",
			},
			[]string{"currency"},
		),

		QuotaDecisionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxconvert_quota_decisions_total",
				Help: "Quota admission decisions by outcome (allowed, denied) and day type",
			},
			[]string{"outcome", "day"},
		),

		ConversionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxconvert_conversions_total",
				Help: "Conversion attempts by outcome",
			},
			[]string{"outcome"},
		),
	}
}
