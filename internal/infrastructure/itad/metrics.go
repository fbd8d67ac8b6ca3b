package itad

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealve",
		Subsystem: "itad",
		Name:      "requests_total",
		Help:      "Upstream requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "dealve",
		Subsystem: "itad",
		Name:      "request_duration_seconds",
		Help:      "Upstream request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint"})

	budgetRejections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dealve",
		Subsystem: "itad",
		Name:      "budget_rejections_total",
		Help:      "Calls refused by the local rate budget.",
	})
)
