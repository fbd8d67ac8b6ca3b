package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	fetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealve",
		Subsystem: "query",
		Name:      "pages_total",
		Help:      "Pages served, by source.",
	}, []string{"source"})

	staleTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dealve",
		Subsystem: "query",
		Name:      "stale_results_total",
		Help:      "Completions dropped because a newer generation had started.",
	})
)
