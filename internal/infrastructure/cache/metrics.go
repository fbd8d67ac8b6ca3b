package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	cacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "dealve",
		Subsystem: "result_cache",
		Name:      "lookups_total",
		Help:      "Result cache lookups by outcome.",
	}, []string{"outcome"})

	cacheEvictions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "dealve",
		Subsystem: "result_cache",
		Name:      "evictions_total",
		Help:      "Entries dropped to stay within capacity.",
	})

	cacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "dealve",
		Subsystem: "result_cache",
		Name:      "entries",
		Help:      "Entries currently held.",
	})
)
