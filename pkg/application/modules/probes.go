package modules

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"dealve/pkg/metrics"
	"dealve/pkg/probe"
)

type MetricServer struct {
	ListenAddress string
}

func (m MetricServer) Run(ctx context.Context, g *errgroup.Group) {
	HTTPServer{
		Name:          "metrics",
		ListenAddress: m.ListenAddress,
		Handler:       metrics.Handler(prometheus.DefaultGatherer),
	}.Run(ctx, g)
}

type ProbeServer struct {
	Name          string
	Version       string
	ListenAddress string
	Ready         func() bool
}

func (p ProbeServer) Run(ctx context.Context, g *errgroup.Group) {
	HTTPServer{
		Name:          "probe",
		ListenAddress: p.ListenAddress,
		Handler: probe.NewHandler(probe.Options{
			Name:    p.Name,
			Version: p.Version,
			Ready:   p.Ready,
		}),
	}.Run(ctx, g)
}
