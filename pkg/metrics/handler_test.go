package metrics_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"dealve/pkg/metrics"
)

func TestHandler(t *testing.T) {
	registry := prometheus.NewRegistry()

	pages := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dealve_test_pages_total",
		Help: "Pages served in the test.",
	})
	registry.MustRegister(pages)
	pages.Add(3)

	ts := httptest.NewServer(metrics.Handler(registry))
	t.Cleanup(ts.Close)

	testCases := []struct {
		name       string
		endpoint   string
		statusCode int
		wantBody   string
	}{
		{
			name:       "Metrics handler",
			endpoint:   "/metrics",
			statusCode: http.StatusOK,
			wantBody:   "dealve_test_pages_total 3",
		},
		{
			name:       "Invalid endpoint",
			endpoint:   "/invalid",
			statusCode: http.StatusNotFound,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			resp, err := ts.Client().Get(ts.URL + tc.endpoint)
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			rq.NoError(err)
			rq.Contains(string(body), tc.wantBody)
		})
	}
}
