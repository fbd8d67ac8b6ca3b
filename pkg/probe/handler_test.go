package probe_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"dealve/pkg/probe"
)

func TestHandler(t *testing.T) {
	testCases := []struct {
		name       string
		endpoint   string
		ready      func() bool
		statusCode int
		body       string
	}{
		{
			name:       "Health handler",
			endpoint:   "/healthz",
			ready:      func() bool { return false },
			statusCode: http.StatusOK,
			body:       `{"name":"dealve","version":"v0.0.1","ready":true}`,
		},
		{
			name:       "Ready handler",
			endpoint:   "/ready",
			statusCode: http.StatusOK,
			body:       `{"name":"dealve","version":"v0.0.1","ready":true}`,
		},
		{
			name:       "Not ready",
			endpoint:   "/ready",
			ready:      func() bool { return false },
			statusCode: http.StatusServiceUnavailable,
			body:       `{"name":"dealve","version":"v0.0.1","ready":false}`,
		},
		{
			name:       "Invalid endpoint",
			endpoint:   "/invalid",
			statusCode: http.StatusNotFound,
			body:       "404 page not found\n",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			ts := httptest.NewServer(probe.NewHandler(probe.Options{
				Name:    "dealve",
				Version: "v0.0.1",
				Ready:   tc.ready,
			}))
			defer ts.Close()

			resp, err := ts.Client().Get(ts.URL + tc.endpoint)
			rq.NoError(err)

			defer resp.Body.Close()

			rq.Equal(tc.statusCode, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			rq.NoError(err)
			rq.Equal(tc.body, string(body))
		})
	}
}
