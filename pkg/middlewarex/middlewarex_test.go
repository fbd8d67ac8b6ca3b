package middlewarex_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/xid"
	"github.com/stretchr/testify/require"

	"dealve/pkg/contextx"
	"dealve/pkg/logx"
	"dealve/pkg/middlewarex"
)

func TestTraceID(t *testing.T) {
	known := xid.New().String()

	tests := []struct {
		name   string
		header string
		keep   bool
	}{
		{name: "valid id is kept", header: known, keep: true},
		{name: "missing id is minted"},
		{name: "garbage id is replaced", header: "not-an-xid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			var seen contextx.TraceID

			h := middlewarex.TraceID(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				id, err := contextx.TraceIDFromContext(r.Context())
				rq.NoError(err)
				seen = id
			}))

			req := httptest.NewRequest(http.MethodGet, "/v1/state", http.NoBody)
			if tt.header != "" {
				req.Header.Set("X-Trace-Id", tt.header)
			}

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			rq.Equal(seen.String(), rec.Header().Get("X-Trace-Id"))

			if tt.keep {
				rq.Equal(tt.header, seen.String())
			} else {
				_, err := xid.FromString(seen.String())
				rq.NoError(err)
				rq.NotEqual(tt.header, seen.String())
			}
		})
	}
}

func TestRecoveryAndLogging(t *testing.T) {
	rq := require.New(t)

	h := middlewarex.TraceID(
		middlewarex.Logging(logx.NewNopSensitiveDataMasker(), 64)(
			middlewarex.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
				panic("boom")
			})),
		),
	)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/intents", http.NoBody))

	rq.Equal(http.StatusInternalServerError, rec.Code)
	rq.Contains(rec.Body.String(), `"code":"InternalServerError"`)
	rq.Contains(rec.Body.String(), rec.Header().Get("X-Trace-Id"))
}
