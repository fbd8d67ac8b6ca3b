// Package middlewarex holds the HTTP middleware chain of the status server.
package middlewarex

import (
	"log/slog"
	"net/http"

	"github.com/rs/xid"

	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

const headerNameTraceID = "X-Trace-Id"

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// TraceID keeps an incoming xid trace id and mints one otherwise. The id
// is echoed in the response header and used as the error support id.
func TraceID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := xid.FromString(r.Header.Get(headerNameTraceID))
		if err != nil {
			id = xid.New()
		}

		traceID := contextx.TraceID(id.String())

		w.Header().Set(headerNameTraceID, traceID.String())

		ctx := contextx.WithTraceID(r.Context(), traceID)
		ctx = contextx.WithLogger(ctx, logger(ctx).With(
			logx.Stringer(logx.FieldTraceID, traceID),
			slog.String(logx.FieldHTTPMethod, r.Method),
			slog.String(logx.FieldURL, r.URL.Path),
			slog.String(logx.FieldIP, r.RemoteAddr),
		))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
