package middlewarex

import (
	"bytes"
	"cmp"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"time"

	"github.com/zenazn/goji/web/mutil"

	"dealve/pkg/logx"
)

// Logging logs one summary line per request and, at debug level, the
// masked request and response dumps cut to logFieldMaxLen.
func Logging(
	sensitiveDataMasker logx.SensitiveDataMaskerInterface,
	logFieldMaxLen int,
) func(next http.Handler) http.Handler {
	truncate := func(b []byte) string {
		if len(b) > logFieldMaxLen {
			b = b[:logFieldMaxLen]
		}

		return string(sensitiveDataMasker.Mask(b))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			start := time.Now()
			debug := logger(ctx).Enabled(ctx, slog.LevelDebug)

			if debug {
				dump, err := httputil.DumpRequest(r, r.Method != http.MethodGet)
				logger(ctx).Debug(logx.FieldHTTPRequest,
					slog.String(logx.FieldRequestBody, truncate(dump)),
					logx.Error(err),
				)
			}

			lw := mutil.WrapWriter(w)

			var body bytes.Buffer
			if debug {
				lw.Tee(&body)
			}

			next.ServeHTTP(lw, r)

			// Status is 0 when the handler never called WriteHeader.
			status := cmp.Or(lw.Status(), http.StatusOK)

			attrs := []any{
				slog.Int(logx.FieldResponseStatus, status),
				slog.Int64(logx.FieldDurationMs, time.Since(start).Milliseconds()),
			}

			if debug {
				var headers bytes.Buffer
				_ = lw.Header().WriteSubset(&headers, nil)

				attrs = append(attrs,
					slog.String(logx.FieldResponseHeaders, truncate(headers.Bytes())),
					slog.String(logx.FieldResponseBody, truncate(body.Bytes())),
				)
			}

			logger(ctx).Info(logx.FieldHTTPResponse, attrs...)
		})
	}
}
