package middlewarex

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"dealve/pkg/errcodes"
	"dealve/pkg/httpx/reply"
	"dealve/pkg/logx"
)

type panicError struct {
	value any
}

func (e panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

func (panicError) ErrorCode() errcodes.ErrorCode {
	return errcodes.InternalServerError
}

// Recovery turns a handler panic into a coded 500 answer.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			ctx := r.Context()

			logger(ctx).Error("panic in handler",
				slog.Any(logx.FieldError, rec),
				slog.String(logx.FieldStack, string(debug.Stack())),
			)

			reply.Error(ctx, w, panicError{value: rec})
		}()

		next.ServeHTTP(w, r)
	})
}
