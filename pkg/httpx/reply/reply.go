package reply

import (
	"context"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"dealve/pkg/contextx"
	"dealve/pkg/errcodes"
	"dealve/pkg/logx"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

type errorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	SupportID string `json:"supportId"`
}

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

func OK(w http.ResponseWriter) {
	w.WriteHeader(http.StatusOK)
}

func Accepted(w http.ResponseWriter) {
	w.WriteHeader(http.StatusAccepted)
}

func JSON(ctx context.Context, w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger(ctx).Error("json.Encode", logx.Error(err))
	}
}

func Error(ctx context.Context, w http.ResponseWriter, err error) {
	logger(ctx).Error("error", logx.Error(err))

	code, ok := errcodes.Code(err)
	if !ok {
		code = errcodes.InternalServerError
	}

	response := errorResponse{
		Code:      code.String(),
		Message:   err.Error(),
		SupportID: supportID(ctx),
	}

	JSON(ctx, w, StatusFor(code), response)
}

// StatusFor maps an error code to the HTTP status the status server
// answers with.
func StatusFor(code errcodes.ErrorCode) int {
	switch code {
	case errcodes.ValidationError, errcodes.InvalidStore, errcodes.InvalidDiscount,
		errcodes.InvalidSort, errcodes.InvalidPageSize, errcodes.InvalidIntent:
		return http.StatusBadRequest
	case errcodes.NotFound:
		return http.StatusNotFound
	case errcodes.RateLimited:
		return http.StatusTooManyRequests
	case errcodes.Unreachable, errcodes.MalformedResponse, errcodes.APIError:
		return http.StatusBadGateway
	case errcodes.ConfigError:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func supportID(ctx context.Context) string {
	traceID, err := contextx.TraceIDFromContext(ctx)
	if err != nil {
		return "unsupported"
	}

	return traceID.String()
}
