package logx

const (
	FieldAppName         = "app-name"
	FieldAppVersion      = "app-version"
	FieldCacheHit        = "cache-hit"
	FieldDurationMs      = "duration-ms"
	FieldEndpoint        = "endpoint"
	FieldError           = "error"
	FieldErrorCode       = "error-code"
	FieldFingerprint     = "fingerprint"
	FieldGameID          = "game-id"
	FieldGeneration      = "generation"
	FieldHTTPMethod      = "http-method"
	FieldHTTPRequest     = "http-request"
	FieldHTTPResponse    = "http-response"
	FieldIntent          = "intent"
	FieldIP              = "ip"
	FieldOffset          = "offset"
	FieldRequestBody     = "request-body"
	FieldRequestID       = "request-id"
	FieldResponseBody    = "response-body"
	FieldResponseHeaders = "response-headers"
	FieldResponseStatus  = "response-status"
	FieldStack           = "stack"
	FieldState           = "state"
	FieldTraceID         = "trace-id"
	FieldURL             = "url"
)
