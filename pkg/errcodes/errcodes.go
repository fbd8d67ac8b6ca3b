package errcodes

type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

const (
	InternalServerError ErrorCode = "InternalServerError"
	ValidationError     ErrorCode = "ValidationError"
	NotFound            ErrorCode = "NotFound"
	ConfigError         ErrorCode = "ConfigError"

	// Upstream fetch outcomes.
	MalformedResponse ErrorCode = "MalformedResponse"
	Unreachable       ErrorCode = "Unreachable"
	RateLimited       ErrorCode = "RateLimited"
	APIError          ErrorCode = "ApiError"

	// User input.
	InvalidStore    ErrorCode = "InvalidStore"
	InvalidDiscount ErrorCode = "InvalidDiscount"
	InvalidSort     ErrorCode = "InvalidSort"
	InvalidPageSize ErrorCode = "InvalidPageSize"
	InvalidIntent   ErrorCode = "InvalidIntent"
)
