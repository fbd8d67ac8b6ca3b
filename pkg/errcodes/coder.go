package errcodes

import "errors"

// Coder is implemented by errors that carry an ErrorCode.
type Coder interface {
	error
	ErrorCode() ErrorCode
}

// Code returns the code of the first Coder in err's chain.
func Code(err error) (ErrorCode, bool) {
	var c Coder
	if errors.As(err, &c) {
		return c.ErrorCode(), true
	}

	return "", false
}
