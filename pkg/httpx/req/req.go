package req

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	jsoniter "github.com/json-iterator/go"

	"dealve/pkg/errcodes"
)

var (
	json     = jsoniter.ConfigCompatibleWithStandardLibrary         //nolint:gochecknoglobals // skip
	validate = validator.New(validator.WithRequiredStructEnabled()) //nolint:gochecknoglobals // skip
)

// ValidationError is returned for bodies that fail to decode or validate.
type ValidationError struct {
	Description string
	cause       error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Description, e.cause)
}

func (e *ValidationError) Unwrap() error {
	return e.cause
}

func (e *ValidationError) ErrorCode() errcodes.ErrorCode {
	return errcodes.ValidationError
}

func Read(r *http.Request, dest any) error {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		return &ValidationError{Description: "invalid JSON", cause: fmt.Errorf("json.Decode: %w", err)}
	}

	if err := validate.StructCtx(r.Context(), dest); err != nil {
		return &ValidationError{Description: "validation error", cause: err}
	}

	return nil
}
