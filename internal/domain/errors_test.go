package domain_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealve/internal/domain"
	"dealve/pkg/errcodes"
)

func TestAppError(t *testing.T) {
	rq := require.New(t)

	cause := errors.New("dial tcp: refused")
	err := fmt.Errorf("fetch: %w", domain.NewUnreachable(cause))

	rq.True(domain.IsAppError(err))
	rq.ErrorIs(err, cause)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.Unreachable, code)

	code, ok = errcodes.Code(err)
	rq.True(ok)
	rq.Equal(errcodes.Unreachable, code)

	rq.Equal("fetch: upstream unreachable: dial tcp: refused", err.Error())
	rq.Equal("boom (status 500)", domain.NewAPIError(http.StatusInternalServerError, "boom").Error())
}

func TestAppErrorRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  *domain.AppError
		want bool
	}{
		{name: "unreachable", err: domain.NewUnreachable(nil), want: true},
		{name: "rate limited", err: domain.NewRateLimited(time.Second), want: true},
		{name: "server error", err: domain.NewAPIError(http.StatusBadGateway, ""), want: true},
		{name: "client error", err: domain.NewAPIError(http.StatusNotFound, ""), want: false},
		{name: "malformed", err: domain.NewMalformedResponse(nil), want: false},
		{name: "config", err: domain.NewError(errcodes.ConfigError, "no key"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.New(t).Equal(tt.want, tt.err.Retryable())
		})
	}
}

func TestAsAppError(t *testing.T) {
	rq := require.New(t)

	rq.Nil(domain.AsAppError(nil))

	plain := domain.AsAppError(errors.New("oops"))
	rq.Equal(errcodes.InternalServerError, plain.Code)

	typed := domain.NewRateLimited(3 * time.Second)
	rq.Same(typed, domain.AsAppError(fmt.Errorf("wrap: %w", typed)))
}
