package itad

import (
	"context"
	"net/http"
	"net/url"

	"dealve/internal/config"
	"dealve/internal/domain"
)

// ValidateKey makes one lightweight listing request with the given key.
// It uses a private single-request budget.
func ValidateKey(ctx context.Context, cfg config.ITAD, key string, opts ...Option) error {
	cfg.APIKey = key
	c := NewClient(cfg, NewBudget(1, cfg.Timeout), 0, opts...)

	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointDeals,
		query: url.Values{
			"limit":   {"1"},
			"country": {"US"},
		},
	}, true, nil)
	if err == nil {
		return nil
	}

	appErr := domain.AsAppError(err)
	if appErr.Status == http.StatusUnauthorized || appErr.Status == http.StatusForbidden {
		return domain.NewAPIError(appErr.Status, "invalid API key")
	}

	return appErr
}
