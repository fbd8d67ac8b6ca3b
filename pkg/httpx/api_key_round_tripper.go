package httpx

import (
	"errors"
	"fmt"
	"net/http"
)

var ErrNoAPIKey = errors.New("api key is required")

// APIKeyRoundTripper appends the API key as a query parameter. Requests
// are cloned so the caller's URL never carries the credential.
type APIKeyRoundTripper struct {
	next  http.RoundTripper
	param string
	key   string
}

func NewAPIKeyRoundTripper(next http.RoundTripper, param, key string) APIKeyRoundTripper {
	return APIKeyRoundTripper{
		next:  next,
		param: param,
		key:   key,
	}
}

func (rt APIKeyRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	if rt.key == "" {
		return nil, ErrNoAPIKey
	}

	clone := req.Clone(req.Context())

	q := clone.URL.Query()
	q.Set(rt.param, rt.key)
	clone.URL.RawQuery = q.Encode()

	resp, err := rt.next.RoundTrip(clone)
	if err != nil {
		return nil, fmt.Errorf("next.RoundTrip: %w", err)
	}

	return resp, nil
}
