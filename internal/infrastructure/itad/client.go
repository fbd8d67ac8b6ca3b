package itad

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"dealve/internal/config"
	"dealve/internal/domain"
	"dealve/pkg/errcodes"
	"dealve/pkg/httpx"
	"dealve/pkg/logx"
)

const (
	keyParam    = "key"
	maxBodySize = 8 << 20
	userAgent   = "dealve/1.0"
)

//nolint:gochecknoglobals
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client talks to the IsThereAnyDeal API. Every HTTP attempt takes one
// unit of the shared Budget and is bounded by the configured timeout.
type Client struct {
	baseURL       string
	country       string
	searchResults int
	timeout       time.Duration
	userAgent     string
	hasKey        bool
	httpClient    *http.Client
	budget        *Budget
	now           func() time.Time
}

type Option func(*Client)

// WithTransport replaces the network transport under the key and logging
// round trippers.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func NewClient(cfg config.ITAD, budget *Budget, logFieldMaxLen int, opts ...Option) *Client {
	c := &Client{
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		country:       strings.ToUpper(cfg.Country),
		searchResults: min(max(cfg.SearchResults, 1), 100), //nolint:mnd
		timeout:       cfg.Timeout,
		userAgent:     cfg.UserAgent,
		hasKey:        cfg.APIKey != "",
		httpClient:    &http.Client{Transport: http.DefaultTransport},
		budget:        budget,
		now:           time.Now,
	}

	if c.userAgent == "" {
		c.userAgent = userAgent
	}

	for _, opt := range opts {
		opt(c)
	}

	c.httpClient.Transport = httpx.NewAPIKeyRoundTripper(
		httpx.NewLoggingRoundTripper(
			c.httpClient.Transport,
			httpx.WithSensitiveDataMasker(logx.NewSensitiveDataMasker()),
			httpx.WithLogFieldMaxLen(logFieldMaxLen),
		),
		keyParam,
		cfg.APIKey,
	)

	return c
}

type request struct {
	method   string
	endpoint string
	query    url.Values
	body     any
}

func (c *Client) do(ctx context.Context, r request, allowWait bool, dest any) error {
	if !c.hasKey {
		return domain.NewError(errcodes.ConfigError, "API key is required")
	}

	if err := c.budget.Acquire(ctx, allowWait); err != nil {
		requestsTotal.WithLabelValues(r.endpoint, outcome(err)).Inc()
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.roundTrip(ctx, r, dest)

	requestsTotal.WithLabelValues(r.endpoint, outcome(err)).Inc()
	requestDuration.WithLabelValues(r.endpoint).Observe(time.Since(start).Seconds())

	return err
}

func (c *Client) roundTrip(ctx context.Context, r request, dest any) error {
	u := c.baseURL + r.endpoint
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader = http.NoBody
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "encode request body")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "build request")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if r.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.NewUnreachable(err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return domain.NewUnreachable(fmt.Errorf("read body: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		e := domain.NewRateLimited(parseRetryAfter(resp.Header.Get("Retry-After"), c.now()))
		e.Status = resp.StatusCode

		return e
	case resp.StatusCode >= http.StatusBadRequest:
		return domain.NewAPIError(resp.StatusCode, errorMessage(payload))
	}

	if dest == nil {
		return nil
	}

	if err := json.Unmarshal(payload, dest); err != nil {
		return domain.NewMalformedResponse(fmt.Errorf("decode %s: %w", r.endpoint, err))
	}

	return nil
}

// parseRetryAfter accepts both forms of the header. A missing or
// unparsable value yields zero.
func parseRetryAfter(v string, now time.Time) time.Duration {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}

	if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}

	if t, err := http.ParseTime(v); err == nil && t.After(now) {
		return t.Sub(now)
	}

	return 0
}

const maxMessageLen = 200

// errorMessage extracts a human reason from an error body.
func errorMessage(payload []byte) string {
	var body struct {
		Details      string `json:"details"`
		Message      string `json:"message"`
		Error        string `json:"error"`
		ReasonPhrase string `json:"reason_phrase"`
	}

	if err := json.Unmarshal(payload, &body); err == nil {
		for _, s := range []string{body.Details, body.Message, body.Error, body.ReasonPhrase} {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}

	text := strings.TrimSpace(string(payload))
	if len(text) > maxMessageLen {
		text = text[:maxMessageLen] + "..."
	}

	return text
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	if code, ok := domain.GetCode(err); ok {
		return code.String()
	}

	return errcodes.InternalServerError.String()
}
