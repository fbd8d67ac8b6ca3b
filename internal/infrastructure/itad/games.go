package itad

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"time"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
)

const (
	endpointInfo    = "/games/info/v2"
	endpointHistory = "/games/history/v2"

	historySpan = 365 * 24 * time.Hour
)

// GameInfo fetches the detail view of one game. Detail calls always wait
// for budget.
func (c *Client) GameInfo(ctx context.Context, id string) (entity.GameInfo, error) {
	var resp gameInfoResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointInfo,
		query:    url.Values{"id": {id}},
	}, true, &resp)
	if err != nil {
		return entity.GameInfo{}, err
	}

	if err := checkPayload(endpointInfo, &resp); err != nil {
		return entity.GameInfo{}, err
	}

	return resp.toGameInfo(), nil
}

// PriceHistory returns the last year of price points that carried a deal,
// oldest first.
func (c *Client) PriceHistory(ctx context.Context, id, country string) ([]entity.PricePoint, error) {
	if country == "" {
		country = c.country
	}

	var resp historyResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointHistory,
		query: url.Values{
			"id":      {id},
			"country": {country},
			"since":   {c.now().UTC().Add(-historySpan).Format(time.RFC3339)},
		},
	}, true, &resp.Items)
	if err != nil {
		return nil, err
	}

	if err := checkPayload(endpointHistory, &resp); err != nil {
		return nil, err
	}

	points := make([]entity.PricePoint, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.Deal == nil {
			continue
		}

		ts, err := time.Parse(time.RFC3339, *item.Timestamp)
		if err != nil {
			return nil, domain.NewMalformedResponse(fmt.Errorf("history timestamp: %w", err))
		}

		point := entity.PricePoint{
			Timestamp: ts,
			Store:     item.Shop.store(),
			Price:     item.Deal.Price.price(),
			Cut:       item.Deal.Cut,
		}
		if item.Deal.Regular != nil && item.Deal.Regular.Amount != nil {
			point.Regular = item.Deal.Regular.price()
		}

		points = append(points, point)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp.Before(points[j].Timestamp)
	})

	return points, nil
}
