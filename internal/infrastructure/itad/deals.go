package itad

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"dealve/internal/domain/entity"
)

const (
	endpointDeals  = "/deals/v2"
	endpointSearch = "/games/search/v1"
	endpointPrices = "/games/prices/v3"
)

// Fetch returns one page of deals for the filter. A non-empty query goes
// through title search, which yields a single terminal page.
func (c *Client) Fetch(ctx context.Context, f entity.Filter, offset int, allowWait bool) (entity.Page, error) {
	if f.IsSearch() {
		return c.search(ctx, f, offset, allowWait)
	}

	return c.listDeals(ctx, f, offset, allowWait)
}

func (c *Client) countryFor(f entity.Filter) string {
	if f.Country != "" {
		return f.Country
	}

	return c.country
}

func shopsParam(ids []int) string {
	return strings.Join(lo.Map(ids, func(id int, _ int) string { return strconv.Itoa(id) }), ",")
}

func (c *Client) listDeals(ctx context.Context, f entity.Filter, offset int, allowWait bool) (entity.Page, error) {
	q := url.Values{}
	q.Set("country", c.countryFor(f))
	q.Set("limit", strconv.Itoa(f.PageSize))
	q.Set("offset", strconv.Itoa(offset))
	q.Set("sort", f.Sort.Upstream())
	if len(f.Stores) > 0 {
		q.Set("shops", shopsParam(f.Stores))
	}

	var resp dealsResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointDeals,
		query:    q,
	}, allowWait, &resp)
	if err != nil {
		return entity.Page{}, err
	}

	if err := checkPayload(endpointDeals, &resp); err != nil {
		return entity.Page{}, err
	}

	deals := make([]entity.Deal, 0, len(resp.List))
	for _, item := range resp.List {
		deal, err := item.Deal.toDeal(entity.Game{ID: *item.ID, Title: *item.Title}, nil)
		if err != nil {
			return entity.Page{}, err
		}

		if f.Accepts(deal) {
			deals = append(deals, deal)
		}
	}

	// Title order holds within the page only.
	if f.Sort.Field == entity.SortTitle {
		slices.SortStableFunc(deals, f.Sort.Compare)
	}

	hasMore := len(resp.List) >= f.PageSize
	if resp.HasMore != nil {
		hasMore = *resp.HasMore
	}

	return entity.Page{
		Offset:  offset,
		Limit:   f.PageSize,
		Deals:   deals,
		HasMore: hasMore,
	}, nil
}

func (c *Client) search(ctx context.Context, f entity.Filter, offset int, allowWait bool) (entity.Page, error) {
	page := entity.Page{Offset: offset, Limit: f.PageSize, Deals: []entity.Deal{}}
	if offset > 0 {
		return page, nil
	}

	var found searchResponse
	err := c.do(ctx, request{
		method:   http.MethodGet,
		endpoint: endpointSearch,
		query: url.Values{
			"title":   {f.Query},
			"results": {strconv.Itoa(c.searchResults)},
		},
	}, allowWait, &found.Items)
	if err != nil {
		return entity.Page{}, err
	}

	if err := checkPayload(endpointSearch, &found); err != nil {
		return entity.Page{}, err
	}

	games := lo.UniqBy(lo.Map(found.Items, func(it searchItem, _ int) entity.Game {
		return entity.Game{ID: *it.ID, Title: *it.Title}
	}), func(g entity.Game) string { return g.ID })
	if len(games) == 0 {
		return page, nil
	}

	q := url.Values{
		"country": {c.countryFor(f)},
		"deals":   {"true"},
	}
	if len(f.Stores) > 0 {
		q.Set("shops", shopsParam(f.Stores))
	}
	if len(f.Stores) == 1 {
		q.Set("capacity", "1")
	}

	var prices pricesResponse
	err = c.do(ctx, request{
		method:   http.MethodPost,
		endpoint: endpointPrices,
		query:    q,
		body:     lo.Map(games, func(g entity.Game, _ int) string { return g.ID }),
	}, allowWait, &prices.Items)
	if err != nil {
		return entity.Page{}, err
	}

	if err := checkPayload(endpointPrices, &prices); err != nil {
		return entity.Page{}, err
	}

	byID := lo.KeyBy(prices.Items, func(it priceItem) string { return *it.ID })

	for _, game := range games {
		item, ok := byID[game.ID]
		if !ok {
			continue
		}

		best, ok := bestDeal(item.Deals)
		if !ok {
			continue
		}

		var low *float64
		if item.HistoryLow != nil && item.HistoryLow.All != nil && item.HistoryLow.All.Amount != nil {
			low = item.HistoryLow.All.Amount
		}

		deal, err := best.toDeal(game, low)
		if err != nil {
			return entity.Page{}, err
		}

		if f.Accepts(deal) {
			page.Deals = append(page.Deals, deal)
		}
	}

	// Search hits come back by relevance; upstream-only criteria keep it.
	if f.Sort.Local() {
		slices.SortStableFunc(page.Deals, f.Sort.Compare)
	}

	return page, nil
}

// bestDeal picks the lowest price, breaking ties by the larger cut.
func bestDeal(deals []dealInfo) (dealInfo, bool) {
	if len(deals) == 0 {
		return dealInfo{}, false
	}

	return lo.MinBy(deals, func(a, b dealInfo) bool {
		if *a.Price.Amount != *b.Price.Amount {
			return *a.Price.Amount < *b.Price.Amount
		}

		return *a.Cut > *b.Cut
	}), true
}
