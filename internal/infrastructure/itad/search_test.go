package itad_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/infrastructure/itad"
	"dealve/pkg/errcodes"
)

const searchBody = `[
	{"id": "p1", "title": "Portal"},
	{"id": "p2", "title": "Portal 2"},
	{"id": "p1", "title": "Portal"},
	{"id": "p3", "title": "Portal Stories"}
]`

const pricesBody = `[
	{"id": "p2", "deals": [
		{"shop": {"id": 61, "name": "Steam"}, "price": {"amount": 4.99, "currency": "USD"},
			"regular": {"amount": 19.99, "currency": "USD"}, "cut": 75},
		{"shop": {"id": 35, "name": "GOG"}, "price": {"amount": 4.99, "currency": "USD"},
			"regular": {"amount": 24.99, "currency": "USD"}, "cut": 80}
	]},
	{"id": "p1", "historyLow": {"all": {"amount": 0.99, "currency": "USD"}}, "deals": [
		{"shop": {"id": 61, "name": "Steam"}, "price": {"amount": 1.99, "currency": "USD"},
			"regular": {"amount": 9.99, "currency": "USD"}, "cut": 80},
		{"shop": {"id": 37, "name": "Humble Store"}, "price": {"amount": 2.49, "currency": "USD"},
			"regular": {"amount": 9.99, "currency": "USD"}, "cut": 75}
	]},
	{"id": "p3", "deals": []}
]`

func TestSearch(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/search/v1": respond(http.StatusOK, searchBody),
		"/games/prices/v3": respond(http.StatusOK, pricesBody),
	})

	f := entity.NewFilter("US", 50).WithQuery("  portal ")
	page, err := newClient(testConfig(srv.URL)).Fetch(context.Background(), f, 0, false)
	rq.NoError(err)

	rq.False(page.HasMore)
	rq.Len(page.Deals, 2)

	// Ordered by the default price sort; per game the cheapest deal wins and
	// ties go to the larger cut.
	rq.Equal("p1@61", page.Deals[0].Key())
	rq.NotNil(page.Deals[0].HistoryLow)
	rq.InDelta(0.99, *page.Deals[0].HistoryLow, 0.001)
	rq.Equal("p2@35", page.Deals[1].Key())

	rq.Equal(1, u.hitCount("/games/search/v1"))
	rq.Equal(1, u.hitCount("/games/prices/v3"))

	rq.Equal([]string{"portal"}, u.queries[0]["title"])
	rq.Equal([]string{"10"}, u.queries[0]["results"])
	rq.Equal([]string{"true"}, u.queries[1]["deals"])
	rq.JSONEq(`["p1", "p2", "p3"]`, u.bodies[1])
}

func TestSearchAppliesSort(t *testing.T) {
	tests := []struct {
		name string
		sort entity.Sort
		want []string
	}{
		{name: "price desc", sort: entity.Sort{Field: entity.SortPrice, Descending: true}, want: []string{"p2@35", "p1@61"}},
		{name: "price asc", sort: entity.Sort{Field: entity.SortPrice}, want: []string{"p1@61", "p2@35"}},
		{name: "equal cuts keep search order", sort: entity.Sort{Field: entity.SortCut, Descending: true}, want: []string{"p2@35", "p1@61"}},
		{name: "title desc", sort: entity.Sort{Field: entity.SortTitle, Descending: true}, want: []string{"p2@35", "p1@61"}},
		{name: "title asc", sort: entity.Sort{Field: entity.SortTitle}, want: []string{"p1@61", "p2@35"}},
		{name: "upstream only", sort: entity.Sort{Field: entity.SortHot, Descending: true}, want: []string{"p2@35", "p1@61"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			_, srv := newUpstream(t, map[string]http.HandlerFunc{
				"/games/search/v1": respond(http.StatusOK, `[{"id": "p2", "title": "Portal 2"}, {"id": "p1", "title": "Portal"}]`),
				"/games/prices/v3": respond(http.StatusOK, pricesBody),
			})

			f := entity.NewFilter("US", 50).WithQuery("portal").WithSort(tt.sort)
			page, err := newClient(testConfig(srv.URL)).Fetch(context.Background(), f, 0, false)
			rq.NoError(err)

			keys := make([]string, 0, len(page.Deals))
			for _, d := range page.Deals {
				keys = append(keys, d.Key())
			}

			rq.Equal(tt.want, keys)
		})
	}
}

func TestSearchSingleStore(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/search/v1": respond(http.StatusOK, `[{"id": "p1", "title": "Portal"}]`),
		"/games/prices/v3": respond(http.StatusOK, `[]`),
	})

	f := entity.NewFilter("US", 50).WithQuery("portal").ToggleStore(61)
	page, err := newClient(testConfig(srv.URL)).Fetch(context.Background(), f, 0, false)
	rq.NoError(err)
	rq.Empty(page.Deals)

	rq.Equal([]string{"61"}, u.queries[1]["shops"])
	rq.Equal([]string{"1"}, u.queries[1]["capacity"])
}

func TestSearchBeyondFirstPage(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{})

	f := entity.NewFilter("US", 50).WithQuery("portal")
	page, err := newClient(testConfig(srv.URL)).Fetch(context.Background(), f, 50, false)
	rq.NoError(err)
	rq.Empty(page.Deals)
	rq.False(page.HasMore)
	rq.Zero(u.total())
}

func TestSearchNoResultsSkipsPrices(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/search/v1": respond(http.StatusOK, `[]`),
	})

	page, err := newClient(testConfig(srv.URL)).Fetch(context.Background(), entity.NewFilter("US", 50).WithQuery("zzz"), 0, false)
	rq.NoError(err)
	rq.Empty(page.Deals)
	rq.Equal(1, u.total())
}

func TestSearchTakesTwoBudgetUnits(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/search/v1": respond(http.StatusOK, `[{"id": "p1", "title": "Portal"}]`),
		"/games/prices/v3": respond(http.StatusOK, `[]`),
	})

	client := itad.NewClient(testConfig(srv.URL), itad.NewBudget(1, time.Hour), 0)

	_, err := client.Fetch(context.Background(), entity.NewFilter("US", 50).WithQuery("portal"), 0, false)

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.RateLimited, code)
	rq.Equal(1, u.hitCount("/games/search/v1"))
	rq.Zero(u.hitCount("/games/prices/v3"))
}

func TestGameInfo(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/info/v2": respond(http.StatusOK, `{
			"id": "p1", "slug": "portal", "title": "Portal", "type": "game",
			"releaseDate": "2007-10-10", "earlyAccess": false, "mature": false,
			"developers": [{"id": 1, "name": "Valve"}], "publishers": [{"id": 1, "name": "Valve"}],
			"tags": ["Puzzle", "First-Person"],
			"reviews": [{"score": 95, "source": "Steam", "count": 100000, "url": "https://example.com"},
				{"score": null, "source": "Metacritic", "count": 0}]
		}`),
	})

	info, err := newClient(testConfig(srv.URL)).GameInfo(context.Background(), "p1")
	rq.NoError(err)

	rq.Equal("Portal", info.Title)
	rq.Equal("2007-10-10", info.ReleaseDate)
	rq.Equal([]string{"Valve"}, info.Developers)
	rq.Equal([]string{"Puzzle", "First-Person"}, info.Tags)
	rq.Len(info.Reviews, 1)
	rq.Equal(95, info.Reviews[0].Score)
	rq.Equal([]string{"p1"}, u.queries[0]["id"])
}

func TestGameInfoMalformed(t *testing.T) {
	rq := require.New(t)

	_, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/info/v2": respond(http.StatusOK, `{"id": "p1"}`),
	})

	_, err := newClient(testConfig(srv.URL)).GameInfo(context.Background(), "p1")

	code, ok := domain.GetCode(err)
	rq.True(ok)
	rq.Equal(errcodes.MalformedResponse, code)
}

func TestPriceHistory(t *testing.T) {
	rq := require.New(t)

	u, srv := newUpstream(t, map[string]http.HandlerFunc{
		"/games/history/v2": respond(http.StatusOK, `[
			{"timestamp": "2026-05-01T10:00:00+00:00", "shop": {"id": 61, "name": "Steam"},
				"deal": {"price": {"amount": 4.99, "currency": "USD"}, "regular": {"amount": 9.99, "currency": "USD"}, "cut": 50}},
			{"timestamp": "2026-03-01T10:00:00+00:00", "shop": {"id": 35, "name": "GOG"}, "deal": null},
			{"timestamp": "2026-01-01T10:00:00+00:00", "shop": {"id": 35, "name": "GOG"},
				"deal": {"price": {"amount": 2.99, "currency": "USD"}, "cut": 70}}
		]`),
	})

	now := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	client := itad.NewClient(testConfig(srv.URL), itad.NewBudget(10, time.Second), 0,
		itad.WithClock(func() time.Time { return now }))

	points, err := client.PriceHistory(context.Background(), "p1", "")
	rq.NoError(err)

	rq.Len(points, 2)
	rq.Equal("GOG", points[0].Store.Name)
	rq.True(points[0].Timestamp.Before(points[1].Timestamp))
	rq.InDelta(4.99, points[1].Price.Amount, 0.001)
	rq.InDelta(9.99, points[1].Regular.Amount, 0.001)

	rq.Equal([]string{"US"}, u.queries[0]["country"])
	rq.Equal([]string{"2025-10-19T00:00:00Z"}, u.queries[0]["since"])
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		code    errcodes.ErrorCode
		message string
	}{
		{name: "valid", handler: respond(http.StatusOK, `{"list": []}`)},
		{name: "unauthorized", handler: respond(http.StatusUnauthorized, ""), code: errcodes.APIError, message: "invalid API key"},
		{name: "forbidden", handler: respond(http.StatusForbidden, `{"error": "bad"}`), code: errcodes.APIError, message: "invalid API key"},
		{name: "rate limited", handler: respond(http.StatusTooManyRequests, ""), code: errcodes.RateLimited, message: "rate limited"},
		{name: "server error", handler: respond(http.StatusServiceUnavailable, "down"), code: errcodes.APIError, message: "down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			u, srv := newUpstream(t, map[string]http.HandlerFunc{"/deals/v2": tt.handler})

			err := itad.ValidateKey(context.Background(), testConfig(srv.URL), "candidate")
			rq.Equal([]string{"candidate"}, u.queries[0]["key"])
			rq.Equal([]string{"1"}, u.queries[0]["limit"])

			if tt.code == "" {
				rq.NoError(err)
				return
			}

			appErr := domain.AsAppError(err)
			rq.Equal(tt.code, appErr.Code)
			rq.Equal(tt.message, appErr.Message)
		})
	}
}
