package query_test

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/internal/domain/service/query"
	"dealve/internal/domain/value"
	"dealve/internal/infrastructure/cache"
	"dealve/pkg/errcodes"
)

const wait = 2 * time.Second

type result struct {
	page entity.Page
	err  error
}

type call struct {
	ctx    context.Context
	filter entity.Filter
	offset int
	reply  chan result
}

func (c *call) respond(page entity.Page) { c.reply <- result{page: page} }

func (c *call) fail(err error) { c.reply <- result{err: err} }

// fakeFetcher hands every fetch to the test and blocks until the test
// answers, so completion order is under test control.
type fakeFetcher struct {
	calls chan *call
	done  chan struct{}
}

func newFakeFetcher(t *testing.T) *fakeFetcher {
	t.Helper()

	f := &fakeFetcher{calls: make(chan *call, 16), done: make(chan struct{})}
	t.Cleanup(func() { close(f.done) })

	return f
}

func (f *fakeFetcher) Fetch(ctx context.Context, filter entity.Filter, offset int, _ bool) (entity.Page, error) {
	c := &call{ctx: ctx, filter: filter, offset: offset, reply: make(chan result, 1)}
	f.calls <- c

	select {
	case r := <-c.reply:
		return r.page, r.err
	case <-f.done:
		return entity.Page{}, context.Canceled
	}
}

func (f *fakeFetcher) next(t *testing.T) *call {
	t.Helper()

	select {
	case c := <-f.calls:
		return c
	case <-time.After(wait):
		t.Fatal("expected a fetch")
		return nil
	}
}

func (f *fakeFetcher) none(t *testing.T, d time.Duration) {
	t.Helper()

	select {
	case c := <-f.calls:
		t.Fatalf("unexpected fetch for %q at offset %d", c.filter.Query, c.offset)
	case <-time.After(d):
	}
}

type harness struct {
	co    *query.Coordinator
	fetch *fakeFetcher
	cache *cache.ResultCache
	sub   <-chan browse.State
}

func start(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		fetch: newFakeFetcher(t),
		cache: cache.New(time.Minute, 64),
	}
	h.co = query.NewCoordinator(h.fetch, h.cache, entity.NewFilter("US", 50), query.WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = h.co.Run(ctx) }()

	sub, unsubscribe := h.co.Subscribe()
	t.Cleanup(unsubscribe)
	h.sub = sub

	return h
}

func (h *harness) dispatch(t *testing.T, intents ...query.Intent) {
	t.Helper()

	for _, i := range intents {
		require.NoError(t, h.co.Dispatch(context.Background(), i))
	}
}

func (h *harness) waitFor(t *testing.T, pred func(browse.State) bool) browse.State {
	t.Helper()

	timeout := time.After(wait)
	for {
		select {
		case s := <-h.sub:
			if pred(s) {
				return s
			}
		case <-timeout:
			t.Fatalf("state not reached, last: %s", h.co.State())
			return browse.State{}
		}
	}
}

func phase(p browse.Phase) func(browse.State) bool {
	return func(s browse.State) bool { return s.Phase == p }
}

func page(offset int, hasMore bool, ids ...string) entity.Page {
	p := entity.Page{Offset: offset, Limit: 50, HasMore: hasMore, Deals: []entity.Deal{}}
	for _, id := range ids {
		p.Deals = append(p.Deals, entity.Deal{
			Game:    entity.Game{ID: id, Title: "Game " + id},
			Store:   entity.Store{ID: 61, Name: "Steam"},
			Price:   value.NewPrice(1.99, "USD"),
			Regular: lo.ToPtr(value.NewPrice(9.99, "USD")),
			Cut:     80,
		})
	}

	return p
}

func keys(deals []entity.Deal) []string {
	out := make([]string, 0, len(deals))
	for _, d := range deals {
		out = append(out, d.Game.ID)
	}

	return out
}

func TestTypingIsDebouncedAndCached(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	for _, text := range []string{"p", "po", "por", "port", "portal"} {
		h.dispatch(t, query.SetSearchText{Text: text})
	}

	c := h.fetch.next(t)
	rq.Equal("portal", c.filter.Query)
	rq.Zero(c.offset)

	h.waitFor(t, phase(browse.PhaseLoading))
	c.respond(page(0, false, "portal", "portal-2"))

	loaded := h.waitFor(t, phase(browse.PhaseLoaded))
	rq.Equal([]string{"portal", "portal-2"}, keys(loaded.Deals))
	h.fetch.none(t, 150*time.Millisecond)

	// The same search again is answered by the cache.
	h.dispatch(t, query.SetSearchText{Text: "x"}, query.SetSearchText{Text: " Portal "})

	again := h.waitFor(t, func(s browse.State) bool {
		return s.Phase == browse.PhaseLoaded && s.Generation > loaded.Generation
	})
	rq.Equal([]string{"portal", "portal-2"}, keys(again.Deals))
	h.fetch.none(t, 150*time.Millisecond)
}

func TestStaleCompletionIsDropped(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.ToggleStore{StoreID: 61})
	first := h.fetch.next(t)

	h.dispatch(t, query.SetMinDiscount{Percent: 50})
	second := h.fetch.next(t)

	rq.Equal(50, second.filter.MinDiscount)
	rq.Eventually(func() bool { return first.ctx.Err() != nil }, wait, 10*time.Millisecond)

	second.respond(page(0, false, "new"))
	loaded := h.waitFor(t, phase(browse.PhaseLoaded))
	rq.Equal([]string{"new"}, keys(loaded.Deals))

	first.respond(page(0, false, "old"))

	rq.Never(func() bool {
		s := h.co.State()
		return s.Generation != loaded.Generation || keys(s.Deals)[0] != "new"
	}, 200*time.Millisecond, 10*time.Millisecond)
}

func TestNextPageConcatenates(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.Refresh{})
	c := h.fetch.next(t)
	c.respond(page(0, true, "a", "b"))
	h.waitFor(t, phase(browse.PhaseLoaded))

	h.dispatch(t, query.NextPage{})
	c = h.fetch.next(t)
	rq.Equal(50, c.offset)

	loading := h.waitFor(t, phase(browse.PhaseLoading))
	rq.True(loading.Appending)
	rq.Equal([]string{"a", "b"}, keys(loading.Deals))

	c.respond(page(50, false, "b", "c", "d"))
	loaded := h.waitFor(t, phase(browse.PhaseLoaded))
	rq.Equal([]string{"a", "b", "c", "d"}, keys(loaded.Deals))
	rq.False(loaded.HasMore)

	// Nothing more to load.
	h.dispatch(t, query.NextPage{})
	h.fetch.none(t, 100*time.Millisecond)
}

func TestNextPageAfterFilterChangeStartsOver(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.NextPage{})
	c := h.fetch.next(t)
	rq.Zero(c.offset)
	c.respond(page(0, true, "a"))
	h.waitFor(t, phase(browse.PhaseLoaded))

	h.dispatch(t, query.SetSearchText{Text: "doom"}, query.NextPage{})
	c = h.fetch.next(t)
	rq.Zero(c.offset)
	rq.Equal("doom", c.filter.Query)

	c.respond(page(0, false, "doom"))
	loaded := h.waitFor(t, phase(browse.PhaseLoaded))
	rq.Equal([]string{"doom"}, keys(loaded.Deals))
}

func TestFailedAppendKeepsRows(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.Refresh{})
	h.fetch.next(t).respond(page(0, true, "a", "b"))
	h.waitFor(t, phase(browse.PhaseLoaded))

	h.dispatch(t, query.NextPage{})
	h.fetch.next(t).fail(domain.NewRateLimited(time.Second))

	failed := h.waitFor(t, phase(browse.PhaseError))
	rq.Equal(errcodes.RateLimited, failed.Err.Code)
	rq.Equal([]string{"a", "b"}, keys(failed.Deals))
}

func TestMalformedResponseIsNotCached(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.Refresh{})
	h.fetch.next(t).fail(domain.NewMalformedResponse(entity.ErrPriceAboveRegular))

	failed := h.waitFor(t, func(s browse.State) bool {
		rq.NotEqual(browse.PhaseLoaded, s.Phase)
		return s.Phase == browse.PhaseError
	})
	rq.Equal(errcodes.MalformedResponse, failed.Err.Code)
	rq.Zero(h.cache.Stats().Entries)
}

func TestTimeoutThenRefresh(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.SetSearchText{Text: "half-life"})
	h.fetch.next(t).fail(domain.NewUnreachable(context.DeadlineExceeded))

	failed := h.waitFor(t, phase(browse.PhaseError))
	rq.Equal(errcodes.Unreachable, failed.Err.Code)
	rq.True(failed.Err.Retryable())

	h.dispatch(t, query.Refresh{})
	c := h.fetch.next(t)
	rq.Equal("half-life", c.filter.Query)
	c.respond(page(0, false, "hl", "hl2"))

	loaded := h.waitFor(t, phase(browse.PhaseLoaded))
	rq.Equal([]string{"hl", "hl2"}, keys(loaded.Deals))
	rq.Greater(loaded.Generation, failed.Generation)
}

func TestRefreshBypassesCache(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.Refresh{})
	h.fetch.next(t).respond(page(0, false, "a"))
	h.waitFor(t, phase(browse.PhaseLoaded))

	h.dispatch(t, query.Refresh{})
	h.fetch.next(t).respond(page(0, false, "b"))

	loaded := h.waitFor(t, func(s browse.State) bool {
		return s.Phase == browse.PhaseLoaded && len(s.Deals) == 1 && s.Deals[0].Game.ID == "b"
	})
	rq.Equal(browse.PhaseLoaded, loaded.Phase)

	cached, ok := h.cache.Lookup(entity.NewFingerprint(loaded.Filter, 0))
	rq.True(ok)
	rq.Equal([]string{"b"}, keys(cached.Deals))
}

func TestToggleBackIsServedFromCache(t *testing.T) {
	rq := require.New(t)
	h := start(t)

	h.dispatch(t, query.Refresh{})
	h.fetch.next(t).respond(page(0, false, "all"))
	h.waitFor(t, phase(browse.PhaseLoaded))

	h.dispatch(t, query.ToggleStore{StoreID: 35})
	c := h.fetch.next(t)
	rq.Equal([]int{35}, c.filter.Stores)
	c.respond(page(0, false, "gog"))
	h.waitFor(t, phase(browse.PhaseLoaded))

	h.dispatch(t, query.ToggleStore{StoreID: 35})
	back := h.waitFor(t, func(s browse.State) bool {
		return s.Phase == browse.PhaseLoaded && len(s.Filter.Stores) == 0
	})
	rq.Equal([]string{"all"}, keys(back.Deals))
	h.fetch.none(t, 100*time.Millisecond)
}

func TestDispatchRejectsInvalidIntents(t *testing.T) {
	tests := []struct {
		name   string
		intent query.Intent
		code   errcodes.ErrorCode
	}{
		{name: "discount above range", intent: query.SetMinDiscount{Percent: 150}, code: errcodes.InvalidDiscount},
		{name: "negative discount", intent: query.SetMinDiscount{Percent: -1}, code: errcodes.InvalidDiscount},
		{name: "unknown store", intent: query.ToggleStore{StoreID: 9999}, code: errcodes.InvalidStore},
		{name: "unknown sort", intent: query.SetSort{Sort: entity.Sort{Field: "bogus"}}, code: errcodes.InvalidSort},
	}

	co := query.NewCoordinator(newFakeFetcher(t), cache.New(time.Minute, 1), entity.NewFilter("US", 50))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rq := require.New(t)

			code, ok := domain.GetCode(co.Dispatch(context.Background(), tt.intent))
			rq.True(ok)
			rq.Equal(tt.code, code)
		})
	}
}

func TestSubscribeStartsWithCurrentState(t *testing.T) {
	rq := require.New(t)

	co := query.NewCoordinator(newFakeFetcher(t), cache.New(time.Minute, 1), entity.NewFilter("US", 50))

	sub, unsubscribe := co.Subscribe()
	s := <-sub
	rq.Equal(browse.PhaseIdle, s.Phase)
	rq.Equal(browse.PhaseIdle, co.State().Phase)

	unsubscribe()
	unsubscribe()

	_, open := <-sub
	rq.False(open)
}
