// Package query turns user intents into deal fetches and publishes the
// resulting browse states.
package query

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"dealve/internal/domain"
	"dealve/internal/domain/entity"
	"dealve/internal/domain/service/browse"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	DefaultDebounce = 300 * time.Millisecond

	intentBuffer = 16
)

type Fetcher interface {
	Fetch(ctx context.Context, f entity.Filter, offset int, allowWait bool) (entity.Page, error)
}

type ResultCache interface {
	Lookup(fp entity.Fingerprint) (entity.Page, bool)
	Store(fp entity.Fingerprint, page entity.Page)
}

type completion struct {
	generation  uint64
	fingerprint entity.Fingerprint
	filter      entity.Filter
	offset      int
	appending   bool
	page        entity.Page
	err         error
}

// loadedList is what the current list was built from.
type loadedList struct {
	base    string
	next    int
	hasMore bool
	deals   []entity.Deal
}

// Coordinator owns the active filter and the generation counter. All of
// its mutable state belongs to the Run goroutine; fetches report back over
// a channel and results from superseded generations are dropped.
type Coordinator struct {
	fetcher   Fetcher
	cache     ResultCache
	debounce  time.Duration
	allowWait bool

	intents     chan Intent
	completions chan completion
	debounced   chan uint64

	// Run goroutine only.
	filter      entity.Filter
	generation  uint64
	cancelFetch context.CancelFunc
	inFlight    *completion
	timer       *time.Timer
	loaded      *loadedList
	state       browse.State

	mu       sync.RWMutex
	snapshot browse.State
	subs     map[chan browse.State]struct{}
}

type Option func(*Coordinator)

func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		c.debounce = d
	}
}

// WithAllowWait makes fetches wait for rate budget instead of failing
// with RateLimited.
func WithAllowWait(allow bool) Option {
	return func(c *Coordinator) {
		c.allowWait = allow
	}
}

func NewCoordinator(fetcher Fetcher, cache ResultCache, initial entity.Filter, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		cache:       cache,
		debounce:    DefaultDebounce,
		allowWait:   true,
		intents:     make(chan Intent, intentBuffer),
		completions: make(chan completion),
		debounced:   make(chan uint64),
		filter:      initial,
		state:       browse.Idle(initial),
		snapshot:    browse.Idle(initial),
		subs:        make(map[chan browse.State]struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Dispatch validates the intent and queues it for Run.
func (c *Coordinator) Dispatch(ctx context.Context, intent Intent) error {
	if err := Validate(intent); err != nil {
		return err
	}

	select {
	case c.intents <- intent:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the latest published state.
func (c *Coordinator) State() browse.State {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.snapshot
}

// Subscribe returns a channel that always holds the most recent state not
// yet received; a slow reader skips intermediate states. The returned
// func unsubscribes and closes the channel.
func (c *Coordinator) Subscribe() (<-chan browse.State, func()) {
	ch := make(chan browse.State, 1)

	c.mu.Lock()
	c.subs[ch] = struct{}{}
	ch <- c.snapshot
	c.mu.Unlock()

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, ch)
			close(ch)
			c.mu.Unlock()
		})
	}
}

func (c *Coordinator) Run(ctx context.Context) error {
	logger(ctx).Info("query coordinator started")

	defer func() {
		c.cancelInFlight()
		if c.timer != nil {
			c.timer.Stop()
		}
		logger(ctx).Info("query coordinator stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case intent := <-c.intents:
			c.handleIntent(ctx, intent)
		case gen := <-c.debounced:
			if gen == c.generation {
				c.query(ctx, 0, false, false)
			}
		case done := <-c.completions:
			c.handleCompletion(ctx, done)
		}
	}
}

func (c *Coordinator) handleIntent(ctx context.Context, intent Intent) {
	logger(ctx).Debug("intent", slog.String(logx.FieldIntent, intent.Name()))

	switch i := intent.(type) {
	case SetSearchText:
		c.advance(c.filter.WithQuery(i.Text))
		c.scheduleDebounced(ctx)

		return
	case ToggleStore:
		c.advance(c.filter.ToggleStore(i.StoreID))
	case SetMinDiscount:
		f, err := c.filter.WithMinDiscount(i.Percent)
		if err != nil {
			return
		}
		c.advance(f)
	case SetSort:
		c.advance(c.filter.WithSort(i.Sort))
	case NextPage:
		c.nextPage(ctx)

		return
	case Refresh:
		c.advance(c.filter)
		c.query(ctx, 0, false, true)

		return
	default:
		return
	}

	c.query(ctx, 0, false, false)
}

// advance installs f as the active filter under a new generation and
// abandons whatever the previous generation had in progress.
func (c *Coordinator) advance(f entity.Filter) {
	c.filter = f
	c.generation++
	c.cancelInFlight()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coordinator) scheduleDebounced(ctx context.Context) {
	gen := c.generation
	c.timer = time.AfterFunc(c.debounce, func() {
		select {
		case c.debounced <- gen:
		case <-ctx.Done():
		}
	})
}

func (c *Coordinator) nextPage(ctx context.Context) {
	if c.loaded == nil || c.loaded.base != c.filter.Key() {
		c.advance(c.filter)
		c.query(ctx, 0, false, false)

		return
	}

	if !c.loaded.hasMore {
		return
	}

	if c.inFlight != nil && c.inFlight.appending && c.inFlight.offset == c.loaded.next {
		return
	}

	c.advance(c.filter)
	c.query(ctx, c.loaded.next, true, false)
}

// query serves offset of the active filter from the cache or starts a
// fetch tagged with the current generation.
func (c *Coordinator) query(ctx context.Context, offset int, appending, bypassCache bool) {
	gen := c.generation
	f := c.filter
	fp := entity.NewFingerprint(f, offset)

	log := logger(ctx).With(
		slog.Uint64(logx.FieldGeneration, gen),
		slog.String(logx.FieldFingerprint, fp.String()),
	)

	if !bypassCache {
		if page, ok := c.cache.Lookup(fp); ok {
			log.Debug("served from cache", slog.Bool(logx.FieldCacheHit, true))
			fetchesTotal.WithLabelValues("cache").Inc()
			c.apply(f, offset, appending, page, gen)

			return
		}
	}

	fetchesTotal.WithLabelValues("network").Inc()
	c.publish(c.state.Loading(f, gen, appending))

	fetchCtx, cancel := context.WithCancel(contextx.WithGeneration(ctx, contextx.Generation(gen)))
	c.cancelFetch = cancel
	c.inFlight = &completion{
		generation:  gen,
		fingerprint: fp,
		filter:      f,
		offset:      offset,
		appending:   appending,
	}

	req := *c.inFlight
	allowWait := c.allowWait

	go func() {
		req.page, req.err = c.fetcher.Fetch(fetchCtx, req.filter, req.offset, allowWait)

		select {
		case c.completions <- req:
		case <-ctx.Done():
		}
	}()
}

func (c *Coordinator) handleCompletion(ctx context.Context, done completion) {
	log := logger(ctx).With(
		slog.Uint64(logx.FieldGeneration, done.generation),
		slog.String(logx.FieldFingerprint, done.fingerprint.String()),
	)

	if done.generation != c.generation {
		staleTotal.Inc()
		log.Debug("dropped stale result", slog.Uint64("current", c.generation))

		return
	}

	c.inFlight = nil
	c.cancelInFlight()

	if done.err != nil {
		appErr := domain.AsAppError(done.err)
		log.Warn("fetch failed", slog.String(logx.FieldErrorCode, appErr.Code.String()), logx.Error(done.err))
		c.publish(c.state.Failed(done.filter, appErr, done.generation))

		return
	}

	c.cache.Store(done.fingerprint, done.page)
	c.apply(done.filter, done.offset, done.appending, done.page, done.generation)
}

// apply turns a page into the Loaded state. A page appends only when it is
// the direct successor of the loaded list for the same filter.
func (c *Coordinator) apply(f entity.Filter, offset int, appending bool, page entity.Page, gen uint64) {
	base := f.Key()
	fresh := lo.UniqBy(page.Deals, entity.Deal.Key)

	deals := fresh
	if appending && c.loaded != nil && c.loaded.base == base && c.loaded.next == offset {
		seen := lo.SliceToMap(c.loaded.deals, func(d entity.Deal) (string, struct{}) {
			return d.Key(), struct{}{}
		})
		deals = slices.Clone(c.loaded.deals)
		deals = append(deals, lo.Filter(fresh, func(d entity.Deal, _ int) bool {
			_, dup := seen[d.Key()]
			return !dup
		})...)
	}

	c.loaded = &loadedList{
		base:    base,
		next:    offset + page.Limit,
		hasMore: page.HasMore,
		deals:   deals,
	}

	c.publish(c.state.Loaded(f, deals, page.HasMore, gen))
}

func (c *Coordinator) cancelInFlight() {
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}

	c.inFlight = nil
}

func (c *Coordinator) publish(s browse.State) {
	c.state = s

	c.mu.Lock()
	defer c.mu.Unlock()

	c.snapshot = s

	for ch := range c.subs {
		select {
		case <-ch:
		default:
		}
		ch <- s
	}
}
