package cache

import (
	"container/list"
	"slices"
	"sync"
	"time"

	"dealve/internal/domain/entity"
)

// Entry is one cached page and the moment it was stored.
type Entry struct {
	Fingerprint entity.Fingerprint `json:"fingerprint"`
	Page        entity.Page        `json:"page"`
	StoredAt    time.Time          `json:"storedAt"`
}

type Stats struct {
	Entries   int    `json:"entries"`
	Capacity  int    `json:"capacity"`
	Hits      uint64 `json:"hits"`
	Misses    uint64 `json:"misses"`
	Evictions uint64 `json:"evictions"`
}

// ResultCache maps fingerprints to recently fetched pages. Entries older
// than the freshness window are never returned; past capacity the least
// recently used entry is dropped. Safe for concurrent use and never blocks
// on anything but its own mutex.
type ResultCache struct {
	mu        sync.Mutex
	freshness time.Duration
	capacity  int
	order     *list.List
	items     map[entity.Fingerprint]*list.Element
	now       func() time.Time

	hits, misses, evictions uint64
}

type Option func(*ResultCache)

func WithClock(now func() time.Time) Option {
	return func(c *ResultCache) {
		c.now = now
	}
}

func New(freshness time.Duration, capacity int, opts ...Option) *ResultCache {
	if capacity < 1 {
		capacity = 1
	}

	c := &ResultCache{
		freshness: freshness,
		capacity:  capacity,
		order:     list.New(),
		items:     make(map[entity.Fingerprint]*list.Element, capacity),
		now:       time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Lookup returns the page stored under fp if it is still fresh.
func (c *ResultCache) Lookup(fp entity.Fingerprint) (entity.Page, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[fp]
	if !ok {
		c.miss()
		return entity.Page{}, false
	}

	e := el.Value.(*Entry) //nolint:forcetypeassert
	if !c.fresh(e) {
		c.remove(el)
		c.miss()

		return entity.Page{}, false
	}

	c.order.MoveToFront(el)
	c.hits++
	cacheLookups.WithLabelValues("hit").Inc()

	return clonePage(e.Page), true
}

// Store records the page under fp, replacing any previous entry.
func (c *ResultCache) Store(fp entity.Fingerprint, page entity.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.put(Entry{Fingerprint: fp, Page: clonePage(page), StoredAt: c.now()})
}

// InvalidateOlderThan drops every entry stored more than age ago and
// returns how many were dropped.
func (c *ResultCache) InvalidateOlderThan(age time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := c.now().Add(-age)
	removed := 0

	for el := c.order.Back(); el != nil; {
		prev := el.Prev()
		if el.Value.(*Entry).StoredAt.Before(cutoff) { //nolint:forcetypeassert
			c.remove(el)
			removed++
		}
		el = prev
	}

	return removed
}

func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Entries:   c.order.Len(),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// Entries returns the fresh entries, least recently used first, so that
// replaying them through Restore rebuilds the same recency order.
func (c *ResultCache) Entries() []Entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]Entry, 0, c.order.Len())
	for el := c.order.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*Entry) //nolint:forcetypeassert
		if c.fresh(e) {
			out = append(out, Entry{Fingerprint: e.Fingerprint, Page: clonePage(e.Page), StoredAt: e.StoredAt})
		}
	}

	return out
}

// Restore loads entries kept elsewhere. Stale entries and fingerprints
// already present are skipped; it returns the number loaded.
func (c *ResultCache) Restore(entries []Entry) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	loaded := 0

	for _, e := range entries {
		if _, ok := c.items[e.Fingerprint]; ok || !c.fresh(&e) {
			continue
		}

		e.Page = clonePage(e.Page)
		c.put(e)
		loaded++
	}

	return loaded
}

func (c *ResultCache) put(e Entry) {
	if el, ok := c.items[e.Fingerprint]; ok {
		el.Value = &e
		c.order.MoveToFront(el)

		return
	}

	c.items[e.Fingerprint] = c.order.PushFront(&e)

	for c.order.Len() > c.capacity {
		c.remove(c.order.Back())
		c.evictions++
		cacheEvictions.Inc()
	}

	cacheEntries.Set(float64(c.order.Len()))
}

func (c *ResultCache) remove(el *list.Element) {
	c.order.Remove(el)
	delete(c.items, el.Value.(*Entry).Fingerprint) //nolint:forcetypeassert
	cacheEntries.Set(float64(c.order.Len()))
}

func (c *ResultCache) fresh(e *Entry) bool {
	return c.now().Sub(e.StoredAt) < c.freshness
}

func (c *ResultCache) miss() {
	c.misses++
	cacheLookups.WithLabelValues("miss").Inc()
}

func clonePage(p entity.Page) entity.Page {
	p.Deals = slices.Clone(p.Deals)
	return p
}
