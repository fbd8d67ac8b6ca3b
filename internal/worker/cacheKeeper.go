package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dealve/internal/infrastructure/cache"
	"dealve/pkg/contextx"
	"dealve/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

var ErrAlreadyRunning = errors.New("cache keeper is already running")

type ResultCache interface {
	InvalidateOlderThan(age time.Duration) int
	Entries() []cache.Entry
	Restore(entries []cache.Entry) int
}

type SnapshotStore interface {
	Save(ctx context.Context, entries []cache.Entry) error
	Load(ctx context.Context) ([]cache.Entry, error)
}

// CacheKeeper drops stale result cache entries on a fixed interval and,
// with a snapshot store, restores the cache on start and saves it after
// every sweep.
type CacheKeeper struct {
	cache     ResultCache
	snapshots SnapshotStore
	freshness time.Duration
	interval  time.Duration

	mu         sync.Mutex
	cancelFunc context.CancelFunc
	isRunning  bool
	wg         sync.WaitGroup
}

func NewCacheKeeper(c ResultCache, freshness, interval time.Duration) *CacheKeeper {
	return &CacheKeeper{
		cache:     c,
		freshness: freshness,
		interval:  interval,
	}
}

func (w *CacheKeeper) WithSnapshots(store SnapshotStore) *CacheKeeper {
	w.snapshots = store
	return w
}

// Start runs the keeper in the background until Stop or ctx ends.
func (w *CacheKeeper) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.isRunning {
		return ErrAlreadyRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	w.cancelFunc = cancel
	w.isRunning = true

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() {
			w.mu.Lock()
			w.isRunning = false
			w.cancelFunc = nil
			w.mu.Unlock()
		}()

		if err := w.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			logger(ctx).Error("cache keeper stopped", logx.Error(err))
		}
	}()

	return nil
}

func (w *CacheKeeper) Stop() {
	w.mu.Lock()

	if !w.isRunning {
		w.mu.Unlock()
		return
	}

	if w.cancelFunc != nil {
		w.cancelFunc()
	}
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *CacheKeeper) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.isRunning
}

func (w *CacheKeeper) Run(ctx context.Context) error {
	logger(ctx).Info("cache keeper started", slog.Duration("interval", w.interval))

	w.restore(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.save(context.WithoutCancel(ctx))
			logger(ctx).Info("cache keeper stopped")

			return ctx.Err()
		case <-ticker.C:
			w.Sweep(ctx)
		}
	}
}

// Sweep runs one cycle: drop stale entries, then save the snapshot.
func (w *CacheKeeper) Sweep(ctx context.Context) {
	if n := w.cache.InvalidateOlderThan(w.freshness); n > 0 {
		logger(ctx).Debug("stale cache entries dropped", slog.Int("count", n))
	}

	w.save(ctx)
}

func (w *CacheKeeper) restore(ctx context.Context) {
	if w.snapshots == nil {
		return
	}

	entries, err := w.snapshots.Load(ctx)
	if err != nil {
		logger(ctx).Warn("cache snapshot not restored", logx.Error(err))
		return
	}

	logger(ctx).Info("cache snapshot restored", slog.Int("count", w.cache.Restore(entries)))
}

func (w *CacheKeeper) save(ctx context.Context) {
	if w.snapshots == nil {
		return
	}

	if err := w.snapshots.Save(ctx, w.cache.Entries()); err != nil {
		logger(ctx).Warn("cache snapshot not saved", logx.Error(err))
	}
}
