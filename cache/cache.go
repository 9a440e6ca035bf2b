// Package cache fronts the GitHub client with a cache that honors the
// fresh / stale-while-revalidate policy attached to each outcome.
package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"contribgraph/logger"
	"contribgraph/metrics"
	"contribgraph/models"
	"contribgraph/validation"
)

// ErrMiss is returned by a Store when no live entry exists for a key
var ErrMiss = errors.New("cache miss")

// DefaultFetchTimeout bounds an upstream fetch shared by coalesced callers
// or run as a background revalidation
const DefaultFetchTimeout = 30 * time.Second

// Entry is a cached outcome and the time it was fetched
type Entry struct {
	Outcome  models.FetchOutcome `json:"outcome"`
	StoredAt time.Time           `json:"stored_at"`
}

// Store persists cache entries. Implementations drop entries once their TTL
// has passed and report ErrMiss for them.
type Store interface {
	Get(ctx context.Context, key string) (*Entry, error)
	Set(ctx context.Context, key string, entry Entry, ttl time.Duration) error
	Close() error
}

// Fetcher is the upstream lookup being cached
type Fetcher interface {
	FetchContributions(ctx context.Context, username validation.Identifier) models.FetchOutcome
}

// CachingFetcher serves outcomes from a Store, coalescing concurrent misses
// for the same key and revalidating stale entries in the background.
type CachingFetcher struct {
	next         Fetcher
	store        Store
	namespace    string
	fetchTimeout time.Duration
	now          func() time.Time

	group singleflight.Group

	// mu guards closed and every wg.Add
	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewCachingFetcher wraps next. namespace separates keys of different
// upstream endpoints sharing one store.
func NewCachingFetcher(next Fetcher, store Store, namespace string) *CachingFetcher {
	return &CachingFetcher{
		next:         next,
		store:        store,
		namespace:    namespace,
		fetchTimeout: DefaultFetchTimeout,
		now:          time.Now,
	}
}

// Key builds the cache key for a login. Logins are case-insensitive upstream.
func (f *CachingFetcher) Key(username validation.Identifier) string {
	return f.namespace + "|" + strings.ToLower(username.String())
}

// FetchContributions returns a cached outcome when one is usable and fetches
// from upstream otherwise.
func (f *CachingFetcher) FetchContributions(ctx context.Context, username validation.Identifier) models.FetchOutcome {
	key := f.Key(username)

	entry, err := f.store.Get(ctx, key)
	if err != nil && !errors.Is(err, ErrMiss) {
		metrics.RecordCacheError("get")
		logger.Warn("Cache lookup failed", zap.Error(err), zap.String("key", key))
	}

	if err == nil && entry != nil {
		age := f.now().Sub(entry.StoredAt)
		policy := entry.Outcome.Cache
		switch {
		case age <= policy.MaxAge:
			metrics.RecordCacheLookup("fresh")
			return entry.Outcome
		case age <= policy.TTL():
			metrics.RecordCacheLookup("stale")
			f.revalidate(key, username)
			return entry.Outcome
		}
	}

	metrics.RecordCacheLookup("miss")
	return f.fetchShared(ctx, key, username)
}

// fetchShared runs one upstream fetch per key on a context detached from any
// single caller. Each caller stops waiting when its own context is done.
func (f *CachingFetcher) fetchShared(ctx context.Context, key string, username validation.Identifier) models.FetchOutcome {
	if !f.track() {
		return f.next.FetchContributions(ctx, username)
	}

	detached := context.WithoutCancel(ctx)
	ch := f.group.DoChan(key, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(detached, f.fetchTimeout)
		defer cancel()
		return f.fetchAndStore(fetchCtx, key, username), nil
	})

	select {
	case result := <-ch:
		f.wg.Done()
		return result.Val.(models.FetchOutcome)
	case <-ctx.Done():
		go func() {
			defer f.wg.Done()
			<-ch
		}()
		return models.TransportFailure(ctx.Err().Error())
	}
}

// revalidate refreshes a stale key once, detached from the request context
func (f *CachingFetcher) revalidate(key string, username validation.Identifier) {
	if !f.track() {
		return
	}
	ch := f.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.Background(), f.fetchTimeout)
		defer cancel()
		return f.fetchAndStore(ctx, key, username), nil
	})
	go func() {
		defer f.wg.Done()
		<-ch
	}()
}

// track registers one unit of work that Close must wait for. It reports
// false once Close has started.
func (f *CachingFetcher) track() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return false
	}
	f.wg.Add(1)
	return true
}

// storable reports whether an outcome may be kept. Answers without a
// calendar are not cached even when they carry a policy.
func storable(outcome models.FetchOutcome) bool {
	if !outcome.Cache.Cacheable() {
		return false
	}
	return outcome.Kind != models.OutcomeSuccess || outcome.Calendar() != nil
}

func (f *CachingFetcher) fetchAndStore(ctx context.Context, key string, username validation.Identifier) models.FetchOutcome {
	outcome := f.next.FetchContributions(ctx, username)
	if !storable(outcome) {
		return outcome
	}

	entry := Entry{Outcome: outcome, StoredAt: f.now()}
	if err := f.store.Set(context.WithoutCancel(ctx), key, entry, outcome.Cache.TTL()); err != nil {
		metrics.RecordCacheError("set")
		logger.Warn("Failed to store outcome in cache", zap.Error(err), zap.String("key", key))
	}
	return outcome
}

// Close waits for in-flight fetches and revalidations, then closes the
// store. Lookups after Close bypass the store's background work.
func (f *CachingFetcher) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	f.wg.Wait()
	return f.store.Close()
}
