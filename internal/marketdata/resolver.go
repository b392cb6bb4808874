package marketdata

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Resolver produces a best-effort answer for one resource kind by trying,
// in order: fresh cache, live fetch (with write-through), stale cache,
// compiled-in static default. Resolve never returns an error; the worst
// observable outcome is the static default.
type Resolver[T any] struct {
	kind     string
	cache    *Cache[T]
	fetch    FetchFunc[T]
	fallback T
	group    singleflight.Group
	now      func() time.Time
	log      zerolog.Logger
}

// NewResolver creates a resolver for one resource kind. fallback is the
// static default returned when no cache entry exists and the fetch fails.
func NewResolver[T any](kind string, ttl time.Duration, fetch FetchFunc[T], fallback T, log zerolog.Logger) *Resolver[T] {
	return &Resolver[T]{
		kind:     kind,
		cache:    NewCache[T](ttl),
		fetch:    fetch,
		fallback: fallback,
		now:      time.Now,
		log:      log.With().Str("kind", kind).Logger(),
	}
}

// Resolve walks the fallback chain. Concurrent calls while a fetch is
// outstanding share that fetch instead of issuing duplicate upstream calls.
func (r *Resolver[T]) Resolve(ctx context.Context) T {
	if e, ok := r.cache.GetFresh(r.now()); ok {
		r.log.Debug().Msg("cache hit")
		return e.Data
	}

	v, err, _ := r.group.Do(r.kind, func() (interface{}, error) {
		// Re-check under the flight: another caller may have refreshed
		// the cache while this one waited for the singleflight slot.
		if e, ok := r.cache.GetFresh(r.now()); ok {
			return e.Data, nil
		}
		data, err := r.fetch(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Put(data, r.now())
		return data, nil
	})
	if err == nil {
		return v.(T)
	}

	// Fetch failed: a stale entry beats no data.
	if e, ok := r.cache.Get(); ok {
		r.log.Warn().Err(err).Time("fetched_at", e.FetchedAt).Msg("fetch failed, serving stale data")
		return e.Data
	}

	r.log.Warn().Err(err).Msg("fetch failed with empty cache, serving static default")
	return r.fallback
}

// Refresh forces a live fetch and write-through, ignoring freshness.
// Used by the scheduled warmer; errors are reported, not propagated as data.
func (r *Resolver[T]) Refresh(ctx context.Context) error {
	_, err, _ := r.group.Do(r.kind+":refresh", func() (interface{}, error) {
		data, err := r.fetch(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.Put(data, r.now())
		return data, nil
	})
	return err
}

// Cached returns the raw cache entry, if any.
func (r *Resolver[T]) Cached() (Entry[T], bool) {
	return r.cache.Get()
}
