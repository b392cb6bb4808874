package marketdata

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"finnow/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFetch = errors.New("upstream down")

func failingFetch[T any](calls *int32) FetchFunc[T] {
	return func(ctx context.Context) (T, error) {
		atomic.AddInt32(calls, 1)
		var zero T
		return zero, errFetch
	}
}

func TestResolverEmptyCacheFailingFetchReturnsDefault(t *testing.T) {
	var calls int32
	fallback := []string{"static"}
	r := NewResolver("test", DefaultTTL, failingFetch[[]string](&calls), fallback, zerolog.Nop())

	got := r.Resolve(context.Background())

	assert.Equal(t, fallback, got)
	assert.EqualValues(t, 1, calls)
}

func TestResolverFreshCacheSkipsFetch(t *testing.T) {
	var calls int32
	r := NewResolver("test", DefaultTTL, failingFetch[[]string](&calls), nil, zerolog.Nop())
	r.cache.Put([]string{"cached"}, time.Now())

	got := r.Resolve(context.Background())

	assert.Equal(t, []string{"cached"}, got)
	assert.EqualValues(t, 0, calls, "fresh cache must not trigger a fetch")
}

func TestResolverStaleCacheSurvivesFetchFailure(t *testing.T) {
	var calls int32
	stale := []string{"stale", "data"}
	r := NewResolver("test", DefaultTTL, failingFetch[[]string](&calls), []string{"default"}, zerolog.Nop())
	r.cache.Put(stale, time.Now().Add(-time.Hour))

	got := r.Resolve(context.Background())

	assert.Equal(t, stale, got, "stale entry must be returned unchanged")
	assert.EqualValues(t, 1, calls)
}

func TestResolverWritesThroughOnSuccess(t *testing.T) {
	quotes := []models.StockQuote{{Ticker: "SBER", Name: "Сбербанк", Price: 300.00, Change: 6.50, ChangePct: 2.21}}
	fetch := func(ctx context.Context) ([]models.StockQuote, error) {
		return quotes, nil
	}
	r := NewResolver("stocks", DefaultTTL, fetch, nil, zerolog.Nop())

	got := r.Resolve(context.Background())
	require.Equal(t, quotes, got)

	e, ok := r.Cached()
	require.True(t, ok)
	assert.Equal(t, quotes, e.Data)
	assert.True(t, e.Fresh(time.Now().Add(time.Second), DefaultTTL), "entry must still be fresh one second later")
}

func TestResolverBondDefaultsOnFirstRunWithoutNetwork(t *testing.T) {
	var calls int32
	r := NewResolver("bonds", DefaultTTL, failingFetch[[]models.BondQuote](&calls), defaultBondQuotes(), zerolog.Nop())

	bonds := r.Resolve(context.Background())

	require.Len(t, bonds, 3)
	assert.Equal(t, "SU26238RMFS4", bonds[0].Ticker)
	assert.Equal(t, "SU26240RMFS9", bonds[1].Ticker)
	assert.Equal(t, "SU26241RMFS7", bonds[2].Ticker)
}

func TestResolverNeverStampedesUpstream(t *testing.T) {
	var calls int32
	release := make(chan struct{})
	fetch := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return []string{"slow"}, nil
	}
	r := NewResolver("test", DefaultTTL, fetch, nil, zerolog.Nop())

	var wg sync.WaitGroup
	results := make([][]string, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Resolve(context.Background())
		}(i)
	}

	// Let the callers pile up on the in-flight fetch, then release it.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls, "concurrent resolves must share one fetch")
	for _, res := range results {
		assert.Equal(t, []string{"slow"}, res)
	}
}

func TestResolverRefreshIgnoresFreshness(t *testing.T) {
	var calls int32
	fetch := func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(&calls, 1)
		return []string{"refreshed"}, nil
	}
	r := NewResolver("test", DefaultTTL, fetch, nil, zerolog.Nop())
	r.cache.Put([]string{"old"}, time.Now())

	require.NoError(t, r.Refresh(context.Background()))
	assert.EqualValues(t, 1, calls)

	e, ok := r.Cached()
	require.True(t, ok)
	assert.Equal(t, []string{"refreshed"}, e.Data)
}

func TestResolverRefreshFailureKeepsCache(t *testing.T) {
	var calls int32
	r := NewResolver("test", DefaultTTL, failingFetch[[]string](&calls), nil, zerolog.Nop())
	r.cache.Put([]string{"kept"}, time.Now().Add(-time.Hour))

	err := r.Refresh(context.Background())
	require.Error(t, err)

	e, ok := r.Cached()
	require.True(t, ok)
	assert.Equal(t, []string{"kept"}, e.Data)
}
