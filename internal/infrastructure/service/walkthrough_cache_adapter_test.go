package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/application/query"
	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
	"github.com/exchange-insight/exchange-insight/internal/infrastructure/persistence/redis"
	"github.com/exchange-insight/exchange-insight/pkg/circuitbreaker"
)

type fakeStore struct {
	memos map[string]*redis.CachedWalkthrough
	err   error
	calls int
}

func (f *fakeStore) Get(_ context.Context, id string) (*redis.CachedWalkthrough, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if m, ok := f.memos[id]; ok {
		return m, nil
	}
	return nil, redis.ErrCacheMiss
}

func (f *fakeStore) Set(_ context.Context, id, fp string, estimates []placement.Estimate) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.memos[id] = &redis.CachedWalkthrough{Fingerprint: fp, ComputedAt: time.Now(), Estimates: estimates}
	return nil
}

func (f *fakeStore) TryAcquireRefresh(context.Context, string, time.Duration) (bool, error) {
	f.calls++
	return f.err == nil, f.err
}

func (f *fakeStore) Invalidate(_ context.Context, id string) error {
	f.calls++
	delete(f.memos, id)
	return f.err
}

func newAdapter(store *fakeStore, breaker *circuitbreaker.CircuitBreaker) *WalkthroughCacheAdapter {
	return &WalkthroughCacheAdapter{store: store, breaker: breaker}
}

func TestWalkthroughCacheAdapter_RoundTrip(t *testing.T) {
	store := &fakeStore{memos: map[string]*redis.CachedWalkthrough{}}
	a := newAdapter(store, nil)
	ctx := context.Background()

	memo, err := a.Get(ctx, "s-1")
	require.NoError(t, err)
	assert.Nil(t, memo, "miss is not an error")

	estimates := []placement.Estimate{{AgreementID: "epfl-eth", RankPosition: 1, Capacity: 2}}
	require.NoError(t, a.Set(ctx, "s-1", query.WalkthroughMemo{Fingerprint: "abc", Estimates: estimates}))

	memo, err = a.Get(ctx, "s-1")
	require.NoError(t, err)
	require.NotNil(t, memo)
	assert.Equal(t, "abc", memo.Fingerprint)
	assert.Equal(t, estimates, memo.Estimates)

	require.NoError(t, a.Invalidate(ctx, "s-1"))
	memo, _ = a.Get(ctx, "s-1")
	assert.Nil(t, memo)
}

func TestWalkthroughCacheAdapter_BreakerFailsFast(t *testing.T) {
	store := &fakeStore{memos: map[string]*redis.CachedWalkthrough{}, err: errors.New("connection refused")}
	breaker := circuitbreaker.CacheBreaker(func(err error) bool { return errors.Is(err, redis.ErrCacheMiss) }, nil)
	a := newAdapter(store, breaker)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := a.TryAcquireRefresh(ctx, "s-1", time.Second)
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	calls := store.calls
	_, err := a.Get(ctx, "s-1")
	assert.True(t, circuitbreaker.IsRejected(err))
	assert.Equal(t, calls, store.calls, "open breaker must not reach redis")
}

func TestWalkthroughCacheAdapter_MissesKeepBreakerClosed(t *testing.T) {
	store := &fakeStore{memos: map[string]*redis.CachedWalkthrough{}}
	breaker := circuitbreaker.CacheBreaker(func(err error) bool { return errors.Is(err, redis.ErrCacheMiss) }, nil)
	a := newAdapter(store, breaker)

	for i := 0; i < 10; i++ {
		memo, err := a.Get(context.Background(), "nobody")
		require.NoError(t, err)
		assert.Nil(t, memo)
	}
	assert.Equal(t, circuitbreaker.StateClosed, breaker.State())
}
