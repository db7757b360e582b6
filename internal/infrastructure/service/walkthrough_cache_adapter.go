// Package service adapts infrastructure components to the interfaces the
// application layer depends on.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/exchange-insight/exchange-insight/internal/application/query"
	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
	"github.com/exchange-insight/exchange-insight/internal/infrastructure/persistence/redis"
	"github.com/exchange-insight/exchange-insight/pkg/circuitbreaker"
)

// walkthroughStore is the subset of redis.WalkthroughCache used here.
type walkthroughStore interface {
	Get(ctx context.Context, studentID string) (*redis.CachedWalkthrough, error)
	Set(ctx context.Context, studentID, fingerprint string, estimates []placement.Estimate) error
	TryAcquireRefresh(ctx context.Context, studentID string, interval time.Duration) (bool, error)
	Invalidate(ctx context.Context, studentID string) error
}

// WalkthroughCacheAdapter adapts redis.WalkthroughCache to query.WalkthroughCache
// and eventhandler.WalkthroughInvalidator. Calls go through a circuit breaker
// so a dead Redis costs one fast error per call instead of a dial timeout.
type WalkthroughCacheAdapter struct {
	store   walkthroughStore
	breaker *circuitbreaker.CircuitBreaker
}

var _ query.WalkthroughCache = (*WalkthroughCacheAdapter)(nil)

// NewWalkthroughCacheAdapter wraps cache. A nil breaker disables fail-fast.
func NewWalkthroughCacheAdapter(cache *redis.WalkthroughCache, breaker *circuitbreaker.CircuitBreaker) *WalkthroughCacheAdapter {
	return &WalkthroughCacheAdapter{store: cache, breaker: breaker}
}

func (a *WalkthroughCacheAdapter) call(ctx context.Context, fn func(context.Context) error) error {
	if a.breaker == nil {
		return fn(ctx)
	}
	return a.breaker.Execute(ctx, fn)
}

// Get maps a cache miss to (nil, nil).
func (a *WalkthroughCacheAdapter) Get(ctx context.Context, studentID string) (*query.WalkthroughMemo, error) {
	var cw *redis.CachedWalkthrough
	err := a.call(ctx, func(ctx context.Context) error {
		var err error
		cw, err = a.store.Get(ctx, studentID)
		return err
	})
	if err != nil {
		if errors.Is(err, redis.ErrCacheMiss) {
			return nil, nil
		}
		return nil, err
	}
	return &query.WalkthroughMemo{
		Fingerprint: cw.Fingerprint,
		ComputedAt:  cw.ComputedAt,
		Estimates:   cw.Estimates,
	}, nil
}

func (a *WalkthroughCacheAdapter) Set(ctx context.Context, studentID string, memo query.WalkthroughMemo) error {
	return a.call(ctx, func(ctx context.Context) error {
		return a.store.Set(ctx, studentID, memo.Fingerprint, memo.Estimates)
	})
}

func (a *WalkthroughCacheAdapter) TryAcquireRefresh(ctx context.Context, studentID string, interval time.Duration) (bool, error) {
	var acquired bool
	err := a.call(ctx, func(ctx context.Context) error {
		var err error
		acquired, err = a.store.TryAcquireRefresh(ctx, studentID, interval)
		return err
	})
	return acquired, err
}

func (a *WalkthroughCacheAdapter) Fingerprint(s *placement.Snapshot) string {
	return redis.Fingerprint(s)
}

// Invalidate serves eventhandler.WalkthroughInvalidator.
func (a *WalkthroughCacheAdapter) Invalidate(ctx context.Context, studentID string) error {
	return a.call(ctx, func(ctx context.Context) error {
		return a.store.Invalidate(ctx, studentID)
	})
}
