package redis

import (
	"context"
	"encoding/binary"
	"errors"
	"math"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
)

// TTLWalkthrough is the default lifetime of a memoized walkthrough.
const TTLWalkthrough = 10 * time.Minute

// CachedWalkthrough is what the walkthrough cache stores per student.
type CachedWalkthrough struct {
	// Fingerprint of the snapshot the estimates were computed from.
	Fingerprint string               `json:"fingerprint"`
	ComputedAt  time.Time            `json:"computed_at"`
	Estimates   []placement.Estimate `json:"estimates"`
}

// WalkthroughCache memoizes estimates per student and throttles refreshes.
type WalkthroughCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewWalkthroughCache creates a WalkthroughCache. A non-positive ttl falls
// back to TTLWalkthrough.
func NewWalkthroughCache(cache *Cache, ttl time.Duration) *WalkthroughCache {
	if ttl <= 0 {
		ttl = TTLWalkthrough
	}
	return &WalkthroughCache{cache: cache, ttl: ttl}
}

// Get returns the memoized walkthrough, or ErrCacheMiss.
func (w *WalkthroughCache) Get(ctx context.Context, studentID string) (*CachedWalkthrough, error) {
	var cw CachedWalkthrough
	if err := w.cache.Get(ctx, WalkthroughKey(studentID), &cw); err != nil {
		return nil, err
	}
	return &cw, nil
}

// Set stores the walkthrough computed from a snapshot with the given fingerprint.
func (w *WalkthroughCache) Set(ctx context.Context, studentID, fingerprint string, estimates []placement.Estimate) error {
	return w.cache.Set(ctx, WalkthroughKey(studentID), CachedWalkthrough{
		Fingerprint: fingerprint,
		ComputedAt:  time.Now().UTC(),
		Estimates:   estimates,
	}, w.ttl)
}

// TryAcquireRefresh reports whether the caller may recompute now. It sets a
// marker that expires after interval; while the marker lives, further calls
// return false. A zero interval never throttles.
func (w *WalkthroughCache) TryAcquireRefresh(ctx context.Context, studentID string, interval time.Duration) (bool, error) {
	if interval <= 0 {
		return true, nil
	}
	return w.cache.SetNX(ctx, RefreshKey(studentID), time.Now().UTC().Unix(), interval)
}

// Invalidate drops the memoized walkthrough and the throttle marker.
func (w *WalkthroughCache) Invalidate(ctx context.Context, studentID string) error {
	err := w.cache.Delete(ctx, WalkthroughKey(studentID), RefreshKey(studentID))
	if errors.Is(err, ErrCacheMiss) {
		return nil
	}
	return err
}

// ══════════════════════════════════════════════════════════════════════════════
// FINGERPRINT
// ══════════════════════════════════════════════════════════════════════════════

// Fingerprint hashes every input the estimators read. Two snapshots with the
// same fingerprint produce the same estimates.
func Fingerprint(s *placement.Snapshot) string {
	d := xxhash.New()
	var buf [8]byte

	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		d.Write(buf[:])
	}
	putInt := func(n int) {
		binary.LittleEndian.PutUint64(buf[:], uint64(int64(n)))
		d.Write(buf[:])
	}
	putBool := func(b bool) {
		if b {
			d.Write([]byte{1})
		} else {
			d.Write([]byte{0})
		}
	}
	putString := func(str string) {
		putInt(len(str))
		d.WriteString(str)
	}

	p := s.Profile
	putFloat(p.GPA)
	putBool(p.HasFailure)
	putInt(len(p.PreferenceOrder))
	for _, id := range p.PreferenceOrder {
		putString(string(id))
	}
	putInt(len(p.AuthoritativeRanks))
	for _, r := range p.AuthoritativeRanks {
		putInt(r)
	}

	for _, st := range s.Standings {
		putString(string(st.AgreementID))
		putInt(st.Capacity)
		putInt(st.Grades.FailureBoundary())
		putInt(st.Grades.Len())
		for i := 0; i < st.Grades.Len(); i++ {
			putFloat(st.Grades.At(i))
		}
		putInt(len(st.Candidates))
		for _, c := range st.Candidates {
			putFloat(c.GPA)
			putBool(c.HasFailure)
		}
	}

	return strconv.FormatUint(d.Sum64(), 16)
}
