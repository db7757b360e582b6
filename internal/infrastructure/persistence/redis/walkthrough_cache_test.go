package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/exchange-insight/exchange-insight/internal/domain/placement"
)

func testSnapshot(t *testing.T) *placement.Snapshot {
	t.Helper()
	grades, err := placement.NewGradeList([]float64{5.8, 5.5, 4.9}, 2)
	require.NoError(t, err)
	return &placement.Snapshot{
		Profile: placement.StudentProfile{
			GPA:                5.1,
			PreferenceOrder:    []placement.AgreementID{"eth", "kth"},
			AuthoritativeRanks: []int{3},
		},
		Standings: []placement.AgreementStanding{
			{AgreementID: "eth", Capacity: 2, Grades: grades, Candidates: []placement.Candidate{{GPA: 5.5}}},
			{AgreementID: "kth", Capacity: 1, Grades: placement.UnsegmentedGradeList(nil)},
		},
	}
}

func TestFingerprint_Stable(t *testing.T) {
	assert.Equal(t, Fingerprint(testSnapshot(t)), Fingerprint(testSnapshot(t)))
}

func TestFingerprint_SensitiveToInputs(t *testing.T) {
	base := Fingerprint(testSnapshot(t))

	mutations := map[string]func(s *placement.Snapshot){
		"gpa":       func(s *placement.Snapshot) { s.Profile.GPA = 5.2 },
		"failure":   func(s *placement.Snapshot) { s.Profile.HasFailure = true },
		"ranks":     func(s *placement.Snapshot) { s.Profile.AuthoritativeRanks = []int{3, 1} },
		"capacity":  func(s *placement.Snapshot) { s.Standings[1].Capacity = 2 },
		"candidate": func(s *placement.Snapshot) { s.Standings[0].Candidates[0].HasFailure = true },
		"boundary": func(s *placement.Snapshot) {
			s.Standings[0].Grades = placement.UnsegmentedGradeList([]float64{5.8, 5.5, 4.9})
		},
		"order": func(s *placement.Snapshot) {
			s.Profile.PreferenceOrder[0], s.Profile.PreferenceOrder[1] = s.Profile.PreferenceOrder[1], s.Profile.PreferenceOrder[0]
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			s := testSnapshot(t)
			mutate(s)
			assert.NotEqual(t, base, Fingerprint(s))
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "walkthrough:abc", WalkthroughKey("abc"))
	assert.Equal(t, "refresh:abc", RefreshKey("abc"))
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "redis://:secret@cache.internal:6380/2"

	opts, err := cfg.options()
	require.NoError(t, err)
	assert.Equal(t, "cache.internal:6380", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)
	assert.Equal(t, cfg.PoolSize, opts.PoolSize)

	cfg.URL = "://bad"
	_, err = cfg.options()
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func unreachableCache(t *testing.T) *Cache {
	t.Helper()
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheFromClient(client)
}

func TestWalkthroughCache_Unreachable(t *testing.T) {
	ctx := context.Background()
	w := NewWalkthroughCache(unreachableCache(t), time.Minute)

	_, err := w.Get(ctx, "s-1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrCacheMiss), "connection errors must not look like a miss")

	ok, err := w.TryAcquireRefresh(ctx, "s-1", 0)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = w.TryAcquireRefresh(ctx, "s-1", time.Second)
	assert.Error(t, err)
}

func TestCache_ValidatesBeforeNetwork(t *testing.T) {
	ctx := context.Background()
	c := unreachableCache(t)

	assert.ErrorIs(t, c.Set(ctx, "", 1, time.Minute), ErrCacheKeyEmpty)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, time.Minute), ErrCacheNilValue)
	assert.ErrorIs(t, c.Set(ctx, "k", 1, -time.Second), ErrCacheInvalidTTL)
}
