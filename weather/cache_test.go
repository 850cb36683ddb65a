package weather

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyForRounding(t *testing.T) {
	tests := []struct {
		name     string
		lat, lon float64
		want     Key
	}{
		{"already on grid", 40.71, -74.01, Key{40.71, -74.01}},
		{"rounds down", 40.7128, -74.0060, Key{40.71, -74.01}},
		{"rounds up", 51.5074, -0.1278, Key{51.51, -0.13}},
		{"half rounds away from zero, positive", 10.005, 20.015, Key{10.01, 20.02}},
		{"half rounds away from zero, negative", -10.005, -20.015, Key{-10.01, -20.02}},
		{"zero", 0, 0, Key{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KeyFor(tt.lat, tt.lon))
		})
	}
}

func TestKeyForIdempotent(t *testing.T) {
	// Rounding a rounded coordinate must land on the same key, otherwise
	// cache entries written under one key could be read under another.
	k := KeyFor(48.8566, 2.3522)
	assert.Equal(t, k, KeyFor(k.Lat, k.Lon))
}

func TestKeyForNearbyPointsShareKey(t *testing.T) {
	a := KeyFor(40.7128, -74.0060)
	b := KeyFor(40.7131, -74.0055)
	assert.Equal(t, a, b)
}

func TestCacheTTL(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	cache := NewCache(10*time.Minute, clock)
	key := KeyFor(40.71, -74.01)

	_, ok := cache.Get(key)
	require.False(t, ok)

	cache.Put(key, Assessment{IsRaining: true})

	got, ok := cache.Get(key)
	require.True(t, ok)
	assert.True(t, got.IsRaining)

	// One second before expiry: still served.
	now = now.Add(10*time.Minute - time.Second)
	_, ok = cache.Get(key)
	assert.True(t, ok)

	// At expiry: gone.
	now = now.Add(time.Second)
	_, ok = cache.Get(key)
	assert.False(t, ok)
}

func TestCacheStats(t *testing.T) {
	cache := NewCache(time.Minute, nil)
	key := KeyFor(1, 2)

	cache.Get(key)
	cache.Put(key, Assessment{})
	cache.Get(key)
	cache.Get(key)

	hits, misses := cache.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
	assert.Equal(t, 1, cache.Len())
}
