// Package discover finds a live webcam currently located in rain. It
// aggregates candidates from three directory adapters into a deduplicated
// pool, evaluates the rain predicate through the weather oracle in bounded
// concurrent batches, and falls back to randomized geographic probing when
// the pool is exhausted.
package discover

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rainspotter/raincam-live/weather"
	"github.com/rainspotter/raincam-live/windy"
)

// Oracle answers whether it is raining at a point. It never fails: an
// unreachable upstream reads as "not raining".
type Oracle interface {
	Assess(ctx context.Context, lat, lon float64) weather.Assessment
}

// TimezoneResolver enriches a match with the local timezone. Optional.
type TimezoneResolver interface {
	Timezone(ctx context.Context, lat, lon float64) (*weather.TimezoneInfo, error)
}

// Directory lists webcam candidates. All methods may fail; the adapters in
// this package degrade every failure to an empty candidate list.
type Directory interface {
	Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]windy.Webcam, error)
	Popular(ctx context.Context, limit int) ([]windy.Webcam, error)
	Page(ctx context.Context, offset, limit int) ([]windy.Webcam, error)
	Total(ctx context.Context) (int, error)
	IsConfigured() bool
}

// Options bound the effort of one lookup.
type Options struct {
	// PoolMax caps how many candidates the seeded crawl collects.
	PoolMax int
	// SeedRadiusKm is the nearby-search radius around each seed.
	SeedRadiusKm float64
	// NearbyLimit is the per-request candidate limit for nearby searches.
	NearbyLimit int
	// PopularLimit bounds the popularity listing.
	PopularLimit int
	// SamplePages is how many random directory pages the sampler fetches.
	SamplePages int
	// SamplePageLimit is the page size for the randomized sampler.
	SamplePageLimit int
	// BatchSize is the concurrent fan-out per pool-scan step.
	BatchSize int
	// FallbackAttempts bounds the randomized probe phase.
	FallbackAttempts int
	// FallbackRadiusKm is the nearby-search radius around a rainy probe.
	FallbackRadiusKm float64
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		PoolMax:          250,
		SeedRadiusKm:     150,
		NearbyLimit:      50,
		PopularLimit:     50,
		SamplePages:      10,
		SamplePageLimit:  50,
		BatchSize:        25,
		FallbackAttempts: 60,
		FallbackRadiusKm: 120,
	}
}

// Finder runs the two-phase search. It is stateless across lookups apart
// from its random source; the oracle owns the only shared cache.
type Finder struct {
	oracle Oracle
	tz     TimezoneResolver
	dir    Directory
	opts   Options
	rng    *lockedRand
}

// NewFinder creates a finder. tz may be nil to skip timezone enrichment.
func NewFinder(oracle Oracle, tz TimezoneResolver, dir Directory, opts Options) *Finder {
	return &Finder{
		oracle: oracle,
		tz:     tz,
		dir:    dir,
		opts:   opts,
		rng:    newLockedRand(rand.NewSource(time.Now().UnixNano())),
	}
}

// lockedRand serializes access to a rand.Rand so adapters running
// concurrently can draw from one source.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(src rand.Source) *lockedRand {
	return &lockedRand{r: rand.New(src)}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *lockedRand) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Shuffle is a uniform Fisher-Yates shuffle.
func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}
