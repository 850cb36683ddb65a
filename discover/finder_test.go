package discover

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rainspotter/raincam-live/weather"
	"github.com/rainspotter/raincam-live/windy"
)

// fakeOracle reports rain for an explicit set of webcam coordinates or
// probe regions.
type fakeOracle struct {
	mu        sync.Mutex
	rainAt    map[weather.Key]bool
	rainAll   bool
	rainAfter int // report rain from the Nth assessment onward
	assessed  int
}

func (o *fakeOracle) Assess(ctx context.Context, lat, lon float64) weather.Assessment {
	o.mu.Lock()
	o.assessed++
	n := o.assessed
	o.mu.Unlock()

	raining := o.rainAll || (o.rainAfter > 0 && n >= o.rainAfter)
	if !raining && o.rainAt != nil {
		raining = o.rainAt[weather.KeyFor(lat, lon)]
	}
	if !raining {
		return weather.Assessment{}
	}
	amount := 1.2
	code := 61
	return weather.Assessment{
		IsRaining: true,
		Details:   weather.Details{Rain: &amount, WeatherCode: &code},
	}
}

func (o *fakeOracle) assessedCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.assessed
}

// fakeDirectory serves canned candidates per adapter endpoint.
type fakeDirectory struct {
	configured bool
	nearby     []windy.Webcam
	nearbyErr  error
	popular    []windy.Webcam
	pages      map[int][]windy.Webcam
	totalCount int

	mu          sync.Mutex
	nearbyCalls int
}

func (d *fakeDirectory) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]windy.Webcam, error) {
	d.mu.Lock()
	d.nearbyCalls++
	d.mu.Unlock()
	return d.nearby, d.nearbyErr
}

func (d *fakeDirectory) Popular(ctx context.Context, limit int) ([]windy.Webcam, error) {
	return d.popular, nil
}

func (d *fakeDirectory) Page(ctx context.Context, offset, limit int) ([]windy.Webcam, error) {
	return d.pages[offset], nil
}

func (d *fakeDirectory) Total(ctx context.Context) (int, error) {
	return d.totalCount, nil
}

func (d *fakeDirectory) IsConfigured() bool {
	return d.configured
}

func cam(id string, lat, lon float64) windy.Webcam {
	return windy.Webcam{
		ID:        id,
		Title:     "Cam " + id,
		ImageURL:  "https://img.example/" + id + ".jpg",
		Latitude:  lat,
		Longitude: lon,
	}
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.FallbackAttempts = 5
	opts.SamplePages = 2
	return opts
}

func TestBuildPoolDeduplicates(t *testing.T) {
	shared := cam("dup", 10, 10)
	dir := &fakeDirectory{
		configured: true,
		nearby:     []windy.Webcam{shared, cam("a", 11, 11)},
		popular:    []windy.Webcam{shared, cam("b", 12, 12)},
		pages: map[int][]windy.Webcam{
			0: {shared, cam("c", 13, 13)},
		},
		totalCount: 4,
	}

	f := NewFinder(&fakeOracle{}, nil, dir, testOptions())
	pool := f.buildPool(context.Background())

	ids := make(map[string]int)
	for _, c := range pool {
		ids[c.ID]++
	}
	assert.Equal(t, 1, ids["dup"])
	assert.Equal(t, 1, ids["a"])
	assert.Equal(t, 1, ids["b"])
	assert.Equal(t, 1, ids["c"])
	assert.Len(t, pool, 4)
}

func TestBuildPoolUnconfigured(t *testing.T) {
	f := NewFinder(&fakeOracle{}, nil, &fakeDirectory{configured: false}, testOptions())
	assert.Empty(t, f.buildPool(context.Background()))
}

func TestSeededPoolRespectsCap(t *testing.T) {
	// Every seed returns the same large page; the cap must stop the crawl
	// across seeds, not only within one.
	var page []windy.Webcam
	for i := 0; i < 30; i++ {
		page = append(page, cam(fmt.Sprintf("s%d", i), float64(i), float64(i)))
	}
	dir := &fakeDirectory{configured: true, nearby: page}

	opts := testOptions()
	opts.PoolMax = 20

	f := NewFinder(&fakeOracle{}, nil, dir, opts)
	pool := f.seededPool(context.Background())

	assert.Len(t, pool, 20)
	assert.Equal(t, 1, dir.nearbyCalls)
}

func TestSeededPoolSurvivesErrors(t *testing.T) {
	dir := &fakeDirectory{configured: true, nearbyErr: fmt.Errorf("boom")}
	f := NewFinder(&fakeOracle{}, nil, dir, testOptions())

	assert.Empty(t, f.seededPool(context.Background()))
	assert.Equal(t, SeedCount(), dir.nearbyCalls)
}

func TestSampledPoolOffsetsBounded(t *testing.T) {
	pages := map[int][]windy.Webcam{}
	dir := &fakeDirectory{configured: true, pages: pages, totalCount: 60}

	opts := testOptions()
	opts.SamplePages = 50
	opts.SamplePageLimit = 50

	f := NewFinder(&fakeOracle{}, nil, dir, opts)

	// total=60, pageSize=50: offsets must stay in [0, 9].
	maxOffset := dir.totalCount - opts.SamplePageLimit - 1
	for i := 0; i < 200; i++ {
		offset := f.rng.Intn(maxOffset + 1)
		assert.GreaterOrEqual(t, offset, 0)
		assert.LessOrEqual(t, offset, maxOffset)
	}

	// Zero total short-circuits without fetching pages.
	dir.totalCount = 0
	assert.Empty(t, f.sampledPool(context.Background()))
}

func TestFindPoolMatch(t *testing.T) {
	rainy := cam("rainy", 51.51, -0.13)
	dry := cam("dry", 33.45, -112.07)

	oracle := &fakeOracle{rainAt: map[weather.Key]bool{
		weather.KeyFor(rainy.Latitude, rainy.Longitude): true,
	}}
	dir := &fakeDirectory{
		configured: true,
		popular:    []windy.Webcam{dry, rainy, cam("dry2", 36.17, -115.14)},
	}

	f := NewFinder(oracle, nil, dir, testOptions())
	result := f.Find(context.Background())

	require.True(t, result.Matched())
	assert.Equal(t, "rainy", result.Webcam.ID)
	assert.True(t, result.Rain.IsRaining)
	assert.Equal(t, "Slight rain", result.WeatherDescription)
	assert.Equal(t, "pool", result.Source)
	assert.True(t, result.HasAPIKey)
}

func TestScanPoolWinnerIsFirstInOrder(t *testing.T) {
	// Two raining candidates in one batch: the earlier index must win
	// regardless of goroutine scheduling.
	pool := make([]windy.Webcam, 10)
	for i := range pool {
		pool[i] = cam(fmt.Sprintf("c%d", i), float64(i), float64(i))
	}

	oracle := &fakeOracle{rainAt: map[weather.Key]bool{
		weather.KeyFor(3, 3): true,
		weather.KeyFor(7, 7): true,
	}}

	f := NewFinder(oracle, nil, &fakeDirectory{configured: true}, testOptions())
	for i := 0; i < 20; i++ {
		winner, _, ok := f.scanPool(context.Background(), pool)
		require.True(t, ok)
		assert.Equal(t, "c3", winner.ID)
	}
}

func TestScanPoolSkipsLaterBatches(t *testing.T) {
	// One raining candidate at index 17 of 40 with batch size 25: the scan
	// must find it in the first batch and never start the second.
	pool := make([]windy.Webcam, 40)
	for i := range pool {
		pool[i] = cam(fmt.Sprintf("c%d", i), float64(i), 0)
	}

	oracle := &fakeOracle{rainAt: map[weather.Key]bool{
		weather.KeyFor(17, 0): true,
	}}

	opts := testOptions()
	opts.BatchSize = 25

	f := NewFinder(oracle, nil, &fakeDirectory{configured: true}, opts)
	winner, _, ok := f.scanPool(context.Background(), pool)

	require.True(t, ok)
	assert.Equal(t, "c17", winner.ID)
	// The winning batch runs to completion but batches after it never start.
	assert.Equal(t, 25, oracle.assessedCount())
}

func TestFindFallbackMatch(t *testing.T) {
	// First rain on probe attempt 5; before that every probe is dry and no
	// directory call happens.
	nearby := []windy.Webcam{
		cam("f1", 5, 5),
		cam("f2", 6, 6),
		cam("f3", 7, 7),
	}
	oracle := &fakeOracle{rainAfter: 5}
	dir := &fakeDirectory{configured: true, nearby: nearby}

	opts := testOptions()
	opts.FallbackAttempts = 60

	f := NewFinder(oracle, nil, dir, opts)
	// Empty pool forces the fallback phase.
	winner, rain, ok := f.probeFallback(context.Background())

	require.True(t, ok)
	assert.True(t, rain.IsRaining)
	assert.Contains(t, []string{"f1", "f2", "f3"}, winner.ID)
	assert.Equal(t, 5, oracle.assessedCount())
	assert.Equal(t, 1, dir.nearbyCalls)
}

func TestFindNoMatch(t *testing.T) {
	oracle := &fakeOracle{} // never raining
	dir := &fakeDirectory{configured: true, popular: []windy.Webcam{cam("a", 1, 1)}}

	opts := testOptions()
	opts.FallbackAttempts = 60

	f := NewFinder(oracle, nil, dir, opts)
	result := f.Find(context.Background())

	assert.False(t, result.Matched())
	assert.Nil(t, result.Webcam)
	assert.Equal(t, "Unknown", result.WeatherDescription)
	assert.True(t, result.HasAPIKey)
	assert.Empty(t, result.Source)
	// One pool candidate plus all sixty exhausted probes.
	assert.Equal(t, 61, oracle.assessedCount())
}

func TestFindWithoutCredential(t *testing.T) {
	oracle := &fakeOracle{rainAll: true}
	dir := &fakeDirectory{configured: false}

	opts := testOptions()
	opts.FallbackAttempts = 2

	f := NewFinder(oracle, nil, dir, opts)
	result := f.Find(context.Background())

	assert.False(t, result.Matched())
	assert.False(t, result.HasAPIKey)
}

func TestProbeFallbackCoordinateBounds(t *testing.T) {
	f := NewFinder(&fakeOracle{}, nil, &fakeDirectory{configured: true}, testOptions())

	for i := 0; i < 500; i++ {
		lat := f.rng.Float64()*120 - 60
		lon := f.rng.Float64()*360 - 180
		assert.GreaterOrEqual(t, lat, -60.0)
		assert.Less(t, lat, 60.0)
		assert.GreaterOrEqual(t, lon, -180.0)
		assert.Less(t, lon, 180.0)
	}
}

// fakeTZ resolves every point to one fixed zone.
type fakeTZ struct{}

func (fakeTZ) Timezone(ctx context.Context, lat, lon float64) (*weather.TimezoneInfo, error) {
	return &weather.TimezoneInfo{ID: "Europe/London", OffsetSeconds: 3600}, nil
}

func TestFindEnrichesTimezone(t *testing.T) {
	rainy := cam("rainy", 51.51, -0.13)
	oracle := &fakeOracle{rainAt: map[weather.Key]bool{
		weather.KeyFor(rainy.Latitude, rainy.Longitude): true,
	}}
	dir := &fakeDirectory{configured: true, popular: []windy.Webcam{rainy}}

	f := NewFinder(oracle, fakeTZ{}, dir, testOptions())
	result := f.Find(context.Background())

	require.True(t, result.Matched())
	assert.Equal(t, "Europe/London", result.TimezoneID)
	require.NotNil(t, result.TimezoneOffsetSeconds)
	assert.Equal(t, 3600, *result.TimezoneOffsetSeconds)
}
