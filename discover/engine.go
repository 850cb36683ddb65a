package discover

import (
	"context"
	"sync"
	"time"

	"github.com/rainspotter/raincam-live/metrics"
	"github.com/rainspotter/raincam-live/weather"
	"github.com/rainspotter/raincam-live/windy"
)

// Result is what a lookup always returns. Webcam is nil when nothing
// rainy was found; HasAPIKey distinguishes "no rain anywhere sampled" from
// "directory unavailable because no credential is configured".
type Result struct {
	Webcam                *windy.Webcam      `json:"webcam"`
	Rain                  weather.Assessment `json:"rain"`
	WeatherDescription    string             `json:"weather_description"`
	TimezoneID            string             `json:"timezone_id,omitempty"`
	TimezoneOffsetSeconds *int               `json:"timezone_offset_seconds,omitempty"`
	HasAPIKey             bool               `json:"has_api_key"`
	Source                string             `json:"source,omitempty"` // "pool" or "fallback"
}

// Matched reports whether the lookup produced a webcam.
func (r Result) Matched() bool {
	return r.Webcam != nil
}

// Find runs one lookup: build the pool, scan it in batches, and on
// exhaustion probe random coordinates. It always returns a well-formed
// Result, never an error.
func (f *Finder) Find(ctx context.Context) Result {
	start := time.Now()
	defer func() {
		metrics.LookupDuration.Observe(time.Since(start).Seconds())
	}()

	pool := f.buildPool(ctx)
	if cam, rain, ok := f.scanPool(ctx, pool); ok {
		metrics.LookupsTotal.WithLabelValues("pool_match").Inc()
		result := f.assemble(ctx, cam, rain)
		result.Source = "pool"
		return result
	}

	if cam, rain, ok := f.probeFallback(ctx); ok {
		metrics.LookupsTotal.WithLabelValues("fallback_match").Inc()
		result := f.assemble(ctx, cam, rain)
		result.Source = "fallback"
		return result
	}

	metrics.LookupsTotal.WithLabelValues("no_match").Inc()
	return Result{
		WeatherDescription: weather.Describe(nil),
		HasAPIKey:          f.dir.IsConfigured(),
	}
}

// scanPool partitions the shuffled pool into fixed-size batches and
// assesses each batch concurrently. The winner is the first raining
// candidate in batch order, regardless of which request resolved first;
// in-flight siblings within the winning batch run to completion, only
// later batches are skipped.
func (f *Finder) scanPool(ctx context.Context, pool []windy.Webcam) (windy.Webcam, weather.Assessment, bool) {
	batchSize := f.opts.BatchSize
	if batchSize <= 0 {
		batchSize = 1
	}

	for start := 0; start < len(pool); start += batchSize {
		batch := pool[start:min(start+batchSize, len(pool))]
		assessments := make([]weather.Assessment, len(batch))

		var wg sync.WaitGroup
		for i := range batch {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				assessments[i] = f.oracle.Assess(ctx, batch[i].Latitude, batch[i].Longitude)
			}(i)
		}
		wg.Wait()
		metrics.CandidatesAssessedTotal.Add(float64(len(batch)))

		for i, assessment := range assessments {
			if assessment.IsRaining {
				return batch[i], assessment, true
			}
		}
	}
	return windy.Webcam{}, weather.Assessment{}, false
}

// probeFallback draws random coordinates until one reports rain, then
// returns a random webcam near that point. Latitude is bounded to
// [-60,60]; webcam density near the poles is effectively zero. A rainy
// point with no cameras, and any directory error, just costs an attempt.
func (f *Finder) probeFallback(ctx context.Context) (windy.Webcam, weather.Assessment, bool) {
	for attempt := 0; attempt < f.opts.FallbackAttempts; attempt++ {
		metrics.FallbackProbesTotal.Inc()

		lat := f.rng.Float64()*120 - 60
		lon := f.rng.Float64()*360 - 180

		rain := f.oracle.Assess(ctx, lat, lon)
		if !rain.IsRaining {
			continue
		}

		cams, err := f.dir.Nearby(ctx, lat, lon, f.opts.FallbackRadiusKm, f.opts.NearbyLimit)
		if err != nil || len(cams) == 0 {
			continue
		}
		return cams[f.rng.Intn(len(cams))], rain, true
	}
	return windy.Webcam{}, weather.Assessment{}, false
}

// assemble attaches the description, credential flag, and (best effort)
// timezone to a match.
func (f *Finder) assemble(ctx context.Context, cam windy.Webcam, rain weather.Assessment) Result {
	result := Result{
		Webcam:             &cam,
		Rain:               rain,
		WeatherDescription: weather.Describe(rain.Details.WeatherCode),
		HasAPIKey:          f.dir.IsConfigured(),
	}
	if f.tz != nil {
		if info, err := f.tz.Timezone(ctx, cam.Latitude, cam.Longitude); err == nil && info != nil {
			result.TimezoneID = info.ID
			offset := info.OffsetSeconds
			result.TimezoneOffsetSeconds = &offset
		}
	}
	return result
}
