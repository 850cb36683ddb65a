package discover

import (
	"context"
	"sync"

	"github.com/rainspotter/raincam-live/metrics"
	"github.com/rainspotter/raincam-live/windy"
)

// The three source adapters. Each returns only valid candidates and never
// fails: a missing credential or an upstream error degrades to an empty
// list.

// seededPool crawls nearby searches around the shuffled global seeds,
// merging results until PoolMax candidates are collected. The cap
// short-circuits across seeds, not just within one.
func (f *Finder) seededPool(ctx context.Context) []windy.Webcam {
	if !f.dir.IsConfigured() {
		return nil
	}

	seeds := make([]Seed, len(globalSeeds))
	copy(seeds, globalSeeds)
	f.rng.Shuffle(len(seeds), func(i, j int) {
		seeds[i], seeds[j] = seeds[j], seeds[i]
	})

	byID := make(map[string]windy.Webcam)
	var order []string
	for _, seed := range seeds {
		cams, err := f.dir.Nearby(ctx, seed.Lat, seed.Lon, f.opts.SeedRadiusKm, f.opts.NearbyLimit)
		if err != nil {
			continue
		}
		for _, cam := range cams {
			if _, seen := byID[cam.ID]; seen {
				continue
			}
			byID[cam.ID] = cam
			order = append(order, cam.ID)
			if len(byID) >= f.opts.PoolMax {
				return collect(byID, order)
			}
		}
	}
	return collect(byID, order)
}

// popularPool fetches one popularity-ordered page.
func (f *Finder) popularPool(ctx context.Context) []windy.Webcam {
	if !f.dir.IsConfigured() {
		return nil
	}
	cams, err := f.dir.Popular(ctx, f.opts.PopularLimit)
	if err != nil {
		return nil
	}
	return cams
}

// sampledPool learns the directory size, then fetches SamplePages random
// offset pages concurrently and returns the merged set in shuffled order.
func (f *Finder) sampledPool(ctx context.Context) []windy.Webcam {
	if !f.dir.IsConfigured() {
		return nil
	}

	total, err := f.dir.Total(ctx)
	if err != nil || total <= 0 {
		return nil
	}

	maxOffset := total - f.opts.SamplePageLimit - 1
	if maxOffset < 0 {
		maxOffset = 0
	}
	offsets := make([]int, f.opts.SamplePages)
	for i := range offsets {
		offsets[i] = f.rng.Intn(maxOffset + 1)
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		byID = make(map[string]windy.Webcam)
	)
	for _, offset := range offsets {
		wg.Add(1)
		go func(offset int) {
			defer wg.Done()
			cams, err := f.dir.Page(ctx, offset, f.opts.SamplePageLimit)
			if err != nil {
				return
			}
			mu.Lock()
			for _, cam := range cams {
				byID[cam.ID] = cam
			}
			mu.Unlock()
		}(offset)
	}
	wg.Wait()

	out := make([]windy.Webcam, 0, len(byID))
	for _, cam := range byID {
		out = append(out, cam)
	}
	f.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// buildPool runs the three adapters concurrently and merges their output
// into one deduplicated, uniformly shuffled candidate pool.
func (f *Finder) buildPool(ctx context.Context) []windy.Webcam {
	var fromSeeds, fromPopular, fromSample []windy.Webcam

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		fromSeeds = f.seededPool(ctx)
	}()
	go func() {
		defer wg.Done()
		fromPopular = f.popularPool(ctx)
	}()
	go func() {
		defer wg.Done()
		fromSample = f.sampledPool(ctx)
	}()
	wg.Wait()

	metrics.PoolCandidatesTotal.WithLabelValues("seeds").Add(float64(len(fromSeeds)))
	metrics.PoolCandidatesTotal.WithLabelValues("popular").Add(float64(len(fromPopular)))
	metrics.PoolCandidatesTotal.WithLabelValues("sample").Add(float64(len(fromSample)))

	// Dedup by id; candidate identity implies equivalent content, so the
	// last write wins.
	byID := make(map[string]windy.Webcam)
	var order []string
	for _, cams := range [][]windy.Webcam{fromSeeds, fromPopular, fromSample} {
		for _, cam := range cams {
			if _, seen := byID[cam.ID]; !seen {
				order = append(order, cam.ID)
			}
			byID[cam.ID] = cam
		}
	}

	pool := collect(byID, order)
	f.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	metrics.PoolSize.Set(float64(len(pool)))
	return pool
}

func collect(byID map[string]windy.Webcam, order []string) []windy.Webcam {
	out := make([]windy.Webcam, 0, len(order))
	for _, id := range order {
		out = append(out, byID[id])
	}
	return out
}
