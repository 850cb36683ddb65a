// Package store caches webcam image snapshots so the result page serves
// the winning camera's frame from this process instead of hotlinking the
// directory CDN.
package store

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/mitchellh/hashstructure"

	"github.com/rainspotter/raincam-live/metrics"
)

const snapshotFreshFor = 30 * time.Second

// Snapshot is an immutable fetched frame. Consumers treat it as frozen;
// a refetch produces a new Snapshot rather than mutating this one.
type Snapshot struct {
	ContentType string
	ETag        string
	Bytes       []byte
	Status      int
	FetchedAt   time.Time
}

type entry struct {
	mu   sync.RWMutex
	src  string
	snap *Snapshot
}

func (e *entry) read() (string, *Snapshot) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.src, e.snap
}

func (e *entry) write(snap *Snapshot) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap = snap
}

// Store maps webcam ids to their registered image source and latest
// snapshot. The map itself is guarded by one RWMutex; per-image state is
// locked at the entry level so concurrent fetches of different cameras
// never serialize.
type Store struct {
	client  *http.Client
	mu      sync.RWMutex
	entries map[string]*entry
	now     func() time.Time
}

// NewStore creates an empty snapshot store. httpClient may be nil.
func NewStore(httpClient *http.Client) *Store {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Store{
		client:  httpClient,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Register remembers the image source for a webcam id. Re-registering the
// same id updates the source and drops any stale snapshot for the old one.
func (s *Store) Register(id, src string) {
	if id == "" || src == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[id]; ok {
		existing.mu.Lock()
		if existing.src != src {
			existing.src = src
			existing.snap = nil
		}
		existing.mu.Unlock()
		return
	}
	s.entries[id] = &entry{src: src}
}

func (s *Store) lookup(id string) (*entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	return e, ok
}

// Snapshot returns the current frame for a registered webcam, fetching
// from the origin when the cached one is missing or stale. The second
// return is false for ids that were never registered.
func (s *Store) Snapshot(ctx context.Context, id string) (*Snapshot, bool) {
	e, ok := s.lookup(id)
	if !ok {
		return nil, false
	}

	src, snap := e.read()
	if snap != nil && s.now().Sub(snap.FetchedAt) < snapshotFreshFor {
		metrics.ImageFetchTotal.WithLabelValues("unchanged", metrics.ExtractOrigin(src)).Inc()
		return snap, true
	}

	fresh := s.fetch(ctx, src, snap)
	if fresh == nil {
		// Origin unreachable; serve the stale frame if we have one.
		if snap != nil {
			return snap, true
		}
		return &Snapshot{Status: http.StatusBadGateway, FetchedAt: s.now()}, true
	}
	e.write(fresh)
	return fresh, true
}

// fetch performs a conditional GET against the image origin. A 304 renews
// the previous snapshot; any failure returns nil.
func (s *Store) fetch(ctx context.Context, src string, previous *Snapshot) *Snapshot {
	origin := metrics.ExtractOrigin(src)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		metrics.ImageFetchTotal.WithLabelValues("error", origin).Inc()
		return nil
	}
	if previous != nil && previous.ETag != "" {
		req.Header.Set("If-None-Match", previous.ETag)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		metrics.ImageFetchTotal.WithLabelValues("error", origin).Inc()
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotModified && previous != nil {
		metrics.ImageFetchTotal.WithLabelValues("unchanged", origin).Inc()
		renewed := *previous
		renewed.FetchedAt = s.now()
		return &renewed
	}

	if resp.StatusCode != http.StatusOK {
		metrics.ImageFetchTotal.WithLabelValues("error", origin).Inc()
		return nil
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.ImageFetchTotal.WithLabelValues("error", origin).Inc()
		return nil
	}

	metrics.ImageFetchTotal.WithLabelValues("success", origin).Inc()
	metrics.ImageFetchSizeBytes.Observe(float64(len(body)))

	snap := &Snapshot{
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
		Bytes:       body,
		Status:      http.StatusOK,
		FetchedAt:   s.now(),
	}
	if snap.ContentType == "" {
		snap.ContentType = "image/jpeg"
	}
	if snap.ETag == "" {
		if hash, err := hashstructure.Hash(snap.Bytes, nil); err == nil {
			snap.ETag = "\"" + strconv.FormatUint(hash, 10) + "\""
		}
	}
	return snap
}

// Len reports how many webcams have been registered.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
