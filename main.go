// Package main is the entry point for the raincam.live rain-webcam finder
package main

import (
	"context"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/rainspotter/raincam-live/discover"
	appfs "github.com/rainspotter/raincam-live/fs"
	"github.com/rainspotter/raincam-live/logger"
	"github.com/rainspotter/raincam-live/metrics"
	"github.com/rainspotter/raincam-live/server"
	"github.com/rainspotter/raincam-live/store"
	"github.com/rainspotter/raincam-live/ui"
	"github.com/rainspotter/raincam-live/weather"
	"github.com/rainspotter/raincam-live/windy"
)

const defaultWeatherTTL = 10 * time.Minute

type Config struct {
	Port        string
	WindyAPIKey string
	WeatherTTL  time.Duration
	DevMode     bool
	LogDir      string
	Lookup      discover.Options
}

func loadConfig() Config {
	if err := godotenv.Load(); err != nil {
		logger.Muted("No .env file loaded: %v", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}

	weatherTTL := defaultWeatherTTL
	if ttlStr := os.Getenv("WEATHER_CACHE_TTL"); ttlStr != "" {
		if d, err := time.ParseDuration(ttlStr); err == nil {
			weatherTTL = d
		}
	}

	devMode := os.Getenv("DEV_MODE") == "1" || os.Getenv("DEV_MODE") == "true"

	opts := discover.DefaultOptions()
	opts.PoolMax = envInt("LOOKUP_POOL_MAX", opts.PoolMax)
	opts.BatchSize = envInt("LOOKUP_BATCH_SIZE", opts.BatchSize)
	opts.NearbyLimit = envInt("LOOKUP_NEARBY_LIMIT", opts.NearbyLimit)
	opts.PopularLimit = envInt("LOOKUP_POPULAR_LIMIT", opts.PopularLimit)
	opts.SamplePages = envInt("LOOKUP_SAMPLE_PAGES", opts.SamplePages)
	opts.SamplePageLimit = envInt("LOOKUP_SAMPLE_PAGE_LIMIT", opts.SamplePageLimit)
	opts.FallbackAttempts = envInt("LOOKUP_FALLBACK_ATTEMPTS", opts.FallbackAttempts)
	opts.SeedRadiusKm = envFloat("LOOKUP_SEED_RADIUS_KM", opts.SeedRadiusKm)
	opts.FallbackRadiusKm = envFloat("LOOKUP_FALLBACK_RADIUS_KM", opts.FallbackRadiusKm)

	return Config{
		Port:        port,
		WindyAPIKey: os.Getenv("WINDY_WEBCAMS_API_KEY"),
		WeatherTTL:  weatherTTL,
		DevMode:     devMode,
		LogDir:      os.Getenv("LOG_DIR"),
		Lookup:      opts,
	}
}

func envInt(name string, fallback int) int {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

func envFloat(name string, fallback float64) float64 {
	if raw := os.Getenv(name); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v > 0 {
			return v
		}
	}
	return fallback
}

// getBaseDir returns the directory containing the binary or working directory in dev mode
func getBaseDir() (string, error) {
	if os.Getenv("DEV_MODE") == "1" || os.Getenv("DEV_MODE") == "true" {
		return os.Getwd()
	}

	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	exeDir := filepath.Dir(exe)

	// Container deployments ship templates next to the binary
	if _, err := os.Stat(filepath.Join(exeDir, "templates")); err == nil {
		return exeDir, nil
	}

	return os.Getwd()
}

// loadFilesystem loads files from disk relative to the base directory
func loadFilesystem(subdir string) (fs.FS, error) {
	baseDir, err := getBaseDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get base directory: %w", err)
	}

	path := filepath.Join(baseDir, subdir)
	return os.DirFS(path), nil
}

// initSentry initializes Sentry if DSN is provided and not in dev mode
// Returns true if Sentry was initialized
func initSentry(devMode bool) bool {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" || devMode {
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      "production",
		Release:          server.Version,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}

	logger.SetSentryCaptureException(func(err error) interface{} {
		return sentry.CaptureException(err)
	})

	return true
}

// instrumentedLookup wraps the finder so each lookup feeds the TUI HUD and
// the styled log.
type instrumentedLookup struct {
	finder *discover.Finder
	cache  *weather.Cache

	mu    sync.Mutex
	stats ui.Stats
}

func (l *instrumentedLookup) Find(ctx context.Context) discover.Result {
	start := time.Now()
	result := l.finder.Find(ctx)
	duration := time.Since(start)

	outcome := "no_match"
	location := ""
	if result.Matched() {
		if result.Source == "fallback" {
			outcome = "fallback_match"
		} else {
			outcome = "pool_match"
		}
		location = result.Webcam.LocationName
		if location == "" {
			location = result.Webcam.Title
		}
	}

	l.mu.Lock()
	l.stats.Lookups++
	switch outcome {
	case "pool_match":
		l.stats.PoolMatches++
	case "fallback_match":
		l.stats.FallbackMatches++
	default:
		l.stats.NoMatches++
	}
	hits, misses := l.cache.Stats()
	l.stats.CacheHits = int(hits)
	l.stats.CacheMisses = int(misses)
	l.stats.LastLookupTime = time.Now()
	l.stats.LastOutcome = outcome
	l.stats.LastLocation = location
	snapshot := l.stats
	l.mu.Unlock()

	ui.UpdateStats(snapshot)
	logger.LookupSummary{
		Duration: duration,
		Outcome:  outcome,
	}.Print()

	return result
}

func main() {
	devMode := os.Getenv("DEV_MODE") == "1" || os.Getenv("DEV_MODE") == "true"

	sentryEnabled := initSentry(devMode)

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "help", "--help", "-h":
			fmt.Println("raincam.live: find a live webcam where it is raining")
			fmt.Println("")
			fmt.Println("Usage:")
			fmt.Println("  raincam-live       Start the web server (default)")
			fmt.Println("  raincam-live help  Show this help message")
			return
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	config := loadConfig()

	staticFS, err := loadFilesystem("static")
	if err != nil {
		logger.Fatal(err, "failed to load static files: %v", err)
	}

	tmplFS, err := loadFilesystem("templates")
	if err != nil {
		logger.Fatal(err, "failed to load templates: %v", err)
	}

	if err := server.InitErrorLogger(config.LogDir); err != nil {
		logger.Warn("error log disabled: %v", err)
	}

	cache := weather.NewCache(config.WeatherTTL, time.Now)
	oracle := weather.NewClientWithCache(nil, cache)
	directory := windy.NewClient(config.WindyAPIKey)
	finder := discover.NewFinder(oracle, oracle, directory, config.Lookup)
	snapshots := store.NewStore(nil)

	lookup := &instrumentedLookup{finder: finder, cache: cache}

	var requestCount, errorCount int64
	server.RequestCounter = &requestCount
	server.ErrorCounter = &errorCount

	app, err := server.Start(server.ServerConfig{
		Lookup:        lookup,
		Snapshots:     snapshots,
		TemplateFS:    tmplFS,
		StaticFS:      staticFS,
		DevMode:       config.DevMode,
		SentryEnabled: sentryEnabled,
	})
	if err != nil {
		logger.Fatal(err, "failed to start server: %v", err)
	}

	uiEnabled := !config.DevMode && ui.Initialize(server.Version, server.BuildTime, config.Port)
	logger.SetUIMode(uiEnabled)
	if uiEnabled {
		logger.Log = ui.AddLog
		server.LogWriter = ui.AddLog
	} else {
		logger.PrintBanner(server.Version, server.BuildTime)
		logger.ServerInfo{
			Port:       config.Port,
			CacheTTL:   config.WeatherTTL,
			Seeds:      discover.SeedCount(),
			KeyPresent: directory.IsConfigured(),
		}.Print()
		if config.DevMode {
			appfs.Print("templates", tmplFS)
			appfs.Print("static", staticFS)
		}
	}

	if !directory.IsConfigured() {
		logger.Warn("WINDY_WEBCAMS_API_KEY not set. Lookups will return empty results.")
	}

	// Keep process gauges fresh for /metrics and the HUD
	go func() {
		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()
		lastReqs := int64(0)
		lastErrs := int64(0)
		lastTick := time.Now()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.RecordMemoryUsage()
				metrics.WeatherCacheEntries.Set(float64(cache.Len()))

				currentReqs := atomic.LoadInt64(&requestCount)
				currentErrs := atomic.LoadInt64(&errorCount)
				elapsed := time.Since(lastTick).Seconds()
				reqPerSec := 0.0
				if elapsed > 0 {
					reqPerSec = float64(currentReqs-lastReqs) / elapsed
				}
				errStats := metrics.CalculateErrorRate(
					float64(currentReqs), float64(currentErrs), float64(lastErrs), elapsed)
				lastReqs = currentReqs
				lastErrs = currentErrs
				lastTick = time.Now()

				var m runtime.MemStats
				runtime.ReadMemStats(&m)

				lookup.mu.Lock()
				lookup.stats.RequestsTotal = int(currentReqs)
				lookup.stats.RequestsPerSec = reqPerSec
				lookup.stats.ErrorRate = errStats.ErrorRate
				lookup.stats.MemoryUsageMB = float64(m.Alloc) / 1024 / 1024
				lookup.stats.GoroutineCount = runtime.NumGoroutine()
				snapshot := lookup.stats
				lookup.mu.Unlock()
				ui.UpdateStats(snapshot)
			}
		}
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Success("Listening on http://localhost:%s", config.Port)
		serverErr <- app.Start(":" + config.Port)
	}()

	select {
	case err := <-serverErr:
		if err != nil && err != http.ErrServerClosed {
			logger.Error(err, "server error: %v", err)
		}
	case <-sigChan:
		logger.Shutdown()
	}

	cancel()
	ui.Shutdown()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error(err, "graceful shutdown failed: %v", err)
	}

	if err := server.CloseErrorLogger(); err != nil {
		logger.Error(err, "failed to close error log: %v", err)
	}
	if sentryEnabled {
		sentry.Flush(2 * time.Second)
	}
}
