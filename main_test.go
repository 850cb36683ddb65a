package main

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clearLookupEnv() {
	os.Unsetenv("PORT")
	os.Unsetenv("WEATHER_CACHE_TTL")
	os.Unsetenv("DEV_MODE")
	os.Unsetenv("LOOKUP_POOL_MAX")
	os.Unsetenv("LOOKUP_BATCH_SIZE")
	os.Unsetenv("LOOKUP_FALLBACK_ATTEMPTS")
	os.Unsetenv("LOOKUP_SAMPLE_PAGES")
	os.Unsetenv("LOOKUP_NEARBY_LIMIT")
	os.Unsetenv("LOOKUP_POPULAR_LIMIT")
	os.Unsetenv("LOOKUP_SAMPLE_PAGE_LIMIT")
	os.Unsetenv("LOOKUP_SEED_RADIUS_KM")
	os.Unsetenv("LOOKUP_FALLBACK_RADIUS_KM")
}

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantPort    string
		wantTTL     time.Duration
		wantDevMode bool
	}{
		{
			name:     "defaults when no env vars",
			env:      map[string]string{},
			wantPort: "3000",
			wantTTL:  defaultWeatherTTL,
		},
		{
			name:     "custom port",
			env:      map[string]string{"PORT": "8080"},
			wantPort: "8080",
			wantTTL:  defaultWeatherTTL,
		},
		{
			name:     "custom weather TTL",
			env:      map[string]string{"WEATHER_CACHE_TTL": "5m"},
			wantPort: "3000",
			wantTTL:  5 * time.Minute,
		},
		{
			name:     "invalid TTL falls back to default",
			env:      map[string]string{"WEATHER_CACHE_TTL": "soon"},
			wantPort: "3000",
			wantTTL:  defaultWeatherTTL,
		},
		{
			name:        "dev mode flag",
			env:         map[string]string{"DEV_MODE": "1"},
			wantPort:    "3000",
			wantTTL:     defaultWeatherTTL,
			wantDevMode: true,
		},
		{
			name:        "dev mode true string",
			env:         map[string]string{"DEV_MODE": "true"},
			wantPort:    "3000",
			wantTTL:     defaultWeatherTTL,
			wantDevMode: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearLookupEnv()
			t.Cleanup(clearLookupEnv)
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			config := loadConfig()

			assert.Equal(t, tt.wantPort, config.Port)
			assert.Equal(t, tt.wantTTL, config.WeatherTTL)
			assert.Equal(t, tt.wantDevMode, config.DevMode)
		})
	}
}

func TestLoadConfigLookupTunables(t *testing.T) {
	clearLookupEnv()
	t.Cleanup(clearLookupEnv)

	os.Setenv("LOOKUP_POOL_MAX", "500")
	os.Setenv("LOOKUP_BATCH_SIZE", "10")
	os.Setenv("LOOKUP_FALLBACK_ATTEMPTS", "20")
	os.Setenv("LOOKUP_SEED_RADIUS_KM", "75.5")

	config := loadConfig()

	assert.Equal(t, 500, config.Lookup.PoolMax)
	assert.Equal(t, 10, config.Lookup.BatchSize)
	assert.Equal(t, 20, config.Lookup.FallbackAttempts)
	assert.Equal(t, 75.5, config.Lookup.SeedRadiusKm)
	// Untouched tunables keep their defaults.
	assert.Equal(t, 10, config.Lookup.SamplePages)
	assert.Equal(t, 120.0, config.Lookup.FallbackRadiusKm)
}

func TestEnvInt(t *testing.T) {
	os.Unsetenv("TEST_ENV_INT")
	assert.Equal(t, 7, envInt("TEST_ENV_INT", 7))

	os.Setenv("TEST_ENV_INT", "42")
	t.Cleanup(func() { os.Unsetenv("TEST_ENV_INT") })
	assert.Equal(t, 42, envInt("TEST_ENV_INT", 7))

	os.Setenv("TEST_ENV_INT", "not a number")
	assert.Equal(t, 7, envInt("TEST_ENV_INT", 7))

	os.Setenv("TEST_ENV_INT", "-3")
	assert.Equal(t, 7, envInt("TEST_ENV_INT", 7))
}

func TestEnvFloat(t *testing.T) {
	os.Unsetenv("TEST_ENV_FLOAT")
	assert.Equal(t, 1.5, envFloat("TEST_ENV_FLOAT", 1.5))

	os.Setenv("TEST_ENV_FLOAT", "99.25")
	t.Cleanup(func() { os.Unsetenv("TEST_ENV_FLOAT") })
	assert.Equal(t, 99.25, envFloat("TEST_ENV_FLOAT", 1.5))

	os.Setenv("TEST_ENV_FLOAT", "zero")
	assert.Equal(t, 1.5, envFloat("TEST_ENV_FLOAT", 1.5))

	os.Setenv("TEST_ENV_FLOAT", "-0.1")
	assert.Equal(t, 1.5, envFloat("TEST_ENV_FLOAT", 1.5))
}
