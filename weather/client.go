package weather

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rainspotter/raincam-live/metrics"
)

const (
	defaultBaseURL = "https://api.open-meteo.com/v1/forecast"
	defaultTTL     = 10 * time.Minute

	currentFields = "precipitation,rain,weather_code,temperature_2m,apparent_temperature,wind_speed_10m,relative_humidity_2m"
)

// Codes that imply rain: drizzle, freezing drizzle, rain, freezing rain,
// rain showers, and thunderstorms.
var rainyCodes = map[int]struct{}{
	51: {}, 53: {}, 55: {},
	56: {}, 57: {},
	61: {}, 63: {}, 65: {},
	66: {}, 67: {},
	80: {}, 81: {}, 82: {},
	95: {}, 96: {}, 99: {},
}

// Details carries the raw current-weather readings behind an assessment.
// Each field is independently absent when the upstream omitted it.
type Details struct {
	Precipitation       *float64 `json:"precipitation,omitempty"`
	Rain                *float64 `json:"rain,omitempty"`
	WeatherCode         *int     `json:"weather_code,omitempty"`
	Temperature         *float64 `json:"temperature,omitempty"`
	ApparentTemperature *float64 `json:"apparent_temperature,omitempty"`
	WindSpeed           *float64 `json:"wind_speed,omitempty"`
	Humidity            *float64 `json:"humidity,omitempty"`
}

// Assessment is the oracle's verdict for one grid key.
type Assessment struct {
	IsRaining bool    `json:"is_raining"`
	Details   Details `json:"details"`
}

// Client answers "is it raining at (lat,lon)?" against Open-Meteo, with a
// TTL cache in front. Assess never fails: any upstream problem is recorded
// as a negative, cacheable answer so callers never stall on a bad point.
type Client struct {
	baseURL string
	client  *http.Client
	cache   *Cache
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a client with the default endpoint and a 10 minute
// cache TTL. httpClient may be nil.
func NewClient(httpClient *http.Client) *Client {
	return NewClientWithCache(httpClient, NewCache(defaultTTL, time.Now))
}

// NewClientWithCache creates a client around an explicit cache, letting the
// caller pick the TTL and clock.
func NewClientWithCache(httpClient *http.Client, cache *Cache) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: defaultBaseURL,
		client:  httpClient,
		cache:   cache,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "open-meteo",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// Cache exposes the client's assessment cache.
func (c *Client) Cache() *Cache {
	return c.cache
}

// Assess reports whether it is raining at the given point. Results are
// memoized per grid key until the cache TTL expires.
func (c *Client) Assess(ctx context.Context, lat, lon float64) Assessment {
	key := KeyFor(lat, lon)
	if cached, ok := c.cache.Get(key); ok {
		metrics.WeatherCacheHitsTotal.Inc()
		return cached
	}
	metrics.WeatherCacheMissesTotal.Inc()

	assessment := c.fetchCurrent(ctx, lat, lon)
	c.cache.Put(key, assessment)
	return assessment
}

type currentPayload struct {
	Current struct {
		Precipitation       *float64 `json:"precipitation"`
		Rain                *float64 `json:"rain"`
		WeatherCode         *int     `json:"weather_code"`
		Temperature         *float64 `json:"temperature_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		WindSpeed           *float64 `json:"wind_speed_10m"`
		Humidity            *float64 `json:"relative_humidity_2m"`
	} `json:"current"`
}

func (c *Client) fetchCurrent(ctx context.Context, lat, lon float64) Assessment {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", currentFields)
	query.Set("timezone", "UTC")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var payload currentPayload
		if err := c.getJSON(ctx, query, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		metrics.WeatherRequestsTotal.WithLabelValues("error").Inc()
		return Assessment{}
	}
	metrics.WeatherRequestsTotal.WithLabelValues("ok").Inc()

	current := result.(currentPayload).Current
	return classify(Details{
		Precipitation:       current.Precipitation,
		Rain:                current.Rain,
		WeatherCode:         current.WeatherCode,
		Temperature:         current.Temperature,
		ApparentTemperature: current.ApparentTemperature,
		WindSpeed:           current.WindSpeed,
		Humidity:            current.Humidity,
	})
}

func classify(details Details) Assessment {
	amount := 0.0
	switch {
	case details.Rain != nil:
		amount = *details.Rain
	case details.Precipitation != nil:
		amount = *details.Precipitation
	}

	rainingByCode := false
	if details.WeatherCode != nil {
		_, rainingByCode = rainyCodes[*details.WeatherCode]
	}

	return Assessment{
		IsRaining: amount > 0 || rainingByCode,
		Details:   details,
	}
}

func (c *Client) getJSON(ctx context.Context, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.code)
}
