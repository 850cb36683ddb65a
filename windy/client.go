// Package windy is a client for the Windy Webcams v3 directory API.
package windy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/rainspotter/raincam-live/metrics"
)

const (
	defaultBaseURL = "https://api.windy.com/webcams/api/v3"
	apiKeyHeader   = "x-windy-api-key"
)

// Client provides access to the webcam directory listing endpoint.
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient creates a new directory client.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "windy-webcams",
			MaxRequests: 5,
			Interval:    1 * time.Minute,
			Timeout:     2 * time.Minute,
		}),
	}
}

// IsConfigured returns true if the client has an API key
func (c *Client) IsConfigured() bool {
	return c.apiKey != ""
}

// Nearby lists webcams around a center point within the given radius.
func (c *Client) Nearby(ctx context.Context, lat, lon, radiusKm float64, limit int) ([]Webcam, error) {
	query := url.Values{}
	query.Set("nearby", fmt.Sprintf("%s,%s,%s",
		strconv.FormatFloat(lat, 'f', -1, 64),
		strconv.FormatFloat(lon, 'f', -1, 64),
		strconv.FormatFloat(radiusKm, 'f', -1, 64)))
	query.Set("limit", strconv.Itoa(limit))
	query.Set("include", "location,images")

	webcams, _, err := c.list(ctx, "nearby", query)
	return webcams, err
}

// Popular lists webcams ordered by popularity, up to limit.
func (c *Client) Popular(ctx context.Context, limit int) ([]Webcam, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("include", "location,images")
	query.Set("orderby", "popularity:desc")

	webcams, _, err := c.list(ctx, "popular", query)
	return webcams, err
}

// Page lists one offset/limit page of the directory.
func (c *Client) Page(ctx context.Context, offset, limit int) ([]Webcam, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	query.Set("include", "location,images")

	webcams, _, err := c.list(ctx, "page", query)
	return webcams, err
}

// Total probes the directory size with a limit=1 request.
func (c *Client) Total(ctx context.Context) (int, error) {
	query := url.Values{}
	query.Set("limit", "1")

	_, total, err := c.list(ctx, "total", query)
	return total, err
}

// list performs one request against the listing endpoint and returns the
// valid webcams plus the reported directory total. Records that fail
// validation are dropped here, never surfaced to callers.
func (c *Client) list(ctx context.Context, endpoint string, query url.Values) ([]Webcam, int, error) {
	if !c.IsConfigured() {
		return nil, 0, fmt.Errorf("WINDY_WEBCAMS_API_KEY not set")
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.fetch(ctx, query)
	})
	if err != nil {
		metrics.DirectoryRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		return nil, 0, err
	}
	metrics.DirectoryRequestsTotal.WithLabelValues(endpoint, "ok").Inc()

	payload := result.(listResponse)
	raws := payload.webcams()
	webcams := make([]Webcam, 0, len(raws))
	for _, raw := range raws {
		if w, ok := raw.toWebcam(); ok {
			webcams = append(webcams, w)
		}
	}
	return webcams, payload.total(), nil
}

func (c *Client) fetch(ctx context.Context, query url.Values) (listResponse, error) {
	var payload listResponse

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/webcams?"+query.Encode(), nil)
	if err != nil {
		return payload, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return payload, fmt.Errorf("failed to fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return payload, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return payload, fmt.Errorf("failed to decode JSON: %w", err)
	}
	return payload, nil
}
