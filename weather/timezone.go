package weather

import (
	"context"
	"net/url"
	"strconv"
)

// TimezoneInfo identifies the local timezone at a point.
type TimezoneInfo struct {
	ID            string `json:"timezone_id"`
	OffsetSeconds int    `json:"offset_seconds"`
}

type timezonePayload struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
}

// Timezone resolves the timezone identifier and UTC offset for a point.
// Unlike Assess this returns an error; callers treat failures as "timezone
// unknown" and carry on.
func (c *Client) Timezone(ctx context.Context, lat, lon float64) (*TimezoneInfo, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	query.Set("current", "temperature_2m")
	query.Set("timezone", "auto")

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var payload timezonePayload
		if err := c.getJSON(ctx, query, &payload); err != nil {
			return nil, err
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	payload := result.(timezonePayload)
	return &TimezoneInfo{
		ID:            payload.Timezone,
		OffsetSeconds: payload.UTCOffsetSeconds,
	}, nil
}
