package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/rainspotter/raincam-live/discover"
	"github.com/rainspotter/raincam-live/metrics"
	"github.com/rainspotter/raincam-live/store"
)

// RainPageData feeds the result template.
type RainPageData struct {
	Result    discover.Result
	ImagePath string
	LocalTime string
}

// RainRoute runs one lookup per request and renders the result. Every
// request reshuffles the pool, so responses are deliberately uncacheable.
func RainRoute(lookup Lookup, snapshots *store.Store, devMode bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		result := lookup.Find(c.Request().Context())

		data := RainPageData{Result: result}
		if result.Matched() {
			snapshots.Register(result.Webcam.ID, result.Webcam.ImageURL)
			data.ImagePath = "/image/" + result.Webcam.ID
			data.LocalTime = localTime(result)
		}

		metrics.PageViewsTotal.WithLabelValues("lookup").Inc()

		c.Response().Header().Set("Cache-Control", "no-store")

		if strings.HasSuffix(c.Request().URL.Path, ".json") {
			return c.JSON(http.StatusOK, result)
		}
		return c.Render(http.StatusOK, "rain.html.tmpl", data)
	}
}

// localTime formats the wall-clock time at the webcam, when the timezone
// offset resolved.
func localTime(result discover.Result) string {
	if result.TimezoneOffsetSeconds == nil {
		return ""
	}
	offset := time.Duration(*result.TimezoneOffsetSeconds) * time.Second
	return time.Now().UTC().Add(offset).Format("15:04")
}
