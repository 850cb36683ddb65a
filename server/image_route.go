package server

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rainspotter/raincam-live/store"
)

// ImageRoute serves the latest snapshot for a webcam that appeared in a
// lookup result.
func ImageRoute(snapshots *store.Store, devMode bool) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("id")

		snap, exists := snapshots.Snapshot(c.Request().Context(), id)
		if !exists {
			return c.String(http.StatusNotFound, "image not found")
		}
		if snap.Status != http.StatusOK {
			return c.String(snap.Status, "image unavailable")
		}

		c.Response().Header().Set("Content-Type", snap.ContentType)
		c.Response().Header().Set("Content-Length", strconv.Itoa(len(snap.Bytes)))

		if _, notModified, err := SetCacheHeaders(c, CacheConfig{
			Components: []interface{}{snap},
			DevMode:    devMode,
		}); err == nil && notModified {
			return c.NoContent(http.StatusNotModified)
		}

		return c.Blob(http.StatusOK, snap.ContentType, snap.Bytes)
	}
}
