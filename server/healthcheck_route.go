package server

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"

	"github.com/rainspotter/raincam-live/discover"
)

// HealthCheckRoute verifies the service can serve a lookup result without
// touching either upstream: the engine is wired and the result template
// renders a canned no-match payload.
func HealthCheckRoute(lookup Lookup) echo.HandlerFunc {
	return func(c echo.Context) error {
		if lookup == nil {
			return c.String(http.StatusServiceUnavailable, "Lookup engine not configured")
		}

		// Smoke test the rendering pipeline with an empty result. This
		// catches template parse and data-shape problems.
		canned := RainPageData{
			Result: discover.Result{WeatherDescription: "Unknown"},
		}
		var buf bytes.Buffer
		if err := c.Echo().Renderer.Render(&buf, "rain.html.tmpl", canned, c); err != nil {
			return c.String(http.StatusServiceUnavailable,
				fmt.Sprintf("Healthcheck failed - template error: %v", err))
		}
		if !bytes.Contains(buf.Bytes(), []byte("<!DOCTYPE")) {
			return c.String(http.StatusServiceUnavailable,
				"Healthcheck failed - response is not valid HTML (missing DOCTYPE)")
		}

		// Verify the version route answers
		if err := testRoute(c.Echo(), "/version"); err != nil {
			return c.String(http.StatusServiceUnavailable,
				fmt.Sprintf("Healthcheck failed - version route error: %v", err))
		}

		return c.String(http.StatusOK, "OK")
	}
}

// testRoute performs an internal HTTP request to verify a route responds
func testRoute(e *echo.Echo, path string) error {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		return fmt.Errorf("returned status %d instead of 200", rec.Code)
	}
	return nil
}
