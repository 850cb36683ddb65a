package server

import (
	"context"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rainspotter/raincam-live/discover"
	"github.com/rainspotter/raincam-live/store"
)

// Lookup runs one rain-webcam discovery. Implemented by discover.Finder;
// stubbed in tests.
type Lookup interface {
	Find(ctx context.Context) discover.Result
}

// ServerConfig wires the server's collaborators.
type ServerConfig struct {
	Lookup        Lookup
	Snapshots     *store.Store
	TemplateFS    fs.FS
	StaticFS      fs.FS
	DevMode       bool
	SentryEnabled bool
}

// LogWriter, when set by main, receives access log lines so they can be
// routed into the terminal HUD instead of stdout.
var LogWriter func(string)

type logSink struct{}

func (logSink) Write(p []byte) (int, error) {
	if LogWriter != nil {
		LogWriter(strings.TrimRight(string(p), "\n"))
		return len(p), nil
	}
	return os.Stdout.Write(p)
}

// TemplateRenderer is the Echo renderer backed by the template filesystem.
type TemplateRenderer struct {
	templates *template.Template
}

var templateFuncs = template.FuncMap{}

func (t *TemplateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return t.templates.ExecuteTemplate(w, name, data)
}

// Start builds the Echo app. The caller owns listening and shutdown.
func Start(cfg ServerConfig) (*echo.Echo, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(MetricsMiddleware())
	e.Use(ErrorLoggingMiddleware())
	e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
		Output: logSink{},
	}))
	if cfg.SentryEnabled {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(cfg.TemplateFS, "*.tmpl")
	if err != nil {
		return nil, err
	}
	e.Renderer = &TemplateRenderer{templates: tmpl}

	// Error handler
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		if httpErr, ok := err.(*echo.HTTPError); ok {
			code = httpErr.Code
		}
		if c.Response().Committed {
			return
		}
		renderErr := c.Render(code, "error.tmpl", map[string]interface{}{
			"title": "Error",
			"err":   err,
		})
		if renderErr != nil {
			_ = c.String(code, http.StatusText(code))
		}
	}

	// Routes
	rain := RainRoute(cfg.Lookup, cfg.Snapshots, cfg.DevMode)
	e.GET("/", rain)
	e.GET("/lookup.json", rain)
	e.GET("/image/:id", ImageRoute(cfg.Snapshots, cfg.DevMode))
	e.GET("/healthcheck", HealthCheckRoute(cfg.Lookup))
	e.GET("/version", VersionRoute())
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// Static files
	e.StaticFS("/s", cfg.StaticFS)

	return e, nil
}
