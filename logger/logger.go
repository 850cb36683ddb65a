// Package logger provides structured logging with styled output
package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var useUI bool

// SetUIMode enables UI mode (logs go to TUI instead of stdout)
func SetUIMode(enabled bool) {
	useUI = enabled
}

var (
	horizontalLine = "─"
	verticalLine   = "│"
	topLeft        = "┌"
	topRight       = "┐"
	bottomLeft     = "└"
	bottomRight    = "┘"

	// Charm color palette
	charmPink   = lipgloss.Color("#FF69B4")
	charmCyan   = lipgloss.Color("#42D9C8")
	charmGreen  = lipgloss.Color("#73F59F")
	charmYellow = lipgloss.Color("#FFE66D")
	charmRed    = lipgloss.Color("#FF6B9D")
	charmPurple = lipgloss.Color("#B794F6")
	charmGray   = lipgloss.Color("#626262")
	charmWhite  = lipgloss.Color("#ECEFF4")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(charmPink).
			MarginTop(1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(charmCyan)

	infoStyle = lipgloss.NewStyle().
			Foreground(charmWhite)

	warnStyle = lipgloss.NewStyle().
			Foreground(charmYellow)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(charmRed)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(charmGreen)

	mutedStyle = lipgloss.NewStyle().
			Foreground(charmGray)

	keyStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(charmPurple)

	valueStyle = lipgloss.NewStyle().
			Foreground(charmCyan)

	borderStyle = lipgloss.NewStyle().
			Foreground(charmPink)

	// Structured logger for HTTP requests
	httpLogger *log.Logger
)

func init() {
	httpLogger = log.NewWithOptions(os.Stdout, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05",
		Prefix:          "🌧 ",
	})
	httpLogger.SetLevel(log.InfoLevel)
	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		Foreground(charmGray)
	styles.Keys["method"] = lipgloss.NewStyle().
		Foreground(charmCyan).
		Bold(true)
	styles.Values["method"] = lipgloss.NewStyle().
		Foreground(charmCyan)
	httpLogger.SetStyles(styles)
}

// PrintBanner displays the startup banner
func PrintBanner(version, buildTime string) {
	width := 62

	topBorder := borderStyle.Render(
		topLeft + strings.Repeat(horizontalLine, width-2) + topRight,
	)
	fmt.Println(topBorder)

	title := "🌧  RAINCAM.LIVE Rain Webcam Finder"
	titleRendered := titleStyle.Render(title)
	titleWidth := lipgloss.Width(title)
	leftPad := (width - titleWidth - 2) / 2
	rightPad := width - titleWidth - leftPad - 2

	fmt.Print(borderStyle.Render(verticalLine))
	fmt.Print(strings.Repeat(" ", leftPad))
	fmt.Print(titleRendered)
	fmt.Print(strings.Repeat(" ", rightPad))
	fmt.Println(borderStyle.Render(verticalLine))

	printInfoLine("version", version, width)
	printInfoLine("built", buildTime, width)

	bottomBorder := borderStyle.Render(
		bottomLeft + strings.Repeat(horizontalLine, width-2) + bottomRight,
	)
	fmt.Println(bottomBorder)
}

func printInfoLine(key, value string, width int) {
	line := fmt.Sprintf("%s %s", keyStyle.Render(key+":"), valueStyle.Render(value))
	lineWidth := lipgloss.Width(line)
	rightPad := width - lineWidth - 4
	if rightPad < 0 {
		rightPad = 0
	}

	fmt.Print(borderStyle.Render(verticalLine))
	fmt.Print("  " + line + strings.Repeat(" ", rightPad))
	fmt.Println(borderStyle.Render(verticalLine))
}

// Section prints a section divider with a title
func Section(title string) {
	fmt.Println()
	divider := mutedStyle.Render("━━━━")
	header := headerStyle.Render("▸ " + title)
	fmt.Printf("%s %s\n", divider, header)
}

// Log is the interface for sending logs (will be set by main if using UI)
var Log func(string)

func logOrPrint(msg string) {
	if Log != nil && useUI {
		Log(msg)
	} else {
		fmt.Println(msg)
	}
}

// Info prints an info message
func Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logOrPrint(infoStyle.Render("  " + msg))
}

// Success prints a success message
func Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logOrPrint(successStyle.Render("  ✓ " + msg))
}

// Warn prints a warning message
func Warn(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logOrPrint(warnStyle.Render("  ⚠ " + msg))
}

// Error logs an error message. If the first argument is an error, it will be sent to Sentry.
// Usage:
//
//	logger.Error("something went wrong")
//	logger.Error(err)  // logs error and sends to Sentry
//	logger.Error(err, "failed to load: %v", err)  // logs formatted message and sends to Sentry
func Error(args ...interface{}) {
	err, msg := splitErrorArgs(args)

	logOrPrint(errorStyle.Render("  ✗ " + msg))

	if err != nil && captureException != nil {
		captureException(err)
	}
}

// Fatal logs an error message and exits the program. If an error is
// provided, it will be sent to Sentry before exiting.
func Fatal(args ...interface{}) {
	err, msg := splitErrorArgs(args)

	logOrPrint(errorStyle.Render("  ✗ " + msg))

	if err != nil && captureException != nil {
		captureException(err)
	}

	os.Exit(1)
}

// splitErrorArgs interprets the loose (error?, format?, args...) calling
// convention shared by Error and Fatal.
func splitErrorArgs(args []interface{}) (error, string) {
	var err error
	var msg string

	if len(args) > 0 {
		if e, ok := args[0].(error); ok {
			err = e
			if len(args) > 1 {
				if format, ok := args[1].(string); ok {
					msg = fmt.Sprintf(format, args[2:]...)
				} else {
					msg = fmt.Sprintf("%v", err)
				}
			} else {
				msg = fmt.Sprintf("%v", err)
			}
		} else {
			format, ok := args[0].(string)
			if ok && len(args) > 1 {
				msg = fmt.Sprintf(format, args[1:]...)
			} else {
				msg = fmt.Sprintf("%v", args[0])
			}
		}
	}
	return err, msg
}

// captureException is a function pointer that can be set to capture exceptions
// This allows us to avoid importing sentry-go in the logger package
var captureException func(error) interface{}

// SetSentryCaptureException sets the function to use for capturing exceptions to Sentry
func SetSentryCaptureException(fn func(error) interface{}) {
	captureException = fn
}

// Muted prints a muted/debug message
func Muted(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logOrPrint(mutedStyle.Render("  " + msg))
}

// LookupSummary summarizes one rain-webcam lookup
type LookupSummary struct {
	Duration time.Duration
	PoolSize int
	Checked  int
	Probes   int
	Outcome  string // pool_match, fallback_match, no_match
}

// Print displays a formatted summary of the lookup
func (l LookupSummary) Print() {
	duration := l.Duration.Round(time.Millisecond)

	var icon string
	var statusStyle lipgloss.Style
	switch l.Outcome {
	case "pool_match", "fallback_match":
		icon = "✓"
		statusStyle = successStyle
	default:
		icon = "∅"
		statusStyle = warnStyle
	}

	iconRendered := statusStyle.Render(icon)
	durationRendered := mutedStyle.Render(fmt.Sprintf("(%v)", duration))

	summary := fmt.Sprintf("  %s Lookup %s %s",
		iconRendered, l.Outcome, durationRendered)

	if l.PoolSize > 0 {
		poolRendered := valueStyle.Render(fmt.Sprintf("%d", l.PoolSize))
		summary += fmt.Sprintf(" • pool %s", poolRendered)
	}
	if l.Checked > 0 {
		checkedRendered := valueStyle.Render(fmt.Sprintf("%d", l.Checked))
		summary += fmt.Sprintf(" • checked %s", checkedRendered)
	}

	if l.Probes > 0 {
		probesRendered := warnStyle.Render(fmt.Sprintf("%d", l.Probes))
		summary += fmt.Sprintf(" • %s probes", probesRendered)
	}

	logOrPrint(summary)
}

// ServerInfo prints server startup information
type ServerInfo struct {
	Port       string
	CacheTTL   time.Duration
	Seeds      int
	KeyPresent bool
}

// Print displays formatted server configuration information
func (s ServerInfo) Print() {
	Section("Configuration")

	fmt.Printf("  %s %s %s\n",
		mutedStyle.Render("🔌"),
		keyStyle.Render("Port:"),
		valueStyle.Render(s.Port))
	fmt.Printf("  %s %s %s\n",
		mutedStyle.Render("⏱"),
		keyStyle.Render("Weather TTL:"),
		valueStyle.Render(s.CacheTTL.String()))
	fmt.Printf("  %s %s %s\n",
		mutedStyle.Render("🌍"),
		keyStyle.Render("Seeds:"),
		valueStyle.Render(fmt.Sprintf("%d", s.Seeds)))

	keyState := errorStyle.Render("missing")
	if s.KeyPresent {
		keyState = successStyle.Render("present")
	}
	fmt.Printf("  %s %s %s\n",
		mutedStyle.Render("🔑"),
		keyStyle.Render("Windy key:"),
		keyState)
}

// Shutdown prints shutdown message
func Shutdown() {
	fmt.Println()
	shutdownMsg := lipgloss.NewStyle().
		Foreground(charmYellow).
		Bold(true).
		Render("  ⏸  Shutting down gracefully...")
	fmt.Println(shutdownMsg)
}

// HTTPLogger returns the configured HTTP logger for middleware
func HTTPLogger() *log.Logger {
	return httpLogger
}
