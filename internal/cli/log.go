// Package cli implements the imageoi command-line interface.
//
// This package provides commands for creating image reconstruction input
// files from OIFITS data, copying initial and prior images into them,
// editing and listing their parameters, and generating model images. The
// CLI is built using cobra and logs via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - create: Build an input file from an OIFITS file and a model image
//   - copyinit, copyprior: Replace the initial or prior image from a FITS file
//   - edit: Change input parameters in place
//   - show: List the parameters of an input or output file
//   - generate: Write a model image as a plain FITS image
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging and --quiet
// (-q) to log errors only. Loggers are passed through context.Context, and
// the observability hooks of the core packages are bound to the same
// logger.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/imageoi/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Wrote input.fits (12ms)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// =============================================================================
// Hooks
// =============================================================================

// logHooks reports file and canvas events at debug level.
type logHooks struct {
	logger *log.Logger
}

var (
	_ observability.FileHooks   = logHooks{}
	_ observability.CanvasHooks = logHooks{}
)

func (h logHooks) OnRead(path string, sections int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("read failed", "path", path, "err", err)
		return
	}
	h.logger.Debug("read", "path", path, "sections", sections, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnWrite(path string, sections, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("write failed", "path", path, "err", err)
		return
	}
	h.logger.Debug("wrote", "path", path, "sections", sections, "bytes", size, "took", d.Round(time.Microsecond))
}

func (h logHooks) OnComponent(canvas, kind string, flux float64, err error) {
	if err != nil {
		h.logger.Debug("component rejected", "image", canvas, "kind", kind, "err", err)
		return
	}
	h.logger.Debug("added component", "image", canvas, "kind", kind, "flux", flux)
}

func (h logHooks) OnNormalise(canvas string, sum float64, applied bool) {
	h.logger.Debug("normalise", "image", canvas, "sum", sum, "applied", applied)
}

// bindHooks routes the events of the core packages to l.
func bindHooks(l *log.Logger) {
	h := logHooks{logger: l}
	observability.SetFileHooks(h)
	observability.SetCanvasHooks(h)
}
