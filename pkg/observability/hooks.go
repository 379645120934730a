// Package observability provides hooks for logging and metrics.
//
// Core packages never log or print. They emit events through the hooks
// registered here, and the command layer binds those hooks to its logger.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetFileHooks(&myFileHooks{})
//	    observability.SetCanvasHooks(&myCanvasHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... write the file ...
//	observability.File().OnWrite(path, sections, size, time.Since(start), err)
package observability

import (
	"sync"
	"time"
)

// =============================================================================
// File Hooks
// =============================================================================

// FileHooks receives events from FITS file reads and writes.
type FileHooks interface {
	// OnRead records a file read with the number of sections decoded.
	OnRead(path string, sections int, duration time.Duration, err error)

	// OnWrite records a file write with the number of sections and bytes.
	OnWrite(path string, sections, size int, duration time.Duration, err error)
}

// =============================================================================
// Canvas Hooks
// =============================================================================

// CanvasHooks receives events from image canvas mutations.
type CanvasHooks interface {
	// OnComponent records a model component added to a canvas.
	OnComponent(canvas, kind string, flux float64, err error)

	// OnNormalise records a normalisation; applied is false for a no-op.
	OnNormalise(canvas string, sum float64, applied bool)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopFileHooks is a no-op implementation of FileHooks.
type NoopFileHooks struct{}

func (NoopFileHooks) OnRead(string, int, time.Duration, error)       {}
func (NoopFileHooks) OnWrite(string, int, int, time.Duration, error) {}

// NoopCanvasHooks is a no-op implementation of CanvasHooks.
type NoopCanvasHooks struct{}

func (NoopCanvasHooks) OnComponent(string, string, float64, error) {}
func (NoopCanvasHooks) OnNormalise(string, float64, bool)          {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	fileHooks   FileHooks   = NoopFileHooks{}
	canvasHooks CanvasHooks = NoopCanvasHooks{}
	hooksMu     sync.RWMutex
)

// SetFileHooks registers custom file hooks.
// This should be called once at application startup before any file operations.
func SetFileHooks(h FileHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		fileHooks = h
	}
}

// SetCanvasHooks registers custom canvas hooks.
func SetCanvasHooks(h CanvasHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		canvasHooks = h
	}
}

// File returns the registered file hooks.
func File() FileHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return fileHooks
}

// Canvas returns the registered canvas hooks.
func Canvas() CanvasHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return canvasHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	fileHooks = NoopFileHooks{}
	canvasHooks = NoopCanvasHooks{}
}
