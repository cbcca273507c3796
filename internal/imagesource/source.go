// Package imagesource defines the polymorphic frame-producing boundary:
// anything that can render into a canvas and report its native
// resolution. Mirrors the ScreenCapturer interface in
// agent/internal/remote/desktop/capture.go, which has the same shape
// (Capture returning an image, sentinel errors distinguishing retryable
// from fatal failures) one layer down in the same package family.
package imagesource

import (
	"errors"

	"github.com/tftframe/framing-server/internal/imaging"
)

// ErrSourceUnavailable means a single Render call failed but the source
// may succeed on a later call — the Producer should skip this tick and
// retry next tick.
var ErrSourceUnavailable = errors.New("imagesource: source temporarily unavailable")

// ErrSourceFatal means the source can never produce another frame. The
// Producer treats this as a fatal pipeline error and tears down the
// session.
var ErrSourceFatal = errors.New("imagesource: source permanently unavailable")

// Source is a polymorphic producer of frames.
type Source interface {
	// Resolution returns the source's native (width, height) in pixels.
	Resolution() (int, int)

	// Render draws the current frame into canvas, which is already sized
	// to Resolution(). Returns ErrSourceUnavailable or ErrSourceFatal
	// (use errors.Is) on failure.
	Render(canvas *imaging.Image) error

	// Shutdown releases any resources held by the source (background
	// goroutines, open handles, network clients). Safe to call once
	// per source; a Source with nothing to release may no-op.
	Shutdown()
}
