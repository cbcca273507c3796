package sources

import (
	"errors"
	"fmt"

	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/imagesource"
)

// ErrNotSupported mirrors capture_other.go's sentinel: real screen
// capture requires a platform-specific backend (cgo + X11/DXGI) that is
// out of scope here.
var ErrNotSupported = errors.New("sources: screen capture not supported without a platform capture backend")

// ScreenRegion would capture a fixed region of the desktop. No stdlib-only
// capture backend exists on any platform, so every Render call fails
// fatally, exactly mirroring capture_other.go's unconditional ErrNotSupported
// on platforms without a registered capturer.
type ScreenRegion struct {
	width, height int
	x, y          int
}

// NewScreenRegion records the requested region; the source never produces
// a frame since no capture backend is wired in.
func NewScreenRegion(x, y, width, height int) *ScreenRegion {
	return &ScreenRegion{x: x, y: y, width: width, height: height}
}

func (s *ScreenRegion) Resolution() (int, int) { return s.width, s.height }

func (s *ScreenRegion) Render(canvas *imaging.Image) error {
	return fmt.Errorf("%w: %w", imagesource.ErrSourceFatal, ErrNotSupported)
}

func (s *ScreenRegion) Shutdown() {}

// WindowTitle records a window-title substring but does not search for
// windows: every Render delegates to a whole-screen ScreenRegion and so
// fails with the same fatal ErrNotSupported error, since per-window capture
// requires the same platform backend ScreenRegion lacks.
type WindowTitle struct {
	width, height int
	titleMatch    string
	fallback      *ScreenRegion
}

func NewWindowTitle(titleMatch string, width, height int) *WindowTitle {
	return &WindowTitle{
		width:      width,
		height:     height,
		titleMatch: titleMatch,
		fallback:   NewScreenRegion(0, 0, width, height),
	}
}

func (w *WindowTitle) Resolution() (int, int) { return w.width, w.height }

func (w *WindowTitle) Render(canvas *imaging.Image) error {
	return w.fallback.Render(canvas)
}

func (w *WindowTitle) Shutdown() {}
