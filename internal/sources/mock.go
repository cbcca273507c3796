// Package sources provides concrete imagesource.Source implementations:
// synthesized test patterns and real system telemetry. Grounded on the
// original Python reference's source generators (bios_drawer.py,
// cpu_monitor_generator.py, prometheus_monitor_generator.py) for visual
// content, and on capture.go/capture_other.go for the retryable-vs-fatal
// error shape.
package sources

import (
	"image"
	"image/color"
	"image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	imgpkg "github.com/tftframe/framing-server/internal/imaging"
)

var (
	mockBackground = color.RGBA{0, 0, 170, 255}
	mockForeground = color.RGBA{255, 255, 255, 255}
	mockHighlight  = color.RGBA{85, 85, 85, 255}
	mockAccent     = color.RGBA{255, 255, 0, 255}
)

// Mock renders a static synthesized "BIOS setup" screen, the same
// constant image every frame. It exists so a pipeline can be exercised
// without a real display adapter or telemetry backend, standing in for
// capture backends that are out of scope here.
type Mock struct {
	width, height int
}

// NewMock creates a Mock source rendering at width x height.
func NewMock(width, height int) *Mock {
	return &Mock{width: width, height: height}
}

func (m *Mock) Resolution() (int, int) { return m.width, m.height }

func (m *Mock) Render(canvas *imgpkg.Image) error {
	rgba := image.NewRGBA(image.Rect(0, 0, m.width, m.height))
	draw.Draw(rgba, rgba.Bounds(), &image.Uniform{C: mockBackground}, image.Point{}, draw.Src)

	menuBarY := 18
	draw.Draw(rgba, image.Rect(0, menuBarY, m.width, menuBarY+16), &image.Uniform{C: mockHighlight}, image.Point{}, draw.Src)

	drawText(rgba, 8, 12, "BIOS SETUP", mockForeground)
	drawText(rgba, 8, menuBarY+12, "Main  Advanced  Boot  Exit", mockAccent)
	drawText(rgba, 8, menuBarY+36, "System Time", mockForeground)
	drawText(rgba, 8, menuBarY+52, "System Date", mockForeground)

	*canvas = imgpkg.FromRGBA(rgba)
	return nil
}

func (m *Mock) Shutdown() {}

// drawText renders s with the baseline at (x, y) using a fixed-width
// bitmap font — no TTF rendering dependency needed for this fixed-content
// screen.
func drawText(dst draw.Image, x, y int, s string, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
