package sources

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/common/model"

	"github.com/tftframe/framing-server/internal/imaging"
	"github.com/tftframe/framing-server/internal/imagesource"
)

func TestMockRenderFillsCanvasAtResolution(t *testing.T) {
	m := NewMock(64, 32)
	w, h := m.Resolution()
	if w != 64 || h != 32 {
		t.Fatalf("Resolution = %d,%d, want 64,32", w, h)
	}

	var canvas imaging.Image
	if err := m.Render(&canvas); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if canvas.Width != 64 || canvas.Height != 32 {
		t.Fatalf("canvas = %dx%d, want 64x32", canvas.Width, canvas.Height)
	}
	m.Shutdown()
}

func TestMockRenderIsDeterministic(t *testing.T) {
	m := NewMock(40, 20)
	var first, second imaging.Image
	if err := m.Render(&first); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := m.Render(&second); err != nil {
		t.Fatalf("Render: %v", err)
	}
	for i := range first.Pix {
		if first.Pix[i] != second.Pix[i] {
			t.Fatalf("Mock frames differ at byte %d: %d vs %d", i, first.Pix[i], second.Pix[i])
		}
	}
}

func TestScreenRegionRenderIsFatal(t *testing.T) {
	s := NewScreenRegion(0, 0, 10, 10)
	var canvas imaging.Image
	err := s.Render(&canvas)
	if !errors.Is(err, imagesource.ErrSourceFatal) {
		t.Fatalf("error = %v, want wrapped imagesource.ErrSourceFatal", err)
	}
	if !errors.Is(err, ErrNotSupported) {
		t.Fatalf("error = %v, want wrapped ErrNotSupported", err)
	}
	s.Shutdown()
}

func TestWindowTitleFallsBackToScreenRegionAndFails(t *testing.T) {
	w := NewWindowTitle("Notepad", 10, 10)
	ww, hh := w.Resolution()
	if ww != 10 || hh != 10 {
		t.Fatalf("Resolution = %d,%d, want 10,10", ww, hh)
	}
	var canvas imaging.Image
	err := w.Render(&canvas)
	if !errors.Is(err, imagesource.ErrSourceFatal) {
		t.Fatalf("error = %v, want wrapped imagesource.ErrSourceFatal", err)
	}
	w.Shutdown()
}

func TestCPUMonitorResolutionAndShutdownIsIdempotent(t *testing.T) {
	c := NewCPUMonitor(50, 30, 5, 10*time.Millisecond)
	w, h := c.Resolution()
	if w != 50 || h != 30 {
		t.Fatalf("Resolution = %d,%d, want 50,30", w, h)
	}
	c.Shutdown()
	c.Shutdown() // must not panic on double Shutdown
}

func TestCPUMonitorRenderProducesRightSizedCanvasEvenWithNoSamples(t *testing.T) {
	c := NewCPUMonitor(50, 30, 5, time.Hour) // interval long enough that no sample lands
	defer c.Shutdown()

	var canvas imaging.Image
	if err := c.Render(&canvas); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if canvas.Width != 50 || canvas.Height != 30 {
		t.Fatalf("canvas = %dx%d, want 50x30", canvas.Width, canvas.Height)
	}
}

func TestExtractScalarFromVector(t *testing.T) {
	vec := model.Vector{&model.Sample{Value: 42.5}}
	v, ok := extractScalar(vec)
	if !ok || v != 42.5 {
		t.Fatalf("extractScalar(vector) = %v,%v, want 42.5,true", v, ok)
	}
}

func TestExtractScalarFromEmptyVector(t *testing.T) {
	vec := model.Vector{}
	_, ok := extractScalar(vec)
	if ok {
		t.Fatal("extractScalar(empty vector) should report ok=false")
	}
}

func TestExtractScalarFromScalar(t *testing.T) {
	s := &model.Scalar{Value: 7}
	v, ok := extractScalar(s)
	if !ok || v != 7 {
		t.Fatalf("extractScalar(scalar) = %v,%v, want 7,true", v, ok)
	}
}

func TestExtractScalarFromUnsupportedType(t *testing.T) {
	_, ok := extractScalar(model.Matrix{})
	if ok {
		t.Fatal("extractScalar(matrix) should report ok=false")
	}
}

func TestNewPrometheusDashboardSatisfiesShutdown(t *testing.T) {
	p, err := NewPrometheusDashboard("http://127.0.0.1:9090", "up", 20, 20)
	if err != nil {
		t.Fatalf("NewPrometheusDashboard: %v", err)
	}
	p.Shutdown()
}
