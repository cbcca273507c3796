package diffrect

import (
	"testing"

	"github.com/tftframe/framing-server/internal/imaging"
)

func TestDetectEmptyPrevYieldsFullFrame(t *testing.T) {
	curr := imaging.New(10, 6)
	rect, ok := Detect(imaging.Image{}, curr, 5)
	if !ok {
		t.Fatal("expected ok=true for empty prev")
	}
	if rect != (Rect{X: 0, Y: 0, W: 10, H: 6}) {
		t.Fatalf("rect = %+v, want (0,0,10,6)", rect)
	}
}

func TestDetectSizeMismatchYieldsFullFrame(t *testing.T) {
	prev := imaging.New(4, 4)
	curr := imaging.New(8, 8)
	rect, ok := Detect(prev, curr, 5)
	if !ok {
		t.Fatal("expected ok=true for size mismatch")
	}
	if rect != (Rect{X: 0, Y: 0, W: 8, H: 8}) {
		t.Fatalf("rect = %+v, want (0,0,8,8)", rect)
	}
}

func TestDetectIdenticalYieldsNoChange(t *testing.T) {
	img := imaging.New(5, 5)
	img.Set(2, 2, 10, 20, 30)
	prev := img.Clone()
	_, ok := Detect(prev, img, 5)
	if ok {
		t.Fatal("identical images should yield no dirty rect")
	}
}

func TestDetectSinglePixelChange(t *testing.T) {
	prev := imaging.New(5, 5)
	curr := prev.Clone()
	curr.Set(3, 2, 255, 255, 255)

	rect, ok := Detect(prev, curr, 5)
	if !ok {
		t.Fatal("expected a dirty rect")
	}
	if rect != (Rect{X: 3, Y: 2, W: 1, H: 1}) {
		t.Fatalf("rect = %+v, want (3,2,1,1)", rect)
	}
}

func TestDetectBoundingBoxOfDisjointChanges(t *testing.T) {
	prev := imaging.New(10, 10)
	curr := prev.Clone()
	curr.Set(1, 1, 255, 255, 255)
	curr.Set(8, 8, 255, 255, 255)

	rect, ok := Detect(prev, curr, 5)
	if !ok {
		t.Fatal("expected a dirty rect")
	}
	if rect != (Rect{X: 1, Y: 1, W: 8, H: 8}) {
		t.Fatalf("rect = %+v, want bounding box (1,1,8,8)", rect)
	}
}

func TestDetectBelowThresholdIsNotDirty(t *testing.T) {
	prev := imaging.New(3, 3)
	curr := prev.Clone()
	curr.Set(1, 1, 2, 0, 0) // L1 diff = 2

	_, ok := Detect(prev, curr, 5)
	if ok {
		t.Fatal("a diff below threshold should not register as dirty")
	}
}

func TestDetectExactlyAtThresholdIsNotDirty(t *testing.T) {
	prev := imaging.New(3, 3)
	curr := prev.Clone()
	curr.Set(1, 1, 5, 0, 0) // L1 diff = 5, threshold comparison is strictly >

	_, ok := Detect(prev, curr, 5)
	if ok {
		t.Fatal("diff exactly at threshold should not register as dirty (strict >)")
	}
}
