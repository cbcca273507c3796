package imaging

import "testing"

func TestNewIsBlackAndRightSize(t *testing.T) {
	img := New(4, 3)
	if img.Width != 4 || img.Height != 3 {
		t.Fatalf("dimensions = %dx%d, want 4x3", img.Width, img.Height)
	}
	if len(img.Pix) != 4*3*3 {
		t.Fatalf("len(Pix) = %d, want %d", len(img.Pix), 4*3*3)
	}
	for _, b := range img.Pix {
		if b != 0 {
			t.Fatal("New should return a black image")
		}
	}
}

func TestEmpty(t *testing.T) {
	if !(Image{}).Empty() {
		t.Fatal("zero-value Image should be Empty")
	}
	if New(1, 1).Empty() {
		t.Fatal("1x1 image should not be Empty")
	}
}

func TestSetAndAt(t *testing.T) {
	img := New(2, 2)
	img.Set(1, 0, 10, 20, 30)
	r, g, b := img.At(1, 0)
	if r != 10 || g != 20 || b != 30 {
		t.Fatalf("At(1,0) = %d,%d,%d, want 10,20,30", r, g, b)
	}
	r, g, b = img.At(0, 0)
	if r != 0 || g != 0 || b != 0 {
		t.Fatal("untouched pixel should remain black")
	}
}

func TestCloneDoesNotAlias(t *testing.T) {
	img := New(2, 2)
	img.Set(0, 0, 1, 2, 3)
	clone := img.Clone()
	clone.Set(0, 0, 9, 9, 9)

	r, g, b := img.At(0, 0)
	if r != 1 || g != 2 || b != 3 {
		t.Fatal("mutating clone should not affect original")
	}
}

func TestSubImage(t *testing.T) {
	img := New(4, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, byte(x), byte(y), 0)
		}
	}

	sub, err := img.SubImage(1, 1, 2, 2)
	if err != nil {
		t.Fatalf("SubImage: %v", err)
	}
	if sub.Width != 2 || sub.Height != 2 {
		t.Fatalf("sub dims = %dx%d, want 2x2", sub.Width, sub.Height)
	}
	r, g, _ := sub.At(0, 0)
	if r != 1 || g != 1 {
		t.Fatalf("sub(0,0) = %d,%d, want 1,1 (== original (1,1))", r, g)
	}
	r, g, _ = sub.At(1, 1)
	if r != 2 || g != 2 {
		t.Fatalf("sub(1,1) = %d,%d, want 2,2 (== original (2,2))", r, g)
	}
}

func TestSubImageOutOfBounds(t *testing.T) {
	img := New(4, 4)
	if _, err := img.SubImage(3, 3, 2, 2); err == nil {
		t.Fatal("expected error for out-of-bounds sub-image")
	}
	if _, err := img.SubImage(0, 0, 0, 1); err == nil {
		t.Fatal("expected error for zero-width sub-image")
	}
}

func TestResizeSameSizeReturnsClone(t *testing.T) {
	img := New(3, 3)
	img.Set(1, 1, 5, 5, 5)
	out := Resize(img, 3, 3)
	if !out.SameSize(img) {
		t.Fatal("resize to same dims should preserve dims")
	}
	r, _, _ := out.At(1, 1)
	if r != 5 {
		t.Fatal("resize to same dims should preserve pixel data")
	}
}

func TestResizeChangesDimensions(t *testing.T) {
	img := New(8, 8)
	out := Resize(img, 4, 2)
	if out.Width != 4 || out.Height != 2 {
		t.Fatalf("resized dims = %dx%d, want 4x2", out.Width, out.Height)
	}
}
