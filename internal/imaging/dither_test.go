package imaging

import "testing"

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// TestRoundTripTolerance covers the round-trip property: encoding to
// RGB565 and decoding back by bit replication must land within a fixed
// per-channel tolerance (<=8 for R,B, <=4 for G).
func TestRoundTripTolerance(t *testing.T) {
	img := New(3, 3)
	colors := [][3]byte{
		{255, 0, 0}, {0, 255, 0}, {0, 0, 255},
		{128, 128, 128}, {17, 201, 90}, {255, 255, 255},
		{0, 0, 0}, {64, 32, 16}, {200, 150, 100},
	}
	i := 0
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			c := colors[i]
			img.Set(x, y, c[0], c[1], c[2])
			i++
		}
	}

	packed := DitherToRGB565(img)
	if len(packed) != 3*3*2 {
		t.Fatalf("packed length = %d, want %d", len(packed), 3*3*2)
	}

	i = 0
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			idx := (y*3 + x) * 2
			r, g, b := UnpackRGB565(packed[idx], packed[idx+1])
			orig := colors[i]
			if abs(int(r)-int(orig[0])) > 8 {
				t.Errorf("pixel %d: R %d vs %d exceeds tolerance", i, r, orig[0])
			}
			if abs(int(g)-int(orig[1])) > 4 {
				t.Errorf("pixel %d: G %d vs %d exceeds tolerance", i, g, orig[1])
			}
			if abs(int(b)-int(orig[2])) > 8 {
				t.Errorf("pixel %d: B %d vs %d exceeds tolerance", i, b, orig[2])
			}
			i++
		}
	}
}

// TestFirstFrameFullSendEncoding pins the exact bytes for a solid red 4x2
// image with no color correction.
func TestFirstFrameFullSendEncoding(t *testing.T) {
	img := New(4, 2)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, 255, 0, 0)
		}
	}

	packed := DitherToRGB565(img)
	if len(packed) != 16 {
		t.Fatalf("packed length = %d, want 16", len(packed))
	}
	for i := 0; i < len(packed); i += 2 {
		if packed[i] != 0xF8 || packed[i+1] != 0x00 {
			t.Fatalf("pixel %d = %02X %02X, want F8 00", i/2, packed[i], packed[i+1])
		}
	}
}

func TestPackRGB565BitLayout(t *testing.T) {
	v := packRGB565(0xFF, 0xFF, 0xFF)
	if v != 0xFFFF {
		t.Fatalf("packRGB565(white) = %04X, want FFFF", v)
	}
	v = packRGB565(0, 0, 0)
	if v != 0 {
		t.Fatalf("packRGB565(black) = %04X, want 0", v)
	}
}
