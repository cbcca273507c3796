// Package diffrect implements a dirty-rectangle detector, grounded on the
// teacher's internal/remote/desktop frameDiffer (itself a whole-frame
// CRC32 "did anything change" check). This version is a stronger
// per-pixel, thresholded, bounding-box variant, written as a single
// stateless Detect function: the caller keeps the previous image.
package diffrect

import "github.com/tftframe/framing-server/internal/imaging"

// Rect is a dirty rectangle: (x, y, w, h) with w, h > 0, fully inside the
// image it was detected against.
type Rect struct {
	X, Y, W, H int
}

// Detect compares prev against curr using threshold T and returns at most
// one bounding rectangle covering every pixel whose L1 channel difference
// exceeds T. ok is false when there is no difference.
//
// If prev is empty or differs in size from curr, the whole image is
// reported dirty — this is also how a brand-new session's first frame
// forces a full-frame send.
func Detect(prev, curr imaging.Image, threshold int) (Rect, bool) {
	if prev.Empty() || !prev.SameSize(curr) {
		return Rect{X: 0, Y: 0, W: curr.Width, H: curr.Height}, true
	}

	minX, minY := curr.Width, curr.Height
	maxX, maxY := -1, -1

	for y := 0; y < curr.Height; y++ {
		rowOff := y * curr.Width * 3
		for x := 0; x < curr.Width; x++ {
			i := rowOff + x*3
			// Promote to int16 before subtracting: unsigned underflow on
			// the raw bytes would wreck the sum-of-abs.
			dr := int16(curr.Pix[i]) - int16(prev.Pix[i])
			dg := int16(curr.Pix[i+1]) - int16(prev.Pix[i+1])
			db := int16(curr.Pix[i+2]) - int16(prev.Pix[i+2])
			d := abs16(dr) + abs16(dg) + abs16(db)
			if int(d) > threshold {
				if x < minX {
					minX = x
				}
				if x > maxX {
					maxX = x
				}
				if y < minY {
					minY = y
				}
				if y > maxY {
					maxY = y
				}
			}
		}
	}

	if maxX < 0 {
		return Rect{}, false
	}

	return Rect{X: minX, Y: minY, W: maxX - minX + 1, H: maxY - minY + 1}, true
}

func abs16(v int16) int16 {
	if v < 0 {
		return -v
	}
	return v
}
