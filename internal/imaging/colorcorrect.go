package imaging

import "math"

// WhiteBalance is the per-channel multiplier triple applied after gamma,
// mirroring config.WhiteBalance without imaging depending on the config
// package.
type WhiteBalance struct {
	R, G, B float64
}

// gammaLUT memoizes the 256-entry gamma curve for a given exponent. A
// pipeline's gamma and wb_scale values are fixed for its lifetime, so
// recomputing math.Pow per pixel is wasted CPU on wide pixel arrays.
type gammaLUT [256]float64

func buildGammaLUT(gamma float64) gammaLUT {
	var lut gammaLUT
	for i := 0; i < 256; i++ {
		lut[i] = math.Pow(float64(i)/255.0, gamma)
	}
	return lut
}

// ColorCorrect applies gamma correction followed by per-channel white
// balance scaling:
//
//	c' = (c/255)^gamma * scale, clipped to [0,1], rescaled to [0,255], rounded.
//
// Returns a new Image; src is not mutated.
func ColorCorrect(src Image, gamma float64, wb WhiteBalance) Image {
	lut := buildGammaLUT(gamma)
	out := New(src.Width, src.Height)
	for i := 0; i+2 < len(src.Pix); i += 3 {
		out.Pix[i] = correctChannel(lut, src.Pix[i], wb.R)
		out.Pix[i+1] = correctChannel(lut, src.Pix[i+1], wb.G)
		out.Pix[i+2] = correctChannel(lut, src.Pix[i+2], wb.B)
	}
	return out
}

func correctChannel(lut gammaLUT, c byte, scale float64) byte {
	v := lut[c] * scale
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	return byte(math.Round(v * 255.0))
}

// ColorCorrectInto applies ColorCorrect directly into dst's backing array at
// row offset dstRowOffset (rows, not bytes) — used to let independent
// horizontal bands of the same dirty rect be corrected by separate
// workerpool goroutines without aliasing each other's writes.
func ColorCorrectInto(dst Image, dstRowOffset int, src Image, gamma float64, wb WhiteBalance) {
	lut := buildGammaLUT(gamma)
	for row := 0; row < src.Height; row++ {
		srcOff := row * src.Width * 3
		dstOff := (dstRowOffset + row) * dst.Width * 3
		for x := 0; x < src.Width; x++ {
			si := srcOff + x*3
			di := dstOff + x*3
			dst.Pix[di] = correctChannel(lut, src.Pix[si], wb.R)
			dst.Pix[di+1] = correctChannel(lut, src.Pix[si+1], wb.G)
			dst.Pix[di+2] = correctChannel(lut, src.Pix[si+2], wb.B)
		}
	}
}
