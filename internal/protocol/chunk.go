package protocol

import "github.com/tftframe/framing-server/internal/diffrect"

// ErrRectUnsendable is returned by SplitIntoBands when a single row of the
// rect alone already exceeds maxChunkPayload. This is a configuration
// problem, not a runtime fault: the rect must be skipped, not retried.
type ErrRectUnsendable struct {
	Rect             diffrect.Rect
	MaxChunkPayload  int
}

func (e *ErrRectUnsendable) Error() string {
	return "protocol: dirty rect width alone exceeds max_chunk_payload_bytes; rect is un-sendable at this width"
}

// SplitIntoBands splits a dirty rect into top-to-bottom horizontal bands
// that each fit within maxChunkPayload bytes of RGB565 data. A rect that
// already fits in one chunk is returned as a single-element slice.
func SplitIntoBands(rect diffrect.Rect, maxChunkPayload int) ([]diffrect.Rect, error) {
	fullSize := rect.W * rect.H * 2
	if fullSize <= maxChunkPayload {
		return []diffrect.Rect{rect}, nil
	}

	rowBytes := rect.W * 2
	if rowBytes > maxChunkPayload {
		return nil, &ErrRectUnsendable{Rect: rect, MaxChunkPayload: maxChunkPayload}
	}

	bandHeight := maxChunkPayload / rowBytes
	if bandHeight < 1 {
		bandHeight = 1
	}

	var bands []diffrect.Rect
	for y := rect.Y; y < rect.Y+rect.H; y += bandHeight {
		h := bandHeight
		if y+h > rect.Y+rect.H {
			h = rect.Y + rect.H - y
		}
		bands = append(bands, diffrect.Rect{X: rect.X, Y: y, W: rect.W, H: h})
	}
	return bands, nil
}
