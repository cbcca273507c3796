// Package framequeue implements a bounded single-producer
// single-consumer frame queue: a non-blocking put with a short timeout
// (drop on full) and a blocking get with a short timeout (so the
// Consumer can poll its stop signal). Grounded on the channel +
// done-channel idiom used throughout internal/remote/desktop
// (Session.done, ws_stream.go's captureLoop select) rather than any queue
// library.
package framequeue

import (
	"sync/atomic"
	"time"

	"github.com/tftframe/framing-server/internal/imaging"
)

// DefaultTimeout is the short timeout used on both Put and Get (≲100 ms).
const DefaultTimeout = 100 * time.Millisecond

// Queue is a bounded FIFO of imaging.Image, shared by exactly one Producer
// and one Consumer per session.
type Queue struct {
	ch    chan imaging.Image
	depth atomic.Int64
}

// New creates a Queue with the given capacity (Q_MAX).
func New(capacity int) *Queue {
	if capacity < 1 {
		capacity = 1
	}
	return &Queue{ch: make(chan imaging.Image, capacity)}
}

// Put attempts to enqueue img, waiting up to DefaultTimeout. Returns false
// if the queue stayed full for the whole timeout — the caller (Producer)
// drops the frame silently.
func (q *Queue) Put(img imaging.Image) bool {
	select {
	case q.ch <- img:
		q.depth.Add(1)
		return true
	case <-time.After(DefaultTimeout):
		return false
	}
}

// Get blocks for up to DefaultTimeout waiting for a frame, or until done is
// closed. ok is false on timeout or if done fired first — the caller
// (Consumer) should re-check its stop signal either way.
func (q *Queue) Get(done <-chan struct{}) (imaging.Image, bool) {
	select {
	case img := <-q.ch:
		q.depth.Add(-1)
		return img, true
	case <-done:
		return imaging.Image{}, false
	case <-time.After(DefaultTimeout):
		return imaging.Image{}, false
	}
}

// Depth returns the current number of queued frames, for the Producer's
// low-water-mark policy and for the queue_size metric.
func (q *Queue) Depth() int {
	return int(q.depth.Load())
}

// Drain empties the queue without blocking, used during session teardown.
func (q *Queue) Drain() {
	for {
		select {
		case <-q.ch:
			q.depth.Add(-1)
		default:
			return
		}
	}
}
