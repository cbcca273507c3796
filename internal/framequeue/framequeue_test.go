package framequeue

import (
	"testing"
	"time"

	"github.com/tftframe/framing-server/internal/imaging"
)

func TestPutGetRoundTrip(t *testing.T) {
	q := New(2)
	img := imaging.New(2, 2)
	img.Set(0, 0, 1, 2, 3)

	if !q.Put(img) {
		t.Fatal("Put should succeed on an empty queue")
	}
	if got := q.Depth(); got != 1 {
		t.Fatalf("Depth = %d, want 1", got)
	}

	done := make(chan struct{})
	got, ok := q.Get(done)
	if !ok {
		t.Fatal("Get should succeed")
	}
	r, g, b := got.At(0, 0)
	if r != 1 || g != 2 || b != 3 {
		t.Fatalf("got pixel = %d,%d,%d, want 1,2,3", r, g, b)
	}
	if d := q.Depth(); d != 0 {
		t.Fatalf("Depth after Get = %d, want 0", d)
	}
}

func TestPutDropsOnFullQueue(t *testing.T) {
	q := New(1)
	img := imaging.New(1, 1)

	if !q.Put(img) {
		t.Fatal("first Put should succeed")
	}

	start := time.Now()
	ok := q.Put(img)
	elapsed := time.Since(start)

	if ok {
		t.Fatal("Put on full queue should eventually return false")
	}
	if elapsed < DefaultTimeout {
		t.Fatalf("Put returned before the timeout elapsed: %v", elapsed)
	}
}

func TestGetTimesOutOnEmptyQueue(t *testing.T) {
	q := New(1)
	done := make(chan struct{})
	_, ok := q.Get(done)
	if ok {
		t.Fatal("Get on empty queue should time out with ok=false")
	}
}

func TestGetUnblocksOnDone(t *testing.T) {
	q := New(1)
	done := make(chan struct{})
	close(done)

	start := time.Now()
	_, ok := q.Get(done)
	elapsed := time.Since(start)

	if ok {
		t.Fatal("Get should return ok=false when done fires")
	}
	if elapsed > DefaultTimeout {
		t.Fatalf("Get should return promptly when done is already closed, took %v", elapsed)
	}
}

func TestDrainEmptiesQueue(t *testing.T) {
	q := New(3)
	for i := 0; i < 3; i++ {
		q.Put(imaging.New(1, 1))
	}
	if got := q.Depth(); got != 3 {
		t.Fatalf("Depth before Drain = %d, want 3", got)
	}
	q.Drain()
	if got := q.Depth(); got != 0 {
		t.Fatalf("Depth after Drain = %d, want 0", got)
	}
}

func TestNewClampsCapacityToOne(t *testing.T) {
	q := New(0)
	if cap(q.ch) != 1 {
		t.Fatalf("capacity = %d, want clamped to 1", cap(q.ch))
	}
}
