package audio

import (
	"sync/atomic"

	"github.com/gopxl/beep"
)

// Tap is a pass-through streamer that snapshots the last WindowSize mono samples
// The audio callback goroutine writes, the simulation reads Latest; the handoff is a single atomic pointer
type Tap struct {
	streamer beep.Streamer

	// Producer-owned ring, touched only from Stream
	ring   Window
	pos    int
	filled int

	latest atomic.Pointer[Window]
}

// NewTap wraps s
func NewTap(s beep.Streamer) *Tap {
	return &Tap{streamer: s}
}

// Stream implements beep.Streamer
func (t *Tap) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = t.streamer.Stream(samples)
	if n == 0 {
		return n, ok
	}

	for i := 0; i < n; i++ {
		t.ring[t.pos] = (samples[i][0] + samples[i][1]) * 0.5
		t.pos++
		if t.pos == WindowSize {
			t.pos = 0
		}
	}
	t.filled += n

	if t.filled >= WindowSize {
		t.filled = WindowSize
		w := new(Window)
		// Unroll the ring so the snapshot is oldest first
		copied := copy(w[:], t.ring[t.pos:])
		copy(w[copied:], t.ring[:t.pos])
		t.latest.Store(w)
	}
	return n, ok
}

// Err implements beep.Streamer
func (t *Tap) Err() error {
	return t.streamer.Err()
}

// Latest implements WindowSource
func (t *Tap) Latest() *Window {
	return t.latest.Load()
}
