package hand

import (
	"sync/atomic"
)

// Slot is a single-slot mailbox holding the latest complete Frame
// Producers overwrite, the consumer reads the most recent value; older frames are dropped
type Slot struct {
	latest atomic.Pointer[Frame]
	seq    atomic.Uint64
}

// Publish replaces the current frame, stamping it with a sequence number
// The frame must not be mutated by the caller afterwards
func (s *Slot) Publish(f *Frame) {
	if f == nil {
		f = &Frame{}
	}
	f.Seq = s.seq.Add(1)
	s.latest.Store(f)
}

// Clear publishes an empty frame, used when a source loses its sensor
func (s *Slot) Clear() {
	s.Publish(&Frame{})
}

// Load returns the latest frame or nil if nothing was published yet
func (s *Slot) Load() *Frame {
	return s.latest.Load()
}

// Poll implements Tracker
func (s *Slot) Poll() []Reading {
	return s.Load().Readings()
}

// Skeletons implements SkeletonSource
func (s *Slot) Skeletons() []Hand {
	f := s.Load()
	if f == nil {
		return nil
	}
	return f.Hands
}
