// Package hand adapts hand-tracking sources into per-tick pinch readings
// and skeletons for the overlay renderer.
//
// Sources run their capture on their own goroutine (WebSocket reader, terminal
// event pump) and publish complete frames into a Slot. Poll reads the latest
// frame without blocking; there is never a queue of pending frames.
package hand

import (
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// FingerType follows the sensor's finger numbering
type FingerType uint8

const (
	FingerThumb FingerType = iota
	FingerIndex
	FingerMiddle
	FingerRing
	FingerPinky
)

// BoneType indexes the four bones of a finger from the wrist outward
type BoneType uint8

const (
	BoneMetacarpal BoneType = iota
	BoneProximal
	BoneIntermediate
	BoneDistal
	boneCount
)

// Reading is one pinch sample in sensor (or already mapped) space
type Reading struct {
	Position vmath.Vec3F
	Strength float64
}

// Bone is a segment between two joints
type Bone struct {
	Prev vmath.Vec3F // joint closer to the wrist
	Next vmath.Vec3F // joint closer to the tip
}

// Midpoint returns the center of the bone segment
func (b Bone) Midpoint() vmath.Vec3F {
	return vmath.V3FMidpoint(b.Prev, b.Next)
}

// Length returns the joint-to-joint distance
func (b Bone) Length() float64 {
	return vmath.V3FDist(b.Prev, b.Next)
}

// Finger holds the bones of one digit
type Finger struct {
	Type  FingerType
	Bones [boneCount]Bone
}

// Tip returns the distal end of the finger
func (f Finger) Tip() vmath.Vec3F {
	return f.Bones[BoneDistal].Next
}

// Hand is one tracked hand
type Hand struct {
	ID      int
	Pinch   Reading
	Fingers []Finger
}

// Frame is a complete sensor snapshot
type Frame struct {
	Seq   uint64
	Hands []Hand
}

// Readings extracts one pinch reading per hand
func (f *Frame) Readings() []Reading {
	if f == nil || len(f.Hands) == 0 {
		return nil
	}
	out := make([]Reading, len(f.Hands))
	for i, h := range f.Hands {
		out[i] = h.Pinch
	}
	return out
}

// Tracker is the per-tick hand input contract
// Poll must not block and returns an empty slice when no hand is visible
type Tracker interface {
	Poll() []Reading
}

// SkeletonSource is implemented by trackers that can also report full hands for overlays
type SkeletonSource interface {
	Skeletons() []Hand
}

// NoTracker never reports a hand
type NoTracker struct{}

// Poll implements Tracker
func (NoTracker) Poll() []Reading { return nil }
