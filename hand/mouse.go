package hand

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// Locator resolves a terminal cell to a simulation-space point, false when the cell misses the mesh plane
type Locator func(col, row int) (vmath.Vec3F, bool)

// Mouse button strengths
const (
	mousePrimaryStrength   = 1.0
	mouseSecondaryStrength = 0.5
)

// MouseTracker turns terminal mouse drags into a single pinching hand
// Left button pinches at full strength, right button at half
// Readings are already in simulation space; pair it with Identity()
type MouseTracker struct {
	locate Locator
	depth  float64 // z offset toward the camera
	slot   Slot
}

// NewMouseTracker creates a tracker that lifts pinches depth units off the located point
func NewMouseTracker(locate Locator, depth float64) *MouseTracker {
	m := &MouseTracker{locate: locate, depth: depth}
	m.slot.Clear()
	return m
}

// HandleEvent consumes a mouse event, returns true if it changed the tracked hand
func (m *MouseTracker) HandleEvent(ev *tcell.EventMouse) bool {
	col, row := ev.Position()
	return m.Update(col, row, ev.Buttons())
}

// Update applies a cursor position and button state
func (m *MouseTracker) Update(col, row int, buttons tcell.ButtonMask) bool {
	var strength float64
	switch {
	case buttons&tcell.Button1 != 0:
		strength = mousePrimaryStrength
	case buttons&tcell.Button2 != 0:
		strength = mouseSecondaryStrength
	}

	if strength == 0 || m.locate == nil {
		return m.release()
	}

	point, ok := m.locate(col, row)
	if !ok {
		return m.release()
	}
	point.Z += m.depth

	m.slot.Publish(&Frame{Hands: []Hand{SyntheticHand(0, point, strength)}})
	return true
}

func (m *MouseTracker) release() bool {
	if f := m.slot.Load(); f != nil && len(f.Hands) == 0 {
		return false
	}
	m.slot.Clear()
	return true
}

// Poll implements Tracker
func (m *MouseTracker) Poll() []Reading { return m.slot.Poll() }

// Skeletons implements SkeletonSource
func (m *MouseTracker) Skeletons() []Hand { return m.slot.Skeletons() }
