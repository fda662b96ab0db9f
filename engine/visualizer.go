// Package engine runs the per-tick pipeline: trackers and spectrum in,
// grid update, renderer out
package engine

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/magnetic-mesh/audio"
	"github.com/lixenwraith/magnetic-mesh/hand"
	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/render"
	"github.com/lixenwraith/magnetic-mesh/status"
)

// fpsSmoothing is the EMA weight of the newest frame interval
const fpsSmoothing = 0.1

// Input pairs a hand source with the transform into simulation space
type Input struct {
	Tracker hand.Tracker
	Mapper  hand.Mapper
}

// Deps wires a Visualizer; nil fields get inert defaults
type Deps struct {
	Grid     *mesh.Grid
	Inputs   []Input
	Spectrum audio.Spectrum
	Renderer render.Renderer
	Registry *status.Registry
	Clock    Clock
	Audio    string // audio mode label for the HUD
}

// Visualizer owns the grid and drives one simulation step per tick
// Not safe for concurrent use; the frame loop is its only caller
type Visualizer struct {
	grid     *mesh.Grid
	inputs   []Input
	spectrum audio.Spectrum
	renderer render.Renderer
	clock    Clock

	registry *status.Registry
	fps      *status.AtomicFloat
	bass     *status.AtomicFloat
	treble   *status.AtomicFloat
	energy   *status.AtomicFloat
	hands    *atomic.Int64
	ticks    *atomic.Int64

	pinches  []mesh.Pinch
	skeleton []hand.Hand
	last     time.Time
	rate     float64
}

// NewVisualizer validates deps and caches metric cells
func NewVisualizer(d Deps) (*Visualizer, error) {
	if d.Grid == nil {
		return nil, fmt.Errorf("engine: nil grid")
	}
	if d.Spectrum == nil {
		d.Spectrum = audio.Silent{}
	}
	if d.Registry == nil {
		d.Registry = status.NewRegistry()
	}
	if d.Clock == nil {
		d.Clock = SystemClock{}
	}
	inputs := make([]Input, 0, len(d.Inputs))
	for _, in := range d.Inputs {
		if in.Tracker != nil {
			inputs = append(inputs, in)
		}
	}

	v := &Visualizer{
		grid:     d.Grid,
		inputs:   inputs,
		spectrum: d.Spectrum,
		renderer: d.Renderer,
		clock:    d.Clock,
		registry: d.Registry,
		fps:      d.Registry.Float(status.KeyFPS),
		bass:     d.Registry.Float(status.KeyBass),
		treble:   d.Registry.Float(status.KeyTreble),
		energy:   d.Registry.Float(status.KeyEnergy),
		hands:    d.Registry.Int(status.KeyHands),
		ticks:    d.Registry.Int(status.KeyTicks),
	}
	if d.Audio != "" {
		label := d.Audio
		d.Registry.String(status.KeyAudio).Store(&label)
	}
	return v, nil
}

// Grid returns the simulated grid
func (v *Visualizer) Grid() *mesh.Grid { return v.grid }

// Registry returns the metrics registry
func (v *Visualizer) Registry() *status.Registry { return v.registry }

// Step polls every source once and advances the grid by one tick
func (v *Visualizer) Step() {
	v.pinches = v.pinches[:0]
	v.skeleton = v.skeleton[:0]
	for _, in := range v.inputs {
		v.pinches = append(v.pinches, in.Mapper.Pinches(in.Tracker.Poll())...)
		if src, ok := in.Tracker.(hand.SkeletonSource); ok {
			v.skeleton = append(v.skeleton, in.Mapper.Hands(src.Skeletons())...)
		}
	}

	reading := v.spectrum.Poll()
	v.grid.Update(v.pinches, reading.Bass, reading.Treble)

	v.bass.Set(reading.Bass)
	v.treble.Set(reading.Treble)
	v.hands.Store(int64(len(v.pinches)))
	v.ticks.Store(int64(v.grid.Ticks()))
	v.energy.Set(v.grid.KineticEnergy())
	v.measure()
}

// measure updates the smoothed frame rate from the clock
func (v *Visualizer) measure() {
	now := v.clock.Now()
	if !v.last.IsZero() {
		if dt := now.Sub(v.last).Seconds(); dt > 0 {
			inst := 1 / dt
			if v.rate == 0 {
				v.rate = inst
			} else {
				v.rate += fpsSmoothing * (inst - v.rate)
			}
			v.fps.Set(v.rate)
		}
	}
	v.last = now
}

// Pinches returns the simulation-space pinches applied in the last Step
func (v *Visualizer) Pinches() []mesh.Pinch { return v.pinches }

// Hands returns the simulation-space skeletons seen in the last Step
func (v *Visualizer) Hands() []hand.Hand { return v.skeleton }

// Draw hands the current grid state and skeletons to the renderer
func (v *Visualizer) Draw() error {
	if v.renderer == nil {
		return nil
	}
	return v.renderer.Draw(v.grid.Frame(), v.skeleton)
}

// Reset restores the initial lattice
func (v *Visualizer) Reset() {
	v.grid.Reset()
	v.ticks.Store(0)
}
