package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/magnetic-mesh/audio"
	"github.com/lixenwraith/magnetic-mesh/hand"
	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/status"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// fakeTracker reports fixed readings and skeletons
type fakeTracker struct {
	readings []hand.Reading
	hands    []hand.Hand
	polls    int
}

func (f *fakeTracker) Poll() []hand.Reading {
	f.polls++
	return f.readings
}

func (f *fakeTracker) Skeletons() []hand.Hand { return f.hands }

// plainTracker has no skeleton support
type plainTracker struct{ readings []hand.Reading }

func (p plainTracker) Poll() []hand.Reading { return p.readings }

type fakeSpectrum struct{ r audio.Reading }

func (f fakeSpectrum) Poll() audio.Reading { return f.r }
func (f fakeSpectrum) Available() bool     { return true }

type fakeRenderer struct {
	draws atomic.Int64
	last  mesh.Frame
	hands []hand.Hand
	err   error
}

func (f *fakeRenderer) Draw(frame mesh.Frame, hands []hand.Hand) error {
	f.draws.Add(1)
	f.last = frame
	f.hands = hands
	return f.err
}

type fakeMuter struct{ toggles int }

func (f *fakeMuter) ToggleMute() bool {
	f.toggles++
	return f.toggles%2 == 0
}

func smallGrid(t *testing.T) *mesh.Grid {
	t.Helper()
	p := mesh.DefaultParams()
	p.Width, p.Height = 6, 6
	g, err := mesh.New(p)
	require.NoError(t, err)
	return g
}

func TestNewVisualizerRequiresGrid(t *testing.T) {
	_, err := NewVisualizer(Deps{})
	assert.Error(t, err)
}

func TestStepMapsAndMerges(t *testing.T) {
	leap := &fakeTracker{
		readings: []hand.Reading{{Position: vmath.Vec3F{Y: 200}, Strength: 1}},
		hands:    []hand.Hand{hand.SyntheticHand(1, vmath.Vec3F{Y: 200}, 1)},
	}
	mouse := plainTracker{readings: []hand.Reading{{Position: vmath.Vec3F{X: 4}, Strength: 0.5}}}

	reg := status.NewRegistry()
	v, err := NewVisualizer(Deps{
		Grid: smallGrid(t),
		Inputs: []Input{
			{Tracker: leap, Mapper: hand.NewMapper(2, vmath.Vec3F{Y: -400, Z: -100})},
			{Tracker: mouse, Mapper: hand.Identity()},
			{Tracker: nil},
		},
		Spectrum: fakeSpectrum{audio.Reading{Bass: 3, Treble: 0.5}},
		Registry: reg,
		Audio:    "silent",
	})
	require.NoError(t, err)

	v.Step()
	assert.Equal(t, 1, leap.polls)
	require.Len(t, v.Pinches(), 2)
	assert.Equal(t, vmath.Vec3F{Z: -100}, v.Pinches()[0].Position)
	assert.Equal(t, vmath.Vec3F{X: 4}, v.Pinches()[1].Position)
	require.Len(t, v.Hands(), 1)
	assert.Equal(t, vmath.Vec3F{Z: -100}, v.Hands()[0].Pinch.Position)

	assert.Equal(t, uint64(1), v.Grid().Ticks())
	assert.Equal(t, 3.0, reg.Float(status.KeyBass).Get())
	assert.Equal(t, 0.5, reg.Float(status.KeyTreble).Get())
	assert.Equal(t, int64(2), reg.Int(status.KeyHands).Load())
	assert.Equal(t, int64(1), reg.Int(status.KeyTicks).Load())
	assert.Positive(t, reg.Float(status.KeyEnergy).Get(), "pinches moved the grid")
	assert.Equal(t, "silent", *reg.String(status.KeyAudio).Load())

	// Boundary color follows treble
	assert.Equal(t, mesh.Color{R: 0.5, G: 0.5, B: 0.5, A: 1}, v.Grid().ColorAt(0, 0))
}

func TestStepWithoutInputsUsesDefaultLoudness(t *testing.T) {
	v, err := NewVisualizer(Deps{Grid: smallGrid(t)})
	require.NoError(t, err)

	v.Step()
	assert.Empty(t, v.Pinches())
	assert.Equal(t, audio.Default.Bass, v.Registry().Float(status.KeyBass).Get())
	assert.InDelta(t, 0, v.Grid().KineticEnergy(), 1e-12)
	require.NoError(t, v.Draw(), "no renderer is not an error")
}

func TestFrameRateSmoothing(t *testing.T) {
	clock := NewMockClock(time.Unix(0, 0))
	v, err := NewVisualizer(Deps{Grid: smallGrid(t), Clock: clock})
	require.NoError(t, err)
	fps := v.Registry().Float(status.KeyFPS)

	v.Step()
	assert.Zero(t, fps.Get(), "first frame has no interval")

	clock.Advance(20 * time.Millisecond)
	v.Step()
	assert.InDelta(t, 50, fps.Get(), 1e-9)

	clock.Advance(10 * time.Millisecond)
	v.Step()
	assert.InDelta(t, 50+fpsSmoothing*(100-50), fps.Get(), 1e-9)

	// Zero interval is ignored
	v.Step()
	assert.InDelta(t, 55, fps.Get(), 1e-9)
}

func TestDrawAndReset(t *testing.T) {
	r := &fakeRenderer{}
	tr := &fakeTracker{
		readings: []hand.Reading{{Position: vmath.Vec3F{Z: 50}, Strength: 1}},
		hands:    []hand.Hand{hand.SyntheticHand(0, vmath.Vec3F{Z: 50}, 1)},
	}
	v, err := NewVisualizer(Deps{Grid: smallGrid(t), Renderer: r, Inputs: []Input{{Tracker: tr, Mapper: hand.Identity()}}})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		v.Step()
	}
	require.NoError(t, v.Draw())
	assert.Equal(t, int64(1), r.draws.Load())
	assert.Equal(t, 6, r.last.Width)
	assert.Len(t, r.last.Positions, 36)
	assert.Len(t, r.hands, 1)

	v.Reset()
	assert.Zero(t, v.Grid().Ticks())
	assert.Zero(t, v.Grid().KineticEnergy())
	assert.Zero(t, v.Registry().Int(status.KeyTicks).Load())

	r.err = errors.New("gone")
	assert.Error(t, v.Draw())
}

func newTestLoop(t *testing.T, muter Muter) (*Loop, *Visualizer, tcell.SimulationScreen, *fakeRenderer) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	t.Cleanup(screen.Fini)
	screen.SetSize(40, 20)

	r := &fakeRenderer{}
	v, err := NewVisualizer(Deps{Grid: smallGrid(t), Renderer: r})
	require.NoError(t, err)

	mouse := hand.NewMouseTracker(func(col, row int) (vmath.Vec3F, bool) {
		return vmath.Vec3F{X: float64(col), Y: float64(row)}, true
	}, 10)
	return NewLoop(v, screen, time.Millisecond, mouse, muter), v, screen, r
}

func TestHandleEventKeys(t *testing.T) {
	muter := &fakeMuter{}
	l, v, _, _ := newTestLoop(t, muter)

	for i := 0; i < 3; i++ {
		v.Step()
	}
	assert.True(t, l.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone)))
	assert.Zero(t, v.Grid().Ticks())

	assert.True(t, l.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone)))
	assert.Equal(t, 1, muter.toggles)

	assert.True(t, l.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
	assert.False(t, l.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.False(t, l.HandleEvent(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, l.HandleEvent(tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl)))

	assert.True(t, l.HandleEvent(tcell.NewEventMouse(3, 4, tcell.Button1, tcell.ModNone)))
	assert.Len(t, l.mouse.Poll(), 1)

	nilMuter, _, _, _ := newTestLoop(t, nil)
	assert.True(t, nilMuter.HandleEvent(tcell.NewEventKey(tcell.KeyRune, 'm', tcell.ModNone)))
}

func TestRunQuitsOnKey(t *testing.T) {
	l, _, screen, r := newTestLoop(t, nil)

	errc := make(chan error, 1)
	go func() { errc <- l.Run(context.Background()) }()

	require.Eventually(t, func() bool { return r.draws.Load() >= 3 }, 2*time.Second, time.Millisecond)
	require.NoError(t, screen.PostEvent(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("loop did not quit")
	}
}

func TestRunStopsOnContext(t *testing.T) {
	l, v, _, _ := newTestLoop(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	require.NoError(t, l.Run(ctx))
	assert.Positive(t, v.Grid().Ticks())
}
