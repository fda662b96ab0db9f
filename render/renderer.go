package render

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/magnetic-mesh/hand"
	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/status"
)

// Renderer consumes simulation output; it never mutates the grid
type Renderer interface {
	Draw(frame mesh.Frame, hands []hand.Hand) error
}

// Options toggles scene layers
type Options struct {
	Camera    CameraConfig
	Light     Light
	ShowHands bool
	ShowHUD   bool
}

// DefaultOptions enables every layer
func DefaultOptions() Options {
	return Options{
		Camera:    DefaultCameraConfig(),
		Light:     DefaultLight(),
		ShowHands: true,
		ShowHUD:   true,
	}
}

// Scene composites mesh, hands and HUD into a canvas
type Scene struct {
	camera *Camera
	canvas *Canvas
	mesh   *MeshRenderer
	hands  *HandRenderer
	hud    *HUD
}

// NewScene builds the layer stack; the HUD is fed from registry
func NewScene(opts Options, registry *status.Registry) *Scene {
	camera := NewCamera(opts.Camera)
	s := &Scene{
		camera: camera,
		canvas: NewCanvas(0, 0),
		mesh:   NewMeshRenderer(camera, opts.Light),
	}
	if opts.ShowHands {
		s.hands = NewHandRenderer(camera)
	}
	if opts.ShowHUD {
		s.hud = NewHUD(registry)
	}
	return s
}

// Camera returns the scene camera
func (s *Scene) Camera() *Camera { return s.camera }

// Resize adapts canvas and projection to a cols x rows viewport
func (s *Scene) Resize(cols, rows int) {
	if w, h := s.canvas.Size(); w == cols && h == rows {
		return
	}
	s.canvas.Resize(cols, rows)
	s.camera.Resize(cols, rows)
}

// Compose renders one frame into the canvas and returns it
func (s *Scene) Compose(frame mesh.Frame, hands []hand.Hand) *Canvas {
	s.canvas.Clear()
	s.mesh.Draw(s.canvas, frame)
	if s.hands != nil {
		s.hands.Draw(s.canvas, hands)
	}
	if s.hud != nil {
		s.hud.Draw(s.canvas)
	}
	return s.canvas
}

// TerminalRenderer presents scenes on a tcell screen
type TerminalRenderer struct {
	screen tcell.Screen
	scene  *Scene
}

// NewTerminalRenderer binds scene to screen and sizes it
func NewTerminalRenderer(screen tcell.Screen, scene *Scene) *TerminalRenderer {
	t := &TerminalRenderer{screen: screen, scene: scene}
	t.Sync()
	return t
}

// Sync matches the scene to the current screen size
func (t *TerminalRenderer) Sync() {
	t.scene.Resize(t.screen.Size())
}

// Draw implements Renderer
func (t *TerminalRenderer) Draw(frame mesh.Frame, hands []hand.Hand) error {
	t.Sync()
	Present(t.screen, t.scene.Compose(frame, hands))
	return nil
}
