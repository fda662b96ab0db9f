// Package config loads the visualizer settings from an INI file and the environment
package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/gcfg.v1"

	"github.com/lixenwraith/magnetic-mesh/audio"
	"github.com/lixenwraith/magnetic-mesh/hand"
	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/render"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// ErrInvalid wraps every validation failure
var ErrInvalid = errors.New("config: invalid value")

// Tracker names accepted by [Hand] Tracker
const (
	TrackerMouse = "mouse"
	TrackerOrbit = "orbit"
	TrackerLeap  = "leap"
	TrackerNone  = "none"
)

// ExampleFile documents every setting with its default
const ExampleFile = `# magmesh configuration. Every value is optional.

[Grid]
Width = 200
Height = 400
# Rest distance between neighbours, also the lattice spacing
Spacing = 8
PlaneZ = 1

[Physics]
SpringK = 0.2
# Per-tick velocity retention, in (0, 1]
Damping = 0.99
PinchK = 200
# Added to the pinch distance so the pull stays bounded
PinchFloor = 50

[Color]
Alpha = 0.3
GreenOffset = 0.13
Exponent = 5
MinEnergy = 0.001

[Hand]
# mouse | orbit | leap | none
Tracker = mouse
Scale = 2
TranslateX = 0
TranslateY = -400
TranslateZ = -100
# Mouse pinches float this far above the mesh
MouseDepth = 40

[Leap]
URL = ws://127.0.0.1:6437/v6.json
ConnectTimeout = 2s
ReadTimeout = 1s
ReconnectDelay = 2s

[Orbit]
Hands = 2
Period = 12s

[Audio]
# speaker | silent | off
Mode = speaker
SampleRate = 44100
BPM = 120
# 0-100
Volume = 50
Gain = 1
Buffer = 100ms
Muted = false

[Render]
FPS = 60
FovY = 60
CameraZ = 690
LightZ = 750
# Terminal cell height over width
CellAspect = 2
Hands = true
HUD = true
`

// Config mirrors the INI sections
type Config struct {
	Grid struct {
		Width   int
		Height  int
		Spacing float64
		PlaneZ  float64
	}
	Physics struct {
		SpringK    float64
		Damping    float64
		PinchK     float64
		PinchFloor float64
	}
	Color struct {
		Alpha       float64
		GreenOffset float64
		Exponent    float64
		MinEnergy   float64
	}
	Hand struct {
		Tracker    string
		Scale      float64
		TranslateX float64
		TranslateY float64
		TranslateZ float64
		MouseDepth float64
	}
	Leap struct {
		URL            string
		ConnectTimeout string
		ReadTimeout    string
		ReconnectDelay string
	}
	Orbit struct {
		Hands  int
		Period string
	}
	Audio struct {
		Mode       string
		SampleRate int
		BPM        float64
		Volume     int
		Gain       float64
		Buffer     string
		Muted      bool
	}
	Render struct {
		FPS        int
		FovY       float64
		CameraZ    float64
		LightZ     float64
		CellAspect float64
		Hands      bool
		HUD        bool
	}
}

// Default returns the built-in tuning
func Default() *Config {
	c := &Config{}
	mp := mesh.DefaultParams()
	c.Grid.Width = mp.Width
	c.Grid.Height = mp.Height
	c.Grid.Spacing = mp.Spacing
	c.Grid.PlaneZ = mp.PlaneZ

	c.Physics.SpringK = mp.SpringK
	c.Physics.Damping = mp.Damping
	c.Physics.PinchK = mp.PinchK
	c.Physics.PinchFloor = mp.PinchFloor

	c.Color.Alpha = mp.Alpha
	c.Color.GreenOffset = mp.GreenOffset
	c.Color.Exponent = mp.ColorExponent
	c.Color.MinEnergy = mp.MinEnergy

	c.Hand.Tracker = TrackerMouse
	c.Hand.Scale = 2
	c.Hand.TranslateY = -400
	c.Hand.TranslateZ = -100
	c.Hand.MouseDepth = 40

	lc := hand.DefaultLeapConfig()
	c.Leap.URL = lc.URL
	c.Leap.ConnectTimeout = lc.ConnectTimeout.String()
	c.Leap.ReadTimeout = lc.ReadTimeout.String()
	c.Leap.ReconnectDelay = lc.ReconnectDelay.String()

	oc := hand.DefaultOrbitConfig()
	c.Orbit.Hands = oc.Hands
	c.Orbit.Period = oc.Period.String()

	ac := audio.DefaultConfig()
	c.Audio.Mode = ac.Mode.String()
	c.Audio.SampleRate = ac.SampleRate
	c.Audio.BPM = ac.BPM
	c.Audio.Volume = int(math.Round(ac.MasterVolume * 100))
	c.Audio.Gain = ac.Gain
	c.Audio.Buffer = ac.BufferDuration.String()
	c.Audio.Muted = ac.Muted

	cam := render.DefaultCameraConfig()
	c.Render.FPS = 60
	c.Render.FovY = cam.FovY
	c.Render.CameraZ = cam.Eye.Z
	c.Render.LightZ = render.DefaultLight().Position.Z
	c.Render.CellAspect = cam.CellAspect
	c.Render.Hands = true
	c.Render.HUD = true
	return c
}

// Load reads path over the defaults, applies MAGMESH_* overrides and validates
// An empty path skips the file
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		if err := gcfg.ReadFileInto(c, path); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse reads INI text over the defaults without consulting the environment
func Parse(text string) (*Config, error) {
	c := Default()
	if err := gcfg.ReadStringInto(c, text); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// ApplyEnv applies environment variable overrides for the non-audio sections
// Audio overrides are applied by audio.LoadConfig in AudioConfig
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MAGMESH_TRACKER"); v != "" {
		c.Hand.Tracker = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("MAGMESH_LEAP_URL"); v != "" {
		c.Leap.URL = v
	}
	if v := os.Getenv("MAGMESH_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Render.FPS = n
		}
	}
	if v := os.Getenv("MAGMESH_GRID_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Grid.Width = n
		}
	}
	if v := os.Getenv("MAGMESH_GRID_HEIGHT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Grid.Height = n
		}
	}
}

// Validate checks every section; errors wrap ErrInvalid
func (c *Config) Validate() error {
	if err := c.MeshParams().Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	switch c.Hand.Tracker {
	case TrackerMouse, TrackerOrbit, TrackerLeap, TrackerNone:
	default:
		return fmt.Errorf("%w: unknown tracker %q", ErrInvalid, c.Hand.Tracker)
	}
	if !positive(c.Hand.Scale) {
		return fmt.Errorf("%w: hand scale %g", ErrInvalid, c.Hand.Scale)
	}
	if !finite(c.Hand.TranslateX) || !finite(c.Hand.TranslateY) || !finite(c.Hand.TranslateZ) || !finite(c.Hand.MouseDepth) {
		return fmt.Errorf("%w: hand translation must be finite", ErrInvalid)
	}

	for name, d := range map[string]string{
		"leap connect timeout": c.Leap.ConnectTimeout,
		"leap read timeout":    c.Leap.ReadTimeout,
		"leap reconnect delay": c.Leap.ReconnectDelay,
		"orbit period":         c.Orbit.Period,
		"audio buffer":         c.Audio.Buffer,
	} {
		if _, err := parseDuration(d); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, name, err)
		}
	}
	if c.Orbit.Hands < 1 || c.Orbit.Hands > 2 {
		return fmt.Errorf("%w: orbit hands %d", ErrInvalid, c.Orbit.Hands)
	}

	if _, err := audio.ParseMode(c.Audio.Mode); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if c.Audio.SampleRate <= 0 || !positive(c.Audio.BPM) || !positive(c.Audio.Gain) {
		return fmt.Errorf("%w: audio sample rate, bpm and gain must be positive", ErrInvalid)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 100 {
		return fmt.Errorf("%w: audio volume %d outside 0-100", ErrInvalid, c.Audio.Volume)
	}

	if c.Render.FPS <= 0 || c.Render.FPS > 1000 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.Render.FPS)
	}
	if !positive(c.Render.FovY) || c.Render.FovY >= 180 {
		return fmt.Errorf("%w: fov %g", ErrInvalid, c.Render.FovY)
	}
	if !positive(c.Render.CellAspect) || !finite(c.Render.CameraZ) || !finite(c.Render.LightZ) {
		return fmt.Errorf("%w: camera settings", ErrInvalid)
	}
	if c.Render.CameraZ <= c.Grid.PlaneZ {
		return fmt.Errorf("%w: camera z %g must be above the mesh plane %g", ErrInvalid, c.Render.CameraZ, c.Grid.PlaneZ)
	}
	return nil
}

// MeshParams converts the grid, physics and color sections
func (c *Config) MeshParams() mesh.Params {
	return mesh.Params{
		Width:         c.Grid.Width,
		Height:        c.Grid.Height,
		Spacing:       c.Grid.Spacing,
		PlaneZ:        c.Grid.PlaneZ,
		SpringK:       c.Physics.SpringK,
		Damping:       c.Physics.Damping,
		PinchK:        c.Physics.PinchK,
		PinchFloor:    c.Physics.PinchFloor,
		Alpha:         c.Color.Alpha,
		GreenOffset:   c.Color.GreenOffset,
		ColorExponent: c.Color.Exponent,
		MinEnergy:     c.Color.MinEnergy,
	}
}

// Mapper returns the sensor-to-simulation transform
func (c *Config) Mapper() hand.Mapper {
	return hand.NewMapper(c.Hand.Scale, vmath.Vec3F{
		X: c.Hand.TranslateX,
		Y: c.Hand.TranslateY,
		Z: c.Hand.TranslateZ,
	})
}

// LeapConfig converts the [Leap] section
func (c *Config) LeapConfig() hand.LeapConfig {
	return hand.LeapConfig{
		URL:            c.Leap.URL,
		ConnectTimeout: mustDuration(c.Leap.ConnectTimeout),
		ReadTimeout:    mustDuration(c.Leap.ReadTimeout),
		ReconnectDelay: mustDuration(c.Leap.ReconnectDelay),
	}
}

// OrbitConfig converts the [Orbit] section
func (c *Config) OrbitConfig() hand.OrbitConfig {
	oc := hand.DefaultOrbitConfig()
	oc.Hands = c.Orbit.Hands
	oc.Period = mustDuration(c.Orbit.Period)
	return oc
}

// AudioConfig converts the [Audio] section then applies MAGMESH_* audio overrides
func (c *Config) AudioConfig() *audio.Config {
	ac := audio.DefaultConfig()
	if mode, err := audio.ParseMode(c.Audio.Mode); err == nil {
		ac.Mode = mode
	}
	ac.SampleRate = c.Audio.SampleRate
	ac.BPM = c.Audio.BPM
	ac.MasterVolume = float64(c.Audio.Volume) / 100
	ac.Gain = c.Audio.Gain
	ac.BufferDuration = mustDuration(c.Audio.Buffer)
	ac.Muted = c.Audio.Muted
	return audio.LoadConfig(ac)
}

// RenderOptions converts the [Render] section
func (c *Config) RenderOptions() render.Options {
	opts := render.DefaultOptions()
	opts.Camera.FovY = c.Render.FovY
	opts.Camera.Eye = vmath.Vec3F{Z: c.Render.CameraZ}
	opts.Camera.CellAspect = c.Render.CellAspect
	opts.Light.Position = vmath.Vec3F{Z: c.Render.LightZ}
	opts.ShowHands = c.Render.Hands
	opts.ShowHUD = c.Render.HUD
	return opts
}

// FrameInterval is the tick period for the configured frame rate
func (c *Config) FrameInterval() time.Duration {
	return time.Second / time.Duration(max(c.Render.FPS, 1))
}

func parseDuration(s string) (time.Duration, error) {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", s)
	}
	return d, nil
}

// mustDuration returns 0 for unparsable input; Validate rejects those before use
func mustDuration(s string) time.Duration {
	d, _ := parseDuration(s)
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func positive(v float64) bool {
	return finite(v) && v > 0
}
