package mesh

import (
	"math"

	"github.com/lixenwraith/magnetic-mesh/physics"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// Color is an RGBA color with float channels, nominally [0,1] but never clamped
type Color struct {
	R, G, B, A float64
}

// White is the initial particle color
var White = Color{1, 1, 1, 1}

// Pinch is an attractor in simulation space for a single tick
type Pinch struct {
	Position vmath.Vec3F
	Strength float64 // [0,1]
}

// Frame is the render-facing view of the grid after an update
// Slices alias grid storage and stay valid until the next Update or Reset
type Frame struct {
	Width     int
	Height    int
	Positions []vmath.Vec3F
	Colors    []Color
	Indices   []uint32 // quad list, 4 indices per quad, counter-clockwise
}

// Grid is a W x H lattice of spring-connected particles
// Particle (x, y) lives at index x*H + y; neighbors are derived from index arithmetic
// Not safe for concurrent use; the host loop owns it
type Grid struct {
	params Params
	width  int
	height int

	positions  []vmath.Vec3F
	velocities []vmath.Vec3F
	colors     []Color
	indices    []uint32

	ticks uint64
}

// New lays out a centered lattice at rest
func New(p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.Width * p.Height
	g := &Grid{
		params:     p,
		width:      p.Width,
		height:     p.Height,
		positions:  make([]vmath.Vec3F, n),
		velocities: make([]vmath.Vec3F, n),
		colors:     make([]Color, n),
		indices:    buildQuadIndices(p.Width, p.Height),
	}
	g.Reset()
	return g, nil
}

// buildQuadIndices emits (W-1)*(H-1) quads, computed once per grid
func buildQuadIndices(w, h int) []uint32 {
	indices := make([]uint32, 0, 4*(w-1)*(h-1))
	for x := 0; x < w-1; x++ {
		for y := 0; y < h-1; y++ {
			indices = append(indices,
				uint32((x+0)*h+(y+0)),
				uint32((x+1)*h+(y+0)),
				uint32((x+1)*h+(y+1)),
				uint32((x+0)*h+(y+1)),
			)
		}
	}
	return indices
}

// Reset restores the initial lattice: centered plane, zero velocity, opaque white
func (g *Grid) Reset() {
	p := g.params
	physW := p.Spacing * float64(g.width)
	physH := p.Spacing * float64(g.height)

	i := 0
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			g.positions[i] = vmath.Vec3F{
				X: (float64(x)/float64(g.width) - 0.5) * physW,
				Y: (float64(y)/float64(g.height) - 0.5) * physH,
				Z: p.PlaneZ,
			}
			g.velocities[i] = vmath.Vec3F{}
			g.colors[i] = White
			i++
		}
	}
	g.ticks = 0
}

// Width returns particle count along x
func (g *Grid) Width() int { return g.width }

// Height returns particle count along y
func (g *Grid) Height() int { return g.height }

// Len returns total particle count
func (g *Grid) Len() int { return len(g.positions) }

// Params returns the construction parameters
func (g *Grid) Params() Params { return g.params }

// Ticks returns the number of updates since construction or the last Reset
func (g *Grid) Ticks() uint64 { return g.ticks }

// Index maps lattice coordinates to storage index
func (g *Grid) Index(x, y int) int { return x*g.height + y }

// Coord maps storage index to lattice coordinates
func (g *Grid) Coord(i int) (x, y int) { return i / g.height, i % g.height }

// IsBoundary reports whether (x, y) lies on the outer ring
func (g *Grid) IsBoundary(x, y int) bool {
	return x == 0 || y == 0 || x == g.width-1 || y == g.height-1
}

// Position returns the position of particle (x, y)
func (g *Grid) Position(x, y int) vmath.Vec3F { return g.positions[g.Index(x, y)] }

// Velocity returns the velocity of particle (x, y)
func (g *Grid) Velocity(x, y int) vmath.Vec3F { return g.velocities[g.Index(x, y)] }

// ColorAt returns the color of particle (x, y)
func (g *Grid) ColorAt(x, y int) Color { return g.colors[g.Index(x, y)] }

// neighbors writes the indices of existing orthogonal neighbors into buf and returns the count
// No wraparound: corners have 2, edges 3, interior 4
func (g *Grid) neighbors(x, y int, buf *[4]int) int {
	i := g.Index(x, y)
	n := 0
	if y > 0 {
		buf[n] = i - 1
		n++
	}
	if y < g.height-1 {
		buf[n] = i + 1
		n++
	}
	if x > 0 {
		buf[n] = i - g.height
		n++
	}
	if x < g.width-1 {
		buf[n] = i + g.height
		n++
	}
	return n
}

// Neighbors returns the storage indices of the orthogonal neighbors of (x, y)
func (g *Grid) Neighbors(x, y int) []int {
	var buf [4]int
	n := g.neighbors(x, y, &buf)
	out := make([]int, n)
	copy(out, buf[:n])
	return out
}

// Update advances the simulation one tick
// All velocities are computed against the positions of the previous tick before any position moves
func (g *Grid) Update(pinches []Pinch, bass, treble float64) {
	p := g.params
	bass = sanitizeEnergy(bass)
	treble = sanitizeEnergy(treble)
	active := sanitizePinches(pinches)

	bands := newBandCurve(p, g.width, g.height, bass, treble)
	boundary := Color{treble, treble, treble, 1}

	var nb [4]int
	i := 0
	for x := 0; x < g.width; x++ {
		for y := 0; y < g.height; y++ {
			pos := g.positions[i]
			vel := g.velocities[i]

			for _, pinch := range active {
				vel = vmath.V3FAdd(vel, physics.PinchAccel(pos, pinch.Position, pinch.Strength, p.PinchK, p.PinchFloor))
			}

			count := g.neighbors(x, y, &nb)
			for k := 0; k < count; k++ {
				vel = vmath.V3FAdd(vel, physics.SpringAccel(pos, g.positions[nb[k]], p.SpringK, p.Spacing))
			}

			g.velocities[i] = physics.Damp(vel, p.Damping)

			if g.IsBoundary(x, y) {
				g.colors[i] = boundary
			} else {
				g.colors[i] = bands.interior(x, y)
			}
			i++
		}
	}

	for j := range g.positions {
		g.positions[j] = physics.IntegrateEuler(g.positions[j], g.velocities[j])
	}
	g.ticks++
}

// Frame exposes positions, colors and the quad index list for rendering
func (g *Grid) Frame() Frame {
	return Frame{
		Width:     g.width,
		Height:    g.height,
		Positions: g.positions,
		Colors:    g.colors,
		Indices:   g.indices,
	}
}

// KineticEnergy returns sum of |v|^2 over all particles (unit mass)
func (g *Grid) KineticEnergy() float64 {
	var e float64
	for _, v := range g.velocities {
		e += vmath.V3FMagSq(v)
	}
	return e
}

// MaxSpeed returns the largest velocity magnitude in the grid
func (g *Grid) MaxSpeed() float64 {
	var m float64
	for _, v := range g.velocities {
		if s := vmath.V3FMagSq(v); s > m {
			m = s
		}
	}
	return math.Sqrt(m)
}

// sanitizeEnergy maps negative or non-finite band energies to 0
func sanitizeEnergy(e float64) float64 {
	if math.IsNaN(e) || math.IsInf(e, 0) || e < 0 {
		return 0
	}
	return e
}

// sanitizePinches drops non-finite pinches and clamps strength to [0,1]
// Returns the input slice unchanged in the common all-valid case
func sanitizePinches(pinches []Pinch) []Pinch {
	clean := true
	for _, p := range pinches {
		if !validPinch(p) {
			clean = false
			break
		}
	}
	if clean {
		return pinches
	}

	out := make([]Pinch, 0, len(pinches))
	for _, p := range pinches {
		if !vmath.V3FIsFinite(p.Position) || math.IsNaN(p.Strength) {
			continue
		}
		p.Strength = math.Min(math.Max(p.Strength, 0), 1)
		if p.Strength == 0 {
			continue
		}
		out = append(out, p)
	}
	return out
}

func validPinch(p Pinch) bool {
	return vmath.V3FIsFinite(p.Position) && p.Strength > 0 && p.Strength <= 1
}
