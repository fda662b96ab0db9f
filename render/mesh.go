package render

import (
	"math"

	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// Light is a point light with a fixed ambient floor
type Light struct {
	Position vmath.Vec3F
	Ambient  float64
	Diffuse  float64
}

// DefaultLight sits just behind the camera
func DefaultLight() Light {
	return Light{
		Position: vmath.Vec3F{Z: 750},
		Ambient:  0.2,
		Diffuse:  0.8,
	}
}

// Intensity returns the two-sided Lambert term for a surface at p with normal n
// A degenerate normal is treated as facing the light
func (l Light) Intensity(p, n vmath.Vec3F) float64 {
	toLight := vmath.V3FNormalize(vmath.V3FSub(l.Position, p))
	if vmath.V3FMagSq(n) == 0 || vmath.V3FMagSq(toLight) == 0 {
		return l.Ambient + l.Diffuse
	}
	return l.Ambient + l.Diffuse*math.Abs(vmath.V3FDot(vmath.V3FNormalize(n), toLight))
}

// MeshRenderer splats each lit quad into the canvas cell under its centroid
// Overlapping quads accumulate additively
type MeshRenderer struct {
	camera *Camera
	light  Light
}

// NewMeshRenderer creates a mesh renderer viewing through camera
func NewMeshRenderer(camera *Camera, light Light) *MeshRenderer {
	return &MeshRenderer{camera: camera, light: light}
}

// Draw rasterizes frame into c
func (r *MeshRenderer) Draw(c *Canvas, frame mesh.Frame) {
	pos := frame.Positions
	col := frame.Colors
	idx := frame.Indices

	for q := 0; q+3 < len(idx); q += 4 {
		i0, i1, i2, i3 := idx[q], idx[q+1], idx[q+2], idx[q+3]
		p0, p1, p2, p3 := pos[i0], pos[i1], pos[i2], pos[i3]

		center := vmath.V3FScale(vmath.V3FAdd(vmath.V3FAdd(p0, p1), vmath.V3FAdd(p2, p3)), 0.25)
		x, y, ok := r.camera.Project(center)
		if !ok {
			continue
		}
		cx, cy := int(math.Floor(x)), int(math.Floor(y))
		if !c.inBounds(cx, cy) {
			continue
		}

		normal := vmath.V3FCross(vmath.V3FSub(p2, p0), vmath.V3FSub(p3, p1))
		lit := r.light.Intensity(center, normal)

		k0, k1, k2, k3 := col[i0], col[i1], col[i2], col[i3]
		cr := (k0.R + k1.R + k2.R + k3.R) * 0.25 * lit
		cg := (k0.G + k1.G + k2.G + k3.G) * 0.25 * lit
		cb := (k0.B + k1.B + k2.B + k3.B) * 0.25 * lit
		alpha := (k0.A + k1.A + k2.A + k3.A) * 0.25

		c.AddBg(cx, cy, FromUnit(cr, cg, cb), alpha)
	}
}
