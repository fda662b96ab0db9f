package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// CameraConfig describes a perspective camera in simulation space
type CameraConfig struct {
	Eye        vmath.Vec3F
	Target     vmath.Vec3F
	FovY       float64 // degrees
	Near, Far  float64
	CellAspect float64 // terminal cell height / width
}

// DefaultCameraConfig looks down -Z at the mesh from 690 units away
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Eye:        vmath.Vec3F{Z: 690},
		FovY:       60,
		Near:       1,
		Far:        10000,
		CellAspect: 2,
	}
}

// Camera maps simulation space to terminal cells and back
// Resize must be called before Project or Unproject
type Camera struct {
	cfg      CameraConfig
	cols     int
	rows     int
	viewProj mgl64.Mat4
	inverse  mgl64.Mat4
}

// NewCamera creates a camera; invalid settings fall back to defaults
func NewCamera(cfg CameraConfig) *Camera {
	def := DefaultCameraConfig()
	if cfg.FovY <= 0 || cfg.FovY >= 180 {
		cfg.FovY = def.FovY
	}
	if cfg.Near <= 0 || cfg.Far <= cfg.Near {
		cfg.Near, cfg.Far = def.Near, def.Far
	}
	if cfg.CellAspect <= 0 {
		cfg.CellAspect = def.CellAspect
	}
	if vmath.V3FDist(cfg.Eye, cfg.Target) == 0 {
		cfg.Eye, cfg.Target = def.Eye, def.Target
	}
	c := &Camera{cfg: cfg}
	c.Resize(1, 1)
	return c
}

// Config returns the effective camera settings
func (c *Camera) Config() CameraConfig { return c.cfg }

// Resize rebuilds the projection for a cols x rows viewport
func (c *Camera) Resize(cols, rows int) {
	c.cols = max(cols, 1)
	c.rows = max(rows, 1)

	aspect := float64(c.cols) / (float64(c.rows) * c.cfg.CellAspect)
	proj := mgl64.Perspective(mgl64.DegToRad(c.cfg.FovY), aspect, c.cfg.Near, c.cfg.Far)
	view := mgl64.LookAtV(toMgl(c.cfg.Eye), toMgl(c.cfg.Target), c.up())
	c.viewProj = proj.Mul4(view)
	c.inverse = c.viewProj.Inv()
}

// up picks +Y unless the view direction is parallel to it
func (c *Camera) up() mgl64.Vec3 {
	dir := vmath.V3FNormalize(vmath.V3FSub(c.cfg.Target, c.cfg.Eye))
	if math.Abs(dir.Y) > 0.999 {
		return mgl64.Vec3{0, 0, -1}
	}
	return mgl64.Vec3{0, 1, 0}
}

// Viewport returns the current viewport size in cells
func (c *Camera) Viewport() (cols, rows int) {
	return c.cols, c.rows
}

// Project returns fractional cell coordinates of p
// ok is false when p lies outside the near/far range
func (c *Camera) Project(p vmath.Vec3F) (x, y float64, ok bool) {
	clip := c.viewProj.Mul4x1(mgl64.Vec4{p.X, p.Y, p.Z, 1})
	if clip[3] <= 0 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	if ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, false
	}
	x = (ndc[0] + 1) / 2 * float64(c.cols)
	y = (1 - ndc[1]) / 2 * float64(c.rows)
	return x, y, true
}

// Unproject casts a ray through the center of cell (col, row) and intersects the plane z = planeZ
func (c *Camera) Unproject(col, row int, planeZ float64) (vmath.Vec3F, bool) {
	nx := (float64(col)+0.5)/float64(c.cols)*2 - 1
	ny := 1 - (float64(row)+0.5)/float64(c.rows)*2

	near, ok1 := c.unprojectNDC(nx, ny, -1)
	far, ok2 := c.unprojectNDC(nx, ny, 1)
	if !ok1 || !ok2 {
		return vmath.Vec3F{}, false
	}

	dir := vmath.V3FSub(far, near)
	if math.Abs(dir.Z) < 1e-12 {
		return vmath.Vec3F{}, false
	}
	t := (planeZ - near.Z) / dir.Z
	if t < 0 {
		return vmath.Vec3F{}, false
	}
	return vmath.V3FAdd(near, vmath.V3FScale(dir, t)), true
}

func (c *Camera) unprojectNDC(x, y, z float64) (vmath.Vec3F, bool) {
	v := c.inverse.Mul4x1(mgl64.Vec4{x, y, z, 1})
	if v[3] == 0 {
		return vmath.Vec3F{}, false
	}
	return vmath.Vec3F{X: v[0] / v[3], Y: v[1] / v[3], Z: v[2] / v[3]}, true
}

func toMgl(v vmath.Vec3F) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}
