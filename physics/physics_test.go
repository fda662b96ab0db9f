package physics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lixenwraith/magnetic-mesh/vmath"
)

func TestSpringAccelAtRest(t *testing.T) {
	a := vmath.Vec3F{X: 0, Y: 0, Z: 0}
	b := vmath.Vec3F{X: 10, Y: 0, Z: 0}
	acc := SpringAccel(a, b, 0.2, 10)
	assert.InDelta(t, 0, vmath.V3FMag(acc), 1e-12)
}

// TestSpringAccelStretchCompress verifies the spring pulls when stretched and pushes when compressed
func TestSpringAccelStretchCompress(t *testing.T) {
	origin := vmath.Vec3F{}

	stretched := SpringAccel(origin, vmath.Vec3F{X: 15}, 0.2, 10)
	assert.InDelta(t, 1.0, stretched.X, 1e-12)

	compressed := SpringAccel(origin, vmath.Vec3F{X: 5}, 0.2, 10)
	assert.InDelta(t, -1.0, compressed.X, 1e-12)
}

func TestSpringAccelCoincident(t *testing.T) {
	p := vmath.Vec3F{X: 3, Y: 4, Z: 5}
	acc := SpringAccel(p, p, 0.2, 10)
	assert.Equal(t, vmath.Vec3F{}, acc)
}

func TestPinchAccelMagnitude(t *testing.T) {
	pos := vmath.Vec3F{X: 30, Y: 40}
	acc := PinchAccel(pos, vmath.Vec3F{}, 1.0, 200, 50)

	assert.InDelta(t, 200.0/(50+50), vmath.V3FMag(acc), 1e-12)
	// Points from pos toward the origin
	assert.Less(t, acc.X, 0.0)
	assert.Less(t, acc.Y, 0.0)
	assert.InDelta(t, -1.2, acc.X, 1e-12)
	assert.InDelta(t, -1.6, acc.Y, 1e-12)
}

// TestPinchAccelDegenerate verifies coincident pinch and zero floor never produce NaN or Inf
func TestPinchAccelDegenerate(t *testing.T) {
	p := vmath.Vec3F{X: 1, Y: 1, Z: 1}
	for _, floor := range []float64{0, 50} {
		acc := PinchAccel(p, p, 1.0, 200, floor)
		assert.Equal(t, vmath.Vec3F{}, acc)
	}

	acc := PinchAccel(vmath.Vec3F{}, vmath.Vec3F{X: 1e-300}, 1.0, 200, 0)
	assert.False(t, math.IsNaN(acc.X))
	assert.False(t, math.IsInf(acc.X, 0))
}

func TestPinchAccelZeroStrength(t *testing.T) {
	acc := PinchAccel(vmath.Vec3F{}, vmath.Vec3F{X: 100}, 0, 200, 50)
	assert.Equal(t, vmath.Vec3F{}, acc)
}

func TestDampAndIntegrate(t *testing.T) {
	v := Damp(vmath.Vec3F{X: 10, Y: -10, Z: 2}, 0.5)
	assert.Equal(t, vmath.Vec3F{X: 5, Y: -5, Z: 1}, v)
	assert.Equal(t, vmath.Vec3F{X: 6, Y: -4, Z: 2}, IntegrateEuler(vmath.Vec3F{X: 1, Y: 1, Z: 1}, v))
}
