package physics

import (
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// SpringAccel returns the velocity change on a particle at pos from a spring to neighbor
// k: spring constant, rest: natural length
// Result is k * (delta - rest*unit(delta)), delta = neighbor - pos
// Coincident particles contribute nothing; the direction is undefined there
func SpringAccel(pos, neighbor vmath.Vec3F, k, rest float64) vmath.Vec3F {
	if k == 0 {
		return vmath.Vec3F{}
	}

	delta := vmath.V3FSub(neighbor, pos)
	unit, mag := vmath.V3FNormalizeMag(delta)
	if mag == 0 {
		return vmath.Vec3F{}
	}

	return vmath.Vec3F{
		X: k * (delta.X - rest*unit.X),
		Y: k * (delta.Y - rest*unit.Y),
		Z: k * (delta.Z - rest*unit.Z),
	}
}

// Damp scales velocity by factor (1 = no damping, 0 = full stop)
func Damp(v vmath.Vec3F, factor float64) vmath.Vec3F {
	return vmath.Vec3F{X: v.X * factor, Y: v.Y * factor, Z: v.Z * factor}
}

// IntegrateEuler advances pos by vel over one unit timestep
func IntegrateEuler(pos, vel vmath.Vec3F) vmath.Vec3F {
	return vmath.V3FAdd(pos, vel)
}
