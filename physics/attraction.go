package physics

import (
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// PinchAccel returns the velocity change on a particle at pos toward a pinch at target
// strength: pinch strength [0,1], k: pinch force constant
// floor: distance added to |delta| to keep the force finite next to the pinch point
// Magnitude is strength*k/(|delta|+floor); inverse distance, not inverse square
func PinchAccel(pos, target vmath.Vec3F, strength, k, floor float64) vmath.Vec3F {
	if strength == 0 || k == 0 {
		return vmath.Vec3F{}
	}

	delta := vmath.V3FSub(target, pos)
	unit, mag := vmath.V3FNormalizeMag(delta)
	if mag == 0 {
		return vmath.Vec3F{}
	}

	distance := mag + floor
	if distance <= 0 {
		return vmath.Vec3F{}
	}

	return vmath.V3FScale(unit, strength*k/distance)
}
