package hand

import (
	"github.com/lixenwraith/magnetic-mesh/mesh"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// Mapper places sensor-space points into simulation space: raw*scale + translation
// Immutable after construction
type Mapper struct {
	scale       float64
	translation vmath.Vec3F
}

// NewMapper creates a mapper with uniform scale and translation
func NewMapper(scale float64, translation vmath.Vec3F) Mapper {
	return Mapper{scale: scale, translation: translation}
}

// Identity leaves points unchanged, for sources already in simulation space
func Identity() Mapper {
	return Mapper{scale: 1}
}

// Scale returns the uniform scale factor
func (m Mapper) Scale() float64 { return m.scale }

// Translation returns the offset applied after scaling
func (m Mapper) Translation() vmath.Vec3F { return m.translation }

// Map transforms one point
func (m Mapper) Map(raw vmath.Vec3F) vmath.Vec3F {
	return vmath.V3FAdd(vmath.V3FScale(raw, m.scale), m.translation)
}

// Pinches maps readings into simulation-space pinches
func (m Mapper) Pinches(readings []Reading) []mesh.Pinch {
	if len(readings) == 0 {
		return nil
	}
	out := make([]mesh.Pinch, len(readings))
	for i, r := range readings {
		out[i] = mesh.Pinch{Position: m.Map(r.Position), Strength: r.Strength}
	}
	return out
}

// Hand returns a copy of h with every joint mapped
func (m Mapper) Hand(h Hand) Hand {
	out := Hand{
		ID:      h.ID,
		Pinch:   Reading{Position: m.Map(h.Pinch.Position), Strength: h.Pinch.Strength},
		Fingers: make([]Finger, len(h.Fingers)),
	}
	for i, f := range h.Fingers {
		mf := Finger{Type: f.Type}
		for b, bone := range f.Bones {
			mf.Bones[b] = Bone{Prev: m.Map(bone.Prev), Next: m.Map(bone.Next)}
		}
		out.Fingers[i] = mf
	}
	return out
}

// Hands maps a set of hands
func (m Mapper) Hands(hands []Hand) []Hand {
	if len(hands) == 0 {
		return nil
	}
	out := make([]Hand, len(hands))
	for i, h := range hands {
		out[i] = m.Hand(h)
	}
	return out
}
