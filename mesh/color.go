package mesh

import (
	"math"
)

// bandCurve holds per-tick constants of the interior color mapping
// r = (y/H)^(e/bass), g = (x*y/(W*H))^(e/treble)
type bandCurve struct {
	invH      float64
	invArea   float64
	expBass   float64
	expTreble float64
	offset    float64
	alpha     float64
}

func newBandCurve(p Params, w, h int, bass, treble float64) bandCurve {
	return bandCurve{
		invH:      1.0 / float64(h),
		invArea:   1.0 / float64(w*h),
		expBass:   p.ColorExponent / math.Max(bass, p.MinEnergy),
		expTreble: p.ColorExponent / math.Max(treble, p.MinEnergy),
		offset:    p.GreenOffset,
		alpha:     p.Alpha,
	}
}

// interior returns the color of a non-boundary particle
// Bass shapes the vertical axis, treble the diagonal product axis
func (b bandCurve) interior(x, y int) Color {
	r := math.Pow(float64(y)*b.invH, b.expBass)
	g := math.Pow(float64(x*y)*b.invArea, b.expTreble)
	return Color{R: r, G: b.offset + g, B: 1 - r, A: b.alpha}
}
