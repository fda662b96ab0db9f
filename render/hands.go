package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/magnetic-mesh/hand"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// Skeleton glyphs
const (
	jointRune = 'o'
	boneRune  = '+'
	linkRune  = '·'
)

// HandRenderer draws hand skeletons as joints, bone midpoints and bone links
type HandRenderer struct {
	camera *Camera
	joint  RGB
	bone   RGB
	alpha  float64
}

// NewHandRenderer creates the skeleton overlay
// Joints are a pale blue (hue 0.6), bones white (hue 0.5, zero saturation)
func NewHandRenderer(camera *Camera) *HandRenderer {
	return &HandRenderer{
		camera: camera,
		joint:  FromColorful(colorful.Hsv(0.6*360, 0.5, 1.0)),
		bone:   FromColorful(colorful.Hsv(0.5*360, 0.0, 1.0)),
		alpha:  0.5,
	}
}

// Draw overlays hands (already in simulation space) onto c
func (r *HandRenderer) Draw(c *Canvas, hands []hand.Hand) {
	for _, h := range hands {
		for _, f := range h.Fingers {
			for _, b := range f.Bones {
				r.drawLink(c, b)
				r.plot(c, b.Midpoint(), boneRune, r.bone)
			}
		}
		// Joints last so they stay visible over links
		for _, f := range h.Fingers {
			for i, b := range f.Bones {
				if i == 0 {
					r.plot(c, b.Prev, jointRune, r.joint)
				}
				r.plot(c, b.Next, jointRune, r.joint)
			}
		}
	}
}

// drawLink samples the bone segment at roughly one point per cell
func (r *HandRenderer) drawLink(c *Canvas, b hand.Bone) {
	x0, y0, ok0 := r.camera.Project(b.Prev)
	x1, y1, ok1 := r.camera.Project(b.Next)
	if !ok0 || !ok1 {
		return
	}
	steps := int(math.Ceil(math.Max(math.Abs(x1-x0), math.Abs(y1-y0))))
	if steps <= 1 {
		return
	}
	for i := 1; i < steps; i++ {
		p := vmath.V3FLerp(b.Prev, b.Next, float64(i)/float64(steps))
		r.plot(c, p, linkRune, r.bone)
	}
}

func (r *HandRenderer) plot(c *Canvas, p vmath.Vec3F, glyph rune, color RGB) {
	x, y, ok := r.camera.Project(p)
	if !ok {
		return
	}
	c.SetRune(int(math.Floor(x)), int(math.Floor(y)), glyph, color, r.alpha)
}
