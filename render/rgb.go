package render

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/lixenwraith/magnetic-mesh/mesh"
)

// RGB is a 24-bit terminal color
type RGB struct {
	R, G, B uint8
}

// Predefined colors
var (
	RGBBlack = RGB{0, 0, 0}
	RGBWhite = RGB{255, 255, 255}
)

// clamp converts float to uint8 efficiently
func clamp(v float64) uint8 {
	if v >= 255.0 {
		return 255
	}
	if v <= 0.0 || math.IsNaN(v) {
		return 0
	}
	return uint8(v)
}

// FromUnit converts normalized channels (0.0-1.0) to RGB, clamping out-of-range input
func FromUnit(r, g, b float64) RGB {
	return RGB{
		R: clamp(r*255.0 + 0.5),
		G: clamp(g*255.0 + 0.5),
		B: clamp(b*255.0 + 0.5),
	}
}

// FromColor converts a mesh particle color, ignoring alpha
func FromColor(c mesh.Color) RGB {
	return FromUnit(c.R, c.G, c.B)
}

// FromColorful converts a go-colorful color, clamping to the sRGB gamut
func FromColorful(c colorful.Color) RGB {
	c = c.Clamped()
	return FromUnit(c.R, c.G, c.B)
}

// Scale multiplies every channel by f
func Scale(c RGB, f float64) RGB {
	return RGB{
		R: clamp(float64(c.R)*f + 0.5),
		G: clamp(float64(c.G)*f + 0.5),
		B: clamp(float64(c.B)*f + 0.5),
	}
}

// Blend optimizes alpha blending
// If alpha is 1.0 or 0.0, we return early to save math
func Blend(c, src RGB, alpha float64) RGB {
	if alpha >= 1.0 {
		return src
	}
	if alpha <= 0.0 {
		return c
	}

	inv := 1.0 - alpha
	return RGB{
		R: uint8(float64(src.R)*alpha + float64(c.R)*inv),
		G: uint8(float64(src.G)*alpha + float64(c.G)*inv),
		B: uint8(float64(src.B)*alpha + float64(c.B)*inv),
	}
}

// add is addition with clamping
func add(a, b uint8) uint8 {
	sum := int(a) + int(b)
	if sum > 255 {
		return 255
	}
	return uint8(sum)
}

// Add performs additive blend: c + src*alpha, clamped per channel
func Add(c, src RGB, alpha float64) RGB {
	if alpha <= 0.0 {
		return c
	}
	if alpha < 1.0 {
		src = Scale(src, alpha)
	}
	return RGB{
		R: add(c.R, src.R),
		G: add(c.G, src.G),
		B: add(c.B, src.B),
	}
}
