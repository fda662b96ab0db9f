package mesh

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidDimensions is returned when either grid axis has fewer than 2 particles
	ErrInvalidDimensions = errors.New("mesh: grid dimensions must be at least 2x2")
	// ErrInvalidParams is returned for physically meaningless constants
	ErrInvalidParams = errors.New("mesh: invalid simulation parameters")
)

// Params holds the setup-time constants of the simulation
// Fixed for the lifetime of a Grid
type Params struct {
	Width  int // particles along x
	Height int // particles along y

	Spacing    float64 // spring rest length and initial lattice pitch
	SpringK    float64 // neighbor spring constant
	Damping    float64 // per-tick velocity multiplier, (0,1]
	PinchK     float64 // pinch attraction constant
	PinchFloor float64 // added to pinch distance to avoid the singularity
	PlaneZ     float64 // initial z of the lattice plane

	// Coloring
	Alpha         float64 // interior particle alpha
	GreenOffset   float64 // constant added to the treble-driven green channel
	ColorExponent float64 // numerator of the band power-curve exponents
	MinEnergy     float64 // band energy floor used when computing exponents
}

// DefaultParams returns the tuned constants of the reference installation
func DefaultParams() Params {
	return Params{
		Width:         200,
		Height:        400,
		Spacing:       8,
		SpringK:       0.2,
		Damping:       0.99,
		PinchK:        200,
		PinchFloor:    50,
		PlaneZ:        1,
		Alpha:         0.3,
		GreenOffset:   0.13,
		ColorExponent: 5,
		MinEnergy:     1e-3,
	}
}

// Validate rejects parameters that make topology or physics undefined
func (p Params) Validate() error {
	if p.Width <= 1 || p.Height <= 1 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, p.Width, p.Height)
	}

	finite := []struct {
		name string
		v    float64
	}{
		{"spacing", p.Spacing},
		{"spring", p.SpringK},
		{"damping", p.Damping},
		{"pinch", p.PinchK},
		{"pinch floor", p.PinchFloor},
		{"plane z", p.PlaneZ},
		{"alpha", p.Alpha},
		{"green offset", p.GreenOffset},
		{"color exponent", p.ColorExponent},
		{"min energy", p.MinEnergy},
	}
	for _, f := range finite {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidParams, f.name)
		}
	}

	if p.Spacing <= 0 {
		return fmt.Errorf("%w: spacing %g must be positive", ErrInvalidParams, p.Spacing)
	}
	if p.SpringK < 0 || p.PinchK < 0 || p.PinchFloor < 0 {
		return fmt.Errorf("%w: spring, pinch and floor constants must be non-negative", ErrInvalidParams)
	}
	if p.Damping <= 0 || p.Damping > 1 {
		return fmt.Errorf("%w: damping %g outside (0,1]", ErrInvalidParams, p.Damping)
	}
	if p.MinEnergy <= 0 {
		return fmt.Errorf("%w: min energy %g must be positive", ErrInvalidParams, p.MinEnergy)
	}
	return nil
}
