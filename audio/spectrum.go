package audio

// FFT geometry
// A window of WindowSize mono samples yields Bands magnitude bins; bins [0, BandSplit)
// are the bass half and [BandSplit, Bands) the treble half
const (
	Bands      = 512
	WindowSize = 2 * Bands
	BandSplit  = Bands / 2
)

// DefaultLoudness is the band energy reported when no audio is available
// Keeps the power-curve coloring lively and away from a zero divisor
const DefaultLoudness = 5.0

// Window is a fixed-length buffer of the most recent mono samples, oldest first
type Window [WindowSize]float64

// Reading is the aggregate energy of the two spectral halves for one frame
type Reading struct {
	Bass   float64
	Treble float64
}

// Default is the neutral reading substituted when there is no audio
var Default = Reading{Bass: DefaultLoudness, Treble: DefaultLoudness}

// Spectrum is the per-tick audio input contract
// Poll never blocks and never fails; it returns Default when no audio is available
type Spectrum interface {
	Poll() Reading
	Available() bool
}

// WindowSource provides the latest complete sample window, nil before the first one
type WindowSource interface {
	Latest() *Window
}

// Silent is a Spectrum with no audio capability
type Silent struct{}

// Poll implements Spectrum
func (Silent) Poll() Reading { return Default }

// Available implements Spectrum
func (Silent) Available() bool { return false }
