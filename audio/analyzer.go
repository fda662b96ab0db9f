package audio

import (
	"math"
	"math/cmplx"
	"sync/atomic"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

// Analyzer turns the latest sample window into a bass/treble Reading
// Availability is a runtime capability flag set by whoever owns the audio output
type Analyzer struct {
	source    WindowSource
	gain      float64
	available atomic.Bool

	mags [Bands]float64
}

// NewAnalyzer creates an analyzer over source; gain scales raw FFT magnitudes
func NewAnalyzer(source WindowSource, gain float64) *Analyzer {
	if gain <= 0 || math.IsNaN(gain) || math.IsInf(gain, 0) {
		gain = 1
	}
	return &Analyzer{source: source, gain: gain}
}

// SetAvailable toggles the audio capability flag
func (a *Analyzer) SetAvailable(v bool) {
	a.available.Store(v)
}

// Available implements Spectrum
func (a *Analyzer) Available() bool {
	return a.available.Load() && a.source != nil
}

// Poll implements Spectrum
func (a *Analyzer) Poll() Reading {
	if !a.Available() {
		return Default
	}
	w := a.source.Latest()
	if w == nil {
		return Default
	}
	return a.Analyze(w)
}

// Analyze splits the magnitude spectrum of w into two halves and averages each
// Non-finite results fall back to Default
func (a *Analyzer) Analyze(w *Window) Reading {
	bins := fft.FFTReal(w[:])
	for i := 0; i < Bands; i++ {
		a.mags[i] = cmplx.Abs(bins[i]) * a.gain
	}

	r := Reading{
		Bass:   floats.Sum(a.mags[:BandSplit]) / BandSplit,
		Treble: floats.Sum(a.mags[BandSplit:]) / (Bands - BandSplit),
	}
	if !finite(r.Bass) || !finite(r.Treble) {
		return Default
	}
	return r
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
