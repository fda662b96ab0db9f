package audio

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
)

// Beat voice tuning
const (
	kickFreq       = 55.0
	kickDecaySec   = 0.18
	hatDecaySec    = 0.03
	hatLevel       = 0.35
	padFreq        = 220.0
	padFifthFreq   = 330.0
	padVolumeSteps = -2.5 // effects.Volume exponent, base 2
)

// beat is a generated kick-on-the-beat, hat-on-the-offbeat loop
// Infinite: never drains
type beat struct {
	beatLen    int
	pos        int
	kickPhase  float64
	rng        *rand.Rand
	kickDecay  float64
	hatDecay   float64
	kickEnv    float64
	hatEnv     float64
	kickPhaseN float64
}

func newBeat(sr beep.SampleRate, bpm float64) *beat {
	rate := float64(sr)
	beatLen := int(rate * 60 / bpm)
	if beatLen < 2 {
		beatLen = 2
	}
	return &beat{
		beatLen:    beatLen,
		rng:        rand.New(rand.NewSource(1)),
		kickDecay:  math.Exp(-1 / (kickDecaySec * rate)),
		hatDecay:   math.Exp(-1 / (hatDecaySec * rate)),
		kickPhaseN: kickFreq / rate,
	}
}

// Stream implements beep.Streamer
func (b *beat) Stream(samples [][2]float64) (n int, ok bool) {
	half := b.beatLen / 2
	for i := range samples {
		switch b.pos {
		case 0:
			b.kickEnv = 1
			b.kickPhase = 0
		case half:
			b.hatEnv = 1
		}

		kick := math.Sin(2*math.Pi*b.kickPhase) * b.kickEnv
		hat := (b.rng.Float64()*2 - 1) * b.hatEnv * hatLevel
		v := kick + hat
		samples[i][0] = v
		samples[i][1] = v

		b.kickPhase += b.kickPhaseN
		if b.kickPhase >= 1 {
			b.kickPhase -= 1
		}
		b.kickEnv *= b.kickDecay
		b.hatEnv *= b.hatDecay

		b.pos++
		if b.pos >= b.beatLen {
			b.pos = 0
		}
	}
	return len(samples), true
}

// Err implements beep.Streamer
func (b *beat) Err() error { return nil }

// NewTrack builds the synthesized music loop: a kick/hat beat over a sine fifth pad
func NewTrack(sr beep.SampleRate, bpm float64) (beep.Streamer, error) {
	if sr <= 0 {
		return nil, fmt.Errorf("audio: invalid sample rate %d", sr)
	}
	if bpm <= 0 || math.IsNaN(bpm) {
		return nil, fmt.Errorf("audio: invalid bpm %g", bpm)
	}

	root, err := generators.SineTone(sr, padFreq)
	if err != nil {
		return nil, fmt.Errorf("audio: pad root: %w", err)
	}
	fifth, err := generators.SineTone(sr, padFifthFreq)
	if err != nil {
		return nil, fmt.Errorf("audio: pad fifth: %w", err)
	}

	pad := &effects.Volume{
		Streamer: beep.Mix(root, fifth),
		Base:     2,
		Volume:   padVolumeSteps,
	}
	return beep.Mix(newBeat(sr, bpm), pad), nil
}
