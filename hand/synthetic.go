package hand

import (
	"math"
	"time"

	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// Finger layout of a synthetic right hand in sensor space, millimeters
// x: lateral base offset from palm center, lengths: metacarpal..distal
var syntheticFingers = [5]struct {
	baseX   float64
	lengths [boneCount]float64
}{
	FingerThumb:  {-40, [boneCount]float64{0, 45, 32, 25}},
	FingerIndex:  {-20, [boneCount]float64{65, 40, 24, 18}},
	FingerMiddle: {0, [boneCount]float64{62, 45, 28, 19}},
	FingerRing:   {18, [boneCount]float64{58, 42, 27, 19}},
	FingerPinky:  {34, [boneCount]float64{54, 33, 19, 17}},
}

// SyntheticHand builds a plausible skeleton whose index fingertip lands on tip
// Fingers point toward -z; pinch strength curls the phalanges toward -y
func SyntheticHand(id int, tip vmath.Vec3F, strength float64) Hand {
	strength = math.Min(math.Max(strength, 0), 1)
	curl := strength * math.Pi / 5

	fingers := make([]Finger, len(syntheticFingers))
	for i, layout := range syntheticFingers {
		f := Finger{Type: FingerType(i)}
		joint := vmath.Vec3F{X: layout.baseX, Z: 40}
		angle := 0.0
		for b := BoneMetacarpal; b < boneCount; b++ {
			if b > BoneMetacarpal {
				angle += curl
			}
			length := layout.lengths[b]
			dir := vmath.Vec3F{Y: -math.Sin(angle), Z: -math.Cos(angle)}
			if FingerType(i) == FingerThumb {
				dir.X = 0.6
			}
			next := vmath.V3FAdd(joint, vmath.V3FScale(vmath.V3FNormalize(dir), length))
			f.Bones[b] = Bone{Prev: joint, Next: next}
			joint = next
		}
		fingers[i] = f
	}

	offset := vmath.V3FSub(tip, fingers[FingerIndex].Tip())
	for i := range fingers {
		for b := range fingers[i].Bones {
			fingers[i].Bones[b].Prev = vmath.V3FAdd(fingers[i].Bones[b].Prev, offset)
			fingers[i].Bones[b].Next = vmath.V3FAdd(fingers[i].Bones[b].Next, offset)
		}
	}

	return Hand{
		ID:      id,
		Pinch:   Reading{Position: tip, Strength: strength},
		Fingers: fingers,
	}
}

// OrbitConfig shapes the scripted hand paths
type OrbitConfig struct {
	Hands  int           // 1 or 2
	Period time.Duration // one lap of the base orbit
	Center vmath.Vec3F   // sensor-space orbit center
	Radius vmath.Vec3F   // per-axis amplitude
}

// DefaultOrbitConfig hovers above a sensor at the origin
func DefaultOrbitConfig() OrbitConfig {
	return OrbitConfig{
		Hands:  2,
		Period: 12 * time.Second,
		Center: vmath.Vec3F{Y: 200},
		Radius: vmath.Vec3F{X: 150, Y: 80, Z: 60},
	}
}

// OrbitTracker produces Lissajous hands from the wall clock
// Used for demos and for running without a sensor
type OrbitTracker struct {
	cfg   OrbitConfig
	now   func() time.Time
	start time.Time
	slot  Slot
}

// NewOrbitTracker creates a scripted tracker; now may be nil for time.Now
func NewOrbitTracker(cfg OrbitConfig, now func() time.Time) *OrbitTracker {
	if now == nil {
		now = time.Now
	}
	if cfg.Hands < 1 {
		cfg.Hands = 1
	}
	if cfg.Hands > 2 {
		cfg.Hands = 2
	}
	if cfg.Period <= 0 {
		cfg.Period = DefaultOrbitConfig().Period
	}
	return &OrbitTracker{cfg: cfg, now: now, start: now()}
}

// At computes the frame for elapsed time since start
func (o *OrbitTracker) At(elapsed time.Duration) *Frame {
	omega := 2 * math.Pi / o.cfg.Period.Seconds()
	t := elapsed.Seconds()

	hands := make([]Hand, o.cfg.Hands)
	for i := range hands {
		phase := float64(i) * math.Pi
		tip := vmath.Vec3F{
			X: o.cfg.Center.X + o.cfg.Radius.X*math.Cos(omega*t+phase),
			Y: o.cfg.Center.Y + o.cfg.Radius.Y*math.Sin(2*omega*t+phase),
			Z: o.cfg.Center.Z + o.cfg.Radius.Z*math.Sin(omega*t),
		}
		strength := 0.5 + 0.5*math.Sin(3*omega*t+phase)
		hands[i] = SyntheticHand(i+1, tip, strength)
	}
	return &Frame{Hands: hands}
}

// Poll implements Tracker
func (o *OrbitTracker) Poll() []Reading {
	f := o.At(o.now().Sub(o.start))
	o.slot.Publish(f)
	return f.Readings()
}

// Skeletons implements SkeletonSource, returning the hands of the last Poll
func (o *OrbitTracker) Skeletons() []Hand {
	return o.slot.Skeletons()
}
