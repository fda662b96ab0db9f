package audio

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/magnetic-mesh/core"
)

// Engine plays the music loop and exposes its spectrum
// Signal chain: track -> tap -> volume -> speaker (or pump)
// The tap sits before the volume so muting never blinds the analyzer
type Engine struct {
	config   *Config
	sr       beep.SampleRate
	tap      *Tap
	volume   *effects.Volume
	analyzer *Analyzer

	running    atomic.Bool
	muted      atomic.Bool
	silentMode atomic.Bool // no device; samples are pumped without output
	speakerOn  bool

	mu   sync.Mutex // guards volume while pumping
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewEngine creates an audio engine
func NewEngine(cfg ...*Config) (*Engine, error) {
	config := DefaultConfig()
	if len(cfg) > 0 && cfg[0] != nil {
		config = cfg[0]
	}

	sr := beep.SampleRate(config.SampleRate)
	track, err := NewTrack(sr, config.BPM)
	if err != nil {
		return nil, err
	}

	tap := NewTap(track)
	e := &Engine{
		config:   config,
		sr:       sr,
		tap:      tap,
		volume:   &effects.Volume{Streamer: tap, Base: 2},
		analyzer: NewAnalyzer(tap, config.Gain),
	}
	e.setVolumeLocked(config.MasterVolume, config.Muted)
	e.muted.Store(config.Muted)
	return e, nil
}

// Name implements service.Service
func (e *Engine) Name() string { return "audio" }

// Start opens the output; a missing device degrades to silent mode, not an error
func (e *Engine) Start() error {
	if e.running.Load() {
		return fmt.Errorf("audio engine already running")
	}

	switch e.config.Mode {
	case ModeOff:
		e.analyzer.SetAvailable(false)
		e.running.Store(true)
		return nil

	case ModeSpeaker:
		bufferSize := e.sr.N(e.config.BufferDuration)
		if err := speaker.Init(e.sr, bufferSize); err != nil {
			log.Printf("audio: speaker unavailable (%v), analyzing silently", err)
			e.startPump()
			break
		}
		e.speakerOn = true
		speaker.Play(e.volume)

	default:
		e.startPump()
	}

	e.analyzer.SetAvailable(true)
	e.running.Store(true)
	return nil
}

// startPump drains the chain at real time on a ticker so the tap keeps filling
func (e *Engine) startPump() {
	e.silentMode.Store(true)
	e.stop = make(chan struct{})

	interval := e.config.BufferDuration
	if interval <= 0 {
		interval = DefaultConfig().BufferDuration
	}
	buf := make([][2]float64, e.sr.N(interval))

	e.wg.Add(1)
	core.Go(func() {
		defer e.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-e.stop:
				return
			case <-ticker.C:
				e.Pump(buf)
			}
		}
	})
}

// Pump pulls len(buf) samples through the chain, output is discarded
func (e *Engine) Pump(buf [][2]float64) int {
	e.mu.Lock()
	n, _ := e.volume.Stream(buf)
	e.mu.Unlock()
	return n
}

// Stop closes the output and marks the spectrum unavailable, idempotent
func (e *Engine) Stop() error {
	if !e.running.CompareAndSwap(true, false) {
		return nil
	}

	e.analyzer.SetAvailable(false)

	if e.speakerOn {
		speaker.Clear()
		speaker.Close()
		e.speakerOn = false
	}
	if e.stop != nil {
		close(e.stop)
		e.wg.Wait()
		e.stop = nil
	}
	e.silentMode.Store(false)
	return nil
}

// Spectrum returns the analyzer fed by this engine
func (e *Engine) Spectrum() Spectrum {
	return e.analyzer
}

// ToggleMute toggles mute state, returns true if now audible
func (e *Engine) ToggleMute() bool {
	muted := !e.muted.Load()
	e.muted.Store(muted)
	e.withVolume(func() {
		e.setVolumeLocked(e.config.MasterVolume, muted)
	})
	return !muted
}

// IsMuted returns current mute state
func (e *Engine) IsMuted() bool {
	return e.muted.Load()
}

// IsRunning returns true if engine is running (even in silent mode)
func (e *Engine) IsRunning() bool {
	return e.running.Load()
}

// IsSilent returns true when samples are analyzed without a device
func (e *Engine) IsSilent() bool {
	return e.silentMode.Load()
}

// withVolume runs fn while no audio goroutine is streaming through the volume node
func (e *Engine) withVolume(fn func()) {
	if e.speakerOn {
		speaker.Lock()
		defer speaker.Unlock()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn()
}

// setVolumeLocked maps a linear master volume onto the base-2 volume node
func (e *Engine) setVolumeLocked(master float64, muted bool) {
	master = clampUnit(master)
	e.volume.Silent = muted || master == 0
	if master > 0 {
		e.volume.Volume = math.Log2(master)
	}
}
