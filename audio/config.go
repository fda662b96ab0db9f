package audio

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Mode selects how the music is driven
type Mode uint8

const (
	ModeOff     Mode = iota // no audio, spectrum reports Default
	ModeSilent              // music is generated and analyzed at real time without output
	ModeSpeaker             // music plays on the default output device
)

// String implements fmt.Stringer
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeSilent:
		return "silent"
	case ModeSpeaker:
		return "speaker"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// ParseMode accepts off, silent and speaker
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "none":
		return ModeOff, nil
	case "silent":
		return ModeSilent, nil
	case "speaker", "on":
		return ModeSpeaker, nil
	}
	return ModeOff, fmt.Errorf("audio: unknown mode %q", s)
}

// Config holds audio settings
type Config struct {
	Mode           Mode
	SampleRate     int
	BPM            float64
	MasterVolume   float64 // 0.0-1.0
	Gain           float64 // FFT magnitude scale
	BufferDuration time.Duration
	Muted          bool
}

// DefaultConfig returns the default audio configuration
func DefaultConfig() *Config {
	return &Config{
		Mode:           ModeSpeaker,
		SampleRate:     44100,
		BPM:            120,
		MasterVolume:   0.5,
		Gain:           1,
		BufferDuration: 100 * time.Millisecond,
	}
}

// LoadConfig applies environment variable overrides onto cfg
func LoadConfig(cfg *Config) *Config {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if mode := os.Getenv("MAGMESH_AUDIO_MODE"); mode != "" {
		if val, err := ParseMode(mode); err == nil {
			cfg.Mode = val
		}
	}

	if muted := os.Getenv("MAGMESH_AUDIO_MUTED"); muted != "" {
		if val, err := strconv.ParseBool(muted); err == nil {
			cfg.Muted = val
		}
	}

	// Master volume 0-100 converted to 0.0-1.0
	if volume := os.Getenv("MAGMESH_MASTER_VOLUME"); volume != "" {
		if val, err := strconv.Atoi(volume); err == nil {
			cfg.MasterVolume = clampUnit(float64(val) / 100.0)
		}
	}

	if sampleRate := os.Getenv("MAGMESH_SAMPLE_RATE"); sampleRate != "" {
		if val, err := strconv.Atoi(sampleRate); err == nil && val > 0 {
			cfg.SampleRate = val
		}
	}

	if bpm := os.Getenv("MAGMESH_AUDIO_BPM"); bpm != "" {
		if val, err := strconv.ParseFloat(bpm, 64); err == nil && val > 0 {
			cfg.BPM = val
		}
	}

	return cfg
}

func clampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
