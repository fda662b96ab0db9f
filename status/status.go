// Package status holds lock-free runtime metrics for the HUD
// Writers cache metric pointers at setup and store into atomics every frame
package status

import (
	"math"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
)

// Metric keys published by the host loop
const (
	KeyFPS    = "fps"
	KeyBass   = "bass"
	KeyTreble = "treble"
	KeyHands  = "hands"
	KeyEnergy = "energy"
	KeyTicks  = "ticks"
	KeyAudio  = "audio"
)

// AtomicFloat provides atomic float64 access using bit conversion
// Zero value is ready to use (represents 0.0)
type AtomicFloat struct {
	bits atomic.Uint64
}

// Set stores a float64 value atomically
func (f *AtomicFloat) Set(val float64) {
	f.bits.Store(math.Float64bits(val))
}

// Get loads the float64 value atomically
func (f *AtomicFloat) Get() float64 {
	return math.Float64frombits(f.bits.Load())
}

// Entry is one formatted metric
type Entry struct {
	Key   string
	Value string
}

// Registry maps names to metric cells
// Lookup takes a lock; cached pointers are lock-free
type Registry struct {
	mu      sync.RWMutex
	floats  map[string]*AtomicFloat
	ints    map[string]*atomic.Int64
	strings map[string]*atomic.Pointer[string]
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		floats:  make(map[string]*AtomicFloat),
		ints:    make(map[string]*atomic.Int64),
		strings: make(map[string]*atomic.Pointer[string]),
	}
}

// Float returns the float cell for key, creating it on first use
func (r *Registry) Float(key string) *AtomicFloat {
	return getOrCreate(&r.mu, r.floats, key)
}

// Int returns the integer cell for key, creating it on first use
func (r *Registry) Int(key string) *atomic.Int64 {
	return getOrCreate(&r.mu, r.ints, key)
}

// String returns the string cell for key, creating it on first use
func (r *Registry) String(key string) *atomic.Pointer[string] {
	return getOrCreate(&r.mu, r.strings, key)
}

func getOrCreate[T any](mu *sync.RWMutex, m map[string]*T, key string) *T {
	mu.RLock()
	ptr, ok := m[key]
	mu.RUnlock()
	if ok {
		return ptr
	}

	mu.Lock()
	defer mu.Unlock()
	if ptr, ok := m[key]; ok {
		return ptr
	}
	ptr = new(T)
	m[key] = ptr
	return ptr
}

// Snapshot formats every metric, sorted by key
func (r *Registry) Snapshot() []Entry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Entry, 0, len(r.floats)+len(r.ints)+len(r.strings))
	for k, v := range r.floats {
		out = append(out, Entry{k, strconv.FormatFloat(v.Get(), 'f', 2, 64)})
	}
	for k, v := range r.ints {
		out = append(out, Entry{k, strconv.FormatInt(v.Load(), 10)})
	}
	for k, v := range r.strings {
		s := ""
		if p := v.Load(); p != nil {
			s = *p
		}
		out = append(out, Entry{k, s})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
