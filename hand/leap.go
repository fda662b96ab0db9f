package hand

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/magnetic-mesh/core"
	"github.com/lixenwraith/magnetic-mesh/vmath"
)

// LeapConfig holds the WebSocket settings for the Leap Motion tracking service
type LeapConfig struct {
	URL            string
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration // no frame within this window drops the hands
	ReconnectDelay time.Duration
}

// DefaultLeapConfig targets the local tracking service
func DefaultLeapConfig() LeapConfig {
	return LeapConfig{
		URL:            "ws://127.0.0.1:6437/v6.json",
		ConnectTimeout: 2 * time.Second,
		ReadTimeout:    time.Second,
		ReconnectDelay: 2 * time.Second,
	}
}

// leapMessage covers both the version handshake and tracking frames
type leapMessage struct {
	Version    *int            `json:"version"`
	ID         int64           `json:"id"`
	Hands      []leapHand      `json:"hands"`
	Pointables []leapPointable `json:"pointables"`
}

type leapHand struct {
	ID            int       `json:"id"`
	Type          string    `json:"type"`
	PinchStrength float64   `json:"pinchStrength"`
	PalmPosition  []float64 `json:"palmPosition"`
}

type leapPointable struct {
	HandID       int       `json:"handId"`
	Type         int       `json:"type"`
	TipPosition  []float64 `json:"tipPosition"`
	CarpPosition []float64 `json:"carpPosition"`
	McpPosition  []float64 `json:"mcpPosition"`
	PipPosition  []float64 `json:"pipPosition"`
	DipPosition  []float64 `json:"dipPosition"`
	BtipPosition []float64 `json:"btipPosition"`
}

// parseLeapFrame decodes one service message
// Returns false for non-frame messages (version handshake, events)
func parseLeapFrame(data []byte) (*Frame, bool, error) {
	var msg leapMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, false, fmt.Errorf("leap: decode message: %w", err)
	}
	if msg.Hands == nil {
		return nil, false, nil
	}

	fingers := make(map[int][]Finger, len(msg.Hands))
	tips := make(map[int]vmath.Vec3F, len(msg.Hands))
	for _, p := range msg.Pointables {
		if p.Type < int(FingerThumb) || p.Type > int(FingerPinky) {
			continue
		}
		joints := [boneCount + 1]vmath.Vec3F{
			vmath.V3FFromSlice(p.CarpPosition),
			vmath.V3FFromSlice(p.McpPosition),
			vmath.V3FFromSlice(p.PipPosition),
			vmath.V3FFromSlice(p.DipPosition),
			vmath.V3FFromSlice(p.BtipPosition),
		}
		f := Finger{Type: FingerType(p.Type)}
		for b := BoneMetacarpal; b < boneCount; b++ {
			f.Bones[b] = Bone{Prev: joints[b], Next: joints[b+1]}
		}
		fingers[p.HandID] = append(fingers[p.HandID], f)

		if FingerType(p.Type) == FingerIndex && len(p.TipPosition) >= 3 {
			tips[p.HandID] = vmath.V3FFromSlice(p.TipPosition)
		}
	}

	frame := &Frame{Hands: make([]Hand, 0, len(msg.Hands))}
	for _, h := range msg.Hands {
		tip, ok := tips[h.ID]
		if !ok {
			tip = vmath.V3FFromSlice(h.PalmPosition)
		}
		frame.Hands = append(frame.Hands, Hand{
			ID:      h.ID,
			Pinch:   Reading{Position: tip, Strength: h.PinchStrength},
			Fingers: fingers[h.ID],
		})
	}
	return frame, true, nil
}

// LeapTracker streams frames from the Leap Motion WebSocket service
// A reader goroutine publishes each frame into a Slot; Poll never waits on the network
type LeapTracker struct {
	cfg    LeapConfig
	dialer *websocket.Dialer
	slot   Slot

	connected atomic.Bool
	running   atomic.Bool

	mu     sync.Mutex // protects conn and cancel
	conn   *websocket.Conn
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewLeapTracker creates a tracker; call Start to connect
func NewLeapTracker(cfg LeapConfig) *LeapTracker {
	def := DefaultLeapConfig()
	if cfg.URL == "" {
		cfg.URL = def.URL
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = def.ConnectTimeout
	}
	if cfg.ReadTimeout <= 0 {
		cfg.ReadTimeout = def.ReadTimeout
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	lt := &LeapTracker{
		cfg: cfg,
		dialer: &websocket.Dialer{
			HandshakeTimeout: cfg.ConnectTimeout,
		},
	}
	lt.slot.Clear()
	return lt
}

// Name implements service.Service
func (lt *LeapTracker) Name() string { return "leap" }

// Start launches the connect/read loop; a missing service is retried, not an error
func (lt *LeapTracker) Start() error {
	if lt.running.Swap(true) {
		return fmt.Errorf("leap tracker already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	lt.mu.Lock()
	lt.cancel = cancel
	lt.mu.Unlock()

	lt.wg.Add(1)
	core.Go(func() {
		defer lt.wg.Done()
		lt.run(ctx)
	})
	return nil
}

// Stop closes the connection and waits for the reader to exit, idempotent
func (lt *LeapTracker) Stop() error {
	if !lt.running.Swap(false) {
		return nil
	}

	lt.mu.Lock()
	if lt.cancel != nil {
		lt.cancel()
	}
	if lt.conn != nil {
		lt.conn.Close()
	}
	lt.mu.Unlock()

	lt.wg.Wait()
	lt.slot.Clear()
	return nil
}

// Connected reports whether a service connection is currently open
func (lt *LeapTracker) Connected() bool { return lt.connected.Load() }

// Poll implements Tracker
func (lt *LeapTracker) Poll() []Reading { return lt.slot.Poll() }

// Skeletons implements SkeletonSource
func (lt *LeapTracker) Skeletons() []Hand { return lt.slot.Skeletons() }

func (lt *LeapTracker) run(ctx context.Context) {
	failures := 0
	for ctx.Err() == nil {
		established, err := lt.session(ctx)
		lt.connected.Store(false)
		lt.slot.Clear()
		if ctx.Err() != nil {
			return
		}
		if established {
			failures = 0
		}

		// Log the first failure of a streak only, the service may simply be absent
		if failures == 0 {
			log.Printf("leap: %v, retrying every %v", err, lt.cfg.ReconnectDelay)
		}
		failures++

		select {
		case <-ctx.Done():
			return
		case <-time.After(lt.cfg.ReconnectDelay):
		}
	}
}

// session dials once and reads until the connection fails
// established reports whether the stream was configured before the failure
func (lt *LeapTracker) session(ctx context.Context) (established bool, err error) {
	conn, _, err := lt.dialer.DialContext(ctx, lt.cfg.URL, nil)
	if err != nil {
		return false, fmt.Errorf("dial %s: %w", lt.cfg.URL, err)
	}

	lt.mu.Lock()
	if ctx.Err() != nil {
		lt.mu.Unlock()
		conn.Close()
		return false, ctx.Err()
	}
	lt.conn = conn
	lt.mu.Unlock()

	defer func() {
		lt.mu.Lock()
		lt.conn = nil
		lt.mu.Unlock()
		conn.Close()
	}()

	// Keep receiving frames while the terminal, not the service's own window, has focus
	if err := conn.WriteJSON(map[string]bool{"background": true}); err != nil {
		return false, fmt.Errorf("configure stream: %w", err)
	}

	lt.connected.Store(true)
	log.Printf("leap: connected to %s", lt.cfg.URL)

	for {
		if err := conn.SetReadDeadline(time.Now().Add(lt.cfg.ReadTimeout)); err != nil {
			return true, fmt.Errorf("set deadline: %w", err)
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			return true, fmt.Errorf("read: %w", err)
		}

		frame, ok, err := parseLeapFrame(data)
		if err != nil {
			log.Printf("%v", err)
			continue
		}
		if ok {
			lt.slot.Publish(frame)
		}
	}
}
