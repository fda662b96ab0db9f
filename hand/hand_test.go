package hand

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/magnetic-mesh/vmath"
)

func TestBoneMidpoint(t *testing.T) {
	b := Bone{Prev: vmath.Vec3F{X: 0, Y: 10, Z: -4}, Next: vmath.Vec3F{X: 10, Y: 20, Z: 4}}
	assert.Equal(t, vmath.Vec3F{X: 5, Y: 15, Z: 0}, b.Midpoint())
	assert.InDelta(t, vmath.V3FDist(b.Prev, b.Next), b.Length(), 1e-12)
}

func TestFrameReadingsNilSafe(t *testing.T) {
	var f *Frame
	assert.Empty(t, f.Readings())
	assert.Empty(t, (&Frame{}).Readings())
	assert.Empty(t, NoTracker{}.Poll())
}

func TestSlotLatestWins(t *testing.T) {
	var s Slot
	assert.Nil(t, s.Load())
	assert.Empty(t, s.Poll())
	assert.Empty(t, s.Skeletons())

	s.Publish(&Frame{Hands: []Hand{{ID: 1, Pinch: Reading{Strength: 0.2}}}})
	s.Publish(&Frame{Hands: []Hand{{ID: 2, Pinch: Reading{Strength: 0.9}}}})

	f := s.Load()
	require.NotNil(t, f)
	assert.Equal(t, uint64(2), f.Seq)
	assert.Equal(t, []Reading{{Strength: 0.9}}, s.Poll())

	s.Clear()
	assert.Empty(t, s.Poll())
	assert.Equal(t, uint64(3), s.Load().Seq)

	s.Publish(nil)
	assert.NotNil(t, s.Load())
}

// TestSlotConcurrentPublish races a producer against the polling consumer
func TestSlotConcurrentPublish(t *testing.T) {
	var s Slot
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			s.Publish(&Frame{Hands: []Hand{{Pinch: Reading{Strength: 1}}}})
		}
	}()
	for i := 0; i < 1000; i++ {
		for _, r := range s.Poll() {
			assert.Equal(t, 1.0, r.Strength)
		}
	}
	wg.Wait()
	assert.Equal(t, uint64(1000), s.Load().Seq)
}

func TestMapper(t *testing.T) {
	m := NewMapper(2, vmath.Vec3F{Y: -400, Z: -100})
	assert.Equal(t, vmath.Vec3F{X: 20, Y: -380, Z: -80}, m.Map(vmath.Vec3F{X: 10, Y: 10, Z: 10}))
	assert.Equal(t, 2.0, m.Scale())

	pinches := m.Pinches([]Reading{{Position: vmath.Vec3F{Y: 200}, Strength: 0.7}})
	require.Len(t, pinches, 1)
	assert.Equal(t, vmath.Vec3F{Z: -100}, pinches[0].Position)
	assert.Equal(t, 0.7, pinches[0].Strength)
	assert.Nil(t, m.Pinches(nil))

	id := Identity()
	p := vmath.Vec3F{X: 1, Y: 2, Z: 3}
	assert.Equal(t, p, id.Map(p))
}

func TestMapperHandMapsEveryJoint(t *testing.T) {
	h := SyntheticHand(3, vmath.Vec3F{X: 5, Y: 100}, 0.5)
	m := NewMapper(2, vmath.Vec3F{Z: 7})
	mapped := m.Hand(h)

	assert.Equal(t, 3, mapped.ID)
	assert.Equal(t, m.Map(h.Pinch.Position), mapped.Pinch.Position)
	require.Len(t, mapped.Fingers, len(h.Fingers))
	for i, f := range h.Fingers {
		for b, bone := range f.Bones {
			assert.Equal(t, m.Map(bone.Prev), mapped.Fingers[i].Bones[b].Prev)
			assert.Equal(t, m.Map(bone.Next), mapped.Fingers[i].Bones[b].Next)
		}
	}
	// Original untouched
	assert.NotEqual(t, h.Fingers[0].Bones[0].Prev, mapped.Fingers[0].Bones[0].Prev)
	assert.Len(t, m.Hands([]Hand{h, h}), 2)
}

func TestSyntheticHand(t *testing.T) {
	tip := vmath.Vec3F{X: 12, Y: 34, Z: 56}
	for _, strength := range []float64{-1, 0, 0.5, 1, 2} {
		h := SyntheticHand(1, tip, strength)
		require.Len(t, h.Fingers, 5)
		assert.InDelta(t, 0, vmath.V3FDist(tip, h.Fingers[FingerIndex].Tip()), 1e-9)
		assert.GreaterOrEqual(t, h.Pinch.Strength, 0.0)
		assert.LessOrEqual(t, h.Pinch.Strength, 1.0)

		// Bones chain joint to joint
		for _, f := range h.Fingers {
			for b := BoneProximal; b < boneCount; b++ {
				assert.Equal(t, f.Bones[b-1].Next, f.Bones[b].Prev)
			}
		}
	}
}

func TestOrbitTracker(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	o := NewOrbitTracker(DefaultOrbitConfig(), clock)

	r := o.Poll()
	require.Len(t, r, 2)
	assert.Len(t, o.Skeletons(), 2)

	cfg := DefaultOrbitConfig()
	for _, reading := range r {
		assert.InDelta(t, cfg.Center.Y, reading.Position.Y, cfg.Radius.Y+1e-9)
		assert.GreaterOrEqual(t, reading.Strength, 0.0)
		assert.LessOrEqual(t, reading.Strength, 1.0)
	}

	// Deterministic for a given elapsed time
	assert.Equal(t, o.At(3*time.Second).Readings(), o.At(3*time.Second).Readings())

	now = now.Add(cfg.Period / 4)
	moved := o.Poll()
	assert.NotEqual(t, r[0].Position, moved[0].Position)

	single := NewOrbitTracker(OrbitConfig{Hands: 9}, clock)
	assert.Len(t, single.Poll(), 2)
	single = NewOrbitTracker(OrbitConfig{}, clock)
	assert.Len(t, single.Poll(), 1)
}

func TestMouseTracker(t *testing.T) {
	target := vmath.Vec3F{X: 40, Y: -16, Z: 1}
	locate := func(col, row int) (vmath.Vec3F, bool) {
		if col < 0 {
			return vmath.Vec3F{}, false
		}
		return target, true
	}
	m := NewMouseTracker(locate, 30)
	assert.Empty(t, m.Poll())

	assert.False(t, m.Update(5, 5, tcell.ButtonNone), "already released")

	assert.True(t, m.Update(5, 5, tcell.Button1))
	r := m.Poll()
	require.Len(t, r, 1)
	assert.Equal(t, 1.0, r[0].Strength)
	assert.Equal(t, vmath.Vec3F{X: 40, Y: -16, Z: 31}, r[0].Position)
	assert.Len(t, m.Skeletons(), 1)

	assert.True(t, m.Update(5, 5, tcell.Button2))
	assert.Equal(t, 0.5, m.Poll()[0].Strength)

	// Off-plane drag releases
	assert.True(t, m.Update(-1, 5, tcell.Button1))
	assert.Empty(t, m.Poll())

	assert.True(t, m.HandleEvent(tcell.NewEventMouse(3, 4, tcell.Button1, tcell.ModNone)))
	assert.True(t, m.HandleEvent(tcell.NewEventMouse(3, 4, tcell.ButtonNone, tcell.ModNone)))
	assert.Empty(t, m.Poll())
}

const leapFrameJSON = `{
  "id": 42,
  "hands": [
    {"id": 7, "type": "right", "pinchStrength": 0.8, "palmPosition": [1, 2, 3]},
    {"id": 9, "type": "left", "pinchStrength": 0.1, "palmPosition": [-50, 150, 0]}
  ],
  "pointables": [
    {"handId": 7, "type": 1,
     "tipPosition": [10, 200, 30],
     "carpPosition": [0, 150, 60], "mcpPosition": [2, 170, 50],
     "pipPosition": [5, 185, 40], "dipPosition": [8, 195, 33], "btipPosition": [10, 200, 30]},
    {"handId": 7, "type": 0, "tipPosition": [-30, 180, 20]},
    {"handId": 7, "type": 99, "tipPosition": [0, 0, 0]}
  ]
}`

func TestParseLeapFrame(t *testing.T) {
	f, ok, err := parseLeapFrame([]byte(leapFrameJSON))
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, f.Hands, 2)

	right := f.Hands[0]
	assert.Equal(t, 7, right.ID)
	assert.Equal(t, Reading{Position: vmath.Vec3F{X: 10, Y: 200, Z: 30}, Strength: 0.8}, right.Pinch)
	require.Len(t, right.Fingers, 2, "unknown finger types are skipped")
	index := right.Fingers[0]
	assert.Equal(t, FingerIndex, index.Type)
	assert.Equal(t, vmath.Vec3F{X: 0, Y: 150, Z: 60}, index.Bones[BoneMetacarpal].Prev)
	assert.Equal(t, vmath.Vec3F{X: 10, Y: 200, Z: 30}, index.Tip())

	// No index finger: palm stands in
	left := f.Hands[1]
	assert.Equal(t, vmath.Vec3F{X: -50, Y: 150}, left.Pinch.Position)
	assert.Empty(t, left.Fingers)

	_, ok, err = parseLeapFrame([]byte(`{"version": 6}`))
	require.NoError(t, err)
	assert.False(t, ok)

	f, ok, err = parseLeapFrame([]byte(`{"id": 1, "hands": [], "pointables": []}`))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, f.Readings())

	_, _, err = parseLeapFrame([]byte(`{"hands": [`))
	assert.Error(t, err)
}

// leapServer emulates the tracking service: version handshake, then frames until closed
func leapServer(t *testing.T, frames ...string) (*httptest.Server, <-chan string) {
	t.Helper()
	configured := make(chan string, 4)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"serviceVersion":"2.3.1","version":6}`)); err != nil {
			return
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}
		configured <- string(msg)

		for _, f := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(f)); err != nil {
				return
			}
		}
		// Hold the connection open until the client leaves
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv, configured
}

func TestLeapTrackerStreamsFrames(t *testing.T) {
	srv, configured := leapServer(t, leapFrameJSON)

	lt := NewLeapTracker(LeapConfig{
		URL:            "ws" + strings.TrimPrefix(srv.URL, "http"),
		ReadTimeout:    5 * time.Second,
		ReconnectDelay: 50 * time.Millisecond,
	})
	assert.Equal(t, "leap", lt.Name())
	assert.Empty(t, lt.Poll())

	require.NoError(t, lt.Start())
	assert.Error(t, lt.Start())

	select {
	case msg := <-configured:
		assert.JSONEq(t, `{"background": true}`, msg)
	case <-time.After(2 * time.Second):
		t.Fatal("tracker never configured the stream")
	}

	require.Eventually(t, func() bool { return len(lt.Poll()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.True(t, lt.Connected())
	assert.Len(t, lt.Skeletons(), 2)

	require.NoError(t, lt.Stop())
	require.NoError(t, lt.Stop())
	assert.False(t, lt.Connected())
	assert.Empty(t, lt.Poll())
}

// TestLeapTrackerMissingService verifies an absent service is retried without failing Start
func TestLeapTrackerMissingService(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	lt := NewLeapTracker(LeapConfig{URL: url, ConnectTimeout: 100 * time.Millisecond, ReconnectDelay: 10 * time.Millisecond})
	require.NoError(t, lt.Start())
	time.Sleep(50 * time.Millisecond)
	assert.False(t, lt.Connected())
	assert.Empty(t, lt.Poll())
	require.NoError(t, lt.Stop())
}
