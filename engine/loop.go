package engine

import (
	"context"
	"log"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/magnetic-mesh/core"
	"github.com/lixenwraith/magnetic-mesh/hand"
)

// eventBuffer bounds terminal events queued between ticks
const eventBuffer = 100

// Muter toggles audible output, returning true when now audible
type Muter interface {
	ToggleMute() bool
}

// Loop paces the visualizer on a ticker and dispatches terminal input
type Loop struct {
	vis      *Visualizer
	screen   tcell.Screen
	interval time.Duration
	mouse    *hand.MouseTracker
	muter    Muter
	events   chan tcell.Event
}

// NewLoop creates a frame loop; mouse and muter may be nil
func NewLoop(vis *Visualizer, screen tcell.Screen, interval time.Duration, mouse *hand.MouseTracker, muter Muter) *Loop {
	if interval <= 0 {
		interval = time.Second / 60
	}
	return &Loop{
		vis:      vis,
		screen:   screen,
		interval: interval,
		mouse:    mouse,
		muter:    muter,
		events:   make(chan tcell.Event, eventBuffer),
	}
}

// Run ticks until ctx is done or the user quits
// The event pump exits once the screen is finalized
func (l *Loop) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	done := make(chan struct{})
	defer close(done)
	core.Go(func() { l.pump(done) })

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-l.events:
			if !l.HandleEvent(ev) {
				return nil
			}

		case <-ticker.C:
			l.vis.Step()
			if err := l.vis.Draw(); err != nil {
				log.Printf("engine: draw: %v", err)
			}
		}
	}
}

func (l *Loop) pump(done <-chan struct{}) {
	for {
		ev := l.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case l.events <- ev:
		case <-done:
			return
		}
	}
}

// HandleEvent applies one terminal event, returns false to quit
func (l *Loop) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		return l.handleKey(ev)

	case *tcell.EventMouse:
		if l.mouse != nil {
			l.mouse.HandleEvent(ev)
		}

	case *tcell.EventResize:
		l.screen.Sync()
	}
	return true
}

func (l *Loop) handleKey(ev *tcell.EventKey) bool {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'q', 'Q':
			return false
		case 'r', 'R':
			l.vis.Reset()
		case 'm', 'M':
			if l.muter != nil {
				audible := l.muter.ToggleMute()
				log.Printf("engine: audio audible=%v", audible)
			}
		}
	}
	return true
}
