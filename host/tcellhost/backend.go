// Package tcellhost feeds terminal input from tcell into a host event ring.
package tcellhost

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keybridge/host"
)

// Backend owns a tcell screen and pumps its events into a Ring
// Implements service.Service, host.Source and host.MouseWarper
type Backend struct {
	screen tcell.Screen
	ring   *host.Ring
	conv   Converter
	log    *slog.Logger

	running  atomic.Bool
	done     chan struct{}
	stopOnce sync.Once

	events atomic.Int64
}

// New creates a backend over screen; a nil screen is created on Init
func New(screen tcell.Screen, ring *host.Ring, log *slog.Logger) *Backend {
	if ring == nil {
		ring = host.NewRing(host.DefaultRingSize)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Backend{
		screen: screen,
		ring:   ring,
		log:    log,
		done:   make(chan struct{}),
	}
}

// Name implements service.Service
func (b *Backend) Name() string {
	return "tcell"
}

// Dependencies implements service.Service
func (b *Backend) Dependencies() []string {
	return nil
}

// Init implements service.Service
// Creates the screen if none was supplied, initializes it and enables the mouse
func (b *Backend) Init(args ...any) error {
	if b.screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("create screen: %w", err)
		}
		b.screen = s
	}
	if err := b.screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	b.screen.EnableMouse()
	b.screen.HideCursor()
	return nil
}

// Start implements service.Service
// Launches the event pump goroutine
func (b *Backend) Start() error {
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	go b.pump()
	return nil
}

func (b *Backend) pump() {
	defer close(b.done)
	for {
		ev := b.screen.PollEvent()
		if ev == nil {
			return
		}
		for _, he := range b.conv.Convert(ev) {
			b.ring.Push(he)
			b.events.Add(1)
		}
	}
}

// Stop implements service.Service
// Finalizes the screen, which unblocks the pump
func (b *Backend) Stop() error {
	b.stopOnce.Do(func() {
		if b.screen == nil {
			return
		}
		b.screen.Fini()
		if b.running.Load() {
			<-b.done
		}
		b.log.Debug("tcell backend stopped", "events", b.events.Load(), "dropped", b.ring.Dropped())
	})
	return nil
}

// PollEvent implements host.Source
func (b *Backend) PollEvent(ev *host.Event) bool {
	return b.ring.PollEvent(ev)
}

// WarpMouse implements host.MouseWarper
// Terminals expose no pointer position; the text cursor stands in
func (b *Backend) WarpMouse(p host.Point) {
	if b.screen != nil {
		b.screen.ShowCursor(p.X, p.Y)
	}
}

// Screen returns the underlying screen for rendering
func (b *Backend) Screen() tcell.Screen {
	return b.screen
}

// Ring returns the event ring fed by this backend
func (b *Backend) Ring() *host.Ring {
	return b.ring
}
