// Package termboxhost feeds terminal input from termbox-go into a host event ring.
//
// termbox keeps its terminal state in package globals, so at most one Backend
// may be initialized per process.
package termboxhost

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/nsf/termbox-go"

	"github.com/lixenwraith/keybridge/host"
)

// Backend pumps termbox events into a Ring
// Implements service.Service, host.Source and host.MouseWarper
type Backend struct {
	ring *host.Ring
	log  *slog.Logger

	initialized atomic.Bool
	running     atomic.Bool
	stopping    atomic.Bool
	done        chan struct{}
	stopOnce    sync.Once
}

// New creates a termbox backend pushing into ring
func New(ring *host.Ring, log *slog.Logger) *Backend {
	if ring == nil {
		ring = host.NewRing(host.DefaultRingSize)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Backend{ring: ring, log: log, done: make(chan struct{})}
}

// Name implements service.Service
func (b *Backend) Name() string {
	return "termbox"
}

// Dependencies implements service.Service
func (b *Backend) Dependencies() []string {
	return nil
}

// Init implements service.Service
func (b *Backend) Init(args ...any) error {
	if err := termbox.Init(); err != nil {
		return fmt.Errorf("init termbox: %w", err)
	}
	termbox.SetInputMode(termbox.InputEsc | termbox.InputMouse)
	b.initialized.Store(true)
	return nil
}

// Start implements service.Service
func (b *Backend) Start() error {
	if !b.initialized.Load() {
		return fmt.Errorf("termbox not initialized")
	}
	if !b.running.CompareAndSwap(false, true) {
		return nil
	}
	go b.pump()
	return nil
}

func (b *Backend) pump() {
	defer close(b.done)
	for {
		ev := termbox.PollEvent()
		switch ev.Type {
		case termbox.EventInterrupt:
			if b.stopping.Load() {
				return
			}
			b.ring.Push(host.Event{Type: host.EventQuit})
			continue
		case termbox.EventError:
			b.log.Error("termbox input failed", "error", ev.Err)
			b.ring.Push(host.Event{Type: host.EventQuit})
			return
		}
		for _, he := range Convert(ev) {
			b.ring.Push(he)
		}
	}
}

// Stop implements service.Service
func (b *Backend) Stop() error {
	b.stopOnce.Do(func() {
		if !b.initialized.Load() {
			return
		}
		b.stopping.Store(true)
		if b.running.Load() {
			termbox.Interrupt()
			<-b.done
		}
		termbox.Close()
		b.log.Debug("termbox backend stopped", "dropped", b.ring.Dropped())
	})
	return nil
}

// PollEvent implements host.Source
func (b *Backend) PollEvent(ev *host.Event) bool {
	return b.ring.PollEvent(ev)
}

// WarpMouse implements host.MouseWarper by moving the text cursor
func (b *Backend) WarpMouse(p host.Point) {
	if b.initialized.Load() {
		termbox.SetCursor(p.X, p.Y)
		termbox.Flush()
	}
}

// Ring returns the event ring fed by this backend
func (b *Backend) Ring() *host.Ring {
	return b.ring
}
