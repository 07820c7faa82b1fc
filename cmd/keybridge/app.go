package main

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/keybridge/config"
	"github.com/lixenwraith/keybridge/host"
	"github.com/lixenwraith/keybridge/keymap"
	"github.com/lixenwraith/keybridge/status"
	"github.com/lixenwraith/keybridge/translator"
	"github.com/lixenwraith/keybridge/widget"
)

// Metric keys written by the demo loop
const (
	metricFieldChanges = "field.changes"
	metricUnhandled    = "field.unhandled"
	metricSubmitted    = "field.submitted"
)

// ringer is the audible reject feedback
type ringer interface {
	Ring() bool
	SetMuted(muted bool) bool
}

// app drives the edit field from the translator on a single goroutine
type app struct {
	log   *slog.Logger
	tr    *translator.Translator
	field *widget.EditField
	bell  ringer
	view  *screenView // nil when the backend owns no tcell screen
	cmd   uint32

	reloads chan *config.Config

	submitted     []string
	submitPending bool
	caretShown    bool

	mChanges   *atomic.Int64
	mUnhandled *atomic.Int64
	mSubmitted *atomic.Int64
}

func newApp(log *slog.Logger, tr *translator.Translator, reg *status.Registry, bell ringer, view *screenView, cfg *config.Config) *app {
	a := &app{
		log:        log,
		tr:         tr,
		bell:       bell,
		view:       view,
		cmd:        cfg.Field.Command,
		reloads:    make(chan *config.Config, 1),
		mChanges:   reg.Ints.Get(metricFieldChanges),
		mUnhandled: reg.Ints.Get(metricUnhandled),
		mSubmitted: reg.Ints.Get(metricSubmitted),
	}

	opts := widget.Options{
		Width:         cfg.Field.Width,
		Command:       cfg.Field.Command,
		BlinkInterval: cfg.Field.BlinkInterval(),
		EmacsLineKeys: cfg.Field.EmacsLineKeys,
		Owner:         a,
		Sender:        a,
	}
	if view != nil {
		opts.Metrics = view.metrics
		opts.Painter = view
	}
	a.field = widget.NewEditField(opts)
	if view != nil {
		view.field = a.field
	}
	return a
}

// Enabled implements widget.Owner
func (a *app) Enabled() bool { return true }

// EndEditMode implements widget.Owner
// The field is cleared once the key handler returns
func (a *app) EndEditMode() { a.submitPending = true }

// AbortEditMode implements widget.Owner
func (a *app) AbortEditMode() { a.tr.Exit().Request() }

// SendCommand implements widget.CommandSender
func (a *app) SendCommand(cmd uint32, data uint32) {
	if cmd != a.cmd {
		return
	}
	a.mChanges.Add(1)
}

// onConfigChange hands a reloaded config to the run loop, dropping a stale pending one
func (a *app) onConfigChange(cfg *config.Config) {
	select {
	case <-a.reloads:
	default:
	}
	a.reloads <- cfg
}

func (a *app) applyConfig(cfg *config.Config) {
	a.field.SetWidth(cfg.Field.Width)
	a.bell.SetMuted(!cfg.Sound.Enabled)
	a.log.Info("config applied", "field_width", cfg.Field.Width, "sound", cfg.Sound.Enabled)
	a.redraw()
}

// run steps the loop every tick until an exit is requested
func (a *app) run(tick time.Duration) {
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	a.redraw()
	for {
		select {
		case <-a.tr.Exit().Done():
			return
		case cfg := <-a.reloads:
			a.applyConfig(cfg)
		case <-ticker.C:
			a.step()
		}
	}
}

// step drains pending keys and events, advances the caret blink and redraws on change
func (a *app) step() {
	redraw := false

	for {
		ks, ok := a.tr.ReadKeyState()
		if !ok {
			break
		}
		a.handleKey(ks)
		redraw = true
	}

	for ev := a.tr.ReadEvent(); ev.Type != host.EventNone; ev = a.tr.ReadEvent() {
		a.log.Debug("host event", "event", ev.String())
		switch ev.Type {
		case host.EventMouseDown:
			a.placeCaret(ev.Mouse)
			redraw = true
		case host.EventResize:
			redraw = true
		}
	}

	a.field.Tick()
	if a.field.CaretVisible() != a.caretShown {
		a.caretShown = a.field.CaretVisible()
		redraw = true
	}

	if redraw || a.field.Dirty() {
		a.redraw()
	}
}

func (a *app) handleKey(ks host.KeyState) {
	handled := a.field.HandleKeyDown(ks)
	if !handled {
		a.mUnhandled.Add(1)
		a.bell.Ring()
	}

	sc := keymap.ScancodeOf(ks.Code)
	a.log.Debug("key", "code", ks.Code.String(), "scancode", sc.String(), "handled", handled)
	if a.view != nil {
		mark := ""
		if !handled {
			mark = "unhandled"
		}
		a.view.logKey(fmt.Sprintf("%-12s %-14s %#06x %s", ks.Code, sc, keymap.Encode(ks), mark))
	}

	if a.submitPending {
		a.submitPending = false
		text := a.field.Text()
		a.submitted = append(a.submitted, text)
		a.mSubmitted.Add(1)
		a.log.Info("field submitted", "text", text)
		a.field.SetText("")
	}
}

// placeCaret moves the caret to the character under a click on the field row
func (a *app) placeCaret(p host.Point) {
	if a.view == nil || p.Y != fieldY {
		return
	}
	target := p.X - fieldX + a.field.ScrollOffset()
	buf := []byte(a.field.Text())
	pos, x := 0, 0
	for pos < len(buf) {
		w := a.view.metrics.CharWidth(buf[pos])
		if x+w > target {
			break
		}
		x += w
		pos++
	}
	a.field.MoveCaret(pos)
}

func (a *app) redraw() {
	if a.view != nil {
		a.view.render()
	}
	a.field.ClearDirty()
}
