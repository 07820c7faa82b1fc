// Package translator turns a host input stream into the legacy machine's
// keyboard and joystick model.
//
// A Translator keeps a key-state table indexed by legacy scancode, a FIFO of
// pending keystrokes, a FIFO of untranslated non-keyboard events and live
// joystick arrays. It is owned by a single run loop; every query polls the
// host source first so callers observe the freshest state.
package translator

import (
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/lixenwraith/keybridge/host"
	"github.com/lixenwraith/keybridge/keymap"
	"github.com/lixenwraith/keybridge/status"
)

// MaxJoystick bounds joystick axis and button indices
const MaxJoystick = 32

// pollSmoothing weights each poll duration sample in the published average
const pollSmoothing = 0.1

// Translator is the input event translator
type Translator struct {
	src    host.Source
	warper host.MouseWarper
	exit   *status.Exit
	log    *slog.Logger

	keys          [keymap.KeyMax]bool
	pendingKeys   fifo[host.KeyState]
	pendingEvents fifo[host.Event]

	joyAxis   [MaxJoystick]int16
	joyButton [MaxJoystick]bool

	// Cached metric pointers
	mEvents        *atomic.Int64
	mKeysQueued    *atomic.Int64
	mCoalesced     *atomic.Int64
	mPendingKeys   *atomic.Int64
	mPendingEvents *atomic.Int64
	mExit          *atomic.Bool
	mLastKey       *status.AtomicString
	mPollMicros    *status.AtomicFloat
}

// Option configures a Translator
type Option func(*Translator)

// WithWarper routes WarpMouse to the host pointer
func WithWarper(w host.MouseWarper) Option {
	return func(t *Translator) { t.warper = w }
}

// WithExit shares an exit status owned by the caller
func WithExit(e *status.Exit) Option {
	return func(t *Translator) { t.exit = e }
}

// WithLogger sets the logger; defaults to slog.Default
func WithLogger(l *slog.Logger) Option {
	return func(t *Translator) { t.log = l }
}

// WithRegistry publishes counters into reg
func WithRegistry(reg *status.Registry) Option {
	return func(t *Translator) { t.bindMetrics(reg) }
}

// New creates a translator reading from src
func New(src host.Source, opts ...Option) *Translator {
	t := &Translator{src: src}
	for _, opt := range opts {
		opt(t)
	}
	if t.exit == nil {
		t.exit = status.NewExit()
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.mEvents == nil {
		t.bindMetrics(status.NewRegistry())
	}
	return t
}

func (t *Translator) bindMetrics(reg *status.Registry) {
	t.mEvents = reg.Ints.Get(status.MetricEvents)
	t.mKeysQueued = reg.Ints.Get(status.MetricKeysQueued)
	t.mCoalesced = reg.Ints.Get(status.MetricMouseCoalesced)
	t.mPendingKeys = reg.Ints.Get(status.MetricPendingKeys)
	t.mPendingEvents = reg.Ints.Get(status.MetricPendingEvents)
	t.mExit = reg.Bools.Get(status.MetricExitRequested)
	t.mLastKey = reg.Strings.Get(status.MetricLastKey)
	t.mPollMicros = reg.Floats.Get(status.MetricPollMicros)
}

// Exit returns the exit status raised by quit events
func (t *Translator) Exit() *status.Exit {
	return t.exit
}

// Poll drains every event currently available from the host source
func (t *Translator) Poll() {
	start := time.Now()
	var ev host.Event
	for t.src.PollEvent(&ev) {
		t.mEvents.Add(1)
		t.dispatch(ev)
	}
	t.mPendingKeys.Store(int64(t.pendingKeys.len()))
	t.mPendingEvents.Store(int64(t.pendingEvents.len()))
	t.mPollMicros.Smooth(float64(time.Since(start).Microseconds()), pollSmoothing)
}

func (t *Translator) dispatch(ev host.Event) {
	switch ev.Type {
	case host.EventQuit, host.EventReturnToLauncher:
		if !t.exit.WantExit() {
			t.log.Info("exit requested", "event", ev.Type.String())
		}
		t.exit.Request()
		t.mExit.Store(true)

	case host.EventJoyAxisMotion:
		mustJoyIndex("axis", ev.Joystick.Axis)
		t.joyAxis[ev.Joystick.Axis] = ev.Joystick.Position

	case host.EventJoyButtonDown:
		mustJoyIndex("button", ev.Joystick.Button)
		t.joyButton[ev.Joystick.Button] = true

	case host.EventJoyButtonUp:
		mustJoyIndex("button", ev.Joystick.Button)
		t.joyButton[ev.Joystick.Button] = false

	case host.EventKeyDown:
		t.updateKeys(ev.Kbd, true)
		if !keymap.IsModifier(ev.Kbd.Code) {
			t.pendingKeys.push(ev.Kbd)
			t.mKeysQueued.Add(1)
		}

	case host.EventKeyUp:
		t.updateKeys(ev.Kbd, false)

	default:
		// A mouse move following a mouse move replaces it
		if ev.Type == host.EventMouseMove && !t.pendingEvents.empty() &&
			t.pendingEvents.back().Type == host.EventMouseMove {
			*t.pendingEvents.back() = ev
			t.mCoalesced.Add(1)
			return
		}
		t.pendingEvents.push(ev)
	}
}

// mustJoyIndex panics on indices the host contract rules out
func mustJoyIndex(kind string, idx int) {
	if idx < 0 || idx >= MaxJoystick {
		panic(fmt.Sprintf("joystick %s index %d out of range [0,%d)", kind, idx, MaxJoystick))
	}
}

func (t *Translator) updateKeys(ks host.KeyState, down bool) {
	if sc := keymap.ScancodeOf(ks.Code); sc != keymap.KeyNone {
		t.keys[sc] = down
	}
}

// KeyPressed polls and reports whether a keystroke is waiting
func (t *Translator) KeyPressed() bool {
	t.Poll()
	return !t.pendingKeys.empty()
}

// ReadKey polls and pops the oldest keystroke as an encoded legacy code
// Returns 0 when no keystroke is pending
func (t *Translator) ReadKey() int {
	t.Poll()
	if t.pendingKeys.empty() {
		return 0
	}
	ks := t.pendingKeys.pop()
	t.mPendingKeys.Store(int64(t.pendingKeys.len()))
	t.mLastKey.Store(keymap.ScancodeOf(ks.Code).String())
	return keymap.Encode(ks)
}

// ReadKeyState polls and pops the oldest raw keystroke
// ok is false when no keystroke is pending
func (t *Translator) ReadKeyState() (ks host.KeyState, ok bool) {
	t.Poll()
	if t.pendingKeys.empty() {
		return host.KeyState{}, false
	}
	ks = t.pendingKeys.pop()
	t.mPendingKeys.Store(int64(t.pendingKeys.len()))
	t.mLastKey.Store(keymap.ScancodeOf(ks.Code).String())
	return ks, true
}

// ReadEvent polls and pops the oldest non-keyboard event
// Returns the zero Event (EventNone) when nothing is pending
func (t *Translator) ReadEvent() host.Event {
	t.Poll()
	if t.pendingEvents.empty() {
		return host.Event{}
	}
	ev := t.pendingEvents.pop()
	t.mPendingEvents.Store(int64(t.pendingEvents.len()))
	return ev
}

// IsKeyPressed reports the held state of a legacy scancode
func (t *Translator) IsKeyPressed(sc keymap.Scancode) bool {
	if sc < 0 || int(sc) >= len(t.keys) {
		return false
	}
	return t.keys[sc]
}

// ModifierFlags returns the legacy modifier flags of the oldest pending keystroke
// This is a snapshot of that keystroke, not live modifier state; 0 when none is pending
func (t *Translator) ModifierFlags() keymap.ModFlags {
	if t.pendingKeys.empty() {
		return 0
	}
	return keymap.Flags(t.pendingKeys.front().Flags)
}

// WarpMouse moves the host pointer when a warper is configured
func (t *Translator) WarpMouse(p host.Point) {
	if t.warper != nil {
		t.warper.WarpMouse(p)
	}
}

// JoystickAxis returns the last reported position of axis i
func (t *Translator) JoystickAxis(i int) int16 {
	mustJoyIndex("axis", i)
	return t.joyAxis[i]
}

// JoystickButton returns the held state of button i
func (t *Translator) JoystickButton(i int) bool {
	mustJoyIndex("button", i)
	return t.joyButton[i]
}
