// Package host models the input stream delivered by the host windowing layer.
//
// Backends (terminal, network) translate their native events into Event values
// and push them into a Ring. Consumers pull with PollEvent on a single goroutine.
package host

import "fmt"

// EventType distinguishes host event categories
type EventType uint8

const (
	EventNone EventType = iota // Empty sentinel
	EventQuit
	EventReturnToLauncher
	EventKeyDown
	EventKeyUp
	EventJoyAxisMotion
	EventJoyButtonDown
	EventJoyButtonUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventWheelUp
	EventWheelDown
	EventResize
	EventOther
)

var eventTypeNames = [...]string{
	EventNone:             "none",
	EventQuit:             "quit",
	EventReturnToLauncher: "return_to_launcher",
	EventKeyDown:          "key_down",
	EventKeyUp:            "key_up",
	EventJoyAxisMotion:    "joy_axis",
	EventJoyButtonDown:    "joy_button_down",
	EventJoyButtonUp:      "joy_button_up",
	EventMouseMove:        "mouse_move",
	EventMouseDown:        "mouse_down",
	EventMouseUp:          "mouse_up",
	EventWheelUp:          "wheel_up",
	EventWheelDown:        "wheel_down",
	EventResize:           "resize",
	EventOther:            "other",
}

func (t EventType) String() string {
	if int(t) < len(eventTypeNames) {
		return eventTypeNames[t]
	}
	return fmt.Sprintf("event(%d)", uint8(t))
}

// Point is a pointer position in host coordinates
type Point struct {
	X, Y int
}

// JoyState carries joystick axis or button data
type JoyState struct {
	Axis     int
	Button   int
	Position int16
}

// Event is a single host input event
// Zero value is the EventNone sentinel; EventResize carries the new size in Mouse
type Event struct {
	Type     EventType
	Kbd      KeyState
	Joystick JoyState
	Mouse    Point
}

func (e Event) String() string {
	switch e.Type {
	case EventKeyDown, EventKeyUp:
		return fmt.Sprintf("%s %s flags=%#02x ascii=%d", e.Type, e.Kbd.Code, uint8(e.Kbd.Flags), e.Kbd.Ascii)
	case EventJoyAxisMotion:
		return fmt.Sprintf("%s axis=%d pos=%d", e.Type, e.Joystick.Axis, e.Joystick.Position)
	case EventJoyButtonDown, EventJoyButtonUp:
		return fmt.Sprintf("%s button=%d", e.Type, e.Joystick.Button)
	case EventMouseMove, EventMouseDown, EventMouseUp, EventWheelUp, EventWheelDown:
		return fmt.Sprintf("%s (%d,%d)", e.Type, e.Mouse.X, e.Mouse.Y)
	}
	return e.Type.String()
}

// KeyDownEvent builds a key-down event
func KeyDownEvent(code KeyCode, flags KeyFlags, ascii uint16) Event {
	return Event{Type: EventKeyDown, Kbd: KeyState{Code: code, Flags: flags, Ascii: ascii}}
}

// KeyUpEvent builds a key-up event
func KeyUpEvent(code KeyCode, flags KeyFlags) Event {
	return Event{Type: EventKeyUp, Kbd: KeyState{Code: code, Flags: flags}}
}

// MouseMoveEvent builds a pointer motion event
func MouseMoveEvent(x, y int) Event {
	return Event{Type: EventMouseMove, Mouse: Point{X: x, Y: y}}
}

// Source is a pollable, non-blocking stream of host events
type Source interface {
	// PollEvent fills ev with the next pending event
	// Returns false when nothing is pending
	PollEvent(ev *Event) bool
}

// MouseWarper moves the host pointer
type MouseWarper interface {
	WarpMouse(p Point)
}
