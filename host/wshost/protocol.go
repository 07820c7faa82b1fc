package wshost

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/lixenwraith/keybridge/host"
)

// MessageType is the envelope discriminator
type MessageType string

const (
	// Client -> Server
	MsgKey       MessageType = "key"
	MsgMouse     MessageType = "mouse"
	MsgJoyAxis   MessageType = "joy_axis"
	MsgJoyButton MessageType = "joy_button"
	MsgQuit      MessageType = "quit"

	// Server -> Client
	MsgHello MessageType = "hello"
	MsgError MessageType = "error"
)

// maxJoystick mirrors the translator's joystick array bound
const maxJoystick = 32

// Message is the websocket message envelope
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// KeyPayload is a keystroke from the client
type KeyPayload struct {
	Down  bool `json:"down"`
	Code  int  `json:"code"`
	Flags int  `json:"flags"`
	Ascii int  `json:"ascii"`
}

// MousePayload is a pointer event; Action is "move", "down", "up", "wheel_up" or "wheel_down"
type MousePayload struct {
	Action string `json:"action"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

// JoyAxisPayload is a joystick axis motion
type JoyAxisPayload struct {
	Axis     int `json:"axis"`
	Position int `json:"position"`
}

// JoyButtonPayload is a joystick button transition
type JoyButtonPayload struct {
	Button int  `json:"button"`
	Down   bool `json:"down"`
}

// HelloPayload greets a newly connected client
type HelloPayload struct {
	PeerID string `json:"peer_id"`
}

// ErrorPayload reports a rejected message
type ErrorPayload struct {
	Error string `json:"error"`
}

var (
	ErrUnknownType   = errors.New("unknown message type")
	ErrOutOfRange    = errors.New("value out of range")
	ErrMissingField  = errors.New("missing payload")
	ErrUnknownAction = errors.New("unknown mouse action")
)

var mouseActions = map[string]host.EventType{
	"move":       host.EventMouseMove,
	"down":       host.EventMouseDown,
	"up":         host.EventMouseUp,
	"wheel_up":   host.EventWheelUp,
	"wheel_down": host.EventWheelDown,
}

// Decode parses one client message into a host event
// Values the translator would treat as contract violations are rejected here
func Decode(data []byte) (host.Event, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return host.Event{}, fmt.Errorf("decode envelope: %w", err)
	}

	switch msg.Type {
	case MsgQuit:
		return host.Event{Type: host.EventQuit}, nil

	case MsgKey:
		var p KeyPayload
		if err := decodePayload(msg, &p); err != nil {
			return host.Event{}, err
		}
		if p.Code < 0 || p.Code > math.MaxInt16 || p.Flags < 0 || p.Flags > math.MaxUint8 ||
			p.Ascii < 0 || p.Ascii > math.MaxUint16 {
			return host.Event{}, fmt.Errorf("key: %w", ErrOutOfRange)
		}
		flags := host.KeyFlags(p.Flags)
		if p.Down {
			return host.KeyDownEvent(host.KeyCode(p.Code), flags, uint16(p.Ascii)), nil
		}
		return host.KeyUpEvent(host.KeyCode(p.Code), flags), nil

	case MsgMouse:
		var p MousePayload
		if err := decodePayload(msg, &p); err != nil {
			return host.Event{}, err
		}
		typ, ok := mouseActions[p.Action]
		if !ok {
			return host.Event{}, fmt.Errorf("mouse %q: %w", p.Action, ErrUnknownAction)
		}
		return host.Event{Type: typ, Mouse: host.Point{X: p.X, Y: p.Y}}, nil

	case MsgJoyAxis:
		var p JoyAxisPayload
		if err := decodePayload(msg, &p); err != nil {
			return host.Event{}, err
		}
		if p.Axis < 0 || p.Axis >= maxJoystick || p.Position < math.MinInt16 || p.Position > math.MaxInt16 {
			return host.Event{}, fmt.Errorf("joy_axis: %w", ErrOutOfRange)
		}
		return host.Event{
			Type:     host.EventJoyAxisMotion,
			Joystick: host.JoyState{Axis: p.Axis, Position: int16(p.Position)},
		}, nil

	case MsgJoyButton:
		var p JoyButtonPayload
		if err := decodePayload(msg, &p); err != nil {
			return host.Event{}, err
		}
		if p.Button < 0 || p.Button >= maxJoystick {
			return host.Event{}, fmt.Errorf("joy_button: %w", ErrOutOfRange)
		}
		typ := host.EventJoyButtonUp
		if p.Down {
			typ = host.EventJoyButtonDown
		}
		return host.Event{Type: typ, Joystick: host.JoyState{Button: p.Button}}, nil
	}

	return host.Event{}, fmt.Errorf("%q: %w", msg.Type, ErrUnknownType)
}

func decodePayload(msg Message, v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%s: %w", msg.Type, ErrMissingField)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%s payload: %w", msg.Type, err)
	}
	return nil
}

// Encode wraps a payload in an envelope
func Encode(typ MessageType, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Message{Type: typ, Payload: raw})
}
