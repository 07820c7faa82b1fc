package termboxhost

import (
	"github.com/nsf/termbox-go"

	"github.com/lixenwraith/keybridge/host"
)

// namedKeys maps termbox special keys to host keycodes and their character payload
var namedKeys = map[termbox.Key]host.KeyState{
	termbox.KeyInsert:     {Code: host.KeyInsert},
	termbox.KeyDelete:     {Code: host.KeyDelete, Ascii: 127},
	termbox.KeyHome:       {Code: host.KeyHome},
	termbox.KeyEnd:        {Code: host.KeyEnd},
	termbox.KeyPgup:       {Code: host.KeyPageUp},
	termbox.KeyPgdn:       {Code: host.KeyPageDown},
	termbox.KeyArrowUp:    {Code: host.KeyUp},
	termbox.KeyArrowDown:  {Code: host.KeyDown},
	termbox.KeyArrowLeft:  {Code: host.KeyLeft},
	termbox.KeyArrowRight: {Code: host.KeyRight},
	termbox.KeyBackspace:  {Code: host.KeyBackspace, Ascii: 8},
	termbox.KeyBackspace2: {Code: host.KeyBackspace, Ascii: 8},
	termbox.KeyTab:        {Code: host.KeyTab, Ascii: 9},
	termbox.KeyEnter:      {Code: host.KeyReturn, Ascii: 13},
	termbox.KeyEsc:        {Code: host.KeyEscape, Ascii: 27},
	termbox.KeySpace:      {Code: host.KeySpace, Ascii: ' '},
}

// Convert translates one termbox event
// Key presses yield a down immediately followed by an up
func Convert(ev termbox.Event) []host.Event {
	switch ev.Type {
	case termbox.EventKey:
		ks, ok := ConvertKey(ev.Key, ev.Ch, ev.Mod)
		if !ok {
			return nil
		}
		return []host.Event{
			{Type: host.EventKeyDown, Kbd: ks},
			host.KeyUpEvent(ks.Code, ks.Flags),
		}

	case termbox.EventMouse:
		return []host.Event{convertMouse(ev)}

	case termbox.EventResize:
		return []host.Event{{Type: host.EventResize, Mouse: host.Point{X: ev.Width, Y: ev.Height}}}

	case termbox.EventNone, termbox.EventError:
		return nil
	}
	return []host.Event{{Type: host.EventOther}}
}

func convertMouse(ev termbox.Event) host.Event {
	pos := host.Point{X: ev.MouseX, Y: ev.MouseY}
	motion := ev.Mod&termbox.ModMotion != 0

	switch ev.Key {
	case termbox.MouseWheelUp:
		return host.Event{Type: host.EventWheelUp, Mouse: pos}
	case termbox.MouseWheelDown:
		return host.Event{Type: host.EventWheelDown, Mouse: pos}
	case termbox.MouseRelease:
		if motion {
			return host.Event{Type: host.EventMouseMove, Mouse: pos}
		}
		return host.Event{Type: host.EventMouseUp, Mouse: pos}
	}
	if motion {
		return host.Event{Type: host.EventMouseMove, Mouse: pos}
	}
	return host.Event{Type: host.EventMouseDown, Mouse: pos}
}

// ConvertKey translates a termbox key or character into a host keystroke
// Returns false for keys with no host equivalent
func ConvertKey(k termbox.Key, ch rune, mod termbox.Modifier) (host.KeyState, bool) {
	var flags host.KeyFlags
	if mod&termbox.ModAlt != 0 {
		flags |= host.FlagAlt
	}

	if ch != 0 {
		ks := host.KeyState{Flags: flags}
		switch {
		case ch >= 'A' && ch <= 'Z':
			ks.Code = host.KeyCode(ch - 'A' + 'a')
			ks.Flags |= host.FlagShift
		case ch < 256:
			ks.Code = host.KeyCode(ch)
		default:
			ks.Code = host.KeyInvalid
		}
		if ch < 256 {
			ks.Ascii = uint16(ch)
		}
		return ks, true
	}

	// Named keys first: backspace, tab and enter share codes with ctrl+h, ctrl+i and ctrl+m
	if ks, ok := namedKeys[k]; ok {
		ks.Flags |= flags
		return ks, true
	}

	switch {
	case k <= termbox.KeyF1 && k >= termbox.KeyF12:
		return host.KeyState{Code: host.KeyF1 + host.KeyCode(termbox.KeyF1-k), Flags: flags}, true

	case k >= termbox.KeyCtrlA && k <= termbox.KeyCtrlZ:
		off := k - termbox.KeyCtrlA
		return host.KeyState{
			Code:  host.KeyA + host.KeyCode(off),
			Flags: flags | host.FlagCtrl,
			Ascii: uint16(k),
		}, true
	}
	return host.KeyState{}, false
}
