package tcellhost

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keybridge/host"
)

// namedKeys maps tcell special keys to host keycodes
var namedKeys = map[tcell.Key]host.KeyCode{
	tcell.KeyUp:         host.KeyUp,
	tcell.KeyDown:       host.KeyDown,
	tcell.KeyRight:      host.KeyRight,
	tcell.KeyLeft:       host.KeyLeft,
	tcell.KeyPgUp:       host.KeyPageUp,
	tcell.KeyPgDn:       host.KeyPageDown,
	tcell.KeyHome:       host.KeyHome,
	tcell.KeyEnd:        host.KeyEnd,
	tcell.KeyInsert:     host.KeyInsert,
	tcell.KeyDelete:     host.KeyDelete,
	tcell.KeyHelp:       host.KeyHelp,
	tcell.KeyClear:      host.KeyClear,
	tcell.KeyPrint:      host.KeyPrint,
	tcell.KeyPause:      host.KeyPause,
	tcell.KeyMenu:       host.KeyMenu,
	tcell.KeyCapsLock:   host.KeyCapsLock,
	tcell.KeyScrollLock: host.KeyScrollLock,
	tcell.KeyNumLock:    host.KeyNumLock,
	tcell.KeyBackspace:  host.KeyBackspace,
	tcell.KeyTab:        host.KeyTab,
	tcell.KeyEnter:      host.KeyReturn,
	tcell.KeyEscape:     host.KeyEscape,
}

// namedAscii is the character payload of named keys that have one
var namedAscii = map[host.KeyCode]uint16{
	host.KeyBackspace: 8,
	host.KeyTab:       9,
	host.KeyReturn:    13,
	host.KeyEscape:    27,
	host.KeyDelete:    127,
}

// Converter turns tcell events into host events
// Mouse button state is tracked across calls to derive press and release
type Converter struct {
	buttons tcell.ButtonMask
}

// Convert translates one tcell event
// Key presses yield a down immediately followed by an up; terminals report no releases
func (c *Converter) Convert(ev tcell.Event) []host.Event {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		ks, ok := ConvertKey(ev.Key(), ev.Rune(), ev.Modifiers())
		if !ok {
			return nil
		}
		return []host.Event{
			{Type: host.EventKeyDown, Kbd: ks},
			host.KeyUpEvent(ks.Code, ks.Flags),
		}

	case *tcell.EventMouse:
		return c.convertMouse(ev)

	case *tcell.EventResize:
		w, h := ev.Size()
		return []host.Event{{Type: host.EventResize, Mouse: host.Point{X: w, Y: h}}}

	case *tcell.EventInterrupt:
		return []host.Event{{Type: host.EventQuit}}

	case nil:
		return nil
	}
	return []host.Event{{Type: host.EventOther}}
}

func (c *Converter) convertMouse(ev *tcell.EventMouse) []host.Event {
	x, y := ev.Position()
	pos := host.Point{X: x, Y: y}
	btn := ev.Buttons()

	var out []host.Event
	if btn&tcell.WheelUp != 0 {
		out = append(out, host.Event{Type: host.EventWheelUp, Mouse: pos})
	}
	if btn&tcell.WheelDown != 0 {
		out = append(out, host.Event{Type: host.EventWheelDown, Mouse: pos})
	}

	const buttonMask = tcell.Button1 | tcell.Button2 | tcell.Button3
	now := btn & buttonMask
	prev := c.buttons
	c.buttons = now

	switch {
	case now&^prev != 0:
		out = append(out, host.Event{Type: host.EventMouseDown, Mouse: pos})
	case prev&^now != 0:
		out = append(out, host.Event{Type: host.EventMouseUp, Mouse: pos})
	case len(out) == 0:
		out = append(out, host.MouseMoveEvent(x, y))
	}
	return out
}

// ConvertKey translates a tcell key triple into a host keystroke
// Returns false for keys with no host equivalent
func ConvertKey(k tcell.Key, r rune, mod tcell.ModMask) (host.KeyState, bool) {
	flags := convertMods(mod)

	switch {
	case k == tcell.KeyRune:
		return convertRune(r, flags), true

	case k >= tcell.KeyCtrlA && k <= tcell.KeyCtrlZ:
		off := k - tcell.KeyCtrlA
		return host.KeyState{
			Code:  host.KeyA + host.KeyCode(off),
			Flags: flags | host.FlagCtrl,
			Ascii: uint16(off) + 1,
		}, true

	case k >= tcell.KeyF1 && k <= tcell.KeyF15:
		return host.KeyState{Code: host.KeyF1 + host.KeyCode(k-tcell.KeyF1), Flags: flags}, true

	case k == tcell.KeyBacktab:
		return host.KeyState{Code: host.KeyTab, Flags: flags | host.FlagShift, Ascii: 9}, true
	}

	if code, ok := namedKeys[k]; ok {
		return host.KeyState{Code: code, Flags: flags, Ascii: namedAscii[code]}, true
	}
	return host.KeyState{}, false
}

func convertRune(r rune, flags host.KeyFlags) host.KeyState {
	ks := host.KeyState{Flags: flags}
	if r < 256 {
		ks.Ascii = uint16(r)
	}

	switch {
	case r >= 'A' && r <= 'Z':
		ks.Code = host.KeyCode(r - 'A' + 'a')
		ks.Flags |= host.FlagShift
	case r < 256:
		ks.Code = host.KeyCode(r)
	default:
		ks.Code = host.KeyInvalid
	}
	return ks
}

func convertMods(mod tcell.ModMask) host.KeyFlags {
	var f host.KeyFlags
	if mod&tcell.ModShift != 0 {
		f |= host.FlagShift
	}
	if mod&tcell.ModCtrl != 0 {
		f |= host.FlagCtrl
	}
	if mod&tcell.ModAlt != 0 {
		f |= host.FlagAlt
	}
	if mod&tcell.ModMeta != 0 {
		f |= host.FlagMeta
	}
	return f
}
