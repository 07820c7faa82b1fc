// Package keymap defines the legacy machine's keyboard model: scancodes,
// modifier flags and the mapping from host key codes.
//
// Scancode values and flag bits follow the Allegro 4 layout that legacy game
// scripts compare against, so they must stay bit-exact.
package keymap

import (
	"strconv"

	"github.com/lixenwraith/keybridge/host"
)

// Scancode is a legacy keyboard position code
type Scancode int

const (
	KeyNone Scancode = 0

	KeyA Scancode = 1
	KeyB Scancode = 2
	KeyC Scancode = 3
	KeyD Scancode = 4
	KeyE Scancode = 5
	KeyF Scancode = 6
	KeyG Scancode = 7
	KeyH Scancode = 8
	KeyI Scancode = 9
	KeyJ Scancode = 10
	KeyK Scancode = 11
	KeyL Scancode = 12
	KeyM Scancode = 13
	KeyN Scancode = 14
	KeyO Scancode = 15
	KeyP Scancode = 16
	KeyQ Scancode = 17
	KeyR Scancode = 18
	KeyS Scancode = 19
	KeyT Scancode = 20
	KeyU Scancode = 21
	KeyV Scancode = 22
	KeyW Scancode = 23
	KeyX Scancode = 24
	KeyY Scancode = 25
	KeyZ Scancode = 26

	Key0 Scancode = 27
	Key1 Scancode = 28
	Key2 Scancode = 29
	Key3 Scancode = 30
	Key4 Scancode = 31
	Key5 Scancode = 32
	Key6 Scancode = 33
	Key7 Scancode = 34
	Key8 Scancode = 35
	Key9 Scancode = 36

	Key0Pad Scancode = 37
	Key1Pad Scancode = 38
	Key2Pad Scancode = 39
	Key3Pad Scancode = 40
	Key4Pad Scancode = 41
	Key5Pad Scancode = 42
	Key6Pad Scancode = 43
	Key7Pad Scancode = 44
	Key8Pad Scancode = 45
	Key9Pad Scancode = 46

	KeyF1  Scancode = 47
	KeyF2  Scancode = 48
	KeyF3  Scancode = 49
	KeyF4  Scancode = 50
	KeyF5  Scancode = 51
	KeyF6  Scancode = 52
	KeyF7  Scancode = 53
	KeyF8  Scancode = 54
	KeyF9  Scancode = 55
	KeyF10 Scancode = 56
	KeyF11 Scancode = 57
	KeyF12 Scancode = 58

	KeyEsc        Scancode = 59
	KeyTilde      Scancode = 60
	KeyMinus      Scancode = 61
	KeyEquals     Scancode = 62
	KeyBackspace  Scancode = 63
	KeyTab        Scancode = 64
	KeyOpenBrace  Scancode = 65
	KeyCloseBrace Scancode = 66
	KeyEnter      Scancode = 67
	KeyColon      Scancode = 68
	KeyQuote      Scancode = 69
	KeyBackslash  Scancode = 70
	KeyBackslash2 Scancode = 71
	KeyComma      Scancode = 72
	KeyStop       Scancode = 73
	KeySlash      Scancode = 74
	KeySpace      Scancode = 75
	KeyInsert     Scancode = 76
	KeyDel        Scancode = 77
	KeyHome       Scancode = 78
	KeyEnd        Scancode = 79
	KeyPgUp       Scancode = 80
	KeyPgDn       Scancode = 81
	KeyLeft       Scancode = 82
	KeyRight      Scancode = 83
	KeyUp         Scancode = 84
	KeyDown       Scancode = 85
	KeySlashPad   Scancode = 86
	KeyAsterisk   Scancode = 87
	KeyMinusPad   Scancode = 88
	KeyPlusPad    Scancode = 89
	KeyDelPad     Scancode = 90
	KeyEnterPad   Scancode = 91
	KeyPrtScr     Scancode = 92
	KeyPause      Scancode = 93
	KeySemicolon  Scancode = 105

	KeyLShift   Scancode = 115
	KeyRShift   Scancode = 116
	KeyLControl Scancode = 117
	KeyRControl Scancode = 118
	KeyAlt      Scancode = 119
	KeyAltGr    Scancode = 120
	KeyLWin     Scancode = 121
	KeyRWin     Scancode = 122
	KeyMenu     Scancode = 123
	KeyScrLock  Scancode = 124
	KeyNumLock  Scancode = 125
	KeyCapsLock Scancode = 126

	// KeyMax is the size of the scancode space
	KeyMax = 127
)

// ExtendedKeyCode is the low-byte marker for extended keys in encoded keystrokes
const ExtendedKeyCode = 0

// namedKeys maps host keys outside the contiguous ranges
// One-to-one except left/right Alt, which share the legacy Alt position
var namedKeys = map[host.KeyCode]Scancode{
	host.KeyEscape:       KeyEsc,
	host.KeyTilde:        KeyTilde,
	host.KeyMinus:        KeyMinus,
	host.KeyEquals:       KeyEquals,
	host.KeyBackspace:    KeyBackspace,
	host.KeyTab:          KeyTab,
	host.KeyLeftBracket:  KeyOpenBrace,
	host.KeyRightBracket: KeyCloseBrace,
	host.KeyReturn:       KeyEnter,
	host.KeyColon:        KeyColon,
	host.KeyQuote:        KeyQuote,
	host.KeyBackslash:    KeyBackslash,
	host.KeyComma:        KeyComma,
	host.KeySlash:        KeySlash,
	host.KeySpace:        KeySpace,
	host.KeyInsert:       KeyInsert,
	host.KeyDelete:       KeyDel,
	host.KeyHome:         KeyHome,
	host.KeyEnd:          KeyEnd,
	host.KeyPageUp:       KeyPgUp,
	host.KeyPageDown:     KeyPgDn,
	host.KeyLeft:         KeyLeft,
	host.KeyRight:        KeyRight,
	host.KeyUp:           KeyUp,
	host.KeyDown:         KeyDown,
	host.KeyKPDivide:     KeySlashPad,
	host.KeyAsterisk:     KeyAsterisk,
	host.KeyKPMinus:      KeyMinusPad,
	host.KeyKPPlus:       KeyPlusPad,
	host.KeyKPPeriod:     KeyDelPad,
	host.KeyKPEnter:      KeyEnterPad,
	host.KeyPrint:        KeyPrtScr,
	host.KeyPause:        KeyPause,
	host.KeySemicolon:    KeySemicolon,

	host.KeyLShift:     KeyLShift,
	host.KeyRShift:     KeyRShift,
	host.KeyLCtrl:      KeyLControl,
	host.KeyRCtrl:      KeyRControl,
	host.KeyLAlt:       KeyAlt,
	host.KeyRAlt:       KeyAlt,
	host.KeyScrollLock: KeyScrLock,
	host.KeyNumLock:    KeyNumLock,
	host.KeyCapsLock:   KeyCapsLock,
}

// ScancodeOf maps a host key to its legacy scancode
// Unmapped keys return KeyNone
func ScancodeOf(code host.KeyCode) Scancode {
	switch {
	case code >= host.KeyA && code <= host.KeyZ:
		return Scancode(code-host.KeyA) + KeyA
	case code >= host.Key0 && code <= host.Key9:
		return Scancode(code-host.Key0) + Key0
	case code >= host.KeyKP0 && code <= host.KeyKP9:
		return Scancode(code-host.KeyKP0) + Key0Pad
	case code >= host.KeyF1 && code <= host.KeyF12:
		return Scancode(code-host.KeyF1) + KeyF1
	}
	return namedKeys[code]
}

// extendedKeys report the extended marker instead of a character payload
var extendedKeys = map[host.KeyCode]struct{}{
	host.KeyF1: {}, host.KeyF2: {}, host.KeyF3: {}, host.KeyF4: {},
	host.KeyF5: {}, host.KeyF6: {}, host.KeyF7: {}, host.KeyF8: {},
	host.KeyF9: {}, host.KeyF10: {}, host.KeyF11: {}, host.KeyF12: {},
	host.KeyKP0: {}, host.KeyKP1: {}, host.KeyKP2: {}, host.KeyKP3: {},
	host.KeyKP4: {}, host.KeyKP5: {}, host.KeyKP6: {}, host.KeyKP7: {},
	host.KeyKP8: {}, host.KeyKP9: {}, host.KeyKPPeriod: {},
	host.KeyInsert: {}, host.KeyDelete: {},
	host.KeyHome: {}, host.KeyEnd: {},
	host.KeyPageUp: {}, host.KeyPageDown: {},
	host.KeyLeft: {}, host.KeyRight: {},
	host.KeyUp: {}, host.KeyDown: {},
}

// IsExtended reports whether the key encodes with ExtendedKeyCode
func IsExtended(code host.KeyCode) bool {
	_, ok := extendedKeys[code]
	return ok
}

// IsModifier reports whether the key is a pure modifier or lock key
func IsModifier(code host.KeyCode) bool {
	switch code {
	case host.KeyLCtrl, host.KeyRCtrl,
		host.KeyLAlt, host.KeyRAlt,
		host.KeyLShift, host.KeyRShift,
		host.KeyLSuper, host.KeyRSuper,
		host.KeyCapsLock, host.KeyNumLock, host.KeyScrollLock:
		return true
	}
	return false
}

// Encode packs a keystroke as (scancode << 8) | payload
// Payload: ExtendedKeyCode for extended keys, ascii without ctrl/alt, scancode otherwise
func Encode(ks host.KeyState) int {
	sc := int(ScancodeOf(ks.Code))
	code := sc << 8

	switch {
	case IsExtended(ks.Code):
		code |= ExtendedKeyCode
	case !ks.Flags.Has(host.FlagCtrl | host.FlagAlt):
		code |= int(ks.Ascii)
	default:
		code |= sc
	}
	return code
}

var scancodeNames = map[Scancode]string{
	KeyEsc: "ESC", KeyTilde: "TILDE", KeyMinus: "MINUS", KeyEquals: "EQUALS",
	KeyBackspace: "BACKSPACE", KeyTab: "TAB", KeyOpenBrace: "OPENBRACE",
	KeyCloseBrace: "CLOSEBRACE", KeyEnter: "ENTER", KeyColon: "COLON",
	KeyQuote: "QUOTE", KeyBackslash: "BACKSLASH", KeyBackslash2: "BACKSLASH2",
	KeyComma: "COMMA", KeyStop: "STOP", KeySlash: "SLASH", KeySpace: "SPACE",
	KeyInsert: "INSERT", KeyDel: "DEL", KeyHome: "HOME", KeyEnd: "END",
	KeyPgUp: "PGUP", KeyPgDn: "PGDN", KeyLeft: "LEFT", KeyRight: "RIGHT",
	KeyUp: "UP", KeyDown: "DOWN", KeySlashPad: "SLASH_PAD",
	KeyAsterisk: "ASTERISK", KeyMinusPad: "MINUS_PAD", KeyPlusPad: "PLUS_PAD",
	KeyDelPad: "DEL_PAD", KeyEnterPad: "ENTER_PAD", KeyPrtScr: "PRTSCR",
	KeyPause: "PAUSE", KeySemicolon: "SEMICOLON",
	KeyLShift: "LSHIFT", KeyRShift: "RSHIFT", KeyLControl: "LCONTROL",
	KeyRControl: "RCONTROL", KeyAlt: "ALT", KeyAltGr: "ALTGR",
	KeyLWin: "LWIN", KeyRWin: "RWIN", KeyMenu: "MENU",
	KeyScrLock: "SCRLOCK", KeyNumLock: "NUMLOCK", KeyCapsLock: "CAPSLOCK",
}

// String returns the legacy KEY_* suffix
func (s Scancode) String() string {
	switch {
	case s == KeyNone:
		return "NONE"
	case s >= KeyA && s <= KeyZ:
		return string(rune('A' + int(s-KeyA)))
	case s >= Key0 && s <= Key9:
		return strconv.Itoa(int(s - Key0))
	case s >= Key0Pad && s <= Key9Pad:
		return strconv.Itoa(int(s-Key0Pad)) + "_PAD"
	case s >= KeyF1 && s <= KeyF12:
		return "F" + strconv.Itoa(int(s-KeyF1)+1)
	}
	if name, ok := scancodeNames[s]; ok {
		return name
	}
	return "KEY(" + strconv.Itoa(int(s)) + ")"
}
