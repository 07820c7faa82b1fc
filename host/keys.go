package host

import "strconv"

// KeyCode identifies a physical key as reported by the host windowing layer
// Values follow the SDL 1.x layout: printable keys use their ASCII value,
// keypad and navigation keys live above 255
type KeyCode int

const (
	KeyInvalid   KeyCode = 0
	KeyBackspace KeyCode = 8
	KeyTab       KeyCode = 9
	KeyClear     KeyCode = 12
	KeyReturn    KeyCode = 13
	KeyPause     KeyCode = 19
	KeyEscape    KeyCode = 27
	KeySpace     KeyCode = 32

	KeyExclaim    KeyCode = 33
	KeyQuoteDbl   KeyCode = 34
	KeyHash       KeyCode = 35
	KeyDollar     KeyCode = 36
	KeyAmpersand  KeyCode = 38
	KeyQuote      KeyCode = 39
	KeyLeftParen  KeyCode = 40
	KeyRightParen KeyCode = 41
	KeyAsterisk   KeyCode = 42
	KeyPlus       KeyCode = 43
	KeyComma      KeyCode = 44
	KeyMinus      KeyCode = 45
	KeyPeriod     KeyCode = 46
	KeySlash      KeyCode = 47

	Key0 KeyCode = 48
	Key1 KeyCode = 49
	Key2 KeyCode = 50
	Key3 KeyCode = 51
	Key4 KeyCode = 52
	Key5 KeyCode = 53
	Key6 KeyCode = 54
	Key7 KeyCode = 55
	Key8 KeyCode = 56
	Key9 KeyCode = 57

	KeyColon     KeyCode = 58
	KeySemicolon KeyCode = 59
	KeyLess      KeyCode = 60
	KeyEquals    KeyCode = 61
	KeyGreater   KeyCode = 62
	KeyQuestion  KeyCode = 63
	KeyAt        KeyCode = 64

	KeyLeftBracket  KeyCode = 91
	KeyBackslash    KeyCode = 92
	KeyRightBracket KeyCode = 93
	KeyCaret        KeyCode = 94
	KeyUnderscore   KeyCode = 95
	KeyBackquote    KeyCode = 96

	KeyA KeyCode = 97
	KeyB KeyCode = 98
	KeyC KeyCode = 99
	KeyD KeyCode = 100
	KeyE KeyCode = 101
	KeyF KeyCode = 102
	KeyG KeyCode = 103
	KeyH KeyCode = 104
	KeyI KeyCode = 105
	KeyJ KeyCode = 106
	KeyK KeyCode = 107
	KeyL KeyCode = 108
	KeyM KeyCode = 109
	KeyN KeyCode = 110
	KeyO KeyCode = 111
	KeyP KeyCode = 112
	KeyQ KeyCode = 113
	KeyR KeyCode = 114
	KeyS KeyCode = 115
	KeyT KeyCode = 116
	KeyU KeyCode = 117
	KeyV KeyCode = 118
	KeyW KeyCode = 119
	KeyX KeyCode = 120
	KeyY KeyCode = 121
	KeyZ KeyCode = 122

	KeyDelete KeyCode = 127
	KeyTilde  KeyCode = 176

	// Numeric keypad, consecutive from KP0 through KP period
	KeyKP0        KeyCode = 256
	KeyKP1        KeyCode = 257
	KeyKP2        KeyCode = 258
	KeyKP3        KeyCode = 259
	KeyKP4        KeyCode = 260
	KeyKP5        KeyCode = 261
	KeyKP6        KeyCode = 262
	KeyKP7        KeyCode = 263
	KeyKP8        KeyCode = 264
	KeyKP9        KeyCode = 265
	KeyKPPeriod   KeyCode = 266
	KeyKPDivide   KeyCode = 267
	KeyKPMultiply KeyCode = 268
	KeyKPMinus    KeyCode = 269
	KeyKPPlus     KeyCode = 270
	KeyKPEnter    KeyCode = 271
	KeyKPEquals   KeyCode = 272

	// Navigation
	KeyUp       KeyCode = 273
	KeyDown     KeyCode = 274
	KeyRight    KeyCode = 275
	KeyLeft     KeyCode = 276
	KeyInsert   KeyCode = 277
	KeyHome     KeyCode = 278
	KeyEnd      KeyCode = 279
	KeyPageUp   KeyCode = 280
	KeyPageDown KeyCode = 281

	// Function keys
	KeyF1  KeyCode = 282
	KeyF2  KeyCode = 283
	KeyF3  KeyCode = 284
	KeyF4  KeyCode = 285
	KeyF5  KeyCode = 286
	KeyF6  KeyCode = 287
	KeyF7  KeyCode = 288
	KeyF8  KeyCode = 289
	KeyF9  KeyCode = 290
	KeyF10 KeyCode = 291
	KeyF11 KeyCode = 292
	KeyF12 KeyCode = 293
	KeyF13 KeyCode = 294
	KeyF14 KeyCode = 295
	KeyF15 KeyCode = 296

	// Modifier and lock keys
	KeyNumLock    KeyCode = 300
	KeyCapsLock   KeyCode = 301
	KeyScrollLock KeyCode = 302
	KeyRShift     KeyCode = 303
	KeyLShift     KeyCode = 304
	KeyRCtrl      KeyCode = 305
	KeyLCtrl      KeyCode = 306
	KeyRAlt       KeyCode = 307
	KeyLAlt       KeyCode = 308
	KeyRMeta      KeyCode = 309
	KeyLMeta      KeyCode = 310
	KeyLSuper     KeyCode = 311
	KeyRSuper     KeyCode = 312

	KeyMode    KeyCode = 313
	KeyCompose KeyCode = 314
	KeyHelp    KeyCode = 315
	KeyPrint   KeyCode = 316
	KeySysReq  KeyCode = 317
	KeyBreak   KeyCode = 318
	KeyMenu    KeyCode = 319
)

// KeyFlags is the host modifier bitmask carried with every keystroke
type KeyFlags uint8

const (
	FlagShift KeyFlags = 1 << iota
	FlagCtrl
	FlagAlt
	FlagMeta
	FlagNum
	FlagCaps
	FlagScroll
)

// Has reports whether any of the bits in f are set
func (k KeyFlags) Has(f KeyFlags) bool {
	return k&f != 0
}

// KeyState is one keystroke record: key, held modifiers and character payload
type KeyState struct {
	Code  KeyCode
	Flags KeyFlags
	Ascii uint16
}

var keyNames = map[KeyCode]string{
	KeyBackspace:    "Backspace",
	KeyTab:          "Tab",
	KeyClear:        "Clear",
	KeyReturn:       "Return",
	KeyPause:        "Pause",
	KeyEscape:       "Escape",
	KeySpace:        "Space",
	KeyDelete:       "Delete",
	KeyTilde:        "Tilde",
	KeyKPPeriod:     "KP_Period",
	KeyKPDivide:     "KP_Divide",
	KeyKPMultiply:   "KP_Multiply",
	KeyKPMinus:      "KP_Minus",
	KeyKPPlus:       "KP_Plus",
	KeyKPEnter:      "KP_Enter",
	KeyKPEquals:     "KP_Equals",
	KeyUp:           "Up",
	KeyDown:         "Down",
	KeyRight:        "Right",
	KeyLeft:         "Left",
	KeyInsert:       "Insert",
	KeyHome:         "Home",
	KeyEnd:          "End",
	KeyPageUp:       "PageUp",
	KeyPageDown:     "PageDown",
	KeyNumLock:      "NumLock",
	KeyCapsLock:     "CapsLock",
	KeyScrollLock:   "ScrollLock",
	KeyRShift:       "RShift",
	KeyLShift:       "LShift",
	KeyRCtrl:        "RCtrl",
	KeyLCtrl:        "LCtrl",
	KeyRAlt:         "RAlt",
	KeyLAlt:         "LAlt",
	KeyRMeta:        "RMeta",
	KeyLMeta:        "LMeta",
	KeyLSuper:       "LSuper",
	KeyRSuper:       "RSuper",
	KeyMode:         "Mode",
	KeyCompose:      "Compose",
	KeyHelp:         "Help",
	KeyPrint:        "Print",
	KeySysReq:       "SysReq",
	KeyBreak:        "Break",
	KeyMenu:         "Menu",
}

// String returns a readable key name for logs
func (k KeyCode) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	switch {
	case k > KeySpace && k < KeyDelete:
		return string(rune(k))
	case k >= KeyKP0 && k <= KeyKP9:
		return "KP" + strconv.Itoa(int(k-KeyKP0))
	case k >= KeyF1 && k <= KeyF15:
		return "F" + strconv.Itoa(int(k-KeyF1)+1)
	}
	return "Key(" + strconv.Itoa(int(k)) + ")"
}
