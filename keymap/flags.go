package keymap

import "github.com/lixenwraith/keybridge/host"

// ModFlags is the legacy keyboard shift-state bitmask
type ModFlags uint

const (
	FlagShift      ModFlags = 0x0001
	FlagCtrl       ModFlags = 0x0002
	FlagAlt        ModFlags = 0x0004
	FlagCommand    ModFlags = 0x0040
	FlagScrollLock ModFlags = 0x0100
	FlagNumLock    ModFlags = 0x0200
	FlagCapsLock   ModFlags = 0x0400
)

// flagMap pairs host modifier bits with legacy bits, evaluated in order
var flagMap = [...]struct {
	host   host.KeyFlags
	legacy ModFlags
}{
	{host.FlagShift, FlagShift},
	{host.FlagCtrl, FlagCtrl},
	{host.FlagAlt, FlagAlt},
	{host.FlagMeta, FlagCommand},
	{host.FlagScroll, FlagScrollLock},
	{host.FlagNum, FlagNumLock},
	{host.FlagCaps, FlagCapsLock},
}

// Flags converts host modifier bits to the legacy bitmask
func Flags(f host.KeyFlags) ModFlags {
	var out ModFlags
	for _, m := range flagMap {
		if f&m.host != 0 {
			out |= m.legacy
		}
	}
	return out
}
