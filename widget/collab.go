package widget

import "time"

// Metrics measures field text in pixels (or cells)
type Metrics interface {
	StringWidth(s []byte) int
	CharWidth(c byte) int
	KerningOffset(left, right byte) int
}

// Painter draws caret and highlight; positions are relative to the edit rect
type Painter interface {
	DrawCaret(x int, erase bool)
	DrawHighlight(x, width int, text []byte)
}

// Owner is the enclosing editor that reacts to commit and abort
type Owner interface {
	Enabled() bool
	EndEditMode()
	AbortEditMode()
}

// CommandSender receives change notifications
type CommandSender interface {
	SendCommand(cmd uint32, data uint32)
}

// Clock supplies time for the caret blink timer
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// nopOwner is always enabled and ignores edit mode transitions
type nopOwner struct{}

func (nopOwner) Enabled() bool  { return true }
func (nopOwner) EndEditMode()   {}
func (nopOwner) AbortEditMode() {}

type nopSender struct{}

func (nopSender) SendCommand(uint32, uint32) {}
