package widget

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/lixenwraith/keybridge/host"
)

// DefaultBlinkInterval is the caret blink half-period
const DefaultBlinkInterval = 300 * time.Millisecond

// DefaultEmacsLineKeys enables ctrl+a / ctrl+e on platforms where edit fields honor them natively
var DefaultEmacsLineKeys = runtime.GOOS == "darwin"

// Options configures an EditField
// Nil collaborators fall back to terminal cell metrics, an always-enabled owner,
// a discarding sender, a process-local clipboard and the wall clock
type Options struct {
	Width         int // Visible field width in Metrics units
	Command       uint32
	BlinkInterval time.Duration
	EmacsLineKeys bool

	Metrics   Metrics
	Painter   Painter
	Owner     Owner
	Sender    CommandSender
	Clipboard host.Clipboard
	Clock     Clock
}

// keypadRemap maps KP0..KP period to navigation keys when num-lock is off
var keypadRemap = [...]host.KeyCode{
	host.KeyInsert,   // KP0
	host.KeyEnd,      // KP1
	host.KeyDown,     // KP2
	host.KeyPageDown, // KP3
	host.KeyLeft,     // KP4
	host.KeyInvalid,  // KP5
	host.KeyRight,    // KP6
	host.KeyHome,     // KP7
	host.KeyUp,       // KP8
	host.KeyPageUp,   // KP9
	host.KeyDelete,   // KP period
}

// EditField is a single-line text edit state machine
// Text is a byte string in the legacy 8-bit character set
type EditField struct {
	opts Options

	text   []byte
	caret  int // Position before which the caret sits
	scroll int // Horizontal offset in Metrics units

	caretVisible bool
	caretTime    time.Time // Next blink deadline

	// Selection grows leftward from the caret: [hlPos, hlPos+hlCount)
	hlPos    int
	hlCount  int
	hlWidth  int
	hlShadow []byte // Selected bytes at their buffer index, blanks elsewhere

	dirty bool
}

// NewEditField creates an empty field
func NewEditField(opts Options) *EditField {
	if opts.Metrics == nil {
		opts.Metrics = NewCellMetrics()
	}
	if opts.Owner == nil {
		opts.Owner = nopOwner{}
	}
	if opts.Sender == nil {
		opts.Sender = nopSender{}
	}
	if opts.Clipboard == nil {
		opts.Clipboard = &host.MemoryClipboard{}
	}
	if opts.Clock == nil {
		opts.Clock = wallClock{}
	}
	if opts.BlinkInterval <= 0 {
		opts.BlinkInterval = DefaultBlinkInterval
	}
	return &EditField{opts: opts}
}

// --- Accessors ---

// Text returns the field contents
func (f *EditField) Text() string { return string(f.text) }

// CaretPos returns the caret index
func (f *EditField) CaretPos() int { return f.caret }

// ScrollOffset returns the horizontal scroll offset
func (f *EditField) ScrollOffset() int { return f.scroll }

// Selection returns the selected run; count is 0 when nothing is selected
func (f *EditField) Selection() (pos, count int) { return f.hlPos, f.hlCount }

// SelectionWidth returns the accumulated width of the selected run
func (f *EditField) SelectionWidth() int { return f.hlWidth }

// HighlightText returns the shadow buffer used to render the selection
func (f *EditField) HighlightText() []byte { return f.hlShadow }

// CaretVisible reports whether the caret is currently drawn
func (f *EditField) CaretVisible() bool { return f.caretVisible }

// Width returns the visible field width
func (f *EditField) Width() int { return f.opts.Width }

// Dirty reports whether a redraw was requested since the last ClearDirty
func (f *EditField) Dirty() bool { return f.dirty }

// ClearDirty acknowledges a redraw
func (f *EditField) ClearDirty() { f.dirty = false }

// CaretOffset returns the caret x position relative to the visible window
func (f *EditField) CaretOffset() int {
	return f.opts.Metrics.StringWidth(f.text[:f.caret]) - f.scroll
}

// HighlightOffset returns the selection start x position relative to the visible window
func (f *EditField) HighlightOffset() int {
	return f.opts.Metrics.StringWidth(f.text[:f.hlPos]) - f.scroll
}

func (f *EditField) selecting() bool { return f.hlCount > 0 }

// --- Mutation ---

// SetText replaces the contents and moves the caret to the start
func (f *EditField) SetText(s string) {
	f.text = []byte(s)
	f.caret = 0
	f.scroll = 0
	f.initHighlight()
}

// SetWidth changes the visible width and reflows
func (f *EditField) SetWidth(w int) {
	f.opts.Width = w
	f.Reflow()
}

// Reflow recomputes the scroll offset so the text tail is right-aligned when it overflows
func (f *EditField) Reflow() {
	f.scroll = f.opts.Metrics.StringWidth(f.text) - f.opts.Width
	if f.scroll < 0 {
		f.scroll = 0
	}
}

// SetCaretPos moves the caret and adjusts scrolling
// Returns true when the scroll offset changed
func (f *EditField) SetCaretPos(pos int) bool {
	f.checkCaret(pos)
	f.caret = pos
	return f.adjustOffset()
}

// MoveCaret is a plain caret move: the caret goes to pos and any selection is dropped
// Returns true when the display needs a redraw
func (f *EditField) MoveCaret(pos int) bool {
	f.checkCaret(pos)
	hadSelection := f.selecting()
	f.caret = pos
	f.initHighlight()
	return f.adjustOffset() || hadSelection
}

func (f *EditField) checkCaret(pos int) {
	if pos < 0 || pos > len(f.text) {
		panic(fmt.Sprintf("caret position %d out of range [0,%d]", pos, len(f.text)))
	}
}

// acceptable reports whether c may be stored in the buffer
func acceptable(c byte) bool {
	return (c >= 32 && c <= 127) || c >= 160
}

func (f *EditField) tryInsert(c byte, pos int) bool {
	if !acceptable(c) {
		return false
	}
	f.text = append(f.text, 0)
	copy(f.text[pos+1:], f.text[pos:])
	f.text[pos] = c
	return true
}

func (f *EditField) deleteAt(pos int) {
	f.text = append(f.text[:pos], f.text[pos+1:]...)
}

// deleteSelection removes the selected run from the buffer and the shadow
func (f *EditField) deleteSelection() {
	start, end := f.hlPos, f.hlPos+f.hlCount
	f.text = append(f.text[:start], f.text[end:]...)
	if end > len(f.hlShadow) {
		end = len(f.hlShadow)
	}
	if start < end {
		f.hlShadow = append(f.hlShadow[:start], f.hlShadow[end:]...)
	}
}

// initHighlight clears the selection and anchors it at the caret
func (f *EditField) initHighlight() {
	f.hlShadow = append(f.hlShadow[:0], make([]byte, f.caret)...)
	for i := range f.hlShadow {
		f.hlShadow[i] = ' '
	}
	f.hlPos = f.caret
	f.hlCount = 0
	f.hlWidth = 0
}

func (f *EditField) notify() {
	f.opts.Sender.SendCommand(f.opts.Command, 0)
}

// --- Key handling ---

// HandleKeyDown applies one keystroke
// Returns false when the field is disabled or the key was not consumed
func (f *EditField) HandleKeyDown(state host.KeyState) bool {
	if !f.opts.Owner.Enabled() {
		return false
	}

	handled := true
	dirty := false
	forceCaret := false

	if f.caretVisible {
		f.drawCaret(true)
	}

	code := state.Code
	remapped := false
	if !state.Flags.Has(host.FlagNum) && code >= host.KeyKP0 && code <= host.KeyKPPeriod {
		code = keypadRemap[code-host.KeyKP0]
		remapped = true
	}
	ctrl := state.Flags.Has(host.FlagCtrl)

	switch {
	case code == host.KeyReturn || code == host.KeyKPEnter:
		f.initHighlight()
		f.opts.Owner.EndEditMode()
		dirty = true

	case code == host.KeyEscape:
		f.initHighlight()
		f.opts.Owner.AbortEditMode()
		dirty = true

	case code == host.KeyBackspace:
		if f.selecting() {
			f.deleteSelection()
			f.SetCaretPos(f.hlPos)
			f.initHighlight()
			f.notify()
			dirty = true
		} else if f.caret > 0 {
			f.caret--
			f.deleteAt(f.caret)
			f.adjustOffset()
			f.initHighlight()
			f.notify()
			dirty = true
		}
		forceCaret = true

	case code == host.KeyDelete:
		if f.selecting() {
			f.deleteSelection()
			f.SetCaretPos(f.hlPos)
			f.initHighlight()
			f.notify()
			dirty = true
		} else if f.caret < len(f.text) {
			f.deleteAt(f.caret)
			f.adjustOffset()
			f.initHighlight()
			f.notify()
			dirty = true
		}
		forceCaret = true

	case code == host.KeyDown || code == host.KeyEnd:
		f.initHighlight()
		f.SetCaretPos(len(f.text))
		forceCaret = true
		dirty = true

	case code == host.KeyLeft:
		if state.Flags.Has(host.FlagShift) {
			f.extendSelectionLeft()
		} else if f.caret > 0 {
			f.SetCaretPos(f.caret - 1)
			f.initHighlight()
			f.notify()
		}
		forceCaret = true
		dirty = true

	case code == host.KeyRight:
		if f.caret < len(f.text) {
			f.SetCaretPos(f.caret + 1)
			f.initHighlight()
			f.notify()
		}
		// Notifies even when the caret is already at the end
		f.initHighlight()
		f.notify()
		forceCaret = true
		dirty = true

	case code == host.KeyUp || code == host.KeyHome:
		f.initHighlight()
		f.SetCaretPos(0)
		f.notify()
		forceCaret = true
		dirty = true

	case code == host.KeyV && ctrl:
		dirty = f.paste()

	case code == host.KeyC && ctrl:
		if len(f.text) > 0 {
			f.opts.Clipboard.SetText(string(f.text))
		}

	case code == host.KeyA && ctrl && f.opts.EmacsLineKeys:
		dirty = f.MoveCaret(0)
		forceCaret = true

	case code == host.KeyE && ctrl && f.opts.EmacsLineKeys:
		dirty = f.MoveCaret(len(f.text))
		forceCaret = true

	case remapped:
		// Keypad keys standing in for navigation never type their digit
		handled = false

	default:
		handled = f.insertKey(state, &dirty, &forceCaret)
	}

	if dirty {
		f.dirty = true
	}
	if forceCaret {
		f.makeCaretVisible()
	}
	return handled
}

// extendSelectionLeft grows the selection by one byte toward the start
func (f *EditField) extendSelectionLeft() {
	if !f.selecting() {
		f.hlPos = f.caret
	}
	if f.hlPos == 0 {
		return
	}
	f.hlPos--
	f.hlCount++
	c := f.text[f.hlPos]
	f.hlWidth += f.opts.Metrics.CharWidth(c)
	for len(f.hlShadow) <= f.hlPos {
		f.hlShadow = append(f.hlShadow, ' ')
	}
	f.hlShadow[f.hlPos] = c
	f.adjustOffset()
}

// paste inserts clipboard text at the caret, skipping unacceptable bytes
// Returns true when the clipboard held text
func (f *EditField) paste() bool {
	if !f.opts.Clipboard.HasText() {
		return false
	}
	f.initHighlight()
	text := strings.Trim(f.opts.Clipboard.Text(), " \t\n\v\f\r")
	inserted := 0
	for i := 0; i < len(text); i++ {
		if f.tryInsert(text[i], f.caret) {
			f.caret++
			inserted++
		}
	}
	if inserted > 0 {
		f.adjustOffset()
		f.initHighlight()
		f.notify()
	}
	return true
}

// insertKey is the default handler: typed characters replace the selection or insert at the caret
func (f *EditField) insertKey(state host.KeyState, dirty, forceCaret *bool) bool {
	if state.Ascii >= 256 || !f.tryInsert(byte(state.Ascii), f.caret) {
		return false
	}
	if f.selecting() {
		f.deleteSelection()
		f.SetCaretPos(f.hlPos + 1)
	} else {
		f.SetCaretPos(f.caret + 1)
	}
	f.initHighlight()
	*dirty = true
	*forceCaret = true
	f.notify()
	return true
}

// --- Scrolling and caret ---

// adjustOffset keeps the active boundary inside the visible window
// Returns true when the scroll offset changed
func (f *EditField) adjustOffset() bool {
	width := f.opts.Width

	if f.selecting() {
		hl := f.HighlightOffset()
		if hl < 1 {
			f.scroll += hl
			return hl != 0
		}
		if hl >= width {
			f.scroll -= width - hl
			return hl != width
		}
		return false
	}

	caret := f.CaretOffset()
	switch {
	case caret < 0:
		f.scroll += caret
		return true
	case caret >= width:
		f.scroll -= width - caret
		return caret != width
	case f.scroll > 0:
		textW := f.opts.Metrics.StringWidth(f.text)
		if textW-f.scroll < width {
			prev := f.scroll
			f.scroll = textW - width
			if f.scroll < 0 {
				f.scroll = 0
			}
			return f.scroll != prev
		}
	}
	return false
}

// makeCaretVisible restarts the blink timer with the caret shown
func (f *EditField) makeCaretVisible() {
	f.adjustOffset()
	f.caretTime = f.opts.Clock.Now().Add(f.opts.BlinkInterval)
	f.caretVisible = true
	f.drawCaret(false)
}

// drawCaret paints the caret (or selection) and records its visibility
func (f *EditField) drawCaret(erase bool) {
	if p := f.opts.Painter; p != nil {
		if f.selecting() {
			p.DrawHighlight(f.HighlightOffset(), f.hlWidth, f.hlShadow)
		} else {
			x := f.CaretOffset()
			if erase && f.caret > 0 && f.caret < len(f.text) {
				x += f.opts.Metrics.KerningOffset(f.text[f.caret-1], f.text[f.caret])
			}
			p.DrawCaret(x, erase)
		}
	}
	f.caretVisible = !erase
}

// Tick advances the caret blink
// A visible selection holds the caret in its current state
func (f *EditField) Tick() {
	if !f.opts.Owner.Enabled() {
		return
	}
	now := f.opts.Clock.Now()
	if f.selecting() {
		f.caretTime = time.Time{}
		f.drawCaret(!f.caretVisible)
		return
	}
	if f.caretTime.Before(now) {
		f.caretTime = now.Add(f.opts.BlinkInterval)
		f.drawCaret(f.caretVisible)
	}
}
