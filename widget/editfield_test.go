package widget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/keybridge/host"
)

// fixedMetrics gives every byte the same width
type fixedMetrics struct {
	w       int
	kerning int
}

func (m fixedMetrics) StringWidth(s []byte) int     { return len(s) * m.w }
func (m fixedMetrics) CharWidth(byte) int           { return m.w }
func (m fixedMetrics) KerningOffset(byte, byte) int { return m.kerning }

type recordSender struct {
	cmds []uint32
}

func (s *recordSender) SendCommand(cmd, data uint32) {
	s.cmds = append(s.cmds, cmd)
}

type recordOwner struct {
	disabled bool
	ended    int
	aborted  int
}

func (o *recordOwner) Enabled() bool  { return !o.disabled }
func (o *recordOwner) EndEditMode()   { o.ended++ }
func (o *recordOwner) AbortEditMode() { o.aborted++ }

type paintOp struct {
	x, width  int
	erase     bool
	highlight bool
}

type recordPainter struct {
	ops []paintOp
}

func (p *recordPainter) DrawCaret(x int, erase bool) {
	p.ops = append(p.ops, paintOp{x: x, erase: erase})
}

func (p *recordPainter) DrawHighlight(x, width int, text []byte) {
	p.ops = append(p.ops, paintOp{x: x, width: width, highlight: true})
}

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

type fieldHarness struct {
	field   *EditField
	sender  *recordSender
	owner   *recordOwner
	painter *recordPainter
	clip    *host.MemoryClipboard
	clock   *fakeClock
}

const testCommand = 42

func newHarness(width int) *fieldHarness {
	h := &fieldHarness{
		sender:  &recordSender{},
		owner:   &recordOwner{},
		painter: &recordPainter{},
		clip:    &host.MemoryClipboard{},
		clock:   &fakeClock{now: time.Unix(1000, 0)},
	}
	h.field = NewEditField(Options{
		Width:     width,
		Command:   testCommand,
		Metrics:   fixedMetrics{w: 1},
		Painter:   h.painter,
		Owner:     h.owner,
		Sender:    h.sender,
		Clipboard: h.clip,
		Clock:     h.clock,
	})
	return h
}

func (h *fieldHarness) key(code host.KeyCode, flags host.KeyFlags, ascii uint16) bool {
	return h.field.HandleKeyDown(host.KeyState{Code: code, Flags: flags, Ascii: ascii})
}

func (h *fieldHarness) typeText(s string) {
	for i := 0; i < len(s); i++ {
		h.key(host.KeyCode(s[i]), 0, uint16(s[i]))
	}
}

func (h *fieldHarness) notifications() int { return len(h.sender.cmds) }

func TestInsertIntoEmptyField(t *testing.T) {
	h := newHarness(20)
	h.typeText("abc")

	assert.Equal(t, "abc", h.field.Text())
	assert.Equal(t, 3, h.field.CaretPos())
	_, count := h.field.Selection()
	assert.Zero(t, count)
	assert.Equal(t, 3, h.notifications())
	for _, cmd := range h.sender.cmds {
		assert.Equal(t, uint32(testCommand), cmd)
	}
	assert.True(t, h.field.Dirty())
	assert.True(t, h.field.CaretVisible())
}

func TestBackspace(t *testing.T) {
	h := newHarness(20)
	h.typeText("abc")

	assert.True(t, h.key(host.KeyBackspace, 0, 8))
	assert.True(t, h.key(host.KeyBackspace, 0, 8))
	assert.Equal(t, "a", h.field.Text())
	assert.Equal(t, 1, h.field.CaretPos())
	assert.Equal(t, 5, h.notifications())

	// At position 0 nothing is deleted and nothing is notified
	h.field.SetCaretPos(0)
	h.key(host.KeyBackspace, 0, 8)
	assert.Equal(t, "a", h.field.Text())
	assert.Equal(t, 5, h.notifications())
}

func TestDelete(t *testing.T) {
	h := newHarness(20)
	h.field.SetText("abc")

	h.key(host.KeyDelete, 0, 0)
	assert.Equal(t, "bc", h.field.Text())
	assert.Equal(t, 0, h.field.CaretPos())
	assert.Equal(t, 1, h.notifications())

	h.field.SetCaretPos(2)
	h.key(host.KeyDelete, 0, 0)
	assert.Equal(t, "bc", h.field.Text(), "delete at end is a no-op")
	assert.Equal(t, 1, h.notifications())
}

func TestShiftLeftAtStartCreatesNoSelection(t *testing.T) {
	h := newHarness(20)
	h.field.SetText("hello")

	h.key(host.KeyLeft, host.FlagShift, 0)

	assert.Equal(t, "hello", h.field.Text())
	assert.Equal(t, 0, h.field.CaretPos())
	_, count := h.field.Selection()
	assert.Zero(t, count)
	assert.Zero(t, h.notifications())
}

func TestShiftLeftSelection(t *testing.T) {
	h := newHarness(20)
	h.typeText("hello")
	h.sender.cmds = nil

	h.key(host.KeyLeft, host.FlagShift, 0)
	h.key(host.KeyLeft, host.FlagShift, 0)

	pos, count := h.field.Selection()
	assert.Equal(t, 3, pos)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, h.field.SelectionWidth())
	assert.Equal(t, 5, h.field.CaretPos(), "caret stays at the anchor")
	assert.Equal(t, []byte("   lo"), h.field.HighlightText())
	assert.Zero(t, h.notifications())
	assert.Equal(t, 3, h.field.HighlightOffset())
}

func TestBackspaceDeletesSelection(t *testing.T) {
	h := newHarness(20)
	h.typeText("hello")
	h.key(host.KeyLeft, host.FlagShift, 0)
	h.key(host.KeyLeft, host.FlagShift, 0)
	h.sender.cmds = nil

	h.key(host.KeyBackspace, 0, 8)

	assert.Equal(t, "hel", h.field.Text())
	assert.Equal(t, 3, h.field.CaretPos())
	_, count := h.field.Selection()
	assert.Zero(t, count)
	assert.Equal(t, 1, h.notifications())
}

func TestDeleteRemovesSelection(t *testing.T) {
	h := newHarness(20)
	h.typeText("hello")
	h.field.SetCaretPos(3)
	h.key(host.KeyLeft, host.FlagShift, 0)

	h.key(host.KeyDelete, 0, 0)
	assert.Equal(t, "helo", h.field.Text())
	assert.Equal(t, 2, h.field.CaretPos())
}

func TestTypingReplacesSelection(t *testing.T) {
	h := newHarness(20)
	h.typeText("hello")
	h.key(host.KeyLeft, host.FlagShift, 0)
	h.key(host.KeyLeft, host.FlagShift, 0)
	h.sender.cmds = nil

	assert.True(t, h.key(host.KeyP, 0, 'p'))

	assert.Equal(t, "help", h.field.Text())
	assert.Equal(t, 4, h.field.CaretPos())
	_, count := h.field.Selection()
	assert.Zero(t, count)
	assert.Equal(t, 1, h.notifications())
}

func TestUnacceptableCharacterUnhandled(t *testing.T) {
	h := newHarness(20)
	h.typeText("ab")
	h.key(host.KeyLeft, host.FlagShift, 0)
	h.sender.cmds = nil
	h.field.ClearDirty()

	for _, c := range []uint16{0, 9, 31, 128, 150, 159, 300} {
		assert.False(t, h.key(host.KeyF5, 0, c), "ascii %d", c)
	}
	assert.Equal(t, "ab", h.field.Text())
	_, count := h.field.Selection()
	assert.Equal(t, 1, count, "selection survives rejected input")
	assert.Zero(t, h.notifications())

	assert.True(t, h.key(host.KeyCode(160), 0, 160))
	assert.Equal(t, "a\xa0", h.field.Text())
}

func TestLeftNotifiesOnlyOnMove(t *testing.T) {
	h := newHarness(20)
	h.field.SetText("ab")
	h.field.SetCaretPos(1)

	h.key(host.KeyLeft, 0, 0)
	assert.Equal(t, 0, h.field.CaretPos())
	assert.Equal(t, 1, h.notifications())

	h.key(host.KeyLeft, 0, 0)
	assert.Equal(t, 0, h.field.CaretPos())
	assert.Equal(t, 1, h.notifications())
}

func TestRightNotifiesEvenWithoutMove(t *testing.T) {
	h := newHarness(20)
	h.field.SetText("ab")
	h.field.SetCaretPos(1)

	h.key(host.KeyRight, 0, 0)
	assert.Equal(t, 2, h.field.CaretPos())
	assert.Equal(t, 2, h.notifications(), "a move notifies twice")

	h.key(host.KeyRight, 0, 0)
	assert.Equal(t, 2, h.field.CaretPos())
	assert.Equal(t, 3, h.notifications(), "no move still notifies once")
}

func TestHomeAndEnd(t *testing.T) {
	h := newHarness(20)
	h.typeText("hello")
	h.sender.cmds = nil

	h.key(host.KeyHome, 0, 0)
	assert.Equal(t, 0, h.field.CaretPos())
	assert.Equal(t, 1, h.notifications())

	h.key(host.KeyEnd, 0, 0)
	assert.Equal(t, 5, h.field.CaretPos())
	assert.Equal(t, 1, h.notifications(), "end does not notify")

	h.key(host.KeyUp, 0, 0)
	assert.Equal(t, 0, h.field.CaretPos())
	h.key(host.KeyDown, 0, 0)
	assert.Equal(t, 5, h.field.CaretPos())
}

func TestKeypadRemap(t *testing.T) {
	h := newHarness(20)
	h.field.SetText("abc")

	assert.True(t, h.key(host.KeyKP2, 0, '2'))
	assert.Equal(t, "abc", h.field.Text())
	assert.Equal(t, 3, h.field.CaretPos(), "keypad 2 acts as down")

	h.key(host.KeyKP7, 0, '7')
	assert.Equal(t, 0, h.field.CaretPos(), "keypad 7 acts as home")

	h.key(host.KeyKPPeriod, 0, '.')
	assert.Equal(t, "bc", h.field.Text(), "keypad period acts as delete")

	// Keypad 5 maps to no key and is not typed
	assert.False(t, h.key(host.KeyKP5, 0, '5'))

	// With num-lock the digit is typed
	h.key(host.KeyKP2, host.FlagNum, '2')
	assert.Equal(t, "2bc", h.field.Text())
}

func TestEnterAndEscape(t *testing.T) {
	h := newHarness(20)
	h.typeText("hi")
	h.key(host.KeyLeft, host.FlagShift, 0)

	h.key(host.KeyReturn, 0, 13)
	assert.Equal(t, 1, h.owner.ended)
	_, count := h.field.Selection()
	assert.Zero(t, count)

	h.key(host.KeyKPEnter, host.FlagNum, 13)
	assert.Equal(t, 2, h.owner.ended)

	h.key(host.KeyLeft, host.FlagShift, 0)
	_, count = h.field.Selection()
	require.Equal(t, 1, count)
	h.key(host.KeyEscape, 0, 27)
	assert.Equal(t, 1, h.owner.aborted)
	assert.Equal(t, "hi", h.field.Text())
	_, count = h.field.Selection()
	assert.Zero(t, count, "escape drops the selection")
}

func TestPasteSkipsUnacceptableBytes(t *testing.T) {
	h := newHarness(20)
	h.clip.SetText("hi😀")

	assert.True(t, h.key(host.KeyV, host.FlagCtrl, 22))

	// 😀 is F0 9F 98 80; only F0 is in the accepted range
	assert.Equal(t, "hi\xf0", h.field.Text())
	assert.Equal(t, 3, h.field.CaretPos())
	assert.Equal(t, 1, h.notifications())
}

func TestPasteTrimsWhitespace(t *testing.T) {
	h := newHarness(20)
	h.typeText("<>")
	h.field.SetCaretPos(1)
	h.sender.cmds = nil
	h.clip.SetText("  \tab c\n")

	h.key(host.KeyV, host.FlagCtrl, 22)
	assert.Equal(t, "<ab c>", h.field.Text())
	assert.Equal(t, 5, h.field.CaretPos())
}

func TestPasteEmptyClipboard(t *testing.T) {
	h := newHarness(20)
	h.key(host.KeyV, host.FlagCtrl, 22)
	assert.Empty(t, h.field.Text())
	assert.Zero(t, h.notifications())
	assert.False(t, h.field.Dirty())
}

func TestCopy(t *testing.T) {
	h := newHarness(20)
	h.key(host.KeyC, host.FlagCtrl, 3)
	assert.False(t, h.clip.HasText(), "empty buffer is not copied")

	h.typeText("copy me")
	h.sender.cmds = nil
	h.key(host.KeyC, host.FlagCtrl, 3)
	assert.Equal(t, "copy me", h.clip.Text())
	assert.Equal(t, "copy me", h.field.Text())
	assert.Zero(t, h.notifications())
}

func TestEmacsLineKeys(t *testing.T) {
	h := newHarness(20)
	h.typeText("line")

	// Disabled: ctrl+a falls through to insert and is rejected
	assert.False(t, h.key(host.KeyA, host.FlagCtrl, 1))
	assert.Equal(t, 4, h.field.CaretPos())

	h.field.opts.EmacsLineKeys = true
	h.sender.cmds = nil
	assert.True(t, h.key(host.KeyA, host.FlagCtrl, 1))
	assert.Equal(t, 0, h.field.CaretPos())
	assert.True(t, h.key(host.KeyE, host.FlagCtrl, 5))
	assert.Equal(t, 4, h.field.CaretPos())
	assert.Zero(t, h.notifications())
}

func TestEmacsLineKeysDropSelection(t *testing.T) {
	h := newHarness(20)
	h.field.opts.EmacsLineKeys = true
	h.typeText("abcd")

	h.key(host.KeyLeft, host.FlagShift, 0)
	assert.True(t, h.key(host.KeyA, host.FlagCtrl, 1))
	pos, count := h.field.Selection()
	assert.Zero(t, count)
	assert.Equal(t, 0, pos)

	h.typeText("X")
	assert.Equal(t, "Xabcd", h.field.Text())
	assert.Equal(t, 1, h.field.CaretPos())

	h.key(host.KeyLeft, host.FlagShift, 0)
	assert.True(t, h.key(host.KeyE, host.FlagCtrl, 5))
	_, count = h.field.Selection()
	assert.Zero(t, count)
	assert.Equal(t, 5, h.field.CaretPos())

	h.typeText("Y")
	assert.Equal(t, "XabcdY", h.field.Text())
}

func TestMoveCaretDropsSelection(t *testing.T) {
	h := newHarness(20)
	h.typeText("abcd")
	h.key(host.KeyLeft, host.FlagShift, 0)

	assert.True(t, h.field.MoveCaret(1), "dropping a selection needs a redraw")
	_, count := h.field.Selection()
	assert.Zero(t, count)
	assert.False(t, h.field.MoveCaret(2))
	assert.Panics(t, func() { h.field.MoveCaret(5) })
}

func TestDisabledFieldRejectsInput(t *testing.T) {
	h := newHarness(20)
	h.owner.disabled = true

	assert.False(t, h.key(host.KeyA, 0, 'a'))
	assert.Empty(t, h.field.Text())
	assert.Empty(t, h.painter.ops)
}

func TestScrollFollowsCaret(t *testing.T) {
	h := newHarness(5)
	h.typeText("abcdefgh")

	assert.Equal(t, 8, h.field.CaretPos())
	assert.Equal(t, 3, h.field.ScrollOffset())
	assert.Equal(t, 5, h.field.CaretOffset())

	h.key(host.KeyHome, 0, 0)
	assert.Equal(t, 0, h.field.ScrollOffset())
	assert.Equal(t, 0, h.field.CaretOffset())

	h.key(host.KeyEnd, 0, 0)
	assert.Equal(t, 3, h.field.ScrollOffset())

	// Deleting from the end snaps scroll so the text stays right-aligned
	h.key(host.KeyBackspace, 0, 8)
	h.key(host.KeyBackspace, 0, 8)
	assert.Equal(t, "abcdef", h.field.Text())
	assert.Equal(t, 1, h.field.ScrollOffset())
	for range 4 {
		h.key(host.KeyBackspace, 0, 8)
	}
	assert.Equal(t, 0, h.field.ScrollOffset())
}

func TestScrollFollowsSelection(t *testing.T) {
	h := newHarness(4)
	h.typeText("abcdefgh")
	require.Equal(t, 4, h.field.ScrollOffset())

	for range 5 {
		h.key(host.KeyLeft, host.FlagShift, 0)
	}
	pos, count := h.field.Selection()
	assert.Equal(t, 3, pos)
	assert.Equal(t, 5, count)
	assert.GreaterOrEqual(t, h.field.HighlightOffset(), 0)
	assert.Less(t, h.field.HighlightOffset(), 4)
}

func TestScrollNeverNegative(t *testing.T) {
	h := newHarness(10)
	h.typeText("ab")
	h.key(host.KeyHome, 0, 0)
	h.key(host.KeyEnd, 0, 0)
	assert.Equal(t, 0, h.field.ScrollOffset())

	h.field.SetWidth(1)
	assert.Equal(t, 1, h.field.ScrollOffset())
	h.field.SetWidth(10)
	assert.Equal(t, 0, h.field.ScrollOffset())
}

func TestSetCaretPosOutOfRangePanics(t *testing.T) {
	h := newHarness(10)
	h.field.SetText("ab")
	assert.Panics(t, func() { h.field.SetCaretPos(3) })
	assert.Panics(t, func() { h.field.SetCaretPos(-1) })
	assert.NotPanics(t, func() { h.field.SetCaretPos(2) })
}

func TestCaretBlink(t *testing.T) {
	h := newHarness(10)
	h.typeText("a")
	require.True(t, h.field.CaretVisible())

	h.field.Tick()
	assert.True(t, h.field.CaretVisible(), "blink interval not elapsed")

	h.clock.advance(DefaultBlinkInterval + time.Millisecond)
	h.field.Tick()
	assert.False(t, h.field.CaretVisible())

	h.clock.advance(DefaultBlinkInterval + time.Millisecond)
	h.field.Tick()
	assert.True(t, h.field.CaretVisible())

	// Keystroke restarts the blink with the caret shown
	h.clock.advance(DefaultBlinkInterval + time.Millisecond)
	h.field.Tick()
	require.False(t, h.field.CaretVisible())
	h.key(host.KeyLeft, 0, 0)
	assert.True(t, h.field.CaretVisible())
}

func TestCaretBlinkHeldBySelection(t *testing.T) {
	h := newHarness(10)
	h.typeText("ab")
	h.key(host.KeyLeft, host.FlagShift, 0)
	visible := h.field.CaretVisible()

	for range 3 {
		h.clock.advance(time.Second)
		h.field.Tick()
		assert.Equal(t, visible, h.field.CaretVisible())
	}
	last := h.painter.ops[len(h.painter.ops)-1]
	assert.True(t, last.highlight)
	assert.Equal(t, 1, last.x)
	assert.Equal(t, 1, last.width)
}

func TestCaretBlinkDisabled(t *testing.T) {
	h := newHarness(10)
	h.typeText("a")
	h.owner.disabled = true
	n := len(h.painter.ops)

	h.clock.advance(time.Second)
	h.field.Tick()
	assert.True(t, h.field.CaretVisible())
	assert.Len(t, h.painter.ops, n)
}

func TestCaretEraseUsesKerning(t *testing.T) {
	p := &recordPainter{}
	f := NewEditField(Options{
		Width:   10,
		Metrics: fixedMetrics{w: 2, kerning: -1},
		Painter: p,
	})
	f.SetText("abc")
	f.SetCaretPos(1)
	f.makeCaretVisible()

	f.HandleKeyDown(host.KeyState{Code: host.KeyF5})
	require.NotEmpty(t, p.ops)

	var erase *paintOp
	for i := range p.ops {
		if p.ops[i].erase {
			erase = &p.ops[i]
			break
		}
	}
	require.NotNil(t, erase)
	assert.Equal(t, 1, erase.x)
}

func TestDefaultCollaborators(t *testing.T) {
	f := NewEditField(Options{Width: 8})
	f.HandleKeyDown(host.KeyState{Code: host.KeyX, Ascii: 'x'})
	f.HandleKeyDown(host.KeyState{Code: host.KeyC, Flags: host.FlagCtrl, Ascii: 3})
	f.HandleKeyDown(host.KeyState{Code: host.KeyV, Flags: host.FlagCtrl, Ascii: 22})

	assert.Equal(t, "xx", f.Text())
	assert.Equal(t, 2, f.CaretOffset())
	assert.Equal(t, 8, f.Width())
}
