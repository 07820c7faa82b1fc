package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/keybridge/status"
	"github.com/lixenwraith/keybridge/widget"
)

// Field placement on screen
const (
	fieldX = 2
	fieldY = 2
	maxLog = 8
)

var (
	styleText   = tcell.StyleDefault
	styleField  = tcell.StyleDefault.Underline(true)
	styleSelect = tcell.StyleDefault.Reverse(true)
	styleDim    = tcell.StyleDefault.Dim(true)
)

// span is a highlighted run of cells relative to the field origin
type span struct {
	x, width int
}

// screenView renders the edit field, a key log and a status line on a tcell screen
// It doubles as the field's Painter: caret and highlight calls steer the terminal cursor
type screenView struct {
	screen  tcell.Screen
	field   *widget.EditField
	metrics widget.Metrics
	reg     *status.Registry

	highlight span
	keyLog    []string
}

func newScreenView(screen tcell.Screen, metrics widget.Metrics, reg *status.Registry) *screenView {
	return &screenView{screen: screen, metrics: metrics, reg: reg}
}

// DrawCaret implements widget.Painter
func (v *screenView) DrawCaret(x int, erase bool) {
	v.highlight = span{}
	if erase {
		v.screen.HideCursor()
		return
	}
	v.screen.ShowCursor(fieldX+x, fieldY)
}

// DrawHighlight implements widget.Painter
func (v *screenView) DrawHighlight(x, width int, text []byte) {
	v.screen.HideCursor()
	v.highlight = span{x: x, width: width}
}

// logKey appends a line to the rolling key log
func (v *screenView) logKey(line string) {
	if len(v.keyLog) >= maxLog {
		copy(v.keyLog, v.keyLog[1:])
		v.keyLog = v.keyLog[:maxLog-1]
	}
	v.keyLog = append(v.keyLog, line)
}

func (v *screenView) text(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		v.screen.SetContent(x+i, y, r, nil, style)
	}
}

// render redraws the whole frame
func (v *screenView) render() {
	v.screen.Clear()
	w, _ := v.screen.Size()

	v.text(0, 0, "keybridge - type into the field, Enter submits, Escape quits", styleDim)

	f := v.field
	width := f.Width()
	for x := 0; x < width; x++ {
		v.screen.SetContent(fieldX+x, fieldY, ' ', nil, styleField)
	}

	pos := -f.ScrollOffset()
	for _, c := range []byte(f.Text()) {
		cw := v.metrics.CharWidth(c)
		if pos >= 0 && pos+cw <= width {
			style := styleField
			if v.highlight.width > 0 && pos >= v.highlight.x && pos < v.highlight.x+v.highlight.width {
				style = styleSelect
			}
			// Buffer bytes are Latin-1
			v.screen.SetContent(fieldX+pos, fieldY, rune(c), nil, style)
		}
		pos += cw
	}

	for i, line := range v.keyLog {
		v.text(fieldX, fieldY+2+i, line, styleText)
	}

	snap := v.reg.Snapshot()
	hlPos, hlCount := f.Selection()
	statusLine := fmt.Sprintf("caret %d  scroll %d  sel %d+%d  last %v  events %v  pending %v",
		f.CaretPos(), f.ScrollOffset(), hlPos, hlCount,
		snap[status.MetricLastKey], snap[status.MetricEvents], snap[status.MetricPendingKeys])
	if len(statusLine) > w {
		statusLine = statusLine[:w]
	}
	v.text(0, fieldY+3+maxLog, statusLine, styleDim)

	v.screen.Show()
}
