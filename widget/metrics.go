package widget

import "github.com/mattn/go-runewidth"

// CellMetrics measures text in terminal cells
// Buffer bytes are treated as Latin-1 code points; cells have no kerning
type CellMetrics struct {
	cond *runewidth.Condition
}

// NewCellMetrics creates cell metrics with narrow ambiguous-width characters
func NewCellMetrics() *CellMetrics {
	cond := runewidth.NewCondition()
	cond.EastAsianWidth = false
	return &CellMetrics{cond: cond}
}

func (m *CellMetrics) CharWidth(c byte) int {
	return m.cond.RuneWidth(rune(c))
}

func (m *CellMetrics) StringWidth(s []byte) int {
	w := 0
	for _, c := range s {
		w += m.CharWidth(c)
	}
	return w
}

func (m *CellMetrics) KerningOffset(left, right byte) int {
	return 0
}
