package widgets

import (
	"strconv"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// TabBar is a horizontal tab navigation widget. Tabs are numbered from 1 so
// the labels double as a hint for the digit hotkeys.
type TabBar struct {
	labels []string
	active int
}

// NewTabBar creates a TabBar with the given labels. Active defaults to 0.
func NewTabBar(labels []string) *TabBar {
	return &TabBar{labels: labels}
}

// Len returns the number of tabs.
func (tb *TabBar) Len() int {
	return len(tb.labels)
}

// Active returns the currently active tab index.
func (tb *TabBar) Active() int {
	return tb.active
}

// SetActive sets the active tab index. Out-of-range values are ignored.
func (tb *TabBar) SetActive(i int) {
	if i >= 0 && i < len(tb.labels) {
		tb.active = i
	}
}

// Next advances to the next tab, wrapping around.
func (tb *TabBar) Next() {
	tb.active = (tb.active + 1) % len(tb.labels)
}

// Prev moves to the previous tab, wrapping around.
func (tb *TabBar) Prev() {
	tb.active = (tb.active - 1 + len(tb.labels)) % len(tb.labels)
}

// Draw renders the tab bar as a single row: " 1 Progress │ 2 Translate ".
// The active tab is rendered with reverse video.
func (tb *TabBar) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, tb)

	col := uint16(0)
	write := func(text string, style vaxis.Style) {
		for _, ch := range ctx.Characters(text) {
			if col >= ctx.Max.Width {
				return
			}
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
			col += uint16(ch.Width)
		}
	}

	for i, label := range tb.labels {
		if i > 0 {
			write("│", vaxis.Style{Foreground: vaxis.IndexColor(8)})
		}
		style := vaxis.Style{}
		if i == tb.active {
			style.Attribute |= vaxis.AttrReverse | vaxis.AttrBold
		}
		write(" "+strconv.Itoa(i+1)+" "+label+" ", style)
	}

	return s, nil
}
