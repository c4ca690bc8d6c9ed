package widgets

import (
	"fmt"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// BarGauge is a horizontal progress bar for a whole-number percentage.
//
//	RUN  [████████░░░░░░░░░░░░]  42%  504 / 1,200
type BarGauge struct {
	Label    string // short left column, e.g. "RUN"
	Percent  int    // 0–100, clamped when drawn
	Suffix   string // dim text after the percentage
	BarWidth int    // cells inside the brackets; 0 fills the remaining width
}

const (
	barFilled = '█' // U+2588
	barEmpty  = '░' // U+2591

	// label(5) + "[" + "] 100%" + "  "
	gaugeChrome = 5 + 1 + 6 + 2
)

func barColor(pct int) vaxis.Color {
	if pct >= 100 {
		return vaxis.IndexColor(2) // green
	}
	return vaxis.IndexColor(4) // blue
}

func clampPercent(p int) int {
	return max(0, min(p, 100))
}

// Draw renders the bar gauge as a single row.
func (bg *BarGauge) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, bg)
	col := uint16(0)
	put := func(text string, style vaxis.Style) {
		for _, ch := range ctx.Characters(text) {
			if col >= ctx.Max.Width {
				return
			}
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
			col += uint16(ch.Width)
		}
	}

	pct := clampPercent(bg.Percent)
	width := bg.BarWidth
	if width <= 0 {
		width = max(int(ctx.Max.Width)-gaugeChrome-len([]rune(bg.Suffix)), 10)
	}
	filled := pct * width / 100

	put(fmt.Sprintf("%-4s ", bg.Label), vaxis.Style{Attribute: vaxis.AttrBold})
	put("[", vaxis.Style{})
	fill := vaxis.Style{Foreground: barColor(pct)}
	empty := vaxis.Style{Foreground: vaxis.IndexColor(8)}
	for i := 0; i < width; i++ {
		if i < filled {
			put(string(barFilled), fill)
		} else {
			put(string(barEmpty), empty)
		}
	}
	put(fmt.Sprintf("] %3d%%", pct), vaxis.Style{})
	if bg.Suffix != "" {
		put("  "+bg.Suffix, vaxis.Style{Attribute: vaxis.AttrDim})
	}

	return s, nil
}
