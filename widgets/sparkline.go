package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Block characters for sparkline rendering (8 levels).
var sparkBlocks = [8]rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a 1-row graph of recent non-negative samples, scaled
// from zero to the largest visible sample and aligned to the right edge.
type Sparkline struct {
	values []float64
	head   int
	count  int
	Style  vaxis.Style
}

// NewSparkline creates a Sparkline with the given ring buffer capacity.
func NewSparkline(capacity int) *Sparkline {
	return &Sparkline{
		values: make([]float64, max(capacity, 1)),
		Style:  vaxis.Style{Foreground: vaxis.IndexColor(6)}, // cyan
	}
}

// Push adds a sample. Negative samples are stored as zero.
func (sl *Sparkline) Push(v float64) {
	sl.values[sl.head] = max(v, 0)
	sl.head = (sl.head + 1) % len(sl.values)
	if sl.count < len(sl.values) {
		sl.count++
	}
}

// Reset drops every stored sample.
func (sl *Sparkline) Reset() {
	sl.head, sl.count = 0, 0
}

// Count returns the number of samples currently stored.
func (sl *Sparkline) Count() int {
	return sl.count
}

// Values returns the stored samples, oldest first.
func (sl *Sparkline) Values() []float64 {
	out := make([]float64, sl.count)
	start := (sl.head - sl.count + len(sl.values)) % len(sl.values)
	for i := range out {
		out[i] = sl.values[(start+i)%len(sl.values)]
	}
	return out
}

// Draw renders the most recent samples that fit in one row.
func (sl *Sparkline) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, sl)

	vals := sl.Values()
	width := int(ctx.Max.Width)
	if len(vals) > width {
		vals = vals[len(vals)-width:]
	}
	if len(vals) == 0 {
		return s, nil
	}

	peak := 0.0
	for _, v := range vals {
		peak = max(peak, v)
	}

	offset := width - len(vals)
	for i, v := range vals {
		level := 0
		if peak > 0 {
			level = min(int(v/peak*7+0.5), 7)
		}
		for _, c := range ctx.Characters(string(sparkBlocks[level])) {
			s.WriteCell(uint16(offset+i), 0, vaxis.Cell{Character: c, Style: sl.Style})
		}
	}

	return s, nil
}
