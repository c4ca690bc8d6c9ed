package views_test

import (
	"strings"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

func testDrawContext(w, h uint16) vxfw.DrawContext {
	return vxfw.DrawContext{
		Max: vxfw.Size{Width: w, Height: h},
		Min: vxfw.Size{},
		Characters: func(s string) []vaxis.Character {
			chars := make([]vaxis.Character, 0, len(s))
			for _, r := range s {
				chars = append(chars, vaxis.Character{Grapheme: string(r), Width: 1})
			}
			return chars
		},
	}
}

// surfaceText flattens a surface and its children into rows of text.
// Children are painted over the parent at their origin.
func surfaceText(s vxfw.Surface) []string {
	w, h := int(s.Size.Width), int(s.Size.Height)
	grid := make([][]string, h)
	for r := range grid {
		grid[r] = make([]string, w)
	}
	var paint func(s vxfw.Surface, col, row int)
	paint = func(s vxfw.Surface, col, row int) {
		sw := int(s.Size.Width)
		for i, c := range s.Buffer {
			if c.Character.Grapheme == "" || sw == 0 {
				continue
			}
			r, cc := row+i/sw, col+i%sw
			if r < h && cc < w {
				grid[r][cc] = c.Character.Grapheme
			}
		}
		for _, child := range s.Children {
			paint(child.Surface, col+int(child.Origin.Col), row+int(child.Origin.Row))
		}
	}
	paint(s, 0, 0)

	rows := make([]string, h)
	for r, cells := range grid {
		var b strings.Builder
		for _, g := range cells {
			if g == "" {
				g = " "
			}
			b.WriteString(g)
		}
		rows[r] = strings.TrimRight(b.String(), " ")
	}
	return rows
}
