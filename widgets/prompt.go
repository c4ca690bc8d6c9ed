package widgets

import (
	"strings"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// Prompt is a single-line text input. It edits at the end of the line only;
// submitting and cancelling are left to the owner.
type Prompt struct {
	Label       string
	Placeholder string
	Focused     bool

	value string
}

// Value returns the current text.
func (p *Prompt) Value() string {
	return p.value
}

// SetValue replaces the current text.
func (p *Prompt) SetValue(s string) {
	p.value = s
}

// Clear empties the input.
func (p *Prompt) Clear() {
	p.value = ""
}

// Backspace deletes the last grapheme.
func (p *Prompt) Backspace() {
	chars := vaxis.Characters(p.value)
	if len(chars) == 0 {
		return
	}
	var b strings.Builder
	for _, ch := range chars[:len(chars)-1] {
		b.WriteString(ch.Grapheme)
	}
	p.value = b.String()
}

// HandleEvent consumes printable keys, Backspace and Ctrl+U.
func (p *Prompt) HandleEvent(ev vaxis.Event, _ vxfw.EventPhase) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches(vaxis.KeyBackspace):
		p.Backspace()
	case key.Matches('u', vaxis.ModCtrl):
		p.Clear()
	case key.Text != "" && key.Modifiers&(vaxis.ModCtrl|vaxis.ModAlt) == 0:
		p.value += key.Text
	default:
		return nil, nil
	}
	return vxfw.ConsumeAndRedraw(), nil
}

// Draw renders the label, the text and a block cursor. When the text is
// wider than the row, its tail is shown.
func (p *Prompt) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, 1, p)
	col := uint16(0)
	for _, ch := range ctx.Characters(p.Label) {
		if col >= ctx.Max.Width {
			return s, nil
		}
		s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: vaxis.Style{Attribute: vaxis.AttrBold}})
		col += uint16(ch.Width)
	}

	if p.value == "" && p.Placeholder != "" {
		// the cursor sits on the first placeholder cell
		for i, ch := range ctx.Characters(p.Placeholder) {
			if col >= ctx.Max.Width {
				break
			}
			style := vaxis.Style{Attribute: vaxis.AttrDim}
			if i == 0 && p.Focused {
				style.Attribute |= vaxis.AttrReverse
			}
			s.WriteCell(col, 0, vaxis.Cell{Character: ch, Style: style})
			col += uint16(ch.Width)
		}
		return s, nil
	}

	room := int(ctx.Max.Width) - int(col) - 1 // last cell for the cursor
	chars := ctx.Characters(p.value)
	width := 0
	start := len(chars)
	for start > 0 && width+chars[start-1].Width <= room {
		start--
		width += chars[start].Width
	}
	for _, ch := range chars[start:] {
		s.WriteCell(col, 0, vaxis.Cell{Character: ch})
		col += uint16(ch.Width)
	}

	if p.Focused && col < ctx.Max.Width {
		s.WriteCell(col, 0, vaxis.Cell{
			Character: vaxis.Character{Grapheme: " ", Width: 1},
			Style:     vaxis.Style{Attribute: vaxis.AttrReverse},
		})
	}
	return s, nil
}
