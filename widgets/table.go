package widgets

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

const ellipsis = "…"

// TableColumn defines a column in a Table.
type TableColumn struct {
	Width      int         // fixed character width; 0 shares the leftover width
	AlignRight bool        // right-align text within the column
	Style      vaxis.Style // applied to all cells in this column
}

// Table renders rows of text in columns. Text longer than its column is cut
// and marked with an ellipsis. Rows beyond the available height are dropped
// from the top when Tail is set, so the newest rows stay visible.
type Table struct {
	Columns []TableColumn
	Rows    [][]string
	Header  []string // optional header row rendered with AttrDim
	Gap     int      // spaces between columns (default 1)
	Tail    bool
}

// columnWidths resolves flexible columns against the available width.
func (t *Table) columnWidths(total, gap int) []int {
	widths := make([]int, len(t.Columns))
	fixed, flex := 0, 0
	for i, c := range t.Columns {
		widths[i] = c.Width
		if c.Width == 0 {
			flex++
		}
		fixed += c.Width
	}
	if flex == 0 {
		return widths
	}
	spare := total - fixed - gap*(len(t.Columns)-1)
	share := max(spare/flex, 1)
	for i := range widths {
		if widths[i] == 0 {
			widths[i] = share
		}
	}
	return widths
}

// writeText writes s into surf at (col, row) within maxWidth.
func writeText(surf *vxfw.Surface, col, row uint16, maxWidth int, s string, style vaxis.Style, alignRight bool) {
	chars := vaxis.Characters(s)

	displayWidth := 0
	for _, ch := range chars {
		displayWidth += ch.Width
	}

	if displayWidth > maxWidth && maxWidth > 1 {
		// keep maxWidth-1 cells and mark the cut
		kept, w := 0, 0
		for _, ch := range chars {
			if w+ch.Width > maxWidth-1 {
				break
			}
			w += ch.Width
			kept++
		}
		chars = append(chars[:kept:kept], vaxis.Characters(ellipsis)...)
		displayWidth = w + 1
	}

	offset := 0
	if alignRight && displayWidth < maxWidth {
		offset = maxWidth - displayWidth
	}

	pos := offset
	for _, ch := range chars {
		if pos+ch.Width > maxWidth {
			break
		}
		surf.WriteCell(col+uint16(pos), row, vaxis.Cell{
			Character: ch,
			Style:     style,
		})
		pos += ch.Width
	}
}

// Draw renders the table header (if set) and as many rows as fit.
func (t *Table) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	gap := t.Gap
	if gap == 0 {
		gap = 1
	}
	widths := t.columnWidths(int(ctx.Max.Width), gap)

	totalRows := len(t.Rows)
	if t.Header != nil {
		totalRows++
	}
	height := min(uint16(totalRows), ctx.Max.Height)

	s := vxfw.NewSurface(ctx.Max.Width, height, t)
	row := uint16(0)

	drawRow := func(cells []string, style func(TableColumn) vaxis.Style) {
		col := 0
		for i, c := range t.Columns {
			if col >= int(ctx.Max.Width) {
				break
			}
			text := ""
			if i < len(cells) {
				text = cells[i]
			}
			w := min(widths[i], int(ctx.Max.Width)-col)
			writeText(&s, uint16(col), row, w, text, style(c), c.AlignRight)
			col += widths[i] + gap
		}
		row++
	}

	if t.Header != nil && row < height {
		drawRow(t.Header, func(TableColumn) vaxis.Style {
			return vaxis.Style{Attribute: vaxis.AttrDim}
		})
	}

	rows := t.Rows
	if room := int(height - row); t.Tail && len(rows) > room {
		rows = rows[len(rows)-room:]
	}
	for _, cells := range rows {
		if row >= height {
			break
		}
		drawRow(cells, func(c TableColumn) vaxis.Style { return c.Style })
	}

	return s, nil
}
