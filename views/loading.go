package views

import (
	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
)

// drawWaiting renders the placeholder shown before the first snapshot or
// push message arrives. Extra lines are drawn dim below the message.
func drawWaiting(ctx vxfw.DrawContext, owner vxfw.Widget, message string, hints ...string) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, owner)
	dim := vaxis.Style{Attribute: vaxis.AttrDim}

	if err := drawLine(&s, ctx, 0, vaxis.Segment{Text: " " + message, Style: dim}); err != nil {
		return vxfw.Surface{}, err
	}
	for i, h := range hints {
		if err := drawLine(&s, ctx, i+2, vaxis.Segment{Text: " " + h, Style: dim}); err != nil {
			return vxfw.Surface{}, err
		}
	}
	return s, nil
}
