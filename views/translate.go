package views

import (
	"errors"
	"strconv"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/gtnh-translator-tui/internal/session"
	"github.com/deevus/gtnh-translator-tui/widgets"
)

const maxHistory = 200

// TranslateViewParams holds configuration for creating a TranslateView.
type TranslateViewParams struct {
	// Submit is called with the prompt text when Enter is pressed. The
	// caller posts a TranslateFinished event when the round trip ends.
	Submit func(text string)
}

// TranslateView is the ad-hoc translation tab: a prompt and the results of
// this session's translations, newest last.
type TranslateView struct {
	prompt  widgets.Prompt
	submit  func(string)
	history [][]string
	pending int
	lastErr string
}

// NewTranslateView creates an empty TranslateView.
func NewTranslateView(p TranslateViewParams) *TranslateView {
	return &TranslateView{
		prompt: widgets.Prompt{
			Label:       "› ",
			Placeholder: "type text to translate",
			Focused:     true,
		},
		submit: p.Submit,
	}
}

// Input returns the current prompt text.
func (tv *TranslateView) Input() string {
	return tv.prompt.Value()
}

// Pending returns the number of translations in flight.
func (tv *TranslateView) Pending() int {
	return tv.pending
}

// History returns the recorded rows: original, translated, source.
func (tv *TranslateView) History() [][]string {
	return tv.history
}

// LastError returns the message of the most recent failed translation.
func (tv *TranslateView) LastError() string {
	return tv.lastErr
}

// Finish records the outcome of a translation round trip.
func (tv *TranslateView) Finish(ev TranslateFinished) {
	if tv.pending > 0 {
		tv.pending--
	}
	switch {
	case errors.Is(ev.Err, session.ErrNothingToTranslate):
	case ev.Err != nil:
		tv.lastErr = ev.Err.Error()
	case ev.Response == nil:
	default:
		tv.lastErr = ""
		original := ev.Text
		if ev.Response.Original != "" {
			original = ev.Response.Original
		}
		tv.history = append(tv.history, []string{original, ev.Response.Text(), ev.Response.Source})
		if len(tv.history) > maxHistory {
			tv.history = tv.history[len(tv.history)-maxHistory:]
		}
	}
}

// HandleEvent submits on Enter, clears on Esc and sends other keys to the prompt.
func (tv *TranslateView) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches(vaxis.KeyEnter):
		text := tv.prompt.Value()
		tv.prompt.Clear()
		if text == "" {
			return vxfw.ConsumeAndRedraw(), nil
		}
		tv.pending++
		if tv.submit != nil {
			tv.submit(text)
		}
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches(vaxis.KeyEsc):
		tv.prompt.Clear()
		tv.lastErr = ""
		return vxfw.ConsumeAndRedraw(), nil
	}
	return tv.prompt.HandleEvent(ev, phase)
}

// Draw renders the prompt, a status line and the history table.
func (tv *TranslateView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, tv)
	oneRow := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})

	promptSurf, err := tv.prompt.Draw(oneRow)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, promptSurf)

	var line vaxis.Segment
	switch {
	case tv.pending > 0:
		line = vaxis.Segment{Text: "  translating (" + strconv.Itoa(tv.pending) + ")...", Style: vaxis.Style{Foreground: vaxis.IndexColor(3)}}
	case tv.lastErr != "":
		line = vaxis.Segment{Text: "  " + tv.lastErr, Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}}
	default:
		line = vaxis.Segment{Text: "  enter translate   esc clear   tab switch", Style: vaxis.Style{Attribute: vaxis.AttrDim}}
	}
	if err := drawLine(&s, ctx, 1, line); err != nil {
		return vxfw.Surface{}, err
	}

	if ctx.Max.Height <= 3 || len(tv.history) == 0 {
		return s, nil
	}
	table := &widgets.Table{
		Columns: []widgets.TableColumn{
			{Width: 0},
			{Width: 0, Style: vaxis.Style{Attribute: vaxis.AttrBold}},
			{Width: 10, Style: vaxis.Style{Attribute: vaxis.AttrDim}},
		},
		Header: []string{"ORIGINAL", "TRANSLATED", "SOURCE"},
		Rows:   tv.history,
		Gap:    2,
		Tail:   true,
	}
	tableSurf, err := table.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: ctx.Max.Height - 3}))
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 3, tableSurf)
	return s, nil
}
