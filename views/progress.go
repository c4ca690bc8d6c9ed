package views

import (
	"fmt"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"git.sr.ht/~rockorager/vaxis/vxfw/richtext"
	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/deevus/gtnh-translator-tui/widgets"
	"github.com/dustin/go-humanize"
)

const rateSamples = 120

// ProgressViewParams holds configuration for creating a ProgressView.
type ProgressViewParams struct {
	ServerName string
	URL        string
}

// ProgressView shows the live run: statistics, the progress gauge, the
// completion rate, the last translated pair and the status line.
type ProgressView struct {
	serverName string
	url        string

	view      state.ViewState
	attempted bool
	received  bool
	starting  bool

	rate       *widgets.Sparkline
	lastRate   float64
	lastCount  int
	lastTotal  int
	lastSample time.Time
}

// NewProgressView creates a ProgressView with an empty state.
func NewProgressView(p ProgressViewParams) *ProgressView {
	return &ProgressView{
		serverName: p.ServerName,
		url:        p.URL,
		rate:       widgets.NewSparkline(rateSamples),
	}
}

// Refresh records a new model snapshot taken at now. A completion rate sample
// is taken whenever the completed count moves forward within the same run.
func (pv *ProgressView) Refresh(v state.ViewState, now time.Time) {
	p := v.Progress
	switch {
	case p.Total != pv.lastTotal || p.Completed < pv.lastCount:
		pv.rate.Reset()
		pv.lastRate = 0
		pv.lastSample = now
	case p.Completed > pv.lastCount && !pv.lastSample.IsZero():
		if secs := now.Sub(pv.lastSample).Seconds(); secs > 0 {
			pv.lastRate = float64(p.Completed-pv.lastCount) / secs
			pv.rate.Push(pv.lastRate)
		}
		pv.lastSample = now
	case pv.lastSample.IsZero():
		pv.lastSample = now
	}
	pv.lastCount, pv.lastTotal = p.Completed, p.Total

	pv.view = v
	if v.Connection == state.ConnConnecting {
		pv.attempted = true
	}
	switch {
	case v != (state.ViewState{Connection: v.Connection}):
		pv.received = true
	case v.Connection == state.ConnConnected:
		pv.received = true
	case v.Connection == state.ConnDisconnected && pv.attempted:
		// the attempt ended without data; show the disconnected dashboard
		pv.received = true
	}
}

// Waiting reports whether the placeholder is shown instead of the dashboard.
func (pv *ProgressView) Waiting() bool {
	return !pv.received
}

// View returns the last snapshot passed to Refresh.
func (pv *ProgressView) View() state.ViewState {
	return pv.view
}

// Rate returns the most recent completion rate in items per second.
func (pv *ProgressView) Rate() float64 {
	return pv.lastRate
}

// SetStarting marks a start command as in flight.
func (pv *ProgressView) SetStarting(b bool) {
	pv.starting = b
}

// Starting reports whether a start command is in flight.
func (pv *ProgressView) Starting() bool {
	return pv.starting
}

func connectionSegment(c state.ConnState) vaxis.Segment {
	switch c {
	case state.ConnConnected:
		return vaxis.Segment{Text: "● connected", Style: vaxis.Style{Foreground: vaxis.IndexColor(2)}}
	case state.ConnConnecting:
		return vaxis.Segment{Text: "◌ connecting", Style: vaxis.Style{Foreground: vaxis.IndexColor(3)}}
	default:
		return vaxis.Segment{Text: "○ disconnected", Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}}
	}
}

// StatusSegment renders a status the way the status line shows it.
func StatusSegment(s state.Status) vaxis.Segment {
	switch s.Kind {
	case state.StatusServerError:
		return vaxis.Segment{Text: s.String(), Style: vaxis.Style{Foreground: vaxis.IndexColor(1), Attribute: vaxis.AttrBold}}
	case state.StatusCommandError:
		return vaxis.Segment{Text: s.String(), Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}}
	case state.StatusInfo:
		return vaxis.Segment{Text: s.String()}
	default:
		return vaxis.Segment{Text: s.String(), Style: vaxis.Style{Attribute: vaxis.AttrDim}}
	}
}

// FormatRate renders items per second, switching to per minute below one.
func FormatRate(perSec float64) string {
	switch {
	case perSec <= 0:
		return "–"
	case perSec < 1:
		return fmt.Sprintf("%.1f/min", perSec*60)
	default:
		return fmt.Sprintf("%.1f/s", perSec)
	}
}

func drawLine(s *vxfw.Surface, ctx vxfw.DrawContext, row int, segs ...vaxis.Segment) error {
	if row >= int(ctx.Max.Height) {
		return nil
	}
	surf, err := richtext.New(segs).Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
	if err != nil {
		return err
	}
	s.AddChild(0, row, surf)
	return nil
}

// Draw renders the progress tab.
func (pv *ProgressView) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	if !pv.received {
		return drawWaiting(ctx, pv, "Connecting to "+pv.url+"...", "q quit  2 translate")
	}

	v := pv.view
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, pv)
	bold := vaxis.Style{Attribute: vaxis.AttrBold}
	dim := vaxis.Style{Attribute: vaxis.AttrDim}
	row := 0

	// === Header ===
	if err := drawLine(&s, ctx, row,
		vaxis.Segment{Text: " " + pv.serverName + "  ", Style: bold},
		vaxis.Segment{Text: pv.url + "  ", Style: dim},
		connectionSegment(v.Connection),
	); err != nil {
		return vxfw.Surface{}, err
	}
	row += 2

	// === Statistics ===
	st := v.Statistics
	if err := drawLine(&s, ctx, row,
		vaxis.Segment{Text: " ENTRIES ", Style: dim},
		vaxis.Segment{Text: humanize.Comma(int64(st.TotalEntries)), Style: bold},
		vaxis.Segment{Text: "   DICTIONARY ", Style: dim},
		vaxis.Segment{Text: humanize.Comma(int64(st.DictionarySize)), Style: bold},
		vaxis.Segment{Text: "   COMPLETED ", Style: dim},
		vaxis.Segment{Text: humanize.Comma(int64(st.CompletedCount)), Style: bold},
	); err != nil {
		return vxfw.Surface{}, err
	}
	row += 2

	// === Gauge ===
	p := v.Progress
	suffix := "not started"
	if p.Total > 0 {
		suffix = humanize.Comma(int64(p.Completed)) + " / " + humanize.Comma(int64(p.Total))
	}
	if row < int(ctx.Max.Height) {
		gauge := &widgets.BarGauge{Label: "RUN", Percent: v.ProgressPercent(), Suffix: suffix}
		gaugeSurf, err := gauge.Draw(ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(0, row, gaugeSurf)
	}
	row++

	// === Rate sparkline ===
	rateText := FormatRate(pv.lastRate)
	if err := drawLine(&s, ctx, row, vaxis.Segment{Text: "RATE ", Style: bold}); err != nil {
		return vxfw.Surface{}, err
	}
	sparkWidth := int(ctx.Max.Width) - 5 - len([]rune(rateText)) - 2
	if sparkWidth > 0 && row < int(ctx.Max.Height) {
		sparkSurf, err := pv.rate.Draw(ctx.WithMax(vxfw.Size{Width: uint16(sparkWidth), Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(5, row, sparkSurf)
		rateSurf, err := richtext.New([]vaxis.Segment{{Text: rateText, Style: dim}}).
			Draw(ctx.WithMax(vxfw.Size{Width: uint16(len([]rune(rateText))), Height: 1}))
		if err != nil {
			return vxfw.Surface{}, err
		}
		s.AddChild(5+sparkWidth+2, row, rateSurf)
	}
	row += 2

	// === Last pair ===
	if v.LastPair != nil {
		if err := drawLine(&s, ctx, row,
			vaxis.Segment{Text: " KEY  ", Style: dim},
			vaxis.Segment{Text: v.LastPair.Key},
		); err != nil {
			return vxfw.Surface{}, err
		}
		row++
		if err := drawLine(&s, ctx, row,
			vaxis.Segment{Text: " TEXT ", Style: dim},
			vaxis.Segment{Text: v.LastPair.Translation, Style: bold},
		); err != nil {
			return vxfw.Surface{}, err
		}
		row++
	} else {
		if err := drawLine(&s, ctx, row, vaxis.Segment{Text: " no items translated yet", Style: dim}); err != nil {
			return vxfw.Surface{}, err
		}
		row++
	}
	if p.Outcome != "" {
		if err := drawLine(&s, ctx, row,
			vaxis.Segment{Text: " LAST ", Style: dim},
			outcomeSegment(p.Outcome),
		); err != nil {
			return vxfw.Surface{}, err
		}
		row++
	}
	row++

	// === Status ===
	if err := drawLine(&s, ctx, row, vaxis.Segment{Text: " STATUS ", Style: dim}, StatusSegment(v.Status)); err != nil {
		return vxfw.Surface{}, err
	}

	// === Footer ===
	hint := " s start run   tab switch   q quit"
	if pv.starting {
		hint = " starting run..."
	}
	if footer := int(ctx.Max.Height) - 1; footer > row {
		if err := drawLine(&s, ctx, footer, vaxis.Segment{Text: hint, Style: dim}); err != nil {
			return vxfw.Surface{}, err
		}
	}

	return s, nil
}

func outcomeSegment(outcome string) vaxis.Segment {
	switch outcome {
	case "success":
		return vaxis.Segment{Text: outcome, Style: vaxis.Style{Foreground: vaxis.IndexColor(2)}}
	case "failed":
		return vaxis.Segment{Text: outcome, Style: vaxis.Style{Foreground: vaxis.IndexColor(1)}}
	default:
		return vaxis.Segment{Text: outcome, Style: vaxis.Style{Foreground: vaxis.IndexColor(3)}}
	}
}
