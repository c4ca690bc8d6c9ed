package app

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"git.sr.ht/~rockorager/vaxis"
	"git.sr.ht/~rockorager/vaxis/vxfw"
	"github.com/deevus/gtnh-translator-tui/internal/api"
	"github.com/deevus/gtnh-translator-tui/internal/state"
	"github.com/deevus/gtnh-translator-tui/views"
	"github.com/deevus/gtnh-translator-tui/widgets"
)

const (
	tabProgress = iota
	tabTranslate
)

// Controller is the session surface the UI drives.
type Controller interface {
	Model() *state.Model
	StartTranslationRun(ctx context.Context, opts *api.StartOptions) error
	Translate(ctx context.Context, text string) (*api.TranslateResponse, error)
}

// Params holds configuration for creating an App.
type Params struct {
	Controller Controller
	ServerName string
	URL        string

	// Context bounds the commands started from the UI. Defaults to Background.
	Context context.Context
	Logger  *slog.Logger
}

// App is the root vxfw widget.
type App struct {
	ctrl       Controller
	serverName string
	ctx        context.Context
	log        *slog.Logger

	tabBar    *widgets.TabBar
	progress  *views.ProgressView
	translate *views.TranslateView
	postEvent func(vaxis.Event)

	// set while a StateChanged is queued; cleared when it is handled
	statePending atomic.Bool
}

// New creates the root App widget for the given controller.
func New(p Params) *App {
	ctx := p.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	a := &App{
		ctrl:       p.Controller,
		serverName: p.ServerName,
		ctx:        ctx,
		log:        logger.With("component", "ui"),
		tabBar:     widgets.NewTabBar([]string{"Progress", "Translate"}),
		progress:   views.NewProgressView(views.ProgressViewParams{ServerName: p.ServerName, URL: p.URL}),
	}
	a.translate = views.NewTranslateView(views.TranslateViewParams{Submit: a.submitTranslation})
	a.progress.Refresh(a.ctrl.Model().Snapshot(), time.Now())
	return a
}

// SetPostEvent sets the function used to post events to the vaxis event loop.
// Must be called before Watch.
func (a *App) SetPostEvent(fn func(vaxis.Event)) {
	a.postEvent = fn
}

// Watch posts a StateChanged event after model updates. Updates that arrive
// while one is still queued are folded into it. The returned function stops
// watching.
func (a *App) Watch() (cancel func()) {
	return a.ctrl.Model().Subscribe(func(state.ViewState) {
		if a.statePending.CompareAndSwap(false, true) {
			a.post(views.StateChanged{})
		}
	})
}

func (a *App) post(ev vaxis.Event) {
	if a.postEvent != nil {
		a.postEvent(ev)
	}
}

// ActiveTab returns the current tab index.
func (a *App) ActiveTab() int {
	return a.tabBar.Active()
}

// SetTab switches to the given tab index.
func (a *App) SetTab(i int) {
	a.tabBar.SetActive(i)
}

// ServerName returns the connected server profile name.
func (a *App) ServerName() string {
	return a.serverName
}

// Progress returns the progress tab.
func (a *App) Progress() *views.ProgressView {
	return a.progress
}

// Translate returns the translation tab.
func (a *App) Translate() *views.TranslateView {
	return a.translate
}

// StartRun dispatches a start command unless one is already in flight.
func (a *App) StartRun() {
	if a.progress.Starting() {
		return
	}
	a.progress.SetStarting(true)
	go func() {
		err := a.ctrl.StartTranslationRun(a.ctx, nil)
		a.post(views.StartFinished{Err: err})
	}()
}

func (a *App) submitTranslation(text string) {
	go func() {
		resp, err := a.ctrl.Translate(a.ctx, text)
		a.post(views.TranslateFinished{Text: text, Response: resp, Err: err})
	}()
}

func (a *App) activeView() vxfw.Widget {
	if a.tabBar.Active() == tabTranslate {
		return a.translate
	}
	return a.progress
}

// Draw renders the tab bar and active view.
func (a *App) Draw(ctx vxfw.DrawContext) (vxfw.Surface, error) {
	s := vxfw.NewSurface(ctx.Max.Width, ctx.Max.Height, a)

	// Tab bar (1 row)
	tabCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: 1})
	tabSurf, err := a.tabBar.Draw(tabCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 0, tabSurf)

	if ctx.Max.Height < 2 {
		return s, nil
	}

	// Active view (remaining space, one blank row under the tabs)
	viewCtx := ctx.WithMax(vxfw.Size{Width: ctx.Max.Width, Height: ctx.Max.Height - 2})
	viewSurf, err := a.activeView().Draw(viewCtx)
	if err != nil {
		return vxfw.Surface{}, err
	}
	s.AddChild(0, 2, viewSurf)

	return s, nil
}

// CaptureEvent handles global keybindings before views process them. On the
// Translate tab printable keys belong to the prompt.
func (a *App) CaptureEvent(ev vaxis.Event) (vxfw.Command, error) {
	key, ok := ev.(vaxis.Key)
	if !ok {
		return nil, nil
	}
	switch {
	case key.Matches('c', vaxis.ModCtrl):
		return vxfw.QuitCmd{}, nil
	case key.Matches(vaxis.KeyTab):
		a.tabBar.Next()
		return vxfw.ConsumeAndRedraw(), nil
	case key.Matches(vaxis.KeyTab, vaxis.ModShift):
		a.tabBar.Prev()
		return vxfw.ConsumeAndRedraw(), nil
	}
	if a.tabBar.Active() == tabTranslate {
		return nil, nil
	}

	switch {
	case key.Matches('q'):
		return vxfw.QuitCmd{}, nil
	case key.Matches('1'):
		a.tabBar.SetActive(tabProgress)
	case key.Matches('2'):
		a.tabBar.SetActive(tabTranslate)
	case key.Matches('s'):
		a.StartRun()
	default:
		return nil, nil
	}
	return vxfw.ConsumeAndRedraw(), nil
}

// HandleEvent applies posted session events and delegates keys to the active view.
func (a *App) HandleEvent(ev vaxis.Event, phase vxfw.EventPhase) (vxfw.Command, error) {
	switch ev := ev.(type) {
	case views.StateChanged:
		a.statePending.Store(false)
		a.progress.Refresh(a.ctrl.Model().Snapshot(), time.Now())
		return vxfw.RedrawCmd{}, nil
	case views.StartFinished:
		a.progress.SetStarting(false)
		if ev.Err != nil {
			a.log.Warn("start run failed", "error", ev.Err)
		}
		return vxfw.RedrawCmd{}, nil
	case views.TranslateFinished:
		if ev.Err != nil {
			a.log.Debug("translation failed", "error", ev.Err)
		}
		a.translate.Finish(ev)
		return vxfw.RedrawCmd{}, nil
	default:
		type handler interface {
			HandleEvent(vaxis.Event, vxfw.EventPhase) (vxfw.Command, error)
		}
		if h, ok := a.activeView().(handler); ok {
			return h.HandleEvent(ev, phase)
		}
	}
	return nil, nil
}
