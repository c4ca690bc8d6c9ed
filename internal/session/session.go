// Package session owns one monitoring session: it fetches the statistics
// snapshot once, applies push events in arrival order, and dispatches
// commands. All writes to the view model happen on a single apply goroutine.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/deevus/gtnh-translator-tui/internal/api"
	"github.com/deevus/gtnh-translator-tui/internal/live"
	"github.com/deevus/gtnh-translator-tui/internal/state"
	"golang.org/x/sync/errgroup"
)

const eventBuffer = 64

var (
	// ErrNothingToTranslate is returned by TranslateOne for empty input.
	ErrNothingToTranslate = errors.New("nothing to translate")

	// ErrAlreadyStarted is returned by Start on a session that was started or closed.
	ErrAlreadyStarted = errors.New("session already started")
)

// API is the request/response side of the server used by a session.
type API interface {
	Stats(ctx context.Context) (state.StatisticsSnapshot, error)
	StartTranslation(ctx context.Context, opts *api.StartOptions) error
	Translate(ctx context.Context, text string) (*api.TranslateResponse, error)
}

// Channel is a push channel that forwards events until ctx is done and
// closes events when it returns.
type Channel interface {
	Run(ctx context.Context, events chan<- live.Event) error
}

// Params configures a Session.
type Params struct {
	API API

	// Model receives every state change. Nil creates a fresh one.
	Model *state.Model

	Logger *slog.Logger
}

// Session ties the snapshot fetch, the push channel and the commands to one
// view model.
type Session struct {
	api      API
	model    *state.Model
	log      *slog.Logger
	reducers chan state.Reducer

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool

	channelDone chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
}

// New creates a Session. Nothing runs until Start.
func New(p Params) *Session {
	model := p.Model
	if model == nil {
		model = state.NewModel()
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		api:      p.API,
		model:    model,
		log:      logger.With("component", "session"),
		reducers:    make(chan state.Reducer),
		channelDone: make(chan struct{}),
		done:        make(chan struct{}),
	}
}

// Model returns the session's view model.
func (s *Session) Model() *state.Model {
	return s.model
}

// ChannelDone is closed when the push channel stops for good: after Close,
// or when the server drops it and reconnecting is disabled. Commands keep
// working after it closes.
func (s *Session) ChannelDone() <-chan struct{} {
	return s.channelDone
}

// Done is closed once every session goroutine has exited after Close.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Start issues the statistics fetch, runs ch, and starts applying events.
// It returns immediately; the session runs until ctx is done or Close.
func (s *Session) Start(ctx context.Context, ch Channel) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.ctx = ctx
	s.mu.Unlock()

	events := make(chan live.Event, eventBuffer)

	var g errgroup.Group
	g.Go(func() error {
		s.fetchStats(ctx)
		return nil
	})
	g.Go(func() error {
		defer close(s.channelDone)
		if err := ch.Run(ctx, events); err != nil {
			s.log.Warn("push channel ended", "error", err)
		}
		return nil
	})
	g.Go(func() error {
		s.apply(ctx, events)
		return nil
	})

	go func() {
		_ = g.Wait()
		close(s.done)
	}()
	return nil
}

// Close stops the session and waits for its goroutines, which releases the
// push channel. It is safe to call more than once.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		cancel, started := s.cancel, s.started
		s.started = true
		s.mu.Unlock()

		if !started {
			close(s.channelDone)
			close(s.done)
			return
		}
		cancel()
	})
	<-s.done
	return nil
}

// ConnectionChanged records a push channel state transition.
func (s *Session) ConnectionChanged(c state.ConnState) {
	s.push(state.WithConnection(c))
}

// StartTranslationRun asks the server to start a full run. A failure is
// recorded as the session status and returned.
func (s *Session) StartTranslationRun(ctx context.Context, opts *api.StartOptions) error {
	if err := s.api.StartTranslation(ctx, opts); err != nil {
		s.log.Warn("start translation failed", "error", err)
		s.push(state.WithCommandError(err.Error()))
		return err
	}
	s.log.Info("translation run requested")
	return nil
}

// Translate sends one ad-hoc translation and returns the full response.
// Session state is not touched.
func (s *Session) Translate(ctx context.Context, text string) (*api.TranslateResponse, error) {
	if text == "" {
		return nil, ErrNothingToTranslate
	}
	return s.api.Translate(ctx, text)
}

// TranslateOne returns the translation of text.
func (s *Session) TranslateOne(ctx context.Context, text string) (string, error) {
	resp, err := s.Translate(ctx, text)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (s *Session) fetchStats(ctx context.Context) {
	stats, err := s.api.Stats(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.log.Warn("statistics unavailable", "error", err)
		}
		return
	}
	s.push(state.WithStatistics(stats))
}

// apply is the only writer of the model while the session runs.
func (s *Session) apply(ctx context.Context, events <-chan live.Event) {
	defer s.model.Update(state.WithConnection(state.ConnDisconnected))

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			s.model.Update(ev.Reducer())
		case r := <-s.reducers:
			s.model.Update(r)
		case <-ctx.Done():
			return
		}
	}
}

// push hands r to the apply loop, or applies it directly when the session
// is not running.
func (s *Session) push(r state.Reducer) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	if ctx == nil {
		s.model.Update(r)
		return
	}
	select {
	case s.reducers <- r:
	case <-ctx.Done():
	}
}
