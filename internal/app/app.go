package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/interviewdeck/internal/api"
	"github.com/abhisek/interviewdeck/internal/events"
	"github.com/abhisek/interviewdeck/internal/managers"
	"github.com/abhisek/interviewdeck/internal/poller"
	"github.com/abhisek/interviewdeck/internal/router"
	"github.com/abhisek/interviewdeck/internal/screens/dashboard"
	"github.com/abhisek/interviewdeck/internal/screens/history"
	"github.com/abhisek/interviewdeck/internal/state"
	"github.com/abhisek/interviewdeck/internal/store"
	"github.com/abhisek/interviewdeck/internal/ui/layout"
	"github.com/abhisek/interviewdeck/internal/ui/theme"
)

// Options holds the dependencies the dashboard runs with.
type Options struct {
	Client    *api.Client
	State     *state.Store
	Managers  *managers.Set
	Scheduler *poller.Scheduler
	Refresher *managers.Refresher

	// EventRepo backs the job history screen. May be nil.
	EventRepo store.EventRepo

	BackendURL string
	Version    string
	Logger     *zap.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router  *router.Router
	state   *state.Store
	backend string
	width   int
	height  int
}

func newAppModel(ctx context.Context, opts Options) AppModel {
	var historyScreen func() router.Screen
	if opts.EventRepo != nil {
		historyScreen = func() router.Screen { return history.New(opts.EventRepo) }
	}
	var pollTimeout time.Duration
	if opts.Scheduler != nil {
		pollTimeout = opts.Scheduler.Config().Timeout
	}
	dash := dashboard.New(dashboard.Options{
		Managers:    opts.Managers,
		State:       opts.State,
		Context:     ctx,
		PollTimeout: pollTimeout,
		History:     historyScreen,
	})

	backend := opts.BackendURL
	if u, err := url.Parse(opts.BackendURL); err == nil && u.Host != "" {
		backend = u.Host
	}
	return AppModel{
		router:  router.New(dash),
		state:   opts.State,
		backend: backend,
	}
}

func (m AppModel) Init() tea.Cmd {
	return m.router.Active().Init()
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) status() string {
	s := m.backend
	if m.state != nil && m.state.Bool(state.RecordingIsRecording) {
		s = theme.Recording.Render("● REC") + "  " + s
	}
	return s + "  "
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.TooSmall(m.width, m.height))
		return v
	}

	frame := layout.Frame{Status: m.status()}
	if active := m.router.Active(); active != nil {
		frame.Title = active.Title()
		if p, ok := active.(router.KeyHinter); ok {
			frame.Hints = p.KeyHints()
		}
	}
	frame.Hints = append(frame.Hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})

	v.SetContent(frame.Render(m.width, m.height, m.router.View))
	return v
}

// checkBackend probes the backend once and emits a shell notice when it is
// unreachable or reports an incompatible version.
func checkBackend(ctx context.Context, opts Options) {
	h, err := opts.Client.Health(ctx)
	bus := opts.State.Bus()
	if err != nil {
		bus.Emit(events.TopicNotice, events.Notice{
			Panel: events.PanelShell,
			Level: events.LevelError,
			Text:  fmt.Sprintf("Backend at %s is not responding.", opts.BackendURL),
		})
		return
	}
	var incompatible *api.ErrIncompatibleBackend
	if err := api.CheckCompatible(opts.Version, h.Version); errors.As(err, &incompatible) {
		bus.Emit(events.TopicNotice, events.Notice{
			Panel: events.PanelShell,
			Level: events.LevelWarn,
			Text:  incompatible.Error(),
		})
	}
}

// Run starts the Bubble Tea program along with the poll scheduler and the
// state refresher. Both stop when the program exits.
func Run(ctx context.Context, opts Options) error {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newAppModel(ctx, opts))
	stop := dashboard.Bridge(opts.State.Bus(), p.Send)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if opts.Scheduler != nil {
		g.Go(func() error { return opts.Scheduler.Run(gctx) })
	}
	if opts.Refresher != nil {
		g.Go(func() error { return opts.Refresher.Run(gctx) })
	}
	if opts.Client != nil {
		g.Go(func() error {
			checkBackend(gctx, opts)
			return nil
		})
	}
	// Quit when the caller's context ends, for example on SIGTERM.
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})

	_, err := p.Run()
	cancel()
	if werr := g.Wait(); werr != nil && !errors.Is(werr, context.Canceled) {
		logger.Warn("background worker stopped", zap.Error(werr))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
