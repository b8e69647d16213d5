package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/atomicstack/termcord/internal/backend"
	"github.com/atomicstack/termcord/internal/backend/spool"
	"github.com/atomicstack/termcord/internal/logging"
	"github.com/atomicstack/termcord/internal/state"
	"github.com/atomicstack/termcord/internal/ui"
	"github.com/atomicstack/termcord/internal/ui/command"
)

// Config describes user-provided application options.
type Config struct {
	SpoolDir string
	User     string
	Token    string `json:"-"`

	Width        int
	Height       int
	HistoryLimit int

	PollInterval    time.Duration
	ShutdownTimeout time.Duration
	RetryDelay      time.Duration
	RequestInterval time.Duration
}

// App is one connected client: the bridge, the shared session, the event
// loop and the Bubble Tea program that draws it.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	bridge  *backend.Bridge
	program *tea.Program
	loop    *ui.EventLoop
}

// New connects to the spool and assembles the client. A failed connection,
// including a rejected token, is returned before anything is drawn.
func New(ctx context.Context, cfg Config, opts ...tea.ProgramOption) (*App, error) {
	provider := spool.New(spool.Options{
		Root:  cfg.SpoolDir,
		User:  cfg.User,
		Token: cfg.Token,
	})
	stream, err := provider.Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	bridge := backend.NewBridge(ctx, provider, stream, backend.Options{
		RetryDelay:      cfg.RetryDelay,
		RequestInterval: cfg.RequestInterval,
	})

	session := state.NewSession()
	session.HistoryLimit = cfg.HistoryLimit
	store := state.NewStore(session)
	screen := ui.NewScreen(ui.ScreenOptions{
		Width:  cfg.Width,
		Height: cfg.Height,
		Size:   terminalSize,
	})
	bus := command.New(bridge)
	model := ui.NewModel(store, screen, bus, ui.Options{ShutdownTimeout: cfg.ShutdownTimeout})
	program := tea.NewProgram(model, opts...)

	return &App{
		ctx:     ctx,
		cancel:  cancel,
		bridge:  bridge,
		program: program,
		loop:    ui.NewEventLoop(store, screen, bridge, bus, program.Send, cfg.PollInterval),
	}, nil
}

func terminalSize() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// Send injects msg into the running program.
func (a *App) Send(msg tea.Msg) {
	a.program.Send(msg)
}

// Run executes the program and waits for every goroutine the client
// started before returning.
func (a *App) Run() error {
	defer a.cancel()

	var group errgroup.Group
	group.Go(func() error { return a.loop.Run(a.ctx) })

	_, runErr := a.program.Run()

	a.cancel()
	bridgeErr := a.bridge.Wait()
	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error(fmt.Errorf("event loop: %w", err))
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("run program: %w", runErr)
	}
	if bridgeErr != nil {
		return fmt.Errorf("backend: %w", bridgeErr)
	}
	return nil
}

// Run bootstraps and executes the client in the alternate screen.
func Run(cfg Config) error {
	a, err := New(context.Background(), cfg, tea.WithAltScreen())
	if err != nil {
		return err
	}
	return a.Run()
}
