package app

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/logger"
	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/screens/generate"
	"github.com/abhisek/studybuddy/internal/screens/home"
	"github.com/abhisek/studybuddy/internal/screens/welcome"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/ui/layout"
)

// Options configures the TUI.
type Options struct {
	Controller *session.Controller
	Generate   generate.Options

	// Autosave is the interval of the background save. Zero disables it.
	Autosave time.Duration

	Logger *logger.Logger
}

// statusMsg carries the header status derived from a controller snapshot.
type statusMsg string

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status string
	width  int
	height int
}

// newAppModel creates an AppModel that opens on the welcome screen and
// hands over to the library.
func newAppModel(ctx context.Context, opts Options) AppModel {
	ctrl := opts.Controller
	next := func() screen.Screen {
		return home.New(ctx, ctrl, opts.Generate)
	}

	snap := ctrl.Snapshot()
	resume := ""
	if snap.Set != nil {
		resume = snap.Set.Title
	}
	return AppModel{
		router: router.New(welcome.New(next, resume)),
		status: statusFor(snap),
	}
}

// statusFor summarizes the active set for the header.
func statusFor(snap session.Snapshot) string {
	if snap.Set == nil {
		return ""
	}
	st := snap.Stats
	status := fmt.Sprintf("%s  %d/%d", layout.Truncate(snap.Set.Title, 24), st.Answered, st.Total)
	if st.Answered > 0 {
		status += fmt.Sprintf("  %d%%", st.Accuracy)
	}
	return status + "  "
}

func (m AppModel) Init() tea.Cmd {
	if active := m.router.Active(); active != nil {
		return active.Init()
	}
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if h, ok := m.router.Active().(screen.EscapeHandler); ok && h.HandlesEscape() {
				break
			}
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
			return m, nil
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView("")
	v.AltScreen = true

	if m.width == 0 || m.height == 0 {
		return v
	}

	if layout.IsTooSmall(m.width, m.height) {
		v.SetContent(layout.RenderMinSizeMessage(m.width, m.height))
		return v
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(), m.width)

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := m.height - headerHeight - footerHeight
	if contentHeight < 0 {
		contentHeight = 0
	}

	content := m.router.View(m.width, contentHeight)
	frame := layout.RenderFrame(header, content, footer, m.width, m.height)

	v.SetContent(frame)
	return v
}

func (m AppModel) footerHints() []layout.KeyHint {
	var hints []layout.KeyHint
	if p, ok := m.router.Active().(screen.KeyHintProvider); ok {
		hints = p.KeyHints()
	} else if m.router.Depth() > 1 {
		hints = []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	return append(hints, layout.KeyHint{Key: "Ctrl+C", Description: "Quit"})
}

// Run starts the Bubble Tea program and blocks until it exits. The active
// set is autosaved while running and saved once more on exit.
func Run(ctx context.Context, opts Options) error {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	ctrl := opts.Controller

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.Autosave > 0 {
		stop := ctrl.StartAutosave(ctx, opts.Autosave)
		defer stop()
	}

	m := newAppModel(ctx, opts)
	p := tea.NewProgram(m, tea.WithContext(ctx))

	// Subscribers run on the goroutine that mutated the controller, which
	// is usually the program's own event loop.
	unsubscribe := ctrl.Subscribe(func(snap session.Snapshot) {
		status := statusMsg(statusFor(snap))
		go p.Send(status)
	})
	defer unsubscribe()

	log.Info("tui started")
	_, err := p.Run()

	m.router.Close()
	if ctrl.SaveCurrentSession(context.WithoutCancel(ctx)) {
		log.Debug("saved study set on exit")
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	log.Info("tui stopped")
	return nil
}
