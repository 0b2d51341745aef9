package welcome

import (
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

const (
	tickInterval = 100 * time.Millisecond
	pagesEnd     = 600 * time.Millisecond
	bannerAt     = 1200 * time.Millisecond
	totalDur     = 3000 * time.Millisecond
)

// bookFrames flip the pages of the opening book.
var bookFrames = []string{
	`   ______ ______
 _/      Y      \_
// ~~~~ | ~~~~  \\
//~~~~~ | ~~~~~  \\
//_____ | ______  \\
\___________________/`,
	`   ______ ______
 _/      Y   ╱  \_
// ~~~~ |  ╱~~  \\
//~~~~~ | ╱~~~~  \\
//_____ |╱______  \\
\___________________/`,
}

type tickMsg time.Time

// WelcomeScreen shows a short splash before handing over to the library.
type WelcomeScreen struct {
	next         func() screen.Screen
	resume       string
	elapsed      time.Duration
	tickCount    int
	transitioned bool
}

var _ screen.Screen = (*WelcomeScreen)(nil)

// New creates a WelcomeScreen that replaces itself with the screen built
// by next. resume names the study set being picked up, if any.
func New(next func() screen.Screen, resume string) *WelcomeScreen {
	return &WelcomeScreen{next: next, resume: resume}
}

func (w *WelcomeScreen) Title() string {
	return ""
}

func tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (w *WelcomeScreen) Init() tea.Cmd {
	return tick()
}

func (w *WelcomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg.(type) {
	case tickMsg:
		if w.transitioned {
			return w, nil
		}
		if w.elapsed < totalDur {
			w.elapsed += tickInterval
		}
		w.tickCount++
		return w, tick()

	case tea.KeyPressMsg:
		return w, w.transition()
	}
	return w, nil
}

func (w *WelcomeScreen) transition() tea.Cmd {
	if w.transitioned {
		return nil
	}
	w.transitioned = true
	next := w.next()
	return func() tea.Msg {
		return router.ReplaceScreenMsg{Screen: next}
	}
}

func (w *WelcomeScreen) View(width, height int) string {
	book := bookFrames[0]
	if w.elapsed < pagesEnd {
		book = bookFrames[w.tickCount%len(bookFrames)]
	}
	sections := []string{lipgloss.NewStyle().Foreground(theme.Primary).Render(book)}

	if w.elapsed >= bannerAt {
		sections = append(sections,
			"",
			RenderBanner(width),
			"",
			lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render("Learn anything, one question at a time."),
		)
		if w.resume != "" {
			sections = append(sections, lipgloss.NewStyle().
				Foreground(theme.Secondary).
				Render("Picking up where you left off: "+w.resume))
		}
		sections = append(sections, "", lipgloss.NewStyle().
			Foreground(theme.TextDim).
			Italic(true).
			Render("press any key to continue"))
	}

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, strings.Join(sections, "\n"))
}
