package summary

import (
	"context"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/layout"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// SummaryScreen shows the results of a finished study set.
type SummaryScreen struct {
	ctx  context.Context
	ctrl *session.Controller
	snap session.Snapshot
}

var _ screen.Screen = (*SummaryScreen)(nil)
var _ screen.KeyHintProvider = (*SummaryScreen)(nil)

// New creates a SummaryScreen for the controller's active set.
func New(ctx context.Context, ctrl *session.Controller) *SummaryScreen {
	return &SummaryScreen{ctx: ctx, ctrl: ctrl, snap: ctrl.Snapshot()}
}

func (s *SummaryScreen) Init() tea.Cmd {
	return nil
}

func (s *SummaryScreen) Title() string {
	return "Results"
}

func (s *SummaryScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "r", Description: "Start over"},
		{Key: "Enter", Description: "Library"},
		{Key: "Esc", Description: "Review"},
	}
}

func (s *SummaryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "r":
			s.ctrl.ResetSession(s.ctx)
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case "enter":
			return s, func() tea.Msg { return router.PopToRootMsg{} }
		}
	}
	return s, nil
}

func (s *SummaryScreen) View(width, height int) string {
	st := s.snap.Stats
	var b strings.Builder

	center := func(style lipgloss.Style, text string) {
		b.WriteString(style.Width(width).Align(lipgloss.Center).Render(text))
		b.WriteString("\n")
	}

	center(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true), "Study set complete!")
	if s.snap.Set != nil {
		center(lipgloss.NewStyle().Foreground(theme.TextDim), s.snap.Set.Title)
	}
	b.WriteString("\n")

	center(lipgloss.NewStyle().Foreground(theme.Text),
		fmt.Sprintf("Questions: %d        Answered: %d        Correct: %d", st.Total, st.Answered, st.Correct))
	b.WriteString("\n")

	bar := components.NewProgressBar("Accuracy", st.Accuracy, true, 30)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, bar.View()))
	b.WriteString("\n\n")

	if st.Passing() {
		center(theme.Correct, "Great work!")
	} else {
		center(theme.Revealed, fmt.Sprintf("Aim for %d%% next time.", session.PassingAccuracy))
	}

	if missed := missedQuestions(s.snap.Set); len(missed) > 0 {
		b.WriteString("\n")
		center(lipgloss.NewStyle().Foreground(theme.TextDim), "To review")
		divider := lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(min(width-8, 60), 0)))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, divider))
		b.WriteString("\n")
		for _, line := range missed {
			center(lipgloss.NewStyle().Foreground(theme.Text), layout.Truncate(line, min(width-8, 70)))
		}
	}

	return b.String()
}

// missedQuestions lists the first paragraph of every question not
// answered correctly.
func missedQuestions(set *studyset.StudySet) []string {
	if set == nil {
		return nil
	}
	var out []string
	for i, q := range set.Questions {
		if q.Meta().Verdict == studyset.VerdictCorrect {
			continue
		}
		text := ""
		if len(q.Meta().Text) > 0 {
			text = q.Meta().Text[0]
		}
		out = append(out, fmt.Sprintf("%d. %s", i+1, text))
	}
	return out
}
