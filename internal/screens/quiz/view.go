package quiz

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

func (s *QuizScreen) View(width, height int) string {
	if s.snap.Set == nil {
		return renderCentered(width, height, "No study set is open.")
	}
	q := s.snap.Current()
	if q == nil {
		return renderCentered(width, height, "All questions answered.")
	}

	inner := min(width-8, 90)
	var b strings.Builder

	// Position and progress.
	info := lipgloss.NewStyle().
		Foreground(theme.Secondary).
		Bold(true).
		Render(fmt.Sprintf("  Question %d of %d", s.snap.Cursor+1, len(s.snap.Set.Questions)))
	bar := components.NewProgressBar("", s.snap.Stats.Progress, true, 30).View()
	pad := width - lipgloss.Width(info) - lipgloss.Width(bar) - 4
	if pad < 1 {
		pad = 1
	}
	b.WriteString(info + strings.Repeat(" ", pad) + bar)
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", max(width-4, 0))))
	b.WriteString("\n\n")

	// Question text, one paragraph per entry.
	textStyle := lipgloss.NewStyle().Width(inner).Foreground(theme.Text).Bold(true)
	for i, para := range q.Meta().Text {
		if i > 0 {
			textStyle = textStyle.Bold(false).Foreground(theme.TextDim)
		}
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, textStyle.Render(para)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if q.Kind() == studyset.KindMultipleChoice {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, s.choice.View()))
	} else {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, "Answer: "+s.input.View()))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if fb := renderFeedback(q, inner); fb != "" {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, fb))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
	}

	return b.String()
}

// renderFeedback shows the verdict and, for text questions, the accepted
// answers and explanation.
func renderFeedback(q studyset.Question, width int) string {
	var lines []string
	switch studyset.StateOf(q) {
	case studyset.StateUnanswered:
		return ""
	case studyset.StateRevealed:
		lines = append(lines, theme.Revealed.Render("Answer revealed"))
	default:
		if q.Meta().Verdict == studyset.VerdictCorrect {
			lines = append(lines, theme.Correct.Render("Correct!"))
		} else {
			lines = append(lines, theme.Incorrect.Render("Not quite"))
		}
	}

	if ti, ok := q.(*studyset.TextInput); ok {
		if q.Meta().Verdict != studyset.VerdictCorrect {
			lines = append(lines, lipgloss.NewStyle().
				Foreground(theme.TextDim).
				Render("Correct answer: "+strings.Join(ti.CorrectAnswers, " / ")))
		}
		if ti.Explanation != "" {
			lines = append(lines, "", lipgloss.NewStyle().
				Width(width).
				Foreground(theme.Text).
				Render(ti.Explanation))
		}
	}
	return strings.Join(lines, "\n")
}

func renderCentered(width, height int, msg string) string {
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(msg))
}
