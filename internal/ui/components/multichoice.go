package components

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// ChoiceMadeMsg is emitted when the learner picks an option.
type ChoiceMadeMsg struct {
	OptionID string
}

// MultiChoice renders the options of a multiple-choice question. Picking
// an option submits it immediately.
type MultiChoice struct {
	Options  []studyset.Option
	Selected int

	// Chosen and Revealed describe a recorded answer. Chosen is the
	// picked option id, empty when the learner gave up.
	Chosen   string
	Revealed bool
	Locked   bool
}

// NewMultiChoice creates a selector for q, showing its recorded answer
// when it has one.
func NewMultiChoice(q *studyset.MultipleChoice) MultiChoice {
	m := MultiChoice{Options: q.Options}
	if q.Answer.IsSet() {
		m.Locked = true
		m.Revealed = q.Answer.IsGivenUp()
		m.Chosen, _ = q.Answer.Value()
		for i, o := range q.Options {
			if o.ID == m.Chosen {
				m.Selected = i
			}
		}
	}
	return m
}

// Update handles arrow navigation, Enter, and number keys.
func (m MultiChoice) Update(msg tea.Msg) (MultiChoice, tea.Cmd) {
	if m.Locked {
		return m, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	key := kmsg.String()
	switch key {
	case "up", "k":
		if m.Selected > 0 {
			m.Selected--
		}
		return m, nil
	case "down", "j":
		if m.Selected < len(m.Options)-1 {
			m.Selected++
		}
		return m, nil
	case "enter":
		return m.choose(m.Selected)
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		if i := int(key[0] - '1'); i < len(m.Options) {
			return m.choose(i)
		}
	}
	return m, nil
}

func (m MultiChoice) choose(i int) (MultiChoice, tea.Cmd) {
	if i < 0 || i >= len(m.Options) {
		return m, nil
	}
	m.Selected = i
	id := m.Options[i].ID
	return m, func() tea.Msg { return ChoiceMadeMsg{OptionID: id} }
}

// View renders the options. After an answer the correct option is green
// and a wrong pick is red.
func (m MultiChoice) View() string {
	var b strings.Builder
	for i, opt := range m.Options {
		prefix := "  "
		if i == m.Selected && !m.Locked {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%d)  %s", prefix, i+1, opt.Text)

		style := lipgloss.NewStyle().Foreground(theme.Text)
		switch {
		case m.Locked && opt.IsCorrect:
			style = theme.Correct
		case m.Locked && opt.ID == m.Chosen:
			style = theme.Incorrect
		case m.Locked:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case i == m.Selected:
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}
