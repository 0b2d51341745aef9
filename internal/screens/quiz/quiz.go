package quiz

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/screens/summary"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/layout"
)

// QuizScreen walks through the questions of the active study set.
type QuizScreen struct {
	ctx    context.Context
	ctrl   *session.Controller
	snap   session.Snapshot
	choice components.MultiChoice
	input  components.TextInput
	errMsg string
}

var _ screen.Screen = (*QuizScreen)(nil)
var _ screen.KeyHintProvider = (*QuizScreen)(nil)
var _ screen.Refresher = (*QuizScreen)(nil)

// New creates a QuizScreen over the controller's active set.
func New(ctx context.Context, ctrl *session.Controller) *QuizScreen {
	s := &QuizScreen{ctx: ctx, ctrl: ctrl}
	s.load()
	return s
}

// load re-reads the controller state and rebuilds the answer widgets.
func (s *QuizScreen) load() {
	s.snap = s.ctrl.Snapshot()
	switch q := s.snap.Current().(type) {
	case *studyset.MultipleChoice:
		s.choice = components.NewMultiChoice(q)
	case *studyset.TextInput:
		s.input = components.NewTextInput("Type your answer...", 500)
		if v, ok := q.Answer.Value(); ok {
			s.input.SetValue(v)
		}
		if q.Answer.IsSet() {
			s.input.Submit(q.Verdict)
		}
	}
}

func (s *QuizScreen) Init() tea.Cmd {
	if s.snap.Set == nil {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.snap.Current() == nil && len(s.snap.Set.Questions) > 0 {
		// Opened on a finished set: park on the last question for review
		// and show the results on top.
		s.ctrl.GoToQuestion(s.ctx, len(s.snap.Set.Questions)-1)
		s.load()
		return s.showSummary()
	}
	if s.typing() {
		return s.input.Init()
	}
	return nil
}

func (s *QuizScreen) Refresh() tea.Cmd {
	s.errMsg = ""
	s.load()
	if s.snap.Set == nil {
		return func() tea.Msg { return router.PopScreenMsg{} }
	}
	if s.typing() {
		return s.input.Focus()
	}
	return nil
}

func (s *QuizScreen) Title() string {
	if s.snap.Set == nil {
		return "Quiz"
	}
	return layout.Truncate(s.snap.Set.Title, 40)
}

func (s *QuizScreen) KeyHints() []layout.KeyHint {
	q := s.snap.Current()
	if q == nil {
		return nil
	}
	hints := []layout.KeyHint{{Key: "←→", Description: "Navigate"}}
	if studyset.StateOf(q) == studyset.StateUnanswered {
		if q.Kind() == studyset.KindMultipleChoice {
			hints = append(hints, layout.KeyHint{Key: "1-9", Description: "Choose"})
		} else {
			hints = append(hints, layout.KeyHint{Key: "Enter", Description: "Submit"})
		}
		hints = append(hints, layout.KeyHint{Key: "?", Description: "Give up"})
	} else {
		hints = append(hints,
			layout.KeyHint{Key: "Enter", Description: "Next"},
			layout.KeyHint{Key: "t", Description: "Try again"},
		)
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Home"})
}

func (s *QuizScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.ChoiceMadeMsg:
		return s.submit(&msg.OptionID)
	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.typing() {
		var cmd tea.Cmd
		s.input, cmd = s.input.Update(msg)
		return s, cmd
	}
	return s, nil
}

// typing reports whether a text-input question is awaiting an answer.
func (s *QuizScreen) typing() bool {
	q := s.snap.Current()
	return q != nil && q.Kind() == studyset.KindTextInput && studyset.StateOf(q) == studyset.StateUnanswered
}

func (s *QuizScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	q := s.snap.Current()
	if q == nil {
		return s, nil
	}
	key := msg.String()
	unanswered := studyset.StateOf(q) == studyset.StateUnanswered
	hasDraft := s.typing() && s.input.Value() != ""

	switch key {
	case "left":
		if !hasDraft {
			return s.move(s.ctrl.PreviousQuestion(s.ctx))
		}
	case "right":
		if !hasDraft {
			return s.move(s.ctrl.NextQuestion(s.ctx))
		}
	case "?":
		if unanswered && !hasDraft {
			return s.submit(nil)
		}
	case "t":
		if !unanswered {
			if err := s.ctrl.RetryQuestion(s.ctx, q.Meta().ID); err != nil {
				s.errMsg = err.Error()
				return s, nil
			}
			s.load()
			if s.typing() {
				return s, s.input.Focus()
			}
			return s, nil
		}
	case "enter":
		if !unanswered {
			return s.advance()
		}
		if s.typing() {
			if s.input.Value() == "" {
				return s, nil
			}
			answer := s.input.Value()
			return s.submit(&answer)
		}
	}

	if !unanswered {
		return s, nil
	}
	var cmd tea.Cmd
	if q.Kind() == studyset.KindMultipleChoice {
		s.choice, cmd = s.choice.Update(msg)
	} else {
		s.input, cmd = s.input.Update(msg)
	}
	return s, cmd
}

// submit records answer for the current question. A nil answer gives up.
func (s *QuizScreen) submit(answer *string) (screen.Screen, tea.Cmd) {
	q := s.snap.Current()
	if q == nil {
		return s, nil
	}
	if _, err := s.ctrl.SubmitAnswer(s.ctx, q.Meta().ID, answer); err != nil {
		s.errMsg = err.Error()
		return s, nil
	}
	s.errMsg = ""
	s.load()
	return s, nil
}

func (s *QuizScreen) move(moved bool) (screen.Screen, tea.Cmd) {
	if !moved {
		return s, nil
	}
	s.errMsg = ""
	s.load()
	if s.typing() {
		return s, s.input.Focus()
	}
	return s, nil
}

// advance goes to the next question, the first skipped one, or the
// results once everything is answered.
func (s *QuizScreen) advance() (screen.Screen, tea.Cmd) {
	if s.snap.Stats.Complete {
		return s, s.showSummary()
	}
	if s.ctrl.NextQuestion(s.ctx) {
		return s.move(true)
	}
	return s.move(s.ctrl.GoToQuestion(s.ctx, studyset.FirstUnanswered(s.snap.Set)))
}

func (s *QuizScreen) showSummary() tea.Cmd {
	results := summary.New(s.ctx, s.ctrl)
	return func() tea.Msg { return router.PushScreenMsg{Screen: results} }
}
