package quiz

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screens/summary"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/store"
	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/components"
)

const testDoc = `{
  "title": "Geography",
  "questions": [
    {"id": "q1", "type": "multiple-choice", "text": ["Largest ocean?"],
     "options": [{"id": "a", "text": "Atlantic"}, {"id": "b", "text": "Pacific", "isCorrect": true}]},
    {"id": "q2", "type": "text-input", "text": ["Capital of France?"],
     "correctAnswers": ["Paris"], "explanation": "Paris has been the capital since 987."}
  ]
}`

func newTestController(t *testing.T) *session.Controller {
	t.Helper()
	st := store.New(store.Options{
		Primary:  store.NewMemoryBackend("primary", store.DefaultPrimaryLimit, nil),
		Fallback: store.NewMemoryBackend("fallback", 0, nil),
	})
	ctrl := session.New(st, session.Options{})
	set, err := studyset.Import([]byte(testDoc))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	ctrl.LoadStudySet(context.Background(), set)
	return ctrl
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

// run applies cmd and feeds a resulting ChoiceMadeMsg back to the screen.
func run(t *testing.T, s *QuizScreen, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if choice, ok := msg.(components.ChoiceMadeMsg); ok {
		s.Update(choice)
	}
	return msg
}

func TestQuizScreen_ChoiceSubmitsAnswer(t *testing.T) {
	ctrl := newTestController(t)
	s := New(context.Background(), ctrl)

	_, cmd := s.Update(keyPress('2'))
	run(t, s, cmd)

	q := ctrl.Snapshot().Set.Questions[0]
	if q.Meta().Verdict != studyset.VerdictCorrect {
		t.Fatalf("Verdict = %v, want correct", q.Meta().Verdict)
	}
	if !strings.Contains(s.View(100, 30), "Correct!") {
		t.Error("expected correct feedback in view")
	}
}

func TestQuizScreen_EnterAdvancesAfterAnswer(t *testing.T) {
	ctrl := newTestController(t)
	s := New(context.Background(), ctrl)

	_, cmd := s.Update(keyPress('1'))
	run(t, s, cmd)
	s.Update(specialKey(tea.KeyEnter))

	if got := ctrl.Snapshot().Cursor; got != 1 {
		t.Fatalf("Cursor = %d, want 1", got)
	}
	if !s.typing() {
		t.Error("expected text question awaiting input")
	}
}

func TestQuizScreen_TextAnswer(t *testing.T) {
	ctrl := newTestController(t)
	ctx := context.Background()
	ctrl.GoToQuestion(ctx, 1)
	s := New(ctx, ctrl)

	// Enter with an empty input is ignored.
	s.Update(specialKey(tea.KeyEnter))
	if !s.typing() {
		t.Fatal("expected question to stay unanswered")
	}

	s.input.SetValue("  paris ")
	s.Update(specialKey(tea.KeyEnter))

	q := ctrl.Snapshot().Set.Questions[1]
	if q.Meta().Verdict != studyset.VerdictCorrect {
		t.Fatalf("Verdict = %v, want correct", q.Meta().Verdict)
	}
	view := s.View(100, 30)
	if !strings.Contains(view, "capital since 987") {
		t.Error("expected explanation after answering")
	}
}

func TestQuizScreen_GiveUp(t *testing.T) {
	ctrl := newTestController(t)
	ctx := context.Background()
	ctrl.GoToQuestion(ctx, 1)
	s := New(ctx, ctrl)

	s.Update(keyPress('?'))

	q := ctrl.Snapshot().Set.Questions[1]
	if studyset.StateOf(q) != studyset.StateRevealed {
		t.Fatalf("State = %v, want revealed", studyset.StateOf(q))
	}
	if !strings.Contains(s.View(100, 30), "Correct answer: Paris") {
		t.Error("expected correct answer to be shown")
	}
}

func TestQuizScreen_GiveUpIgnoredWithDraft(t *testing.T) {
	ctrl := newTestController(t)
	ctx := context.Background()
	ctrl.GoToQuestion(ctx, 1)
	s := New(ctx, ctrl)
	s.input.SetValue("Lyon")

	s.Update(keyPress('?'))

	if q := ctrl.Snapshot().Set.Questions[1]; q.Meta().Answer.IsSet() {
		t.Error("expected no answer recorded while a draft is typed")
	}
}

func TestQuizScreen_Retry(t *testing.T) {
	ctrl := newTestController(t)
	s := New(context.Background(), ctrl)

	_, cmd := s.Update(keyPress('1'))
	run(t, s, cmd)
	s.Update(keyPress('t'))

	q := ctrl.Snapshot().Set.Questions[0]
	if studyset.StateOf(q) != studyset.StateUnanswered {
		t.Fatalf("State = %v, want unanswered", studyset.StateOf(q))
	}
	if s.choice.Locked {
		t.Error("expected options unlocked after retry")
	}
}

func TestQuizScreen_ArrowNavigation(t *testing.T) {
	ctrl := newTestController(t)
	s := New(context.Background(), ctrl)

	s.Update(specialKey(tea.KeyRight))
	if got := ctrl.Snapshot().Cursor; got != 1 {
		t.Fatalf("Cursor = %d, want 1", got)
	}
	s.Update(specialKey(tea.KeyRight))
	if got := ctrl.Snapshot().Cursor; got != 1 {
		t.Fatalf("Cursor = %d, want 1 at the last question", got)
	}

	// Arrows edit the draft instead of navigating.
	s.input.SetValue("Par")
	s.Update(specialKey(tea.KeyLeft))
	if got := ctrl.Snapshot().Cursor; got != 1 {
		t.Fatalf("Cursor = %d, want 1 while typing", got)
	}

	s.input.SetValue("")
	s.Update(specialKey(tea.KeyLeft))
	if got := ctrl.Snapshot().Cursor; got != 0 {
		t.Fatalf("Cursor = %d, want 0", got)
	}
}

func TestQuizScreen_SkippedQuestionRevisited(t *testing.T) {
	ctrl := newTestController(t)
	ctx := context.Background()
	ctrl.GoToQuestion(ctx, 1)
	s := New(ctx, ctrl)

	s.input.SetValue("Paris")
	s.Update(specialKey(tea.KeyEnter))
	s.Update(specialKey(tea.KeyEnter))

	if got := ctrl.Snapshot().Cursor; got != 0 {
		t.Fatalf("Cursor = %d, want first unanswered question", got)
	}
}

func TestQuizScreen_CompletionShowsSummary(t *testing.T) {
	ctrl := newTestController(t)
	s := New(context.Background(), ctrl)

	_, cmd := s.Update(keyPress('2'))
	run(t, s, cmd)
	s.Update(specialKey(tea.KeyEnter))
	s.input.SetValue("Paris")
	s.Update(specialKey(tea.KeyEnter))

	_, cmd = s.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected command after finishing the set")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("pushed %T, want *summary.SummaryScreen", push.Screen)
	}
}

func TestQuizScreen_NoActiveSetPops(t *testing.T) {
	st := store.New(store.Options{Primary: store.NewMemoryBackend("primary", 0, nil)})
	s := New(context.Background(), session.New(st, session.Options{}))

	cmd := s.Init()
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestQuizScreen_KeyHints(t *testing.T) {
	s := New(context.Background(), newTestController(t))
	hints := s.KeyHints()
	if len(hints) == 0 {
		t.Fatal("expected key hints")
	}
	found := false
	for _, h := range hints {
		if h.Key == "?" {
			found = true
		}
	}
	if !found {
		t.Error("expected give up hint on an unanswered question")
	}
}
