package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/studybuddy/internal/ingest"
	"github.com/abhisek/studybuddy/internal/router"
	"github.com/abhisek/studybuddy/internal/screen"
	"github.com/abhisek/studybuddy/internal/screens/quiz"
	"github.com/abhisek/studybuddy/internal/session"
	"github.com/abhisek/studybuddy/internal/studyset"
	"github.com/abhisek/studybuddy/internal/ui/components"
	"github.com/abhisek/studybuddy/internal/ui/layout"
	"github.com/abhisek/studybuddy/internal/ui/theme"
)

// Generator produces a study set from a request, reporting the
// accumulated model output through onUpdate.
type Generator interface {
	Generate(ctx context.Context, req ingest.Request, onUpdate func(string)) (*studyset.StudySet, error)
}

// Prefs holds the credentials remembered from the last run.
type Prefs interface {
	LastAPIKey(ctx context.Context) (string, bool)
	LastModel(ctx context.Context) (string, bool)
}

// Options configures a GenerateScreen.
type Options struct {
	Generator    Generator
	Prefs        Prefs
	DefaultModel string

	// Prior is the set being revised. Nil creates a new set.
	Prior *studyset.StudySet
}

const (
	fieldPrompt = iota
	fieldAttachments
	fieldModel
	fieldAPIKey
	fieldCount
)

var fieldLabels = [fieldCount]string{"Prompt", "Attachments", "Model", "API key"}

// streamUpdateMsg carries the model output received so far.
type streamUpdateMsg struct {
	run  int
	text string
}

// streamDoneMsg ends a generation run.
type streamDoneMsg struct {
	run int
	set *studyset.StudySet
	err error
}

// GenerateScreen collects a prompt and streams a new or revised study set
// from the model.
type GenerateScreen struct {
	ctx    context.Context
	cancel context.CancelFunc
	ctrl   *session.Controller
	gen    Generator
	prior  *studyset.StudySet

	fields [fieldCount]components.TextInput
	focus  int

	run       int
	running   bool
	cancelRun context.CancelFunc
	updates   <-chan string
	done      <-chan streamDoneMsg
	output    string
	errMsg    string
}

var _ screen.Screen = (*GenerateScreen)(nil)
var _ screen.KeyHintProvider = (*GenerateScreen)(nil)
var _ screen.Closer = (*GenerateScreen)(nil)
var _ screen.EscapeHandler = (*GenerateScreen)(nil)

// New creates a GenerateScreen. The model and API key fields are
// prefilled from the remembered preferences.
func New(ctx context.Context, ctrl *session.Controller, opts Options) *GenerateScreen {
	runCtx, cancel := context.WithCancel(ctx)
	s := &GenerateScreen{
		ctx:    runCtx,
		cancel: cancel,
		ctrl:   ctrl,
		gen:    opts.Generator,
		prior:  opts.Prior,
	}

	prompt := "Describe the study set you want..."
	if s.prior != nil {
		prompt = "Describe how to change this study set..."
	}
	s.fields[fieldPrompt] = components.NewTextInput(prompt, 2000)
	s.fields[fieldAttachments] = components.NewTextInput("Files or URLs, separated by commas", 0)
	s.fields[fieldModel] = components.NewTextInput("Model id", 200)
	s.fields[fieldAPIKey] = components.NewSecretInput("API key")

	model := opts.DefaultModel
	if opts.Prefs != nil {
		if m, ok := opts.Prefs.LastModel(ctx); ok && m != "" {
			model = m
		}
		if k, ok := opts.Prefs.LastAPIKey(ctx); ok {
			s.fields[fieldAPIKey].SetValue(k)
		}
	}
	s.fields[fieldModel].SetValue(model)

	for i := 1; i < fieldCount; i++ {
		s.fields[i].Blur()
	}
	return s
}

func (s *GenerateScreen) Init() tea.Cmd {
	return s.fields[fieldPrompt].Init()
}

func (s *GenerateScreen) Title() string {
	if s.prior != nil {
		return "Edit with AI"
	}
	return "Generate Study Set"
}

func (s *GenerateScreen) KeyHints() []layout.KeyHint {
	if s.running {
		return []layout.KeyHint{{Key: "Esc", Description: "Cancel"}}
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Generate"},
		{Key: "Esc", Description: "Back"},
	}
}

// HandlesEscape reports whether Esc cancels a running generation instead
// of leaving the screen.
func (s *GenerateScreen) HandlesEscape() bool {
	return s.running
}

// Close stops any in-flight generation.
func (s *GenerateScreen) Close() {
	s.cancel()
}

func (s *GenerateScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case streamUpdateMsg:
		if msg.run != s.run {
			return s, nil
		}
		s.output = msg.text
		return s, s.waitForStream()

	case streamDoneMsg:
		if msg.run != s.run {
			return s, nil
		}
		return s.finish(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *GenerateScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.running {
		if msg.String() == "esc" {
			s.cancelRun()
		}
		return s, nil
	}

	switch msg.String() {
	case "tab", "down":
		return s, s.setFocus((s.focus + 1) % fieldCount)
	case "shift+tab", "up":
		return s, s.setFocus((s.focus + fieldCount - 1) % fieldCount)
	case "enter":
		return s, s.start()
	}

	var cmd tea.Cmd
	s.fields[s.focus], cmd = s.fields[s.focus].Update(msg)
	return s, cmd
}

func (s *GenerateScreen) setFocus(i int) tea.Cmd {
	s.fields[s.focus].Blur()
	s.focus = i
	return s.fields[s.focus].Focus()
}

// request builds the generation request from the form.
func (s *GenerateScreen) request() (ingest.Request, error) {
	req := ingest.Request{
		Mode:   ingest.ModeCreate,
		Prompt: strings.TrimSpace(s.fields[fieldPrompt].Value()),
		Model:  strings.TrimSpace(s.fields[fieldModel].Value()),
		APIKey: strings.TrimSpace(s.fields[fieldAPIKey].Value()),
		Prior:  s.prior,
	}
	if s.prior != nil {
		req.Mode = ingest.ModeEdit
	}
	if req.Prompt == "" {
		return req, ingest.ErrEmptyPrompt
	}
	for _, arg := range strings.Split(s.fields[fieldAttachments].Value(), ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		att, err := ingest.Open(arg)
		if err != nil {
			return req, err
		}
		req.Attachments = append(req.Attachments, att)
	}
	return req, nil
}

// start launches a generation run. Output reaches the screen through
// streamUpdateMsg and streamDoneMsg.
func (s *GenerateScreen) start() tea.Cmd {
	req, err := s.request()
	if err != nil {
		s.errMsg = err.Error()
		return nil
	}

	s.run++
	run := s.run
	ctx, cancel := context.WithCancel(s.ctx)
	updates := make(chan string, 1)
	done := make(chan streamDoneMsg, 1)

	go func() {
		defer cancel()
		set, err := s.gen.Generate(ctx, req, func(text string) {
			// Keep only the newest text when the UI falls behind.
			select {
			case <-updates:
			default:
			}
			updates <- text
		})
		close(updates)
		done <- streamDoneMsg{run: run, set: set, err: err}
	}()

	s.running = true
	s.cancelRun = cancel
	s.updates = updates
	s.done = done
	s.output = ""
	s.errMsg = ""
	return s.waitForStream()
}

func (s *GenerateScreen) waitForStream() tea.Cmd {
	run, updates, done := s.run, s.updates, s.done
	return func() tea.Msg {
		if text, ok := <-updates; ok {
			return streamUpdateMsg{run: run, text: text}
		}
		return <-done
	}
}

func (s *GenerateScreen) finish(msg streamDoneMsg) (screen.Screen, tea.Cmd) {
	s.running = false
	s.cancelRun = nil
	if msg.err != nil {
		if errors.Is(msg.err, context.Canceled) {
			s.errMsg = "Generation cancelled."
		} else {
			s.errMsg = msg.err.Error()
		}
		return s, s.fields[s.focus].Focus()
	}

	// The quiz outlives this screen, so it gets the parent context.
	parent := context.WithoutCancel(s.ctx)
	if s.prior != nil {
		s.ctrl.ReplaceStudySet(parent, s.prior.ID, msg.set)
	} else {
		s.ctrl.LoadStudySet(parent, msg.set)
	}
	next := quiz.New(parent, s.ctrl)
	return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *GenerateScreen) View(width, height int) string {
	inner := max(min(width-8, 90), 20)
	var b strings.Builder

	heading := "What would you like to study?"
	if s.prior != nil {
		heading = fmt.Sprintf("Editing %q", s.prior.Title)
	}
	b.WriteString(lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Foreground(theme.Primary).
		Bold(true).
		Render(heading))
	b.WriteString("\n\n")

	labelStyle := lipgloss.NewStyle().Width(14).Foreground(theme.TextDim)
	for i := range s.fields {
		label := labelStyle.Render(fieldLabels[i])
		if i == s.focus && !s.running {
			label = labelStyle.Foreground(theme.Primary).Bold(true).Render(fieldLabels[i])
		}
		row := label + s.fields[i].View()
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, lipgloss.NewStyle().Width(inner).Render(row)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if s.running {
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center,
			theme.Revealed.Render(fmt.Sprintf("Generating... %d characters received", len([]rune(s.output))))))
		b.WriteString("\n\n")
		lines := max(height-fieldCount-8, 3)
		preview := lipgloss.NewStyle().
			Width(inner).
			Foreground(theme.TextDim).
			Render(layout.Tail(s.output, lines))
		b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, preview))
		b.WriteString("\n")
	}

	if s.errMsg != "" {
		b.WriteString(lipgloss.NewStyle().
			Width(width).
			Align(lipgloss.Center).
			Foreground(theme.Error).
			Render(s.errMsg))
	}
	return b.String()
}
